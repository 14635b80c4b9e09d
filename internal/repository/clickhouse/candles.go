package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"hermes/internal/domain/marketdata"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
)

// Compile-time check
var _ marketdata.Repository = (*CandleRepository)(nil)

// CandleRepository implements marketdata.Repository using ClickHouse
type CandleRepository struct {
	conn driver.Conn
}

// NewCandleRepository creates a new candle repository
func NewCandleRepository(conn driver.Conn) *CandleRepository {
	return &CandleRepository{conn: conn}
}

// GetDaily returns up to days daily candles in chronological ascending order
func (r *CandleRepository) GetDaily(ctx context.Context, symbol string, days int) ([]marketdata.Candle, error) {
	query := `
		SELECT symbol, timeframe, open_time, open, high, low, close, volume, quote_volume, trades
		FROM candles
		WHERE symbol = $1 AND timeframe = '1d'
		ORDER BY open_time DESC
		LIMIT $2`

	started := time.Now()
	var candles []marketdata.Candle
	err := r.conn.Select(ctx, &candles, query, symbol, days)
	metrics.RecordDBQuery("clickhouse", "candles_get_daily", time.Since(started))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get daily candles: symbol=%s days=%d", symbol, days)
	}

	// newest-first from the index, reversed for the indicator engines
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}

	return candles, nil
}

// Insert writes candles in batch
func (r *CandleRepository) Insert(ctx context.Context, candles []marketdata.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	started := time.Now()
	batch, err := r.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			symbol, timeframe, open_time,
			open, high, low, close, volume, quote_volume, trades
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}

	for _, c := range candles {
		err := batch.Append(
			c.Symbol, c.Timeframe, c.OpenTime,
			c.Open, c.High, c.Low, c.Close,
			c.Volume, c.QuoteVolume, c.Trades,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append candle")
		}
	}

	err = batch.Send()
	metrics.RecordDBQuery("clickhouse", "candles_insert", time.Since(started))
	if err != nil {
		return errors.Wrap(err, "failed to send candle batch")
	}

	return nil
}

// LatestOpenTime returns the open time of the newest stored candle
func (r *CandleRepository) LatestOpenTime(ctx context.Context, symbol, timeframe string) (time.Time, error) {
	query := `
		SELECT max(open_time)
		FROM candles
		WHERE symbol = $1 AND timeframe = $2`

	started := time.Now()
	var latest time.Time
	err := r.conn.QueryRow(ctx, query, symbol, timeframe).Scan(&latest)
	metrics.RecordDBQuery("clickhouse", "candles_latest_open_time", time.Since(started))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "failed to get latest open time: symbol=%s", symbol)
	}

	return latest, nil
}
