package workers

import (
	"context"
	"time"

	"hermes/internal/adapters/binance"
	"hermes/internal/domain/marketdata"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
)

// CandleBackfillWorker keeps ClickHouse topped up with daily candles for
// every supported symbol so analysis runs never hit the exchange directly
type CandleBackfillWorker struct {
	*BaseWorker
	exchange *binance.Client
	repo     marketdata.Repository
	days     int
}

// NewCandleBackfillWorker creates the candle backfill worker
func NewCandleBackfillWorker(exchange *binance.Client, repo marketdata.Repository, interval time.Duration, days int, enabled bool) *CandleBackfillWorker {
	return &CandleBackfillWorker{
		BaseWorker: NewBaseWorker("candle_backfill", interval, enabled),
		exchange:   exchange,
		repo:       repo,
		days:       days,
	}
}

// Run fetches the candles missing since the newest stored one, per symbol.
// One symbol failing does not block the others.
func (w *CandleBackfillWorker) Run(ctx context.Context) error {
	start := time.Now()

	var lastErr error
	for _, currency := range []string{"BTC", "ETH"} {
		symbol, _ := marketdata.SymbolFor(currency)
		if err := w.backfillSymbol(ctx, symbol); err != nil {
			w.Log().Errorw("backfill failed", "symbol", symbol, "error", err)
			lastErr = err
		}
	}

	metrics.RecordWorkerRun(w.Name(), lastErr)
	if lastErr != nil {
		w.RecordError(lastErr, time.Since(start))
		return lastErr
	}
	w.RecordRun(time.Since(start))
	return nil
}

func (w *CandleBackfillWorker) backfillSymbol(ctx context.Context, symbol string) error {
	latest, err := w.repo.LatestOpenTime(ctx, symbol, "1d")
	if err != nil {
		return errors.Wrap(err, "querying latest stored candle")
	}

	since := time.Now().AddDate(0, 0, -w.days)
	if !latest.IsZero() && latest.After(since) {
		// refetch the newest stored candle too; it may have been open
		since = latest
	}

	candles, err := w.exchange.GetDailyKlinesSince(ctx, symbol, since, w.days)
	if err != nil {
		return errors.Wrap(err, "fetching klines")
	}

	// the current day's candle is still forming; keep only closed ones
	cutoff := time.Now().UTC().Truncate(24 * time.Hour)
	closed := candles[:0]
	for _, c := range candles {
		if c.OpenTime.Before(cutoff) {
			closed = append(closed, c)
		}
	}

	if len(closed) == 0 {
		w.Log().Debugw("no closed candles to store", "symbol", symbol)
		return nil
	}

	if err := w.repo.Insert(ctx, closed); err != nil {
		return errors.Wrap(err, "storing candles")
	}

	w.Log().Infow("candles backfilled", "symbol", symbol, "count", len(closed))
	return nil
}
