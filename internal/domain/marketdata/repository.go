package marketdata

import (
	"context"
	"time"
)

// Repository stores and serves OHLCV candles
type Repository interface {
	// GetDaily returns up to days daily candles for a symbol in
	// chronological ascending order.
	GetDaily(ctx context.Context, symbol string, days int) ([]Candle, error)

	// Insert writes candles in batch (idempotent on symbol+timeframe+open_time)
	Insert(ctx context.Context, candles []Candle) error

	// LatestOpenTime returns the open time of the newest stored candle,
	// zero time when none exist.
	LatestOpenTime(ctx context.Context, symbol, timeframe string) (time.Time, error)
}
