package trade

import "context"

// Repository loads historical block trades collected into Postgres
type Repository interface {
	// ListSince returns trades for a currency over the trailing lookback
	// window in days, newest first.
	ListSince(ctx context.Context, currency string, days int) ([]*Trade, error)

	// ListLatest returns the most recent trades for a currency
	ListLatest(ctx context.Context, currency string, limit int) ([]*Trade, error)
}
