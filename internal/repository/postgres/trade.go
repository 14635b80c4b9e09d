package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"hermes/internal/domain/trade"
	"hermes/internal/metrics"
	"hermes/pkg/errors"
)

// Compile-time check
var _ trade.Repository = (*TradeRepository)(nil)

const tradeColumns = `
	timestamp, contracts, tick_direction, mark_price, amount, trade_seq,
	index_price, price, iv, block_trade_leg_count, instrument_name,
	block_trade_id, combo_id, liquidation, direction, combo_trade_id, trade_id`

// TradeRepository implements trade.Repository using PostgreSQL. Block trades
// are collected into one table per currency.
type TradeRepository struct {
	db *sqlx.DB
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sqlx.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// ListSince returns trades for a currency over the trailing lookback window
func (r *TradeRepository) ListSince(ctx context.Context, currency string, days int) ([]*trade.Trade, error) {
	table, err := tableFor(currency)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE timestamp >= $1
		ORDER BY timestamp DESC`, tradeColumns, table)

	since := time.Now().AddDate(0, 0, -days)

	started := time.Now()
	var trades []*trade.Trade
	err = r.db.SelectContext(ctx, &trades, query, since)
	metrics.RecordDBQuery("postgres", "trades_list_since", time.Since(started))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list trades: currency=%s days=%d", currency, days)
	}

	return trades, nil
}

// ListLatest returns the most recent trades for a currency
func (r *TradeRepository) ListLatest(ctx context.Context, currency string, limit int) ([]*trade.Trade, error) {
	table, err := tableFor(currency)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY timestamp DESC
		LIMIT $1`, tradeColumns, table)

	started := time.Now()
	var trades []*trade.Trade
	err = r.db.SelectContext(ctx, &trades, query, limit)
	metrics.RecordDBQuery("postgres", "trades_list_latest", time.Since(started))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list latest trades: currency=%s", currency)
	}

	return trades, nil
}

// tableFor maps a currency to its collection table. The mapping is a fixed
// allowlist; the table name is never built from raw input.
func tableFor(currency string) (string, error) {
	switch strings.ToUpper(currency) {
	case "BTC":
		return "btc_block_trades", nil
	case "ETH":
		return "eth_block_trades", nil
	default:
		return "", errors.Wrapf(errors.ErrUnsupportedCurrency, "currency %s", currency)
	}
}
