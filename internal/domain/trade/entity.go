package trade

import (
	"time"

	"github.com/shopspring/decimal"

	"hermes/internal/instrument"
)

// Trade is one historical option block trade as stored by the collector.
// Rows are read once per analysis run, enriched in memory, and discarded;
// derived fields are never written back.
type Trade struct {
	Timestamp          time.Time       `db:"timestamp"`
	Contracts          decimal.Decimal `db:"contracts"`
	TickDirection      int             `db:"tick_direction"`
	MarkPrice          decimal.Decimal `db:"mark_price"`
	Amount             decimal.Decimal `db:"amount"`
	TradeSeq           int64           `db:"trade_seq"`
	IndexPrice         decimal.Decimal `db:"index_price"`
	Price              decimal.Decimal `db:"price"`
	IV                 decimal.Decimal `db:"iv"`
	BlockTradeLegCount string          `db:"block_trade_leg_count"`
	InstrumentName     string          `db:"instrument_name"`
	BlockTradeID       string          `db:"block_trade_id"`
	ComboID            *string         `db:"combo_id"`
	Liquidation        string          `db:"liquidation"`
	Direction          string          `db:"direction"`
	ComboTradeID       *string         `db:"combo_trade_id"`
	TradeID            string          `db:"trade_id"`

	parsed *instrument.Info
}

// InstrumentInfo returns the lenient parse of the instrument name, cached on
// the trade. A malformed name degrades to placeholder fields rather than
// failing; callers that need a trusted parse use instrument.Parse directly.
func (t *Trade) InstrumentInfo() instrument.Info {
	if t.parsed == nil {
		info := instrument.ParseLenient(t.InstrumentName)
		t.parsed = &info
	}
	return *t.parsed
}

// ComboIDValue returns the combo id or "" when the trade has none
func (t *Trade) ComboIDValue() string {
	if t.ComboID == nil {
		return ""
	}
	return *t.ComboID
}

// AmountFloat returns the notional amount as float64 for aggregate math
func (t *Trade) AmountFloat() float64 {
	f, _ := t.Amount.Float64()
	return f
}
