package analysis

import (
	"context"

	"hermes/internal/domain/trade"
	"hermes/internal/instrument"
	"hermes/internal/pricing"
	"hermes/internal/strategy"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// BlockTradesStage loads the stored option block trades, prices each leg and
// aggregates the flow into directional statistics and strategy breakdowns.
type BlockTradesStage struct {
	trades trade.Repository
	pricer *pricing.Engine
	log    *logger.Logger
}

// NewBlockTradesStage creates stage 1 of the pipeline
func NewBlockTradesStage(trades trade.Repository, pricer *pricing.Engine) *BlockTradesStage {
	return &BlockTradesStage{
		trades: trades,
		pricer: pricer,
		log:    logger.Get().With("stage", "block_trades"),
	}
}

func (s *BlockTradesStage) Name() string { return "block_trades" }

// Run enriches every trade with its Black-Scholes delta. A trade whose
// instrument name fails the strict parse, or whose delta cannot be computed,
// is dropped from every aggregate: counts, volumes, the total delta and the
// strategy breakdowns all cover only the trades that priced.
func (s *BlockTradesStage) Run(ctx context.Context, ac *Context) error {
	ac.Say("Loading block trades...")

	trades, err := s.trades.ListSince(ctx, ac.Currency, ac.Days)
	if err != nil {
		ac.BlockTrades.Status = StatusError
		return errors.Wrap(err, "loading block trades")
	}
	if len(trades) == 0 {
		s.log.Warnw("no block trades found", "currency", ac.Currency, "days", ac.Days)
		ac.BlockTrades.Status = StatusNoData
		ac.Say("No block trades found for the selected period.")
		return nil
	}

	result := BlockTradesResult{Status: StatusSuccess}

	analyzed := make([]*trade.Trade, 0, len(trades))
	skippedParse, skippedDelta := 0, 0
	for _, t := range trades {
		info, err := instrument.Parse(t.InstrumentName)
		if err != nil {
			s.log.Debugw("instrument rejected", "name", t.InstrumentName, "error", err)
			skippedParse++
			continue
		}

		spot, _ := t.IndexPrice.Float64()
		iv, _ := t.IV.Float64()
		m := s.pricer.Delta(spot, info.Strike, info.ExpiryDate, iv, info.OptionType)
		if m == nil {
			skippedDelta++
			continue
		}

		amount := t.AmountFloat()
		switch info.OptionType {
		case instrument.Call:
			result.CallsCount++
			result.CallVolume += amount
		case instrument.Put:
			result.PutsCount++
			result.PutVolume += amount
		}
		result.TotalDelta += m.Delta * amount
		analyzed = append(analyzed, t)
	}

	result.TotalTrades = len(analyzed)
	result.Strategies = strategy.Analyze(analyzed)
	result.Blocks = strategy.AnalyzeBlocks(strategy.GroupByBlock(analyzed))

	ac.BlockTrades = result

	s.log.Infow("block trades analyzed",
		"total", result.TotalTrades,
		"calls", result.CallsCount, "puts", result.PutsCount,
		"total_delta", result.TotalDelta,
		"skipped_parse", skippedParse, "skipped_delta", skippedDelta)
	ac.Say("Block trades analyzed.")

	return nil
}
