package strategy

import (
	"sort"

	"hermes/internal/domain/trade"
	"hermes/pkg/logger"
)

// largeTradeThreshold is the notional amount above which a trade counts as large
const largeTradeThreshold = 100.0

// LargeTrade is one notable trade within a strategy breakdown
type LargeTrade struct {
	Kind    Kind
	Amount  float64
	ComboID string
	TradeID string
}

// Stats aggregates the combo-id strategy breakdown over a trade set
type Stats struct {
	TotalStrategies int
	ByType          map[Kind]int
	VolumeByType    map[Kind]float64
	LargestTrades   []LargeTrade
}

// Analysis is the full combo-id classification of a trade set
type Analysis struct {
	Groups map[Kind][]*trade.Trade
	Stats  Stats
}

// Analyze groups trades by their combo-id strategy label and aggregates
// counts, volumes and the largest trades per archetype
func Analyze(trades []*trade.Trade) Analysis {
	groups := make(map[Kind][]*trade.Trade)
	for _, t := range trades {
		kind := FromComboID(t.ComboIDValue())
		groups[kind] = append(groups[kind], t)
	}

	stats := Stats{
		ByType:       make(map[Kind]int),
		VolumeByType: make(map[Kind]float64),
	}

	for kind, group := range groups {
		var volume float64
		for _, t := range group {
			amount := t.AmountFloat()
			volume += amount
			if amount > largeTradeThreshold {
				stats.LargestTrades = append(stats.LargestTrades, LargeTrade{
					Kind:    kind,
					Amount:  amount,
					ComboID: t.ComboIDValue(),
					TradeID: t.TradeID,
				})
			}
		}
		stats.ByType[kind] = len(group)
		stats.VolumeByType[kind] = volume
		stats.TotalStrategies += len(group)
	}

	sort.Slice(stats.LargestTrades, func(i, j int) bool {
		return stats.LargestTrades[i].Amount > stats.LargestTrades[j].Amount
	})
	if len(stats.LargestTrades) > 15 {
		stats.LargestTrades = stats.LargestTrades[:15]
	}

	return Analysis{Groups: groups, Stats: stats}
}

// GroupByBlock groups trades by block trade id; trades without one are skipped
func GroupByBlock(trades []*trade.Trade) map[string][]*trade.Trade {
	grouped := make(map[string][]*trade.Trade)
	for _, t := range trades {
		if t.BlockTradeID == "" {
			logger.Get().Debugf("trade without block_trade_id: %s", t.TradeID)
			continue
		}
		grouped[t.BlockTradeID] = append(grouped[t.BlockTradeID], t)
	}
	return grouped
}

// BlockSummary describes one block of related trades
type BlockSummary struct {
	BlockID     string
	Size        int
	TotalAmount float64
	Kind        Kind
	Trades      []*trade.Trade
}

// BlockAnalysis aggregates the structural view of block trades
type BlockAnalysis struct {
	TotalBlocks       int
	TradesInBlocks    int
	BlocksBySize      map[int]int
	LargestBlocks     []BlockSummary // top 5 by total amount
	ComplexStrategies []BlockSummary // blocks with more than 2 legs
}

// AnalyzeBlocks summarizes grouped block trades: size distribution, the
// largest blocks and the multi-leg structures, each labeled by the structural
// classifier
func AnalyzeBlocks(grouped map[string][]*trade.Trade) BlockAnalysis {
	analysis := BlockAnalysis{
		TotalBlocks:  len(grouped),
		BlocksBySize: make(map[int]int),
	}

	for blockID, legs := range grouped {
		analysis.TradesInBlocks += len(legs)
		analysis.BlocksBySize[len(legs)]++

		var total float64
		for _, t := range legs {
			total += t.AmountFloat()
		}

		summary := BlockSummary{
			BlockID:     blockID,
			Size:        len(legs),
			TotalAmount: total,
			Kind:        FromLegs(legs),
			Trades:      legs,
		}

		analysis.LargestBlocks = append(analysis.LargestBlocks, summary)
		if len(legs) > 2 {
			analysis.ComplexStrategies = append(analysis.ComplexStrategies, summary)
		}
	}

	sort.Slice(analysis.LargestBlocks, func(i, j int) bool {
		return analysis.LargestBlocks[i].TotalAmount > analysis.LargestBlocks[j].TotalAmount
	})
	if len(analysis.LargestBlocks) > 5 {
		analysis.LargestBlocks = analysis.LargestBlocks[:5]
	}

	return analysis
}
