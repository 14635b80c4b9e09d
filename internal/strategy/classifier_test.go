package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/trade"
)

func newTrade(id, instrument, blockID, comboID string, amount float64) *trade.Trade {
	t := &trade.Trade{
		TradeID:        id,
		InstrumentName: instrument,
		BlockTradeID:   blockID,
		Amount:         decimal.NewFromFloat(amount),
	}
	if comboID != "" {
		t.ComboID = &comboID
	}
	return t
}

func TestFromComboID(t *testing.T) {
	tests := []struct {
		comboID string
		want    Kind
	}{
		{"", SingleTrade},
		{"BTC-RR-12345", RiskReversal},
		{"ETH-STRD-99", Straddle},
		{"BTC-BF-1", Butterfly},
		{"BTC-IC-7", IronCondor},
		{"ETH-CS-3", CallSpread},
		{"BTC-PS-4", PutSpread},
		{"BTC-FLY-1", Unknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FromComboID(tt.comboID), "combo id %q", tt.comboID)
	}
}

func TestFromLegs_TwoLegShapes(t *testing.T) {
	straddle := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-100000-C", "b1", "", 10),
		newTrade("2", "BTC-28MAR25-100000-P", "b1", "", 10),
	}
	assert.Equal(t, Straddle, FromLegs(straddle))

	riskReversal := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-110000-C", "b1", "", 10),
		newTrade("2", "BTC-28MAR25-90000-P", "b1", "", 10),
	}
	assert.Equal(t, RiskReversal, FromLegs(riskReversal))

	callSpread := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-100000-C", "b1", "", 10),
		newTrade("2", "BTC-28MAR25-110000-C", "b1", "", 10),
	}
	assert.Equal(t, CallSpread, FromLegs(callSpread))

	putSpread := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-90000-P", "b1", "", 10),
		newTrade("2", "BTC-28MAR25-80000-P", "b1", "", 10),
	}
	assert.Equal(t, PutSpread, FromLegs(putSpread))
}

func TestFromLegs_FourLegsStayAmbiguous(t *testing.T) {
	legs := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-90000-P", "b1", "", 10),
		newTrade("2", "BTC-28MAR25-95000-P", "b1", "", 10),
		newTrade("3", "BTC-28MAR25-105000-C", "b1", "", 10),
		newTrade("4", "BTC-28MAR25-110000-C", "b1", "", 10),
	}
	assert.Equal(t, IronCondorOrButterfly, FromLegs(legs))
}

func TestFromLegs_OddShapesAreComplex(t *testing.T) {
	three := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-90000-P", "b1", "", 10),
		newTrade("2", "BTC-28MAR25-100000-C", "b1", "", 10),
		newTrade("3", "BTC-28MAR25-110000-C", "b1", "", 10),
	}
	assert.Equal(t, Complex, FromLegs(three))

	one := []*trade.Trade{newTrade("1", "BTC-28MAR25-90000-P", "b1", "", 10)}
	assert.Equal(t, Complex, FromLegs(one))
}

func TestAnalyze(t *testing.T) {
	trades := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-100000-C", "", "", 50),
		newTrade("2", "BTC-28MAR25-100000-C", "", "BTC-RR-1", 150),
		newTrade("3", "BTC-28MAR25-90000-P", "", "BTC-RR-1", 200),
		newTrade("4", "BTC-28MAR25-95000-P", "", "BTC-STRD-2", 30),
	}

	a := Analyze(trades)

	assert.Equal(t, 4, a.Stats.TotalStrategies)
	assert.Equal(t, 1, a.Stats.ByType[SingleTrade])
	assert.Equal(t, 2, a.Stats.ByType[RiskReversal])
	assert.Equal(t, 1, a.Stats.ByType[Straddle])

	assert.InDelta(t, 350, a.Stats.VolumeByType[RiskReversal], 1e-9)
	assert.InDelta(t, 50, a.Stats.VolumeByType[SingleTrade], 1e-9)

	// only trades above the large threshold make the list, biggest first
	require.Len(t, a.Stats.LargestTrades, 2)
	assert.Equal(t, "3", a.Stats.LargestTrades[0].TradeID)
	assert.Equal(t, "2", a.Stats.LargestTrades[1].TradeID)
}

func TestGroupByBlock(t *testing.T) {
	trades := []*trade.Trade{
		newTrade("1", "BTC-28MAR25-100000-C", "block-a", "", 10),
		newTrade("2", "BTC-28MAR25-100000-P", "block-a", "", 10),
		newTrade("3", "BTC-28MAR25-90000-P", "block-b", "", 10),
		newTrade("4", "BTC-28MAR25-90000-P", "", "", 10),
	}

	grouped := GroupByBlock(trades)
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["block-a"], 2)
	assert.Len(t, grouped["block-b"], 1)
}

func TestAnalyzeBlocks(t *testing.T) {
	grouped := map[string][]*trade.Trade{
		"block-a": {
			newTrade("1", "BTC-28MAR25-100000-C", "block-a", "", 100),
			newTrade("2", "BTC-28MAR25-100000-P", "block-a", "", 100),
		},
		"block-b": {
			newTrade("3", "BTC-28MAR25-90000-P", "block-b", "", 10),
			newTrade("4", "BTC-28MAR25-95000-P", "block-b", "", 10),
			newTrade("5", "BTC-28MAR25-105000-C", "block-b", "", 10),
		},
	}

	a := AnalyzeBlocks(grouped)

	assert.Equal(t, 2, a.TotalBlocks)
	assert.Equal(t, 5, a.TradesInBlocks)
	assert.Equal(t, 1, a.BlocksBySize[2])
	assert.Equal(t, 1, a.BlocksBySize[3])

	require.Len(t, a.LargestBlocks, 2)
	assert.Equal(t, "block-a", a.LargestBlocks[0].BlockID)
	assert.Equal(t, Straddle, a.LargestBlocks[0].Kind)

	// only the 3-leg block counts as complex
	require.Len(t, a.ComplexStrategies, 1)
	assert.Equal(t, "block-b", a.ComplexStrategies[0].BlockID)
	assert.Equal(t, Complex, a.ComplexStrategies[0].Kind)
}
