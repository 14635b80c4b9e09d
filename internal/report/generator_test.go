package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/analysis"
	"hermes/internal/risk"
	"hermes/pkg/errors"
)

func TestRender_FullRun(t *testing.T) {
	ac := analysis.NewContext("BTC", 30)

	ac.BlockTrades = analysis.BlockTradesResult{
		Status:      analysis.StatusSuccess,
		TotalTrades: 42,
		CallsCount:  30,
		PutsCount:   12,
		CallVolume:  1500,
		PutVolume:   400,
		TotalDelta:  820.5,
	}
	ac.Fundamental = analysis.FundamentalResult{
		Status:        analysis.StatusSuccess,
		TotalArticles: 17,
		Sources:       map[string]int{"Wire A": 10, "Wire B": 7},
		Sentiment:     "positive",
	}

	metrics := &risk.Metrics{
		VaR95: 3.2, VaR99: 4.8, VaR5D95: 7.1, VaR10D95: 10.4,
		Volatility: 2.9, Sharpe: 0.8, CurrentPrice: 100000,
	}
	metrics.StopLoss.Moderate.Percent = 4.0
	metrics.StopLoss.Moderate.PriceLevel = 96000
	ac.Risk = analysis.RiskResult{
		Status:     analysis.StatusSuccess,
		Metrics:    metrics,
		Assessment: risk.Assess(metrics),
	}
	ac.Recommendation = analysis.Recommendation{
		Status:        analysis.StatusSuccess,
		Action:        "BUY",
		Reason:        "option flow bullish, technicals neutral, news bullish",
		EntryStrategy: "Scaled long entry on pullbacks",
		Conclusion:    "Flow and news both lean long.",
	}

	text := NewGenerator().Render(ac)

	assert.Contains(t, text, "*BTC block trade analysis*")
	assert.Contains(t, text, "42 (30 calls / 12 puts)")
	assert.Contains(t, text, "sentiment positive")
	assert.Contains(t, text, "VaR 95%: 3.20%")
	assert.Contains(t, text, "Action: *BUY*")
	assert.Contains(t, text, "Flow and news both lean long.")
	assert.NotContains(t, text, "Partial results")
}

func TestRender_PartialRun(t *testing.T) {
	ac := analysis.NewContext("ETH", 90)
	ac.Failed("technical", errors.New("clickhouse down"))

	text := NewGenerator().Render(ac)

	// every section renders even when its stage produced nothing
	assert.Contains(t, text, "No block trades")
	assert.Contains(t, text, "News analysis unavailable")
	assert.Contains(t, text, "Not enough market history")
	assert.Contains(t, text, "Risk assessment unavailable")
	assert.Contains(t, text, "No recommendation")
	assert.Contains(t, text, "Partial results")
	assert.Contains(t, text, "technical")
}

func TestRender_RunIDPrefix(t *testing.T) {
	ac := analysis.NewContext("BTC", 7)
	text := NewGenerator().Render(ac)

	require.Contains(t, text, ac.RunID.String()[:8])
	assert.False(t, strings.Contains(text, ac.RunID.String()), "full UUID is noise in chat")
}
