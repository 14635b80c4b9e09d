package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"hermes/internal/analysis"
	"hermes/internal/strategy"
)

// Generator renders a finished analysis run as a Telegram Markdown message
type Generator struct{}

// NewGenerator creates a report generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Render produces the full report text. Sections for stages that produced no
// data are replaced with a one-line note instead of being dropped silently.
func (g *Generator) Render(ac *analysis.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s block trade analysis*\n", ac.Currency)
	fmt.Fprintf(&b, "_Last %d days, run %s_\n\n", ac.Days, ac.RunID.String()[:8])

	g.renderBlockTrades(&b, ac)
	g.renderFundamental(&b, ac)
	g.renderTechnical(&b, ac)
	g.renderRisk(&b, ac)
	g.renderRecommendation(&b, ac)

	if len(ac.Failures) > 0 {
		names := make([]string, 0, len(ac.Failures))
		for _, f := range ac.Failures {
			names = append(names, f.Stage)
		}
		fmt.Fprintf(&b, "\n_Partial results: the %s stage(s) failed._\n", strings.Join(names, ", "))
	}

	return b.String()
}

func (g *Generator) renderBlockTrades(b *strings.Builder, ac *analysis.Context) {
	b.WriteString("*Option flow*\n")

	bt := ac.BlockTrades
	if bt.Status != analysis.StatusSuccess {
		b.WriteString("No block trades for the selected period.\n\n")
		return
	}

	fmt.Fprintf(b, "Trades: %d (%d calls / %d puts)\n", bt.TotalTrades, bt.CallsCount, bt.PutsCount)
	fmt.Fprintf(b, "Volume: %s calls, %s puts\n",
		humanize.CommafWithDigits(bt.CallVolume, 1), humanize.CommafWithDigits(bt.PutVolume, 1))
	fmt.Fprintf(b, "Aggregate delta: %s\n", humanize.CommafWithDigits(bt.TotalDelta, 1))

	if len(bt.Strategies.Stats.ByType) > 0 {
		b.WriteString("Strategies:\n")
		for kind, count := range bt.Strategies.Stats.ByType {
			fmt.Fprintf(b, "  • %s: %d (volume %s)\n",
				kind, count, humanize.CommafWithDigits(bt.Strategies.Stats.VolumeByType[kind], 1))
		}
	}

	if bt.Blocks.TotalBlocks > 0 {
		fmt.Fprintf(b, "Blocks: %d holding %d trades\n", bt.Blocks.TotalBlocks, bt.Blocks.TradesInBlocks)
		for _, block := range bt.Blocks.LargestBlocks {
			fmt.Fprintf(b, "  • %s, %d legs, volume %s\n",
				block.Kind, block.Size, humanize.CommafWithDigits(block.TotalAmount, 1))
			if desc := strategy.Describe(block.Kind); block.Kind != strategy.SingleTrade && desc != "" {
				fmt.Fprintf(b, "    _%s_\n", desc)
			}
		}
	}
	b.WriteString("\n")
}

func (g *Generator) renderFundamental(b *strings.Builder, ac *analysis.Context) {
	b.WriteString("*News backdrop*\n")

	f := ac.Fundamental
	if f.Status != analysis.StatusSuccess {
		b.WriteString("News analysis unavailable.\n\n")
		return
	}

	fmt.Fprintf(b, "Articles: %d from %d sources, sentiment %s\n", f.TotalArticles, len(f.Sources), f.Sentiment)
	for _, a := range f.ImportantNews {
		fmt.Fprintf(b, "  • [%s](%s) (%s)\n", a.Title, a.URL, a.Source)
	}
	b.WriteString("\n")
}

func (g *Generator) renderTechnical(b *strings.Builder, ac *analysis.Context) {
	b.WriteString("*Technical picture*\n")

	t := ac.Technical
	if t.Status != analysis.StatusSuccess || t.Indicators == nil {
		b.WriteString("Not enough market history for indicators.\n\n")
		return
	}

	ind := t.Indicators
	fmt.Fprintf(b, "Close: %s\n", humanize.CommafWithDigits(ind.LastClose, 2))
	fmt.Fprintf(b, "RSI: %.1f (%s), MACD: %s, trend: %s\n",
		ind.LastRSI, ind.Signals.RSI, ind.Signals.MACD, ind.Signals.Trend)
	fmt.Fprintf(b, "Overall signal: *%s*\n", ind.Signals.Overall)

	if len(ind.SupportLevels) > 0 {
		fmt.Fprintf(b, "Support: %s\n", levels(ind.SupportLevels))
	}
	if len(ind.ResistanceLevels) > 0 {
		fmt.Fprintf(b, "Resistance: %s\n", levels(ind.ResistanceLevels))
	}
	b.WriteString("\n")
}

func (g *Generator) renderRisk(b *strings.Builder, ac *analysis.Context) {
	b.WriteString("*Risk*\n")

	r := ac.Risk
	if r.Status != analysis.StatusSuccess || r.Metrics == nil {
		b.WriteString("Risk assessment unavailable.\n\n")
		return
	}

	m := r.Metrics
	fmt.Fprintf(b, "VaR 95%%: %.2f%% (1d), %.2f%% (5d), %.2f%% (10d); VaR 99%%: %.2f%%\n",
		m.VaR95, m.VaR5D95, m.VaR10D95, m.VaR99)
	fmt.Fprintf(b, "Volatility: %.2f%%, Sharpe: %.2f\n", m.Volatility, m.Sharpe)
	fmt.Fprintf(b, "Risk level: *%s*\n", r.Assessment.RiskLevel)
	fmt.Fprintf(b, "Stop-loss (moderate): %.1f%% at %s\n",
		m.StopLoss.Moderate.Percent, humanize.CommafWithDigits(m.StopLoss.Moderate.PriceLevel, 2))
	if m.Positions.Moderate.CapitalPercent > 0 {
		fmt.Fprintf(b, "Position (moderate): %.1f%% of capital (%s)\n",
			m.Positions.Moderate.CapitalPercent, humanize.CommafWithDigits(m.Positions.Moderate.Value, 0))
	}
	fmt.Fprintf(b, "_%s_\n\n", r.Assessment.Recommendation)
}

func (g *Generator) renderRecommendation(b *strings.Builder, ac *analysis.Context) {
	b.WriteString("*Recommendation*\n")

	rec := ac.Recommendation
	if rec.Status != analysis.StatusSuccess {
		b.WriteString("No recommendation produced.\n")
		return
	}

	fmt.Fprintf(b, "Action: *%s* (%s)\n", rec.Action, rec.Reason)
	fmt.Fprintf(b, "Entry: %s\n", rec.EntryStrategy)
	if rec.StopLossPrice > 0 {
		fmt.Fprintf(b, "Stop-loss: %s (%.1f%%), take-profit: %s (%.1f%%)\n",
			humanize.CommafWithDigits(rec.StopLossPrice, 2), rec.StopLossPercent,
			humanize.CommafWithDigits(rec.TakeProfitPrice, 2), rec.TakeProfitPercent)
	}
	if rec.PositionPercent > 0 {
		fmt.Fprintf(b, "Position: %.1f%% of capital (%s)\n",
			rec.PositionPercent, humanize.CommafWithDigits(rec.PositionValue, 0))
	}
	if rec.Conclusion != "" {
		fmt.Fprintf(b, "\n%s\n", rec.Conclusion)
	}
}

func levels(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = humanize.CommafWithDigits(v, 2)
	}
	return strings.Join(parts, ", ")
}
