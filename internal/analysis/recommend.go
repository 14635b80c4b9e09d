package analysis

import (
	"context"
	"fmt"
	"strings"

	"hermes/pkg/logger"
)

// deltaSentimentThreshold is the aggregate delta beyond which option flow
// counts as directional
const deltaSentimentThreshold = 100.0

// defaultStopLossPercent is used when the risk stage produced no tiers
const defaultStopLossPercent = 5.0

// ConclusionWriter produces the final free-form conclusion for a finished
// analysis. Implementations may call an LLM; a nil writer falls back to a
// templated summary.
type ConclusionWriter interface {
	Conclude(ctx context.Context, ac *Context) (string, error)
}

// RecommendStage merges the results of the earlier stages into a single
// trading recommendation
type RecommendStage struct {
	writer ConclusionWriter
	log    *logger.Logger
}

// NewRecommendStage creates stage 5 of the pipeline
func NewRecommendStage(writer ConclusionWriter) *RecommendStage {
	return &RecommendStage{
		writer: writer,
		log:    logger.Get().With("stage", "recommendation"),
	}
}

func (s *RecommendStage) Name() string { return "recommendation" }

// Run votes the three sentiment sources (option flow, technical signals,
// news backdrop) into an action. Two bullish votes make a BUY, two bearish
// a SELL, anything else a HOLD. Levels come from the risk stage when it
// succeeded and from a fixed default stop otherwise.
func (s *RecommendStage) Run(ctx context.Context, ac *Context) error {
	ac.Say("Building recommendation...")

	rec := Recommendation{Status: StatusSuccess}

	rec.OptionSentiment = optionSentiment(ac)
	technical := technicalSentiment(ac)
	fundamental := newsSentiment(ac)

	bulls, bears := 0, 0
	for _, v := range []string{rec.OptionSentiment, technical, fundamental} {
		switch v {
		case "bullish":
			bulls++
		case "bearish":
			bears++
		}
	}

	switch {
	case bulls >= 2:
		rec.Action = "BUY"
	case bears >= 2:
		rec.Action = "SELL"
	default:
		rec.Action = "HOLD"
	}
	rec.Reason = fmt.Sprintf("option flow %s, technicals %s, news %s",
		rec.OptionSentiment, technical, fundamental)

	s.applyLevels(ac, &rec)
	rec.EntryStrategy = entryStrategy(rec.Action, ac)

	// the writer reads the recommendation off the context, so publish it first
	ac.Recommendation = rec
	ac.Recommendation.Conclusion = s.conclude(ctx, ac, &rec)

	s.log.Infow("recommendation ready",
		"action", rec.Action,
		"option_sentiment", rec.OptionSentiment,
		"technical", technical, "news", fundamental)
	ac.Say("Recommendation ready.")

	return nil
}

// applyLevels fills stop-loss, take-profit and position sizing from the risk
// stage. Take-profit distance is twice the stop distance.
func (s *RecommendStage) applyLevels(ac *Context, rec *Recommendation) {
	slPercent := defaultStopLossPercent
	var price float64

	if ac.Risk.Status == StatusSuccess && ac.Risk.Metrics != nil {
		m := ac.Risk.Metrics
		price = m.CurrentPrice
		if m.StopLoss.Moderate.Percent > 0 {
			slPercent = m.StopLoss.Moderate.Percent
		}
		rec.PositionPercent = m.Positions.Moderate.CapitalPercent
		rec.PositionValue = m.Positions.Moderate.Value
	} else if ac.Technical.Status == StatusSuccess && ac.Technical.Indicators != nil {
		price = ac.Technical.Indicators.LastClose
	}

	rec.StopLossPercent = slPercent
	rec.TakeProfitPercent = slPercent * 2

	if price > 0 {
		if rec.Action == "SELL" {
			rec.StopLossPrice = price * (1 + slPercent/100)
			rec.TakeProfitPrice = price * (1 - rec.TakeProfitPercent/100)
		} else {
			rec.StopLossPrice = price * (1 - slPercent/100)
			rec.TakeProfitPrice = price * (1 + rec.TakeProfitPercent/100)
		}
	}
}

// optionSentiment reads the aggregate delta exposure as a directional vote
func optionSentiment(ac *Context) string {
	if ac.BlockTrades.Status != StatusSuccess {
		return "neutral"
	}
	switch {
	case ac.BlockTrades.TotalDelta > deltaSentimentThreshold:
		return "bullish"
	case ac.BlockTrades.TotalDelta < -deltaSentimentThreshold:
		return "bearish"
	default:
		return "neutral"
	}
}

func technicalSentiment(ac *Context) string {
	if ac.Technical.Status != StatusSuccess || ac.Technical.Indicators == nil {
		return "neutral"
	}
	overall := ac.Technical.Indicators.Signals.Overall
	switch {
	case strings.Contains(overall, "bullish"):
		return "bullish"
	case strings.Contains(overall, "bearish"):
		return "bearish"
	default:
		return "neutral"
	}
}

func newsSentiment(ac *Context) string {
	if ac.Fundamental.Status != StatusSuccess {
		return "neutral"
	}
	switch ac.Fundamental.Sentiment {
	case "positive":
		return "bullish"
	case "negative":
		return "bearish"
	default:
		return "neutral"
	}
}

func entryStrategy(action string, ac *Context) string {
	switch action {
	case "BUY":
		if ac.Technical.Status == StatusSuccess && ac.Technical.Indicators != nil &&
			len(ac.Technical.Indicators.SupportLevels) > 0 {
			return "Scaled long entry near the nearest support level"
		}
		return "Scaled long entry on pullbacks"
	case "SELL":
		if ac.Technical.Status == StatusSuccess && ac.Technical.Indicators != nil &&
			len(ac.Technical.Indicators.ResistanceLevels) > 0 {
			return "Short entry near the nearest resistance level"
		}
		return "Reduce exposure or hedge with puts"
	default:
		return "Stay flat and wait for a clearer signal"
	}
}

// conclude asks the configured writer for a free-form conclusion and falls
// back to a template when the writer is missing or fails
func (s *RecommendStage) conclude(ctx context.Context, ac *Context, rec *Recommendation) string {
	if s.writer != nil {
		text, err := s.writer.Conclude(ctx, ac)
		if err == nil && text != "" {
			return text
		}
		if err != nil {
			s.log.Warnw("conclusion writer failed, using template", "error", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s over the last %d days: %s.",
		rec.Action, ac.Currency, ac.Days, rec.Reason)
	if ac.Risk.Status == StatusSuccess {
		fmt.Fprintf(&b, " Risk level is %s. %s",
			ac.Risk.Assessment.RiskLevel, ac.Risk.Assessment.Recommendation)
	}
	return b.String()
}
