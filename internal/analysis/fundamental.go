package analysis

import (
	"context"
	"strings"

	"hermes/internal/domain/news"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// importantKeywords flags articles likely to move the market
var importantKeywords = []string{
	"sec", "etf", "regulation", "ban", "hack", "halving",
	"fed", "interest rate", "lawsuit", "adoption",
}

var positiveWords = []string{
	"surge", "rally", "gain", "bullish", "approval", "adoption",
	"record", "breakout", "institutional", "upgrade",
}

var negativeWords = []string{
	"crash", "plunge", "drop", "bearish", "hack", "ban",
	"lawsuit", "selloff", "fraud", "downgrade",
}

// FundamentalStage summarizes the recent news backdrop for the currency.
// A nil fetcher means news analysis is not configured; the stage reports
// no data instead of failing the run.
type FundamentalStage struct {
	fetcher news.Fetcher
	log     *logger.Logger
}

// NewFundamentalStage creates stage 2 of the pipeline
func NewFundamentalStage(fetcher news.Fetcher) *FundamentalStage {
	return &FundamentalStage{
		fetcher: fetcher,
		log:     logger.Get().With("stage", "fundamental"),
	}
}

func (s *FundamentalStage) Name() string { return "fundamental" }

func (s *FundamentalStage) Run(ctx context.Context, ac *Context) error {
	if s.fetcher == nil {
		s.log.Debug("news fetcher not configured, skipping")
		ac.Fundamental.Status = StatusNoData
		return nil
	}

	ac.Say("Fetching news...")

	articles, err := s.fetcher.GetNews(ctx, ac.Currency, ac.Days)
	if err != nil {
		ac.Fundamental.Status = StatusError
		return errors.Wrap(err, "fetching news")
	}
	if len(articles) == 0 {
		ac.Fundamental.Status = StatusNoData
		return nil
	}

	result := FundamentalResult{
		Status:        StatusSuccess,
		TotalArticles: len(articles),
		Sources:       make(map[string]int),
	}

	positive, negative := 0, 0
	for _, a := range articles {
		result.Sources[a.Source]++

		text := strings.ToLower(a.Title + " " + a.Description)
		if containsAny(text, importantKeywords) && len(result.ImportantNews) < 5 {
			result.ImportantNews = append(result.ImportantNews, a)
		}
		for _, w := range positiveWords {
			if strings.Contains(text, w) {
				positive++
			}
		}
		for _, w := range negativeWords {
			if strings.Contains(text, w) {
				negative++
			}
		}
	}

	switch {
	case positive > negative:
		result.Sentiment = "positive"
	case negative > positive:
		result.Sentiment = "negative"
	default:
		result.Sentiment = "neutral"
	}

	ac.Fundamental = result

	s.log.Infow("news analyzed",
		"articles", result.TotalArticles,
		"sources", len(result.Sources),
		"important", len(result.ImportantNews),
		"sentiment", result.Sentiment)
	ac.Say("News backdrop analyzed.")

	return nil
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
