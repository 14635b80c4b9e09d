package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"hermes/internal/analysis"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Compile-time check
var _ analysis.ConclusionWriter = (*ConclusionWriter)(nil)

const systemPrompt = `You are a derivatives market analyst. You are given the
results of an automated options block-trade analysis. Write a short conclusion
for a trader: 3-5 sentences, plain language, no financial advice disclaimers.`

// ConclusionWriter produces the final analysis conclusion with the OpenAI
// chat completions API
type ConclusionWriter struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
	log     *logger.Logger
}

// NewConclusionWriter creates a GPT-backed conclusion writer
func NewConclusionWriter(apiKey, model string) (*ConclusionWriter, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &ConclusionWriter{
		client:  client,
		model:   openai.ChatModel(model),
		timeout: 30 * time.Second,
		log:     logger.Get().With("component", "openai_conclusion", "model", model),
	}, nil
}

// Conclude summarizes a finished analysis run
func (w *ConclusionWriter) Conclude(ctx context.Context, ac *analysis.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: w.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(ac)),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "openai API call failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(errors.ErrInternal, "no completion choices returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	w.log.Debugw("conclusion generated",
		"length", len(text), "tokens_used", resp.Usage.TotalTokens)

	return text, nil
}

// buildPrompt flattens the analysis context into a plain-text briefing
func buildPrompt(ac *analysis.Context) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Asset: %s, lookback: %d days.\n", ac.Currency, ac.Days)

	if ac.BlockTrades.Status == analysis.StatusSuccess {
		bt := ac.BlockTrades
		fmt.Fprintf(&b, "Option flow: %d block trades, %d calls (volume %.1f), %d puts (volume %.1f), aggregate delta %.1f.\n",
			bt.TotalTrades, bt.CallsCount, bt.CallVolume, bt.PutsCount, bt.PutVolume, bt.TotalDelta)
	}
	if ac.Technical.Status == analysis.StatusSuccess && ac.Technical.Indicators != nil {
		ind := ac.Technical.Indicators
		fmt.Fprintf(&b, "Technicals: close %.2f, RSI %.1f, overall signal %s.\n",
			ind.LastClose, ind.LastRSI, ind.Signals.Overall)
	}
	if ac.Fundamental.Status == analysis.StatusSuccess {
		fmt.Fprintf(&b, "News: %d articles, sentiment %s.\n",
			ac.Fundamental.TotalArticles, ac.Fundamental.Sentiment)
	}
	if ac.Risk.Status == analysis.StatusSuccess && ac.Risk.Metrics != nil {
		m := ac.Risk.Metrics
		fmt.Fprintf(&b, "Risk: 1-day VaR95 %.2f%%, volatility %.2f%%, Sharpe %.2f, risk level %s.\n",
			m.VaR95, m.Volatility, m.Sharpe, ac.Risk.Assessment.RiskLevel)
	}
	fmt.Fprintf(&b, "Recommended action: %s (%s).",
		ac.Recommendation.Action, ac.Recommendation.Reason)

	return b.String()
}
