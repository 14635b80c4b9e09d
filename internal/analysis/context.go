package analysis

import (
	"time"

	"github.com/google/uuid"

	"hermes/internal/domain/marketdata"
	"hermes/internal/domain/news"
	"hermes/internal/indicators"
	"hermes/internal/risk"
	"hermes/internal/strategy"
)

// Status marks the outcome of one pipeline stage
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusNoData  Status = "no_data"
	StatusError   Status = "error"
)

// BlockTradesResult is the stage 1 output: aggregate option flow statistics.
// Trades whose delta could not be computed are excluded from the totals, not
// zero-filled.
type BlockTradesResult struct {
	Status      Status
	TotalTrades int
	CallsCount  int
	PutsCount   int
	TotalDelta  float64
	CallVolume  float64
	PutVolume   float64
	Strategies  strategy.Analysis
	Blocks      strategy.BlockAnalysis
}

// FundamentalResult is the stage 2 output: the news backdrop
type FundamentalResult struct {
	Status        Status
	TotalArticles int
	Sources       map[string]int
	ImportantNews []news.Article
	Sentiment     string // positive, neutral or negative
}

// TechnicalResult is the stage 3 output
type TechnicalResult struct {
	Status     Status
	Candles    []marketdata.Candle
	Indicators *indicators.Result
}

// RiskResult is the stage 4 output
type RiskResult struct {
	Status     Status
	Metrics    *risk.Metrics
	Assessment risk.Assessment
}

// Recommendation is the stage 5 output: the merged trading suggestion
type Recommendation struct {
	Status Status

	Action          string // BUY, SELL or HOLD
	Reason          string
	OptionSentiment string

	EntryStrategy     string
	StopLossPrice     float64
	StopLossPercent   float64
	TakeProfitPrice   float64
	TakeProfitPercent float64
	PositionPercent   float64
	PositionValue     float64

	Conclusion string
}

// StageFailure records a stage that failed during a run
type StageFailure struct {
	Stage string
	Err   error
}

// Context is the accumulating result of one analysis run. It is created per
// run, threaded through the stages in order, and owned by a single goroutine;
// later stages read the results of earlier ones from it.
type Context struct {
	RunID     uuid.UUID
	Currency  string
	Days      int
	StartedAt time.Time

	BlockTrades    BlockTradesResult
	Fundamental    FundamentalResult
	Technical      TechnicalResult
	Risk           RiskResult
	Recommendation Recommendation

	Failures []StageFailure

	// Progress streams human-readable stage updates to the requesting chat;
	// nil when nobody is listening
	Progress func(message string)
}

// NewContext creates the accumulator for one analysis run
func NewContext(currency string, days int) *Context {
	return &Context{
		RunID:          uuid.New(),
		Currency:       currency,
		Days:           days,
		StartedAt:      time.Now(),
		BlockTrades:    BlockTradesResult{Status: StatusPending},
		Fundamental:    FundamentalResult{Status: StatusPending},
		Technical:      TechnicalResult{Status: StatusPending},
		Risk:           RiskResult{Status: StatusPending},
		Recommendation: Recommendation{Status: StatusPending},
	}
}

// Say reports progress to the listener, if any
func (c *Context) Say(message string) {
	if c.Progress != nil {
		c.Progress(message)
	}
}

// Failed records a stage failure
func (c *Context) Failed(stage string, err error) {
	c.Failures = append(c.Failures, StageFailure{Stage: stage, Err: err})
}
