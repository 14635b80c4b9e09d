package analysis

import (
	"context"

	"hermes/internal/domain/marketdata"
	"hermes/internal/risk"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// RiskStage runs the Monte Carlo risk model over the candle history. It
// reuses the candles the technical stage already loaded when available and
// falls back to its own query when that stage produced nothing.
type RiskStage struct {
	candles marketdata.Repository
	engine  *risk.Engine

	capital        float64
	maxRiskPercent float64

	log *logger.Logger
}

// NewRiskStage creates stage 4 of the pipeline
func NewRiskStage(candles marketdata.Repository, engine *risk.Engine, capital, maxRiskPercent float64) *RiskStage {
	return &RiskStage{
		candles:        candles,
		engine:         engine,
		capital:        capital,
		maxRiskPercent: maxRiskPercent,
		log:            logger.Get().With("stage", "risk"),
	}
}

func (s *RiskStage) Name() string { return "risk" }

func (s *RiskStage) Run(ctx context.Context, ac *Context) error {
	ac.Say("Assessing risk...")

	candles := ac.Technical.Candles
	if len(candles) == 0 {
		symbol, ok := marketdata.SymbolFor(ac.Currency)
		if !ok {
			ac.Risk.Status = StatusError
			return errors.Wrapf(errors.ErrUnsupportedCurrency, "currency %s", ac.Currency)
		}
		var err error
		candles, err = s.candles.GetDaily(ctx, symbol, ac.Days)
		if err != nil {
			ac.Risk.Status = StatusError
			return errors.Wrap(err, "loading candles")
		}
	}

	returns := marketdata.Returns(candles)
	if len(returns) < 2 {
		s.log.Warnw("not enough returns for risk metrics", "returns", len(returns))
		ac.Risk.Status = StatusNoData
		ac.Say("Not enough market history for risk assessment.")
		return nil
	}

	currentPrice := candles[len(candles)-1].Close
	metrics, err := s.engine.Compute(returns, currentPrice, s.capital, s.maxRiskPercent)
	if err != nil {
		ac.Risk.Status = StatusError
		return errors.Wrap(err, "computing risk metrics")
	}

	ac.Risk = RiskResult{
		Status:     StatusSuccess,
		Metrics:    metrics,
		Assessment: risk.Assess(metrics),
	}

	s.log.Infow("risk assessed",
		"var95", metrics.VaR95, "volatility", metrics.Volatility,
		"sharpe", metrics.Sharpe, "risk_level", ac.Risk.Assessment.RiskLevel)
	ac.Say("Risk assessment done.")

	return nil
}
