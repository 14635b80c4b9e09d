package analysis

import (
	"context"

	"hermes/internal/domain/marketdata"
	"hermes/internal/indicators"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// TechnicalStage loads the daily candle history and computes the full
// indicator set over it
type TechnicalStage struct {
	candles marketdata.Repository
	log     *logger.Logger
}

// NewTechnicalStage creates stage 3 of the pipeline
func NewTechnicalStage(candles marketdata.Repository) *TechnicalStage {
	return &TechnicalStage{
		candles: candles,
		log:     logger.Get().With("stage", "technical"),
	}
}

func (s *TechnicalStage) Name() string { return "technical" }

func (s *TechnicalStage) Run(ctx context.Context, ac *Context) error {
	ac.Say("Computing technical indicators...")

	symbol, ok := marketdata.SymbolFor(ac.Currency)
	if !ok {
		ac.Technical.Status = StatusError
		return errors.Wrapf(errors.ErrUnsupportedCurrency, "currency %s", ac.Currency)
	}

	candles, err := s.candles.GetDaily(ctx, symbol, ac.Days)
	if err != nil {
		ac.Technical.Status = StatusError
		return errors.Wrap(err, "loading candles")
	}
	if len(candles) < indicators.MinCandles {
		s.log.Warnw("not enough candles for indicators",
			"symbol", symbol, "got", len(candles), "need", indicators.MinCandles)
		ac.Technical.Status = StatusNoData
		ac.Technical.Candles = candles
		ac.Say("Not enough market history for technical analysis.")
		return nil
	}

	result, err := indicators.Compute(candles)
	if err != nil {
		ac.Technical.Status = StatusError
		ac.Technical.Candles = candles
		return errors.Wrap(err, "computing indicators")
	}

	ac.Technical = TechnicalResult{
		Status:     StatusSuccess,
		Candles:    candles,
		Indicators: result,
	}

	s.log.Infow("technical analysis done",
		"symbol", symbol, "candles", len(candles),
		"overall", result.Signals.Overall,
		"rsi", result.LastRSI)
	ac.Say("Technical indicators computed.")

	return nil
}
