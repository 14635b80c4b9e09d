package pricing

import (
	"math"
	"time"

	"hermes/internal/instrument"
	"hermes/pkg/logger"
)

// DefaultRiskFreeRate is the annualized risk-free rate used when none is configured
const DefaultRiskFreeRate = 0.05

// OptionMetrics is the result of a delta computation with its inputs echoed back
type OptionMetrics struct {
	Delta        float64
	Spot         float64
	Strike       float64
	DaysToExpiry float64
	Volatility   float64
	OptionType   instrument.OptionType
	Rate         float64
}

// Engine computes option greeks with the Black-Scholes model
type Engine struct {
	rate float64
	log  *logger.Logger
}

// NewEngine creates a pricing engine with the given risk-free rate
func NewEngine(rate float64) *Engine {
	if rate == 0 {
		rate = DefaultRiskFreeRate
	}
	return &Engine{
		rate: rate,
		log:  logger.Get().With("component", "pricing"),
	}
}

// Delta computes the Black-Scholes delta for an option. It returns nil, not
// an error, when any precondition fails: missing inputs, an already-expired
// option, or an unrecognized option type. Callers exclude nil results from
// aggregate statistics rather than zero-filling them.
//
// Volatility above 1 is treated as a percentage and divided by 100.
func (e *Engine) Delta(spot, strike float64, expiry time.Time, volatility float64, optionType instrument.OptionType) *OptionMetrics {
	if spot == 0 || strike == 0 || expiry.IsZero() || volatility == 0 {
		e.log.Warnw("incomplete inputs for delta calculation",
			"spot", spot, "strike", strike, "volatility", volatility)
		return nil
	}

	days := math.Floor(time.Until(expiry).Hours() / 24)
	T := days / 365.0
	if T <= 0 {
		e.log.Warnw("option expired or expiring today", "expiry", expiry)
		return nil
	}

	sigma := volatility
	if sigma > 1 {
		sigma = sigma / 100
	}

	d1 := (math.Log(spot/strike) + (e.rate+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))

	var delta float64
	switch optionType {
	case instrument.Call:
		delta = normCDF(d1)
	case instrument.Put:
		delta = normCDF(d1) - 1
	default:
		e.log.Errorf("unknown option type: %s", optionType)
		return nil
	}

	return &OptionMetrics{
		Delta:        delta,
		Spot:         spot,
		Strike:       strike,
		DaysToExpiry: days,
		Volatility:   volatility,
		OptionType:   optionType,
		Rate:         e.rate,
	}
}

// ValidateInputs checks that the pricing inputs are positive
func (e *Engine) ValidateInputs(spot, strike, volatility float64) bool {
	if spot <= 0 {
		e.log.Error("spot price must be positive")
		return false
	}
	if strike <= 0 {
		e.log.Error("strike price must be positive")
		return false
	}
	if volatility <= 0 {
		e.log.Error("volatility must be positive")
		return false
	}
	return true
}

// normCDF is the standard normal cumulative distribution function
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
