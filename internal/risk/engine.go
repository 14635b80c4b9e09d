package risk

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// DefaultSimulations is the Monte Carlo sample count per VaR estimate
const DefaultSimulations = 10000

// RiskRewardRatio is the recommended risk/reward ratio attached to every sizing
const RiskRewardRatio = 2.0

// Engine computes risk metrics from a historical return series
type Engine struct {
	simulations int
	log         *logger.Logger
}

// NewEngine creates a risk engine with the default simulation count
func NewEngine() *Engine {
	return &Engine{
		simulations: DefaultSimulations,
		log:         logger.Get().With("component", "risk"),
	}
}

// VaRMonteCarlo estimates Value at Risk by parametric Monte Carlo: simulated
// returns are drawn from a normal distribution with mean scaled by the horizon
// and stddev scaled by sqrt(horizon), and VaR is the absolute value of the
// (1-confidence) percentile of the simulated distribution.
//
// Each call owns its random source, so concurrent analyses never share
// mutable random state.
func (e *Engine) VaRMonteCarlo(returns []float64, confidence float64, horizon int) float64 {
	return e.varMonteCarlo(returns, confidence, horizon, rand.NewSource(time.Now().UnixNano()))
}

func (e *Engine) varMonteCarlo(returns []float64, confidence float64, horizon int, src rand.Source) float64 {
	if len(returns) == 0 {
		return 0
	}

	mean := mean(returns)
	std := stddev(returns)
	if std == 0 {
		return 0
	}

	rng := rand.New(src)
	h := float64(horizon)
	simulated := make([]float64, e.simulations)
	for i := range simulated {
		simulated[i] = mean*h + std*math.Sqrt(h)*rng.NormFloat64()
	}

	return math.Abs(percentile(simulated, 100*(1-confidence)))
}

// Volatility is the stddev of returns expressed as a percentage
func (e *Engine) Volatility(returns []float64) float64 {
	return stddev(returns) * 100
}

// SharpeRatio is the excess mean return per unit of volatility.
// A zero-stddev series yields 0 rather than a division by zero.
func (e *Engine) SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return (mean(returns) - riskFreeRate) / std
}

// StopLossTier is one stop-loss recommendation: distance in percent and the
// absolute price level for a long position
type StopLossTier struct {
	Percent    float64
	PriceLevel float64
}

// StopLoss holds the three volatility-derived stop-loss tiers
type StopLoss struct {
	Conservative StopLossTier
	Moderate     StopLossTier
	Aggressive   StopLossTier
}

// RecommendStopLoss derives stop-loss tiers from volatility: conservative is
// 1.5x volatility capped at 10%, aggressive is the volatility itself, moderate
// the mean of the two. Price levels assume a long position.
func (e *Engine) RecommendStopLoss(currentPrice, volatilityPercent float64) StopLoss {
	conservative := math.Min(volatilityPercent*1.5, 10.0)
	aggressive := volatilityPercent
	moderate := (conservative + aggressive) / 2

	level := func(pct float64) float64 {
		return currentPrice * (1 - pct/100)
	}

	return StopLoss{
		Conservative: StopLossTier{Percent: conservative, PriceLevel: level(conservative)},
		Moderate:     StopLossTier{Percent: moderate, PriceLevel: level(moderate)},
		Aggressive:   StopLossTier{Percent: aggressive, PriceLevel: level(aggressive)},
	}
}

// PositionSize is a capital-at-risk position sizing recommendation
type PositionSize struct {
	Fraction        float64 // share of capital, 1.0 = 100%
	Value           float64 // monetary position value
	CapitalPercent  float64
	PotentialLoss   float64 // loss if the stop-loss triggers
	StopLossPercent float64
	RiskRewardRatio float64
}

// CalculatePositionSize sizes a position so the loss at the volatility-widened
// stop equals the maximum risk amount. Non-positive stop-loss or volatility is
// an error; no computation is attempted.
//
// The potential loss uses the unadjusted stop-loss percent while the sizing
// uses the volatility-adjusted one. The asymmetry is carried over from the
// reference behavior; see DESIGN.md.
func (e *Engine) CalculatePositionSize(capital, maxRiskPercent, stopLossPercent, volatilityPercent float64) (PositionSize, error) {
	if stopLossPercent <= 0 || volatilityPercent <= 0 {
		return PositionSize{}, errors.Wrapf(errors.ErrInvalidInput,
			"stop-loss %.2f%% and volatility %.2f%% must be positive", stopLossPercent, volatilityPercent)
	}

	maxRiskAmount := capital * (maxRiskPercent / 100)
	adjustedSL := stopLossPercent * (1 + volatilityPercent/100)

	fraction := maxRiskAmount / (adjustedSL / 100 * capital)
	value := capital * fraction

	return PositionSize{
		Fraction:        fraction,
		Value:           value,
		CapitalPercent:  fraction * 100,
		PotentialLoss:   value * (stopLossPercent / 100),
		StopLossPercent: stopLossPercent,
		RiskRewardRatio: RiskRewardRatio,
	}, nil
}

// PositionTiers holds a sizing per stop-loss tier
type PositionTiers struct {
	Conservative PositionSize
	Moderate     PositionSize
	Aggressive   PositionSize
}

// Metrics is the full risk picture for one analysis run
type Metrics struct {
	VaR95    float64 // percent, 1-day horizon
	VaR99    float64
	VaR5D95  float64
	VaR10D95 float64

	Volatility float64 // percent
	Sharpe     float64

	CurrentPrice    float64
	Capital         float64
	PotentialLoss95 float64

	StopLoss  StopLoss
	Positions PositionTiers
}

// Compute runs the whole risk calculation for a return series: the VaR grid,
// volatility, Sharpe ratio, stop-loss tiers and a position sizing per tier.
// The Sharpe ratio is taken over the raw daily returns with no risk-free
// adjustment; an annualized rate must not be subtracted from per-day means.
func (e *Engine) Compute(returns []float64, currentPrice, capital, maxRiskPercent float64) (*Metrics, error) {
	if len(returns) < 2 {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"got %d returns, need at least 2", len(returns))
	}

	m := &Metrics{
		VaR95:        e.VaRMonteCarlo(returns, 0.95, 1) * 100,
		VaR99:        e.VaRMonteCarlo(returns, 0.99, 1) * 100,
		VaR5D95:      e.VaRMonteCarlo(returns, 0.95, 5) * 100,
		VaR10D95:     e.VaRMonteCarlo(returns, 0.95, 10) * 100,
		Volatility:   e.Volatility(returns),
		Sharpe:       e.SharpeRatio(returns, 0),
		CurrentPrice: currentPrice,
		Capital:      capital,
	}
	m.PotentialLoss95 = capital * (m.VaR95 / 100)
	m.StopLoss = e.RecommendStopLoss(currentPrice, m.Volatility)

	tiers := []struct {
		tier *PositionSize
		sl   StopLossTier
	}{
		{&m.Positions.Conservative, m.StopLoss.Conservative},
		{&m.Positions.Moderate, m.StopLoss.Moderate},
		{&m.Positions.Aggressive, m.StopLoss.Aggressive},
	}
	for _, t := range tiers {
		pos, err := e.CalculatePositionSize(capital, maxRiskPercent, t.sl.Percent, m.Volatility)
		if err != nil {
			e.log.Warnf("position sizing skipped: %v", err)
			continue
		}
		*t.tier = pos
	}

	return m, nil
}

// mean is the arithmetic mean
func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev is the sample standard deviation (n-1 denominator)
func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// percentile computes the p-th percentile with linear interpolation
func percentile(vals []float64, p float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	frac := rank - float64(lower)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
