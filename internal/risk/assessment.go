package risk

import "fmt"

// Risk level classifications
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Sharpe classifications
const (
	SharpeUnfavorable = "unfavorable"
	SharpeAverage     = "average"
	SharpeFavorable   = "favorable"
)

// Position size classifications
const (
	PositionVeryLarge    = "very large"
	PositionLarge        = "large"
	PositionModerate     = "moderate"
	PositionConservative = "conservative"
	PositionUndetermined = "undetermined"
)

// Assessment is the qualitative reading of the risk metrics
type Assessment struct {
	RiskLevel       string
	VolatilityLevel string
	SharpeLevel     string
	PositionLevel   string
	Summary         string
	Recommendation  string
}

// Assess classifies the risk metrics into qualitative levels and produces a
// textual recommendation. The thresholds are fixed policy: VaR95 below 3% is
// low risk, below 7% medium; volatility below 2% low, below 5% medium; Sharpe
// below 0.5 unfavorable, below 1.0 average.
func Assess(m *Metrics) Assessment {
	a := Assessment{}

	switch {
	case m.VaR95 < 3:
		a.RiskLevel = LevelLow
	case m.VaR95 < 7:
		a.RiskLevel = LevelMedium
	default:
		a.RiskLevel = LevelHigh
	}

	switch {
	case m.Volatility < 2:
		a.VolatilityLevel = LevelLow
	case m.Volatility < 5:
		a.VolatilityLevel = LevelMedium
	default:
		a.VolatilityLevel = LevelHigh
	}

	switch {
	case m.Sharpe < 0.5:
		a.SharpeLevel = SharpeUnfavorable
	case m.Sharpe < 1.0:
		a.SharpeLevel = SharpeAverage
	default:
		a.SharpeLevel = SharpeFavorable
	}

	moderate := m.Positions.Moderate
	switch {
	case moderate.CapitalPercent == 0:
		a.PositionLevel = PositionUndetermined
	case moderate.CapitalPercent > 50:
		a.PositionLevel = PositionVeryLarge
	case moderate.CapitalPercent > 25:
		a.PositionLevel = PositionLarge
	case moderate.CapitalPercent > 10:
		a.PositionLevel = PositionModerate
	default:
		a.PositionLevel = PositionConservative
	}

	a.Summary = fmt.Sprintf("risk level: %s, volatility: %s, position size: %s",
		a.RiskLevel, a.VolatilityLevel, a.PositionLevel)
	a.Recommendation = recommend(a.RiskLevel, m.Sharpe, a.PositionLevel)

	return a
}

// recommend combines risk level, Sharpe ratio and position tier into a
// human-readable suggestion
func recommend(riskLevel string, sharpe float64, positionLevel string) string {
	var base string
	switch {
	case riskLevel == LevelLow && sharpe > 0.8:
		base = "Favorable risk/reward profile. The position can be built up."
	case riskLevel == LevelHigh && sharpe < 0.5:
		base = "Unfavorable risk/reward profile. Consider reducing exposure or hedging."
	case riskLevel == LevelHigh:
		base = "High risk. Set a stop-loss or use options protection."
	case riskLevel == LevelMedium:
		base = "Medium risk level. Portfolio diversification is advisable."
	default:
		base = "Low risk level. The current position can be maintained."
	}

	var positionAdvice string
	switch positionLevel {
	case PositionVeryLarge:
		if riskLevel == LevelHigh {
			positionAdvice = " Strongly consider reducing the position size or splitting the entry into parts."
		} else {
			positionAdvice = " Consider reducing the position size or using a staged entry."
		}
	case PositionLarge:
		if riskLevel == LevelHigh {
			positionAdvice = " The position is sizable for this risk level; consider a partial entry or hedging."
		} else {
			positionAdvice = " The position is sizable; a partial entry would lower the risk."
		}
	case PositionModerate:
		positionAdvice = " The position size is balanced against the risk."
	case PositionConservative:
		if riskLevel == LevelLow && sharpe > 0.8 {
			positionAdvice = " The position could be increased while keeping the risk rules."
		} else {
			positionAdvice = " The conservative position size fits current market conditions."
		}
	}

	var tpAdvice string
	switch {
	case sharpe > 1.0:
		tpAdvice = " Recommended risk/reward ratio: at least 1:3."
	case sharpe > 0.5:
		tpAdvice = " Recommended risk/reward ratio: at least 1:2."
	default:
		tpAdvice = " Recommended risk/reward ratio: no less than 1:1.5."
	}

	out := base + positionAdvice
	if positionLevel != PositionUndetermined {
		out += tpAdvice
	}
	return out
}
