package indicators

// Trend directions
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// Per-indicator signal values
const (
	SignalNeutral    = "neutral"
	SignalOverbought = "overbought"
	SignalOversold   = "oversold"
	SignalBullish    = "bullish"
	SignalBearish    = "bearish"
)

// Aggregate signal classifications
const (
	OverallStrongBullish   = "strong bullish"
	OverallModerateBullish = "moderate bullish"
	OverallNeutral         = "neutral"
	OverallModerateBearish = "moderate bearish"
	OverallStrongBearish   = "strong bearish"
)

// Signals is the qualitative reading of the indicator set
type Signals struct {
	Trend     string
	RSI       string
	MACD      string
	Bollinger string
	Overall   string
}

// deriveSignals maps the latest indicator values onto qualitative signals and
// aggregates them into an overall classification. Oversold counts toward the
// bullish side, overbought toward the bearish side.
func deriveSignals(r *Result) Signals {
	last := len(r.SMA20) - 1

	s := Signals{
		Trend:     TrendFlat,
		RSI:       SignalNeutral,
		MACD:      SignalBearish,
		Bollinger: SignalNeutral,
	}

	switch {
	case r.SMA20[last] > r.SMA50[last]:
		s.Trend = TrendUp
	case r.SMA20[last] < r.SMA50[last]:
		s.Trend = TrendDown
	}

	switch {
	case r.LastRSI > 70:
		s.RSI = SignalOverbought
	case r.LastRSI < 30:
		s.RSI = SignalOversold
	}

	// MACD is read as a binary signal; there is no neutral band
	if r.LastMACD > r.LastMACDSignal {
		s.MACD = SignalBullish
	}

	switch {
	case r.LastClose > r.BBUpper[last]:
		s.Bollinger = SignalOverbought
	case r.LastClose < r.BBLower[last]:
		s.Bollinger = SignalOversold
	}

	bulls, bears := 0, 0
	for _, sig := range []string{s.Trend, s.RSI, s.MACD, s.Bollinger} {
		switch sig {
		case TrendUp, SignalBullish, SignalOversold:
			bulls++
		case TrendDown, SignalBearish, SignalOverbought:
			bears++
		}
	}

	switch {
	case bulls > bears+1:
		s.Overall = OverallStrongBullish
	case bulls > bears:
		s.Overall = OverallModerateBullish
	case bears > bulls+1:
		s.Overall = OverallStrongBearish
	case bears > bulls:
		s.Overall = OverallModerateBearish
	default:
		s.Overall = OverallNeutral
	}

	return s
}
