package marketdata

import "time"

// Candle is one OHLCV bar
type Candle struct {
	Symbol      string    `ch:"symbol"`
	Timeframe   string    `ch:"timeframe"` // 1h, 4h, 1d
	OpenTime    time.Time `ch:"open_time"`
	Open        float64   `ch:"open"`
	High        float64   `ch:"high"`
	Low         float64   `ch:"low"`
	Close       float64   `ch:"close"`
	Volume      float64   `ch:"volume"`
	QuoteVolume float64   `ch:"quote_volume"`
	Trades      uint64    `ch:"trades"`
}

// Closes extracts the close series from candles (chronological order preserved)
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Returns computes simple percentage returns from consecutive closes.
// The result has len(candles)-1 entries; a window under two candles yields nil.
func Returns(candles []Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (candles[i].Close-prev)/prev)
	}
	return out
}

// SymbolFor maps a supported currency to its spot market symbol
func SymbolFor(currency string) (string, bool) {
	switch currency {
	case "BTC":
		return "BTCUSDT", true
	case "ETH":
		return "ETHUSDT", true
	default:
		return "", false
	}
}
