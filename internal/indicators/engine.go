package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"hermes/internal/domain/marketdata"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// MinCandles is the minimum series length for a meaningful computation (RSI floor)
const MinCandles = 14

// Windows holds the adaptive periods actually used for a series. Canonical
// periods shrink when the history is short so the engine degrades gracefully
// instead of producing all-undefined output.
type Windows struct {
	SMA20  int
	SMA50  int
	SMA200 int
	RSI    int
	Fast   int
	Slow   int
	Signal int
}

// adaptWindows downsizes the canonical periods to the series length
func adaptWindows(n int) Windows {
	return Windows{
		SMA20:  clamp(20, 5, n/2),
		SMA50:  clamp(50, 5, n/2),
		SMA200: clamp(200, 5, n/2),
		RSI:    clamp(14, 5, n/3),
		Fast:   clamp(12, 3, n/4),
		Slow:   clamp(26, 6, n/3),
		Signal: clamp(9, 3, n/5),
	}
}

// clamp returns min(canonical, max(floor, adaptive))
func clamp(canonical, floor, adaptive int) int {
	w := adaptive
	if w < floor {
		w = floor
	}
	if w > canonical {
		w = canonical
	}
	return w
}

// Result carries every indicator series aligned to the input candle series,
// plus the derived signals and levels. Leading undefined values are filled,
// never dropped, so row i always corresponds to candle i.
type Result struct {
	Windows Windows

	SMA20  []float64
	SMA50  []float64
	SMA200 []float64
	EMA20  []float64
	RSI    []float64

	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64

	BBUpper  []float64
	BBMiddle []float64
	BBLower  []float64

	// Volatility is the rolling stddev relative to the Bollinger middle, in percent
	Volatility []float64

	LastClose      float64
	LastRSI        float64
	LastMACD       float64
	LastMACDSignal float64
	LastVolatility float64

	Signals          Signals
	SupportLevels    []float64
	ResistanceLevels []float64
}

// Compute derives the full indicator set from a chronologically ascending
// candle series. Fewer than MinCandles candles is an insufficient-data error,
// not a panic or a partial result.
func Compute(candles []marketdata.Candle) (*Result, error) {
	n := len(candles)
	if n < MinCandles {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"got %d candles, need at least %d", n, MinCandles)
	}

	log := logger.Get().With("component", "indicators")
	w := adaptWindows(n)
	closes := marketdata.Closes(candles)

	r := &Result{Windows: w}

	r.SMA20 = backfill(talib.Sma(closes, w.SMA20), w.SMA20-1)
	r.SMA50 = backfill(talib.Sma(closes, w.SMA50), w.SMA50-1)
	r.SMA200 = backfill(talib.Sma(closes, w.SMA200), w.SMA200-1)
	r.EMA20 = backfill(talib.Ema(closes, w.SMA20), w.SMA20-1)

	r.RSI = rsi(closes, w.RSI)

	macd, signal, hist := talib.Macd(closes, w.Fast, w.Slow, w.Signal)
	r.MACD = backfill(macd, w.Slow-1)
	r.MACDSignal = backfill(signal, w.Slow+w.Signal-2)
	r.MACDHist = backfill(hist, w.Slow+w.Signal-2)

	upper, middle, lower := talib.BBands(closes, w.SMA20, 2.0, 2.0, talib.SMA)
	r.BBUpper = backfill(upper, w.SMA20-1)
	r.BBMiddle = backfill(middle, w.SMA20-1)
	r.BBLower = backfill(lower, w.SMA20-1)

	stddev := backfill(talib.StdDev(closes, w.SMA20, 1.0), w.SMA20-1)
	r.Volatility = make([]float64, n)
	for i := 0; i < n; i++ {
		if r.BBMiddle[i] != 0 {
			r.Volatility[i] = stddev[i] / r.BBMiddle[i] * 100
		}
	}

	last := n - 1
	r.LastClose = closes[last]
	r.LastRSI = r.RSI[last]
	r.LastMACD = r.MACD[last]
	r.LastMACDSignal = r.MACDSignal[last]
	r.LastVolatility = r.Volatility[last]

	r.Signals = deriveSignals(r)
	r.SupportLevels = FindSupportLevels(candles, LevelWindow)
	r.ResistanceLevels = FindResistanceLevels(candles, LevelWindow)

	log.Debugw("indicators computed",
		"candles", n, "sma_window", w.SMA20, "rsi_window", w.RSI,
		"overall_signal", r.Signals.Overall)

	return r, nil
}

// rsi computes the relative strength index with simple rolling averages of
// zero-floored gains and losses. A loss average of zero is floored to machine
// epsilon; a series with neither gains nor losses reads as the neutral 50.
func rsi(closes []float64, window int) []float64 {
	n := len(closes)
	out := make([]float64, n)

	gains := make([]float64, n-1)
	losses := make([]float64, n-1)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain := talib.Sma(gains, window)
	avgLoss := talib.Sma(losses, window)

	eps := math.Nextafter(1, 2) - 1
	firstValid := window // in close-series indexing
	for i := window - 1; i < n-1; i++ {
		g, l := avgGain[i], avgLoss[i]
		if g == 0 && l == 0 {
			out[i+1] = 50
			continue
		}
		if l == 0 {
			l = eps
		}
		rs := g / l
		out[i+1] = 100 - 100/(1+rs)
	}

	return backfill(out, firstValid)
}

// backfill fills the leading undefined region [0, firstValid) with the first
// defined value, preserving alignment with the input series
func backfill(vals []float64, firstValid int) []float64 {
	if len(vals) == 0 {
		return vals
	}
	if firstValid >= len(vals) {
		firstValid = len(vals) - 1
	}
	for i := 0; i < firstValid; i++ {
		vals[i] = vals[firstValid]
	}
	return vals
}
