package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/domain/marketdata"
	"hermes/pkg/errors"
)

// candlesFromCloses builds a daily candle series from closes only
func candlesFromCloses(closes []float64) []marketdata.Candle {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]marketdata.Candle, len(closes))
	for i, c := range closes {
		candles[i] = marketdata.Candle{
			Symbol:    "BTCUSDT",
			Timeframe: "1d",
			OpenTime:  start.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
		}
	}
	return candles
}

func risingCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestCompute_InsufficientData(t *testing.T) {
	candles := candlesFromCloses(risingCloses(MinCandles-1, 100, 1))

	_, err := Compute(candles)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
}

func TestCompute_RisingSeries(t *testing.T) {
	// 20 closes, 100..119
	candles := candlesFromCloses(risingCloses(20, 100, 1))

	r, err := Compute(candles)
	require.NoError(t, err)

	// every series stays aligned with the candles
	n := len(candles)
	assert.Len(t, r.SMA20, n)
	assert.Len(t, r.RSI, n)
	assert.Len(t, r.MACD, n)
	assert.Len(t, r.MACDSignal, n)
	assert.Len(t, r.BBUpper, n)
	assert.Len(t, r.Volatility, n)

	assert.Equal(t, 119.0, r.LastClose)

	// 20 candles shrink the 20-day window to 10; the last SMA is the mean
	// of the last ten closes 110..119
	assert.Equal(t, 10, r.Windows.SMA20)
	assert.InDelta(t, 114.5, r.SMA20[n-1], 1e-9)

	// a monotonically rising series has no losses, so RSI saturates
	assert.Greater(t, r.LastRSI, 99.0)
	assert.Equal(t, SignalOverbought, r.Signals.RSI)

	// MACD above its signal line on a steady uptrend
	assert.Greater(t, r.LastMACD, r.LastMACDSignal)
	assert.Equal(t, SignalBullish, r.Signals.MACD)

	assert.Greater(t, r.LastVolatility, 0.0)
}

func TestCompute_FallingSeriesIsBearish(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 200 - float64(i)*2
	}
	candles := candlesFromCloses(closes)

	r, err := Compute(candles)
	require.NoError(t, err)

	assert.Less(t, r.LastRSI, 30.0)
	assert.Equal(t, SignalOversold, r.Signals.RSI)
	assert.Less(t, r.LastMACD, r.LastMACDSignal)
	assert.Equal(t, SignalBearish, r.Signals.MACD)
}

func TestRSI_ConstantSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}

	out := rsi(closes, 14)
	require.Len(t, out, 30)
	for i, v := range out {
		assert.Equal(t, 50.0, v, "index %d", i)
	}
}

func TestRSI_Bounds(t *testing.T) {
	// alternate up and down moves
	closes := make([]float64, 50)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 0 {
			closes[i] = closes[i-1] + 2
		} else {
			closes[i] = closes[i-1] - 1
		}
	}

	out := rsi(closes, 14)
	for i, v := range out {
		assert.GreaterOrEqual(t, v, 0.0, "index %d", i)
		assert.LessOrEqual(t, v, 100.0, "index %d", i)
	}
}

func TestBackfill(t *testing.T) {
	vals := []float64{0, 0, 0, 7, 8, 9}
	out := backfill(vals, 3)
	assert.Equal(t, []float64{7, 7, 7, 7, 8, 9}, out)

	// firstValid past the end clamps to the last element
	out = backfill([]float64{0, 0, 5}, 10)
	assert.Equal(t, []float64{5, 5, 5}, out)

	assert.Empty(t, backfill(nil, 3))
}

func TestAdaptWindows(t *testing.T) {
	// long history keeps canonical periods
	w := adaptWindows(500)
	assert.Equal(t, 20, w.SMA20)
	assert.Equal(t, 50, w.SMA50)
	assert.Equal(t, 200, w.SMA200)
	assert.Equal(t, 14, w.RSI)

	// short history shrinks but respects floors
	w = adaptWindows(20)
	assert.Equal(t, 10, w.SMA20)
	assert.Equal(t, 10, w.SMA50)
	assert.Equal(t, 6, w.RSI)
	assert.Equal(t, 5, w.Fast)
	assert.Equal(t, 6, w.Slow)

	// minimal history bottoms out at the floors
	w = adaptWindows(MinCandles)
	assert.Equal(t, 7, w.SMA20)
	assert.Equal(t, 5, w.RSI)
	assert.Equal(t, 3, w.Fast)
	assert.Equal(t, 6, w.Slow)
	assert.Equal(t, 3, w.Signal)
}

func TestFindLevels(t *testing.T) {
	// flat series with a pronounced dip and a spike
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	candles := candlesFromCloses(closes)

	candles[10].Low = 80
	candles[20].High = 130

	// the flat stretches are local extrema too (ties qualify), so the dip
	// and spike are present but not necessarily nearest
	supports := FindSupportLevels(candles, 3)
	require.NotEmpty(t, supports)
	assert.Contains(t, supports, 80.0)
	for _, lvl := range supports {
		assert.Less(t, lvl, candles[len(candles)-1].Close)
	}

	resistances := FindResistanceLevels(candles, 3)
	require.NotEmpty(t, resistances)
	assert.Contains(t, resistances, 130.0)
	for _, lvl := range resistances {
		assert.Greater(t, lvl, candles[len(candles)-1].Close)
	}
}

func TestFindLevels_TooShortSeries(t *testing.T) {
	candles := candlesFromCloses(risingCloses(15, 100, 1))
	assert.Nil(t, FindSupportLevels(candles, LevelWindow))
	assert.Nil(t, FindResistanceLevels(candles, LevelWindow))
}
