package indicators

import (
	"math"
	"sort"

	"hermes/internal/domain/marketdata"
)

// LevelWindow is the symmetric neighborhood used for local extrema detection
const LevelWindow = 10

// FindSupportLevels locates local minima of the lows: a point qualifies when
// its low is less than or equal to every low within the symmetric window.
// Near-duplicate candidates (within 1% of the candidate mean) are merged,
// keeping the first. The result is the up-to-3 levels below the current price,
// nearest first.
func FindSupportLevels(candles []marketdata.Candle, window int) []float64 {
	n := len(candles)
	if n < 2*window+1 {
		return nil
	}

	var candidates []float64
	for i := window; i < n-window; i++ {
		if isLocalMin(candles, i, window) {
			candidates = append(candidates, candles[i].Low)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	levels := mergeClose(candidates)

	current := candles[n-1].Close
	var below []float64
	for _, lvl := range levels {
		if lvl < current {
			below = append(below, lvl)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(below)))
	if len(below) > 3 {
		below = below[:3]
	}
	return below
}

// FindResistanceLevels is the symmetric local-maximum case on the highs,
// filtered to levels above the current price, nearest first.
func FindResistanceLevels(candles []marketdata.Candle, window int) []float64 {
	n := len(candles)
	if n < 2*window+1 {
		return nil
	}

	var candidates []float64
	for i := window; i < n-window; i++ {
		if isLocalMax(candles, i, window) {
			candidates = append(candidates, candles[i].High)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	levels := mergeClose(candidates)

	current := candles[n-1].Close
	var above []float64
	for _, lvl := range levels {
		if lvl > current {
			above = append(above, lvl)
		}
	}
	sort.Float64s(above)
	if len(above) > 3 {
		above = above[:3]
	}
	return above
}

func isLocalMin(candles []marketdata.Candle, i, window int) bool {
	for j := 1; j <= window; j++ {
		if candles[i].Low > candles[i-j].Low || candles[i].Low > candles[i+j].Low {
			return false
		}
	}
	return true
}

func isLocalMax(candles []marketdata.Candle, i, window int) bool {
	for j := 1; j <= window; j++ {
		if candles[i].High < candles[i-j].High || candles[i].High < candles[i+j].High {
			return false
		}
	}
	return true
}

// mergeClose drops candidates within 1% of the candidate mean of an
// already-kept level, preserving first-seen order
func mergeClose(candidates []float64) []float64 {
	var mean float64
	for _, c := range candidates {
		mean += c
	}
	mean /= float64(len(candidates))
	tolerance := mean * 0.01

	kept := []float64{candidates[0]}
	for _, c := range candidates[1:] {
		distinct := true
		for _, k := range kept {
			if math.Abs(c-k) <= tolerance {
				distinct = false
				break
			}
		}
		if distinct {
			kept = append(kept, c)
		}
	}
	return kept
}
