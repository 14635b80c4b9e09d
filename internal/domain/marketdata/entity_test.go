package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	candles := []Candle{
		{Close: 100},
		{Close: 110},
		{Close: 99},
	}

	returns := Returns(candles)
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestReturns_DegenerateInputs(t *testing.T) {
	assert.Nil(t, Returns(nil))
	assert.Nil(t, Returns([]Candle{{Close: 100}}))

	// a zero close cannot produce a ratio; the slot reads as flat
	returns := Returns([]Candle{{Close: 0}, {Close: 100}})
	require.Len(t, returns, 1)
	assert.Zero(t, returns[0])
}

func TestCloses(t *testing.T) {
	candles := []Candle{{Close: 1}, {Close: 2}, {Close: 3}}
	assert.Equal(t, []float64{1, 2, 3}, Closes(candles))
}

func TestSymbolFor(t *testing.T) {
	symbol, ok := SymbolFor("BTC")
	assert.True(t, ok)
	assert.Equal(t, "BTCUSDT", symbol)

	symbol, ok = SymbolFor("ETH")
	assert.True(t, ok)
	assert.Equal(t, "ETHUSDT", symbol)

	_, ok = SymbolFor("DOGE")
	assert.False(t, ok)
}
