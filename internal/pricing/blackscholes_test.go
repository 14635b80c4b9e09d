package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/internal/instrument"
)

func TestDelta_CallPutIdentity(t *testing.T) {
	engine := NewEngine(0.05)
	expiry := time.Now().AddDate(0, 3, 0)

	call := engine.Delta(100000, 100000, expiry, 0.6, instrument.Call)
	put := engine.Delta(100000, 100000, expiry, 0.6, instrument.Put)
	require.NotNil(t, call)
	require.NotNil(t, put)

	// call delta minus put delta is exactly 1 under Black-Scholes
	assert.InDelta(t, 1.0, call.Delta-put.Delta, 1e-12)
}

func TestDelta_Bounds(t *testing.T) {
	engine := NewEngine(0.05)
	expiry := time.Now().AddDate(0, 3, 0)

	call := engine.Delta(100000, 100000, expiry, 0.6, instrument.Call)
	require.NotNil(t, call)
	assert.Greater(t, call.Delta, 0.5)
	assert.Less(t, call.Delta, 1.0)

	put := engine.Delta(100000, 100000, expiry, 0.6, instrument.Put)
	require.NotNil(t, put)
	assert.Less(t, put.Delta, 0.0)
	assert.Greater(t, put.Delta, -1.0)

	// deep in-the-money call approaches 1
	deep := engine.Delta(100000, 20000, expiry, 0.6, instrument.Call)
	require.NotNil(t, deep)
	assert.Greater(t, deep.Delta, 0.95)

	// far out-of-the-money call approaches 0
	far := engine.Delta(100000, 500000, expiry, 0.6, instrument.Call)
	require.NotNil(t, far)
	assert.Less(t, far.Delta, 0.05)
}

func TestDelta_PercentVolatilityNormalization(t *testing.T) {
	engine := NewEngine(0.05)
	expiry := time.Now().AddDate(0, 3, 0)

	asFraction := engine.Delta(100000, 110000, expiry, 0.65, instrument.Call)
	asPercent := engine.Delta(100000, 110000, expiry, 65, instrument.Call)
	require.NotNil(t, asFraction)
	require.NotNil(t, asPercent)

	assert.InDelta(t, asFraction.Delta, asPercent.Delta, 1e-12)
}

func TestDelta_NilOnBadInputs(t *testing.T) {
	engine := NewEngine(0.05)
	future := time.Now().AddDate(0, 3, 0)

	assert.Nil(t, engine.Delta(0, 100000, future, 0.6, instrument.Call), "zero spot")
	assert.Nil(t, engine.Delta(100000, 0, future, 0.6, instrument.Call), "zero strike")
	assert.Nil(t, engine.Delta(100000, 100000, time.Time{}, 0.6, instrument.Call), "zero expiry")
	assert.Nil(t, engine.Delta(100000, 100000, future, 0, instrument.Call), "zero volatility")
	assert.Nil(t, engine.Delta(100000, 100000, future, 0.6, instrument.TypeUnknown), "unknown type")

	past := time.Now().AddDate(0, -1, 0)
	assert.Nil(t, engine.Delta(100000, 100000, past, 0.6, instrument.Call), "expired option")

	// expiring within the day floors to zero days
	today := time.Now().Add(6 * time.Hour)
	assert.Nil(t, engine.Delta(100000, 100000, today, 0.6, instrument.Call), "expiring today")
}

func TestNewEngine_DefaultRate(t *testing.T) {
	engine := NewEngine(0)
	assert.Equal(t, DefaultRiskFreeRate, engine.rate)
}

func TestValidateInputs(t *testing.T) {
	engine := NewEngine(0.05)

	assert.True(t, engine.ValidateInputs(100000, 110000, 0.6))
	assert.False(t, engine.ValidateInputs(0, 110000, 0.6))
	assert.False(t, engine.ValidateInputs(100000, -1, 0.6))
	assert.False(t, engine.ValidateInputs(100000, 110000, 0))
}
