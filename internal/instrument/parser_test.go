package instrument

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidInstruments(t *testing.T) {
	tests := []struct {
		name       string
		instrument string
		asset      string
		strike     float64
		optionType OptionType
		expiry     time.Time
	}{
		{
			name:       "btc call",
			instrument: "BTC-28MAR25-110000-C",
			asset:      "BTC",
			strike:     110000,
			optionType: Call,
			expiry:     time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "eth put",
			instrument: "ETH-26DEC25-4000-P",
			asset:      "ETH",
			strike:     4000,
			optionType: Put,
			expiry:     time.Date(2025, time.December, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "single digit day",
			instrument: "BTC-3JAN26-95000-C",
			asset:      "BTC",
			strike:     95000,
			optionType: Call,
			expiry:     time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "fractional strike",
			instrument: "ETH-30SEP26-2512.5-P",
			asset:      "ETH",
			strike:     2512.5,
			optionType: Put,
			expiry:     time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Parse(tt.instrument)
			require.NoError(t, err)

			assert.Equal(t, tt.asset, info.Asset)
			assert.Equal(t, tt.strike, info.Strike)
			assert.Equal(t, tt.optionType, info.OptionType)
			assert.True(t, tt.expiry.Equal(info.ExpiryDate))
		})
	}
}

func TestParse_InvalidInstruments(t *testing.T) {
	tests := []struct {
		name       string
		instrument string
	}{
		{"empty", ""},
		{"too few fields", "BTC-28MAR25-110000"},
		{"too many fields", "BTC-28MAR25-110000-C-EXTRA"},
		{"non-numeric strike", "BTC-28MAR25-abc-C"},
		{"negative strike", "BTC-28MAR25--5-C"},
		{"zero strike", "BTC-28MAR25-0-C"},
		{"bad option type", "BTC-28MAR25-110000-X"},
		{"bad expiration", "BTC-99XYZ99-110000-C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.instrument)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.instrument, parseErr.Instrument)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	names := []string{
		"BTC-28MAR25-110000-C",
		"ETH-26DEC25-4000-P",
		"ETH-30SEP26-2512.5-P",
	}

	for _, name := range names {
		info, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, info.Name())
	}
}

func TestParseLenient_FallsBackOnMalformedName(t *testing.T) {
	info := ParseLenient("BTC_PERPETUAL")
	assert.Equal(t, "BTC_PERPETUAL", info.Asset)
	assert.Equal(t, "UNKNOWN", info.Expiration)
	assert.Zero(t, info.Strike)
	assert.Equal(t, TypeUnknown, info.OptionType)

	info = ParseLenient("SOL-28MAR25-200-X")
	assert.Equal(t, "SOL", info.Asset)
	assert.Equal(t, TypeUnknown, info.OptionType)
}

func TestParseLenient_KeepsValidParse(t *testing.T) {
	info := ParseLenient("BTC-28MAR25-110000-C")
	assert.Equal(t, Call, info.OptionType)
	assert.Equal(t, 110000.0, info.Strike)
}

func TestValidate(t *testing.T) {
	future := time.Now().AddDate(0, 6, 0)
	past := time.Now().AddDate(0, -6, 0)

	valid := Info{Asset: "BTC", Strike: 100000, OptionType: Call, ExpiryDate: future}
	assert.True(t, Validate(valid))

	unsupported := valid
	unsupported.Asset = "SOL"
	assert.False(t, Validate(unsupported))

	expired := valid
	expired.ExpiryDate = past
	assert.False(t, Validate(expired))

	noStrike := valid
	noStrike.Strike = 0
	assert.False(t, Validate(noStrike))

	unknownType := valid
	unknownType.OptionType = TypeUnknown
	assert.False(t, Validate(unknownType))
}
