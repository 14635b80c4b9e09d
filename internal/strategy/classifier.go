package strategy

import (
	"strings"

	"hermes/internal/domain/trade"
	"hermes/internal/instrument"
)

// Kind is an options strategy archetype
type Kind string

const (
	SingleTrade  Kind = "Single Trade"
	RiskReversal Kind = "Risk Reversal"
	Straddle     Kind = "Straddle"
	Butterfly    Kind = "Butterfly"
	IronCondor   Kind = "Iron Condor"
	CallSpread   Kind = "Call Spread"
	PutSpread    Kind = "Put Spread"

	// IronCondorOrButterfly marks a 4-leg block the structural classifier
	// deliberately leaves ambiguous
	IronCondorOrButterfly Kind = "Iron Condor/Butterfly"

	Complex Kind = "Complex Strategy"
	Unknown Kind = "Unknown Strategy"
)

// comboTags maps the strategy tags embedded in combo ids, in match order
var comboTags = []struct {
	tag  string
	kind Kind
}{
	{"RR", RiskReversal},
	{"STRD", Straddle},
	{"BF", Butterfly},
	{"IC", IronCondor},
	{"CS", CallSpread},
	{"PS", PutSpread},
}

// FromComboID labels a trade by the strategy tag embedded in its combo id.
// An empty combo id is a single trade; a combo id without a known tag is an
// unknown strategy. This answers "what does the id hint at"; FromLegs
// answers the structural question and the two must not be merged.
func FromComboID(comboID string) Kind {
	if comboID == "" {
		return SingleTrade
	}
	for _, t := range comboTags {
		if strings.Contains(comboID, t.tag) {
			return t.kind
		}
	}
	return Unknown
}

// FromLegs infers the strategy from the composition of a same-block trade
// group. Two legs: call+put at one strike is a straddle, call+put at
// different strikes a risk reversal, two calls a call spread, two puts a put
// spread. Four legs stay ambiguous between iron condor and butterfly.
// Everything else is a complex strategy.
func FromLegs(legs []*trade.Trade) Kind {
	switch len(legs) {
	case 2:
		a, b := legs[0].InstrumentInfo(), legs[1].InstrumentInfo()

		hasCall := a.OptionType == instrument.Call || b.OptionType == instrument.Call
		hasPut := a.OptionType == instrument.Put || b.OptionType == instrument.Put

		if hasCall && hasPut {
			if a.Strike == b.Strike {
				return Straddle
			}
			return RiskReversal
		}
		if a.OptionType == instrument.Call && b.OptionType == instrument.Call {
			return CallSpread
		}
		if a.OptionType == instrument.Put && b.OptionType == instrument.Put {
			return PutSpread
		}
	case 4:
		return IronCondorOrButterfly
	}
	return Complex
}

// Describe returns a short description of a strategy archetype
func Describe(k Kind) string {
	switch k {
	case RiskReversal:
		return "Combination of a long call and a short put"
	case Straddle:
		return "Buying a call and a put at the same strike"
	case Butterfly:
		return "Four-option combination with limited risk"
	case IronCondor:
		return "Neutral strategy with limited risk"
	case CallSpread:
		return "Spread built from call options"
	case PutSpread:
		return "Spread built from put options"
	case SingleTrade:
		return "Single outright trade"
	case IronCondorOrButterfly:
		return "Four-leg block, iron condor or butterfly"
	case Complex:
		return "Multi-leg structure without a standard archetype"
	default:
		return "No description available"
	}
}
