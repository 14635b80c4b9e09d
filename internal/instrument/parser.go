package instrument

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hermes/pkg/logger"
)

// OptionType is the single-letter option type code used in instrument names
type OptionType string

const (
	Call OptionType = "C"
	Put  OptionType = "P"

	// TypeUnknown marks the best-effort fallback of ParseLenient
	TypeUnknown OptionType = "?"
)

// SupportedAssets is the set of underlyings the analytics support
var SupportedAssets = map[string]bool{
	"BTC": true,
	"ETH": true,
}

// Info is the decoded form of an option instrument name
// such as BTC-28MAR25-110000-C.
type Info struct {
	Asset      string
	Expiration string
	Strike     float64
	OptionType OptionType
	ExpiryDate time.Time // zero when the expiration code did not parse
}

// Name reconstructs the canonical instrument name from the parsed fields
func (i Info) Name() string {
	return fmt.Sprintf("%s-%s-%s-%s",
		i.Asset, i.Expiration,
		strconv.FormatFloat(i.Strike, 'f', -1, 64),
		i.OptionType,
	)
}

// ParseError reports an instrument name that does not match the
// ASSET-EXPIRATION-STRIKE-TYPE grammar. It carries the original string.
type ParseError struct {
	Instrument string
	Reason     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse instrument %q: %s", e.Instrument, e.Reason)
}

// Parse decodes an instrument name strictly: any malformed field is an error.
// Use this before trusting a parse for pricing. The enrichment path uses
// ParseLenient instead; the two policies are deliberately separate.
func Parse(name string) (Info, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return Info{}, &ParseError{Instrument: name, Reason: fmt.Sprintf("expected 4 fields, got %d", len(parts))}
	}

	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Info{}, &ParseError{Instrument: name, Reason: "non-numeric strike"}
	}
	if strike <= 0 {
		return Info{}, &ParseError{Instrument: name, Reason: "non-positive strike"}
	}

	typ := OptionType(parts[3])
	if typ != Call && typ != Put {
		return Info{}, &ParseError{Instrument: name, Reason: fmt.Sprintf("unrecognized option type %q", parts[3])}
	}

	expiry, err := parseExpiration(parts[1])
	if err != nil {
		return Info{}, &ParseError{Instrument: name, Reason: fmt.Sprintf("unparseable expiration %q", parts[1])}
	}

	return Info{
		Asset:      parts[0],
		Expiration: parts[1],
		Strike:     strike,
		OptionType: typ,
		ExpiryDate: expiry,
	}, nil
}

// ParseLenient decodes an instrument name on a best-effort basis. Malformed
// names degrade to a placeholder Info (asset from the first segment, UNKNOWN
// expiration, zero strike, unknown type) with a logged warning, so a single
// bad row never aborts trade enrichment.
func ParseLenient(name string) Info {
	info, err := Parse(name)
	if err == nil {
		return info
	}

	logger.Get().Warnf("instrument fallback parse for %q: %v", name, err)

	asset := name
	if idx := strings.IndexByte(name, '-'); idx > 0 {
		asset = name[:idx]
	}

	return Info{
		Asset:      asset,
		Expiration: "UNKNOWN",
		Strike:     0,
		OptionType: TypeUnknown,
	}
}

// Validate reports whether a parsed instrument can be trusted for pricing:
// supported asset, valid type, positive strike, expiry still in the future.
func Validate(info Info) bool {
	return SupportedAssets[info.Asset] &&
		(info.OptionType == Call || info.OptionType == Put) &&
		info.Strike > 0 &&
		info.ExpiryDate.After(time.Now())
}

// parseExpiration parses the DDMMMYY expiration code (e.g. 28MAR25).
// The day may be one or two digits.
func parseExpiration(code string) (time.Time, error) {
	if len(code) < 4 {
		return time.Time{}, fmt.Errorf("expiration code too short")
	}

	// Normalize the uppercase month so time.Parse accepts it
	var b strings.Builder
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= 'A' && c <= 'Z' && i > 0 && code[i-1] >= 'A' && code[i-1] <= 'Z' {
			b.WriteByte(c + ('a' - 'A'))
		} else {
			b.WriteByte(c)
		}
	}

	return time.Parse("2Jan06", b.String())
}
