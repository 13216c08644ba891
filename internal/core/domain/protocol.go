package domain

import "strings"

// ProtocolTag identifies the mechanism governing an auction.
type ProtocolTag int

const (
	ProtocolUnknown ProtocolTag = iota
	ProtocolEnglish
	ProtocolLinear
	ProtocolExponential
	ProtocolLogarithmic
	ProtocolAllPay
	ProtocolVickrey
)

// Protocol codes are persisted inside reference tokens and must never change.
var protocolCodes = map[ProtocolTag]string{
	ProtocolEnglish:     "english",
	ProtocolLinear:      "linear",
	ProtocolExponential: "exponential",
	ProtocolLogarithmic: "logarithmic",
	ProtocolAllPay:      "allpay",
	ProtocolVickrey:     "vickrey",
}

var protocolsByCode = func() map[string]ProtocolTag {
	m := make(map[string]ProtocolTag, len(protocolCodes))
	for tag, code := range protocolCodes {
		m[code] = tag
	}
	return m
}()

// AllProtocols returns the closed set of supported protocols.
func AllProtocols() []ProtocolTag {
	return []ProtocolTag{
		ProtocolEnglish,
		ProtocolLinear,
		ProtocolExponential,
		ProtocolLogarithmic,
		ProtocolAllPay,
		ProtocolVickrey,
	}
}

// ParseProtocolTag is the inverse of ProtocolTag.String. Matching is case
// insensitive.
func ParseProtocolTag(code string) (ProtocolTag, error) {
	tag, ok := protocolsByCode[strings.ToLower(code)]
	if !ok {
		return ProtocolUnknown, ErrUnsupportedProtocol
	}
	return tag, nil
}

func (p ProtocolTag) String() string {
	if code, ok := protocolCodes[p]; ok {
		return code
	}
	return "unknown"
}

// IsValid returns whether the tag belongs to the supported set.
func (p ProtocolTag) IsValid() bool {
	_, ok := protocolCodes[p]
	return ok
}

// IsDutch returns true for the descending-price protocols.
func (p ProtocolTag) IsDutch() bool {
	return p == ProtocolLinear || p == ProtocolExponential || p == ProtocolLogarithmic
}
