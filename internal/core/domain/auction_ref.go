package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const tokenSeparator = ":"

// AuctionRef identifies an auction across protocols. Ids are only unique
// within a protocol.
type AuctionRef struct {
	Protocol ProtocolTag
	ID       uint64
}

// NewAuctionRef returns a reference after checking the protocol tag.
func NewAuctionRef(protocol ProtocolTag, id uint64) (AuctionRef, error) {
	if !protocol.IsValid() {
		return AuctionRef{}, ErrUnsupportedProtocol
	}
	return AuctionRef{protocol, id}, nil
}

// Token returns the stable persisted encoding of the reference, in the form
// <protocol code>:<decimal id>.
func (r AuctionRef) Token() string {
	return r.Protocol.String() + tokenSeparator + strconv.FormatUint(r.ID, 10)
}

func (r AuctionRef) String() string {
	return r.Token()
}

// EncodeRef is an alias of AuctionRef.Token.
func EncodeRef(ref AuctionRef) string {
	return ref.Token()
}

// DecodeRef parses a token produced by EncodeRef. Only canonical tokens are
// accepted so that DecodeRef(t).Token() == t for every valid t.
func DecodeRef(token string) (AuctionRef, error) {
	parts := strings.Split(token, tokenSeparator)
	if len(parts) != 2 {
		return AuctionRef{}, &DecodeError{token, "expected <protocol>:<id>"}
	}
	code, rawID := parts[0], parts[1]

	protocol, ok := protocolsByCode[code]
	if !ok {
		return AuctionRef{}, &DecodeError{token, fmt.Sprintf("unknown protocol %q", code)}
	}

	if len(rawID) == 0 {
		return AuctionRef{}, &DecodeError{token, "missing id"}
	}
	if len(rawID) > 1 && rawID[0] == '0' {
		return AuctionRef{}, &DecodeError{token, "id has leading zeros"}
	}
	for _, c := range rawID {
		if c < '0' || c > '9' {
			return AuctionRef{}, &DecodeError{token, "id must be a decimal number"}
		}
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return AuctionRef{}, &DecodeError{token, "id out of range"}
	}

	return AuctionRef{protocol, id}, nil
}
