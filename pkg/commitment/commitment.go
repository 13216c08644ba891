// Package commitment implements the binding primitive used by sealed-bid
// auctions: a bidder publishes keccak256(amount || salt) during the commit
// phase and discloses amount and salt during the reveal phase.
package commitment

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/thanhpk/randstr"
	"golang.org/x/crypto/sha3"
)

const (
	// Size is the byte length of a commitment.
	Size = 32
	// SaltLength is the number of hex characters produced by GenerateSalt.
	SaltLength = 64
	// MinSaltLength is the shortest salt accepted for a commitment.
	MinSaltLength = 8

	uint256Size = 32
)

var (
	// ErrInvalidAmount is returned when the amount is negative, fractional or
	// does not fit in 256 bits.
	ErrInvalidAmount = errors.New("amount must be an unsigned integer of at most 256 bits")
	// ErrSaltTooShort ...
	ErrSaltTooShort = fmt.Errorf("salt must be at least %d characters long", MinSaltLength)
	// ErrInvalidCommitment ...
	ErrInvalidCommitment = errors.New("commitment must be a 32-byte hex string")

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// Commitment is the 32-byte keccak256 digest published on-chain.
type Commitment [Size]byte

// Hex returns the 0x-prefixed lowercase hex encoding of the commitment.
func (c Commitment) Hex() string {
	return "0x" + hex.EncodeToString(c[:])
}

func (c Commitment) String() string {
	return c.Hex()
}

// IsZero returns whether the commitment is unset.
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

// FromHex parses a 0x-prefixed (or bare) 64 characters hex string.
func FromHex(s string) (Commitment, error) {
	var c Commitment

	buf, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(buf) != Size {
		return c, ErrInvalidCommitment
	}
	copy(c[:], buf)
	return c, nil
}

// GenerateSalt returns a fresh hex salt drawn from a cryptographically secure
// source.
func GenerateSalt() string {
	return randstr.Hex(SaltLength / 2)
}

// Hash binds amount and salt into a commitment. The preimage layout is
// the 32-byte big-endian encoding of amount followed by the raw salt bytes,
// the same packed encoding the sealed-bid contracts hash on reveal.
func Hash(amount decimal.Decimal, salt string) (Commitment, error) {
	var c Commitment

	if len(salt) < MinSaltLength {
		return c, ErrSaltTooShort
	}
	n, err := toUint256(amount)
	if err != nil {
		return c, err
	}

	var word [uint256Size]byte
	n.FillBytes(word[:])

	h := sha3.NewLegacyKeccak256()
	h.Write(word[:])
	h.Write([]byte(salt))
	copy(c[:], h.Sum(nil))
	return c, nil
}

// Verify reports whether amount and salt open the given commitment.
func Verify(c Commitment, amount decimal.Decimal, salt string) bool {
	got, err := Hash(amount, salt)
	if err != nil {
		return false
	}
	return got == c
}

func toUint256(amount decimal.Decimal) (*big.Int, error) {
	if amount.IsNegative() || !amount.IsInteger() {
		return nil, ErrInvalidAmount
	}
	n := amount.BigInt()
	if n.Cmp(maxUint256) > 0 {
		return nil, ErrInvalidAmount
	}
	return n, nil
}
