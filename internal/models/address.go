package models

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressLength is the size of a caller identity in bytes
const AddressLength = 32

// ErrInvalidAddress is returned when an address cannot be parsed
var ErrInvalidAddress = errors.New("invalid address")

// Address is a 32-byte caller identity. The zero value is the null address.
type Address [AddressLength]byte

// ZeroAddress is the null address, used when no winner has been recorded
var ZeroAddress Address

// JackpotAddress is the custody account holding the pooled jackpot.
// No caller can derive it from an external ID because of the distinct domain.
var JackpotAddress = DeriveAddress("custody", "jackpot")

// DeriveAddress maps an identity from an outer system (a Discord user ID, say)
// onto a stable address: keccak256(domain ":" id).
func DeriveAddress(domain, id string) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(domain))
	h.Write([]byte{':'})
	h.Write([]byte(id))

	var a Address
	copy(a[:], h.Sum(nil))
	return a
}

// ParseAddress decodes a hex address, with or without a 0x prefix
func ParseAddress(s string) (Address, error) {
	var a Address

	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != AddressLength*2 {
		return a, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidAddress, AddressLength*2, len(s))
	}

	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	return a, nil
}

// IsZero reports whether a is the null address
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the 0x-prefixed hex form
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Short returns an abbreviated form for display
func (a Address) Short() string {
	s := hex.EncodeToString(a[:])
	return "0x" + s[:6] + "…" + s[len(s)-4:]
}

// MarshalText implements encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
