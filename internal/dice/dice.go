package dice

import (
	"encoding/binary"

	"github.com/KirkDiggler/jackpotdice/internal/models"
	"golang.org/x/crypto/sha3"
)

const (
	// Count is the number of dice in a roll
	Count = 5

	// Sides is the number of faces per die
	Sides = 6

	bitsPerDie = 3
	dieMask    = 0x7
)

// Roll is five die faces
type Roll [Count]uint8

//go:generate mockgen -package=mocks -destination=mocks/mock_roller.go github.com/KirkDiggler/jackpotdice/internal/dice Roller

// Roller produces a roll for a player at a point in time
type Roller interface {
	Roll(seed models.Address, timestamp int64) Roll
}

// Config for dice roller
type Config struct{}

// HashRoller derives dice from keccak256(seed || big-endian timestamp).
//
// The result is fully determined by its inputs, and both are visible to
// anyone who can choose when a roll is submitted. It is not a secure source
// of randomness and must not guard anything a player could profit from
// predicting.
type HashRoller struct{}

// New creates a new dice roller
func New(cfg *Config) *HashRoller {
	return &HashRoller{}
}

// Roll derives five faces in [1,6] from the hash of seed and timestamp
func (r *HashRoller) Roll(seed models.Address, timestamp int64) Roll {
	var buf [models.AddressLength + 8]byte
	copy(buf[:models.AddressLength], seed[:])
	binary.BigEndian.PutUint64(buf[models.AddressLength:], uint64(timestamp))

	h := sha3.NewLegacyKeccak256()
	h.Write(buf[:])
	sum := h.Sum(nil)

	var roll Roll
	for i := range roll {
		roll[i] = sum[i]%Sides + 1
	}
	return roll
}

// Pack stores face i in bits [3i, 3i+3)
func (r Roll) Pack() uint16 {
	var packed uint16
	for i, face := range r {
		packed |= uint16(face&dieMask) << (i * bitsPerDie)
	}
	return packed
}

// Unpack extracts five 3-bit faces. Values outside [1,6] only appear when
// nothing has been rolled.
func Unpack(packed uint16) Roll {
	var roll Roll
	for i := range roll {
		roll[i] = uint8((packed >> (i * bitsPerDie)) & dieMask)
	}
	return roll
}

// Valid reports whether every face is a real die face
func (r Roll) Valid() bool {
	for _, face := range r {
		if face < 1 || face > Sides {
			return false
		}
	}
	return true
}
