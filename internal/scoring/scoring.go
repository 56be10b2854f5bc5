package scoring

import (
	"errors"
	"fmt"

	"github.com/KirkDiggler/jackpotdice/internal/dice"
)

const (
	// MinCategory is the lowest scorable face
	MinCategory = 1

	// MaxCategory is the highest scorable face
	MaxCategory = dice.Sides

	pointsPerPip = 1000
)

// ErrInvalidCategory is returned for categories outside [1,6]
var ErrInvalidCategory = errors.New("invalid scoring category")

// Score counts the dice showing category and pays category*1000 for each
func Score(roll dice.Roll, category uint8) (uint64, error) {
	if category < MinCategory || category > MaxCategory {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCategory, category)
	}

	var count uint64
	for _, face := range roll {
		if face == category {
			count++
		}
	}

	return count * uint64(category) * pointsPerPip, nil
}
