package scoring

import (
	"testing"

	"github.com/KirkDiggler/jackpotdice/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		roll     dice.Roll
		category uint8
		want     uint64
	}{
		{name: "no matches", roll: dice.Roll{2, 3, 4, 5, 6}, category: 1, want: 0},
		{name: "single one", roll: dice.Roll{1, 3, 4, 5, 6}, category: 1, want: 1000},
		{name: "three fours", roll: dice.Roll{4, 4, 2, 4, 6}, category: 4, want: 12000},
		{name: "five sixes", roll: dice.Roll{6, 6, 6, 6, 6}, category: 6, want: 30000},
		{name: "two fives", roll: dice.Roll{5, 1, 5, 2, 3}, category: 5, want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.roll, tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreMatchesFormulaForEveryCategory(t *testing.T) {
	roll := dice.Roll{1, 2, 2, 3, 6}
	for c := uint8(MinCategory); c <= MaxCategory; c++ {
		var count uint64
		for _, face := range roll {
			if face == c {
				count++
			}
		}

		got, err := Score(roll, c)
		require.NoError(t, err)
		assert.Equal(t, uint64(c)*1000*count, got, "category %d", c)
	}
}

func TestScoreInvalidCategory(t *testing.T) {
	roll := dice.Roll{1, 2, 3, 4, 5}

	for _, c := range []uint8{0, 7, 255} {
		_, err := Score(roll, c)
		assert.ErrorIs(t, err, ErrInvalidCategory, "category %d", c)
	}
}
