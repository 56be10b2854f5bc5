package models

// LeaderboardCapacity is the number of ranks kept
const LeaderboardCapacity = 10

// LeaderboardEntry is one ranked score
type LeaderboardEntry struct {
	// Player who finished the game
	Player Address

	// Score is the final score of that game
	Score uint64
}

// Leaderboard holds the all-time top scores, highest first
type Leaderboard struct {
	Entries []LeaderboardEntry
}

// NewLeaderboard returns an empty leaderboard
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		Entries: make([]LeaderboardEntry, 0, LeaderboardCapacity),
	}
}

// Submit inserts score at the first rank it strictly beats, shifting lower
// entries down and dropping the last one when the table is full. Ties never
// displace an existing entry, and unused ranks count as zero scores, so a score
// of zero is never inserted. A player may hold more than one rank.
// It returns the zero-based rank and whether the score was inserted.
func (l *Leaderboard) Submit(player Address, score uint64) (int, bool) {
	rank := -1
	for i, entry := range l.Entries {
		if score > entry.Score {
			rank = i
			break
		}
	}

	if rank == -1 {
		if score == 0 || len(l.Entries) >= LeaderboardCapacity {
			return -1, false
		}
		rank = len(l.Entries)
	}

	entry := LeaderboardEntry{Player: player, Score: score}
	if len(l.Entries) < LeaderboardCapacity {
		l.Entries = append(l.Entries, LeaderboardEntry{})
	}
	copy(l.Entries[rank+1:], l.Entries[rank:len(l.Entries)-1])
	l.Entries[rank] = entry

	return rank, true
}

// Lowest returns the score needed to enter a full table, or 0 if there is room
func (l *Leaderboard) Lowest() uint64 {
	if len(l.Entries) < LeaderboardCapacity {
		return 0
	}
	return l.Entries[len(l.Entries)-1].Score
}
