package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type LeaderboardTestSuite struct {
	suite.Suite
	board *Leaderboard
	alice Address
	bob   Address
}

func (s *LeaderboardTestSuite) SetupTest() {
	s.board = NewLeaderboard()
	s.alice = DeriveAddress("test", "alice")
	s.bob = DeriveAddress("test", "bob")
}

func TestLeaderboardTestSuite(t *testing.T) {
	suite.Run(t, new(LeaderboardTestSuite))
}

func (s *LeaderboardTestSuite) scores() []uint64 {
	out := make([]uint64, 0, len(s.board.Entries))
	for _, e := range s.board.Entries {
		out = append(out, e.Score)
	}
	return out
}

func (s *LeaderboardTestSuite) TestSubmitOrdersDescending() {
	for _, score := range []uint64{50, 30, 80, 10, 99} {
		_, inserted := s.board.Submit(s.alice, score)
		s.True(inserted)
	}

	s.Equal([]uint64{99, 80, 50, 30, 10}, s.scores())
}

func (s *LeaderboardTestSuite) TestTieDoesNotDisplace() {
	s.board.Submit(s.alice, 50)
	rank, inserted := s.board.Submit(s.bob, 50)

	s.True(inserted)
	s.Equal(1, rank)
	s.Equal(s.alice, s.board.Entries[0].Player)
	s.Equal(s.bob, s.board.Entries[1].Player)
}

func (s *LeaderboardTestSuite) TestFullTableRejectsLowerOrEqual() {
	for i := uint64(1); i <= LeaderboardCapacity; i++ {
		s.board.Submit(s.alice, i*10)
	}
	s.Require().Len(s.board.Entries, LeaderboardCapacity)
	s.Equal(uint64(10), s.board.Lowest())

	before := s.scores()

	_, inserted := s.board.Submit(s.bob, 10)
	s.False(inserted)
	_, inserted = s.board.Submit(s.bob, 5)
	s.False(inserted)

	s.Equal(before, s.scores())
}

func (s *LeaderboardTestSuite) TestFullTableEvictsLast() {
	for i := uint64(1); i <= LeaderboardCapacity; i++ {
		s.board.Submit(s.alice, i*10)
	}

	rank, inserted := s.board.Submit(s.bob, 55)

	s.True(inserted)
	s.Equal(5, rank)
	s.Len(s.board.Entries, LeaderboardCapacity)
	s.Equal(uint64(20), s.board.Lowest())
	s.Equal(LeaderboardEntry{Player: s.bob, Score: 55}, s.board.Entries[5])
}

func (s *LeaderboardTestSuite) TestZeroScoreNeverInserted() {
	_, inserted := s.board.Submit(s.alice, 0)

	s.False(inserted)
	s.Empty(s.board.Entries)
}

func (s *LeaderboardTestSuite) TestSamePlayerCanHoldSeveralRanks() {
	s.board.Submit(s.alice, 3000)
	s.board.Submit(s.alice, 6000)

	s.Require().Len(s.board.Entries, 2)
	s.Equal(s.alice, s.board.Entries[0].Player)
	s.Equal(s.alice, s.board.Entries[1].Player)
}
