package game

import (
	"context"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/jackpotdice/internal/common/clock/mocks"
	uuidMocks "github.com/KirkDiggler/jackpotdice/internal/common/uuid/mocks"
	"github.com/KirkDiggler/jackpotdice/internal/dice"
	diceMocks "github.com/KirkDiggler/jackpotdice/internal/dice/mocks"
	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
	stateMocks "github.com/KirkDiggler/jackpotdice/internal/repositories/state/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type GameServiceTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockRepo       *stateMocks.MockRepository
	mockDiceRoller *diceMocks.MockRoller
	mockClock      *clockMocks.MockClock
	mockUUID       *uuidMocks.MockUUID
	gameService    Service
	ctx            context.Context

	// Test data
	testTime     time.Time
	testPlayer   models.Address
	testRival    models.Address
	testOperator models.Address

	// Reusable test fixtures
	ledger      *models.GlobalLedger
	leaderboard *models.Leaderboard
	session     *models.PlayerSession
}

func (s *GameServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRepo = stateMocks.NewMockRepository(s.mockCtrl)
	s.mockDiceRoller = diceMocks.NewMockRoller(s.mockCtrl)
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockUUID = uuidMocks.NewMockUUID(s.mockCtrl)

	s.ctx = context.Background()

	// Initialize test data
	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.testPlayer = models.DeriveAddress("test", "player")
	s.testRival = models.DeriveAddress("test", "rival")
	s.testOperator = models.DeriveAddress("test", "operator")

	// Set up the clock mock to return our test time
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()
	s.mockUUID.EXPECT().NewUUID().Return("test-transfer-id").AnyTimes()

	s.ledger = &models.GlobalLedger{
		Operator:       s.testOperator,
		PriceToPlay:    100,
		Round:          1,
		RoundStartTime: s.testTime.Add(-time.Hour).Unix(),
	}
	s.leaderboard = models.NewLeaderboard()
	s.session = models.NewPlayerSession(s.testPlayer)

	svc, err := New(&Config{
		Repository:    s.mockRepo,
		DiceRoller:    s.mockDiceRoller,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
	})
	s.Require().NoError(err)
	s.gameService = svc
}

func (s *GameServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestGameServiceSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}

// expectExecute runs the operation against tx the way the repository would
func (s *GameServiceTestSuite) expectExecute(tx *state.Tx) {
	s.mockRepo.EXPECT().
		Execute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *state.ExecuteInput) error {
			return input.Fn(tx)
		})
}

// expectScopedExecute is expectExecute that also checks which shared records
// the operation watches
func (s *GameServiceTestSuite) expectScopedExecute(records state.Record, tx *state.Tx) {
	s.mockRepo.EXPECT().
		Execute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *state.ExecuteInput) error {
			s.Equal(records, input.Records)
			return input.Fn(tx)
		})
}

func (s *GameServiceTestSuite) newTx(balances map[models.Address]uint64) *state.Tx {
	return state.NewTx(&state.NewTxInput{
		Ledger:      s.ledger,
		Leaderboard: s.leaderboard,
		Session:     s.session,
		Balances:    balances,
	})
}

func (s *GameServiceTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{})
	s.ErrorIs(err, ErrNilRepository)

	_, err = New(&Config{Repository: s.mockRepo})
	s.ErrorIs(err, ErrNilDiceRoller)

	_, err = New(&Config{Repository: s.mockRepo, DiceRoller: s.mockDiceRoller})
	s.ErrorIs(err, ErrNilClock)

	_, err = New(&Config{Repository: s.mockRepo, DiceRoller: s.mockDiceRoller, Clock: s.mockClock})
	s.ErrorIs(err, ErrNilUUIDGenerator)
}

func (s *GameServiceTestSuite) TestNewRoundsCooldownUpToWholeSeconds() {
	for _, tc := range []struct {
		cooldown time.Duration
		expected int64
	}{
		{cooldown: 0, expected: 10},
		{cooldown: 500 * time.Millisecond, expected: 1},
		{cooldown: time.Second, expected: 1},
		{cooldown: 1500 * time.Millisecond, expected: 2},
		{cooldown: 3 * time.Second, expected: 3},
	} {
		svc, err := New(&Config{
			Repository:    s.mockRepo,
			DiceRoller:    s.mockDiceRoller,
			Clock:         s.mockClock,
			UUIDGenerator: s.mockUUID,
			RollCooldown:  tc.cooldown,
		})
		s.Require().NoError(err)
		s.Equal(tc.expected, svc.cooldown, tc.cooldown.String())
	}
}

func (s *GameServiceTestSuite) TestSubSecondCooldownStillSpacesRolls() {
	svc, err := New(&Config{
		Repository:    s.mockRepo,
		DiceRoller:    s.mockDiceRoller,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
		RollCooldown:  500 * time.Millisecond,
	})
	s.Require().NoError(err)

	// Rolled a second ago on the same credit
	s.session.Credit = 1
	s.session.LastRollTime = s.testTime.Unix() - 1
	s.expectExecute(s.newTx(nil))

	_, err = svc.RollDice(s.ctx, &RollDiceInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrCooldownActive)
}

func (s *GameServiceTestSuite) TestInitializeGame() {
	tx := state.NewTx(&state.NewTxInput{})
	s.expectExecute(tx)

	output, err := s.gameService.InitializeGame(s.ctx, &InitializeGameInput{
		Operator:         s.testOperator,
		PriceToPlay:      100,
		GamesTillJackpot: 5,
	})
	s.Require().NoError(err)

	s.Equal(uint64(1), output.Ledger.Round)
	s.Equal(s.testOperator, output.Ledger.Operator)
	s.Equal(uint64(100), output.Ledger.PriceToPlay)
	s.Equal(uint64(5), output.Ledger.GamesTillJackpot)
	s.Equal(s.testTime.Unix(), output.Ledger.RoundStartTime)
	s.True(output.Ledger.CurrentWinner.IsZero())
	s.Zero(output.Ledger.HighestScore)
	s.Require().NotNil(tx.Leaderboard)
	s.Empty(tx.Leaderboard.Entries)
}

func (s *GameServiceTestSuite) TestInitializeGameTwice() {
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.InitializeGame(s.ctx, &InitializeGameInput{
		Operator:    s.testOperator,
		PriceToPlay: 100,
	})
	s.ErrorIs(err, ErrAlreadyInitialized)
}

func (s *GameServiceTestSuite) TestInitializeGameValidatesInput() {
	_, err := s.gameService.InitializeGame(s.ctx, &InitializeGameInput{PriceToPlay: 100})
	s.ErrorIs(err, ErrInvalidPlayer)
}

func (s *GameServiceTestSuite) TestInitializeGameFreeToPlay() {
	s.expectExecute(state.NewTx(&state.NewTxInput{}))

	output, err := s.gameService.InitializeGame(s.ctx, &InitializeGameInput{Operator: s.testOperator})
	s.Require().NoError(err)
	s.Zero(output.Ledger.PriceToPlay)
}

func (s *GameServiceTestSuite) TestPayFreeGameMovesNothing() {
	s.ledger.PriceToPlay = 0
	tx := s.newTx(nil)
	s.expectExecute(tx)

	output, err := s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Zero(output.OperatorShare)
	s.Zero(output.JackpotShare)
	s.Zero(output.Jackpot)
	s.Equal(uint8(1), output.Session.Credit)
	s.Empty(tx.Transfers())
	s.balance(tx, s.testPlayer, 0)
}

func (s *GameServiceTestSuite) TestCreateSession() {
	tx := state.NewTx(&state.NewTxInput{})
	s.expectExecute(tx)

	output, err := s.gameService.CreateSession(s.ctx, &CreateSessionInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Equal(s.testPlayer, output.Session.Owner)
	s.Equal(models.SessionStateIdle, output.Session.State())
	s.Equal(s.testPlayer, tx.Session.Owner)
}

func (s *GameServiceTestSuite) TestCreateSessionExists() {
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.CreateSession(s.ctx, &CreateSessionInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrSessionExists)
}

func (s *GameServiceTestSuite) TestCreateSessionWithStartingBalance() {
	tx := state.NewTx(&state.NewTxInput{})
	s.expectScopedExecute(state.RecordBalances, tx)

	output, err := s.gameService.CreateSession(s.ctx, &CreateSessionInput{
		Player:          s.testPlayer,
		StartingBalance: 500,
	})
	s.Require().NoError(err)

	s.Equal(uint64(500), output.Balance)
	s.Equal(s.testPlayer, tx.Session.Owner)
	s.balance(tx, s.testPlayer, 500)

	transfers := tx.Transfers()
	s.Require().Len(transfers, 1)
	s.Equal(models.TransferReasonDeposit, transfers[0].Reason)
	s.True(transfers[0].From.IsZero())
}

func (s *GameServiceTestSuite) TestCreateSessionExistsGrantsNothing() {
	tx := s.newTx(map[models.Address]uint64{s.testPlayer: 0})
	s.expectExecute(tx)

	_, err := s.gameService.CreateSession(s.ctx, &CreateSessionInput{
		Player:          s.testPlayer,
		StartingBalance: 500,
	})
	s.ErrorIs(err, ErrSessionExists)
	s.Empty(tx.Transfers())
	s.balance(tx, s.testPlayer, 0)
}

func (s *GameServiceTestSuite) TestPaySplitsPrice() {
	tx := s.newTx(map[models.Address]uint64{s.testPlayer: 1000})
	s.expectExecute(tx)

	output, err := s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Equal(uint64(25), output.OperatorShare)
	s.Equal(uint64(75), output.JackpotShare)
	s.Equal(uint64(75), output.Jackpot)
	s.Equal(uint8(1), output.Session.Credit)
	s.False(output.Session.CanRoll)
	s.Equal(uint64(75), s.ledger.CurrentJackpot)

	s.balance(tx, s.testPlayer, 900)
	s.balance(tx, s.testOperator, 25)
	s.balance(tx, models.JackpotAddress, 75)

	transfers := tx.Transfers()
	s.Require().Len(transfers, 2)
	s.Equal(models.TransferReasonOperatorShare, transfers[0].Reason)
	s.Equal(models.TransferReasonJackpotShare, transfers[1].Reason)
	s.Equal("test-transfer-id", transfers[0].ID)
	s.Equal(s.testTime, transfers[0].Timestamp)
}

func (s *GameServiceTestSuite) TestPayPriceOfOneGoesToPool() {
	s.ledger.PriceToPlay = 1
	tx := s.newTx(map[models.Address]uint64{s.testPlayer: 1})
	s.expectExecute(tx)

	output, err := s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Zero(output.OperatorShare)
	s.Equal(uint64(1), output.JackpotShare)
	s.balance(tx, s.testPlayer, 0)
	s.balance(tx, s.testOperator, 0)
	s.balance(tx, models.JackpotAddress, 1)
	s.Len(tx.Transfers(), 1)
}

func (s *GameServiceTestSuite) TestPayAlreadyInGame() {
	s.session.Credit = 1
	s.expectExecute(s.newTx(map[models.Address]uint64{s.testPlayer: 1000}))

	_, err := s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrAlreadyInGame)
	s.True(IsPrecondition(err))
}

func (s *GameServiceTestSuite) TestPayInsufficientFunds() {
	tx := s.newTx(map[models.Address]uint64{s.testPlayer: 99})
	s.expectExecute(tx)

	_, err := s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrInsufficientFunds)
	s.True(IsResource(err))
	s.Zero(s.session.Credit)
	s.Empty(tx.Transfers())
}

func (s *GameServiceTestSuite) TestPayRequiresRecords() {
	s.expectExecute(state.NewTx(&state.NewTxInput{Session: s.session}))
	_, err := s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrNotInitialized)

	s.expectExecute(state.NewTx(&state.NewTxInput{Ledger: s.ledger}))
	_, err = s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrSessionNotFound)
	s.True(IsNotFound(err))

	_, err = s.gameService.Pay(s.ctx, &PayInput{})
	s.ErrorIs(err, ErrInvalidPlayer)
}

func (s *GameServiceTestSuite) TestRollDice() {
	s.session.Credit = 1
	s.expectExecute(s.newTx(nil))

	roll := dice.Roll{1, 2, 3, 4, 6}
	s.mockDiceRoller.EXPECT().Roll(s.testPlayer, s.testTime.Unix()).Return(roll)

	output, err := s.gameService.RollDice(s.ctx, &RollDiceInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Equal(roll, output.Dice)
	s.True(output.Session.CanRoll)
	s.Equal(roll.Pack(), output.Session.PackedDice)
	s.Equal(s.testTime.Unix(), output.Session.LastRollTime)
	s.Equal(models.SessionStateRolled, s.session.State())
}

func (s *GameServiceTestSuite) TestRollDiceNotPaid() {
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.RollDice(s.ctx, &RollDiceInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrNotPaid)
}

func (s *GameServiceTestSuite) TestRollDiceAlreadyRolled() {
	s.session.Credit = 1
	s.session.CanRoll = true
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.RollDice(s.ctx, &RollDiceInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrAlreadyRolled)
}

func (s *GameServiceTestSuite) TestRollDiceCooldown() {
	s.session.Credit = 1
	s.session.LastRollTime = s.testTime.Unix() - 10
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.RollDice(s.ctx, &RollDiceInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrCooldownActive)
	s.Equal(s.testTime.Unix()-10, s.session.LastRollTime)

	// One second later the cooldown has passed
	s.session.LastRollTime = s.testTime.Unix() - 11
	s.expectExecute(s.newTx(nil))
	s.mockDiceRoller.EXPECT().Roll(s.testPlayer, s.testTime.Unix()).Return(dice.Roll{1, 1, 1, 1, 1})

	_, err = s.gameService.RollDice(s.ctx, &RollDiceInput{Player: s.testPlayer})
	s.Require().NoError(err)
}

func (s *GameServiceTestSuite) TestScoreRollAccumulates() {
	s.session.Credit = 1
	s.session.CanRoll = true
	s.session.UpperScore = 3000
	s.session.PackedDice = dice.Roll{4, 4, 2, 4, 6}.Pack()
	s.expectExecute(s.newTx(nil))

	output, err := s.gameService.ScoreRoll(s.ctx, &ScoreRollInput{Player: s.testPlayer, Category: 4})
	s.Require().NoError(err)

	s.Equal(uint64(12000), output.Points)
	s.Equal(uint64(15000), output.Session.UpperScore)
	s.False(output.Session.CanRoll)
	s.Equal(uint8(1), output.Session.Credit)
	s.Equal(models.SessionStatePaid, s.session.State())
}

func (s *GameServiceTestSuite) TestScoreRollNotRolled() {
	s.session.Credit = 1
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.ScoreRoll(s.ctx, &ScoreRollInput{Player: s.testPlayer, Category: 1})
	s.ErrorIs(err, ErrNotRolled)
}

func (s *GameServiceTestSuite) TestScoreRollInvalidCategory() {
	s.session.Credit = 1
	s.session.CanRoll = true
	s.session.PackedDice = dice.Roll{1, 2, 3, 4, 5}.Pack()

	for _, category := range []uint8{0, 7} {
		s.expectExecute(s.newTx(nil))

		_, err := s.gameService.ScoreRoll(s.ctx, &ScoreRollInput{Player: s.testPlayer, Category: category})
		s.ErrorIs(err, ErrInvalidCategory)
		s.True(IsInput(err))
		s.True(s.session.CanRoll)
		s.Zero(s.session.UpperScore)
	}
}

func (s *GameServiceTestSuite) TestEndGameNewHighScore() {
	s.ledger.HighestScore = 5000
	s.session.Credit = 1
	s.session.UpperScore = 9000
	s.session.PackedDice = dice.Roll{3, 3, 3, 2, 1}.Pack()
	s.session.LastRollTime = s.testTime.Unix() - 30
	s.expectExecute(s.newTx(nil))

	output, err := s.gameService.EndGame(s.ctx, &EndGameInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Equal(uint64(9000), output.FinalScore)
	s.True(output.NewHighScore)
	s.Equal(0, output.Rank)
	s.False(output.RoundAdvanced)
	s.Equal(uint64(9000), s.ledger.HighestScore)
	s.Equal(s.testPlayer, s.ledger.CurrentWinner)
	s.Equal(uint64(1), s.ledger.GamesPlayed)
	s.Require().Len(s.leaderboard.Entries, 1)
	s.Equal(models.LeaderboardEntry{Player: s.testPlayer, Score: 9000}, s.leaderboard.Entries[0])

	// Session is back to idle, cooldown clock kept
	s.Equal(models.PlayerSession{
		Owner:        s.testPlayer,
		LastRollTime: s.testTime.Unix() - 30,
	}, *s.session)
}

func (s *GameServiceTestSuite) TestEndGameLowerScoreKeepsWinner() {
	s.ledger.HighestScore = 20000
	s.ledger.CurrentWinner = s.testRival
	s.leaderboard.Submit(s.testRival, 20000)
	s.session.Credit = 1
	s.session.UpperScore = 20000
	s.expectExecute(s.newTx(nil))

	output, err := s.gameService.EndGame(s.ctx, &EndGameInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.False(output.NewHighScore)
	s.Equal(1, output.Rank)
	s.Equal(s.testRival, s.ledger.CurrentWinner)
	s.Equal(uint64(20000), s.ledger.HighestScore)
	s.Len(s.leaderboard.Entries, 2)
}

func (s *GameServiceTestSuite) TestEndGameZeroScoreDoesNotPlace() {
	s.session.Credit = 1
	s.expectExecute(s.newTx(nil))

	output, err := s.gameService.EndGame(s.ctx, &EndGameInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Equal(-1, output.Rank)
	s.False(output.NewHighScore)
	s.Empty(s.leaderboard.Entries)
	s.Zero(s.session.Credit)
}

func (s *GameServiceTestSuite) TestEndGameRequiresCredit() {
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.EndGame(s.ctx, &EndGameInput{Player: s.testPlayer})
	s.ErrorIs(err, ErrNotPaid)
	s.Zero(s.ledger.GamesPlayed)
}

func (s *GameServiceTestSuite) TestEndGameAdvancesDueRound() {
	s.ledger.GamesTillJackpot = 3
	s.ledger.GamesPlayed = 3
	s.ledger.HighestScore = 30000
	s.ledger.CurrentWinner = s.testRival
	s.session.Credit = 1
	s.session.UpperScore = 2000
	s.expectExecute(s.newTx(map[models.Address]uint64{models.JackpotAddress: 450}))

	output, err := s.gameService.EndGame(s.ctx, &EndGameInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.True(output.RoundAdvanced)
	s.True(output.NewHighScore)
	s.Equal(uint64(2), s.ledger.Round)
	s.Equal(s.testTime.Unix(), s.ledger.RoundStartTime)
	s.Equal(uint64(1), s.ledger.GamesPlayed)
	s.Equal(uint64(2000), s.ledger.HighestScore)
	s.Equal(s.testPlayer, s.ledger.CurrentWinner)
	s.Equal(uint64(450), s.ledger.CurrentJackpot)
}

func (s *GameServiceTestSuite) TestEndGameRotationDisabled() {
	s.ledger.GamesPlayed = 100
	s.session.Credit = 1
	s.expectExecute(s.newTx(nil))

	output, err := s.gameService.EndGame(s.ctx, &EndGameInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.False(output.RoundAdvanced)
	s.Equal(uint64(1), s.ledger.Round)
	s.Equal(uint64(101), s.ledger.GamesPlayed)
}

func (s *GameServiceTestSuite) TestWithdrawJackpot() {
	s.ledger.CurrentWinner = s.testPlayer
	s.ledger.CurrentJackpot = 300
	tx := s.newTx(map[models.Address]uint64{
		models.JackpotAddress: 300,
		s.testPlayer:          50,
	})
	s.expectExecute(tx)

	output, err := s.gameService.WithdrawJackpot(s.ctx, &WithdrawJackpotInput{Caller: s.testPlayer})
	s.Require().NoError(err)

	s.Equal(uint64(300), output.Amount)
	s.Equal(uint64(350), output.Balance)
	s.balance(tx, models.JackpotAddress, 0)
	s.Zero(s.ledger.CurrentJackpot)
	s.Equal(s.testPlayer, s.ledger.CurrentWinner)

	transfers := tx.Transfers()
	s.Require().Len(transfers, 1)
	s.Equal(models.TransferReasonJackpotPayout, transfers[0].Reason)
	s.Equal(models.JackpotAddress, transfers[0].From)
}

func (s *GameServiceTestSuite) TestWithdrawJackpotNotWinner() {
	s.ledger.CurrentWinner = s.testRival
	s.expectExecute(s.newTx(map[models.Address]uint64{models.JackpotAddress: 300}))

	_, err := s.gameService.WithdrawJackpot(s.ctx, &WithdrawJackpotInput{Caller: s.testPlayer})
	s.ErrorIs(err, ErrNotWinner)

	_, err = s.gameService.WithdrawJackpot(s.ctx, &WithdrawJackpotInput{})
	s.ErrorIs(err, ErrNotWinner)
}

func (s *GameServiceTestSuite) TestWithdrawJackpotNoWinnerYet() {
	s.expectExecute(s.newTx(map[models.Address]uint64{models.JackpotAddress: 300}))

	_, err := s.gameService.WithdrawJackpot(s.ctx, &WithdrawJackpotInput{Caller: s.testPlayer})
	s.ErrorIs(err, ErrNotWinner)
}

func (s *GameServiceTestSuite) TestWithdrawJackpotEmptyPool() {
	s.ledger.CurrentWinner = s.testPlayer
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.WithdrawJackpot(s.ctx, &WithdrawJackpotInput{Caller: s.testPlayer})
	s.ErrorIs(err, ErrNoJackpot)
	s.True(IsResource(err))
}

func (s *GameServiceTestSuite) TestAdvanceRound() {
	s.ledger.HighestScore = 9000
	s.ledger.CurrentWinner = s.testPlayer
	s.ledger.GamesPlayed = 2
	s.expectExecute(s.newTx(map[models.Address]uint64{models.JackpotAddress: 120}))

	output, err := s.gameService.AdvanceRound(s.ctx, &AdvanceRoundInput{Caller: s.testOperator})
	s.Require().NoError(err)

	s.Equal(uint64(120), output.RolledOver)
	s.Equal(uint64(2), output.Ledger.Round)
	s.Zero(output.Ledger.HighestScore)
	s.Zero(output.Ledger.GamesPlayed)
	s.True(output.Ledger.CurrentWinner.IsZero())
}

func (s *GameServiceTestSuite) TestAdvanceRoundNotOperator() {
	s.expectExecute(s.newTx(nil))

	_, err := s.gameService.AdvanceRound(s.ctx, &AdvanceRoundInput{Caller: s.testPlayer})
	s.ErrorIs(err, ErrNotOperator)
	s.Equal(uint64(1), s.ledger.Round)
}

func (s *GameServiceTestSuite) TestDeposit() {
	tx := s.newTx(map[models.Address]uint64{s.testPlayer: 10})
	s.expectExecute(tx)

	output, err := s.gameService.Deposit(s.ctx, &DepositInput{Account: s.testPlayer, Amount: 90})
	s.Require().NoError(err)
	s.Equal(uint64(100), output.Balance)

	transfers := tx.Transfers()
	s.Require().Len(transfers, 1)
	s.True(transfers[0].From.IsZero())
	s.Equal(models.TransferReasonDeposit, transfers[0].Reason)

	_, err = s.gameService.Deposit(s.ctx, &DepositInput{Account: s.testPlayer})
	s.ErrorIs(err, ErrInvalidAmount)
}

func (s *GameServiceTestSuite) TestDepositIntoPoolUpdatesJackpot() {
	s.expectExecute(s.newTx(map[models.Address]uint64{models.JackpotAddress: 75}))

	_, err := s.gameService.Deposit(s.ctx, &DepositInput{Account: models.JackpotAddress, Amount: 25})
	s.Require().NoError(err)
	s.Equal(uint64(100), s.ledger.CurrentJackpot)
}

func (s *GameServiceTestSuite) TestGetSession() {
	s.session.Credit = 1
	s.session.CanRoll = true
	s.session.PackedDice = dice.Roll{6, 5, 4, 3, 2}.Pack()
	s.session.LastRollTime = 1000
	s.expectExecute(s.newTx(nil))

	output, err := s.gameService.GetSession(s.ctx, &GetSessionInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.Equal(dice.Roll{6, 5, 4, 3, 2}, output.Dice)
	s.Equal(int64(1011), output.NextRollAt)
}

func (s *GameServiceTestSuite) TestGetLedger() {
	s.expectExecute(s.newTx(map[models.Address]uint64{models.JackpotAddress: 42}))

	output, err := s.gameService.GetLedger(s.ctx, &GetLedgerInput{})
	s.Require().NoError(err)
	s.Equal(uint64(42), output.Jackpot)
	s.Equal(s.testOperator, output.Ledger.Operator)

	s.expectExecute(state.NewTx(&state.NewTxInput{}))
	_, err = s.gameService.GetLedger(s.ctx, &GetLedgerInput{})
	s.ErrorIs(err, ErrNotInitialized)
}

func (s *GameServiceTestSuite) TestListTransfers() {
	expected := []*models.Transfer{{ID: "a"}, {ID: "b"}}
	s.mockRepo.EXPECT().
		ListTransfers(gomock.Any(), &state.ListTransfersInput{Limit: 5}).
		Return(&state.ListTransfersOutput{Transfers: expected}, nil)

	output, err := s.gameService.ListTransfers(s.ctx, &ListTransfersInput{Limit: 5})
	s.Require().NoError(err)
	s.Equal(expected, output.Transfers)
}

func (s *GameServiceTestSuite) TestOperationsWatchOnlyWhatTheyTouch() {
	s.session.Credit = 1
	s.session.CanRoll = true
	s.session.PackedDice = dice.Roll{1, 2, 3, 4, 5}.Pack()
	s.ledger.CurrentWinner = s.testPlayer
	s.ledger.HighestScore = 10
	funded := map[models.Address]uint64{models.JackpotAddress: 50}

	s.expectScopedExecute(0, s.newTx(nil))
	_, err := s.gameService.GetSession(s.ctx, &GetSessionInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.expectScopedExecute(0, s.newTx(nil))
	_, err = s.gameService.ScoreRoll(s.ctx, &ScoreRollInput{Player: s.testPlayer, Category: 1})
	s.Require().NoError(err)

	s.expectScopedExecute(0, state.NewTx(&state.NewTxInput{}))
	_, err = s.gameService.CreateSession(s.ctx, &CreateSessionInput{Player: s.testRival})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordLeaderboard, s.newTx(nil))
	_, err = s.gameService.GetLeaderboard(s.ctx, &GetLeaderboardInput{})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordBalances, s.newTx(nil))
	_, err = s.gameService.GetBalance(s.ctx, &GetBalanceInput{Account: s.testPlayer})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordBalances, s.newTx(nil))
	_, err = s.gameService.Deposit(s.ctx, &DepositInput{Account: s.testPlayer, Amount: 1})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordLedger|state.RecordBalances, s.newTx(nil))
	_, err = s.gameService.Deposit(s.ctx, &DepositInput{Account: models.JackpotAddress, Amount: 1})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordLedger|state.RecordBalances, s.newTx(funded))
	_, err = s.gameService.GetLedger(s.ctx, &GetLedgerInput{})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordLedger|state.RecordBalances, s.newTx(funded))
	_, err = s.gameService.WithdrawJackpot(s.ctx, &WithdrawJackpotInput{Caller: s.testPlayer})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordLedger|state.RecordBalances, s.newTx(nil))
	_, err = s.gameService.AdvanceRound(s.ctx, &AdvanceRoundInput{Caller: s.testOperator})
	s.Require().NoError(err)

	s.expectScopedExecute(state.RecordAll, s.newTx(nil))
	_, err = s.gameService.EndGame(s.ctx, &EndGameInput{Player: s.testPlayer})
	s.Require().NoError(err)

	s.session.Reset()
	s.expectScopedExecute(state.RecordLedger|state.RecordBalances, s.newTx(map[models.Address]uint64{s.testPlayer: 100}))
	_, err = s.gameService.Pay(s.ctx, &PayInput{Player: s.testPlayer})
	s.Require().NoError(err)
}

func (s *GameServiceTestSuite) balance(tx *state.Tx, addr models.Address, expected uint64) {
	s.T().Helper()
	actual, err := tx.Balance(addr)
	s.Require().NoError(err)
	s.Equal(expected, actual)
}
