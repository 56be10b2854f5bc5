package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/common/clock"
	"github.com/KirkDiggler/jackpotdice/internal/common/uuid"
	"github.com/KirkDiggler/jackpotdice/internal/config"
	"github.com/KirkDiggler/jackpotdice/internal/dice"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
	"github.com/KirkDiggler/jackpotdice/internal/services/game"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger from cfg
func SetupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// Game is the wired game service and the client it owns
type Game struct {
	Service     game.Service
	Clock       clock.Clock
	RedisClient *redis.Client
}

// Close releases the Redis connection
func (g *Game) Close() error {
	return g.RedisClient.Close()
}

// NewGame connects to Redis and builds the game service. When an operator is
// configured the ledger is created if it does not exist yet.
func NewGame(ctx context.Context, cfg *config.Config) (*Game, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	repo, err := state.NewRedis(&state.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to create state repository: %w", err)
	}

	clk := clock.New()

	svc, err := game.New(&game.Config{
		RollCooldown:  cfg.RollCooldown,
		Repository:    repo,
		DiceRoller:    dice.New(&dice.Config{}),
		Clock:         clk,
		UUIDGenerator: uuid.New(),
		Logger:        &log.Logger,
	})
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to create game service: %w", err)
	}

	if !cfg.Operator.IsZero() {
		if err := ensureInitialized(ctx, svc, cfg); err != nil {
			redisClient.Close()
			return nil, err
		}
	}

	return &Game{
		Service:     svc,
		Clock:       clk,
		RedisClient: redisClient,
	}, nil
}

func ensureInitialized(ctx context.Context, svc game.Service, cfg *config.Config) error {
	_, err := svc.InitializeGame(ctx, &game.InitializeGameInput{
		Operator:         cfg.Operator,
		PriceToPlay:      cfg.PriceToPlay,
		GamesTillJackpot: cfg.GamesTillJackpot,
	})
	switch {
	case err == nil:
		log.Info().
			Stringer("operator", cfg.Operator).
			Uint64("price_to_play", cfg.PriceToPlay).
			Uint64("games_till_jackpot", cfg.GamesTillJackpot).
			Msg("initialized game")
		return nil
	case errors.Is(err, game.ErrAlreadyInitialized):
		return nil
	default:
		return fmt.Errorf("failed to initialize game: %w", err)
	}
}
