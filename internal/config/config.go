package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var (
	ErrMissingDiscordToken = errors.New("DISCORD_TOKEN is required")
	ErrMissingJWTSecret    = errors.New("JWT_SECRET is required")
)

// Config holds the settings shared by the bot and the API
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DiscordToken  string `env:"DISCORD_TOKEN"`
	ApplicationID string `env:"DISCORD_APPLICATION_ID"`
	GuildID       string `env:"DISCORD_GUILD_ID"`

	// StartingCredits are deposited for Discord players when they first join
	StartingCredits uint64 `env:"DISCORD_STARTING_CREDITS" envDefault:"0"`

	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret string `env:"JWT_SECRET"`

	// Operator is the hex address receiving operator shares. When set the
	// ledger is initialized on startup if it does not exist yet.
	Operator         models.Address `env:"OPERATOR_ADDRESS"`
	PriceToPlay      uint64         `env:"PRICE_TO_PLAY" envDefault:"100"`
	GamesTillJackpot uint64         `env:"GAMES_TILL_JACKPOT" envDefault:"0"`
	RollCooldown     time.Duration  `env:"ROLL_COOLDOWN" envDefault:"10s"`
}

// Load reads an optional .env file and parses the environment
func Load(files ...string) (*Config, error) {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Level returns the configured log level, falling back to info
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	return lvl
}

// ValidateBot checks the settings the Discord bot cannot start without
func (c *Config) ValidateBot() error {
	if c.DiscordToken == "" {
		return ErrMissingDiscordToken
	}

	return nil
}

// ValidateAPI checks the settings the HTTP API cannot start without
func (c *Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}

	return nil
}
