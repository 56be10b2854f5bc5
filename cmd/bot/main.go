package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/app"
	"github.com/KirkDiggler/jackpotdice/internal/config"
	"github.com/KirkDiggler/jackpotdice/internal/handlers/discord"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	app.SetupLogging(cfg)

	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g, err := app.NewGame(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up game")
	}
	defer g.Close()

	diceCmd, err := discord.NewDiceCommand(&discord.DiceCommandConfig{
		GameService:     g.Service,
		Clock:           g.Clock,
		StartingCredits: cfg.StartingCredits,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dice command")
	}

	bot, err := discord.New(&discord.Config{
		Token:         cfg.DiscordToken,
		ApplicationID: cfg.ApplicationID,
		GuildID:       cfg.GuildID,
		Commands:      []discord.CommandHandler{diceCmd},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Discord bot")
	}

	if err := bot.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start Discord bot")
	}

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if err := bot.Stop(); err != nil {
		log.Error().Err(err).Msg("error stopping bot")
	}

	log.Info().Msg("bot has been shut down")
}
