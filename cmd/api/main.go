package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/app"
	"github.com/KirkDiggler/jackpotdice/internal/config"
	"github.com/KirkDiggler/jackpotdice/internal/handlers/api"
	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/rs/zerolog/log"
)

func main() {
	issue := flag.String("issue-token", "", "print a signed token for the given address and exit")
	ttl := flag.Duration("token-ttl", 24*time.Hour, "lifetime of issued tokens")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	app.SetupLogging(cfg)

	if err := cfg.ValidateAPI(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if *issue != "" {
		caller, err := models.ParseAddress(*issue)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid address")
		}
		token, err := api.IssueToken([]byte(cfg.JWTSecret), caller, time.Now(), *ttl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to sign token")
		}
		fmt.Println(token)
		return
	}

	setupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g, err := app.NewGame(setupCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up game")
	}
	defer g.Close()

	srv := api.NewServer(cfg.HTTPAddr, &api.RouterConfig{
		GameService: g.Service,
		JWTSecret:   []byte(cfg.JWTSecret),
		Operator:    cfg.Operator,
	})

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down api")
	}

	log.Info().Msg("api has been shut down")
}
