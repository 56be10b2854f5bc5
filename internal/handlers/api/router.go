package api

import (
	"net/http"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/services/game"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// RouterConfig holds what the router needs to serve the game
type RouterConfig struct {
	GameService game.Service

	// JWTSecret verifies HS256 caller tokens
	JWTSecret []byte

	// Operator is the only caller allowed to deposit
	Operator models.Address
}

// NewRouter constructs a chi router with all API endpoints registered
func NewRouter(cfg *RouterConfig) http.Handler {
	h := NewHandler(cfg.GameService, cfg.Operator)
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(accessLog)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireAuth(cfg.JWTSecret))

		r.Post("/session", h.CreateSessionHandler)
		r.Get("/session", h.GetSessionHandler)
		r.Post("/pay", h.PayHandler)
		r.Post("/roll", h.RollHandler)
		r.Post("/score/{category}", h.ScoreHandler)
		r.Post("/end", h.EndGameHandler)
		r.Post("/withdraw", h.WithdrawHandler)
		r.Post("/round/advance", h.AdvanceRoundHandler)
		r.Post("/deposit", h.DepositHandler)

		r.Get("/balance", h.GetBalanceHandler)
		r.Get("/ledger", h.GetLedgerHandler)
		r.Get("/jackpot", h.GetJackpotHandler)
		r.Get("/leaderboard", h.GetLeaderboardHandler)
		r.Get("/transfers", h.ListTransfersHandler)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}

// accessLog writes one zerolog line per request
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
