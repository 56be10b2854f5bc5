package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/dice"
	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
	"github.com/KirkDiggler/jackpotdice/internal/services/game"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// HandlerProvider wraps the game service and exposes HTTP handlers
type HandlerProvider struct {
	svc      game.Service
	operator models.Address
}

// NewHandler returns a new handler provider. Deposits are only accepted
// from operator; a zero operator disables them.
func NewHandler(svc game.Service, operator models.Address) *HandlerProvider {
	return &HandlerProvider{svc: svc, operator: operator}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the game error taxonomy onto status codes
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case game.IsInput(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case game.IsResource(err):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case game.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrNotWinner), errors.Is(err, game.ErrNotOperator):
		writeError(w, http.StatusForbidden, err.Error())
	case game.IsPrecondition(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, state.ErrConflict):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("gave up on contended update")
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "too busy, try again")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return errors.New("invalid JSON")
	}

	return nil
}

// --- Payloads ---

type sessionResponse struct {
	Owner        models.Address `json:"owner"`
	State        string         `json:"state"`
	Credit       uint8          `json:"credit"`
	UpperScore   uint64         `json:"upper_score"`
	LowerScore   uint64         `json:"lower_score"`
	Dice         []int          `json:"dice,omitempty"`
	LastRollTime int64          `json:"last_roll_time"`
	NextRollAt   int64          `json:"next_roll_at,omitempty"`
}

func newSessionResponse(session *models.PlayerSession) *sessionResponse {
	resp := &sessionResponse{
		Owner:        session.Owner,
		State:        string(session.State()),
		Credit:       session.Credit,
		UpperScore:   session.UpperScore,
		LowerScore:   session.LowerScore,
		LastRollTime: session.LastRollTime,
	}
	if session.State() == models.SessionStateRolled {
		resp.Dice = faces(dice.Unpack(session.PackedDice))
	}

	return resp
}

func faces(roll dice.Roll) []int {
	out := make([]int, len(roll))
	for i, face := range roll {
		out[i] = int(face)
	}
	return out
}

type ledgerResponse struct {
	Operator         models.Address  `json:"operator"`
	PriceToPlay      uint64          `json:"price_to_play"`
	Round            uint64          `json:"round"`
	GamesTillJackpot uint64          `json:"games_till_jackpot"`
	GamesPlayed      uint64          `json:"games_played"`
	RoundStartTime   int64           `json:"round_start_time"`
	HighestScore     uint64          `json:"highest_score"`
	CurrentWinner    *models.Address `json:"current_winner"`
	CurrentJackpot   uint64          `json:"current_jackpot"`
}

func newLedgerResponse(ledger *models.GlobalLedger) *ledgerResponse {
	resp := &ledgerResponse{
		Operator:         ledger.Operator,
		PriceToPlay:      ledger.PriceToPlay,
		Round:            ledger.Round,
		GamesTillJackpot: ledger.GamesTillJackpot,
		GamesPlayed:      ledger.GamesPlayed,
		RoundStartTime:   ledger.RoundStartTime,
		HighestScore:     ledger.HighestScore,
		CurrentJackpot:   ledger.CurrentJackpot,
	}
	if ledger.HasWinner() {
		winner := ledger.CurrentWinner
		resp.CurrentWinner = &winner
	}

	return resp
}

type leaderboardEntry struct {
	Rank   int            `json:"rank"`
	Player models.Address `json:"player"`
	Score  uint64         `json:"score"`
}

func newLeaderboardResponse(entries []models.LeaderboardEntry) []leaderboardEntry {
	resp := make([]leaderboardEntry, 0, len(entries))
	for i, entry := range entries {
		resp = append(resp, leaderboardEntry{Rank: i + 1, Player: entry.Player, Score: entry.Score})
	}
	return resp
}

type transferResponse struct {
	ID        string         `json:"id"`
	From      models.Address `json:"from"`
	To        models.Address `json:"to"`
	Amount    uint64         `json:"amount"`
	Reason    string         `json:"reason"`
	Timestamp time.Time      `json:"timestamp"`
}

type depositRequest struct {
	Account models.Address `json:"account"`
	Amount  uint64         `json:"amount"`
}

// --- Handlers ---

// CreateSessionHandler handles POST /v1/session
func (h *HandlerProvider) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.CreateSession(r.Context(), &game.CreateSessionInput{
		Player: callerFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(output.Session))
}

// GetSessionHandler handles GET /v1/session
func (h *HandlerProvider) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.GetSession(r.Context(), &game.GetSessionInput{
		Player: callerFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := newSessionResponse(output.Session)
	resp.NextRollAt = output.NextRollAt
	writeJSON(w, http.StatusOK, resp)
}

// PayHandler handles POST /v1/pay
func (h *HandlerProvider) PayHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.Pay(r.Context(), &game.PayInput{
		Player: callerFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session":        newSessionResponse(output.Session),
		"operator_share": output.OperatorShare,
		"jackpot_share":  output.JackpotShare,
		"jackpot":        output.Jackpot,
	})
}

// RollHandler handles POST /v1/roll
func (h *HandlerProvider) RollHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.RollDice(r.Context(), &game.RollDiceInput{
		Player: callerFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": newSessionResponse(output.Session),
		"dice":    faces(output.Dice),
	})
}

// ScoreHandler handles POST /v1/score/{category}
func (h *HandlerProvider) ScoreHandler(w http.ResponseWriter, r *http.Request) {
	category, err := strconv.ParseUint(chi.URLParam(r, "category"), 10, 8)
	if err != nil {
		writeError(w, http.StatusBadRequest, game.ErrInvalidCategory.Error())
		return
	}

	output, err := h.svc.ScoreRoll(r.Context(), &game.ScoreRollInput{
		Player:   callerFromContext(r.Context()),
		Category: uint8(category),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session": newSessionResponse(output.Session),
		"dice":    faces(output.Dice),
		"points":  output.Points,
	})
}

// EndGameHandler handles POST /v1/end
func (h *HandlerProvider) EndGameHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.EndGame(r.Context(), &game.EndGameInput{
		Player: callerFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := map[string]any{
		"final_score":    output.FinalScore,
		"new_high_score": output.NewHighScore,
		"round_advanced": output.RoundAdvanced,
		"session":        newSessionResponse(output.Session),
		"ledger":         newLedgerResponse(output.Ledger),
		"leaderboard":    newLeaderboardResponse(output.Leaderboard.Entries),
	}
	if output.Rank >= 0 {
		resp["rank"] = output.Rank + 1
	}

	writeJSON(w, http.StatusOK, resp)
}

// WithdrawHandler handles POST /v1/withdraw
func (h *HandlerProvider) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.WithdrawJackpot(r.Context(), &game.WithdrawJackpotInput{
		Caller: callerFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]uint64{
		"amount":  output.Amount,
		"balance": output.Balance,
	})
}

// AdvanceRoundHandler handles POST /v1/round/advance
func (h *HandlerProvider) AdvanceRoundHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.AdvanceRound(r.Context(), &game.AdvanceRoundInput{
		Caller: callerFromContext(r.Context()),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ledger":      newLedgerResponse(output.Ledger),
		"rolled_over": output.RolledOver,
	})
}

// DepositHandler handles POST /v1/deposit
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
	if h.operator.IsZero() || callerFromContext(r.Context()) != h.operator {
		writeError(w, http.StatusForbidden, game.ErrNotOperator.Error())
		return
	}

	var req depositRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	output, err := h.svc.Deposit(r.Context(), &game.DepositInput{
		Account: req.Account,
		Amount:  req.Amount,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account": req.Account,
		"balance": output.Balance,
	})
}

// GetBalanceHandler handles GET /v1/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	output, err := h.svc.GetBalance(r.Context(), &game.GetBalanceInput{
		Account: caller,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account": caller,
		"balance": output.Balance,
	})
}

// GetLedgerHandler handles GET /v1/ledger
func (h *HandlerProvider) GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.GetLedger(r.Context(), &game.GetLedgerInput{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newLedgerResponse(output.Ledger))
}

// GetJackpotHandler handles GET /v1/jackpot
func (h *HandlerProvider) GetJackpotHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.GetLedger(r.Context(), &game.GetLedgerInput{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"jackpot":        output.Jackpot,
		"highest_score":  output.Ledger.HighestScore,
		"current_winner": newLedgerResponse(output.Ledger).CurrentWinner,
		"round":          output.Ledger.Round,
	})
}

// GetLeaderboardHandler handles GET /v1/leaderboard
func (h *HandlerProvider) GetLeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	output, err := h.svc.GetLeaderboard(r.Context(), &game.GetLeaderboardInput{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newLeaderboardResponse(output.Entries))
}

// ListTransfersHandler handles GET /v1/transfers?limit=n
func (h *HandlerProvider) ListTransfersHandler(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	output, err := h.svc.ListTransfers(r.Context(), &game.ListTransfersInput{Limit: limit})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]transferResponse, 0, len(output.Transfers))
	for _, t := range output.Transfers {
		resp = append(resp, transferResponse{
			ID:        t.ID,
			From:      t.From,
			To:        t.To,
			Amount:    t.Amount,
			Reason:    string(t.Reason),
			Timestamp: t.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
