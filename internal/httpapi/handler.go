// Package httpapi exposes the quizstake daemon's REST surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quizstake/quizstake/internal/quiz"
	"github.com/quizstake/quizstake/pkg/logger"
)

// Handler serves the quiz-session API.
type Handler struct {
	svc    *quiz.Service
	ledger quiz.LedgerReader
	board  *quiz.StatusBoard
	log    *logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc *quiz.Service, ledger quiz.LedgerReader, board *quiz.StatusBoard, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	return &Handler{svc: svc, ledger: ledger, board: board, log: log}
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", h.startSession)
		r.Post("/sessions/{id}/claim", h.claimReward)
		r.Get("/sessions/{id}", h.getSession)
		r.Get("/status", h.getStatus)
		r.Get("/stats", h.getStats)
		r.Get("/rewards/preview", h.previewReward)
		r.Post("/questions", h.generateQuestions)
	})
	return r
}

type startRequest struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type startResponse struct {
	TxHash    string `json:"tx_hash"`
	SessionID string `json:"session_id,omitempty"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "amount must be a base-10 integer string")
		return
	}

	result, err := h.svc.Start(r.Context(), common.HexToAddress(req.Token), amount)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}

	resp := startResponse{TxHash: result.Outcome.Hash.Hex()}
	if result.SessionID != nil {
		resp.SessionID = result.SessionID.String()
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

type claimRequest struct {
	Score int `json:"score"`
}

type claimResponse struct {
	TxHash string `json:"tx_hash"`
	Score  int    `json:"score"`
}

func (h *Handler) claimReward(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := new(big.Int).SetString(chi.URLParam(r, "id"), 10)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Claim(r.Context(), sessionID, req.Score)
	if err != nil {
		h.writeOperationError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, claimResponse{
		TxHash: result.Outcome.Hash.Hex(),
		Score:  result.Score,
	})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := new(big.Int).SetString(chi.URLParam(r, "id"), 10)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	session, err := h.ledger.Session(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

type statusResponse struct {
	Phase    quiz.Phase          `json:"phase"`
	Message  string              `json:"message,omitempty"`
	Stale    bool                `json:"stale"`
	Snapshot quiz.StatusSnapshot `json:"snapshot"`
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Stale:    h.svc.Cache().Stale(),
		Snapshot: h.svc.Cache().Snapshot(),
	}
	if h.board != nil {
		resp.Phase = h.board.Phase()
		resp.Message = h.board.Message()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.Cache().Stats()
	if stats == nil {
		h.writeError(w, http.StatusServiceUnavailable, "platform status not loaded yet")
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

type previewResponse struct {
	Score      int    `json:"score"`
	Multiplier int64  `json:"multiplier"`
	Bet        string `json:"bet"`
	Reward     string `json:"reward"`
}

func (h *Handler) previewReward(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(r.URL.Query().Get("score"))
	if err != nil || score < 0 || score > 100 {
		h.writeError(w, http.StatusBadRequest, "score must be an integer between 0 and 100")
		return
	}
	bet, ok := new(big.Int).SetString(r.URL.Query().Get("bet"), 10)
	if !ok || bet.Sign() < 0 {
		h.writeError(w, http.StatusBadRequest, "bet must be a base-10 integer string")
		return
	}

	h.writeJSON(w, http.StatusOK, previewResponse{
		Score:      score,
		Multiplier: quiz.RewardMultiplier(score),
		Bet:        bet.String(),
		Reward:     quiz.RewardAmount(score, bet).String(),
	})
}

type questionsRequest struct {
	Topic string `json:"topic"`
}

func (h *Handler) generateQuestions(w http.ResponseWriter, r *http.Request) {
	var req questionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questions, err := h.svc.PrepareQuestions(r.Context(), req.Topic)
	if err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeOperationError maps orchestrator sentinels to HTTP statuses.
func (h *Handler) writeOperationError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, quiz.ErrNotConnected),
		errors.Is(err, quiz.ErrNoToken),
		errors.Is(err, quiz.ErrInvalidAmount),
		errors.Is(err, quiz.ErrNoSessionID):
		status = http.StatusBadRequest
	case errors.Is(err, quiz.ErrFeeNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, quiz.ErrInsufficientBalance),
		errors.Is(err, quiz.ErrApprovalDeclined),
		errors.Is(err, quiz.ErrSubmissionDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, quiz.ErrSessionNotActive),
		errors.Is(err, quiz.ErrAlreadyClaimed),
		errors.Is(err, quiz.ErrSessionExpired):
		status = http.StatusConflict
	case errors.Is(err, quiz.ErrNotSessionOwner):
		status = http.StatusForbidden
	case errors.Is(err, quiz.ErrWrongNetwork),
		errors.Is(err, quiz.ErrTransactionFailed),
		errors.Is(err, quiz.ErrSubmissionFailed):
		status = http.StatusBadGateway
	}
	h.writeError(w, status, err.Error())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.WithError(err).Error("write response failed")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
