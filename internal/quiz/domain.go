// Package quiz implements the quiz-session orchestration and settlement
// protocol: staking a token amount to start a session, answering generated
// questions, and claiming a score-scaled reward through the external ledger.
package quiz

import (
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
)

// QuestionCount is the fixed size of a generated question set.
const QuestionCount = 10

// OptionCount is the number of answer options per question.
const OptionCount = 4

// Session is the client-cached view of a ledger-owned quiz session. It is
// created by a successful start, mutated exactly once at claim, and never
// deleted client-side.
type Session struct {
	ID            *big.Int       `json:"id"`
	Owner         common.Address `json:"owner"`
	Token         common.Address `json:"token"`
	StartTime     time.Time      `json:"start_time"`
	ExpiryTime    time.Time      `json:"expiry_time"`
	Active        bool           `json:"active"`
	Claimed       bool           `json:"claimed"`
	Score         int            `json:"score"`
	Reward        *big.Int       `json:"reward"`
	TimeRemaining time.Duration  `json:"time_remaining"`
}

// Claimable reports whether the session can be claimed by caller right now.
func (s *Session) Claimable(caller common.Address, now time.Time) bool {
	return s.Active && !s.Claimed && s.Owner == caller && now.Before(s.ExpiryTime)
}

// UserInfo is the client-cached view of per-user ledger state.
type UserInfo struct {
	DailyCount   int64     `json:"daily_count"`
	LastQuizTime time.Time `json:"last_quiz_time"`
	NextQuizTime time.Time `json:"next_quiz_time"`
	WonToday     *big.Int  `json:"won_today"`
	CanQuiz      bool      `json:"can_quiz"`
}

// ContractStats is the client-cached view of per-token ledger state.
type ContractStats struct {
	Balance      *big.Int `json:"balance"`
	ActiveCount  int64    `json:"active_count"`
	MinBalance   *big.Int `json:"min_balance"`
	Operational  bool     `json:"operational"`
	TotalQuizzes int64    `json:"total_quizzes"`
	TotalRewards *big.Int `json:"total_rewards"`
	TotalFees    *big.Int `json:"total_fees"`
}

// Question is one generated multiple-choice question.
type Question struct {
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct_index"`
	Explanation string   `json:"explanation"`
}

// OpStatus tracks a pending operation through its lifecycle.
type OpStatus string

const (
	OpPending   OpStatus = "pending"
	OpSubmitted OpStatus = "submitted"
	OpConfirmed OpStatus = "confirmed"
	OpFailed    OpStatus = "failed"
)

// PendingOperation is the ephemeral record of one in-flight ledger call. It
// is owned by the invocation that created it and discarded once the outcome
// is reported.
type PendingOperation struct {
	ID        uuid.UUID
	Method    string
	Status    OpStatus
	TxHash    common.Hash
	Receipt   *types.Receipt
	CreatedAt time.Time
}

// Phase is a UI-visible stage of an orchestrated operation.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseApproving  Phase = "approving"
	PhaseSubmitting Phase = "submitting"
	PhaseConfirming Phase = "confirming"
	PhaseStarted    Phase = "started"
	PhaseFailed     Phase = "failed"
)

// Precondition errors: local, zero network cost.
var (
	ErrNotConnected  = errors.New("wallet not connected")
	ErrFeeNotLoaded  = errors.New("platform fee not loaded")
	ErrNoToken       = errors.New("no payment token selected")
	ErrInvalidAmount = errors.New("bet amount must be positive")
	ErrNoSessionID   = errors.New("session identifier required")
)

// Network and submission errors.
var (
	ErrWrongNetwork        = errors.New("wrong network")
	ErrApprovalDeclined    = errors.New("approval declined by signer")
	ErrSubmissionDeclined  = errors.New("transaction declined by signer")
	ErrSubmissionFailed    = errors.New("transaction submission failed")
	ErrTransactionFailed   = errors.New("transaction failed on chain")
	ErrInsufficientBalance = errors.New("insufficient token balance")
)

// Session-state errors, caught by the local pre-check before a claim is
// submitted.
var (
	ErrSessionNotActive = errors.New("session is no longer active")
	ErrAlreadyClaimed   = errors.New("reward already claimed")
	ErrNotSessionOwner  = errors.New("session belongs to a different user")
	ErrSessionExpired   = errors.New("session expired")
)
