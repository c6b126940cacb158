package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quizstake/quizstake/internal/chain"
	"github.com/quizstake/quizstake/internal/wallet"
	"github.com/quizstake/quizstake/pkg/logger"
)

// Service orchestrates quiz sessions: it composes the allowance manager and
// the transaction executor to start a session and to claim its reward, and
// keeps the cached view state fresh around each operation.
type Service struct {
	wallet          wallet.Wallet
	ledger          LedgerReader
	tokens          TokenReader
	runner          TxRunner
	allowance       *AllowanceManager
	cache           *StatusCache
	notifier        Notifier
	generator       *Generator
	requiredChainID *big.Int
	log             *logger.Logger
}

// ServiceConfig holds orchestrator dependencies.
type ServiceConfig struct {
	Wallet          wallet.Wallet
	Ledger          LedgerReader
	Tokens          TokenReader
	Runner          TxRunner
	Allowance       *AllowanceManager
	Cache           *StatusCache
	Notifier        Notifier
	RequiredChainID *big.Int
	Log             *logger.Logger
}

// NewService creates the session orchestrator.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("status cache required")
	}
	if cfg.RequiredChainID == nil {
		return nil, fmt.Errorf("required chain id missing")
	}
	if cfg.Allowance == nil {
		cfg.Allowance = NewAllowanceManager(cfg.Tokens, cfg.Runner, cfg.Log)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NewStatusBoard(0)
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewDefault("quiz")
	}

	return &Service{
		wallet:          cfg.Wallet,
		ledger:          cfg.Ledger,
		tokens:          cfg.Tokens,
		runner:          cfg.Runner,
		allowance:       cfg.Allowance,
		cache:           cfg.Cache,
		notifier:        cfg.Notifier,
		requiredChainID: cfg.RequiredChainID,
		log:             cfg.Log,
	}, nil
}

// WithGenerator attaches the question-generation client.
func (s *Service) WithGenerator(g *Generator) {
	s.generator = g
}

// Cache returns the status cache.
func (s *Service) Cache() *StatusCache {
	return s.cache
}

// StartResult reports a settled start operation. SessionID is nil when the
// transaction succeeded but the identifier could not be recovered from the
// receipt; callers must treat that as a distinct case from failure.
type StartResult struct {
	Outcome   *TxOutcome
	SessionID *big.Int
}

// ClaimResult reports a settled claim operation.
type ClaimResult struct {
	Outcome *TxOutcome
	Score   int
}

// PrepareQuestions fetches, validates and balances a question set for the
// topic. The balancer runs once per generated set before a session may start.
func (s *Service) PrepareQuestions(ctx context.Context, topic string) ([]Question, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("question generator not configured")
	}
	return s.generator.Generate(ctx, topic)
}

// Start runs the start saga: local validation, one network switch if needed,
// allowance check and approval, submission, and session-identifier recovery
// from the receipt.
func (s *Service) Start(ctx context.Context, token common.Address, amount *big.Int) (*StartResult, error) {
	s.notifier.PhaseChanged(PhaseValidating)

	if err := s.validateStart(token, amount); err != nil {
		return nil, s.fail(err)
	}

	if err := s.ensureNetwork(ctx); err != nil {
		return nil, s.fail(err)
	}

	owner := s.wallet.Address()

	balance, err := s.tokens.BalanceOf(ctx, token, owner)
	if err != nil {
		return nil, s.fail(fmt.Errorf("read balance: %w", err))
	}
	if balance.Cmp(amount) < 0 {
		return nil, s.fail(ErrInsufficientBalance)
	}

	// An advisory read: a failed earlier start leaves its approval intact,
	// so retries land here and skip a blind re-approval.
	current := s.allowance.Read(ctx, token, owner, s.ledger.Address())
	if current.Cmp(amount) < 0 {
		s.notifier.PhaseChanged(PhaseApproving)
		s.notifier.Notice("approval pending")

		if _, err := s.allowance.Approve(ctx, token, s.ledger.Address(), amount, false); err != nil {
			return nil, s.fail(err)
		}
		s.notifier.Notice("approval complete")
	}

	s.notifier.PhaseChanged(PhaseSubmitting)

	out, err := s.runner.Run(ctx, ContractCall{
		To:       s.ledger.Address(),
		ABI:      &chain.QuizLedgerABI,
		Method:   "startQuiz",
		Args:     []interface{}{token, amount},
		FeeToken: &token,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	sessionID, ok := chain.DecodeSessionID(out.Receipt, s.ledger.Address())
	if !ok {
		// Degraded success: the session exists on the ledger, the receipt
		// just did not yield its identifier.
		s.log.WithField("tx_hash", out.Hash.Hex()).
			Warn("session identifier missing from receipt")
	} else {
		s.cache.SetActiveSession(sessionID)
	}

	s.notifier.PhaseChanged(PhaseStarted)
	s.refresh(ctx)

	s.log.WithField("tx_hash", out.Hash.Hex()).
		WithField("amount", amount.String()).
		Info("quiz session started")

	return &StartResult{Outcome: out, SessionID: sessionID}, nil
}

// Claim runs the claim saga: a ledger pre-check of the session state, then
// submission of the claim with the achieved score.
func (s *Service) Claim(ctx context.Context, sessionID *big.Int, score int) (*ClaimResult, error) {
	s.notifier.PhaseChanged(PhaseValidating)

	if sessionID == nil || sessionID.Sign() == 0 {
		return nil, s.fail(ErrNoSessionID)
	}
	if score < 0 || score > 100 {
		return nil, s.fail(fmt.Errorf("score %d out of range", score))
	}
	if s.wallet == nil || !s.wallet.Connected() {
		return nil, s.fail(ErrNotConnected)
	}

	if err := s.ensureNetwork(ctx); err != nil {
		return nil, s.fail(err)
	}

	// Reading the session first avoids a wasted round trip and yields a
	// clearer message than a ledger-side revert.
	session, err := s.ledger.Session(ctx, sessionID)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := checkClaimable(session, s.wallet.Address(), time.Now()); err != nil {
		return nil, s.fail(err)
	}

	s.notifier.PhaseChanged(PhaseSubmitting)

	out, err := s.runner.Run(ctx, ContractCall{
		To:       s.ledger.Address(),
		ABI:      &chain.QuizLedgerABI,
		Method:   "claimReward",
		Args:     []interface{}{sessionID, big.NewInt(int64(score))},
		FeeToken: &session.Token,
	})
	if err != nil {
		return nil, s.fail(err)
	}

	s.cache.SetActiveSession(nil)
	s.notifier.PhaseChanged(PhaseIdle)
	s.refresh(ctx)

	s.log.WithField("session_id", sessionID.String()).
		WithField("score", score).
		WithField("tx_hash", out.Hash.Hex()).
		Info("reward claimed")

	return &ClaimResult{Outcome: out, Score: score}, nil
}

// checkClaimable verifies the claim preconditions in order; each violation
// maps to its own sentinel.
func checkClaimable(session *Session, caller common.Address, now time.Time) error {
	if !session.Active {
		return ErrSessionNotActive
	}
	if session.Claimed {
		return ErrAlreadyClaimed
	}
	if session.Owner != caller {
		return ErrNotSessionOwner
	}
	if !now.Before(session.ExpiryTime) {
		return ErrSessionExpired
	}
	return nil
}

// validateStart covers the zero-network-cost preconditions, each with a
// specific message.
func (s *Service) validateStart(token common.Address, amount *big.Int) error {
	if s.wallet == nil || !s.wallet.Connected() {
		return ErrNotConnected
	}
	if s.cache.Stats() == nil {
		return ErrFeeNotLoaded
	}
	if token == (common.Address{}) {
		return ErrNoToken
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ensureNetwork attempts exactly one switch request on mismatch without
// submitting anything first.
func (s *Service) ensureNetwork(ctx context.Context) error {
	current, err := s.wallet.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: read chain id: %v", ErrWrongNetwork, err)
	}
	if current.Cmp(s.requiredChainID) == 0 {
		return nil
	}
	if err := s.wallet.SwitchChain(ctx, s.requiredChainID); err != nil {
		return fmt.Errorf("%w: on chain %s, need %s: %v", ErrWrongNetwork, current, s.requiredChainID, err)
	}
	return nil
}

// refresh re-reads the cached views after a settled operation. A failed
// refresh degrades freshness only, never the operation outcome.
func (s *Service) refresh(ctx context.Context) {
	if err := s.cache.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("post-operation refresh failed")
	}
}

// fail funnels an error through the notifier and returns it. Nothing throws
// past the orchestrator's public surface.
func (s *Service) fail(err error) error {
	s.notifier.PhaseChanged(PhaseFailed)
	s.notifier.Notice(userMessage(err))
	s.log.WithError(err).Warn("operation failed")
	return err
}

// userMessage maps errors to the message shown on the status board.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotConnected):
		return "connect a wallet first"
	case errors.Is(err, ErrWrongNetwork):
		return "wrong network"
	case errors.Is(err, ErrNoToken):
		return "select a payment token"
	case errors.Is(err, ErrInvalidAmount):
		return "enter a positive bet amount"
	case errors.Is(err, ErrFeeNotLoaded):
		return "platform status not loaded yet"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient token balance"
	case errors.Is(err, ErrApprovalDeclined):
		return "approval was declined"
	case errors.Is(err, ErrSubmissionDeclined):
		return "transaction was declined"
	case errors.Is(err, ErrTransactionFailed):
		return "transaction failed on chain"
	case errors.Is(err, ErrSessionNotActive):
		return "session is no longer active"
	case errors.Is(err, ErrAlreadyClaimed):
		return "reward already claimed"
	case errors.Is(err, ErrNotSessionOwner):
		return "session belongs to a different user"
	case errors.Is(err, ErrSessionExpired):
		return "session expired"
	case errors.Is(err, ErrNoSessionID):
		return "no session to claim"
	default:
		return "operation failed, please retry"
	}
}
