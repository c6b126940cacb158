package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quizstake/quizstake/internal/chain"
	"github.com/quizstake/quizstake/pkg/logger"
)

// AllowanceManager reads and establishes spend approvals. Its reads are
// advisory: the value is stale from the moment an approval is submitted
// until re-read after confirmation, so callers re-check before spending.
type AllowanceManager struct {
	tokens TokenReader
	runner TxRunner
	log    *logger.Logger
}

// NewAllowanceManager creates an allowance manager.
func NewAllowanceManager(tokens TokenReader, runner TxRunner, log *logger.Logger) *AllowanceManager {
	if log == nil {
		log = logger.NewDefault("allowance")
	}
	return &AllowanceManager{tokens: tokens, runner: runner, log: log}
}

// Read returns the spender's approved limit. A transport failure returns
// zero rather than an error; a zero allowance just triggers a fresh approval
// and the ledger re-checks before any spend.
func (m *AllowanceManager) Read(ctx context.Context, token, owner, spender common.Address) *big.Int {
	amount, err := m.tokens.Allowance(ctx, token, owner, spender)
	if err != nil {
		m.log.WithError(err).WithField("token", token.Hex()).
			Warn("allowance read failed, assuming zero")
		return big.NewInt(0)
	}
	return amount
}

// Approve submits an approval for the exact amount, or for the unlimited
// sentinel when unlimited is set, and waits for confirmation. A declined
// prompt yields ErrApprovalDeclined, distinct from transport failures.
func (m *AllowanceManager) Approve(ctx context.Context, token, spender common.Address, amount *big.Int, unlimited bool) (*TxOutcome, error) {
	approved := amount
	if unlimited {
		approved = chain.MaxUint256
	}
	if approved == nil || approved.Sign() <= 0 {
		return nil, fmt.Errorf("approval amount must be positive")
	}

	out, err := m.runner.Run(ctx, ContractCall{
		To:       token,
		ABI:      &chain.ERC20ABI,
		Method:   "approve",
		Args:     []interface{}{spender, approved},
		FeeToken: &token,
	})
	if err != nil {
		if errors.Is(err, ErrSubmissionDeclined) {
			return nil, fmt.Errorf("%w: %v", ErrApprovalDeclined, err)
		}
		return nil, fmt.Errorf("approve: %w", err)
	}

	m.log.WithField("token", token.Hex()).
		WithField("spender", spender.Hex()).
		WithField("tx_hash", out.Hash.Hex()).
		Info("approval confirmed")
	return out, nil
}
