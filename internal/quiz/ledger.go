package quiz

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quizstake/quizstake/internal/chain"
)

// LedgerReader exposes the ledger's authoritative quiz state in domain terms.
type LedgerReader interface {
	// Address returns the ledger contract address.
	Address() common.Address

	// Session reads one session record.
	Session(ctx context.Context, id *big.Int) (*Session, error)

	// User reads per-user quiz limits.
	User(ctx context.Context, user common.Address) (*UserInfo, error)

	// Stats reads per-token operational state.
	Stats(ctx context.Context, token common.Address) (*ContractStats, error)
}

// TokenReader exposes ERC-20 reads.
type TokenReader interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
}

// ledgerAdapter converts the chain package's wire records into domain types.
type ledgerAdapter struct {
	caller *chain.QuizCaller
}

// NewLedgerAdapter wraps a chain caller as a LedgerReader.
func NewLedgerAdapter(caller *chain.QuizCaller) LedgerReader {
	return &ledgerAdapter{caller: caller}
}

func (a *ledgerAdapter) Address() common.Address {
	return a.caller.Address()
}

func (a *ledgerAdapter) Session(ctx context.Context, id *big.Int) (*Session, error) {
	raw, err := a.caller.GetQuizSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	return &Session{
		ID:            new(big.Int).Set(id),
		Owner:         raw.Owner,
		Token:         raw.Token,
		StartTime:     unixTime(raw.StartTime),
		ExpiryTime:    unixTime(raw.ExpiryTime),
		Active:        raw.Active,
		Claimed:       raw.Claimed,
		Score:         int(raw.Score.Int64()),
		Reward:        raw.Reward,
		TimeRemaining: time.Duration(raw.TimeRemaining.Int64()) * time.Second,
	}, nil
}

func (a *ledgerAdapter) User(ctx context.Context, user common.Address) (*UserInfo, error) {
	raw, err := a.caller.GetUserInfo(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("read user info: %w", err)
	}

	return &UserInfo{
		DailyCount:   raw.DailyCount.Int64(),
		LastQuizTime: unixTime(raw.LastQuizTime),
		NextQuizTime: unixTime(raw.NextQuizTime),
		WonToday:     raw.WonToday,
		CanQuiz:      raw.CanQuiz,
	}, nil
}

func (a *ledgerAdapter) Stats(ctx context.Context, token common.Address) (*ContractStats, error) {
	raw, err := a.caller.GetContractStats(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("read contract stats: %w", err)
	}

	return &ContractStats{
		Balance:      raw.Balance,
		ActiveCount:  raw.ActiveCount.Int64(),
		MinBalance:   raw.MinBalance,
		Operational:  raw.Operational,
		TotalQuizzes: raw.TotalQuizzes.Int64(),
		TotalRewards: raw.TotalRewards,
		TotalFees:    raw.TotalFees,
	}, nil
}

func unixTime(v *big.Int) time.Time {
	if v == nil || v.Sign() == 0 {
		return time.Time{}
	}
	return time.Unix(v.Int64(), 0).UTC()
}
