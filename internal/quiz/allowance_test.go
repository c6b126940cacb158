package quiz

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/quizstake/quizstake/internal/chain"
)

func TestAllowanceManager_ReadFailureAssumesZero(t *testing.T) {
	tokens := NewMockTokens()
	tokens.AllowanceErr = errors.New("rpc timeout")
	m := NewAllowanceManager(tokens, NewMockRunner(), nil)

	got := m.Read(context.Background(), testToken, testOwner, testLedger)
	if got.Sign() != 0 {
		t.Errorf("Read on transport failure = %s, want 0", got)
	}
}

func TestAllowanceManager_ReadReturnsStoredValue(t *testing.T) {
	tokens := NewMockTokens()
	tokens.SetAllowance(testToken, testOwner, testLedger, big.NewInt(1234))
	m := NewAllowanceManager(tokens, NewMockRunner(), nil)

	got := m.Read(context.Background(), testToken, testOwner, testLedger)
	if got.Int64() != 1234 {
		t.Errorf("Read = %s, want 1234", got)
	}
}

func TestAllowanceManager_ApproveExact(t *testing.T) {
	runner := NewMockRunner()
	m := NewAllowanceManager(NewMockTokens(), runner, nil)

	if _, err := m.Approve(context.Background(), testToken, testLedger, big.NewInt(500), false); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	approvals := runner.CallsFor("approve")
	if len(approvals) != 1 {
		t.Fatalf("expected 1 approve call, got %d", len(approvals))
	}
	if approvals[0].To != testToken {
		t.Errorf("approve target = %s, want the token contract", approvals[0].To.Hex())
	}
	if amount := approvals[0].Args[1].(*big.Int); amount.Int64() != 500 {
		t.Errorf("approve amount = %s, want 500", amount)
	}
}

func TestAllowanceManager_ApproveUnlimitedUsesSentinel(t *testing.T) {
	runner := NewMockRunner()
	m := NewAllowanceManager(NewMockTokens(), runner, nil)

	if _, err := m.Approve(context.Background(), testToken, testLedger, big.NewInt(1), true); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	amount := runner.CallsFor("approve")[0].Args[1].(*big.Int)
	if amount.Cmp(chain.MaxUint256) != 0 {
		t.Errorf("unlimited approval amount = %s, want the max-uint256 sentinel", amount)
	}
}

func TestAllowanceManager_ApproveDeclined(t *testing.T) {
	runner := NewMockRunner()
	runner.Err = ErrSubmissionDeclined
	m := NewAllowanceManager(NewMockTokens(), runner, nil)

	_, err := m.Approve(context.Background(), testToken, testLedger, big.NewInt(500), false)
	if !errors.Is(err, ErrApprovalDeclined) {
		t.Fatalf("Approve error = %v, want ErrApprovalDeclined", err)
	}
}

func TestAllowanceManager_ApproveRejectsNonPositive(t *testing.T) {
	m := NewAllowanceManager(NewMockTokens(), NewMockRunner(), nil)

	if _, err := m.Approve(context.Background(), testToken, testLedger, nil, false); err == nil {
		t.Error("nil amount must be rejected")
	}
	if _, err := m.Approve(context.Background(), testToken, testLedger, big.NewInt(0), false); err == nil {
		t.Error("zero amount must be rejected")
	}
}
