package quiz

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/quizstake/quizstake/internal/chain"
	"github.com/quizstake/quizstake/internal/wallet"
)

type stubReceipts struct {
	receipt *types.Receipt
	err     error
	waits   int
}

func (s *stubReceipts) WaitForReceipt(ctx context.Context, txHash common.Hash, pollInterval time.Duration) (*types.Receipt, error) {
	s.waits++
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func newTestExecutor(t *testing.T, w *MockWallet, receipts *stubReceipts) *Executor {
	t.Helper()
	if receipts == nil {
		receipts = &stubReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}
	}
	exec, err := NewExecutor(ExecutorConfig{
		Wallet:          w,
		Receipts:        receipts,
		RequiredChainID: big.NewInt(testChainID),
		Consumer:        chain.ConsumerID("quizstake-test"),
	})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	return exec
}

func startCall() ContractCall {
	return ContractCall{
		To:     testLedger,
		ABI:    &chain.QuizLedgerABI,
		Method: "startQuiz",
		Args:   []interface{}{testToken, big.NewInt(100)},
	}
}

func TestExecutor_NotConnected(t *testing.T) {
	w := NewMockWallet(testOwner, testChainID)
	w.Disconnect = true
	exec := newTestExecutor(t, w, nil)

	_, err := exec.Run(context.Background(), startCall())
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Run error = %v, want ErrNotConnected", err)
	}
	if w.SendCalls != 0 {
		t.Error("disconnected wallet must not be asked to sign")
	}
}

func TestExecutor_WrongNetworkSwitchFails(t *testing.T) {
	w := NewMockWallet(testOwner, 1)
	w.SwitchErr = errors.New("chain not added")
	exec := newTestExecutor(t, w, nil)

	_, err := exec.Run(context.Background(), startCall())
	if !errors.Is(err, ErrWrongNetwork) {
		t.Fatalf("Run error = %v, want ErrWrongNetwork", err)
	}
	if w.SwitchCalls != 1 {
		t.Errorf("switch calls = %d, want exactly 1", w.SwitchCalls)
	}
	if w.SendCalls != 0 {
		t.Error("failed switch must abort before any signature")
	}
}

func TestExecutor_SwitchesThenSubmits(t *testing.T) {
	w := NewMockWallet(testOwner, 1)
	exec := newTestExecutor(t, w, nil)

	if _, err := exec.Run(context.Background(), startCall()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.SwitchCalls != 1 {
		t.Errorf("switch calls = %d, want 1", w.SwitchCalls)
	}
	if w.SendCalls != 1 {
		t.Errorf("send calls = %d, want 1", w.SendCalls)
	}
}

func TestExecutor_MalformedArgumentsAbortLocally(t *testing.T) {
	w := NewMockWallet(testOwner, testChainID)
	exec := newTestExecutor(t, w, nil)

	call := startCall()
	call.Args = []interface{}{"not-an-address", big.NewInt(100)}

	if _, err := exec.Run(context.Background(), call); err == nil {
		t.Fatal("expected an encoding error")
	}
	if w.SendCalls != 0 {
		t.Error("malformed arguments must never reach the wallet")
	}
}

func TestExecutor_AppendsAttributionSuffix(t *testing.T) {
	w := NewMockWallet(testOwner, testChainID)
	exec := newTestExecutor(t, w, nil)

	if _, err := exec.Run(context.Background(), startCall()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	consumer, caller, ok := chain.ParseAttribution(w.LastRequest.Data)
	if !ok {
		t.Fatal("submitted calldata carries no attribution suffix")
	}
	if consumer != chain.ConsumerID("quizstake-test") {
		t.Error("suffix credits the wrong consumer")
	}
	if caller != testOwner {
		t.Errorf("suffix caller = %s, want %s", caller.Hex(), testOwner.Hex())
	}

	// The prefix must remain the plain encoded call.
	plain, err := chain.EncodeCall(chain.QuizLedgerABI, "startQuiz", testToken, big.NewInt(100))
	if err != nil {
		t.Fatalf("EncodeCall: %v", err)
	}
	prefix := w.LastRequest.Data[:len(w.LastRequest.Data)-chain.AttributionSuffixLen]
	if string(prefix) != string(plain) {
		t.Error("suffix corrupted the encoded call prefix")
	}
}

func TestExecutor_DeclinedDistinctFromTransport(t *testing.T) {
	t.Run("declined prompt", func(t *testing.T) {
		w := NewMockWallet(testOwner, testChainID)
		w.SendErr = wallet.ErrDeclined
		exec := newTestExecutor(t, w, nil)

		_, err := exec.Run(context.Background(), startCall())
		if !errors.Is(err, ErrSubmissionDeclined) {
			t.Fatalf("Run error = %v, want ErrSubmissionDeclined", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		w := NewMockWallet(testOwner, testChainID)
		w.SendErr = errors.New("connection reset")
		exec := newTestExecutor(t, w, nil)

		_, err := exec.Run(context.Background(), startCall())
		if !errors.Is(err, ErrSubmissionFailed) {
			t.Fatalf("Run error = %v, want ErrSubmissionFailed", err)
		}
		if errors.Is(err, ErrSubmissionDeclined) {
			t.Error("transport failure must not read as a declined prompt")
		}
	})

	t.Run("empty hash", func(t *testing.T) {
		w := NewMockWallet(testOwner, testChainID)
		w.SendHash = common.Hash{}
		exec := newTestExecutor(t, w, nil)

		_, err := exec.Run(context.Background(), startCall())
		if !errors.Is(err, ErrSubmissionFailed) {
			t.Fatalf("Run error = %v, want ErrSubmissionFailed", err)
		}
	})
}

func TestExecutor_RevertedTransaction(t *testing.T) {
	w := NewMockWallet(testOwner, testChainID)
	receipts := &stubReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusFailed}}
	exec := newTestExecutor(t, w, receipts)

	_, err := exec.Run(context.Background(), startCall())
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("Run error = %v, want ErrTransactionFailed", err)
	}
}

func TestExecutor_FeeCurrencyOnlyWhenConstrained(t *testing.T) {
	call := startCall()
	call.FeeToken = &testToken

	t.Run("constrained host", func(t *testing.T) {
		w := NewMockWallet(testOwner, testChainID)
		w.Constrained = true
		exec := newTestExecutor(t, w, nil)

		if _, err := exec.Run(context.Background(), call); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if w.LastRequest.FeeCurrency == nil || *w.LastRequest.FeeCurrency != testToken {
			t.Errorf("fee currency = %v, want %s", w.LastRequest.FeeCurrency, testToken.Hex())
		}
	})

	t.Run("regular host", func(t *testing.T) {
		w := NewMockWallet(testOwner, testChainID)
		exec := newTestExecutor(t, w, nil)

		if _, err := exec.Run(context.Background(), call); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if w.LastRequest.FeeCurrency != nil {
			t.Errorf("fee currency = %s, want none", w.LastRequest.FeeCurrency.Hex())
		}
	})
}

func TestExecutor_AttributionFailureSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w := NewMockWallet(testOwner, testChainID)
	exec, err := NewExecutor(ExecutorConfig{
		Wallet:          w,
		Receipts:        &stubReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}},
		RequiredChainID: big.NewInt(testChainID),
		Consumer:        chain.ConsumerID("quizstake-test"),
		Attribution:     chain.NewAttributionReporter(server.URL, chain.ConsumerID("quizstake-test"), time.Second),
	})
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	out, err := exec.Run(context.Background(), startCall())
	if err != nil {
		t.Fatalf("attribution failure must not fail the operation: %v", err)
	}
	if out.Receipt.Status != types.ReceiptStatusSuccessful {
		t.Error("outcome lost its successful receipt")
	}
}
