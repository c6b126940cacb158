package quiz

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/quizstake/quizstake/internal/wallet"
)

// =============================================================================
// In-memory fakes for tests
// =============================================================================

// MockWallet is a configurable wallet for tests.
type MockWallet struct {
	mu sync.Mutex

	Account     common.Address
	Disconnect  bool
	Chain       *big.Int
	Constrained bool

	SwitchErr   error
	SendErr     error
	SendHash    common.Hash
	SwitchCalls int
	SendCalls   int
	LastRequest wallet.TxRequest
}

// NewMockWallet creates a connected wallet on the given chain.
func NewMockWallet(account common.Address, chainID int64) *MockWallet {
	return &MockWallet{
		Account:  account,
		Chain:    big.NewInt(chainID),
		SendHash: common.HexToHash("0xabc123"),
	}
}

func (w *MockWallet) Address() common.Address { return w.Account }
func (w *MockWallet) Connected() bool         { return !w.Disconnect }
func (w *MockWallet) ConstrainedHost() bool   { return w.Constrained }

func (w *MockWallet) ChainID(ctx context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return new(big.Int).Set(w.Chain), nil
}

func (w *MockWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.SwitchCalls++
	if w.SwitchErr != nil {
		return w.SwitchErr
	}
	w.Chain = new(big.Int).Set(chainID)
	return nil
}

func (w *MockWallet) SendTransaction(ctx context.Context, req wallet.TxRequest) (common.Hash, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.SendCalls++
	w.LastRequest = req
	if w.SendErr != nil {
		return common.Hash{}, w.SendErr
	}
	return w.SendHash, nil
}

// MockLedger is an in-memory LedgerReader.
type MockLedger struct {
	mu sync.RWMutex

	Contract common.Address
	Sessions map[string]*Session
	UserInfo *UserInfo
	Overview *ContractStats

	SessionErr error
}

// NewMockLedger creates a ledger with operational stats preloaded.
func NewMockLedger(contract common.Address) *MockLedger {
	return &MockLedger{
		Contract: contract,
		Sessions: make(map[string]*Session),
		UserInfo: &UserInfo{CanQuiz: true, WonToday: big.NewInt(0)},
		Overview: &ContractStats{
			Balance:      big.NewInt(1_000_000),
			MinBalance:   big.NewInt(1000),
			Operational:  true,
			TotalRewards: big.NewInt(0),
			TotalFees:    big.NewInt(0),
		},
	}
}

// AddSession registers a session record.
func (l *MockLedger) AddSession(s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Sessions[s.ID.String()] = s
}

func (l *MockLedger) Address() common.Address { return l.Contract }

func (l *MockLedger) Session(ctx context.Context, id *big.Int) (*Session, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.SessionErr != nil {
		return nil, l.SessionErr
	}
	s, ok := l.Sessions[id.String()]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	copied := *s
	return &copied, nil
}

func (l *MockLedger) User(ctx context.Context, user common.Address) (*UserInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	copied := *l.UserInfo
	return &copied, nil
}

func (l *MockLedger) Stats(ctx context.Context, token common.Address) (*ContractStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	copied := *l.Overview
	return &copied, nil
}

// MockTokens is an in-memory TokenReader.
type MockTokens struct {
	mu sync.RWMutex

	Allowances map[string]*big.Int
	Balances   map[string]*big.Int

	AllowanceErr error
	BalanceErr   error
}

// NewMockTokens creates an empty token state.
func NewMockTokens() *MockTokens {
	return &MockTokens{
		Allowances: make(map[string]*big.Int),
		Balances:   make(map[string]*big.Int),
	}
}

func allowanceKey(token, owner, spender common.Address) string {
	return token.Hex() + "|" + owner.Hex() + "|" + spender.Hex()
}

func balanceKey(token, account common.Address) string {
	return token.Hex() + "|" + account.Hex()
}

// SetAllowance seeds an allowance record.
func (t *MockTokens) SetAllowance(token, owner, spender common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Allowances[allowanceKey(token, owner, spender)] = amount
}

// SetBalance seeds a balance record.
func (t *MockTokens) SetBalance(token, account common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Balances[balanceKey(token, account)] = amount
}

func (t *MockTokens) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.AllowanceErr != nil {
		return nil, t.AllowanceErr
	}
	if amount, ok := t.Allowances[allowanceKey(token, owner, spender)]; ok {
		return new(big.Int).Set(amount), nil
	}
	return big.NewInt(0), nil
}

func (t *MockTokens) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.BalanceErr != nil {
		return nil, t.BalanceErr
	}
	if amount, ok := t.Balances[balanceKey(token, account)]; ok {
		return new(big.Int).Set(amount), nil
	}
	return big.NewInt(0), nil
}

// MockRunner records submitted calls and returns canned outcomes.
type MockRunner struct {
	mu sync.Mutex

	Calls   []ContractCall
	Receipt *types.Receipt
	Hash    common.Hash
	Err     error

	// OnRun, when set, decides the outcome per call.
	OnRun func(call ContractCall) (*TxOutcome, error)
}

// NewMockRunner creates a runner that confirms every call.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Hash:    common.HexToHash("0xdef456"),
		Receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
	}
}

func (r *MockRunner) Run(ctx context.Context, call ContractCall) (*TxOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, call)
	if r.OnRun != nil {
		return r.OnRun(call)
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &TxOutcome{Hash: r.Hash, Receipt: r.Receipt}, nil
}

// CallsFor returns the recorded calls for one method.
func (r *MockRunner) CallsFor(method string) []ContractCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ContractCall
	for _, c := range r.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// NewStartReceipt builds a receipt carrying the ledger's session-started log
// with the identifier in the first indexed topic.
func NewStartReceipt(ledger common.Address, sessionID *big.Int) *types.Receipt {
	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs: []*types.Log{
			{
				Address: ledger,
				Topics: []common.Hash{
					common.HexToHash("0x01"),
					common.BigToHash(sessionID),
				},
			},
		},
	}
}

// RecorderNotifier captures phases and messages for assertions.
type RecorderNotifier struct {
	mu       sync.Mutex
	Phases   []Phase
	Messages []string
}

func (n *RecorderNotifier) PhaseChanged(phase Phase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Phases = append(n.Phases, phase)
}

func (n *RecorderNotifier) Notice(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, message)
}

// NewTestSession returns a claimable session owned by owner.
func NewTestSession(id int64, owner, token common.Address) *Session {
	return &Session{
		ID:         big.NewInt(id),
		Owner:      owner,
		Token:      token,
		StartTime:  time.Now().Add(-time.Minute),
		ExpiryTime: time.Now().Add(time.Hour),
		Active:     true,
		Reward:     big.NewInt(0),
	}
}
