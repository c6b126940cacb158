package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github.com/quizstake/quizstake/internal/chain"
	"github.com/quizstake/quizstake/internal/wallet"
	"github.com/quizstake/quizstake/pkg/logger"
)

// ContractCall describes one ledger operation to submit.
type ContractCall struct {
	To     common.Address
	ABI    *abi.ABI
	Method string
	Args   []interface{}
	Value  *big.Int

	// FeeToken is the user's selected payment token, used as the fee
	// currency under constrained host wallets.
	FeeToken *common.Address
}

// TxOutcome is the typed result of a confirmed submission.
type TxOutcome struct {
	Op      PendingOperation
	Hash    common.Hash
	Receipt *types.Receipt
}

// TxRunner is the generic submit/await primitive.
type TxRunner interface {
	Run(ctx context.Context, call ContractCall) (*TxOutcome, error)
}

// ReceiptWaiter blocks until a transaction is included in a block.
type ReceiptWaiter interface {
	WaitForReceipt(ctx context.Context, txHash common.Hash, pollInterval time.Duration) (*types.Receipt, error)
}

// Executor verifies the network, encodes and submits a call, waits for
// inclusion, and best-effort reports attribution. One invocation per user
// action; there is no internal queueing, and overlapping calls are a caller
// error backstopped only by the ledger's own guards.
type Executor struct {
	wallet          wallet.Wallet
	receipts        ReceiptWaiter
	requiredChainID *big.Int
	consumer        [32]byte
	attribution     *chain.AttributionReporter
	pollInterval    time.Duration
	waitTimeout     time.Duration
	log             *logger.Logger
}

// ExecutorConfig holds executor dependencies.
type ExecutorConfig struct {
	Wallet          wallet.Wallet
	Receipts        ReceiptWaiter
	RequiredChainID *big.Int
	Consumer        [32]byte
	Attribution     *chain.AttributionReporter
	PollInterval    time.Duration
	WaitTimeout     time.Duration
	Log             *logger.Logger
}

// NewExecutor creates a transaction executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Receipts == nil {
		return nil, fmt.Errorf("receipt waiter required")
	}
	if cfg.RequiredChainID == nil {
		return nil, fmt.Errorf("required chain id missing")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = chain.DefaultPollInterval
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = chain.DefaultTxWaitTimeout
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewDefault("tx-executor")
	}

	return &Executor{
		wallet:          cfg.Wallet,
		receipts:        cfg.Receipts,
		requiredChainID: cfg.RequiredChainID,
		consumer:        cfg.Consumer,
		attribution:     cfg.Attribution,
		pollInterval:    cfg.PollInterval,
		waitTimeout:     cfg.WaitTimeout,
		log:             cfg.Log,
	}, nil
}

// Run submits the call and blocks until settlement.
func (e *Executor) Run(ctx context.Context, call ContractCall) (*TxOutcome, error) {
	op := PendingOperation{
		ID:        uuid.New(),
		Method:    call.Method,
		Status:    OpPending,
		CreatedAt: time.Now().UTC(),
	}

	if e.wallet == nil || !e.wallet.Connected() {
		return nil, ErrNotConnected
	}

	if err := e.ensureNetwork(ctx); err != nil {
		return nil, err
	}

	// Encode after the network is settled; malformed arguments abort here.
	encoded, err := chain.EncodeCall(*call.ABI, call.Method, call.Args...)
	if err != nil {
		return nil, err
	}
	encoded = chain.AppendAttribution(encoded, e.consumer, e.wallet.Address())

	feeCurrency := wallet.ResolveFeeCurrency(call.FeeToken, e.wallet.ConstrainedHost())

	txHash, err := e.wallet.SendTransaction(ctx, wallet.TxRequest{
		To:          call.To,
		Data:        encoded,
		Value:       call.Value,
		FeeCurrency: feeCurrency,
	})
	if err != nil {
		if errors.Is(err, wallet.ErrDeclined) {
			txsFailed.WithLabelValues(call.Method, "declined").Inc()
			return nil, fmt.Errorf("%w: %s", ErrSubmissionDeclined, call.Method)
		}
		txsFailed.WithLabelValues(call.Method, "submit").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	if txHash == (common.Hash{}) {
		txsFailed.WithLabelValues(call.Method, "submit").Inc()
		return nil, fmt.Errorf("%w: no transaction hash returned", ErrSubmissionFailed)
	}

	op.Status = OpSubmitted
	op.TxHash = txHash
	txsSubmitted.WithLabelValues(call.Method).Inc()
	e.log.WithField("method", call.Method).
		WithField("tx_hash", txHash.Hex()).
		Info("transaction submitted")

	wctx, cancel := context.WithTimeout(ctx, e.waitTimeout)
	defer cancel()

	receipt, err := e.receipts.WaitForReceipt(wctx, txHash, e.pollInterval)
	if err != nil {
		txsFailed.WithLabelValues(call.Method, "confirmation").Inc()
		return nil, fmt.Errorf("wait for %s inclusion: %w", call.Method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		op.Status = OpFailed
		txsFailed.WithLabelValues(call.Method, "reverted").Inc()
		return nil, fmt.Errorf("%w: %s reverted (tx %s)", ErrTransactionFailed, call.Method, txHash.Hex())
	}

	op.Status = OpConfirmed
	op.Receipt = receipt
	txsConfirmed.WithLabelValues(call.Method).Inc()

	e.reportAttribution(ctx, txHash)

	return &TxOutcome{Op: op, Hash: txHash, Receipt: receipt}, nil
}

// ensureNetwork verifies the wallet's chain and attempts exactly one switch
// request on mismatch. Nothing is ever submitted to the wrong network.
func (e *Executor) ensureNetwork(ctx context.Context) error {
	current, err := e.wallet.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("%w: read chain id: %v", ErrWrongNetwork, err)
	}
	if current.Cmp(e.requiredChainID) == 0 {
		return nil
	}

	if err := e.wallet.SwitchChain(ctx, e.requiredChainID); err != nil {
		return fmt.Errorf("%w: on chain %s, need %s: %v", ErrWrongNetwork, current, e.requiredChainID, err)
	}
	return nil
}

// reportAttribution submits the confirmed hash to the referral consumer.
// Failure is logged and swallowed, never escalated.
func (e *Executor) reportAttribution(ctx context.Context, txHash common.Hash) {
	if e.attribution == nil {
		return
	}
	if err := e.attribution.Report(ctx, txHash, e.requiredChainID); err != nil {
		e.log.WithError(err).WithField("tx_hash", txHash.Hex()).
			Warn("attribution report failed")
	}
}
