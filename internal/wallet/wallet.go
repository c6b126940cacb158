// Package wallet provides signer abstractions for quizstake transactions.
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrDeclined reports that the signer rejected the signature prompt. It is
// the only form of cancellation: once a transaction is submitted nothing in
// this layer can recall it.
var ErrDeclined = errors.New("signature request declined")

// ErrSwitchUnsupported reports that the wallet cannot move to another chain.
var ErrSwitchUnsupported = errors.New("chain switch not supported")

// TxRequest describes a transaction to sign and broadcast.
type TxRequest struct {
	To    common.Address
	Data  []byte
	Value *big.Int

	// FeeCurrency selects the token balance that pays network fees. Nil
	// means the native currency. Only honored by constrained host wallets.
	FeeCurrency *common.Address

	// GasLimit of 0 lets the wallet estimate.
	GasLimit uint64
}

// Wallet signs and broadcasts transactions. Implementations resolve fees,
// nonces and gas; callers see only a transaction hash or an error.
type Wallet interface {
	// Address returns the account the wallet signs for.
	Address() common.Address

	// Connected reports whether the wallet has a usable signer.
	Connected() bool

	// ChainID returns the chain the wallet is currently attached to.
	ChainID(ctx context.Context) (*big.Int, error)

	// SwitchChain asks the wallet to move to the given chain.
	SwitchChain(ctx context.Context, chainID *big.Int) error

	// SendTransaction signs and broadcasts the request, returning the
	// transaction hash. A declined prompt yields ErrDeclined.
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)

	// ConstrainedHost reports whether the wallet runs inside a host
	// environment that must be told which token balance pays gas.
	ConstrainedHost() bool
}
