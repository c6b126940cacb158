package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/quizstake/quizstake/internal/chain"
)

// HostWallet delegates signing to a host-managed account behind the RPC
// endpoint, the way an embedding social-platform wallet does. Constrained
// hosts additionally accept a feeCurrency override on each transaction.
type HostWallet struct {
	client      *chain.Client
	address     common.Address
	constrained bool
}

// NewHostWallet creates a wallet for the host-managed account at address.
func NewHostWallet(client *chain.Client, address common.Address, constrained bool) *HostWallet {
	return &HostWallet{
		client:      client,
		address:     address,
		constrained: constrained,
	}
}

// Address returns the host-managed account.
func (w *HostWallet) Address() common.Address {
	return w.address
}

// Connected reports whether the host exposed an account.
func (w *HostWallet) Connected() bool {
	return w.address != (common.Address{})
}

// ChainID returns the chain the host is currently attached to.
func (w *HostWallet) ChainID(ctx context.Context) (*big.Int, error) {
	return w.client.ChainID(ctx)
}

// SwitchChain issues a wallet_switchEthereumChain request to the host.
func (w *HostWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	param := map[string]string{"chainId": hexutil.EncodeBig(chainID)}
	if _, err := w.client.Call(ctx, "wallet_switchEthereumChain", []interface{}{param}); err != nil {
		return fmt.Errorf("switch chain: %w", err)
	}
	return nil
}

// ConstrainedHost reports whether fee-currency overrides are required.
func (w *HostWallet) ConstrainedHost() bool {
	return w.constrained
}

// SendTransaction asks the host to sign and broadcast the request. A
// user-rejected prompt maps to ErrDeclined.
func (w *HostWallet) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	msg := map[string]interface{}{
		"from": w.address.Hex(),
		"to":   req.To.Hex(),
		"data": hexutil.Encode(req.Data),
	}
	if req.Value != nil && req.Value.Sign() > 0 {
		msg["value"] = hexutil.EncodeBig(req.Value)
	}
	if req.GasLimit > 0 {
		msg["gas"] = hexutil.EncodeUint64(req.GasLimit)
	}
	if req.FeeCurrency != nil {
		msg["feeCurrency"] = req.FeeCurrency.Hex()
	}

	result, err := w.client.Call(ctx, "eth_sendTransaction", []interface{}{msg})
	if err != nil {
		var rpcErr *chain.RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == chain.UserRejectedCode {
			return common.Hash{}, fmt.Errorf("%w: %s", ErrDeclined, rpcErr.Message)
		}
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return common.Hash{}, fmt.Errorf("decode transaction hash: %w", err)
	}
	return common.HexToHash(hex), nil
}
