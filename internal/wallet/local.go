package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/quizstake/quizstake/internal/chain"
)

// LocalWallet signs transactions with an in-process private key and
// broadcasts them as raw transactions. It pays fees in the native currency
// and is pinned to the chain it was constructed for.
type LocalWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	client  *chain.Client
	chainID *big.Int
}

// NewLocalWallet creates a wallet from a hex-encoded private key.
func NewLocalWallet(privateKeyHex string, client *chain.Client) (*LocalWallet, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &LocalWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		client:  client,
		chainID: client.RequiredChainID(),
	}, nil
}

// Address returns the account derived from the private key.
func (w *LocalWallet) Address() common.Address {
	return w.address
}

// Connected reports whether a signing key is present.
func (w *LocalWallet) Connected() bool {
	return w.key != nil
}

// ChainID returns the chain the wallet is pinned to.
func (w *LocalWallet) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(w.chainID), nil
}

// SwitchChain fails unless asked for the pinned chain. A local key cannot
// re-point its RPC endpoint.
func (w *LocalWallet) SwitchChain(ctx context.Context, chainID *big.Int) error {
	if chainID != nil && chainID.Cmp(w.chainID) == 0 {
		return nil
	}
	return fmt.Errorf("%w: pinned to chain %s", ErrSwitchUnsupported, w.chainID)
}

// ConstrainedHost is always false for local wallets: fees are paid natively.
func (w *LocalWallet) ConstrainedHost() bool {
	return false
}

// SendTransaction signs the request and broadcasts it.
func (w *LocalWallet) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	if !w.Connected() {
		return common.Hash{}, fmt.Errorf("no signing key loaded")
	}

	nonce, err := w.client.NonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch nonce: %w", err)
	}

	gasPrice, err := w.client.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("fetch gas price: %w", err)
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		gasLimit, err = w.client.EstimateGas(ctx, w.address, req.To, req.Data, req.Value)
		if err != nil {
			return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
		}
	}

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &req.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode transaction: %w", err)
	}

	hash, err := w.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcast transaction: %w", err)
	}
	return hash, nil
}
