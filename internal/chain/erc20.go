package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const erc20ABIJSON = `[
  {"type":"function","name":"allowance","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

// ERC20ABI is the parsed token interface.
var ERC20ABI = mustParseABI(erc20ABIJSON)

// MaxUint256 is the unlimited-approval sentinel.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ERC20Caller reads token state.
type ERC20Caller struct {
	client *Client
}

// NewERC20Caller creates a token reader over the given client.
func NewERC20Caller(client *Client) *ERC20Caller {
	return &ERC20Caller{client: client}
}

// Allowance reads the amount a spender may transfer on the owner's behalf.
func (e *ERC20Caller) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := EncodeCall(ERC20ABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}

	out, err := e.client.CallContract(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}

	values, err := ERC20ABI.Unpack("allowance", out)
	if err != nil {
		return nil, fmt.Errorf("decode allowance: %w", err)
	}
	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("allowance is not uint256")
	}
	return amount, nil
}

// BalanceOf reads an account's token balance.
func (e *ERC20Caller) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data, err := EncodeCall(ERC20ABI, "balanceOf", account)
	if err != nil {
		return nil, err
	}

	out, err := e.client.CallContract(ctx, token, data)
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}

	values, err := ERC20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("decode balanceOf: %w", err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balance is not uint256")
	}
	return balance, nil
}
