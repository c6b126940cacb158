// Package chain provides EVM blockchain interaction for quizstake.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Client provides EVM JSON-RPC client functionality.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	chainID    *big.Int
}

// Config holds client configuration.
type Config struct {
	RPCURL  string
	ChainID int64 // Celo: 42220, Alfajores: 44787
	Timeout time.Duration
}

// NewClient creates a new EVM client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		rpcURL: cfg.RPCURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		chainID: big.NewInt(cfg.ChainID),
	}, nil
}

// RequiredChainID returns the chain the client is configured for.
func (c *Client) RequiredChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// RPCRequest is a JSON-RPC 2.0 request.
type RPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      int             `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// UserRejectedCode is the EIP-1193 error code for a declined signature prompt.
const UserRejectedCode = 4001

// =============================================================================
// Core RPC Methods
// =============================================================================

// Call makes a JSON-RPC call to the node.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// ChainID returns the chain identifier reported by the node.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	result, err := c.Call(ctx, "eth_chainId", nil)
	if err != nil {
		return nil, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return nil, err
	}
	return hexutil.DecodeBig(hex)
}

// BlockNumber returns the current block height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.Call(ctx, "eth_blockNumber", nil)
	if err != nil {
		return 0, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return 0, err
	}
	return hexutil.DecodeUint64(hex)
}

// CallContract performs a read-only eth_call against a contract.
func (c *Client) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := map[string]interface{}{
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}
	result, err := c.Call(ctx, "eth_call", []interface{}{msg, "latest"})
	if err != nil {
		return nil, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return nil, err
	}
	return hexutil.Decode(hex)
}

// NonceAt returns the pending nonce for an account.
func (c *Client) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	result, err := c.Call(ctx, "eth_getTransactionCount", []interface{}{account.Hex(), "pending"})
	if err != nil {
		return 0, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return 0, err
	}
	return hexutil.DecodeUint64(hex)
}

// GasPrice returns the node's suggested gas price.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	result, err := c.Call(ctx, "eth_gasPrice", nil)
	if err != nil {
		return nil, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return nil, err
	}
	return hexutil.DecodeBig(hex)
}

// EstimateGas estimates gas for a transaction.
func (c *Client) EstimateGas(ctx context.Context, from, to common.Address, data []byte, value *big.Int) (uint64, error) {
	msg := map[string]interface{}{
		"from": from.Hex(),
		"to":   to.Hex(),
		"data": hexutil.Encode(data),
	}
	if value != nil && value.Sign() > 0 {
		msg["value"] = hexutil.EncodeBig(value)
	}

	result, err := c.Call(ctx, "eth_estimateGas", []interface{}{msg})
	if err != nil {
		return 0, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return 0, err
	}
	return hexutil.DecodeUint64(hex)
}

// SendRawTransaction broadcasts a signed transaction.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx []byte) (common.Hash, error) {
	result, err := c.Call(ctx, "eth_sendRawTransaction", []interface{}{hexutil.Encode(rawTx)})
	if err != nil {
		return common.Hash{}, err
	}

	var hex string
	if err := json.Unmarshal(result, &hex); err != nil {
		return common.Hash{}, err
	}
	return common.HexToHash(hex), nil
}

// TransactionReceipt returns the receipt for a transaction, or nil if it is
// not yet included in a block.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	result, err := c.Call(ctx, "eth_getTransactionReceipt", []interface{}{txHash.Hex()})
	if err != nil {
		return nil, err
	}

	if len(result) == 0 || strings.TrimSpace(string(result)) == "null" {
		return nil, nil
	}

	var receipt types.Receipt
	if err := json.Unmarshal(result, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}
	return &receipt, nil
}

// DefaultTxWaitTimeout is the default timeout for waiting for transaction inclusion.
const DefaultTxWaitTimeout = 2 * time.Minute

// DefaultPollInterval is the default interval for polling transaction status.
const DefaultPollInterval = 2 * time.Second

// WaitForReceipt polls for a transaction receipt until it is available or the
// context is done. A pending transaction is retried until the deadline expires.
func (c *Client) WaitForReceipt(ctx context.Context, txHash common.Hash, pollInterval time.Duration) (*types.Receipt, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			receipt, err := c.TransactionReceipt(ctx, txHash)
			if err != nil {
				return nil, err
			}
			if receipt == nil {
				continue
			}
			return receipt, nil
		}
	}
}

// SendRawTransactionAndWait broadcasts a signed transaction and waits for its receipt.
// If waitTimeout is 0, DefaultTxWaitTimeout is used.
func (c *Client) SendRawTransactionAndWait(ctx context.Context, rawTx []byte, pollInterval, waitTimeout time.Duration) (*types.Receipt, error) {
	txHash, err := c.SendRawTransaction(ctx, rawTx)
	if err != nil {
		return nil, err
	}

	if waitTimeout <= 0 {
		waitTimeout = DefaultTxWaitTimeout
	}

	wctx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	return c.WaitForReceipt(wctx, txHash, pollInterval)
}
