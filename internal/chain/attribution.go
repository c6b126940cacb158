package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/quizstake/quizstake/internal/httputil"
)

// AttributionReporter submits confirmed transaction hashes to the off-chain
// referral consumer. Reporting is best-effort; callers log and swallow
// failures, never escalate them.
type AttributionReporter struct {
	client   *httputil.Client
	endpoint string
	consumer [32]byte
}

// NewAttributionReporter creates a reporter for the given endpoint. A nil
// reporter is returned when the endpoint is empty, which disables reporting.
func NewAttributionReporter(endpoint string, consumer [32]byte, timeout time.Duration) *AttributionReporter {
	if endpoint == "" {
		return nil
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &AttributionReporter{
		client: httputil.NewClient(httputil.Config{
			Timeout:    timeout,
			MaxRetries: 1,
			Backoff:    100 * time.Millisecond,
		}),
		endpoint: endpoint,
		consumer: consumer,
	}
}

// Report submits a confirmed transaction for attribution.
func (r *AttributionReporter) Report(ctx context.Context, txHash common.Hash, chainID *big.Int) error {
	payload := map[string]interface{}{
		"tx_hash":  txHash.Hex(),
		"chain_id": chainID.Int64(),
		"consumer": hexutil.Encode(r.consumer[:]),
	}
	return r.client.PostJSON(ctx, r.endpoint, payload, nil)
}
