package chain

import (
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// =============================================================================
// Call Encoding
// =============================================================================

// EncodeCall ABI-encodes a contract method call. Malformed arguments fail
// here, before anything reaches the network.
func EncodeCall(contractABI abi.ABI, method string, args ...interface{}) ([]byte, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", method, err)
	}
	return data, nil
}

// =============================================================================
// Attribution Suffix
// =============================================================================

// attributionMarker identifies the attribution suffix appended to quizstake
// calldata. Referral indexers match on this marker; the contract ignores
// trailing calldata bytes.
var attributionMarker = [4]byte{0x71, 0x75, 0x69, 0x7a} // "quiz"

// AttributionSuffixLen is the fixed length of the suffix: marker, consumer
// identifier, caller address.
const AttributionSuffixLen = 4 + 32 + common.AddressLength

// ConsumerID derives the fixed 32-byte analytics-consumer identifier from a
// consumer name.
func ConsumerID(name string) [32]byte {
	return sha256.Sum256([]byte(name))
}

// AppendAttribution appends the fixed-format attribution suffix crediting the
// analytics consumer for a call made by caller.
func AppendAttribution(data []byte, consumer [32]byte, caller common.Address) []byte {
	out := make([]byte, 0, len(data)+AttributionSuffixLen)
	out = append(out, data...)
	out = append(out, attributionMarker[:]...)
	out = append(out, consumer[:]...)
	out = append(out, caller.Bytes()...)
	return out
}

// ParseAttribution extracts the attribution suffix from calldata. It returns
// ok=false when no suffix is present.
func ParseAttribution(data []byte) (consumer [32]byte, caller common.Address, ok bool) {
	if len(data) < AttributionSuffixLen {
		return consumer, caller, false
	}
	suffix := data[len(data)-AttributionSuffixLen:]
	if [4]byte(suffix[:4]) != attributionMarker {
		return consumer, caller, false
	}
	copy(consumer[:], suffix[4:36])
	caller = common.BytesToAddress(suffix[36:])
	return consumer, caller, true
}
