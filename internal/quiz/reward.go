package quiz

import "math/big"

// RewardMultiplier maps a score percentage to its payout multiplier. The
// breakpoints mirror the ledger's own computation; this is a client-side
// preview only and the ledger stays authoritative at claim time.
func RewardMultiplier(score int) int64 {
	switch {
	case score >= 90:
		return 5
	case score >= 80:
		return 4
	case score >= 70:
		return 3
	case score >= 60:
		return 2
	default:
		return 0
	}
}

// RewardAmount returns multiplier(score) x bet.
func RewardAmount(score int, bet *big.Int) *big.Int {
	if bet == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Mul(bet, big.NewInt(RewardMultiplier(score)))
}
