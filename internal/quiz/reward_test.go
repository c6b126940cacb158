package quiz

import (
	"math/big"
	"testing"
)

func TestRewardMultiplier(t *testing.T) {
	cases := []struct {
		score int
		want  int64
	}{
		{0, 0},
		{40, 0},
		{59, 0},
		{60, 2},
		{69, 2},
		{70, 3},
		{79, 3},
		{80, 4},
		{82, 4},
		{89, 4},
		{90, 5},
		{100, 5},
	}
	for _, c := range cases {
		if got := RewardMultiplier(c.score); got != c.want {
			t.Errorf("RewardMultiplier(%d) = %d, want %d", c.score, got, c.want)
		}
	}
}

func TestRewardAmount(t *testing.T) {
	// 0.05 tokens at 18 decimals.
	bet := new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil))

	// Score 82 lands in the 4x tier: 0.20 tokens.
	want := new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	if got := RewardAmount(82, bet); got.Cmp(want) != 0 {
		t.Errorf("RewardAmount(82, 0.05) = %s, want %s", got, want)
	}

	// Score 58 is below the lowest tier.
	if got := RewardAmount(58, bet); got.Sign() != 0 {
		t.Errorf("RewardAmount(58, 0.05) = %s, want 0", got)
	}
}

func TestRewardAmount_NilBet(t *testing.T) {
	if got := RewardAmount(90, nil); got.Sign() != 0 {
		t.Errorf("RewardAmount(90, nil) = %s, want 0", got)
	}
}
