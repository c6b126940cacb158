package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestResolveFeeCurrency(t *testing.T) {
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")

	tests := []struct {
		name        string
		selected    *common.Address
		constrained bool
		want        *common.Address
	}{
		{"regular host, no selection", nil, false, nil},
		{"regular host, token selected", &token, false, nil},
		{"constrained host, no selection", nil, true, nil},
		{"constrained host, token selected", &token, true, &token},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveFeeCurrency(tc.selected, tc.constrained)
			switch {
			case tc.want == nil && got != nil:
				t.Errorf("got %s, want native fees", got.Hex())
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Errorf("got %v, want %s", got, tc.want.Hex())
			}
		})
	}
}

func TestResolveFeeCurrency_CopiesSelection(t *testing.T) {
	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	got := ResolveFeeCurrency(&token, true)
	if got == &token {
		t.Error("resolved pointer aliases the caller's selection")
	}
}
