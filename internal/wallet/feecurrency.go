package wallet

import "github.com/ethereum/go-ethereum/common"

// ResolveFeeCurrency picks the token balance that pays network fees. Host
// wallets in constrained environments must be told explicitly which balance
// covers gas; everywhere else the native currency applies and no override is
// returned. There is no failure mode: absence degrades to native fees.
func ResolveFeeCurrency(selected *common.Address, constrainedHost bool) *common.Address {
	if !constrainedHost || selected == nil {
		return nil
	}
	token := *selected
	return &token
}
