// Package gate decides feature access from the balances and holdings of a
// caller's connected wallet.
package gate

import (
	"fmt"
	"strings"
)

// Condition names how a requirement is meant to be satisfied.
//
// It is carried through configuration and API payloads but Evaluate does not
// branch on it yet: every supported token type is a plain threshold or
// ownership test. The field is reserved for condition-specific sources such
// as staked balances.
type Condition string

const (
	ConditionOwns   Condition = "owns"
	ConditionHolds  Condition = "holds"
	ConditionStaked Condition = "staked"
)

// ParseCondition validates s.
func ParseCondition(s string) (Condition, error) {
	switch c := Condition(strings.ToLower(strings.TrimSpace(s))); c {
	case ConditionOwns, ConditionHolds, ConditionStaked:
		return c, nil
	default:
		return "", fmt.Errorf("unknown gate condition %q", s)
	}
}

// Requirement is a statically configured access rule.
type Requirement struct {
	TokenType string    `json:"tokenType" mapstructure:"token_type"`
	Amount    float64   `json:"amount" mapstructure:"amount"`
	Condition Condition `json:"condition" mapstructure:"condition"`
}

// Context holds runtime facts about the caller's wallet. Nil balances count
// as zero and a nil HasAnyNft counts as not owning one.
type Context struct {
	AddressConnected bool     `json:"addressConnected"`
	WzrdBalance      *float64 `json:"wzrdBalance,omitempty"`
	UsdcBalance      *float64 `json:"usdcBalance,omitempty"`
	HasAnyNft        *bool    `json:"hasAnyNft,omitempty"`
}

// Evaluate reports whether ctx satisfies req. Unknown token types are denied.
func Evaluate(req Requirement, ctx Context) bool {
	if !ctx.AddressConnected {
		return false
	}

	tokenType := strings.ToLower(req.TokenType)
	switch {
	case tokenType == "wzrd":
		return valueOrZero(ctx.WzrdBalance) >= req.Amount
	case tokenType == "usdc":
		return valueOrZero(ctx.UsdcBalance) >= req.Amount
	case strings.Contains(tokenType, "nft"):
		return ctx.HasAnyNft != nil && *ctx.HasAnyNft
	default:
		return false
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
