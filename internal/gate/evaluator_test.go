package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func b(v bool) *bool       { return &v }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		req  Requirement
		ctx  Context
		want bool
	}{
		{
			name: "disconnected denies regardless of balance",
			req:  Requirement{TokenType: "wzrd", Amount: 1, Condition: ConditionHolds},
			ctx:  Context{AddressConnected: false, WzrdBalance: f(1e9)},
			want: false,
		},
		{
			name: "disconnected denies nft owner",
			req:  Requirement{TokenType: "nft", Condition: ConditionOwns},
			ctx:  Context{AddressConnected: false, HasAnyNft: b(true)},
			want: false,
		},
		{
			name: "wzrd at threshold",
			req:  Requirement{TokenType: "wzrd", Amount: 100},
			ctx:  Context{AddressConnected: true, WzrdBalance: f(100)},
			want: true,
		},
		{
			name: "wzrd below threshold",
			req:  Requirement{TokenType: "WZRD", Amount: 100},
			ctx:  Context{AddressConnected: true, WzrdBalance: f(99.99)},
			want: false,
		},
		{
			name: "missing wzrd balance counts as zero",
			req:  Requirement{TokenType: "wzrd", Amount: 1},
			ctx:  Context{AddressConnected: true},
			want: false,
		},
		{
			name: "missing balance meets zero threshold",
			req:  Requirement{TokenType: "wzrd", Amount: 0},
			ctx:  Context{AddressConnected: true},
			want: true,
		},
		{
			name: "usdc case-insensitive",
			req:  Requirement{TokenType: "UsDc", Amount: 25},
			ctx:  Context{AddressConnected: true, UsdcBalance: f(30)},
			want: true,
		},
		{
			name: "usdc does not read wzrd balance",
			req:  Requirement{TokenType: "usdc", Amount: 25},
			ctx:  Context{AddressConnected: true, WzrdBalance: f(30)},
			want: false,
		},
		{
			name: "nft substring match",
			req:  Requirement{TokenType: "Genesis-NFT-Pass", Condition: ConditionOwns},
			ctx:  Context{AddressConnected: true, HasAnyNft: b(true)},
			want: true,
		},
		{
			name: "nft false",
			req:  Requirement{TokenType: "nft"},
			ctx:  Context{AddressConnected: true, HasAnyNft: b(false)},
			want: false,
		},
		{
			name: "nft unknown ownership denies",
			req:  Requirement{TokenType: "nft"},
			ctx:  Context{AddressConnected: true},
			want: false,
		},
		{
			name: "unknown token type denies",
			req:  Requirement{TokenType: "unknown", Amount: 1, Condition: ConditionHolds},
			ctx:  Context{AddressConnected: true, WzrdBalance: f(1e9), UsdcBalance: f(1e9), HasAnyNft: b(true)},
			want: false,
		},
		{
			name: "condition is not branched on",
			req:  Requirement{TokenType: "wzrd", Amount: 10, Condition: ConditionStaked},
			ctx:  Context{AddressConnected: true, WzrdBalance: f(10)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.req, tt.ctx))
		})
	}
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition(" Holds ")
	require.NoError(t, err)
	assert.Equal(t, ConditionHolds, c)

	_, err = ParseCondition("borrowed")
	assert.Error(t, err)
}

func TestRules_Check(t *testing.T) {
	rules := Rules{
		"treasury": {TokenType: "wzrd", Amount: 500, Condition: ConditionHolds},
		"gallery":  {TokenType: "nft", Condition: ConditionOwns},
	}
	require.NoError(t, rules.Validate())

	ok, err := rules.Check("Treasury", Context{AddressConnected: true, WzrdBalance: f(501)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rules.Check("gallery", Context{AddressConnected: true})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = rules.Check("missing", Context{AddressConnected: true})
	assert.ErrorIs(t, err, ErrUnknownFeature)
}

func TestRules_Validate(t *testing.T) {
	assert.Error(t, Rules{"x": {TokenType: "", Condition: ConditionHolds}}.Validate())
	assert.Error(t, Rules{"x": {TokenType: "wzrd", Condition: "lent"}}.Validate())
}
