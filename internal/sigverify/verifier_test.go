package sigverify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	result bool
	calls  int
}

func (s *stubVerifier) Verify(message, signature, claimedAddress string) bool {
	s.calls++
	return s.result
}

func TestDefaultRegistry_SupportsEVM(t *testing.T) {
	r := DefaultRegistry()

	assert.True(t, r.Supports("evm"))
	assert.True(t, r.Supports(" EVM "))
	assert.False(t, r.Supports("solana"))
	assert.False(t, r.Supports(""))
}

func TestRegistry_DispatchesByType(t *testing.T) {
	r := NewRegistry()
	ok := &stubVerifier{result: true}
	r.Register("Custom", ok)

	assert.True(t, r.Verify("custom", "m", "s", "a"))
	assert.Equal(t, 1, ok.calls)
}

func TestRegistry_UnknownTypeFails(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Verify("evm", "m", "s", "a"))
}
