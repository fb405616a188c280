// Package sigverify checks that a signature over a challenge message was
// produced by the wallet a client claims to control.
package sigverify

import (
	"strings"
	"sync"
)

// Verifier recovers the signer of message from signature and reports whether
// it matches claimedAddress. Malformed input is a failed verification, never
// a panic.
type Verifier interface {
	Verify(message, signature, claimedAddress string) bool
}

// Registry selects a Verifier by wallet type (case-insensitive).
type Registry struct {
	mu        sync.RWMutex
	verifiers map[string]Verifier
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{verifiers: make(map[string]Verifier)}
}

// DefaultRegistry returns a registry that knows the "evm" wallet type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(WalletTypeEVM, EVM{})
	return r
}

// Register binds v to walletType, replacing any previous binding.
func (r *Registry) Register(walletType string, v Verifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifiers[normalizeType(walletType)] = v
}

// Supports reports whether walletType has a verifier.
func (r *Registry) Supports(walletType string) bool {
	_, ok := r.lookup(walletType)
	return ok
}

// Verify dispatches to the verifier for walletType. Unknown types fail.
func (r *Registry) Verify(walletType, message, signature, claimedAddress string) bool {
	v, ok := r.lookup(walletType)
	if !ok {
		return false
	}
	return v.Verify(message, signature, claimedAddress)
}

func (r *Registry) lookup(walletType string) (Verifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.verifiers[normalizeType(walletType)]
	return v, ok
}

func normalizeType(walletType string) string {
	return strings.ToLower(strings.TrimSpace(walletType))
}
