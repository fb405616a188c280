// Package common defines shared constants and sentinel errors used across
// the walletlink server. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)

	// Input errors. Every one of them wraps ErrInvalidInput.
	ErrInvalidInput          = errors.New("invalid input")
	ErrWalletMismatch        = fmt.Errorf("%w: walletAddress mismatch", ErrInvalidInput)
	ErrUnsupportedWalletType = fmt.Errorf("%w: unsupported walletType", ErrInvalidInput)
	ErrWalletAddressRequired = fmt.Errorf("%w: walletAddress is required", ErrInvalidInput)
	ErrCompleteFieldsMissing = fmt.Errorf("%w: sessionId, walletAddress, and signature are required", ErrInvalidInput)

	// Wallet-link lifecycle errors.
	ErrSessionExpired        = errors.New("session expired")
	ErrSignatureVerification = fmt.Errorf("%w: signature verification failed", ErrorUnauthorized)
)
