package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes read from the
// system CSPRNG; the resulting string is twice as long.
//
// Example:
//
//	nonce, err := MakeRandHexString(NonceSize)
//	if err != nil {
//	    return err
//	}
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
