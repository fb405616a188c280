package sigverify

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// WalletTypeEVM identifies Ethereum-style accounts.
const WalletTypeEVM = "evm"

// signatureLength is R (32) | S (32) | V (1).
const signatureLength = crypto.SignatureLength

// EVM verifies EIP-191 personal_sign signatures.
type EVM struct{}

// Verify implements Verifier.
func (EVM) Verify(message, signature, claimedAddress string) bool {
	recovered, ok := RecoverPersonalSign(message, signature)
	if !ok {
		return false
	}
	return SameAddress(recovered, claimedAddress)
}

// RecoverPersonalSign returns the 0x-prefixed checksummed address that signed
// message, or false if the signature cannot be decoded or recovered.
func RecoverPersonalSign(message, signature string) (string, bool) {
	sig, err := decodeHex(signature)
	if err != nil || len(sig) != signatureLength {
		return "", false
	}

	// Wallets emit V as 27/28; go-ethereum expects the raw recovery id.
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return "", false
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", false
	}
	return crypto.PubkeyToAddress(*pub).Hex(), true
}

// SameAddress compares two hex addresses ignoring case and an optional 0x
// prefix.
func SameAddress(a, b string) bool {
	a, b = trimHexPrefix(strings.TrimSpace(a)), trimHexPrefix(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(trimHexPrefix(strings.TrimSpace(s)))
}

func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
