package common

import "time"

// AuthorizationHeaderName carries the caller's bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// DefaultWalletType is assumed when a client omits walletType.
const DefaultWalletType = "evm"

// NonceSize is the number of random bytes behind a session nonce.
const NonceSize = 32

// DefaultSessionTTL bounds how long a link session accepts a signature.
const DefaultSessionTTL = 10 * time.Minute
