package utils

import (
	"crypto/rand"
	"math/big"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomToken returns a cryptographically random alphanumeric string of
// length n, used for password reset tokens.
func RandomToken(n int) string {
	out := make([]byte, n)
	maxIdx := big.NewInt(int64(len(tokenAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			// crypto/rand failing means the platform RNG is broken
			panic(err)
		}
		out[i] = tokenAlphabet[idx.Int64()]
	}
	return string(out)
}
