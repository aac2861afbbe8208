package util

import (
	"crypto/rand"
	"math/big"
)

// joinCodeAlphabet avoids characters that read alike when typed into a chat
// (0/O, 1/I/L).
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 6

// GenerateJoinCode returns a short human-typeable code. Uniqueness is the
// store's job; callers retry on collision.
func GenerateJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
