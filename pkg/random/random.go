package random

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const alphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewRandomString returns a string of length n drawn uniformly from a
// base-57 alphabet without look-alike characters (0/O, 1/l/I).
func NewRandomString(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("length must be positive")
	}

	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
