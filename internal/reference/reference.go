// Package reference generates external booking reference numbers.
// The generator is stateless and has no global knowledge, so it cannot
// guarantee uniqueness by itself: collisions are rare but possible,
// and the provisioning layer resolves them against the store's unique
// index by regenerating and retrying.
package reference

import (
	"crypto/rand"
)

// Prefix is the constant leading part of every reference number.
const Prefix = "REF_"

// suffixLen is the number of random characters after the prefix.
const suffixLen = 6

// alphabet holds the characters a reference suffix is drawn from.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate returns a new reference number such as "REF_x7Kp2Q". The
// suffix is drawn from crypto/rand so tokens are not guessable from
// previously issued ones. On failure of the system randomness source
// it returns an error.
func Generate() (string, error) {
	b := make([]byte, suffixLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return Prefix + string(b), nil
}
