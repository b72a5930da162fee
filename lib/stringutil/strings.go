package stringutil

import (
	"math/rand"
)

const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

// Random returns a lowercase alphanumeric string, safe to embed in an unquoted
// Spark identifier.
func Random(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}

	return string(b)
}

// Empty returns true if any of the passed in values are empty.
func Empty(vals ...string) bool {
	for _, val := range vals {
		if val == "" {
			return true
		}
	}

	return false
}
