package registry

import (
	"crypto/rand"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Token returns a random alphanumeric string of the given length,
// suitable for webhook ids and secrets. No collision check happens
// here; the store's uniqueness constraint is the authoritative guard
// and the caller retries once on conflict.
func Token(length int) (string, error) {
	// 248 is the largest multiple of 62 that fits in a byte; rejecting
	// bytes at or above it keeps the distribution uniform.
	const limit = byte(248)

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
