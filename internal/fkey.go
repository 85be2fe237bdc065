package internal

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// FKeyLength is the number of characters in a generated fkey.
	FKeyLength = 40

	fkeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Bytes at or above this value are discarded so every symbol is equally likely.
	fkeyRejectAbove = 256 - 256%len(fkeyAlphabet)
	// fkeyMaxReads bounds the reads spent on a source that keeps producing
	// rejected bytes.
	fkeyMaxReads = 64
)

// GenerateFKey returns a random alphanumeric CSRF token read from r.
// A nil reader falls back to crypto/rand.
func GenerateFKey(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}

	out := make([]byte, 0, FKeyLength)
	buf := make([]byte, FKeyLength)
	for reads := 0; len(out) < FKeyLength; reads++ {
		if reads == fkeyMaxReads {
			return "", fmt.Errorf("random source produced no usable bytes for fkey after %d reads", reads)
		}
		n, err := io.ReadFull(r, buf)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes for fkey: %w", err)
		}
		for _, b := range buf[:n] {
			if int(b) >= fkeyRejectAbove {
				continue
			}
			out = append(out, fkeyAlphabet[int(b)%len(fkeyAlphabet)])
			if len(out) == FKeyLength {
				break
			}
		}
	}
	return string(out), nil
}
