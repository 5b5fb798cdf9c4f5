package project

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest is a SHA-256 value, the same shape as source.File.Hash.
type Digest [32]byte

// DigestOf hashes s.
func DigestOf(s string) Digest { return sha256.Sum256([]byte(s)) }

// Combine hashes content followed by deps in the order given.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (d Digest) Hex() string { return hex.EncodeToString(d[:]) }
