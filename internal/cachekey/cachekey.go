// Package cachekey derives stable identifiers for cache entries.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
)

// Derive hashes the parts in order with SHA-256 and returns the digest as
// lowercase hex. Parts are concatenated without separators; callers must
// choose a stable, sufficiently distinguishing part ordering. Pure function,
// no error conditions.
func Derive(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DeriveStrings is Derive over UTF-8 strings.
func DeriveStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
