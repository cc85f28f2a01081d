// Package token generates and hashes the opaque values the viewer flow
// relies on: magic-link tokens, session tokens, link slugs and the
// base64url-encoded viewer identity cookie payload. Raw token values are
// only ever held in memory; storage gets the one-way hash.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

const (
	rawTokenBytes = 24
	slugBytes     = 16
)

// NewRaw returns a fresh random token encoded for transport in URLs and
// cookies.
func NewRaw() string {
	buf := make([]byte, rawTokenBytes)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// NewSlug returns an unguessable public link identifier.
func NewSlug() string {
	buf := make([]byte, slugBytes)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// Hash returns the hex SHA-256 of a raw token. Lookups compare hashes only.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// EncodeEmail encodes a viewer email for the identity cookie payload.
func EncodeEmail(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

// DecodeEmail decodes an identity cookie payload. Returns "" for empty or
// malformed input.
func DecodeEmail(encoded string) string {
	if encoded == "" {
		return ""
	}
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		// Older cookies may carry padded payloads.
		decoded, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return ""
		}
	}
	return strings.TrimSpace(string(decoded))
}
