// Package fingerprint derives a stable content hash for each valid staged
// transaction. The fingerprint is the transaction's identity for exact
// duplicate detection: the same (date, amount, normalized description)
// always hashes to the same value.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// NormalizeDescription canonicalizes a description for hashing: trim,
// lowercase, and collapse runs of whitespace to a single space. "Target",
// "TARGET" and "  Target  " all collapse to the same hash input.
func NormalizeDescription(description string) string {
	lowered := strings.ToLower(strings.TrimSpace(description))
	return strings.Join(strings.Fields(lowered), " ")
}

// Generate computes the SHA256 fingerprint of a transaction as lowercase hex.
// The hash input is the literal concatenation "date|cents|normalizedDesc".
// The result is an opaque 64-character equality key, never decoded.
func Generate(date string, amountCents int64, description string) string {
	input := date + "|" + strconv.FormatInt(amountCents, 10) + "|" + NormalizeDescription(description)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
