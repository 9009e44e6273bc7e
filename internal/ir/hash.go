package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// Domain prefixes for content hashes. The version suffix allows the
// encoding to change without colliding with older hashes.
const (
	DomainPredicate = "qscope/predicate/v1"
	DomainScope     = "qscope/scope/v1"
	DomainPlan      = "qscope/plan/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes the canonical encoding of v under a domain prefix.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("content hash %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// ScopeHash returns an order-independent hash of a set of table names.
// Two scopes containing the same tables hash identically.
func ScopeHash(tables []string) string {
	sorted := slices.Clone(tables)
	sortKeysRFC8785(sorted)
	sorted = slices.Compact(sorted)

	// []string always encodes; the error path is unreachable.
	canonical, _ := MarshalCanonical(sorted)
	return hashWithDomain(DomainScope, canonical)
}

func sortKeysRFC8785(keys []string) {
	slices.SortFunc(keys, compareKeysRFC8785)
}
