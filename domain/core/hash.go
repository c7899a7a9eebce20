package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash is a hex SHA-256 digest. Comparison runs carry one as the
// fingerprint of their configuration.
type Hash string

func (h Hash) String() string { return string(h) }

// ComputeParamsHash digests params as sorted key=value pairs, so map order
// never changes the result.
func ComputeParamsHash(params map[string]interface{}) Hash {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, params[k])
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ComputeSequenceHash digests items in order.
func ComputeSequenceHash(items []string) Hash {
	h := sha256.New()
	for _, item := range items {
		fmt.Fprintf(h, "%d:%s;", len(item), item)
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ParseHash checks that s looks like a digest produced by ComputeParamsHash.
func ParseHash(s string) (Hash, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != sha256.Size*2 {
		return "", fmt.Errorf("fingerprint %q: want %d hex digits", s, sha256.Size*2)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("fingerprint %q: %w", s, err)
	}
	return Hash(s), nil
}
