// Package docid provides deterministic document IDs for condition records.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const prefix = "cond:"

// ConditionDocID returns a stable ID for the record at position with the given
// name. Datasets may repeat names, so the position is part of the hash.
func ConditionDocID(position int, name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	hash := sha256.Sum256([]byte(strconv.Itoa(position) + "\x00" + normalized))
	return prefix + hex.EncodeToString(hash[:16])
}

// IsConditionDocID reports whether id was produced by ConditionDocID.
func IsConditionDocID(id string) bool {
	return strings.HasPrefix(id, prefix) && len(id) == len(prefix)+32
}
