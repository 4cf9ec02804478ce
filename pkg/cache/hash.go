package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// hashKey returns prefix + ":" + sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data (64 chars).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// KeyType reports the family of a key built by a Keyer, looking past any
// scope prefix. Unknown keys report "other".
func KeyType(key string) string {
	for _, seg := range strings.Split(key, ":") {
		switch seg {
		case KeyTypeTree, KeyTypeArtifact:
			return seg
		}
	}
	return "other"
}
