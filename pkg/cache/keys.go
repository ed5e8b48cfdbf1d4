package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

const keyPrefix = "catalog"

// PropertyKey caches a single property document.
func PropertyKey(id string) string {
	return fmt.Sprintf("%s:property:%s", keyPrefix, id)
}

// PropertyListKey caches one listing page. The canonical query string is
// hashed so arbitrary search text never leaks into key names.
func PropertyListKey(canonical string) string {
	sum := sha1.Sum([]byte(canonical))
	return fmt.Sprintf("%s:list:%s", keyPrefix, hex.EncodeToString(sum[:]))
}

// PropertyListSetKey is the set that tracks every live listing page key.
func PropertyListSetKey() string {
	return keyPrefix + ":list:keys"
}
