package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ppiankov/jyutdb/internal/model"
)

// Cache defines the interface for caching decoded partitions
type Cache interface {
	Get(key string) (*model.Database, bool)
	Set(key string, db *model.Database, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

// CacheKey generates a cache key from a partition file's path and fingerprint.
// Any change to size or modification time yields a different key.
func CacheKey(path string, size int64, modTime time.Time) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", path, size, modTime.UnixNano())))
	return "jyutdb:v1:" + hex.EncodeToString(hash[:])
}
