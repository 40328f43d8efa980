package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/factline/internal/model"
)

// Cache stores assembled records keyed by document identity. Records
// are treated as immutable once assembled; backends may hand back a
// shared pointer, so callers must not modify what Get returns.
type Cache interface {
	Get(key string) (*model.Record, bool)
	Set(key string, rec *model.Record, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a document's identity and content.
// Reprocessing an unchanged transcript is a cache hit; any edit to the
// text produces a new key.
func Key(docID, text string) string {
	hash := sha256.Sum256([]byte(docID + "\x00" + text))
	return "factline:v1:" + hex.EncodeToString(hash[:])
}
