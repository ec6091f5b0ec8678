package tiercache

import (
	"fmt"
	"time"

	"github.com/clubshop-app/ClubShop/internal/pkg/cache"
)

// ttl bounds how long a stale membership flag can outlive its payment. A
// settled or canceled membership payment invalidates the entry immediately;
// the TTL only covers out-of-band changes such as period expiry.
const ttl = 60 * time.Second

func key(userID uint) string {
	return fmt.Sprintf("tier:member:%d", userID)
}

// Get returns the cached member flag for the user. The second return value
// reports a cache hit; any cache failure counts as a miss.
func Get(userID uint) (bool, bool) {
	val, err := cache.Get(key(userID))
	if err != nil {
		return false, false
	}
	return val == "1", true
}

// Set caches the resolved member flag for the short TTL.
func Set(userID uint, isMember bool) {
	val := "0"
	if isMember {
		val = "1"
	}
	// A write failure just means the next request resolves from the DB.
	_ = cache.Set(key(userID), val, ttl)
}

// Invalidate drops the cached flag so the next request resolves membership
// from the database.
func Invalidate(userID uint) {
	_ = cache.Delete(key(userID))
}
