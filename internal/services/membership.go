package services

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"media-approve/internal/chat"
)

const membershipCacheSize = 1024

// CachedDirectory remembers membership answers for a short while; group lookups
// are a network round trip per click otherwise.
type CachedDirectory struct {
	next  chat.Directory
	cache *expirable.LRU[string, bool]
}

func NewCachedDirectory(next chat.Directory, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedDirectory{
		next:  next,
		cache: expirable.NewLRU[string, bool](membershipCacheSize, nil, ttl),
	}
}

func (d *CachedDirectory) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	key := groupID + "\x00" + userID
	if ok, found := d.cache.Get(key); found {
		return ok, nil
	}
	ok, err := d.next.IsMember(ctx, groupID, userID)
	if err != nil {
		return false, err
	}
	d.cache.Add(key, ok)
	return ok, nil
}
