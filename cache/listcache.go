// Package cache holds the blog list response cache. Every read or patch
// of the serialized list blob goes through ListCache so the
// invalidate-on-write policy lives in exactly one place.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/utils"
)

const (
	// BlogListKey is the bare, unparameterized list path. Write endpoints
	// only repair this entry; filtered or paginated variants are never
	// patched and age out via TTL.
	BlogListKey = "/blog/list"

	// TTL applied to every list entry.
	TTL = 30 * time.Minute

	opTimeout = 2 * time.Second
)

// ListCache stores serialized list responses keyed by request path+query.
type ListCache struct {
	rdb *redis.Client
}

// New wraps a Redis client.
func New(rdb *redis.Client) *ListCache {
	return &ListCache{rdb: rdb}
}

// Get returns the cached payload for a key. A miss is (nil, false, nil);
// a backend failure is returned as an error because the documented read
// path fails closed rather than silently falling through to the store.
func (c *ListCache) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Store saves a payload under key with the list TTL. Best-effort: a
// backend failure is logged and swallowed.
func (c *ListCache) Store(key string, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx, key, payload, TTL).Err(); err != nil {
		warnf("cache set failed key=%s err=%v", key, err)
	}
}

// Drop removes a key outright. Used on logout.
func (c *ListCache) Drop(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		warnf("cache del failed key=%s err=%v", key, err)
	}
}

// AppendBlog pushes a freshly created blog onto the cached bare list
// entry. No existing entry means there is nothing to repair.
func (c *ListCache) AppendBlog(item models.BlogListItem) {
	c.patch(func(resp *models.BlogListResponse) bool {
		resp.Blog = append(resp.Blog, item)
		return true
	})
}

// PatchBlog replaces the cached item with the same id, if present.
func (c *ListCache) PatchBlog(item models.BlogListItem) {
	c.patch(func(resp *models.BlogListResponse) bool {
		for i := range resp.Blog {
			if resp.Blog[i].ID == item.ID {
				resp.Blog[i] = item
				return true
			}
		}
		return false
	})
}

// RemoveBlog splices the item with the given id out of the cached entry.
func (c *ListCache) RemoveBlog(id uint) {
	c.patch(func(resp *models.BlogListResponse) bool {
		for i := range resp.Blog {
			if resp.Blog[i].ID == id {
				resp.Blog = append(resp.Blog[:i], resp.Blog[i+1:]...)
				return true
			}
		}
		return false
	})
}

// patch runs a read-modify-write cycle against the bare list entry.
// Everything here is best-effort: no entry, a stale shape or a backend
// error just skips the repair and lets the TTL sort it out.
func (c *ListCache) patch(mutate func(*models.BlogListResponse) bool) {
	b, ok, err := c.Get(BlogListKey)
	if err != nil {
		warnf("cache patch read failed key=%s err=%v", BlogListKey, err)
		return
	}
	if !ok {
		return
	}

	var resp models.BlogListResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		warnf("cache patch decode failed key=%s err=%v", BlogListKey, err)
		return
	}
	if !mutate(&resp) {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	c.Store(BlogListKey, payload)
}

func warnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}
