package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "gym:profile:"

// CachedIdentity memoizes profiles in Redis. Cache failures fall through to Next.
type CachedIdentity struct {
	Next IdentityProvider
	RDB  *redis.Client
	TTL  time.Duration
}

func NewCachedIdentity(next IdentityProvider, rdb *redis.Client, ttl time.Duration) *CachedIdentity {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedIdentity{Next: next, RDB: rdb, TTL: ttl}
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

func (c *CachedIdentity) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	raw, err := c.RDB.Get(ctx, profileKey(userID)).Bytes()
	switch {
	case err == nil:
		var p Profile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		log.Printf("[IDENTITY] dropping unreadable cache entry for %s", userID)
	case !errors.Is(err, redis.Nil):
		log.Printf("[IDENTITY] cache read failed for %s: %v", userID, err)
	}

	p, err := c.Next.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payload, jsonErr := json.Marshal(p); jsonErr == nil {
		if setErr := c.RDB.Set(ctx, profileKey(userID), payload, c.TTL).Err(); setErr != nil {
			log.Printf("[IDENTITY] cache write failed for %s: %v", userID, setErr)
		}
	}
	return p, nil
}

func (c *CachedIdentity) UpdateMetadata(ctx context.Context, userID string, patch map[string]any) error {
	if err := c.Next.UpdateMetadata(ctx, userID, patch); err != nil {
		return err
	}
	if err := c.RDB.Del(ctx, profileKey(userID)).Err(); err != nil {
		log.Printf("[IDENTITY] cache invalidation failed for %s: %v", userID, err)
	}
	return nil
}

func (c *CachedIdentity) ListUserIDs(ctx context.Context) ([]string, error) {
	return c.Next.ListUserIDs(ctx)
}
