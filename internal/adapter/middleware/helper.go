package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(method, path string, userID uint64, key string) string {
	return "idemp:" + strings.ToLower(method) + ":" + path + ":" + strconv.FormatUint(userID, 10) + ":" + key
}

// normalizeKey accepts a hyphenated UUID or 32 hex characters in any case and
// returns the canonical lowercase hyphenated form, so both spellings share a slot.
func normalizeKey(k string) (string, bool) {
	k = strings.TrimSpace(k)
	if len(k) != 32 && len(k) != 36 {
		return "", false
	}
	u, err := uuid.Parse(k)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// replayStore keeps one idempEntry per key in Redis.
type replayStore struct {
	rdb     *redis.Client
	lockTTL time.Duration
	ttl     time.Duration
}

// claim writes the in-progress marker; false means someone already holds the key.
func (s replayStore) claim(ctx context.Context, key string, e idempEntry) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.lockTTL).Result()
}

func (s replayStore) load(ctx context.Context, key string) (idempEntry, error) {
	var e idempEntry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(v, &e); err != nil {
		return e, fmt.Errorf("decode %s: %w", key, err)
	}
	return e, nil
}

// finish replaces the marker with the final response for the replay window.
func (s replayStore) finish(ctx context.Context, key string, e idempEntry) error {
	e.InProgress = false
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
