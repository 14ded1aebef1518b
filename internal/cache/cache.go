package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"anime-api/internal/models"
	"anime-api/pkg/logger"
)

// versionTTL bounds how long a Redis version key outlives its last
// invalidation. It must exceed any request timeout.
const versionTTL = time.Hour

// fillScript stores ARGV[2] under KEYS[1] only while KEYS[2] still holds the
// version the reader saw before going to the database.
var fillScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if (cur or '') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'EX', ARGV[3])
return 1
`)

// Animes is a read-through cache for single anime records. Lookups hit the
// in-process LRU first, then Redis when a client is configured. Cache errors
// are logged and reported as misses.
//
// Every id carries a version that Invalidate and Evict rotate. A miss hands
// the caller the current version and Fill only stores the record if the
// version is unchanged, so a read that raced a write cannot bring back the
// old row.
type Animes struct {
	mu       sync.Mutex
	local    *expirable.LRU[string, models.AnimeResponse]
	versions *expirable.LRU[string, string]
	rdb      *redis.Client
	ttl      time.Duration
}

// New builds the cache. rdb may be nil, in which case only the local LRU is used.
func New(size int, ttl time.Duration, rdb *redis.Client) *Animes {
	return &Animes{
		local:    expirable.NewLRU[string, models.AnimeResponse](size, nil, ttl),
		versions: expirable.NewLRU[string, string](size, nil, ttl),
		rdb:      rdb,
		ttl:      ttl,
	}
}

// Get returns the cached anime. On a miss it returns the version to pass to
// Fill. A Redis hit repopulates the local LRU.
func (c *Animes) Get(ctx context.Context, id string) (models.AnimeResponse, string, bool) {
	if a, ok := c.local.Get(id); ok {
		return a, "", true
	}
	local := c.localVersion(id)
	if c.rdb == nil {
		return models.AnimeResponse{}, local, false
	}

	vals, err := c.rdb.MGet(ctx, Key(id), VersionKey(id)).Result()
	if err != nil {
		logger.Debug(ctx, "Redis get anime failed", "error", err, "id", id)
		return models.AnimeResponse{}, joinVersion(local, ""), false
	}
	remote, _ := vals[1].(string)
	raw, ok := vals[0].(string)
	if !ok {
		return models.AnimeResponse{}, joinVersion(local, remote), false
	}
	var a models.AnimeResponse
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		logger.Debug(ctx, "Redis unmarshal anime failed", "error", err, "id", id)
		return models.AnimeResponse{}, joinVersion(local, remote), false
	}
	c.addLocal(a, local)
	return a, "", true
}

// Fill stores a record read from the database after a miss. It is dropped
// when the id was invalidated since the Get that returned version.
func (c *Animes) Fill(ctx context.Context, a models.AnimeResponse, version string) {
	local, remote := splitVersion(version)
	if c.rdb != nil {
		b, err := json.Marshal(a)
		if err != nil {
			logger.Debug(ctx, "Marshal anime for cache failed", "error", err, "id", a.ID)
			return
		}
		stored, err := fillScript.Run(ctx, c.rdb,
			[]string{Key(a.ID), VersionKey(a.ID)},
			remote, b, int(c.ttl/time.Second),
		).Int()
		if err != nil {
			logger.Debug(ctx, "Redis fill anime failed", "error", err, "id", a.ID)
		} else if stored == 0 {
			return
		}
	}
	c.addLocal(a, local)
}

// Invalidate removes the anime from both layers and rotates its version so
// in-flight fills are discarded.
func (c *Animes) Invalidate(ctx context.Context, id string) {
	c.Evict(id)
	if c.rdb == nil {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, Key(id))
		pipe.Set(ctx, VersionKey(id), uuid.NewString(), versionTTL)
		return nil
	})
	if err != nil {
		logger.Debug(ctx, "Redis invalidate anime failed", "error", err, "id", id)
	}
}

// Evict removes the anime from the local LRU only. Other replicas call it
// when they observe a change event.
func (c *Animes) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local.Remove(id)
	c.versions.Add(id, uuid.NewString())
}

// Ping checks Redis reachability; it is a no-op without Redis.
func (c *Animes) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Animes) localVersion(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.versions.Peek(id)
	if !ok {
		v = uuid.NewString()
		c.versions.Add(id, v)
	}
	return v
}

func (c *Animes) addLocal(a models.AnimeResponse, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.versions.Peek(a.ID); ok && cur == version {
		c.local.Add(a.ID, a)
	}
}

func joinVersion(local, remote string) string {
	return local + "/" + remote
}

func splitVersion(v string) (local, remote string) {
	local, remote, _ = strings.Cut(v, "/")
	return local, remote
}
