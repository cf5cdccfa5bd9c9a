// Package cache memoizes verdicts for identical deterministic submissions.
// The key covers everything that shapes the outcome: language, source, case
// config and effective limits.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/blake3"

	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
)

// Config holds the Redis connection and TTL settings.
type Config struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// SetDefault fills unset fields.
func (c *Config) SetDefault() {
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
}

// VerdictCache stores verdicts in Redis. A nil VerdictCache is a no-op.
type VerdictCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// New connects to Redis, or returns nil when caching is disabled.
func New(cfg Config) *VerdictCache {
	if !cfg.Enabled || cfg.Addr == "" {
		return nil
	}
	cfg.SetDefault()
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &VerdictCache{client: client, ttl: cfg.TTL}
}

// NewWithClient wraps an existing Redis client; used by tests.
func NewWithClient(client redis.Cmdable, ttl time.Duration) *VerdictCache {
	return &VerdictCache{client: client, ttl: ttl}
}

// Key derives the cache key for one submission.
func Key(sub model.Submission) string {
	h := blake3.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(string(sub.Language))
	_ = enc.Encode(sub.SourceCode)
	_ = enc.Encode(sub.Case)
	_ = enc.Encode(sub.EffectiveLimits())
	return "judge:verdict:" + hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached verdict for a submission, or ok=false on a miss.
func (c *VerdictCache) Get(ctx context.Context, sub model.Submission) (model.Verdict, bool, error) {
	var v model.Verdict
	if c == nil || c.client == nil {
		return v, false, nil
	}
	data, err := c.client.Get(ctx, Key(sub)).Bytes()
	if err == redis.Nil {
		return v, false, nil
	}
	if err != nil {
		return v, false, appErr.Wrapf(err, appErr.VerdictCacheFailed, "cache get")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, appErr.Wrapf(err, appErr.VerdictCacheFailed, "cache entry malformed")
	}
	return v, true, nil
}

// Put stores a verdict. Only terminal, deterministic outcomes are cached;
// INTERNAL_ERROR and timeout verdicts may be transient and are skipped.
func (c *VerdictCache) Put(ctx context.Context, sub model.Submission, v model.Verdict) error {
	if c == nil || c.client == nil {
		return nil
	}
	switch v.Status {
	case model.StatusSuccess, model.StatusWrongAnswer, model.StatusCompileError:
	default:
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return appErr.Wrapf(err, appErr.VerdictCacheFailed, "marshal verdict")
	}
	if err := c.client.Set(ctx, Key(sub), data, c.ttl).Err(); err != nil {
		return appErr.Wrapf(err, appErr.VerdictCacheFailed, "cache set")
	}
	return nil
}
