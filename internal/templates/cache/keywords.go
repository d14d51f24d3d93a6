// Package cache provides a Redis-backed cache in front of the selection keyword index.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
	"github.com/bissquit/journal-templates/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "keywords:"

var lookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "keyword_cache",
		Name:      "lookups_total",
		Help:      "Keyword cache lookups by result",
	},
	[]string{"result"},
)

// Index resolves selections to keywords.
type Index interface {
	KeywordsForSelections(ctx context.Context, selectionIDs []int64) ([]domain.Keyword, error)
}

// KeywordCache caches Index results per selection set. Redis failures degrade
// to calling the underlying index.
type KeywordCache struct {
	client *redis.Client
	next   Index
	ttl    time.Duration
}

// NewClient parses redisURL and verifies the server is reachable.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewKeywordCache wraps next with a cache stored in client.
func NewKeywordCache(client *redis.Client, next Index, ttl time.Duration) *KeywordCache {
	return &KeywordCache{client: client, next: next, ttl: ttl}
}

// key is independent of the order and repetition of ids.
func key(ids []int64) string {
	return keyPrefix + domain.NewSelectionSet(ids...).String()
}

// KeywordsForSelections implements Index.
func (c *KeywordCache) KeywordsForSelections(ctx context.Context, selectionIDs []int64) ([]domain.Keyword, error) {
	if len(selectionIDs) == 0 {
		return c.next.KeywordsForSelections(ctx, selectionIDs)
	}
	k := key(selectionIDs)
	logger := ctxlog.FromContext(ctx)

	data, err := c.client.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		var keywords []domain.Keyword
		if err := json.Unmarshal(data, &keywords); err == nil {
			lookups.WithLabelValues("hit").Inc()
			return keywords, nil
		}
		logger.Warn("discarding malformed keyword cache entry", "key", k)
	case errors.Is(err, redis.Nil):
	default:
		lookups.WithLabelValues("error").Inc()
		logger.Warn("keyword cache unavailable", "error", err)
		return c.next.KeywordsForSelections(ctx, selectionIDs)
	}

	lookups.WithLabelValues("miss").Inc()
	keywords, err := c.next.KeywordsForSelections(ctx, selectionIDs)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("marshal keywords: %w", err)
	}
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		logger.Warn("failed to store keyword cache entry", "key", k, "error", err)
	}
	return keywords, nil
}

// Invalidate drops every cached keyword lookup.
func (c *KeywordCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan keyword cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate keyword cache: %w", err)
	}
	return nil
}
