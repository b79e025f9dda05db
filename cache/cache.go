// Package cache keeps fully rendered pages for a limited time.
package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"yatube/logs"
)

// PageCache stores rendered pages by key. Implementations are safe for concurrent use;
// concurrent writers of the same key overwrite each other.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Clear drops every page
	Clear(ctx context.Context) error
}

// Pages serves pages from a PageCache, rendering them on a miss. Concurrent misses of the same
// key share a single render.
type Pages struct {
	Cache PageCache
	TTL   time.Duration
	group singleflight.Group
}

// Fetch returns the cached page for key, or renders, stores and returns it.
// A failing cache backend degrades to rendering every time. The render keeps the values of ctx but
// not its cancellation.
func (p *Pages) Fetch(ctx context.Context, key string, render func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	body, ok, err := p.Cache.Get(ctx, key)
	if err != nil {
		logs.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("page cache get failed")
	} else if ok {
		return body, nil
	}
	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		renderCtx := context.WithoutCancel(ctx)
		body, err := render(renderCtx)
		if err != nil {
			return nil, err
		}
		if err := p.Cache.Set(renderCtx, key, body, p.TTL); err != nil {
			logs.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("page cache set failed")
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
