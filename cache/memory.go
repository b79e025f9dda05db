package cache

import (
	"context"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type entry struct {
	body    []byte
	expires time.Time // zero means never
}

// Memory is a process local PageCache
type Memory struct {
	entries cmap.ConcurrentMap[string, entry]
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: cmap.New[entry](),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		// only drop the entry we looked at, a fresh Set may have replaced it meanwhile
		m.entries.RemoveCb(key, func(_ string, v entry, exists bool) bool {
			return exists && v.expires.Equal(e.expires)
		})
		return nil, false, nil
	}
	return e.body, true, nil
}

// Set stores a copy of body; ttl <= 0 keeps it until deleted
func (m *Memory) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	e := entry{body: append([]byte(nil), body...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries.Set(key, e)
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		m.entries.Remove(key)
	}
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.entries.Clear()
	return nil
}

func (m *Memory) Len() int {
	return m.entries.Count()
}
