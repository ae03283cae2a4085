// Package idempotency carries request keys through a context and stores the
// first outcome of each keyed request.
package idempotency

import (
	"context"
	"sync"
	"time"
)

// Header is the HTTP header a keyed request carries its key in.
const Header = "Idempotency-Key"

type ctxKey struct{}

// WithKey marks the calls made with ctx as one logical request.
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

func KeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(ctxKey{}).(string)
	return key
}

type entry struct {
	value   string
	expires time.Time
}

// Memory is the in-process store used when redis is not configured.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (m *Memory) TryLock(_ context.Context, scope, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := lockKey(scope, key)
	if _, ok := m.live(k); ok {
		return false, nil
	}
	m.entries[k] = entry{expires: m.now().Add(m.ttl)}
	return true, nil
}

func (m *Memory) Unlock(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, lockKey(scope, key))
	return nil
}

func (m *Memory) Remember(_ context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[valueKey(scope, key)] = entry{value: value, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Recall(_ context.Context, scope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(valueKey(scope, key))
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

// live drops k when it has expired.
func (m *Memory) live(k string) (entry, bool) {
	e, ok := m.entries[k]
	if !ok {
		return entry{}, false
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.entries, k)
		return entry{}, false
	}
	return e, true
}

func lockKey(scope, key string) string {
	return "idemp:" + scope + ":" + key
}

func valueKey(scope, key string) string {
	return "idemp:map:" + scope + ":" + key
}
