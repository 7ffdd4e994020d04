package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory defaults.
const (
	DefaultTTL             = time.Hour
	DefaultCleanupInterval = time.Minute
)

// MemoryOption configures a Memory cache.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl        time.Duration
	cleanup    time.Duration
	maxEntries int
	onEvict    []func(key string)
}

// WithDefaultTTL sets the TTL used when Set is called with zero.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.ttl = d }
}

// WithCleanupInterval sets how often expired entries are dropped in the
// background. Zero disables the janitor; expired entries then go on access.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.cleanup = d }
}

// WithMaxEntries bounds the cache. Inserting past the bound evicts the least
// recently used entry. Zero means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryConfig) { c.maxEntries = max(n, 0) }
}

// WithEvictCallback registers fn to run with the key of every entry that
// leaves the cache, whether evicted, expired, deleted or cleared. fn runs
// with the cache locked and must not call back into it.
func WithEvictCallback(fn func(key string)) MemoryOption {
	return func(c *memoryConfig) { c.onEvict = append(c.onEvict, fn) }
}

type item[V any] struct {
	key     string
	value   V
	expires time.Time
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// Memory is a process-local cache with TTLs and optional LRU bounds.
// The list keeps the most recently used entry at the front.
type Memory[V any] struct {
	cfg memoryConfig

	mu     sync.Mutex
	index  map[string]*list.Element
	lru    *list.List
	closed bool
	stop   chan struct{}
}

// NewMemory creates a Memory cache:
//
//	pages := cache.NewMemory[middlewares.Page](
//	    cache.WithDefaultTTL(10*time.Minute),
//	    cache.WithMaxEntries(1000),
//	)
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := memoryConfig{ttl: DefaultTTL, cleanup: DefaultCleanupInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Memory[V]{
		cfg:   cfg,
		index: map[string]*list.Element{},
		lru:   list.New(),
		stop:  make(chan struct{}),
	}
	if cfg.cleanup > 0 {
		go m.janitor(cfg.cleanup)
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.lookup(key, time.Now())
	if !ok {
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return el.Value.(*item[V]).value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.cfg.ttl
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	if el, ok := m.index[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expires = value, expires
		m.lru.MoveToFront(el)
		return nil
	}
	if m.cfg.maxEntries > 0 && len(m.index) >= m.cfg.maxEntries {
		if back := m.lru.Back(); back != nil {
			m.remove(back)
		}
	}
	m.index[key] = m.lru.PushFront(&item[V]{key: key, value: value, expires: expires})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.index[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.lookup(key, time.Now())
	return ok, nil
}

// Len returns the number of stored entries, expired ones included until
// they are swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for el := m.lru.Front(); el != nil; el = el.Next() {
		m.evicted(el.Value.(*item[V]).key)
	}
	m.index = map[string]*list.Element{}
	m.lru.Init()
	return nil
}

// Close stops the janitor. Later writes return ErrClosed; reads keep
// working on what is left.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
	}
	return nil
}

// lookup drops the entry when it has expired. Caller holds mu.
func (m *Memory[V]) lookup(key string, now time.Time) (*list.Element, bool) {
	el, ok := m.index[key]
	if !ok {
		return nil, false
	}
	if el.Value.(*item[V]).expired(now) {
		m.remove(el)
		return nil, false
	}
	return el, true
}

// remove unlinks el. Caller holds mu.
func (m *Memory[V]) remove(el *list.Element) {
	it := m.lru.Remove(el).(*item[V])
	delete(m.index, it.key)
	m.evicted(it.key)
}

func (m *Memory[V]) evicted(key string) {
	for _, fn := range m.cfg.onEvict {
		fn(key)
	}
}

func (m *Memory[V]) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-t.C:
			m.sweep(now)
		}
	}
}

func (m *Memory[V]) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for el := m.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*item[V]).expired(now) {
			m.remove(el)
		}
		el = prev
	}
}

var _ Cache[any] = (*Memory[any])(nil)
