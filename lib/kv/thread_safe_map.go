package kv

import (
	"errors"
	"io"
	"reflect"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/lib/tree"
	"github.com/benz9527/xrbtree/lib/xlog"
)

// threadSafeMap serializes an ordered tree map with a RWMutex.
// An arena backed store doubles its capacity once it is full.
type threadSafeMap[K infra.OrderedKey, V any] struct {
	lock           sync.RWMutex
	items          *treeMap[K, V]
	pool           *ants.Pool
	logger         *zap.Logger
	statsName      string
	capacity       int
	isClosableItem bool
	isStats        bool
}

type ThreadSafeMapOption[K infra.OrderedKey, V any] func(*threadSafeMap[K, V])

// WithThreadSafeMapInitCap stores the entries in an arena of capacity
// slots, which grows on demand.
func WithThreadSafeMapInitCap[K infra.OrderedKey, V any](capacity int) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.capacity = capacity
	}
}

// WithThreadSafeMapCloseableItemCheck closes every io.Closer value
// dropped by Purge.
func WithThreadSafeMapCloseableItemCheck[K infra.OrderedKey, V any]() ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.isClosableItem = true
	}
}

// NewPurgePool creates a pool suitable for WithThreadSafeMapPurgePool,
// its own logs go to logger at debug level.
func NewPurgePool(size int, logger *zap.Logger) (*ants.Pool, error) {
	return ants.NewPool(size,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
	)
}

// WithThreadSafeMapPurgePool drains purged entries on the pool instead
// of the caller's goroutine.
func WithThreadSafeMapPurgePool[K infra.OrderedKey, V any](pool *ants.Pool) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.pool = pool
	}
}

func WithThreadSafeMapLogger[K infra.OrderedKey, V any](logger *zap.Logger) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithThreadSafeMapStats[K infra.OrderedKey, V any](name string) ThreadSafeMapOption[K, V] {
	return func(m *threadSafeMap[K, V]) {
		m.isStats = true
		m.statsName = name
	}
}

func (t *threadSafeMap[K, V]) newItems(capacity int) *treeMap[K, V] {
	opts := []TreeMapOpt{
		WithTreeMapCapacity(capacity),
		WithTreeMapLogger(t.logger),
	}
	if t.isStats {
		opts = append(opts, WithTreeMapStats(t.statsName))
	}
	return newTreeMap[K, V](opts...)
}

// grow moves every entry into an arena twice as large. The move bypasses
// the stats, the entries are neither inserted nor removed by the caller.
// The caller holds the write lock.
func (t *threadSafeMap[K, V]) grow() {
	capacity := max(t.capacity<<1, 16)
	items := t.newItems(capacity)
	t.items.index.drain(func(key K, val V) {
		_ = items.index.insert(key, val)
	})
	t.logger.Info("[kv] thread safe map grown",
		zap.Int("from", t.capacity),
		zap.Int("to", capacity),
	)
	t.items, t.capacity = items, capacity
}

func (t *threadSafeMap[K, V]) AddOrUpdate(key K, obj V) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	err := t.items.Put(key, obj)
	if errors.Is(err, tree.ErrRBTreeNodeExhausted) && t.capacity > 0 &&
		t.capacity < tree.MaxArenaCapacity[uint32]() {
		t.grow()
		err = t.items.Put(key, obj)
	}
	return err
}

func (t *threadSafeMap[K, V]) Replace(items map[K]V) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.capacity > 0 {
		t.capacity = max(t.capacity, len(items))
	}
	next := t.newItems(t.capacity)
	for key, item := range items {
		_ = next.PutIfAbsent(key, item)
	}
	t.items.stats.RecordSize(-t.items.Len())
	t.items = next
}

func (t *threadSafeMap[K, V]) Delete(key K) (V, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.items.Remove(key)
}

func (t *threadSafeMap[K, V]) Get(key K) (item V, exists bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.items.Get(key)
}

// ListKeys returns the keys in ascending order, a key is kept if any
// of the filters accepts it.
func (t *threadSafeMap[K, V]) ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K {
	realFilters := lo.Filter(filters, func(filter SafeStoreKeyFilterFunc[K], _ int) bool {
		return filter != nil
	})
	if len(realFilters) == 0 {
		realFilters = append(realFilters, defaultAllKeysFilter[K])
	}

	t.lock.RLock()
	keys := t.items.Keys()
	t.lock.RUnlock()

	return lo.Filter(keys, func(key K, _ int) bool {
		return lo.ContainsBy(realFilters, func(filter SafeStoreKeyFilterFunc[K]) bool {
			return filter(key)
		})
	})
}

// ListValues returns all values in key order, or the values of the
// given keys in argument order with absent keys skipped.
func (t *threadSafeMap[K, V]) ListValues(keys ...K) (items []V) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if len(keys) == 0 {
		return t.items.Values()
	}
	return lo.FilterMap(lo.Uniq(keys), func(key K, _ int) (V, bool) {
		return t.items.Get(key)
	})
}

// Purge swaps in an empty store and drains the old one. With a purge
// pool the drain runs asynchronously and close errors are logged,
// otherwise they are returned combined.
func (t *threadSafeMap[K, V]) Purge() error {
	t.lock.Lock()
	old := t.items
	t.items = t.newItems(t.capacity)
	t.lock.Unlock()

	drain := func() (err error) {
		count := old.Len()
		old.drain(func(key K, val V) {
			err = multierr.Append(err, t.closeItem(val))
		})
		t.logger.Info("[kv] thread safe map purged", zap.Int64("count", count))
		return err
	}
	if t.pool == nil {
		return drain()
	}
	return t.pool.Submit(func() {
		if err := drain(); err != nil {
			t.logger.Error("[kv] thread safe map purge close items failed", zap.Error(err))
		}
	})
}

func (t *threadSafeMap[K, V]) closeItem(item V) error {
	if !t.isClosableItem {
		return nil
	}
	closer, ok := any(item).(io.Closer)
	if !ok || isNilItem(closer) {
		return nil
	}
	return closer.Close()
}

func isNilItem(item any) bool {
	v := reflect.ValueOf(item)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
	}
	return false
}

func NewThreadSafeMap[K infra.OrderedKey, V any](opts ...ThreadSafeMapOption[K, V]) ThreadSafeStorer[K, V] {
	m := &threadSafeMap[K, V]{
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(m)
	}
	m.items = m.newItems(m.capacity)
	return m
}
