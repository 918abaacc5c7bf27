package kv

import (
	"errors"

	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/infra"
	"github.com/benz9527/xrbtree/lib/tree"
)

// orderedIndex hides the node handle type of the backend picked by
// NewTreeMap.
type orderedIndex[K infra.OrderedKey, V any] interface {
	len() int64
	find(key K) (V, bool)
	update(key K, val V) bool
	insert(key K, val V) error
	remove(key K) (V, error)
	extreme(dir tree.RBDirection) (K, V, bool)
	foreach(dir tree.RBDirection, action func(idx int64, key K, val V) bool)
	popFirst(fn func(key K, val V)) bool
	drain(fn func(key K, val V))
	validate() error
}

type treeIndex[N comparable, K infra.OrderedKey, V any] struct {
	tree    *tree.RBTree[N, K, V]
	backend tree.RBKeyValBackend[N, K, V]
}

func newTreeIndex[N comparable, K infra.OrderedKey, V any](backend tree.RBKeyValBackend[N, K, V]) *treeIndex[N, K, V] {
	return &treeIndex[N, K, V]{
		tree:    tree.NewRBTree[N, K, V](backend),
		backend: backend,
	}
}

func (idx *treeIndex[N, K, V]) len() int64 {
	return idx.tree.Len()
}

func (idx *treeIndex[N, K, V]) find(key K) (val V, ok bool) {
	node, ok := idx.tree.Find(key)
	if !ok {
		return val, false
	}
	return idx.backend.Val(node), true
}

func (idx *treeIndex[N, K, V]) update(key K, val V) bool {
	node, ok := idx.tree.Find(key)
	if ok {
		idx.backend.SetVal(node, val)
	}
	return ok
}

func (idx *treeIndex[N, K, V]) insert(key K, val V) error {
	return idx.tree.Insert(key, val)
}

func (idx *treeIndex[N, K, V]) remove(key K) (val V, err error) {
	node, err := idx.tree.Remove(key)
	if err != nil {
		return val, err
	}
	val = idx.backend.Val(node)
	idx.tree.Release(node)
	return val, nil
}

func (idx *treeIndex[N, K, V]) extreme(dir tree.RBDirection) (key K, val V, ok bool) {
	var node N
	if dir == tree.Left {
		node, ok = idx.tree.Min()
	} else {
		node, ok = idx.tree.Max()
	}
	if !ok {
		return key, val, false
	}
	return idx.backend.Key(node), idx.backend.Val(node), true
}

func (idx *treeIndex[N, K, V]) foreach(dir tree.RBDirection, action func(i int64, key K, val V) bool) {
	it := idx.tree.Iterate()
	i := int64(0)
	for key, ok := it.SortOrder(dir); ok; key, ok = it.SortOrder(dir) {
		if !action(i, key, it.Val()) {
			return
		}
		i++
	}
}

// popFirst removes the first entry in key order through the regular
// remove path, the tree stays balanced.
func (idx *treeIndex[N, K, V]) popFirst(fn func(key K, val V)) bool {
	node, err := idx.tree.RemoveMin()
	if err != nil {
		return false
	}
	if fn != nil {
		fn(idx.backend.Key(node), idx.backend.Val(node))
	}
	idx.tree.Release(node)
	return true
}

// drain destroys every entry, fn sees them in key order.
func (idx *treeIndex[N, K, V]) drain(fn func(key K, val V)) {
	for !idx.tree.ClearFunc(fn) {
	}
}

func (idx *treeIndex[N, K, V]) validate() error {
	return idx.tree.Validate()
}

type treeMapOptions struct {
	logger    *zap.Logger
	statsName string
	capacity  int
	isDesc    bool
	isStats   bool
}

type TreeMapOpt func(*treeMapOptions)

// WithTreeMapCapacity backs the map by a fixed capacity arena, 16-bit
// handles up to tree.MaxArenaCapacity[uint16] and 32-bit beyond.
// Without it every entry is a heap node.
func WithTreeMapCapacity(capacity int) TreeMapOpt {
	return func(opts *treeMapOptions) {
		opts.capacity = capacity
	}
}

func WithTreeMapDesc() TreeMapOpt {
	return func(opts *treeMapOptions) {
		opts.isDesc = true
	}
}

func WithTreeMapStats(name string) TreeMapOpt {
	return func(opts *treeMapOptions) {
		opts.isStats = true
		opts.statsName = name
	}
}

func WithTreeMapLogger(logger *zap.Logger) TreeMapOpt {
	return func(opts *treeMapOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

type treeMap[K infra.OrderedKey, V any] struct {
	index  orderedIndex[K, V]
	stats  *treeMapStats
	logger *zap.Logger
}

var _ OrderedMap[int, int] = (*treeMap[int, int])(nil)

func newIndex[K infra.OrderedKey, V any](opts *treeMapOptions) orderedIndex[K, V] {
	switch {
	case opts.capacity <= 0:
		var backendOpts []tree.PtrBackendOpt[K, V]
		if opts.isDesc {
			backendOpts = append(backendOpts, tree.WithPtrBackendDesc[K, V]())
		}
		return newTreeIndex[*tree.RBNode[K, V], K, V](tree.NewPtrBackend[K, V](backendOpts...))
	case opts.capacity <= tree.MaxArenaCapacity[uint16]():
		backendOpts := []tree.ArenaOpt[uint16, K, V]{tree.WithArenaLogger[uint16, K, V](opts.logger)}
		if opts.isDesc {
			backendOpts = append(backendOpts, tree.WithArenaDesc[uint16, K, V]())
		}
		return newTreeIndex[uint16, K, V](tree.NewArenaBackend[uint16, K, V](opts.capacity, backendOpts...))
	default:
	}
	backendOpts := []tree.ArenaOpt[uint32, K, V]{tree.WithArenaLogger[uint32, K, V](opts.logger)}
	if opts.isDesc {
		backendOpts = append(backendOpts, tree.WithArenaDesc[uint32, K, V]())
	}
	return newTreeIndex[uint32, K, V](tree.NewArenaBackend[uint32, K, V](opts.capacity, backendOpts...))
}

func NewTreeMap[K infra.OrderedKey, V any](opts ...TreeMapOpt) OrderedMap[K, V] {
	return newTreeMap[K, V](opts...)
}

func newTreeMap[K infra.OrderedKey, V any](opts ...TreeMapOpt) *treeMap[K, V] {
	o := &treeMapOptions{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &treeMap[K, V]{
		index:  newIndex[K, V](o),
		logger: o.logger,
	}
	if o.isStats {
		m.stats = newTreeMapStats(o.statsName)
	}
	return m
}

func (m *treeMap[K, V]) Len() int64 {
	return m.index.len()
}

func (m *treeMap[K, V]) Put(key K, val V) error {
	if m.index.update(key, val) {
		m.stats.IncreaseUpdateCount()
		return nil
	}
	return m.insert(key, val)
}

func (m *treeMap[K, V]) PutIfAbsent(key K, val V) error {
	return m.insert(key, val)
}

func (m *treeMap[K, V]) insert(key K, val V) error {
	if err := m.index.insert(key, val); err != nil {
		if errors.Is(err, tree.ErrRBTreeKeyExists) {
			return ErrTreeMapKeyExists
		}
		m.logger.Error("[kv] tree map insert failed",
			zap.Any("key", key),
			zap.Int64("len", m.index.len()),
			zap.Error(err),
		)
		return err
	}
	m.stats.IncreaseInsertCount()
	m.stats.RecordSize(1)
	return nil
}

func (m *treeMap[K, V]) Get(key K) (V, bool) {
	return m.index.find(key)
}

func (m *treeMap[K, V]) Remove(key K) (V, error) {
	val, err := m.index.remove(key)
	if err != nil {
		if errors.Is(err, tree.ErrRBTreeKeyNotFound) {
			return val, ErrTreeMapKeyNotFound
		}
		return val, err
	}
	m.stats.IncreaseRemoveCount()
	m.stats.RecordSize(-1)
	return val, nil
}

func (m *treeMap[K, V]) Min() (K, V, bool) {
	return m.index.extreme(tree.Left)
}

func (m *treeMap[K, V]) Max() (K, V, bool) {
	return m.index.extreme(tree.Right)
}

func (m *treeMap[K, V]) Foreach(action func(idx int64, key K, val V) bool, desc ...bool) {
	dir := tree.Right
	if len(desc) > 0 && desc[0] {
		dir = tree.Left
	}
	m.index.foreach(dir, action)
}

func (m *treeMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.index.len())
	m.index.foreach(tree.Right, func(idx int64, key K, val V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (m *treeMap[K, V]) Values() []V {
	vals := make([]V, 0, m.index.len())
	m.index.foreach(tree.Right, func(idx int64, key K, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}

func (m *treeMap[K, V]) ClearStep(fn func(key K, val V)) bool {
	if !m.index.popFirst(fn) {
		return true
	}
	m.stats.RecordSize(-1)
	return false
}

func (m *treeMap[K, V]) Clear() {
	m.drain(nil)
}

func (m *treeMap[K, V]) drain(fn func(key K, val V)) {
	size := m.index.len()
	m.index.drain(fn)
	m.stats.RecordSize(-size)
}

func (m *treeMap[K, V]) Validate() error {
	return m.index.validate()
}
