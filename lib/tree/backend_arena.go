package tree

import (
	"errors"

	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/bits"
	"github.com/benz9527/xrbtree/lib/infra"
)

var ErrArenaFull = errors.New("[rbtree] arena is full")

// ArenaHandle is the index type of arena nodes.
// The max value of the type is reserved as the free list terminator.
type ArenaHandle interface {
	~uint16 | ~uint32
}

const (
	arenaLinkLeft = iota
	arenaLinkRight
	arenaLinkParent
)

const (
	arenaSentinel = 0
	arenaFakeRoot = 1
	arenaReserved = 2
)

var _ RBKeyValBackend[uint16, int, int] = (*ArenaBackend[uint16, int, int])(nil)

// ArenaBackend stores nodes as a structure of arrays addressed by H.
// Index 0 is the sentinel and index 1 is the fake root.
// Released slots are threaded into a free list through their left link.
// The color of slot i is bit i of the color bitmap, set means red.
type ArenaBackend[H ArenaHandle, K infra.OrderedKey, V any] struct {
	links    [][3]H
	keys     []K
	vals     []V
	colors   bits.Bitmap
	cmp      infra.OrderedKeyComparator[K]
	logger   *zap.Logger
	capacity int
	count    int64
	freeHead H
}

type ArenaOpt[H ArenaHandle, K infra.OrderedKey, V any] func(*ArenaBackend[H, K, V])

func WithArenaDesc[H ArenaHandle, K infra.OrderedKey, V any]() ArenaOpt[H, K, V] {
	return func(b *ArenaBackend[H, K, V]) {
		b.cmp = infra.KeyComparator[K](true)
	}
}

func WithArenaComparator[H ArenaHandle, K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) ArenaOpt[H, K, V] {
	return func(b *ArenaBackend[H, K, V]) {
		if cmp != nil {
			b.cmp = cmp
		}
	}
}

func WithArenaLogger[H ArenaHandle, K infra.OrderedKey, V any](logger *zap.Logger) ArenaOpt[H, K, V] {
	return func(b *ArenaBackend[H, K, V]) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// MaxArenaCapacity is the number of real nodes an arena indexed by H holds
// at most.
func MaxArenaCapacity[H ArenaHandle]() int {
	return int(^H(0)) - arenaReserved
}

// NewArenaBackend creates an arena able to hold capacity real nodes.
// The capacity is truncated to MaxArenaCapacity[H]. Storage grows on
// demand up to the capacity.
func NewArenaBackend[H ArenaHandle, K infra.OrderedKey, V any](capacity int, opts ...ArenaOpt[H, K, V]) *ArenaBackend[H, K, V] {
	b := &ArenaBackend[H, K, V]{
		cmp:      infra.KeyComparator[K](false),
		logger:   zap.NewNop(),
		freeHead: ^H(0),
	}
	for _, o := range opts {
		o(b)
	}

	if capacity < 0 {
		capacity = 0
	}
	if maxCap := MaxArenaCapacity[H](); capacity > maxCap {
		b.logger.Warn("[rbtree] arena capacity truncated",
			zap.Int("capacity", capacity),
			zap.Int("max", maxCap),
		)
		capacity = maxCap
	}
	b.capacity = capacity

	slots := capacity + arenaReserved
	initCap := min(slots, 64)
	b.links = make([][3]H, arenaReserved, initCap)
	b.keys = make([]K, arenaReserved, initCap)
	b.vals = make([]V, arenaReserved, initCap)
	b.colors = bits.NewX32Bitmap(uint64(slots))
	return b
}

// NewArenaRBTree creates a tree on top of a fresh ArenaBackend.
func NewArenaRBTree[H ArenaHandle, K infra.OrderedKey, V any](
	capacity int,
	backendOpts []ArenaOpt[H, K, V],
	treeOpts ...RBTreeOpt[H, K, V],
) *RBTree[H, K, V] {
	return NewRBTree[H, K, V](NewArenaBackend[H, K, V](capacity, backendOpts...), treeOpts...)
}

func (b *ArenaBackend[H, K, V]) Len() int64 {
	return b.count
}

func (b *ArenaBackend[H, K, V]) Cap() int {
	return b.capacity
}

func (b *ArenaBackend[H, K, V]) Sentinel() H {
	return arenaSentinel
}

func (b *ArenaBackend[H, K, V]) FakeRoot() H {
	return arenaFakeRoot
}

func (b *ArenaBackend[H, K, V]) Child(node H, dir RBDirection) H {
	return b.links[node][dir]
}

func (b *ArenaBackend[H, K, V]) SetChild(node H, dir RBDirection, child H) {
	b.links[node][dir] = child
}

func (b *ArenaBackend[H, K, V]) Parent(node H) H {
	return b.links[node][arenaLinkParent]
}

func (b *ArenaBackend[H, K, V]) SetParent(node H, parent H) {
	b.links[node][arenaLinkParent] = parent
}

func (b *ArenaBackend[H, K, V]) Color(node H) RBColor {
	if b.colors.GetBit(uint64(node)) {
		return Red
	}
	return Black
}

func (b *ArenaBackend[H, K, V]) SetColor(node H, color RBColor) {
	if color == Red {
		b.colors.SetBit(uint64(node))
		return
	}
	b.colors.UnsetBit(uint64(node))
}

func (b *ArenaBackend[H, K, V]) Key(node H) K {
	return b.keys[node]
}

func (b *ArenaBackend[H, K, V]) Val(node H) V {
	return b.vals[node]
}

func (b *ArenaBackend[H, K, V]) SetVal(node H, val V) {
	b.vals[node] = val
}

func (b *ArenaBackend[H, K, V]) CompareInsert(key K, node H) int64 {
	return b.cmp(key, b.keys[node])
}

func (b *ArenaBackend[H, K, V]) CompareNodes(x, y H) int64 {
	return b.cmp(b.keys[x], b.keys[y])
}

// NewNode pops the free list first, then takes a fresh slot.
func (b *ArenaBackend[H, K, V]) NewNode(key K, val V) (H, error) {
	var h H
	if b.freeHead != ^H(0) {
		h = b.freeHead
		b.freeHead = b.links[h][arenaLinkLeft]
		b.logger.Debug("[rbtree] arena slot reused", zap.Uint64("slot", uint64(h)))
	} else if len(b.keys) < b.capacity+arenaReserved {
		h = H(len(b.keys))
		b.links = append(b.links, [3]H{})
		b.keys = append(b.keys, key)
		b.vals = append(b.vals, val)
	} else {
		b.logger.Warn("[rbtree] arena exhausted",
			zap.Int("capacity", b.capacity),
			zap.Int64("len", b.count),
		)
		return arenaSentinel, ErrArenaFull
	}

	b.links[h] = [3]H{}
	b.keys[h] = key
	b.vals[h] = val
	b.colors.UnsetBit(uint64(h))
	b.count++
	return h, nil
}

func (b *ArenaBackend[H, K, V]) DeleteNode(node H) {
	if node < arenaReserved || int(node) >= len(b.keys) {
		return
	}
	var (
		k K
		v V
	)
	b.keys[node], b.vals[node] = k, v
	b.links[node] = [3]H{b.freeHead, arenaSentinel, arenaSentinel}
	b.colors.UnsetBit(uint64(node))
	b.freeHead = node
	b.count--
}
