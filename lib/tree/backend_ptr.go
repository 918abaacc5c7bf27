package tree

import (
	"github.com/benz9527/xrbtree/lib/infra"
)

type RBNode[K infra.OrderedKey, V any] struct {
	parent *RBNode[K, V]
	left   *RBNode[K, V]
	right  *RBNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *RBNode[K, V]) Key() K {
	return node.key
}

func (node *RBNode[K, V]) Val() V {
	return node.val
}

func (node *RBNode[K, V]) Color() RBColor {
	return node.color
}

var _ RBKeyValBackend[*RBNode[int, int], int, int] = (*PtrBackend[int, int])(nil)

// PtrBackend keeps every node in its own heap allocation.
type PtrBackend[K infra.OrderedKey, V any] struct {
	nill  *RBNode[K, V]
	head  *RBNode[K, V]
	cmp   infra.OrderedKeyComparator[K]
	count int64
}

type PtrBackendOpt[K infra.OrderedKey, V any] func(*PtrBackend[K, V])

func WithPtrBackendDesc[K infra.OrderedKey, V any]() PtrBackendOpt[K, V] {
	return func(b *PtrBackend[K, V]) {
		b.cmp = infra.KeyComparator[K](true)
	}
}

func WithPtrBackendComparator[K infra.OrderedKey, V any](cmp infra.OrderedKeyComparator[K]) PtrBackendOpt[K, V] {
	return func(b *PtrBackend[K, V]) {
		if cmp != nil {
			b.cmp = cmp
		}
	}
}

func NewPtrBackend[K infra.OrderedKey, V any](opts ...PtrBackendOpt[K, V]) *PtrBackend[K, V] {
	b := &PtrBackend[K, V]{
		nill: &RBNode[K, V]{},
		head: &RBNode[K, V]{},
		cmp:  infra.KeyComparator[K](false),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewPtrRBTree creates a tree on top of a fresh PtrBackend.
func NewPtrRBTree[K infra.OrderedKey, V any](
	backendOpts []PtrBackendOpt[K, V],
	treeOpts ...RBTreeOpt[*RBNode[K, V], K, V],
) *RBTree[*RBNode[K, V], K, V] {
	return NewRBTree[*RBNode[K, V], K, V](NewPtrBackend[K, V](backendOpts...), treeOpts...)
}

func (b *PtrBackend[K, V]) Len() int64 {
	return b.count
}

func (b *PtrBackend[K, V]) Sentinel() *RBNode[K, V] {
	return b.nill
}

func (b *PtrBackend[K, V]) FakeRoot() *RBNode[K, V] {
	return b.head
}

func (b *PtrBackend[K, V]) Child(node *RBNode[K, V], dir RBDirection) *RBNode[K, V] {
	if dir == Left {
		return node.left
	}
	return node.right
}

func (b *PtrBackend[K, V]) SetChild(node *RBNode[K, V], dir RBDirection, child *RBNode[K, V]) {
	if dir == Left {
		node.left = child
		return
	}
	node.right = child
}

func (b *PtrBackend[K, V]) Parent(node *RBNode[K, V]) *RBNode[K, V] {
	return node.parent
}

func (b *PtrBackend[K, V]) SetParent(node *RBNode[K, V], parent *RBNode[K, V]) {
	node.parent = parent
}

func (b *PtrBackend[K, V]) Color(node *RBNode[K, V]) RBColor {
	return node.color
}

func (b *PtrBackend[K, V]) SetColor(node *RBNode[K, V], color RBColor) {
	node.color = color
}

func (b *PtrBackend[K, V]) Key(node *RBNode[K, V]) K {
	return node.key
}

func (b *PtrBackend[K, V]) Val(node *RBNode[K, V]) V {
	return node.val
}

func (b *PtrBackend[K, V]) SetVal(node *RBNode[K, V], val V) {
	node.val = val
}

func (b *PtrBackend[K, V]) CompareInsert(key K, node *RBNode[K, V]) int64 {
	return b.cmp(key, node.key)
}

func (b *PtrBackend[K, V]) CompareNodes(x, y *RBNode[K, V]) int64 {
	return b.cmp(x.key, y.key)
}

func (b *PtrBackend[K, V]) NewNode(key K, val V) (*RBNode[K, V], error) {
	b.count++
	return &RBNode[K, V]{
		key: key,
		val: val,
	}, nil
}

func (b *PtrBackend[K, V]) DeleteNode(node *RBNode[K, V]) {
	if node == nil || node == b.nill || node == b.head {
		return
	}
	b.count--
	node.parent, node.left, node.right = nil, nil, nil
}
