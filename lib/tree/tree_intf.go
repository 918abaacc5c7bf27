package tree

import "errors"

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection uint8

const (
	Left RBDirection = iota
	Right
)

func (d RBDirection) Opposite() RBDirection {
	return d ^ 1
}

// DirectionOf maps a three-way comparison result to the
// child slot a search has to follow.
// Zero falls to the right, callers check equality first.
func DirectionOf(cmp int64) RBDirection {
	if cmp < 0 {
		return Left
	}
	return Right
}

var (
	ErrRBTreeKeyExists     = errors.New("[rbtree] key exists")
	ErrRBTreeKeyNotFound   = errors.New("[rbtree] key not found")
	ErrRBTreeEmpty         = errors.New("[rbtree] empty element to remove")
	ErrRBTreeNodeExhausted = errors.New("[rbtree] backend unable to allocate node")

	ErrRBTreeRedViolation          = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation        = errors.New("[rbtree] black violation")
	ErrRBTreeBinarySearchViolation = errors.New("[rbtree] binary search tree violation")
	ErrRBTreeRootViolation         = errors.New("[rbtree] root violation")
	ErrRBTreeLinkViolation         = errors.New("[rbtree] link violation")
)

// RBBackend is the storage contract the tree algorithms run on.
// N is an opaque node handle, a pointer or an index into arrays.
// The engine never allocates, frees or lays out nodes by itself.
//
// Two special nodes must exist before the engine touches the backend:
//   - Sentinel, a black node whose children and parent are itself.
//     It stands in for every empty child.
//   - FakeRoot, a black node whose left child is the real root.
//     Its right child and parent are the sentinel.
type RBBackend[N comparable, K any, V any] interface {
	Len() int64
	Sentinel() N
	FakeRoot() N
	Child(node N, dir RBDirection) N
	SetChild(node N, dir RBDirection, child N)
	Parent(node N) N
	SetParent(node N, parent N)
	Color(node N) RBColor
	SetColor(node N, color RBColor)
	Key(node N) K
	Val(node N) V
	// CompareInsert compares key with the key stored in node.
	CompareInsert(key K, node N) int64
	// CompareNodes compares the keys of a and b.
	CompareNodes(a, b N) int64
	// NewNode returns an error when the storage is exhausted.
	NewNode(key K, val V) (N, error)
	DeleteNode(node N)
}

// RBKeyValBackend is implemented by backends able to replace
// the value of a live node in place.
type RBKeyValBackend[N comparable, K any, V any] interface {
	RBBackend[N, K, V]
	SetVal(node N, val V)
}
