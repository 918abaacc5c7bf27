package tree

import (
	"fmt"
)

// RBTree is a parent-pointer red-black tree running on top of an RBBackend.
// Not thread safe, callers serialize writes and reads themselves.
type RBTree[N comparable, K any, V any] struct {
	backend        RBBackend[N, K, V]
	nill           N // sentinel
	head           N // fake root, head.left is the real root
	isRmBorrowPred bool
}

type RBTreeOpt[N comparable, K any, V any] func(*RBTree[N, K, V])

// WithRBTreeRemoveBorrowPred splices the in-order predecessor instead
// of the successor when a node with two children is removed.
func WithRBTreeRemoveBorrowPred[N comparable, K any, V any]() RBTreeOpt[N, K, V] {
	return func(tree *RBTree[N, K, V]) {
		tree.isRmBorrowPred = true
	}
}

// NewRBTree resets the sentinel and the fake root of the backend and
// binds the engine to it. The backend is expected to be empty.
func NewRBTree[N comparable, K any, V any](backend RBBackend[N, K, V], opts ...RBTreeOpt[N, K, V]) *RBTree[N, K, V] {
	tree := &RBTree[N, K, V]{
		backend: backend,
		nill:    backend.Sentinel(),
		head:    backend.FakeRoot(),
	}
	for _, o := range opts {
		o(tree)
	}

	b, nill, head := tree.backend, tree.nill, tree.head
	b.SetChild(nill, Left, nill)
	b.SetChild(nill, Right, nill)
	b.SetParent(nill, nill)
	b.SetColor(nill, Black)
	b.SetChild(head, Left, nill)
	b.SetChild(head, Right, nill)
	b.SetParent(head, nill)
	b.SetColor(head, Black)
	return tree
}

func (tree *RBTree[N, K, V]) Len() int64 {
	return tree.backend.Len()
}

func (tree *RBTree[N, K, V]) Backend() RBBackend[N, K, V] {
	return tree.backend
}

// IsNil reports whether node is the sentinel.
func (tree *RBTree[N, K, V]) IsNil(node N) bool {
	return node == tree.nill
}

func (tree *RBTree[N, K, V]) Root() N {
	return tree.backend.Child(tree.head, Left)
}

func (tree *RBTree[N, K, V]) Key(node N) K {
	return tree.backend.Key(node)
}

func (tree *RBTree[N, K, V]) Val(node N) V {
	return tree.backend.Val(node)
}

// parentSide returns the slot of node's parent that holds node.
// The root hangs on the left slot of the fake root.
func (tree *RBTree[N, K, V]) parentSide(node N) RBDirection {
	if tree.backend.Child(tree.backend.Parent(node), Left) == node {
		return Left
	}
	return Right
}

/*
rotate(X, Left)

		 |                         |
		 X                         S
		/ \     rotate(X, Left)   / \
	   L   S    ==============>  X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

rotate(X, Right) is the mirror. The parent of the root is the fake root,
so the root needs no special handling.
*/
func (tree *RBTree[N, K, V]) rotate(x N, dir RBDirection) {
	b, opp := tree.backend, dir.Opposite()
	y := b.Child(x, opp)
	if y == tree.nill {
		// impossible run to here
		panic( /* debug assertion */ fmt.Sprintf("[rbtree] rotate %s without %s child", dir, opp))
	}

	side := tree.parentSide(x)
	inner := b.Child(y, dir)
	b.SetChild(x, opp, inner)
	if inner != tree.nill {
		b.SetParent(inner, x)
	}

	p := b.Parent(x)
	b.SetParent(y, p)
	b.SetChild(p, side, y)
	b.SetChild(y, dir, x)
	b.SetParent(x, y)
}

// Insert adds a new key. An existing key is left untouched and
// ErrRBTreeKeyExists is returned.
// If the backend fails to create the node the tree is unchanged and the
// backend error is returned wrapped with ErrRBTreeNodeExhausted.
func (tree *RBTree[N, K, V]) Insert(key K, val V) error {
	b := tree.backend
	p, dir := tree.head, Left
	for x := tree.Root(); x != tree.nill; {
		res := b.CompareInsert(key, x)
		if /* equal */ res == 0 {
			return ErrRBTreeKeyExists
		}
		p, dir = x, DirectionOf(res)
		x = b.Child(x, dir)
	}

	z, err := b.NewNode(key, val)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRBTreeNodeExhausted, err)
	}
	if z == tree.nill {
		return ErrRBTreeNodeExhausted
	}

	b.SetChild(z, Left, tree.nill)
	b.SetChild(z, Right, tree.nill)
	b.SetParent(z, p)
	b.SetColor(z, Red)
	b.SetChild(p, dir, z)

	tree.insertRebalance(z)
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: The parent P is black (the fake root is black as well), done.

im2: Both of the parent P and the uncle U are red, grandpa G is black.
Repaint and recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black.
X is at the inner side of P. Rotate P to the outer side then enter im4.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: X is at the outer side of P. Repaint and rotate G, done.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *RBTree[N, K, V]) insertRebalance(x N) {
	b := tree.backend
	for {
		p := b.Parent(x)
		if /* im1 */ b.Color(p) == Black {
			break
		}

		g := b.Parent(p)
		pDir := tree.parentSide(p)
		u := b.Child(g, pDir.Opposite())
		if /* im2 */ b.Color(u) == Red {
			b.SetColor(p, Black)
			b.SetColor(u, Black)
			b.SetColor(g, Red)
			x = g
			continue
		}

		if /* im3 */ tree.parentSide(x) != pDir {
			x = p
			tree.rotate(x, pDir)
			p = b.Parent(x)
		}

		/* im4 */
		b.SetColor(p, Black)
		b.SetColor(g, Red)
		tree.rotate(g, pDir.Opposite())
		break
	}
	b.SetColor(tree.Root(), Black)
}
