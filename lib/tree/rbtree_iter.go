package tree

type iterState uint8

const (
	iterNotStarted iterState = iota
	iterActive
	iterExhausted
)

// RBIterator walks a tree with parent links only, no stack is kept.
// An iterator drives one kind of walk at a time, call Reset before
// switching to another one. Mutating the tree invalidates it.
type RBIterator[N comparable, K any, V any] struct {
	tree  *RBTree[N, K, V]
	node  N
	state iterState
}

func (tree *RBTree[N, K, V]) Iterate() *RBIterator[N, K, V] {
	return &RBIterator[N, K, V]{
		tree:  tree,
		node:  tree.nill,
		state: iterNotStarted,
	}
}

func (it *RBIterator[N, K, V]) Reset() {
	it.node = it.tree.nill
	it.state = iterNotStarted
}

// Node returns the current position, the sentinel before the first
// step and after the last one.
func (it *RBIterator[N, K, V]) Node() N {
	return it.node
}

func (it *RBIterator[N, K, V]) Key() K {
	return it.tree.backend.Key(it.node)
}

func (it *RBIterator[N, K, V]) Val() V {
	return it.tree.backend.Val(it.node)
}

func (it *RBIterator[N, K, V]) yield(node N) (K, bool) {
	if node == it.tree.nill || node == it.tree.head {
		return it.exhaust()
	}
	it.node, it.state = node, iterActive
	return it.tree.backend.Key(node), true
}

func (it *RBIterator[N, K, V]) exhaust() (k K, ok bool) {
	it.node, it.state = it.tree.nill, iterExhausted
	return k, false
}

// Traverse starts at the root and then steps once to the dir child per
// call, the direction may change between calls. Together with
// DirectionOf it drives a search step by step:
//
//	for k, ok := it.Traverse(Left); ok; k, ok = it.Traverse(DirectionOf(cmp(key, k))) {
//		...
//	}
func (it *RBIterator[N, K, V]) Traverse(dir RBDirection) (K, bool) {
	switch it.state {
	case iterNotStarted:
		return it.yield(it.tree.Root())
	case iterActive:
		return it.yield(it.tree.backend.Child(it.node, dir))
	default:
	}
	return it.exhaust()
}

// Preorder visits a node, then its subtree opposite to dir, then its
// dir subtree. Preorder(Right) is the classic left first preorder.
func (it *RBIterator[N, K, V]) Preorder(dir RBDirection) (K, bool) {
	tree := it.tree
	b, near := tree.backend, dir.Opposite()
	switch it.state {
	case iterNotStarted:
		return it.yield(tree.Root())
	case iterActive:
	default:
		return it.exhaust()
	}

	if c := b.Child(it.node, near); c != tree.nill {
		return it.yield(c)
	}
	if c := b.Child(it.node, dir); c != tree.nill {
		return it.yield(c)
	}
	// Backtrack to the first ancestor entered from its near side that
	// still has an unvisited dir subtree.
	for n := it.node; ; {
		p := b.Parent(n)
		if p == tree.head {
			return it.exhaust()
		}
		if c := b.Child(p, dir); tree.parentSide(n) == near && c != tree.nill {
			return it.yield(c)
		}
		n = p
	}
}

// SortOrder visits the nodes in key order sweeping towards dir,
// Right is ascending and Left is descending.
func (it *RBIterator[N, K, V]) SortOrder(dir RBDirection) (K, bool) {
	tree := it.tree
	switch it.state {
	case iterNotStarted:
		root := tree.Root()
		if root == tree.nill {
			return it.exhaust()
		}
		return it.yield(tree.extreme(root, dir.Opposite()))
	case iterActive:
		next, ok := tree.Neighbor(it.node, dir)
		if !ok {
			return it.exhaust()
		}
		return it.yield(next)
	default:
	}
	return it.exhaust()
}

// Postorder visits the subtree opposite to dir, then the dir subtree,
// then the node itself.
func (it *RBIterator[N, K, V]) Postorder(dir RBDirection) (K, bool) {
	tree := it.tree
	b := tree.backend
	switch it.state {
	case iterNotStarted:
		root := tree.Root()
		if root == tree.nill {
			return it.exhaust()
		}
		return it.yield(it.leafDescend(root, dir))
	case iterActive:
	default:
		return it.exhaust()
	}

	p := b.Parent(it.node)
	if p == tree.head {
		return it.exhaust()
	}
	if c := b.Child(p, dir); c != it.node && c != tree.nill {
		return it.yield(it.leafDescend(c, dir))
	}
	return it.yield(p)
}

// leafDescend zig-zags down to the first leaf in postorder,
// preferring the child opposite to dir.
func (it *RBIterator[N, K, V]) leafDescend(node N, dir RBDirection) N {
	b, nill, near := it.tree.backend, it.tree.nill, dir.Opposite()
	for {
		if c := b.Child(node, near); c != nill {
			node = c
		} else if c = b.Child(node, dir); c != nill {
			node = c
		} else {
			return node
		}
	}
}

// Foreach visits the nodes in ascending order until action returns false.
func (tree *RBTree[N, K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	b := tree.backend
	it := tree.Iterate()
	idx := int64(0)
	for key, ok := it.SortOrder(Right); ok; key, ok = it.SortOrder(Right) {
		node := it.Node()
		if !action(idx, b.Color(node), key, b.Val(node)) {
			return
		}
		idx++
	}
}
