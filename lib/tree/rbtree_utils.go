package tree

import (
	"fmt"

	"go.uber.org/multierr"
)

// Find descends from the root with the insert comparator.
func (tree *RBTree[N, K, V]) Find(key K) (N, bool) {
	return search(tree.backend, tree.nill, tree.Root(), key)
}

func search[N comparable, K any, V any](b RBBackend[N, K, V], nill, root N, key K) (N, bool) {
	for x := root; x != nill; {
		res := b.CompareInsert(key, x)
		if res == 0 {
			return x, true
		}
		x = b.Child(x, DirectionOf(res))
	}
	return nill, false
}

func (tree *RBTree[N, K, V]) Min() (N, bool) {
	root := tree.Root()
	if root == tree.nill {
		return tree.nill, false
	}
	return tree.extreme(root, Left), true
}

func (tree *RBTree[N, K, V]) Max() (N, bool) {
	root := tree.Root()
	if root == tree.nill {
		return tree.nill, false
	}
	return tree.extreme(root, Right), true
}

// Neighbor returns the next node of node in sort order towards dir,
// the successor for Right and the predecessor for Left.
func (tree *RBTree[N, K, V]) Neighbor(node N, dir RBDirection) (N, bool) {
	b := tree.backend
	if node == tree.nill || node == tree.head {
		return tree.nill, false
	}
	if c := b.Child(node, dir); c != tree.nill {
		return tree.extreme(c, dir.Opposite()), true
	}
	// Backtrack to the first ancestor reached from its opposite side.
	for p := b.Parent(node); p != tree.head; node, p = p, b.Parent(p) {
		if b.Child(p, dir) != node {
			return p, true
		}
	}
	return tree.nill, false
}

func (tree *RBTree[N, K, V]) extreme(node N, dir RBDirection) N {
	return extreme(tree.backend, tree.nill, node, dir)
}

func extreme[N comparable, K any, V any](b RBBackend[N, K, V], nill, node N, dir RBDirection) N {
	for c := b.Child(node, dir); c != nill; c = b.Child(node, dir) {
		node = c
	}
	return node
}

// Clear destroys one node per call and returns true once the tree is empty.
// Drain with:
//
//	for !tree.Clear() {
//	}
//
// The left links of the root are rotated away so the tree degenerates
// into a right leaning list whose head is peeled off. Every node is
// rotated at most once, a call costs O(1) amortized.
// The remaining nodes keep their binary search order and the new root is
// painted black, but black heights are given up by the first call. Only
// Clear and Len give defined results until it returns true.
func (tree *RBTree[N, K, V]) Clear() bool {
	return tree.ClearFunc(nil)
}

// ClearFunc is Clear reporting the key and value of the destroyed node
// to fn before the backend frees it.
func (tree *RBTree[N, K, V]) ClearFunc(fn func(key K, val V)) bool {
	b, nill := tree.backend, tree.nill
	node := tree.Root()
	if node == nill {
		return true
	}

	for b.Child(node, Left) != nill {
		tree.rotate(node, Right)
		node = tree.Root()
	}

	r := b.Child(node, Right)
	b.SetChild(tree.head, Left, r)
	if r != nill {
		b.SetParent(r, tree.head)
		b.SetColor(r, Black)
	}
	b.SetChild(node, Right, nill)
	b.SetParent(node, nill)
	if fn != nil {
		fn(b.Key(node), b.Val(node))
	}
	b.DeleteNode(node)
	return false
}

// Validate walks the whole tree and reports every violated property.
// It returns nil only if all of these hold:
//  1. binary search order (ErrRBTreeBinarySearchViolation)
//  2. no red node has a red child (ErrRBTreeRedViolation)
//  3. every path holds the same number of black nodes (ErrRBTreeBlackViolation)
//  4. the root is black (ErrRBTreeRootViolation)
//  5. sentinel, fake root and parent links are consistent (ErrRBTreeLinkViolation)
func (tree *RBTree[N, K, V]) Validate() (err error) {
	b, nill, head := tree.backend, tree.nill, tree.head
	if b.Color(nill) != Black || b.Child(nill, Left) != nill ||
		b.Child(nill, Right) != nill || b.Parent(nill) != nill {
		err = multierr.Append(err, fmt.Errorf("%w: corrupted sentinel", ErrRBTreeLinkViolation))
	}
	if b.Color(head) != Black || b.Child(head, Right) != nill || b.Parent(head) != nill {
		err = multierr.Append(err, fmt.Errorf("%w: corrupted fake root", ErrRBTreeLinkViolation))
	}

	root := tree.Root()
	if root == nill {
		return err
	}
	if b.Color(root) != Black {
		err = multierr.Append(err, fmt.Errorf("%w: red root %v", ErrRBTreeRootViolation, b.Key(root)))
	}
	if b.Parent(root) != head {
		err = multierr.Append(err, fmt.Errorf("%w: root %v detached from fake root", ErrRBTreeLinkViolation, b.Key(root)))
	}
	_, vErr := validate(b, nill, root, nill, nill, true)
	return multierr.Append(err, vErr)
}

// validate returns the black height of the subtree rooted at node,
// 0 once a black violation was found inside it.
// lo and hi are the nearest bounding ancestors, the sentinel means unbounded.
func validate[N comparable, K any, V any](
	b RBBackend[N, K, V],
	nill, node, lo, hi N,
	checkLinks bool,
) (int, error) {
	if node == nill {
		return 1, nil
	}

	var err error
	l, r := b.Child(node, Left), b.Child(node, Right)
	if b.Color(node) == Red && (b.Color(l) == Red || b.Color(r) == Red) {
		err = multierr.Append(err, fmt.Errorf("%w: red node %v has a red child", ErrRBTreeRedViolation, b.Key(node)))
	}
	if (lo != nill && b.CompareNodes(lo, node) >= 0) ||
		(hi != nill && b.CompareNodes(node, hi) >= 0) {
		err = multierr.Append(err, fmt.Errorf("%w: key %v out of order", ErrRBTreeBinarySearchViolation, b.Key(node)))
	}
	if checkLinks {
		for _, c := range [2]N{l, r} {
			if c != nill && b.Parent(c) != node {
				err = multierr.Append(err, fmt.Errorf("%w: child %v does not point back to %v",
					ErrRBTreeLinkViolation, b.Key(c), b.Key(node)))
			}
		}
	}

	lh, lErr := validate(b, nill, l, lo, node, checkLinks)
	rh, rErr := validate(b, nill, r, node, hi, checkLinks)
	err = multierr.Combine(err, lErr, rErr)
	if lh == 0 || rh == 0 {
		// Already reported below.
		return 0, err
	}
	if lh != rh {
		err = multierr.Append(err, fmt.Errorf("%w: node %v black height left %d right %d",
			ErrRBTreeBlackViolation, b.Key(node), lh, rh))
		return 0, err
	}
	if b.Color(node) == Black {
		lh++
	}
	return lh, err
}
