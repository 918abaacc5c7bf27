package tree

import (
	"fmt"

	"go.uber.org/multierr"
)

// TopDownRBTree rebalances on the way down, a single pass per
// insert or remove. It never reads or writes the parent slots of the
// backend, so it runs on backends that only keep children links.
// Without parent links there are no stackless iterators, Foreach keeps
// an explicit stack instead.
type TopDownRBTree[N comparable, K any, V any] struct {
	backend RBBackend[N, K, V]
	nill    N
	head    N
}

func NewTopDownRBTree[N comparable, K any, V any](backend RBBackend[N, K, V]) *TopDownRBTree[N, K, V] {
	tree := &TopDownRBTree[N, K, V]{
		backend: backend,
		nill:    backend.Sentinel(),
		head:    backend.FakeRoot(),
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

func (tree *TopDownRBTree[N, K, V]) Len() int64 {
	return tree.backend.Len()
}

func (tree *TopDownRBTree[N, K, V]) Root() N {
	return tree.backend.Child(tree.head, Left)
}

func (tree *TopDownRBTree[N, K, V]) Find(key K) (N, bool) {
	return search(tree.backend, tree.nill, tree.Root(), key)
}

func (tree *TopDownRBTree[N, K, V]) isRed(node N) bool {
	return tree.backend.Color(node) == Red
}

// single rotates root towards dir and returns the new subtree root.
// The old root is painted red and the new one black.
func (tree *TopDownRBTree[N, K, V]) single(root N, dir RBDirection) N {
	b, opp := tree.backend, dir.Opposite()
	save := b.Child(root, opp)
	b.SetChild(root, opp, b.Child(save, dir))
	b.SetChild(save, dir, root)
	b.SetColor(root, Red)
	b.SetColor(save, Black)
	return save
}

func (tree *TopDownRBTree[N, K, V]) double(root N, dir RBDirection) N {
	b, opp := tree.backend, dir.Opposite()
	b.SetChild(root, opp, tree.single(b.Child(root, opp), opp))
	return tree.single(root, dir)
}

// Insert splits 4-nodes on the way down by color flips and repairs red
// violations with single or double rotations at the grandparent.
func (tree *TopDownRBTree[N, K, V]) Insert(key K, val V) error {
	if _, ok := tree.Find(key); ok {
		return ErrRBTreeKeyExists
	}
	n, err := tree.backend.NewNode(key, val)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRBTreeNodeExhausted, err)
	}
	if n == tree.nill {
		return ErrRBTreeNodeExhausted
	}

	b, nill, head := tree.backend, tree.nill, tree.head
	b.SetChild(n, Left, nill)
	b.SetChild(n, Right, nill)
	b.SetParent(n, nill)
	b.SetColor(n, Red)

	if tree.Root() == nill {
		b.SetChild(head, Left, n)
		b.SetColor(n, Black)
		return nil
	}

	// t is the great grandparent, g the grandparent, p the parent.
	t, g, p, q := head, nill, nill, tree.Root()
	dir, last := Left, Left
	for {
		if q == nill {
			q = n
			b.SetChild(p, dir, q)
		} else if tree.isRed(b.Child(q, Left)) && tree.isRed(b.Child(q, Right)) {
			// color flip
			b.SetColor(q, Red)
			b.SetColor(b.Child(q, Left), Black)
			b.SetColor(b.Child(q, Right), Black)
		}

		if tree.isRed(q) && tree.isRed(p) {
			tDir := Left
			if b.Child(t, Right) == g {
				tDir = Right
			}
			if q == b.Child(p, last) {
				b.SetChild(t, tDir, tree.single(g, last.Opposite()))
			} else {
				b.SetChild(t, tDir, tree.double(g, last.Opposite()))
			}
		}

		if q == n {
			break
		}

		last = dir
		dir = DirectionOf(b.CompareInsert(key, q))
		if g != nill {
			t = g
		}
		g, p, q = p, q, b.Child(q, dir)
	}

	b.SetColor(tree.Root(), Black)
	return nil
}

// Remove pushes a red node down the search path so the node physically
// unlinked is never black. The in-order predecessor, or the node itself
// when it has no left subtree, is unlinked and relinked into the place
// of the removed node.
func (tree *TopDownRBTree[N, K, V]) Remove(key K) (N, error) {
	if _, ok := tree.Find(key); !ok {
		return tree.nill, ErrRBTreeKeyNotFound
	}

	b, nill, head := tree.backend, tree.nill, tree.head
	g, p, q, f := nill, nill, head, nill
	dir := Left
	for b.Child(q, dir) != nill {
		last := dir
		g, p, q = p, q, b.Child(q, dir)
		res := b.CompareInsert(key, q)
		if res == 0 {
			f = q
			dir = Left
		} else {
			dir = DirectionOf(res)
		}

		if tree.isRed(q) || tree.isRed(b.Child(q, dir)) {
			continue
		}
		if opp := dir.Opposite(); tree.isRed(b.Child(q, opp)) {
			np := tree.single(q, dir)
			b.SetChild(p, last, np)
			p = np
			continue
		}

		s := b.Child(p, last.Opposite())
		if s == nill {
			continue
		}
		if !tree.isRed(b.Child(s, last.Opposite())) && !tree.isRed(b.Child(s, last)) {
			// color flip
			b.SetColor(p, Black)
			b.SetColor(s, Red)
			b.SetColor(q, Red)
			continue
		}

		gDir := Left
		if b.Child(g, Right) == p {
			gDir = Right
		}
		var np N
		if tree.isRed(b.Child(s, last)) {
			np = tree.double(p, last)
		} else {
			np = tree.single(p, last)
		}
		b.SetChild(g, gDir, np)
		b.SetColor(q, Red)
		b.SetColor(np, Red)
		b.SetColor(b.Child(np, Left), Black)
		b.SetColor(b.Child(np, Right), Black)
	}

	// q has at most one real child, splice it out.
	qSide := Left
	if b.Child(p, Right) == q {
		qSide = Right
	}
	qChild := b.Child(q, Left)
	if qChild == nill {
		qChild = b.Child(q, Right)
	}
	b.SetChild(p, qSide, qChild)

	if f != q {
		// Rotations may have moved f, find its parent again.
		fp, fSide := head, Left
		for x := b.Child(head, Left); x != f; x = b.Child(x, fSide) {
			fp, fSide = x, DirectionOf(b.CompareInsert(key, x))
		}
		b.SetChild(q, Left, b.Child(f, Left))
		b.SetChild(q, Right, b.Child(f, Right))
		b.SetColor(q, b.Color(f))
		b.SetChild(fp, fSide, q)
	}

	if root := tree.Root(); root != nill {
		b.SetColor(root, Black)
	}
	b.SetChild(f, Left, nill)
	b.SetChild(f, Right, nill)
	return f, nil
}

func (tree *TopDownRBTree[N, K, V]) Delete(key K) error {
	z, err := tree.Remove(key)
	if err != nil {
		return err
	}
	tree.Release(z)
	return nil
}

func (tree *TopDownRBTree[N, K, V]) Release(node N) {
	if node == tree.nill || node == tree.head {
		return
	}
	tree.backend.DeleteNode(node)
}

// Clear destroys one node per call and returns true once the tree is empty.
func (tree *TopDownRBTree[N, K, V]) Clear() bool {
	b, nill, head := tree.backend, tree.nill, tree.head
	node := tree.Root()
	if node == nill {
		return true
	}
	for l := b.Child(node, Left); l != nill; l = b.Child(node, Left) {
		b.SetChild(node, Left, b.Child(l, Right))
		b.SetChild(l, Right, node)
		node = l
	}
	b.SetChild(head, Left, b.Child(node, Right))
	b.SetChild(node, Right, nill)
	b.DeleteNode(node)
	return false
}

// Foreach visits the nodes in ascending order until action returns false.
func (tree *TopDownRBTree[N, K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	b, nill := tree.backend, tree.nill
	size := b.Len()
	aux := tree.Root()
	if size <= 0 || aux == nill {
		return
	}

	stack := make([]N, 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nill; aux = b.Child(aux, Left) {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		aux = stack[size-1]
		if !action(idx, b.Color(aux), b.Key(aux), b.Val(aux)) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = b.Child(aux, Right); aux != nill; aux = b.Child(aux, Left) {
			stack = append(stack, aux)
		}
	}
}

// Validate checks the red-black properties, parent slots are ignored.
func (tree *TopDownRBTree[N, K, V]) Validate() (err error) {
	b, nill, head := tree.backend, tree.nill, tree.head
	if b.Color(nill) != Black || b.Child(nill, Left) != nill || b.Child(nill, Right) != nill {
		err = multierr.Append(err, fmt.Errorf("%w: corrupted sentinel", ErrRBTreeLinkViolation))
	}
	if b.Color(head) != Black || b.Child(head, Right) != nill {
		err = multierr.Append(err, fmt.Errorf("%w: corrupted fake root", ErrRBTreeLinkViolation))
	}
	root := tree.Root()
	if root == nill {
		return err
	}
	if b.Color(root) != Black {
		err = multierr.Append(err, fmt.Errorf("%w: red root %v", ErrRBTreeRootViolation, b.Key(root)))
	}
	_, vErr := validate(b, nill, root, nill, nill, false)
	return multierr.Append(err, vErr)
}
