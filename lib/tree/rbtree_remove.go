package tree

// Remove unlinks the node holding key and returns it still allocated.
// The caller reads whatever it needs from the node and then hands it
// back to the backend through Release. Len keeps counting the node
// until it is released.
func (tree *RBTree[N, K, V]) Remove(key K) (N, error) {
	z, ok := tree.Find(key)
	if !ok {
		return tree.nill, ErrRBTreeKeyNotFound
	}
	return tree.removeNode(z), nil
}

// Delete removes key and destroys its node.
func (tree *RBTree[N, K, V]) Delete(key K) error {
	z, err := tree.Remove(key)
	if err != nil {
		return err
	}
	tree.Release(z)
	return nil
}

func (tree *RBTree[N, K, V]) RemoveMin() (N, error) {
	return tree.removeExtreme(Left)
}

func (tree *RBTree[N, K, V]) RemoveMax() (N, error) {
	return tree.removeExtreme(Right)
}

func (tree *RBTree[N, K, V]) removeExtreme(dir RBDirection) (N, error) {
	root := tree.Root()
	if root == tree.nill {
		return tree.nill, ErrRBTreeEmpty
	}
	return tree.removeNode(tree.extreme(root, dir)), nil
}

// Release destroys a node previously returned by Remove, RemoveMin
// or RemoveMax.
func (tree *RBTree[N, K, V]) Release(node N) {
	if node == tree.nill || node == tree.head {
		return
	}
	tree.backend.DeleteNode(node)
}

/*
r1: Z has at most one real child X. X (maybe the sentinel) takes the
place of Z.

r2: Z has two real children. Its successor (or predecessor) Y has at most
one real child. Y is unlinked as r1, then relinked into the position of Z
and takes the color of Z. Keys and values never move between nodes.

Borrow succ:

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   relink(Z, Y)  L  ..
		|   ===========>      |
		P                     P
	   / \                   / \
	  Y  ..                 X  ..
	   \
	    X

If the unlinked position was black, X is short of one black node on its
path and enters removeRebalance.
*/
func (tree *RBTree[N, K, V]) removeNode(z N) N {
	b, nill := tree.backend, tree.nill

	y := z
	if /* r2 */ b.Child(z, Left) != nill && b.Child(z, Right) != nill {
		if tree.isRmBorrowPred {
			y = tree.extreme(b.Child(z, Left), Right)
		} else {
			y = tree.extreme(b.Child(z, Right), Left)
		}
	}

	x := b.Child(y, Left)
	if x == nill {
		x = b.Child(y, Right)
	}
	xp := b.Parent(y)
	if x != nill {
		b.SetParent(x, xp)
	}
	b.SetChild(xp, tree.parentSide(y), x)

	yColor := b.Color(y)
	if y != z {
		b.SetColor(y, b.Color(z))
		for _, dir := range [2]RBDirection{Left, Right} {
			c := b.Child(z, dir)
			b.SetChild(y, dir, c)
			if c != nill {
				b.SetParent(c, y)
			}
		}
		zp := b.Parent(z)
		b.SetChild(zp, tree.parentSide(z), y)
		b.SetParent(y, zp)
		if xp == z {
			xp = y
		}
	}

	if yColor == Black {
		tree.removeRebalance(x, xp)
	}

	b.SetChild(z, Left, nill)
	b.SetChild(z, Right, nill)
	b.SetParent(z, nill)
	return z
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the child of the sibling S at the same side as X.
Sd is the child of the sibling S at the opposite side.

rm1: The sibling S is red. Rotate P towards X and repaint, then X has
a black sibling.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  =====>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are black. Repaint S into red and continue with P.
A red P ends the loop and is painted black.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, Sc is red and Sd is black. Rotate S away from X and
repaint, then enter rm4.

	  {P}                   {P}
	  / \    r-rotate(S)    / \
	[X] [S]  ==========>  [X] [Sc]
	    / \                     \
	  <Sc> [Sd]                 <S>
	                              \
	                              [Sd]

rm4: S is black and Sd is red. Rotate P towards X, S takes the color
of P, P and Sd are painted black, done.

	  {P}                   {S}
	  / \    l-rotate(P)    / \
	[X] [S]  ==========>  [P] [Sd]
	    / \               / \
	 [Sc] <Sd>          [X] [Sc]
*/
func (tree *RBTree[N, K, V]) removeRebalance(x, xp N) {
	b := tree.backend
	for x != tree.Root() && b.Color(x) == Black {
		// x may be the sentinel, resolve the side from its parent.
		dir := Right
		if b.Child(xp, Left) == x {
			dir = Left
		}
		opp := dir.Opposite()

		s := b.Child(xp, opp)
		if /* rm1 */ b.Color(s) == Red {
			b.SetColor(s, Black)
			b.SetColor(xp, Red)
			tree.rotate(xp, dir)
			s = b.Child(xp, opp)
		}

		if /* rm2 */ b.Color(b.Child(s, Left)) == Black && b.Color(b.Child(s, Right)) == Black {
			b.SetColor(s, Red)
			x = xp
			xp = b.Parent(x)
			continue
		}

		if /* rm3 */ b.Color(b.Child(s, opp)) == Black {
			b.SetColor(b.Child(s, dir), Black)
			b.SetColor(s, Red)
			tree.rotate(s, opp)
			s = b.Child(xp, opp)
		}

		/* rm4 */
		b.SetColor(s, b.Color(xp))
		b.SetColor(xp, Black)
		b.SetColor(b.Child(s, opp), Black)
		tree.rotate(xp, dir)
		x = tree.Root()
		break
	}
	b.SetColor(x, Black)
}
