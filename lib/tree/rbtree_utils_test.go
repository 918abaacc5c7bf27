package tree

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestRbtree_ClearFunc(t *testing.T) {
	tree := NewArenaRBTree[uint32, uint64, uint64](10000, nil)
	keys := randomUniqueKeys(10000)
	for _, key := range keys {
		require.NoError(t, tree.Insert(key, key+1))
	}

	cleared := make([]uint64, 0, len(keys))
	steps := 0
	for !tree.ClearFunc(func(key uint64, val uint64) {
		require.Equal(t, key+1, val)
		cleared = append(cleared, key)
	}) {
		steps++
		require.Equal(t, int64(len(keys)-steps), tree.Len())
	}
	require.Equal(t, len(keys), steps)
	require.True(t, tree.Clear())
	require.True(t, sort.SliceIsSorted(cleared, func(i, j int) bool {
		return cleared[i] < cleared[j]
	}))
	require.Len(t, cleared, len(keys))
	for _, key := range keys {
		_, ok := tree.Find(key)
		require.False(t, ok)
	}

	// Reusable after a full drain.
	for i := uint64(0); i < 100; i++ {
		require.NoError(t, tree.Insert(i, i))
	}
	require.NoError(t, tree.Validate())
}

func clearThenInsertRunCore[N comparable](t *testing.T, tree *RBTree[N, int, int]) {
	b, nill, head := tree.Backend(), tree.Backend().Sentinel(), tree.Backend().FakeRoot()
	requireSpecialNodes := func() {
		require.Equal(t, nill, b.Child(nill, Left))
		require.Equal(t, nill, b.Child(nill, Right))
		require.Equal(t, nill, b.Parent(nill))
		require.Equal(t, Black, b.Color(nill))
		require.Equal(t, nill, b.Child(head, Right))
		require.Equal(t, nill, b.Parent(head))
		require.Equal(t, Black, b.Color(head))
	}

	// 1 is the black root and 2 its red right child.
	require.NoError(t, tree.Insert(1, 1))
	require.NoError(t, tree.Insert(2, 2))
	require.False(t, tree.Clear())
	require.Equal(t, 2, tree.Key(tree.Root()))
	require.Equal(t, Black, b.Color(tree.Root()))
	require.NoError(t, tree.Insert(1, 1))
	require.NoError(t, tree.Insert(3, 3))
	requireSpecialNodes()
	require.NoError(t, tree.Validate())

	for !tree.Clear() {
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, tree.Insert(i, i))
	}
	require.False(t, tree.Clear())
	require.Equal(t, Black, b.Color(tree.Root()))
	for i := 20; i < 50; i++ {
		require.NoError(t, tree.Insert(i, i))
		requireSpecialNodes()
	}
	for i := 1; i < 50; i++ {
		_, ok := tree.Find(i)
		require.True(t, ok)
	}
	for !tree.Clear() {
	}
	require.Equal(t, int64(0), tree.Len())
	requireSpecialNodes()
}

func TestRbtree_ClearThenInsert(t *testing.T) {
	t.Run("ptr", func(t *testing.T) {
		clearThenInsertRunCore(t, NewPtrRBTree[int, int](nil))
	})
	t.Run("arena u16", func(t *testing.T) {
		clearThenInsertRunCore(t, NewArenaRBTree[uint16, int, int](64, nil))
	})
}

func TestRbtree_MinMaxNeighbor(t *testing.T) {
	tree := NewPtrRBTree[int, int](nil)
	_, ok := tree.Min()
	require.False(t, ok)
	_, ok = tree.Max()
	require.False(t, ok)

	for i := 1; i <= 100; i++ {
		require.NoError(t, tree.Insert(i*10, i))
	}
	minNode, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, 10, tree.Key(minNode))
	maxNode, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, 1000, tree.Key(maxNode))

	node, count := minNode, 1
	for next, ok := tree.Neighbor(node, Right); ok; next, ok = tree.Neighbor(node, Right) {
		require.Equal(t, tree.Key(node)+10, tree.Key(next))
		node = next
		count++
	}
	require.Equal(t, 100, count)
	require.Equal(t, maxNode, node)

	prev, ok := tree.Neighbor(maxNode, Left)
	require.True(t, ok)
	require.Equal(t, 990, tree.Key(prev))
	_, ok = tree.Neighbor(minNode, Left)
	require.False(t, ok)
	_, ok = tree.Neighbor(tree.Backend().Sentinel(), Right)
	require.False(t, ok)
}

// validTree builds 4(2(1,3),6(5,8(7,9))), 2 and 6 are red, 7 and 9 are red.
func validTree(t *testing.T) *RBTree[*RBNode[int, int], int, int] {
	tree := NewPtrRBTree[int, int](nil)
	for _, key := range []int{4, 2, 1, 3, 6, 5, 8, 7, 9} {
		require.NoError(t, tree.Insert(key, key))
	}
	require.NoError(t, tree.Validate())
	return tree
}

func mustFind(t *testing.T, tree *RBTree[*RBNode[int, int], int, int], key int) *RBNode[int, int] {
	node, ok := tree.Find(key)
	require.True(t, ok)
	return node
}

func TestRbtree_Validate(t *testing.T) {
	type testcase struct {
		name     string
		corrupt  func(tree *RBTree[*RBNode[int, int], int, int])
		expected []error
	}
	testcases := []testcase{
		{
			name: "red root",
			corrupt: func(tree *RBTree[*RBNode[int, int], int, int]) {
				tree.Root().color = Red
			},
			expected: []error{ErrRBTreeRootViolation, ErrRBTreeRedViolation},
		},
		{
			name: "red child of red",
			corrupt: func(tree *RBTree[*RBNode[int, int], int, int]) {
				mustFind(t, tree, 1).color = Red
			},
			expected: []error{ErrRBTreeRedViolation, ErrRBTreeBlackViolation},
		},
		{
			name: "black height",
			corrupt: func(tree *RBTree[*RBNode[int, int], int, int]) {
				mustFind(t, tree, 7).color = Black
			},
			expected: []error{ErrRBTreeBlackViolation},
		},
		{
			name: "binary search order",
			corrupt: func(tree *RBTree[*RBNode[int, int], int, int]) {
				mustFind(t, tree, 7).key = 5
			},
			expected: []error{ErrRBTreeBinarySearchViolation},
		},
		{
			name: "broken parent link",
			corrupt: func(tree *RBTree[*RBNode[int, int], int, int]) {
				mustFind(t, tree, 9).parent = tree.Root()
			},
			expected: []error{ErrRBTreeLinkViolation},
		},
		{
			name: "corrupted sentinel",
			corrupt: func(tree *RBTree[*RBNode[int, int], int, int]) {
				tree.Backend().Sentinel().parent = tree.Root()
			},
			expected: []error{ErrRBTreeLinkViolation},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := validTree(tt)
			tc.corrupt(tree)
			err := tree.Validate()
			require.Error(tt, err)
			for _, expected := range tc.expected {
				require.ErrorIs(tt, err, expected)
			}
			require.Len(tt, multierr.Errors(err), len(tc.expected))
		})
	}
}
