package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectKeys[K any](next func() (K, bool)) []K {
	keys := make([]K, 0, 16)
	for k, ok := next(); ok; k, ok = next() {
		keys = append(keys, k)
	}
	return keys
}

// The shape after inserting 4, 2, 1, 3, 6, 5, 8, 7, 9:
//
//	      4
//	    /   \
//	   2     6
//	  / \   / \
//	 1   3 5   8
//	          / \
//	         7   9
func iterScenario[N comparable](t *testing.T, tree *RBTree[N, int, int]) {
	for _, key := range []int{4, 2, 1, 3, 6, 5, 8, 7, 9} {
		require.NoError(t, tree.Insert(key, key*10))
	}
	require.Equal(t, int64(9), tree.Len())
	require.NoError(t, tree.Validate())

	type testcase struct {
		name     string
		walk     func(it *RBIterator[N, int, int]) (int, bool)
		expected []int
	}
	testcases := []testcase{
		{
			name: "preorder right",
			walk: func(it *RBIterator[N, int, int]) (int, bool) {
				return it.Preorder(Right)
			},
			expected: []int{4, 2, 1, 3, 6, 5, 8, 7, 9},
		},
		{
			name: "preorder left",
			walk: func(it *RBIterator[N, int, int]) (int, bool) {
				return it.Preorder(Left)
			},
			expected: []int{4, 6, 8, 9, 7, 5, 2, 3, 1},
		},
		{
			name: "sortorder right",
			walk: func(it *RBIterator[N, int, int]) (int, bool) {
				return it.SortOrder(Right)
			},
			expected: []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		{
			name: "sortorder left",
			walk: func(it *RBIterator[N, int, int]) (int, bool) {
				return it.SortOrder(Left)
			},
			expected: []int{9, 8, 7, 6, 5, 4, 3, 2, 1},
		},
		{
			name: "postorder right",
			walk: func(it *RBIterator[N, int, int]) (int, bool) {
				return it.Postorder(Right)
			},
			expected: []int{1, 3, 2, 5, 7, 9, 8, 6, 4},
		},
		{
			name: "postorder left",
			walk: func(it *RBIterator[N, int, int]) (int, bool) {
				return it.Postorder(Left)
			},
			expected: []int{9, 7, 8, 5, 6, 3, 1, 2, 4},
		},
		{
			name: "traverse right spine",
			walk: func(it *RBIterator[N, int, int]) (int, bool) {
				return it.Traverse(Right)
			},
			expected: []int{4, 6, 8, 9},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			it := tree.Iterate()
			require.Equal(tt, tc.expected, collectKeys(func() (int, bool) {
				return tc.walk(it)
			}))
			// Exhausted iterators stay exhausted.
			_, ok := tc.walk(it)
			require.False(tt, ok)
			require.True(tt, tree.IsNil(it.Node()))

			it.Reset()
			k, ok := tc.walk(it)
			require.True(tt, ok)
			require.Equal(tt, tc.expected[0], k)
			require.Equal(tt, k*10, it.Val())
			require.Equal(tt, k, it.Key())
		})
	}

	removed, err := tree.Remove(6)
	require.NoError(t, err)
	require.Equal(t, 60, tree.Val(removed))
	tree.Release(removed)
	require.NoError(t, tree.Validate())
	it := tree.Iterate()
	require.Equal(t, []int{1, 2, 3, 4, 5, 7, 8, 9}, collectKeys(func() (int, bool) {
		return it.SortOrder(Right)
	}))

	require.NoError(t, tree.Delete(2))
	require.Equal(t, int64(7), tree.Len())
	require.NoError(t, tree.Insert(2, 20))
	require.Equal(t, int64(8), tree.Len())
	require.NoError(t, tree.Validate())
	it = tree.Iterate()
	require.Equal(t, []int{1, 2, 3, 4, 5, 7, 8, 9}, collectKeys(func() (int, bool) {
		return it.SortOrder(Right)
	}))
}

func TestRBIterator_Scenario(t *testing.T) {
	t.Run("ptr", func(tt *testing.T) {
		iterScenario(tt, NewPtrRBTree[int, int](nil))
	})
	t.Run("arena u16", func(tt *testing.T) {
		iterScenario(tt, NewArenaRBTree[uint16, int, int](16, nil))
	})
	t.Run("arena u32", func(tt *testing.T) {
		iterScenario(tt, NewArenaRBTree[uint32, int, int](16, nil))
	})
}

func TestRBIterator_Empty(t *testing.T) {
	tree := NewPtrRBTree[int, int](nil)
	for _, walk := range []func(it *RBIterator[*RBNode[int, int], int, int]) (int, bool){
		func(it *RBIterator[*RBNode[int, int], int, int]) (int, bool) { return it.Traverse(Left) },
		func(it *RBIterator[*RBNode[int, int], int, int]) (int, bool) { return it.Preorder(Right) },
		func(it *RBIterator[*RBNode[int, int], int, int]) (int, bool) { return it.SortOrder(Right) },
		func(it *RBIterator[*RBNode[int, int], int, int]) (int, bool) { return it.Postorder(Right) },
	} {
		_, ok := walk(tree.Iterate())
		require.False(t, ok)
	}
	tree.Foreach(func(idx int64, color RBColor, key int, val int) bool {
		require.FailNow(t, "empty tree visited")
		return false
	})
}

func TestRBIterator_TraverseSearch(t *testing.T) {
	tree := NewArenaRBTree[uint16, int, int](1024, nil)
	for i := 0; i < 1000; i++ {
		require.NoError(t, tree.Insert(i*2, i))
	}

	search := func(key int) (int, bool) {
		it := tree.Iterate()
		for k, ok := it.Traverse(Left); ok; k, ok = it.Traverse(DirectionOf(int64(key - k))) {
			if k == key {
				return it.Val(), true
			}
		}
		return 0, false
	}
	for i := 0; i < 1000; i++ {
		val, ok := search(i * 2)
		require.True(t, ok)
		require.Equal(t, i, val)
		_, ok = search(i*2 + 1)
		require.False(t, ok)
	}
}

func TestRBIterator_Completeness(t *testing.T) {
	tree := NewPtrRBTree[uint64, uint64](nil)
	keys := randomUniqueKeys(5000)
	for _, key := range keys {
		require.NoError(t, tree.Insert(key, key))
	}

	for _, dir := range []RBDirection{Left, Right} {
		for name, walk := range map[string]func(it *RBIterator[*RBNode[uint64, uint64], uint64, uint64]) (uint64, bool){
			"preorder":  func(it *RBIterator[*RBNode[uint64, uint64], uint64, uint64]) (uint64, bool) { return it.Preorder(dir) },
			"sortorder": func(it *RBIterator[*RBNode[uint64, uint64], uint64, uint64]) (uint64, bool) { return it.SortOrder(dir) },
			"postorder": func(it *RBIterator[*RBNode[uint64, uint64], uint64, uint64]) (uint64, bool) { return it.Postorder(dir) },
		} {
			it := tree.Iterate()
			visited := collectKeys(func() (uint64, bool) {
				return walk(it)
			})
			require.Lenf(t, visited, len(keys), "%s %s", name, dir)
			require.ElementsMatch(t, keys, visited)
		}
	}

	var prev uint64
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		if idx > 0 {
			require.Less(t, prev, key)
		}
		prev = key
		return idx < 100
	})
}
