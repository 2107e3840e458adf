package arbor

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func mustParseOutline(t testing.TB, s string) *Node {
	t.Helper()
	root, err := ParseOutline(strings.NewReader(s))
	require.NoError(t, err)
	return root
}

func mustTrail(t testing.TB, root *Node, path string) Trail {
	t.Helper()
	tr, err := TrailByPath(root, path)
	require.NoError(t, err)
	return tr
}

// preorderTrails lists every trail of the tree in render order.
func preorderTrails(root *Node) []Trail {
	var out []Trail
	var walk func(t Trail)
	walk = func(t Trail) {
		out = append(out, t)
		for i := range t.LastNode().children {
			walk(t.Child(i))
		}
	}
	walk(NewTrail(root))
	return out
}

const sampleOutline = `
root
  a
    a1
    a2
      a2x
  b
  c
    c1
`

func TestTrailByPathAndString(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	tr := mustTrail(t, root, "a/a2/a2x")
	require.Equal(t, 4, tr.Len())
	require.Equal(t, "a2x", tr.LastNode().Name)
	require.Same(t, root, tr.RootNode())
	require.Equal(t, []int{0, 1, 0}, tr.Indices())
	require.Equal(t, "root/0:a/1:a2/0:a2x", tr.String())
	require.True(t, tr.IsValid())

	_, err := TrailByPath(root, "a/nope")
	require.Error(t, err)

	require.Equal(t, "<empty>", Trail{}.String())
}

func TestTrailToMatchesByPath(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	want := mustTrail(t, root, "c/c1")
	got := TrailTo(want.LastNode())
	require.True(t, got.Equals(want))
	require.Equal(t, want.Indices(), got.Indices())
}

func TestTrailImmutable(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	a := mustTrail(t, root, "a")
	a1 := a.Child(0)
	a2 := a.Child(1)
	require.Equal(t, "a1", a1.LastNode().Name)
	require.Equal(t, "a2", a2.LastNode().Name)
	require.Equal(t, 2, a.Len())

	p := a2.Parent()
	c := p.extend(root.ChildAt(2), 2)
	require.Equal(t, "a2", a2.LastNode().Name, "extending a parent must not clobber the child")
	require.Equal(t, "c", c.LastNode().Name)

	require.True(t, NewTrail(root).Parent().IsEmpty())
	require.True(t, Trail{}.Parent().IsEmpty())
}

func TestTrailCompareIsPreorder(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	trails := preorderTrails(root)
	for i := range trails {
		for j := range trails {
			want := 0
			if i < j {
				want = -1
			} else if i > j {
				want = 1
			}
			require.Equal(t, want, trails[i].Compare(trails[j]),
				"%s vs %s", trails[i], trails[j])
		}
	}
}

func TestTrailCompareDifferentRootsPanics(t *testing.T) {
	a := NewTrail(NewContainer("a"))
	b := NewTrail(NewContainer("b"))
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, ErrOutOfOrder))
	}()
	a.Compare(b)
}

func TestTrailNextPrevious(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	trails := preorderTrails(root)

	cur := trails[0]
	for i := 1; i < len(trails); i++ {
		next, ok := cur.Next()
		require.True(t, ok)
		require.True(t, next.Equals(trails[i]), "step %d: got %s want %s", i, next, trails[i])
		cur = next
	}
	_, ok := cur.Next()
	require.False(t, ok)

	for i := len(trails) - 2; i >= 0; i-- {
		prev, ok := cur.Previous()
		require.True(t, ok)
		require.True(t, prev.Equals(trails[i]), "step %d: got %s want %s", i, prev, trails[i])
		cur = prev
	}
	_, ok = cur.Previous()
	require.False(t, ok)
}

func TestTrailExtensionAndEquality(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	a := mustTrail(t, root, "a")
	a2x := mustTrail(t, root, "a/a2/a2x")
	b := mustTrail(t, root, "b")

	require.True(t, a2x.IsExtensionOf(a, false))
	require.False(t, a.IsExtensionOf(a2x, true))
	require.True(t, a.IsExtensionOf(a, true))
	require.False(t, a.IsExtensionOf(a, false))
	require.False(t, b.IsExtensionOf(a, true))
	require.True(t, a.Copy().Equals(a))
	require.False(t, a.Equals(b))
}

func TestTrailReindexed(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	c1 := mustTrail(t, root, "c/c1")
	c := c1.Node(1)

	root.SetChildIndex(c, 0)
	require.False(t, c1.IsValid())
	re := c1.Reindexed()
	require.True(t, re.IsValid())
	require.Equal(t, []int{0, 0}, re.Indices())

	c.RemoveFromParent()
	re = c1.Reindexed()
	require.False(t, re.IsValid())
	require.Equal(t, -1, re.Index(0))
}

func TestTrailLocalToGlobalMatrix(t *testing.T) {
	root := mustParseOutline(t, `
root at=1,1
  g at=10,0 scale=2
    r rect=1x1 at=3,4
`)
	m := mustTrail(t, root, "g/r").LocalToGlobalMatrix()
	x, y := transformPoint(m, 0, 0)
	// r origin (3,4) -> g: (6+10, 8) -> root: (17, 9)
	require.Equal(t, 17.0, x)
	require.Equal(t, 9.0, y)
}

func TestTrailBuilder(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	b := NewTrailBuilder(NewTrail(root))
	require.Equal(t, -1, b.LastIndex())

	a := root.ChildAt(0)
	b.Push(a, 0)
	b.Push(a.ChildAt(1), 1)
	snap := b.Trail()
	require.Equal(t, "root/0:a/1:a2", snap.String())

	b.Pop()
	b.Push(a.ChildAt(0), 0)
	require.Equal(t, "root/0:a/1:a2", snap.String(), "snapshots are independent")
	require.Equal(t, 3, b.Len())
	require.Equal(t, "a1", b.LastNode().Name)

	b.SetLast(a.ChildAt(1), 1)
	require.Equal(t, "root/0:a/1:a2", b.Trail().String())

	b.SetRoot(root)
	require.Equal(t, 1, b.Len())
	require.Panics(t, func() { b.SetLast(a, 0) })
}
