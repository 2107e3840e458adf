package arbor

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseOutlineAttributes(t *testing.T) {
	root := mustParseOutline(t, `
# comment lines and blank lines are ignored
scene

  box rect=30x20 at=5,-2 scale=2 rotate=90
  layer split hidden
    marker rect=1x1 nofit
`)
	require.Equal(t, "scene", root.Name)
	require.Equal(t, 2, root.NumChildren())

	box := root.ChildAt(0)
	require.Equal(t, NodeTypeRect, box.Type)
	require.Equal(t, RectXYWH(0, 0, 30, 20), box.SelfBounds())
	require.Equal(t, 5.0, box.X)
	require.Equal(t, -2.0, box.Y)
	require.Equal(t, 2.0, box.ScaleY)
	require.InDelta(t, math.Pi/2, box.Rotation, 1e-12)

	layer := root.ChildAt(1)
	require.True(t, layer.LayerSplit)
	require.False(t, layer.Visible)
	require.Equal(t, NodeTypeContainer, layer.Type)
	require.True(t, layer.ChildAt(0).PreventFit())
}

func TestParseOutlineErrors(t *testing.T) {
	for _, tc := range []struct {
		name, input, want string
	}{
		{"empty", "\n# nothing\n", "empty outline"},
		{"odd indent", "root\n   a\n", "odd indentation"},
		{"indented root", "  root\n", "root must not be indented"},
		{"second root", "root\nother\n", "second root"},
		{"skipped level", "root\n    a\n", "indented past its parent"},
		{"bad attribute", "root\n  a color=red\n", "unknown attribute"},
		{"bad rect", "root\n  a rect=10\n", "expected two values"},
		{"bad scale", "root\n  a scale=big\n", "a: scale"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOutline(strings.NewReader(tc.input))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParsePointer(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)

	p, err := ParsePointer(root, "after:c/c1")
	require.NoError(t, err)
	require.Equal(t, "after root/2:c/0:c1", p.String())

	p, err = ParsePointer(root, "before:")
	require.NoError(t, err)
	require.Equal(t, "before root", p.String())

	for _, bad := range []string{"c/c1", "inside:c", "before:c/zz"} {
		_, err := ParsePointer(root, bad)
		require.Error(t, err, bad)
	}
}
