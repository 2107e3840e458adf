package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/arbor"
)

const testOutline = `
root
  a
    b rect=10x10
  c rect=5x5 at=20,0
`

func parse(t *testing.T, s string) *arbor.Node {
	t.Helper()
	root, err := loadOutline("-", strings.NewReader(s))
	require.NoError(t, err)
	return root
}

func TestWalkForwards(t *testing.T) {
	var buf bytes.Buffer
	runWalk(&buf, parse(t, testOutline), false)
	require.Equal(t, `before root
  before a
    before b
    after  b
  after  a
  before c
  after  c
after  root
`, buf.String())
}

func TestWalkBackwards(t *testing.T) {
	var buf bytes.Buffer
	runWalk(&buf, parse(t, testOutline), true)
	require.Equal(t, `after  root
  after  c
  before c
  after  a
    after  b
    before b
  before a
before root
`, buf.String())
}

func TestBetween(t *testing.T) {
	var buf bytes.Buffer
	err := runBetween(&buf, parse(t, testOutline), "before:a", "before:c", true)
	require.NoError(t, err)
	require.Equal(t, `    before b
    after  b
  after  a
`, buf.String())
}

func TestBetweenOutOfOrder(t *testing.T) {
	var buf bytes.Buffer
	err := runBetween(&buf, parse(t, testOutline), "after:c", "before:a", false)
	require.Error(t, err)
	require.True(t, errors.Is(err, arbor.ErrOutOfOrder))
	require.Empty(t, buf.String())
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runRender(&buf, parse(t, testOutline)))
	out := buf.String()
	require.Contains(t, out, "common-ancestor")
	require.Contains(t, out, "b..c (2)")
	// root bounds [0,0 25,10] dilated by 4, then clamped to the viewport.
	require.Contains(t, out, "[0,0 29,14]")
}
