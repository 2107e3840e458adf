package arbor

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 geometry fields of a Node together. Each Update
// writes the eased values and marks the node dirty, which invalidates its
// bounds and so re-fits every block whose common ancestor contains it.
//
// If the target node is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	target *Node
	Done   bool
}

// Update advances all tweens by dt seconds.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target == nil || g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.target.MarkDirty()
}

// Stop ends the group where it is.
func (g *TweenGroup) Stop() {
	g.Done = true
}

func newTweenGroup(node *Node, duration float32, fn ease.TweenFunc, pairs ...tweenField) *TweenGroup {
	g := &TweenGroup{count: len(pairs), target: node}
	for i, p := range pairs {
		g.tweens[i] = gween.New(float32(*p.field), float32(p.to), duration, fn)
		g.fields[i] = p.field
	}
	return g
}

type tweenField struct {
	field *float64
	to    float64
}

// TweenPosition animates node.X and node.Y to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		tweenField{&node.X, toX}, tweenField{&node.Y, toY})
}

// TweenScale animates node.ScaleX and node.ScaleY.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		tweenField{&node.ScaleX, toSX}, tweenField{&node.ScaleY, toSY})
}

// TweenRotation animates node.Rotation, in radians.
func TweenRotation(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn, tweenField{&node.Rotation, to})
}

// TweenSize animates node.Width and node.Height, growing or shrinking the
// node's own content.
func TweenSize(node *Node, toW, toH float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return newTweenGroup(node, duration, fn,
		tweenField{&node.Width, toW}, tweenField{&node.Height, toH})
}
