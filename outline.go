package arbor

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseOutline builds a node tree from an indented outline. Each non-blank
// line that does not start with '#' declares one node: two spaces of
// indentation per level, then the node name, then optional attributes:
//
//	rect=WxH     a rect node of the given size (default: container)
//	at=X,Y       position
//	scale=S      uniform scale
//	rotate=DEG   rotation in degrees
//	nofit        SetPreventFit(true)
//	split        LayerSplit
//	hidden       not visible
//
// The first line is the root and must not be indented.
func ParseOutline(r io.Reader) (*Node, error) {
	var root *Node
	var stack []*Node

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t")
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := len(line) - len(trimmed)
		if indent%2 != 0 {
			return nil, errors.Newf("line %d: odd indentation", lineNo)
		}
		depth := indent / 2

		fields := strings.Fields(trimmed)
		n, err := parseOutlineNode(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}

		switch {
		case root == nil:
			if depth != 0 {
				return nil, errors.Newf("line %d: root must not be indented", lineNo)
			}
			root = n
			stack = append(stack[:0], n)
		case depth == 0:
			return nil, errors.Newf("line %d: second root %q", lineNo, n.Name)
		case depth > len(stack):
			return nil, errors.Newf("line %d: %q is indented past its parent", lineNo, n.Name)
		default:
			stack = stack[:depth]
			stack[depth-1].AddChild(n)
			stack = append(stack, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading outline")
	}
	if root == nil {
		return nil, errors.New("empty outline")
	}
	return root, nil
}

func parseOutlineNode(fields []string) (*Node, error) {
	n := NewContainer(fields[0])
	for _, f := range fields[1:] {
		key, val, _ := strings.Cut(f, "=")
		switch key {
		case "rect":
			w, h, err := parsePair(val, "x")
			if err != nil {
				return nil, errors.Wrapf(err, "%s: rect", n.Name)
			}
			n.Type = NodeTypeRect
			n.Color = ColorWhite
			n.SetSize(w, h)
		case "at":
			x, y, err := parsePair(val, ",")
			if err != nil {
				return nil, errors.Wrapf(err, "%s: at", n.Name)
			}
			n.SetPosition(x, y)
		case "scale":
			s, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: scale", n.Name)
			}
			n.SetScale(s, s)
		case "rotate":
			deg, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: rotate", n.Name)
			}
			n.SetRotation(deg * math.Pi / 180)
		case "nofit":
			n.SetPreventFit(true)
		case "split":
			n.LayerSplit = true
		case "hidden":
			n.Visible = false
		default:
			return nil, errors.Newf("%s: unknown attribute %q", n.Name, f)
		}
	}
	return n, nil
}

func parsePair(s, sep string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, errors.Newf("expected two values separated by %q, got %q", sep, s)
	}
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// TrailByPath resolves a slash-separated path of child names below root. The
// empty path names root itself.
func TrailByPath(root *Node, path string) (Trail, error) {
	b := NewTrailBuilder(NewTrail(root))
	if path == "" || path == "/" {
		return b.Trail(), nil
	}
	cur := root
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		idx := -1
		for i, c := range cur.children {
			if c.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return Trail{}, errors.Newf("no child %q under %q", name, cur.Name)
		}
		cur = cur.children[idx]
		b.Push(cur, idx)
	}
	return b.Trail(), nil
}

// ParsePointer parses "before:PATH" or "after:PATH" into a pointer below root.
func ParsePointer(root *Node, s string) (TrailPointer, error) {
	side, path, ok := strings.Cut(s, ":")
	if !ok {
		return TrailPointer{}, errors.Newf("pointer %q: expected before:PATH or after:PATH", s)
	}
	var isBefore bool
	switch side {
	case "before":
		isBefore = true
	case "after":
	default:
		return TrailPointer{}, errors.Newf("pointer %q: unknown side %q", s, side)
	}
	t, err := TrailByPath(root, path)
	if err != nil {
		return TrailPointer{}, errors.Wrapf(err, "pointer %q", s)
	}
	return NewTrailPointer(t, isBefore), nil
}
