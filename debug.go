package arbor

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
}

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger struct{}

// Infof implements the Logger.Infof interface.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, "[arbor] "+fmt.Sprintf(format, args...))
}

// globalDebug mirrors the most recently created debug Display so that node
// operations (which lack a Display pointer) can check it cheaply. Only valid
// with a single Display; multiple Displays with differing debug modes will
// reflect whichever was configured last.
var globalDebug bool

// passStats holds the statistics of one repaint pass.
type passStats struct {
	blocks        int
	fullResizes   int
	fitResizes    int
	skipped       int
	fallbacks     int
	updateTime    time.Duration
	stitchTime    time.Duration
	instanceCount int
}

// debugLog prints pass stats through the logger.
func debugLog(l Logger, stats passStats) {
	l.Infof("stitch: %v | fit: %v | instances: %d | blocks updated: %d",
		stats.stitchTime, stats.updateTime, stats.instanceCount, stats.blocks)
	l.Infof("resizes: full %d, fit %d | skipped: %d | fallbacks: %d",
		stats.fullResizes, stats.fitResizes, stats.skipped, stats.fallbacks)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("arbor debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[arbor] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[arbor] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}
