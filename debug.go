package tether

import (
	"fmt"
	"os"
)

// globalDebug mirrors the most recently set Manager debug flag so that node
// and instance operations (which lack a manager pointer) can check it
// cheaply. Only valid with a single manager; multiple managers with
// differing debug modes will reflect whichever called SetDebugMode last.
var globalDebug bool

// debugf prints a [tether] diagnostic line to stderr when debug mode is on.
func debugf(format string, args ...any) {
	if !globalDebug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[tether] "+format+"\n", args...)
}

// warnf prints a [tether] warning to stderr regardless of debug mode. Used
// for hook failures when no error callback is registered.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[tether] warning: "+format+"\n", args...)
}

// debugCheckDisposed panics with a descriptive message when a disposed node
// is used in a tree or attach operation. Only called in debug mode; release
// mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("tether debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
// Hit testing recurses the full tree on every press, so runaway depth shows
// up as input latency long before it shows up as a crash.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[tether] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[tether] warning: node %q has %d children (threshold %d)\n",
			n.Name, len(n.children), debugMaxChildCount)
	}
}
