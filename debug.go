package folio

import (
	"fmt"
	"time"
)

// debugStats holds per-frame timing and draw metrics.
// Only populated when Page.debug is true.
type debugStats struct {
	updateTime time.Duration
	drawTime   time.Duration
	drawn      int
	culled     int
	observed   int
	tweens     int
	frame      uint64
}

// debugStatsInterval is how many frames pass between stats lines.
const debugStatsInterval = 120

// debugLog logs timing and draw stats every debugStatsInterval frames.
func (p *Page) debugLog() {
	if !p.debug {
		return
	}
	s := &p.frameStats
	s.frame++
	if s.frame%debugStatsInterval != 0 {
		return
	}
	logf("update: %v | draw: %v | total: %v", s.updateTime, s.drawTime, s.updateTime+s.drawTime)
	logf("drawn: %d | culled: %d | observed: %d | tweens: %d | scroll: %.0f",
		s.drawn, s.culled, s.observed, s.tweens, p.viewport.ScrollY)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("folio debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logf("warning: tree depth %d exceeds %d (node %q)", depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		logf("warning: node %q has %d children (threshold %d)", n.Name, len(n.children), debugMaxChildCount)
	}
}
