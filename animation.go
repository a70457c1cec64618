package folio

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields on a Node simultaneously.
// Create one via the convenience constructors (TweenAlpha, TweenTranslate,
// TweenScale, TweenShadow) and either call Update(dt) yourself or hand it to
// Page.Animate. The group auto-applies values and marks the node dirty. If
// the target node is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	target *Node
	Done   bool

	// OnComplete runs once, on the update that finishes the group.
	OnComplete func()
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
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

	if g.target != nil {
		g.target.MarkDirty()
	}
	if g.Done && g.OnComplete != nil {
		g.OnComplete()
	}
}

// Stop ends the group where it is without firing OnComplete.
func (g *TweenGroup) Stop() {
	g.Done = true
}

func (g *TweenGroup) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	g.tweens[g.count] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[g.count] = field
	g.count++
}

// TweenAlpha creates a TweenGroup that animates node.Alpha to the target value
// over the specified duration using the easing function.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.Alpha, to, duration, fn)
	return g
}

// TweenTranslate creates a TweenGroup that animates node.TranslateX and
// node.TranslateY to the given offsets.
func TweenTranslate(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.TranslateX, toX, duration, fn)
	g.add(&node.TranslateY, toY, duration, fn)
	return g
}

// TweenScale creates a TweenGroup that animates node.ScaleX and node.ScaleY to
// the given target values over the specified duration using the easing function.
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.ScaleX, toSX, duration, fn)
	g.add(&node.ScaleY, toSY, duration, fn)
	return g
}

// TweenShadow creates a TweenGroup that animates node.Shadow.
func TweenShadow(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.Shadow, to, duration, fn)
	return g
}

// TweenReveal creates a TweenGroup that fades a node in and slides it back
// to its layout position: alpha to 1 and translate to zero.
func TweenReveal(node *Node, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.Alpha, 1, duration, fn)
	g.add(&node.TranslateX, 0, duration, fn)
	g.add(&node.TranslateY, 0, duration, fn)
	return g
}
