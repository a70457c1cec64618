package folio

import "github.com/hajimehoshi/ebiten/v2"

type syntheticKind uint8

const (
	syntheticPointer syntheticKind = iota
	syntheticKey
	syntheticWheel
	syntheticText
)

// syntheticEvent represents a single injected input event. Pointer
// coordinates are screen coordinates (matching what a screenshot shows) and
// go through the same hit testing as real mouse input.
type syntheticEvent struct {
	kind             syntheticKind
	screenX, screenY float64
	pressed          bool
	button           MouseButton
	key              ebiten.Key
	mods             KeyModifiers
	dy               float64
	text             string
}

// InjectPress queues a left-button press at the given screen coordinates.
// The event is consumed on the next frame's input pass.
func (p *Page) InjectPress(x, y float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{
		kind: syntheticPointer, screenX: x, screenY: y,
		pressed: true, button: MouseButtonLeft,
	})
}

// InjectRelease queues a left-button release at the given screen coordinates.
func (p *Page) InjectRelease(x, y float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{
		kind: syntheticPointer, screenX: x, screenY: y,
		pressed: false, button: MouseButtonLeft,
	})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (p *Page) InjectClick(x, y float64) {
	p.InjectPress(x, y)
	p.InjectRelease(x, y)
}

// InjectClickNode queues a click at the center of n's on-screen box, as
// of the last transform update.
func (p *Page) InjectClickNode(n *Node) {
	x, y := p.screenCenter(n)
	p.InjectClick(x, y)
}

// InjectMove queues a pointer move to the given screen coordinates. The
// button state carries over from the previous pointer event.
func (p *Page) InjectMove(x, y float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{
		kind: syntheticPointer, screenX: x, screenY: y,
		pressed: p.lastQueuedPressed(), button: MouseButtonLeft,
	})
}

// InjectKey queues a key press.
func (p *Page) InjectKey(key ebiten.Key) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{kind: syntheticKey, key: key})
}

// InjectScroll queues a wheel scroll of dy pixels (positive scrolls down).
func (p *Page) InjectScroll(dy float64) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{kind: syntheticWheel, dy: dy})
}

// InjectText queues typed text for the focused input.
func (p *Page) InjectText(s string) {
	p.injectQueue = append(p.injectQueue, syntheticEvent{kind: syntheticText, text: s})
}

// lastQueuedPressed returns the pointer button state the queue will leave
// behind, so moves between a press and release keep the button held.
func (p *Page) lastQueuedPressed() bool {
	for i := len(p.injectQueue) - 1; i >= 0; i-- {
		if e := p.injectQueue[i]; e.kind == syntheticPointer {
			return e.pressed
		}
	}
	return p.pointer.down
}

// screenCenter returns the screen position of n's box center.
func (p *Page) screenCenter(n *Node) (float64, float64) {
	b := n.Bounds()
	x, y := b.X+b.Width/2, b.Y+b.Height/2
	if p.inOverlay(n) {
		return x, y
	}
	return p.viewport.PageToScreen(x, y)
}

// processInjectedInput pops one event from the inject queue and feeds it
// through the same paths as device input. Returns true if an event was
// consumed (device input is skipped for that frame).
func (p *Page) processInjectedInput() bool {
	if len(p.injectQueue) == 0 {
		return false
	}
	evt := p.injectQueue[0]
	copy(p.injectQueue, p.injectQueue[1:])
	p.injectQueue = p.injectQueue[:len(p.injectQueue)-1]

	switch evt.kind {
	case syntheticPointer:
		p.processPointer(evt.screenX, evt.screenY, evt.pressed, evt.button, evt.mods)
	case syntheticKey:
		p.processKey(evt.key, evt.mods)
	case syntheticWheel:
		p.processWheel(evt.dy)
	case syntheticText:
		p.processText(evt.text)
	}
	return true
}

// PendingInput returns the number of queued synthetic events.
func (p *Page) PendingInput() int {
	return len(p.injectQueue)
}
