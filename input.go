package folio

import (
	"slices"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const (
	wheelLineHeight = 48.0 // pixels scrolled per wheel notch
	arrowScrollStep = 40.0 // pixels scrolled per arrow key press
)

// eventLayer tags layer registrations in CallbackHandle.
const eventLayer EventType = 255

// --- Per-pointer state ---

type pointerState struct {
	down      bool
	hasLast   bool
	lastX     float64 // screen space
	lastY     float64
	hitNode   *Node
	hoverNode *Node
	button    MouseButton // button captured at press time
}

// --- Handler registry ---

type handlerEntry[T any] struct {
	id uint32
	fn T
}

// handlerList is an ordered set of callbacks keyed by registration id.
type handlerList[T any] struct {
	entries []handlerEntry[T]
}

func (l *handlerList[T]) add(id uint32, fn T) {
	l.entries = append(l.entries, handlerEntry[T]{id: id, fn: fn})
}

// remove deletes the entry with id. The backing array is never shared with
// an in-flight dispatch, which iterates over a clone.
func (l *handlerList[T]) remove(id uint32) {
	for i := range l.entries {
		if l.entries[i].id == id {
			l.entries = slices.Delete(slices.Clone(l.entries), i, i+1)
			return
		}
	}
}

func (l *handlerList[T]) len() int {
	return len(l.entries)
}

// each calls visit for every entry registered when the dispatch started.
func (l *handlerList[T]) each(visit func(T)) {
	for _, e := range l.entries {
		visit(e.fn)
	}
}

type handlerRegistry struct {
	pointerMove handlerList[func(PointerContext)]
	click       handlerList[func(ClickContext)]
	keyDown     handlerList[func(KeyContext)]
	scroll      handlerList[func(float64)]
	resize      handlerList[func(w, h float64)]
	nextID      uint32
}

func (r *handlerRegistry) next() uint32 {
	r.nextID++
	return r.nextID
}

// CallbackHandle allows removing a registered page-level callback.
type CallbackHandle struct {
	id    uint32
	page  *Page
	event EventType
}

// Remove unregisters this callback so it no longer fires. Safe to call from
// inside the callback itself and more than once.
func (h CallbackHandle) Remove() {
	if h.page == nil {
		return
	}
	r := &h.page.handlers
	switch h.event {
	case EventPointerMove:
		r.pointerMove.remove(h.id)
	case EventClick:
		r.click.remove(h.id)
	case EventKeyDown:
		r.keyDown.remove(h.id)
	case EventScroll:
		r.scroll.remove(h.id)
	case EventResize:
		r.resize.remove(h.id)
	case eventLayer:
		h.page.layers.remove(h.id)
	}
}

// --- Page-level event registration ---

// OnPointerMove registers a document-level callback for pointer moves.
func (p *Page) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	id := p.handlers.next()
	p.handlers.pointerMove.add(id, fn)
	return CallbackHandle{id: id, page: p, event: EventPointerMove}
}

// OnClick registers a document-level click callback. It fires after the
// clicked node's own OnClick, including for clicks on empty space.
func (p *Page) OnClick(fn func(ClickContext)) CallbackHandle {
	id := p.handlers.next()
	p.handlers.click.add(id, fn)
	return CallbackHandle{id: id, page: p, event: EventClick}
}

// OnKeyDown registers a document-level key press callback.
func (p *Page) OnKeyDown(fn func(KeyContext)) CallbackHandle {
	id := p.handlers.next()
	p.handlers.keyDown.add(id, fn)
	return CallbackHandle{id: id, page: p, event: EventKeyDown}
}

// OnScroll registers a callback invoked with the new scroll position each
// frame it changes.
func (p *Page) OnScroll(fn func(scrollY float64)) CallbackHandle {
	id := p.handlers.next()
	p.handlers.scroll.add(id, fn)
	return CallbackHandle{id: id, page: p, event: EventScroll}
}

// OnResize registers a callback invoked when the window size changes.
func (p *Page) OnResize(fn func(w, h float64)) CallbackHandle {
	id := p.handlers.next()
	p.handlers.resize.add(id, fn)
	return CallbackHandle{id: id, page: p, event: EventResize}
}

// --- Focus ---

// Focus returns the input that receives typed text, or nil.
func (p *Page) Focus() *Node {
	return p.focus
}

// SetFocus moves text focus to n. A nil or non-input node clears focus.
func (p *Page) SetFocus(n *Node) {
	if n != nil && n.Type != NodeTypeInput {
		n = nil
	}
	if p.focus != nil {
		p.focus.RemoveClass("focused")
	}
	p.focus = n
	if n != nil {
		n.AddClass("focused")
	}
}

// --- Hit testing ---

// collectInteractable walks the tree in paint order, appending visible
// interactable nodes with a non-empty box. Hidden subtrees are skipped.
func collectInteractable(n *Node, buf []*Node) []*Node {
	if !n.Visible || n.disposed {
		return buf
	}
	if n.Interactable && (n.Width > 0 || n.Height > 0) {
		buf = append(buf, n)
	}
	for _, child := range n.children {
		buf = collectInteractable(child, buf)
	}
	return buf
}

func nodeContainsLocal(n *Node, lx, ly float64) bool {
	return lx >= 0 && lx <= n.Width && ly >= 0 && ly <= n.Height
}

// hitTest finds the topmost interactable node under the screen point. The
// overlay is tested first in screen space, then content in page space.
func (p *Page) hitTest(sx, sy float64) *Node {
	if n := p.hitTree(p.overlay, sx, sy); n != nil {
		return n
	}
	px, py := p.viewport.ScreenToPage(sx, sy)
	return p.hitTree(p.root, px, py)
}

func (p *Page) hitTree(root *Node, x, y float64) *Node {
	p.hitBuf = collectInteractable(root, p.hitBuf[:0])
	for i := len(p.hitBuf) - 1; i >= 0; i-- {
		n := p.hitBuf[i]
		lx, ly := n.WorldToLocal(x, y)
		if nodeContainsLocal(n, lx, ly) {
			return n
		}
	}
	return nil
}

// inOverlay reports whether n belongs to the fixed overlay tree.
func (p *Page) inOverlay(n *Node) bool {
	return n != nil && isAncestor(p.overlay, n)
}

// --- Input processing ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Page.Update. A queued synthetic event takes
// the whole frame; device input is only read when ReadDeviceInput is set.
func (p *Page) processInput() {
	if p.processInjectedInput() {
		return
	}
	if !p.ReadDeviceInput {
		return
	}
	mods := readModifiers()

	mx, my := ebiten.CursorPosition()
	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}
	p.processPointer(float64(mx), float64(my), pressed, button, mods)

	if _, wy := ebiten.Wheel(); wy != 0 {
		p.processWheel(-wy * wheelLineHeight)
	}

	p.keyBuf = inpututil.AppendJustPressedKeys(p.keyBuf[:0])
	for _, k := range p.keyBuf {
		p.processKey(k, mods)
	}

	p.runeBuf = ebiten.AppendInputChars(p.runeBuf[:0])
	if len(p.runeBuf) > 0 {
		p.processText(string(p.runeBuf))
	}
}

// processPointer runs the pointer state machine for the mouse.
func (p *Page) processPointer(sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	ps := &p.pointer
	target := p.hitTest(sx, sy)

	if target != ps.hoverNode {
		if ps.hoverNode != nil && !ps.hoverNode.disposed {
			p.firePointerLeave(ps.hoverNode, sx, sy, button, mods)
		}
		if target != nil {
			p.firePointerEnter(target, sx, sy, button, mods)
		}
		ps.hoverNode = target
	}

	moved := !ps.hasLast || sx != ps.lastX || sy != ps.lastY
	ps.hasLast = true
	ps.lastX, ps.lastY = sx, sy
	if moved {
		p.firePointerMove(target, sx, sy, button, mods)
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.hitNode = target
		p.SetFocus(target)
	case !pressed && ps.down:
		if ps.hitNode == target {
			p.fireClick(target, sx, sy, ps.button, mods)
		}
		ps.down = false
		ps.hitNode = nil
	}
}

// processWheel scrolls the viewport unless a scroll lock is held.
func (p *Page) processWheel(dy float64) {
	if p.ScrollLocked() || dy == 0 {
		return
	}
	p.viewport.ScrollBy(dy)
}

// processKey edits the focused input, scrolls on navigation keys, and
// dispatches document key handlers.
func (p *Page) processKey(key ebiten.Key, mods KeyModifiers) {
	if f := p.focus; f != nil && !f.disposed {
		switch key {
		case ebiten.KeyBackspace:
			if _, size := utf8.DecodeLastRuneInString(f.Value); size > 0 {
				f.Value = f.Value[:len(f.Value)-size]
			}
		case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
			p.submit(f)
		}
	} else if !p.ScrollLocked() {
		switch key {
		case ebiten.KeyArrowDown:
			p.viewport.ScrollBy(arrowScrollStep)
		case ebiten.KeyArrowUp:
			p.viewport.ScrollBy(-arrowScrollStep)
		case ebiten.KeyPageDown, ebiten.KeySpace:
			p.viewport.ScrollBy(p.viewport.Height * 0.9)
		case ebiten.KeyPageUp:
			p.viewport.ScrollBy(-p.viewport.Height * 0.9)
		case ebiten.KeyHome:
			p.viewport.SetScroll(0)
		case ebiten.KeyEnd:
			p.viewport.SetScroll(p.viewport.MaxScroll())
		}
	}

	ctx := KeyContext{Key: key, Modifiers: mods}
	p.handlers.keyDown.each(func(fn func(KeyContext)) { fn(ctx) })
}

// processText appends typed characters to the focused input.
func (p *Page) processText(s string) {
	if f := p.focus; f != nil && !f.disposed {
		f.Value += s
	}
}

// submit fires OnSubmit on the form enclosing n, if any.
func (p *Page) submit(n *Node) {
	form := formOf(n)
	if form == nil || form.OnSubmit == nil {
		return
	}
	form.OnSubmit(SubmitContext{Form: form})
}

// formOf returns the nearest form ancestor of n (or n itself).
func formOf(n *Node) *Node {
	for f := n; f != nil; f = f.Parent {
		if f.Type == NodeTypeForm {
			return f
		}
	}
	return nil
}

// isSubmitButton reports whether clicking n submits its form.
func isSubmitButton(n *Node) bool {
	if n == nil || n.Type != NodeTypeButton {
		return false
	}
	t, _ := n.Attr("type")
	return t == "submit"
}

// --- Event dispatch ---

func (p *Page) pointerContext(node *Node, sx, sy float64, button MouseButton, mods KeyModifiers) PointerContext {
	px, py := p.viewport.ScreenToPage(sx, sy)
	ctx := PointerContext{
		Node: node, ScreenX: sx, ScreenY: sy, PageX: px, PageY: py,
		Button: button, Modifiers: mods,
	}
	if node != nil {
		ctx.UserData = node.UserData
		if p.inOverlay(node) {
			ctx.LocalX, ctx.LocalY = node.WorldToLocal(sx, sy)
		} else {
			ctx.LocalX, ctx.LocalY = node.WorldToLocal(px, py)
		}
	}
	return ctx
}

func (p *Page) firePointerMove(node *Node, sx, sy float64, button MouseButton, mods KeyModifiers) {
	ctx := p.pointerContext(node, sx, sy, button, mods)
	p.handlers.pointerMove.each(func(fn func(PointerContext)) { fn(ctx) })
}

func (p *Page) firePointerEnter(node *Node, sx, sy float64, button MouseButton, mods KeyModifiers) {
	if node.OnPointerEnter != nil {
		node.OnPointerEnter(p.pointerContext(node, sx, sy, button, mods))
	}
}

func (p *Page) firePointerLeave(node *Node, sx, sy float64, button MouseButton, mods KeyModifiers) {
	if node.OnPointerLeave != nil {
		node.OnPointerLeave(p.pointerContext(node, sx, sy, button, mods))
	}
}

// fireClick delivers a click to the node, then submits its form for submit
// buttons, then runs document handlers.
func (p *Page) fireClick(node *Node, sx, sy float64, button MouseButton, mods KeyModifiers) {
	pc := p.pointerContext(node, sx, sy, button, mods)
	ctx := ClickContext(pc)
	if node != nil && node.OnClick != nil {
		node.OnClick(ctx)
	}
	if isSubmitButton(node) && !node.disposed {
		p.submit(node)
	}
	p.handlers.click.each(func(fn func(ClickContext)) { fn(ctx) })
}

func (p *Page) fireScroll(y float64) {
	p.handlers.scroll.each(func(fn func(float64)) { fn(y) })
}

func (p *Page) fireResize(w, h float64) {
	p.handlers.resize.each(func(fn func(w, h float64)) { fn(w, h) })
}
