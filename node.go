package folio

import (
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Callback contexts ---

// PointerContext carries pointer event data.
type PointerContext struct {
	Node      *Node
	UserData  any
	ScreenX   float64
	ScreenY   float64
	PageX     float64
	PageY     float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
}

// ClickContext carries click event data. Node is the element the click landed
// on, or nil when it landed on empty page space.
type ClickContext struct {
	Node      *Node
	UserData  any
	ScreenX   float64
	ScreenY   float64
	PageX     float64
	PageY     float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	PointerID int
	Modifiers KeyModifiers
}

// KeyContext carries key press data.
type KeyContext struct {
	Key       ebiten.Key
	Modifiers KeyModifiers
}

// SubmitContext carries form submission data.
type SubmitContext struct {
	Form *Node
}

// --- ID counter ---

// nodeIDCounter is only touched from the update goroutine.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is a page element. A single flat struct is used for all element types
// to avoid interface dispatch on the hot path. Class presence is a rendering
// projection only; components keep their own state.
type Node struct {
	// Identity
	ID   uint32
	Name string // element id, unique within a page by convention
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Layout box, relative to the parent's box.
	X, Y          float64
	Width, Height float64

	// Presentation transform applied on top of layout. Scale pivots on the
	// box center.
	TranslateX, TranslateY float64
	ScaleX, ScaleY         float64

	// Computed (unexported, updated during traversal)
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool
	Shadow       float64

	// Content
	Text        string
	Value       string // current value for inputs
	Placeholder string
	FontSize    float64
	Color       Color // foreground
	Background  Color
	Image       *ebiten.Image

	classes map[string]struct{}
	attrs   map[string]string
	layout  textLayout // wrapped lines, rebuilt when text or width changes

	// Metadata
	UserData any

	// Per-node callbacks (nil by default; zero cost when unused)
	OnClick        func(ClickContext)
	OnPointerEnter func(PointerContext)
	OnPointerLeave func(PointerContext)
	OnSubmit       func(SubmitContext)

	// Internal
	disposed bool
}

const defaultFontSize = 14

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.FontSize = defaultFontSize
	n.Visible = true
	n.transformDirty = true
}

func newNode(name string, typ NodeType) *Node {
	n := &Node{Name: name, Type: typ}
	nodeDefaults(n)
	return n
}

// NewBox creates a generic block element.
func NewBox(name string) *Node {
	return newNode(name, NodeTypeBox)
}

// NewSection creates a section element addressable by id.
func NewSection(id string) *Node {
	return newNode(id, NodeTypeSection)
}

// NewText creates a text element.
func NewText(name, text string) *Node {
	n := newNode(name, NodeTypeText)
	n.Text = text
	return n
}

// NewLink creates an interactable anchor pointing at href.
func NewLink(name, text, href string) *Node {
	n := newNode(name, NodeTypeLink)
	n.Text = text
	n.Interactable = true
	n.SetAttr("href", href)
	return n
}

// NewButton creates an interactable button with a label.
func NewButton(name, label string) *Node {
	n := newNode(name, NodeTypeButton)
	n.Text = label
	n.Interactable = true
	return n
}

// NewImage creates an image element. A non-empty dataSrc defers loading
// until the element is revealed.
func NewImage(name, dataSrc string) *Node {
	n := newNode(name, NodeTypeImage)
	if dataSrc != "" {
		n.SetAttr("data-src", dataSrc)
	}
	return n
}

// NewInput creates a focusable single-line text field.
func NewInput(name, placeholder string) *Node {
	n := newNode(name, NodeTypeInput)
	n.Placeholder = placeholder
	n.Interactable = true
	return n
}

// NewForm creates a form container.
func NewForm(name string) *Node {
	return newNode(name, NodeTypeForm)
}

// AddClickListener runs fn after the node's existing OnClick, if any.
func (n *Node) AddClickListener(fn func(ClickContext)) {
	prev := n.OnClick
	if prev == nil {
		n.OnClick = fn
		return
	}
	n.OnClick = func(ctx ClickContext) {
		prev(ctx)
		fn(ctx)
	}
}

// AddPointerEnterListener runs fn after the node's existing OnPointerEnter.
func (n *Node) AddPointerEnterListener(fn func(PointerContext)) {
	prev := n.OnPointerEnter
	if prev == nil {
		n.OnPointerEnter = fn
		return
	}
	n.OnPointerEnter = func(ctx PointerContext) {
		prev(ctx)
		fn(ctx)
	}
}

// AddPointerLeaveListener runs fn after the node's existing OnPointerLeave.
func (n *Node) AddPointerLeaveListener(fn func(PointerContext)) {
	prev := n.OnPointerLeave
	if prev == nil {
		n.OnPointerLeave = fn
		return
	}
	n.OnPointerLeave = func(ctx PointerContext) {
		prev(ctx)
		fn(ctx)
	}
}

// --- Classes and attributes ---

// AddClass adds each class to the node's class set.
func (n *Node) AddClass(classes ...string) {
	if n.classes == nil {
		n.classes = make(map[string]struct{}, len(classes))
	}
	for _, c := range classes {
		n.classes[c] = struct{}{}
	}
}

// RemoveClass removes each class from the node's class set.
func (n *Node) RemoveClass(classes ...string) {
	for _, c := range classes {
		delete(n.classes, c)
	}
}

// HasClass reports whether the node carries class c.
func (n *Node) HasClass(c string) bool {
	_, ok := n.classes[c]
	return ok
}

// ToggleClass sets or clears class c and returns whether it is now present.
func (n *Node) ToggleClass(c string, on bool) bool {
	if on {
		n.AddClass(c)
	} else {
		n.RemoveClass(c)
	}
	return on
}

// Classes returns the node's classes in sorted order.
func (n *Node) Classes() []string {
	out := make([]string, 0, len(n.classes))
	for c := range n.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Attr returns the attribute value and whether it is set.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// SetAttr sets an attribute.
func (n *Node) SetAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string, 2)
	}
	n.attrs[key] = value
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(key string) {
	delete(n.attrs, key)
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("folio: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("folio: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("folio: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
		markSubtreeDirty(child)
	}
	n.children = n.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	if other == nil {
		return false
	}
	return isAncestor(n, other)
}

// --- Queries ---

// FindAll returns every node in the subtree rooted at n (including n) for
// which match returns true, in document order.
func (n *Node) FindAll(match func(*Node) bool) []*Node {
	var out []*Node
	n.walk(func(c *Node) bool {
		if match(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FindByID returns the first node in document order whose Name equals id.
func (n *Node) FindByID(id string) *Node {
	var found *Node
	n.walk(func(c *Node) bool {
		if c.Name == id {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindByClass returns every node in the subtree carrying any of classes.
func (n *Node) FindByClass(classes ...string) []*Node {
	return n.FindAll(func(c *Node) bool {
		for _, cl := range classes {
			if c.HasClass(cl) {
				return true
			}
		}
		return false
	})
}

// FirstByClass returns the first node carrying class, or nil.
func (n *Node) FirstByClass(class string) *Node {
	var found *Node
	n.walk(func(c *Node) bool {
		if c.HasClass(class) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindByAttrPrefix returns nodes whose attribute key starts with prefix.
func (n *Node) FindByAttrPrefix(key, prefix string) []*Node {
	return n.FindAll(func(c *Node) bool {
		v, ok := c.Attr(key)
		return ok && strings.HasPrefix(v, prefix)
	})
}

// walk visits the subtree depth-first; returning false stops the walk.
func (n *Node) walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(visit) {
			return false
		}
	}
	return true
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Image = nil
	n.UserData = nil
	n.OnClick = nil
	n.OnPointerEnter = nil
	n.OnPointerLeave = nil
	n.OnSubmit = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
