package folio

import "strconv"

// Block layout modes, stored in a node's data-layout attribute.
const (
	layoutStack = "stack" // children top to bottom (default)
	layoutGrid  = "grid"  // equal columns, rows as tall as their tallest cell
	layoutFlow  = "flow"  // children sized to content, wrapping left to right
)

const (
	maxContentWidth = 1100
	gridMinColumn   = 300
	flowItemMin     = 180
	blockGap        = 16
)

// fitText sizes a text-bearing node to width and the height of its wrapped
// text.
func fitText(n *Node, width float64) {
	pad := textPadding(n)
	s, _ := displayText(n)
	_, h := MeasureText(s, n.FontSize, width-2*pad)
	n.SetSize(width, h+2*pad)
}

// stack lays out n's visible children top to bottom, inset by pad on every
// side and separated by gap, then sets n's height to fit. Text and link
// children are wrapped to the inner width; other children keep their size.
func stack(n *Node, pad, gap float64) float64 {
	inner := n.Width - 2*pad
	y := pad
	first := true
	for _, c := range n.children {
		if !c.Visible {
			continue
		}
		if !first {
			y += gap
		}
		first = false
		if c.Type == NodeTypeText || c.Type == NodeTypeLink {
			fitText(c, inner)
		}
		c.SetPosition(pad, y)
		y += c.Height
	}
	h := y + pad
	n.SetSize(n.Width, h)
	return h
}

// blockPadding returns a block's inner padding, from its data-pad attribute.
func blockPadding(n *Node) (x, y float64) {
	v, ok := n.Attr("data-pad")
	if !ok {
		return 0, 0
	}
	p, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, 0
	}
	return p, p
}

// LayoutDocument lays out a document built by LoadMarkdown for a window of
// the given size. Sections span the full width with their content centered
// in a column; a hero section fills at least one screen.
func LayoutDocument(doc *Node, width, height float64) {
	y := 0.0
	for _, s := range doc.children {
		if !s.Visible {
			continue
		}
		padX := max(40, (width-maxContentWidth)/2)
		_, padY := blockPadding(s)
		s.SetPosition(0, y)
		s.SetSize(width, 0)
		h := layoutChildren(s, padX, padY, width-2*padX)
		if s.HasClass("hero") && h < height {
			h = height
			centerVertically(s, height)
		}
		s.SetSize(width, h)
		y += h
	}
	doc.SetSize(width, y)
}

// layoutBlock gives n the width and lays out its subtree, returning its
// height.
func layoutBlock(n *Node, width float64) float64 {
	switch n.Type {
	case NodeTypeText, NodeTypeLink, NodeTypeButton, NodeTypeInput:
		if n.NumChildren() == 0 {
			fitText(n, width)
			return n.Height
		}
	case NodeTypeImage:
		h := width * 9 / 16
		if n.Image != nil {
			b := n.Image.Bounds()
			if b.Dx() > 0 {
				h = width * float64(b.Dy()) / float64(b.Dx())
			}
		}
		n.SetSize(width, h)
		return h
	}
	n.SetSize(width, 0)
	padX, padY := blockPadding(n)
	h := layoutChildren(n, padX, padY, width-2*padX)
	n.SetSize(width, h)
	return h
}

// layoutChildren places n's children in its layout mode inside an inner
// column of the given width, and returns n's resulting height.
func layoutChildren(n *Node, padX, padY, inner float64) float64 {
	mode, _ := n.Attr("data-layout")
	switch mode {
	case layoutGrid:
		return padY + layoutGridCells(n, padX, padY, inner) + padY
	case layoutFlow:
		return padY + layoutFlowItems(n, padX, padY, inner) + padY
	}
	y := padY
	first := true
	for _, c := range n.children {
		if !c.Visible {
			continue
		}
		if !first {
			y += blockGap
		}
		first = false
		h := layoutBlock(c, inner)
		c.SetPosition(padX, y)
		y += h
	}
	return y + padY
}

func layoutGridCells(n *Node, x0, y0, inner float64) float64 {
	cols := max(1, int((inner+blockGap)/(gridMinColumn+blockGap)))
	colW := (inner - float64(cols-1)*blockGap) / float64(cols)
	y, rowH, col := 0.0, 0.0, 0
	for _, c := range n.children {
		if !c.Visible {
			continue
		}
		if col == cols {
			y += rowH + blockGap
			rowH, col = 0, 0
		}
		h := layoutBlock(c, colW)
		c.SetPosition(x0+float64(col)*(colW+blockGap), y0+y)
		rowH = max(rowH, h)
		col++
	}
	return y + rowH
}

func layoutFlowItems(n *Node, x0, y0, inner float64) float64 {
	const gap = 10
	x, y, rowH := 0.0, 0.0, 0.0
	for _, c := range n.children {
		if !c.Visible {
			continue
		}
		w := flowWidth(c, inner)
		h := layoutBlock(c, w)
		if x > 0 && x+w > inner {
			x = 0
			y += rowH + gap
			rowH = 0
		}
		c.SetPosition(x0+x, y0+y)
		x += w + gap
		rowH = max(rowH, h)
	}
	return y + rowH
}

// flowWidth is the width a flow item takes: its label plus padding for a
// single-label item, a fixed card width otherwise.
func flowWidth(c *Node, inner float64) float64 {
	label := c
	if c.NumChildren() == 1 {
		label = c.ChildAt(0)
	} else if c.NumChildren() > 1 {
		return min(flowItemMin, inner)
	}
	padX, _ := blockPadding(c)
	s, _ := displayText(label)
	w, _ := MeasureText(s, label.FontSize, 0)
	return min(w+2*padX+2*textPadding(label)+1, inner)
}

// centerVertically shifts a section's children down so they sit in the
// middle of a block of height h.
func centerVertically(s *Node, h float64) {
	top, bottom := h, 0.0
	for _, c := range s.children {
		top = min(top, c.Y)
		bottom = max(bottom, c.Y+c.Height)
	}
	dy := (h-(bottom-top))/2 - top
	if dy <= 0 {
		return
	}
	for _, c := range s.children {
		c.SetPosition(c.X, c.Y+dy)
	}
}
