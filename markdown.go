package folio

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	gmtext "github.com/yuin/goldmark/text"
)

// Theme colors for built content.
var (
	accentColor     = ColorHex(0x6366f1)
	cardBackground  = ColorHex(0x111a22).WithAlpha(0.85)
	tagBackground   = ColorHex(0x1e2a35)
	mutedTextColor  = ColorHex(0x9aa8b4)
	successColor    = ColorHex(0x4ade80)
	buttonSecondary = ColorHex(0x2d3b48)
)

const (
	heroTitleSize    = 48
	sectionTitleSize = 32
	cardTitleSize    = 20
	statNumberSize   = 32
	bodyTextSize     = 16
)

// LoadMarkdown builds a page document from markdown and lays it out for
// the given width.
//
//   - "# Title" starts the hero section (class hero) whose content box has
//     class hero-content.
//   - "## Heading {#id}" starts a section with that id. Heading attributes
//     item=class and strong=class tag the section's list items and the
//     bold text inside them.
//   - "### Heading {.class}" starts a card in the section's grid; it may
//     override item and strong.
//   - Paragraphs become text; paragraphs holding only links or images
//     become a row of link nodes or lazily loaded images.
//   - List items become items tagged with the current item class.
//
// The returned node is a container whose children are the sections.
func LoadMarkdown(src []byte, width float64) (*Node, error) {
	md := goldmark.New(goldmark.WithParserOptions(
		parser.WithAttribute(),
		parser.WithAutoHeadingID(),
	))
	doc := md.Parser().Parse(gmtext.NewReader(src))

	b := &mdBuilder{src: src, doc: NewBox("main")}
	b.doc.AddClass("main")
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		b.block(c)
	}
	if b.doc.NumChildren() == 0 {
		return nil, fmt.Errorf("markdown: no content")
	}
	LayoutDocument(b.doc, width, width*10/16)
	return b.doc, nil
}

type mdBuilder struct {
	src []byte
	doc *Node

	section *Node
	grid    *Node
	target  *Node // receives paragraphs and lists

	sectionItem, sectionStrong string
	item, strong               string
	count                      int
}

func (b *mdBuilder) name(kind string) string {
	b.count++
	prefix := "page"
	if b.section != nil {
		prefix = b.section.Name
	}
	return prefix + "-" + kind + "-" + strconv.Itoa(b.count)
}

func (b *mdBuilder) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		b.heading(n)
	case *ast.Paragraph:
		b.paragraph(n)
	case *ast.List:
		b.list(n)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		t := NewText(b.name("code"), strings.TrimRight(string(linesOf(n, b.src)), "\n"))
		t.FontSize = 14
		t.Color = mutedTextColor
		b.container().AddChild(t)
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			b.block(c)
		}
	}
}

// container returns the node new blocks go into, opening an untitled
// section when content precedes the first heading.
func (b *mdBuilder) container() *Node {
	if b.target == nil {
		s := NewSection("intro")
		s.AddClass("section")
		s.SetAttr("data-pad", "40")
		b.doc.AddChild(s)
		b.section, b.target = s, s
	}
	return b.target
}

func (b *mdBuilder) heading(h *ast.Heading) {
	title := plainText(h, b.src)
	id := attrString(h, "id")
	classes := strings.Fields(attrString(h, "class"))

	switch h.Level {
	case 1:
		if id == "" {
			id = "home"
		}
		s := NewSection(id)
		s.AddClass("hero")
		s.AddClass(classes...)
		s.SetAttr("data-pad", "96")
		content := NewBox("hero-content")
		content.AddClass("hero-content")
		t := NewText(b.name("title"), title)
		t.AddClass("hero-title")
		t.FontSize = heroTitleSize
		content.AddChild(t)
		s.AddChild(content)
		b.doc.AddChild(s)
		b.section, b.target, b.grid = s, content, nil
		b.sectionItem, b.sectionStrong = "", ""
		b.item, b.strong = "", ""
	case 2:
		s := NewSection(id)
		s.AddClass("section")
		s.AddClass(classes...)
		s.SetAttr("data-pad", "64")
		t := NewText(id+"-title", title)
		t.AddClass("section-title")
		t.FontSize = sectionTitleSize
		s.AddChild(t)
		b.doc.AddChild(s)
		b.section, b.target, b.grid = s, s, nil
		b.sectionItem, b.sectionStrong = attrString(h, "item"), attrString(h, "strong")
		b.item, b.strong = b.sectionItem, b.sectionStrong
	default:
		b.container()
		if b.grid == nil {
			b.grid = NewBox(b.name("grid"))
			b.grid.SetAttr("data-layout", layoutGrid)
			b.section.AddChild(b.grid)
		}
		card := NewBox(b.name("card"))
		card.AddClass(classes...)
		card.Background = cardBackground
		card.Shadow = 8
		card.SetAttr("data-pad", "20")
		t := NewText(card.Name+"-title", title)
		t.AddClass("card-title")
		t.FontSize = cardTitleSize
		card.AddChild(t)
		b.grid.AddChild(card)
		b.target = card
		b.item, b.strong = b.sectionItem, b.sectionStrong
		if v := attrString(h, "item"); v != "" {
			b.item = v
		}
		if v := attrString(h, "strong"); v != "" {
			b.strong = v
		}
	}
}

func (b *mdBuilder) paragraph(p *ast.Paragraph) {
	parent := b.container()
	if b.target == b.section {
		b.grid = nil
	}
	if row := b.inlineRow(p); row != nil {
		parent.AddChild(row)
		return
	}
	t := NewText(b.name("text"), plainText(p, b.src))
	t.FontSize = bodyTextSize
	t.Color = mutedTextColor
	parent.AddChild(t)
}

// inlineRow builds a flow row when a paragraph holds only links and
// images. It returns nil for any other paragraph.
func (b *mdBuilder) inlineRow(p *ast.Paragraph) *Node {
	var nodes []*Node
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Link:
			nodes = append(nodes, b.link(c))
		case *ast.Image:
			img := NewImage(b.name("image"), string(c.Destination))
			img.SetAttr("alt", plainText(c, b.src))
			nodes = append(nodes, img)
		case *ast.Text:
			if len(bytes.TrimSpace(c.Segment.Value(b.src))) != 0 {
				return nil
			}
		default:
			return nil
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	if len(nodes) == 1 && nodes[0].Type == NodeTypeImage {
		return nodes[0]
	}
	row := NewBox(b.name("row"))
	row.SetAttr("data-layout", layoutFlow)
	for _, n := range nodes {
		row.AddChild(n)
	}
	return row
}

// link builds a link node. In-page links are named {section}-to-{target}.
func (b *mdBuilder) link(l *ast.Link) *Node {
	href := string(l.Destination)
	name := b.name("link")
	if strings.HasPrefix(href, "#") && len(href) > 1 && b.section != nil {
		name = b.section.Name + "-to-" + href[1:]
	}
	n := NewLink(name, plainText(l, b.src), href)
	n.Color = accentColor
	n.FontSize = bodyTextSize
	return n
}

func (b *mdBuilder) list(l *ast.List) {
	parent := b.container()
	if b.target == b.section {
		b.grid = nil
	}
	row := NewBox(b.name("list"))
	row.SetAttr("data-layout", layoutFlow)
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		if li, ok := c.(*ast.ListItem); ok {
			row.AddChild(b.listItem(li))
		}
	}
	parent.AddChild(row)
}

// listItem builds an item box. Bold text becomes its own node tagged with
// the strong class; the rest becomes the label.
func (b *mdBuilder) listItem(li *ast.ListItem) *Node {
	item := NewBox(b.name("item"))
	if b.item != "" {
		item.AddClass(b.item)
	}
	item.Background = tagBackground
	item.SetAttr("data-pad", "10")

	var label strings.Builder
	var href string
	ast.Walk(li, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Emphasis:
			if n.Level == 2 {
				s := NewText(b.name("strong"), plainText(n, b.src))
				if b.strong != "" {
					s.AddClass(b.strong)
				}
				s.FontSize = statNumberSize
				s.Color = accentColor
				item.AddChild(s)
				return ast.WalkSkipChildren, nil
			}
		case *ast.Link:
			href = string(n.Destination)
		case *ast.Text:
			label.Write(n.Segment.Value(b.src))
			if n.SoftLineBreak() {
				label.WriteByte(' ')
			}
		case *ast.String:
			label.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})

	text := strings.TrimSpace(label.String())
	if text != "" {
		var t *Node
		if href != "" {
			t = NewLink(b.name("link"), text, href)
			t.Color = accentColor
		} else {
			t = NewText(b.name("label"), text)
		}
		t.FontSize = 14
		item.AddChild(t)
	}
	return item
}

// plainText concatenates the text under n.
func plainText(n ast.Node, src []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(src))
			if c.SoftLineBreak() {
				sb.WriteByte(' ')
			}
			if c.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// linesOf returns the raw source lines of a block node.
func linesOf(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

// attrString returns a heading attribute as a string.
func attrString(n ast.Node, name string) string {
	v, ok := n.AttributeString(name)
	if !ok {
		return ""
	}
	switch v := v.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
