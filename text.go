package folio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// lineSpacingFactor is the distance between baselines relative to font size.
const lineSpacingFactor = 1.4

// Font wraps Ebitengine's text/v2 for TrueType font rendering and caches one
// face per size.
type Font struct {
	source *text.GoTextFaceSource
	faces  map[float64]*text.GoTextFace
}

// LoadFont loads a TrueType font from raw TTF/OTF data.
func LoadFont(ttfData []byte) (*Font, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("folio: failed to parse TTF data: %w", err)
	}
	return &Font{source: source, faces: make(map[float64]*text.GoTextFace)}, nil
}

// Face returns the face for the given pixel size.
func (f *Font) Face(size float64) *text.GoTextFace {
	face, ok := f.faces[size]
	if !ok {
		face = &text.GoTextFace{Source: f.source, Size: size}
		f.faces[size] = face
	}
	return face
}

// LineHeight returns the vertical distance between baselines at size.
func LineHeight(size float64) float64 {
	return size * lineSpacingFactor
}

// defaultFont is Go Regular, loaded on first use.
var defaultFont *Font

func uiFont() *Font {
	if defaultFont == nil {
		f, err := LoadFont(goregular.TTF)
		if err != nil {
			panic(err)
		}
		defaultFont = f
	}
	return defaultFont
}

// SetDefaultFont replaces the font used for all element text.
func SetDefaultFont(f *Font) {
	defaultFont = f
}

// wrapText breaks s into lines no wider than width. Explicit newlines are
// kept. A non-positive width disables wrapping.
func wrapText(s string, face text.Face, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if width > 0 && text.Advance(candidate, face) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}

// MeasureText returns the size of s wrapped to width at the given font size.
func MeasureText(s string, size, width float64) (w, h float64) {
	face := uiFont().Face(size)
	lines := wrapText(s, face, width)
	for _, l := range lines {
		w = max(w, text.Advance(l, face))
	}
	return w, float64(len(lines)) * LineHeight(size)
}

// textLayout caches a node's wrapped lines.
type textLayout struct {
	text  string
	width float64
	size  float64
	lines []string
}

// textPadding returns the inset between a node's box and its text.
func textPadding(n *Node) float64 {
	switch n.Type {
	case NodeTypeButton, NodeTypeInput:
		return 10
	default:
		return 0
	}
}

// displayText returns what the node shows: the value or placeholder for
// inputs, the text otherwise.
func displayText(n *Node) (string, bool) {
	if n.Type == NodeTypeInput {
		if n.Value == "" {
			return n.Placeholder, true
		}
		return n.Value, false
	}
	return n.Text, false
}

// textLines returns the node's wrapped lines, rebuilding the cache when the
// text, box width, or font size changed.
func (n *Node) textLines() []string {
	s, _ := displayText(n)
	width := n.Width - 2*textPadding(n)
	c := &n.layout
	if c.lines != nil && c.text == s && c.width == width && c.size == n.FontSize {
		return c.lines
	}
	c.text, c.width, c.size = s, width, n.FontSize
	if n.Type == NodeTypeInput {
		c.lines = []string{s}
	} else {
		c.lines = wrapText(s, uiFont().Face(n.FontSize), width)
	}
	return c.lines
}
