package folio

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed content/portfolio.md
var defaultContent []byte

// LoadContent returns the markdown named by cfg.Content, or the built-in
// page when it is empty.
func LoadContent(cfg *Config) ([]byte, error) {
	if cfg.Content == "" {
		return defaultContent, nil
	}
	data, err := os.ReadFile(cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("reading content %s: %w", cfg.Content, err)
	}
	return data, nil
}

// App owns one instance of each component and the page they run on.
type App struct {
	Config  *Config
	Page    *Page
	Nav     *Nav
	Network *NetworkRenderer
	Meeting *MeetingScheduler

	// Opener opens external links.
	Opener URLOpener

	doc    *Node
	navbar *Node
	modal  *Node
}

// NewApp builds the page from markdown content and creates the components.
// Nothing is wired until Mount.
func NewApp(cfg *Config, content []byte, opts ...PageOption) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	w, h := float64(cfg.Window.Width), float64(cfg.Window.Height)
	p := NewPage(append([]PageOption{WithViewportSize(w, h)}, opts...)...)
	vp := p.Viewport()

	doc, err := LoadMarkdown(content, vp.Width)
	if err != nil {
		return nil, fmt.Errorf("building page: %w", err)
	}
	p.Root().AddChild(doc)

	seed := uint64(p.Now().UnixNano())
	a := &App{
		Config:  cfg,
		Page:    p,
		Opener:  BrowserOpener{},
		doc:     doc,
		Network: NewNetworkRenderer(NewNetwork(cfg.Network, rand.New(rand.NewPCG(seed, seed>>1|1))), nil),
		Nav:     NewNav(cfg.Nav, cfg.Owner),
		Meeting: NewMeetingScheduler(cfg.Meeting, cfg.Owner),
	}
	a.navbar = buildNavbar(cfg.Owner, doc)
	p.Overlay().AddChild(a.navbar)
	a.modal = buildMeetingModal()
	p.Overlay().AddChild(a.modal)
	a.layout(vp.Width, vp.Height)
	return a, nil
}

// Mount wires every component into the page ("page ready").
func (a *App) Mount() {
	p := a.Page
	if a.Config.Network.Enabled {
		a.Network.Mount(p)
	}
	a.Nav.Mount(p)
	a.Meeting.Mount(p)
	if m := a.Nav.Menu; m != nil {
		m.OnChange = func(MenuState) {
			layoutNavbar(a.navbar, p.Viewport().Width)
		}
	}
	a.wireLinks()
	p.OnResize(a.layout)
}

// Run mounts the app and opens its window.
func (a *App) Run() error {
	a.Mount()
	return Run(a.Page, RunConfig{
		Title:  a.Config.Window.Title,
		Width:  a.Config.Window.Width,
		Height: a.Config.Window.Height,
		Debug:  a.Config.Debug,
	})
}

// wireLinks makes "#meeting-modal" links open the meeting dialog and hands
// external links to the opener. In-page anchors belong to Nav.
func (a *App) wireLinks() {
	var links []*Node
	for _, tree := range []*Node{a.Page.Overlay(), a.Page.Root()} {
		links = append(links, tree.FindAll(func(n *Node) bool { return n.Type == NodeTypeLink })...)
	}
	for _, link := range links {
		href, _ := link.Attr("href")
		switch {
		case href == "#meeting-modal":
			link.AddClickListener(func(ClickContext) { a.Meeting.Open() })
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"), strings.HasPrefix(href, "mailto:"):
			link.AddClickListener(func(ClickContext) {
				if err := a.Opener.OpenURL(href); err != nil {
					logf("opening %s: %v", href, err)
				}
			})
		}
	}
}

func (a *App) layout(w, h float64) {
	LayoutDocument(a.doc, w, h)
	layoutNavbar(a.navbar, w)
	layoutModal(a.modal, w, h)
}

// --- Chrome ---

const (
	navbarHeight      = 64
	navBreakpoint     = 768
	modalWidth        = 520
	modalInputHeight  = 40
	modalContentPad   = 28
	modalFieldSpacing = 10
)

var (
	navbarBackground = ColorHex(0x0a0f14).WithAlpha(0.95)
	modalBackdrop    = Color{0, 0, 0, 0.7}
	modalBackground  = ColorHex(0x111a22)
)

// buildNavbar creates the fixed navbar with a link to every titled section.
func buildNavbar(owner Owner, doc *Node) *Node {
	bar := NewBox("navbar")
	bar.AddClass("navbar")
	bar.Background = navbarBackground

	brand := NewLink("nav-brand", owner.Name, "#home")
	brand.AddClass("nav-logo")
	brand.FontSize = 20
	bar.AddChild(brand)

	menu := NewBox("nav-menu")
	menu.AddClass("nav-menu")
	menu.Background = navbarBackground
	for _, s := range doc.Children() {
		if s.Type != NodeTypeSection || s.Name == "" {
			continue
		}
		label := s.Name
		if t := s.FirstByClass("section-title"); t != nil {
			label = t.Text
		} else if s.HasClass("hero") {
			label = "Home"
		}
		link := NewLink("nav-link-"+s.Name, label, "#"+s.Name)
		link.AddClass("nav-link")
		link.FontSize = 15
		menu.AddChild(link)
	}
	bar.AddChild(menu)

	toggle := NewButton("nav-toggle", "Menu")
	toggle.AddClass("nav-toggle")
	toggle.Background = buttonSecondary
	bar.AddChild(toggle)
	return bar
}

// layoutNavbar places the links in a row on wide windows. Narrow windows
// show the toggle and drop the links below the bar while the menu is
// active.
func layoutNavbar(bar *Node, w float64) {
	bar.SetPosition(0, 0)
	bar.SetSize(w, navbarHeight)
	brand := bar.FindByID("nav-brand")
	menu := bar.FirstByClass("nav-menu")
	toggle := bar.FirstByClass("nav-toggle")

	fitText(brand, 0)
	bw, _ := MeasureText(brand.Text, brand.FontSize, 0)
	brand.SetSize(bw+1, brand.Height)
	brand.SetPosition(24, (navbarHeight-brand.Height)/2)

	narrow := w < navBreakpoint
	toggle.Visible = narrow
	toggle.SetSize(80, 36)
	toggle.SetPosition(w-24-toggle.Width, (navbarHeight-toggle.Height)/2)

	if narrow {
		menu.Visible = menu.HasClass("active")
		menu.SetPosition(0, navbarHeight)
		menu.SetSize(w, 0)
		stack(menu, 16, 12)
		return
	}
	menu.Visible = true
	x := 0.0
	for _, link := range menu.Children() {
		lw, lh := MeasureText(link.Text, link.FontSize, 0)
		link.SetSize(lw+1, lh)
		link.SetPosition(x, (navbarHeight-lh)/2)
		x += lw + 28
	}
	menu.SetSize(max(0, x-28), navbarHeight)
	menu.SetPosition(w-24-menu.Width, 0)
}

// modalField is one labeled input of the meeting form.
type modalField struct {
	id, label, placeholder, value string
}

var meetingFields = []modalField{
	{fieldGuestName, "Your Name", "Jane Doe", ""},
	{fieldGuestEmail, "Your Email", "jane@example.com", ""},
	{fieldDate, "Date", "YYYY-MM-DD", ""},
	{fieldTime, "Time", "HH:MM", ""},
	{fieldDuration, "Duration (minutes)", "30", "30"},
	{fieldMeetingLink, "Meeting Link", "https://meet.example.com/...", ""},
	{fieldTopic, "Topic / Agenda", "What would you like to discuss?", ""},
}

// buildMeetingModal creates the hidden meeting dialog: a full-screen
// backdrop holding a close button, a title, and the form.
func buildMeetingModal() *Node {
	modal := NewBox("meeting-modal")
	modal.AddClass("modal")
	modal.Background = modalBackdrop
	modal.Visible = false

	content := NewBox("modal-content")
	content.AddClass("modal-content")
	content.Background = modalBackground
	content.Shadow = 12
	content.Interactable = true
	modal.AddChild(content)

	closeBtn := NewButton("modal-close", "×")
	closeBtn.AddClass("modal-close")
	closeBtn.FontSize = 22
	content.AddChild(closeBtn)

	title := NewText("modal-title", "Schedule a Meeting")
	title.FontSize = 24
	content.AddChild(title)

	container := NewBox("meeting-form-container")
	container.AddClass("form-container")
	content.AddChild(container)

	form := NewForm("meeting-form")
	for _, f := range meetingFields {
		label := NewText(f.id+"-label", f.label)
		label.Color = mutedTextColor
		form.AddChild(label)
		in := NewInput(f.id, f.placeholder)
		in.Value = f.value
		form.AddChild(in)
	}
	submit := NewButton("meeting-submit", "Send Request")
	submit.AddClass("btn", "btn-primary")
	submit.SetAttr("type", "submit")
	submit.Background = accentColor
	form.AddChild(submit)
	container.AddChild(form)
	return modal
}

// layoutModal sizes the backdrop to the window and centers the dialog.
func layoutModal(modal *Node, w, h float64) {
	modal.SetPosition(0, 0)
	modal.SetSize(w, h)
	content := modal.FindByID("modal-content")
	cw := min(modalWidth, w-32)
	inner := cw - 2*modalContentPad

	if form := content.FindByID("meeting-form"); form != nil {
		form.SetSize(inner, 0)
		for _, c := range form.Children() {
			switch c.Type {
			case NodeTypeInput:
				c.SetSize(inner, modalInputHeight)
			case NodeTypeButton:
				c.SetSize(inner, modalInputHeight+4)
			}
		}
		stack(form, 0, modalFieldSpacing)
	}
	container := content.FindByID("meeting-form-container")
	container.SetSize(inner, 0)
	height := 0.0
	for _, c := range container.Children() {
		height = max(height, c.Height)
	}
	container.SetSize(inner, height)

	title := content.FindByID("modal-title")
	content.SetSize(cw, 0)
	fitText(title, inner-40)
	title.SetPosition(modalContentPad, modalContentPad)
	container.SetPosition(modalContentPad, title.Y+title.Height+16)
	closeBtn := content.FindByID("modal-close")
	closeBtn.SetSize(36, 36)
	closeBtn.SetPosition(cw-modalContentPad-closeBtn.Width+10, modalContentPad-10)

	ch := container.Y + container.Height + modalContentPad
	content.SetSize(cw, ch)
	content.SetPosition((w-cw)/2, max(16, (h-ch)/2))
}
