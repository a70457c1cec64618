package folio

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestLoadContent(t *testing.T) {
	cfg := DefaultConfig()
	data, err := LoadContent(cfg)
	if err != nil || len(data) == 0 {
		t.Fatalf("built-in content: %d bytes, %v", len(data), err)
	}

	path := filepath.Join(t.TempDir(), "page.md")
	if err := os.WriteFile(path, []byte("# Someone {#home}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Content = path
	data, err = LoadContent(cfg)
	if err != nil || string(data) != "# Someone {#home}\n" {
		t.Errorf("file content = %q, %v", data, err)
	}

	cfg.Content = filepath.Join(t.TempDir(), "missing.md")
	if _, err := LoadContent(cfg); err == nil {
		t.Error("missing content file should fail")
	}
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Owner.Email = ""
	if _, err := NewApp(cfg, defaultContent); err == nil || !strings.Contains(err.Error(), "owner.email") {
		t.Errorf("err = %v", err)
	}
	if _, err := NewApp(DefaultConfig(), []byte("   ")); err == nil {
		t.Error("empty content should fail")
	}
}

func TestNavbarLinksFollowSections(t *testing.T) {
	a := newTestApp(t)
	var names []string
	for _, l := range a.find(t, "nav-menu").Children() {
		names = append(names, l.Name)
	}
	want := []string{
		"nav-link-home", "nav-link-about", "nav-link-skills", "nav-link-projects",
		"nav-link-experience", "nav-link-achievements", "nav-link-education", "nav-link-contact",
	}
	if !slices.Equal(names, want) {
		t.Errorf("nav links = %v", names)
	}
	if l := a.find(t, "nav-link-home"); l.Text != "Home" {
		t.Errorf("hero link label = %q", l.Text)
	}
	if l := a.find(t, "nav-link-skills"); l.Text != "Skills" {
		t.Errorf("skills link label = %q", l.Text)
	}
	if a.Nav.Sections.Active() != "home" || !a.find(t, "nav-link-home").HasClass("active") {
		t.Errorf("active section = %q", a.Nav.Sections.Active())
	}
}

func TestResizeRelayouts(t *testing.T) {
	a := newTestApp(t)
	p := a.Page
	toggle := a.find(t, "nav-toggle")
	if toggle.Visible {
		t.Fatal("toggle visible on a wide window")
	}
	heroBefore := a.find(t, "home").Height

	p.Resize(600, 700)
	step(p, a.clk)
	if !toggle.Visible {
		t.Error("toggle hidden on a narrow window")
	}
	if a.find(t, "navbar").Width != 600 {
		t.Errorf("navbar width = %v", a.find(t, "navbar").Width)
	}
	if a.find(t, "meeting-modal").Width != 600 {
		t.Errorf("modal width = %v", a.find(t, "meeting-modal").Width)
	}
	if h := a.find(t, "home").Height; h < 700 || h == heroBefore {
		t.Errorf("hero height = %v (was %v)", h, heroBefore)
	}
	if p.Viewport().ContentHeight != a.doc.Height {
		t.Errorf("content height = %v, doc = %v", p.Viewport().ContentHeight, a.doc.Height)
	}
}

func TestExternalLinksOpen(t *testing.T) {
	a := newTestApp(t)
	gh := a.Page.Root().FindByAttrPrefix("href", "https://github.com/")[0]
	gh.OnClick(ClickContext{Node: gh})
	if len(a.opener.urls) != 1 || a.opener.urls[0] != "https://github.com/AronAnand" {
		t.Errorf("opened = %v", a.opener.urls)
	}
}
