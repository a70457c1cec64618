package folio

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

// frameDuration is one tick at 60 Hz.
const frameDuration = 16 * time.Millisecond

// newTestPage returns a page driven by a mock clock.
func newTestPage(t *testing.T, opts ...PageOption) (*Page, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	p := NewPage(append([]PageOption{WithClock(clk)}, opts...)...)
	return p, clk
}

// step advances the clock by one frame and updates the page.
func step(p *Page, clk *clock.Mock) {
	clk.Add(frameDuration)
	p.Update()
}

// run steps the page for at least d of clock time.
func run(p *Page, clk *clock.Mock, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frameDuration {
		step(p, clk)
	}
}

// drain steps the page until every injected event has been consumed.
func drain(p *Page, clk *clock.Mock) {
	for i := 0; p.PendingInput() > 0 && i < 100; i++ {
		step(p, clk)
	}
}

// captureLog redirects folio's logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() { SetLogOutput(os.Stderr) })
	return &buf
}

// tallContent adds a block of the given height to p's content tree so the
// viewport has room to scroll.
func tallContent(p *Page, height float64) *Node {
	body := NewBox("content")
	body.SetSize(p.Viewport().Width, height)
	p.Root().AddChild(body)
	return body
}

func approx(a, b, eps float64) bool {
	d := a - b
	return d < eps && d > -eps
}

type fakeClipboard struct {
	texts []string
	err   error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, text)
	return nil
}

type fakeDownloader struct {
	downloads []Download
	err       error
}

func (d *fakeDownloader) Download(dl Download) error {
	d.downloads = append(d.downloads, dl)
	return d.err
}

type fakeOpener struct {
	urls []string
}

func (o *fakeOpener) OpenURL(u string) error {
	o.urls = append(o.urls, u)
	return nil
}

// testApp is an App over the built-in content with every side effect
// replaced by a recording fake.
type testApp struct {
	*App
	clk    *clock.Mock
	log    *bytes.Buffer
	clip   *fakeClipboard
	dl     *fakeDownloader
	opener *fakeOpener
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	buf := captureLog(t)
	cfg := DefaultConfig()
	cfg.Network.Enabled = false
	cfg.Meeting.TimeZone = "UTC"
	clk := clock.NewMock()
	app, err := NewApp(cfg, defaultContent, WithClock(clk))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	ta := &testApp{
		App: app, clk: clk, log: buf,
		clip: &fakeClipboard{}, dl: &fakeDownloader{}, opener: &fakeOpener{},
	}
	app.Opener = ta.opener
	app.Nav.Clipboard = ta.clip
	app.Meeting.Downloader = ta.dl
	app.Meeting.Opener = ta.opener
	app.Mount()
	step(app.Page, clk)
	return ta
}

// click clicks n and runs the page until the click is delivered.
func (a *testApp) click(n *Node) {
	a.Page.InjectClickNode(n)
	drain(a.Page, a.clk)
}

// find returns the node named id or fails the test.
func (a *testApp) find(t *testing.T, id string) *Node {
	t.Helper()
	n := a.Page.Find(id)
	if n == nil {
		t.Fatalf("node %q not found", id)
	}
	return n
}
