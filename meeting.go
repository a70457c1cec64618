package folio

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"
	"github.com/pkg/browser"
)

// MeetingConfig configures the meeting request composer.
type MeetingConfig struct {
	// DownloadDir receives invites without asking. Empty opens a save
	// dialog starting in the working directory.
	DownloadDir string `koanf:"download_dir" yaml:"download_dir"`
	// TimeZone is the IANA zone the form's date and time are read in.
	// Empty uses the local zone.
	TimeZone string `koanf:"time_zone" yaml:"time_zone"`
	// AlarmBefore is how long before the start the invite's reminder fires.
	AlarmBefore time.Duration `koanf:"alarm_before" yaml:"alarm_before"`
}

// DefaultMeetingConfig returns the composer defaults.
func DefaultMeetingConfig() MeetingConfig {
	return MeetingConfig{AlarmBefore: defaultAlarmBefore}
}

// Location resolves TimeZone.
func (c MeetingConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("meeting time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

const (
	defaultAlarmBefore = 15 * time.Minute

	// InviteMIMEType is the media type of downloaded invites.
	InviteMIMEType = "text/calendar"

	formDateTimeLayout = "2006-01-02T15:04"
	mailDateLayout     = "Monday, January 2, 2006 at 03:04 PM"
)

// Form field ids read on submission.
const (
	fieldGuestName   = "guest-name"
	fieldGuestEmail  = "guest-email"
	fieldDate        = "meeting-date"
	fieldTime        = "meeting-time"
	fieldDuration    = "meeting-duration"
	fieldMeetingLink = "meeting-link"
	fieldTopic       = "meeting-topic"
)

// MeetingRequest is one submission of the meeting form.
type MeetingRequest struct {
	GuestName   string
	GuestEmail  string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Duration    int    // minutes
	MeetingLink string
	Topic       string
}

// ReadMeetingRequest reads the seven form fields under form. The duration
// is the leading integer of its field; a blank topic becomes
// "Meeting with {guest}".
func ReadMeetingRequest(form *Node) MeetingRequest {
	value := func(id string) string {
		if n := form.FindByID(id); n != nil {
			return n.Value
		}
		return ""
	}
	req := MeetingRequest{
		GuestName:   value(fieldGuestName),
		GuestEmail:  value(fieldGuestEmail),
		Date:        value(fieldDate),
		Time:        value(fieldTime),
		Duration:    leadingInt(value(fieldDuration)),
		MeetingLink: value(fieldMeetingLink),
		Topic:       value(fieldTopic),
	}
	if req.Topic == "" {
		req.Topic = "Meeting with " + req.GuestName
	}
	return req
}

// leadingInt parses the integer at the start of s, ignoring leading space
// and anything after the digits. It returns 0 when there is none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// Start returns the meeting start, reading Date and Time in loc.
func (r MeetingRequest) Start(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(formDateTimeLayout, r.Date+"T"+r.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("meeting start %sT%s: %w", r.Date, r.Time, err)
	}
	return t, nil
}

// End returns the start plus Duration minutes.
func (r MeetingRequest) End(loc *time.Location) (time.Time, error) {
	start, err := r.Start(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(r.Duration) * time.Minute), nil
}

// BuildInvite returns a calendar with a single event for req, sent by the
// guest to owner, with a reminder 15 minutes before the start. now stamps
// the event. A request whose date or time does not parse still produces an
// invite, with zero start and end times.
func BuildInvite(req MeetingRequest, owner Owner, now time.Time, loc *time.Location) (*ics.Calendar, error) {
	return buildInvite(req, owner, now, loc, defaultAlarmBefore)
}

func buildInvite(req MeetingRequest, owner Owner, now time.Time, loc *time.Location, alarmBefore time.Duration) (*ics.Calendar, error) {
	start, err := req.Start(loc)
	if err != nil {
		logf("invite: %v", err)
	}
	end := start
	if err == nil {
		end, _ = req.End(loc)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating invite uid: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(owner.ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodRequest)

	summary := "Meeting with " + req.GuestName
	event := cal.AddEvent(id.String() + "@" + owner.Domain)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetDtStampTime(now)
	event.SetProperty(ics.ComponentPropertyOrganizer, "mailto:"+req.GuestEmail, ics.WithCN(req.GuestName))
	event.AddProperty(ics.ComponentPropertyAttendee, "mailto:"+owner.Email,
		ics.CalendarUserTypeIndividual,
		ics.ParticipationRoleReqParticipant,
		ics.ParticipationStatusNeedsAction,
		ics.WithCN(owner.Name),
	)
	event.SetSummary(summary)
	event.SetDescription(fmt.Sprintf("%s\n\nMeeting Link: %s\n\nScheduled by: %s (%s)",
		req.Topic, req.MeetingLink, req.GuestName, req.GuestEmail))
	event.SetLocation(req.MeetingLink)
	event.SetURL(req.MeetingLink)
	event.SetStatus(ics.ObjectStatusConfirmed)
	event.SetSequence(0)

	alarm := event.AddAlarm()
	alarm.SetTrigger(alarmTrigger(alarmBefore))
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetProperty(ics.ComponentPropertyDescription,
		fmt.Sprintf("%s in %d minutes", summary, int(alarmBefore.Minutes())))
	return cal, nil
}

// alarmTrigger formats a negative duration trigger such as -PT15M.
func alarmTrigger(before time.Duration) string {
	if before%time.Minute == 0 {
		return fmt.Sprintf("-PT%dM", int(before/time.Minute))
	}
	return fmt.Sprintf("-PT%dS", int(before/time.Second))
}

// InviteFilename names the invite for a meeting on date.
func InviteFilename(slug, date string) string {
	return fmt.Sprintf("meeting-with-%s-%s.ics", slug, date)
}

// MailtoURL returns a mailto link to owner with the request as a pre-filled
// subject and body.
func MailtoURL(owner Owner, req MeetingRequest, loc *time.Location) string {
	when := "Invalid Date"
	if start, err := req.Start(loc); err == nil {
		when = start.Format(mailDateLayout)
	}
	body := fmt.Sprintf(`Hi %s,

I'd like to schedule a meeting with you.

📅 Date & Time: %s
⏱️ Duration: %d minutes
🔗 Meeting Link: %s

📋 Topic/Agenda:
%s

Looking forward to connecting!

Best regards,
%s
%s`, owner.FirstName(), when, req.Duration, req.MeetingLink, req.Topic, req.GuestName, req.GuestEmail)

	return "mailto:" + owner.Email +
		"?subject=" + encodeComponent("Meeting Request: "+req.Topic) +
		"&body=" + encodeComponent(body)
}

// componentUnescaper undoes the query escaping of the marks a mail client
// expects literally in a URI component, and writes spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s for a URI query value. Letters, digits
// and -_.!~*'() pass through unchanged.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// --- Side effects ---

// Download is a file offered to the user.
type Download struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Downloader saves a Download.
type Downloader interface {
	Download(d Download) error
}

// DialogDownloader asks where to save with the native save dialog. A
// canceled dialog is not an error.
type DialogDownloader struct {
	Dir string
}

// Download shows the save dialog and writes the file to the chosen path.
func (dd DialogDownloader) Download(d Download) error {
	path, err := zenity.SelectFileSave(
		zenity.Title("Save calendar invite"),
		zenity.Filename(filepath.Join(dd.Dir, d.Filename)),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "Calendar",
			Patterns: []string{"*.ics"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return fmt.Errorf("save dialog: %w", err)
	}
	return writeDownload(path, d.Data)
}

// DirDownloader writes downloads into Dir, creating it if needed.
type DirDownloader struct {
	Dir string
}

// Download writes d to Dir/d.Filename.
func (dd DirDownloader) Download(d Download) error {
	if err := os.MkdirAll(dd.Dir, 0o755); err != nil {
		return fmt.Errorf("creating download dir: %w", err)
	}
	return writeDownload(filepath.Join(dd.Dir, d.Filename), d.Data)
}

func writeDownload(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// URLOpener hands a URL to the system, e.g. a mailto link to the mail
// client.
type URLOpener interface {
	OpenURL(u string) error
}

// BrowserOpener opens URLs with the desktop's default handler.
type BrowserOpener struct{}

// OpenURL opens u.
func (BrowserOpener) OpenURL(u string) error {
	return browser.OpenURL(u)
}

// --- Modal ---

// ModalState is the meeting dialog's open state.
type ModalState uint8

const (
	ModalClosed ModalState = iota
	ModalOpen
)

func (s ModalState) String() string {
	if s == ModalOpen {
		return "open"
	}
	return "closed"
}

const modalLockOwner = "modal"

// MeetingScheduler runs the meeting dialog: it opens and closes the modal
// and turns each form submission into a downloaded invite and an email
// draft.
type MeetingScheduler struct {
	cfg   MeetingConfig
	owner Owner
	loc   *time.Location

	// Downloader saves the invite.
	Downloader Downloader
	// Opener opens the mailto link.
	Opener URLOpener

	page      *Page
	modal     *Node
	form      *Node
	container *Node
	state     ModalState
	defaults  map[*Node]string
	submitted int
}

// NewMeetingScheduler creates a scheduler. Invites go to cfg.DownloadDir
// when set and through a save dialog otherwise.
func NewMeetingScheduler(cfg MeetingConfig, owner Owner) *MeetingScheduler {
	loc, err := cfg.Location()
	if err != nil {
		logf("%v; using local time", err)
		loc = time.Local
	}
	m := &MeetingScheduler{
		cfg:    cfg,
		owner:  owner,
		loc:    loc,
		Opener: BrowserOpener{},
	}
	if cfg.DownloadDir != "" {
		m.Downloader = DirDownloader{Dir: cfg.DownloadDir}
	} else {
		m.Downloader = DialogDownloader{}
	}
	return m
}

// Mount wires the modal, its close paths, and the form. Missing elements
// are skipped.
func (m *MeetingScheduler) Mount(p *Page) {
	m.page = p
	m.modal = p.Find("meeting-modal")
	m.form = p.Find("meeting-form")

	if date := p.Find(fieldDate); date != nil {
		date.SetAttr("min", p.Now().In(m.loc).Format("2006-01-02"))
	}
	if m.form != nil {
		m.container = m.form.Parent
		m.form.OnSubmit = func(SubmitContext) { m.Submit() }
		m.defaults = make(map[*Node]string)
		m.form.walk(func(n *Node) bool {
			if n.Type == NodeTypeInput {
				m.defaults[n] = n.Value
			}
			return true
		})
	}
	if btn := p.FirstByClass("modal-close"); btn != nil {
		btn.AddClickListener(func(ClickContext) { m.Close() })
	}
	if m.modal != nil {
		m.modal.Interactable = true
		m.modal.AddClickListener(func(ctx ClickContext) {
			if ctx.Node == m.modal {
				m.Close()
			}
		})
		m.project()
	}
	p.OnKeyDown(func(ctx KeyContext) {
		if ctx.Key == ebiten.KeyEscape && m.state == ModalOpen {
			m.Close()
		}
	})
}

// State returns the modal state.
func (m *MeetingScheduler) State() ModalState {
	return m.state
}

// Submitted returns the number of handled submissions.
func (m *MeetingScheduler) Submitted() int {
	return m.submitted
}

// Open shows the modal and locks page scrolling.
func (m *MeetingScheduler) Open() {
	if m.modal == nil || m.state == ModalOpen {
		return
	}
	m.state = ModalOpen
	m.page.LockScroll(modalLockOwner)
	m.project()
}

// Close hides the modal and releases its scroll lock.
func (m *MeetingScheduler) Close() {
	if m.modal == nil || m.state == ModalClosed {
		return
	}
	m.state = ModalClosed
	m.page.UnlockScroll(modalLockOwner)
	if m.modal.Contains(m.page.Focus()) {
		m.page.SetFocus(nil)
	}
	m.project()
}

func (m *MeetingScheduler) project() {
	open := m.state == ModalOpen
	m.modal.Visible = open
	m.modal.ToggleClass("active", open)
}

// Submit handles the form: it downloads the invite, opens the email draft,
// and replaces the form with a confirmation. Failures are logged; the
// confirmation always appears.
func (m *MeetingScheduler) Submit() {
	if m.form == nil || m.form.Parent == nil {
		return
	}
	req := ReadMeetingRequest(m.form)
	m.submitted++

	cal, err := buildInvite(req, m.owner, m.page.Now(), m.loc, m.cfg.AlarmBefore)
	if err != nil {
		logf("building invite: %v", err)
	} else {
		err := m.Downloader.Download(Download{
			Filename: InviteFilename(m.owner.Slug, req.Date),
			MIMEType: InviteMIMEType,
			Data:     []byte(cal.Serialize()),
		})
		if err != nil {
			logf("downloading invite: %v", err)
		}
	}

	if err := m.Opener.OpenURL(MailtoURL(m.owner, req, m.loc)); err != nil {
		logf("opening email draft: %v", err)
	}

	m.showConfirmation()
}

func (m *MeetingScheduler) showConfirmation() {
	c := m.container
	if c == nil {
		return
	}
	if c.Contains(m.page.Focus()) {
		m.page.SetFocus(nil)
	}
	c.RemoveChildren()

	box := NewBox("success-message")
	box.AddClass("success-message")
	box.SetSize(c.Width, 0)

	icon := NewText("success-icon", "✓")
	icon.AddClass("success-icon")
	icon.FontSize = 36
	icon.Color = successColor

	title := NewText("success-title", "Meeting Request Sent!")
	title.FontSize = 22

	info := NewText("success-info", fmt.Sprintf(
		"A calendar invite has been downloaded and an email notification is being sent to %s.", m.owner.FirstName()))
	note := NewText("success-note", "Make sure to send the email that just opened to complete the request.")
	note.AddClass("success-note")
	note.Color = mutedTextColor

	again := NewButton("schedule-another", "Schedule Another")
	again.AddClass("btn", "btn-secondary")
	again.Background = buttonSecondary
	again.SetSize(200, 44)
	again.OnClick = func(ClickContext) { m.Reset() }

	for _, n := range []*Node{icon, title, info, note, again} {
		box.AddChild(n)
	}
	stack(box, 0, 12)
	c.AddChild(box)
}

// Reset replaces the confirmation with the form, its fields restored to
// their initial values.
func (m *MeetingScheduler) Reset() {
	c := m.container
	if c == nil || m.form.Parent == c {
		return
	}
	for c.NumChildren() > 0 {
		c.ChildAt(0).Dispose()
	}
	for n, v := range m.defaults {
		n.Value = v
	}
	c.AddChild(m.form)
}
