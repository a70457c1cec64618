package folio

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	cfg := DefaultConfig()
	cfg.Owner.Name = "Jane Q Doe"
	cfg.Owner.Email = "jane@example.com"
	cfg.Network.NodeCount = 90
	cfg.Network.Palette = []uint32{0x112233}
	cfg.Nav.ToastDuration = 5 * time.Second
	cfg.Meeting.DownloadDir = "invites"
	cfg.Meeting.TimeZone = "UTC"

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	data := "owner:\n  email: someone@example.com\nnav:\n  anchor_duration: 1s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Owner.Email != "someone@example.com" {
		t.Errorf("email = %q", cfg.Owner.Email)
	}
	if cfg.Owner.Slug != DefaultOwner().Slug {
		t.Errorf("slug = %q, want the default", cfg.Owner.Slug)
	}
	if cfg.Nav.AnchorDuration != time.Second {
		t.Errorf("anchor_duration = %v", cfg.Nav.AnchorDuration)
	}
	if cfg.Nav.ToastDuration != 3*time.Second {
		t.Errorf("toast_duration = %v, want the default", cfg.Nav.ToastDuration)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	if err := os.WriteFile(path, []byte("owner: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"email":     {func(c *Config) { c.Owner.Email = "" }, "owner.email"},
		"slug":      {func(c *Config) { c.Owner.Slug = "" }, "owner.slug"},
		"window":    {func(c *Config) { c.Window.Width = 0 }, "window size"},
		"nodes":     {func(c *Config) { c.Network.NodeCount = 0 }, "node_count"},
		"fov":       {func(c *Config) { c.Network.FOV = 180 }, "fov"},
		"threshold": {func(c *Config) { c.Nav.SectionThreshold = 1.5 }, "section_threshold"},
		"duration":  {func(c *Config) { c.Nav.ToastFade = -time.Second }, "toast_fade"},
		"alarm":     {func(c *Config) { c.Meeting.AlarmBefore = -time.Minute }, "alarm_before"},
	}
	for name, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want mention of %q", name, err, tt.want)
		}
	}
}

func TestOwnerFirstName(t *testing.T) {
	if got := DefaultOwner().FirstName(); got != "Aron" {
		t.Errorf("FirstName = %q", got)
	}
	if got := (Owner{}).FirstName(); got != "" {
		t.Errorf("FirstName of empty = %q", got)
	}
}

func TestMeetingConfigLocation(t *testing.T) {
	loc, err := MeetingConfig{TimeZone: "UTC"}.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location = %v, %v", loc, err)
	}
	if loc, _ := (MeetingConfig{}).Location(); loc != time.Local {
		t.Error("empty zone should be local")
	}
	if _, err := (MeetingConfig{TimeZone: "Nowhere/Special"}).Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}
