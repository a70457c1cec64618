package folio

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name LoadConfig looks for by convention.
const DefaultConfigFile = "folio.yaml"

// Owner identifies the site owner: the meeting attendee, the mailto
// recipient, and the address copied by email links.
type Owner struct {
	Name  string `koanf:"name" yaml:"name"`
	Email string `koanf:"email" yaml:"email"`
	// Slug names downloaded invites: meeting-with-{slug}-{date}.ics.
	Slug string `koanf:"slug" yaml:"slug"`
	// Domain qualifies calendar UIDs.
	Domain string `koanf:"domain" yaml:"domain"`
	// ProductID is the calendar PRODID.
	ProductID string `koanf:"product_id" yaml:"product_id"`
	GitHub    string `koanf:"github" yaml:"github"`
}

// FirstName returns the first word of the owner's name.
func (o Owner) FirstName() string {
	if f := strings.Fields(o.Name); len(f) > 0 {
		return f[0]
	}
	return o.Name
}

// WindowConfig sets the initial window.
type WindowConfig struct {
	Title  string `koanf:"title" yaml:"title"`
	Width  int    `koanf:"width" yaml:"width"`
	Height int    `koanf:"height" yaml:"height"`
}

// Config is the complete site configuration.
type Config struct {
	Owner   Owner         `koanf:"owner" yaml:"owner"`
	Window  WindowConfig  `koanf:"window" yaml:"window"`
	Content string        `koanf:"content" yaml:"content"` // markdown file; empty uses the built-in page
	Network NetworkConfig `koanf:"network" yaml:"network"`
	Nav     NavConfig     `koanf:"nav" yaml:"nav"`
	Meeting MeetingConfig `koanf:"meeting" yaml:"meeting"`
	Debug   bool          `koanf:"debug" yaml:"debug"`
}

// DefaultOwner returns the portfolio owner's identity.
func DefaultOwner() Owner {
	return Owner{
		Name:      "Aron C Anand",
		Email:     "aronc.anand3@gmail.com",
		Slug:      "aron",
		Domain:    "aroncanand.com",
		ProductID: "-//Aron C Anand Portfolio//Meeting Scheduler//EN",
		GitHub:    "https://github.com/AronAnand",
	}
}

// DefaultConfig returns a Config with the site's defaults.
func DefaultConfig() *Config {
	return &Config{
		Owner: DefaultOwner(),
		Window: WindowConfig{
			Title:  "Aron C Anand",
			Width:  defaultViewportWidth,
			Height: defaultViewportHeight,
		},
		Network: DefaultNetworkConfig(),
		Nav:     DefaultNavConfig(),
		Meeting: DefaultMeetingConfig(),
	}
}

// LoadConfig reads configuration from the given YAML file over the defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Lists in the file replace the default lists instead of merging into them.
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc()),
			WeaklyTypedInput: true,
			ZeroFields:       true,
		},
	}
	if err := k.UnmarshalWithConf("", cfg, conf); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Owner.Email == "" {
		return fmt.Errorf("owner.email is required")
	}
	if c.Owner.Slug == "" {
		return fmt.Errorf("owner.slug is required")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := c.Nav.Validate(); err != nil {
		return fmt.Errorf("nav: %w", err)
	}
	if c.Meeting.AlarmBefore < 0 {
		return fmt.Errorf("meeting.alarm_before must be non-negative")
	}
	return nil
}

// validFraction reports whether v is a visibility ratio.
func validFraction(v float64) bool {
	return v >= 0 && v <= 1
}

// nonNegative returns an error naming field when d is negative.
func nonNegative(field string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%s must be non-negative", field)
	}
	return nil
}
