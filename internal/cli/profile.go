package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/attribution"
	"github.com/dmitrymomot/attribution/pkg/fingerprint"
	"github.com/dmitrymomot/attribution/pkg/referrer"
)

// ErrInvalidProfile is returned for profiles that fail validation.
var ErrInvalidProfile = errors.New("invalid device profile")

// Profile describes a simulated device. It is read from YAML:
//
//	os: android
//	locale: en_US
//	fields:
//	  brand: google
//	  api_level: 34
//	referrer:
//	  install_referrer: utm_source=google&gclid=ABC123
//	  delay: 150ms
//	advertising_id:
//	  id: 38400000-8cf0-11bd-b23e-10b96e40000d
//	  tracking_allowed: true
type Profile struct {
	OS            string          `yaml:"os"`
	Locale        string          `yaml:"locale"`
	Fields        map[string]any  `yaml:"fields"`
	Referrer      *ReferrerConfig `yaml:"referrer"`
	AdvertisingID *AdIDConfig     `yaml:"advertising_id"`
}

// ReferrerConfig is the install-referrer payload the device reports.
type ReferrerConfig struct {
	InstallReferrer   string        `yaml:"install_referrer"`
	ClickTimestamp    int64         `yaml:"click_timestamp"`
	InstallTimestamp  int64         `yaml:"install_timestamp"`
	InstallVersion    string        `yaml:"install_version"`
	GooglePlayInstant bool          `yaml:"google_play_instant"`
	Delay             time.Duration `yaml:"delay"`
	Unavailable       bool          `yaml:"unavailable"`
}

// AdIDConfig is the advertising identifier and the user's consent.
type AdIDConfig struct {
	ID              string `yaml:"id"`
	TrackingAllowed bool   `yaml:"tracking_allowed"`
}

// LoadProfile reads and validates a YAML device profile.
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var p Profile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every field value is a scalar.
func (p *Profile) Validate() error {
	for name, v := range p.Fields {
		switch v.(type) {
		case nil, string, bool, int, int64, float64:
		default:
			return fmt.Errorf("%w: field %q must be a scalar, got %T", ErrInvalidProfile, name, v)
		}
	}
	if p.OS != "" && fingerprint.ParseOS(p.OS) == fingerprint.OSOther && !strings.EqualFold(strings.TrimSpace(p.OS), string(fingerprint.OSOther)) {
		return fmt.Errorf("%w: unknown os %q", ErrInvalidProfile, p.OS)
	}
	return nil
}

// Options turns the profile into client options.
func (p *Profile) Options() []attribution.Option {
	fields := fingerprint.FromMap(p.Fields)
	if p.Locale != "" {
		locale := p.Locale
		fields = append(fields, fingerprint.LocaleField(func(context.Context) (string, error) {
			return locale, nil
		}))
	}

	opts := []attribution.Option{
		attribution.WithDevice(fingerprint.ParseOS(p.OS), fields...),
	}
	if r := p.Referrer; r != nil {
		ch := referrer.Static{
			Info: referrer.Info{
				InstallReferrer:               r.InstallReferrer,
				ReferrerClickTimestampSeconds: r.ClickTimestamp,
				InstallBeginTimestampSeconds:  r.InstallTimestamp,
				InstallVersion:                r.InstallVersion,
				GooglePlayInstant:             r.GooglePlayInstant,
			},
			Delay: r.Delay,
		}
		if r.Unavailable {
			ch.Info = referrer.Info{}
			ch.Err = referrer.ErrChannelUnavailable
		}
		opts = append(opts, attribution.WithReferrerChannel(ch))
	}
	if a := p.AdvertisingID; a != nil {
		opts = append(opts, attribution.WithAdvertisingIDSource(staticAdID{id: a.ID, allowed: a.TrackingAllowed}))
	}
	return opts
}

type staticAdID struct {
	id      string
	allowed bool
}

func (s staticAdID) TrackingAllowed(context.Context) (bool, error) { return s.allowed, nil }

func (s staticAdID) AdvertisingID(context.Context) (string, error) { return s.id, nil }
