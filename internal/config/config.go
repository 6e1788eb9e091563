package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/joacominatel/theseus/internal/database/theseus"
)

// Config represents the application configuration.
type Config struct {
	Profiles    []Profile   `mapstructure:"profiles" yaml:"profiles"`
	Preferences Preferences `mapstructure:"preferences" yaml:"preferences"`
}

// Profile is a saved connection to a Flight SQL server.
type Profile struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	// Password is normally kept in the system keyring, not in the file.
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	UseEncryption                  bool `mapstructure:"use_encryption" yaml:"use_encryption"`
	DisableCertificateVerification bool `mapstructure:"disable_certificate_verification" yaml:"disable_certificate_verification"`

	// Options are sent to the server as RPC call headers.
	Options []ProfileOption `mapstructure:"options" yaml:"options,omitempty"`
}

// ProfileOption is one call header of a profile.
type ProfileOption struct {
	Key   string `mapstructure:"key" yaml:"key"`
	Value string `mapstructure:"value" yaml:"value"`
}

// Preferences holds user preferences.
type Preferences struct {
	Theme          string `mapstructure:"theme" yaml:"theme"`
	DefaultProfile string `mapstructure:"default_profile" yaml:"default_profile"`
}

// Descriptor converts the profile into connection parameters.
func (p Profile) Descriptor() theseus.Descriptor {
	d := theseus.Descriptor{
		Host:                           p.Host,
		Port:                           p.Port,
		Database:                       p.Database,
		Username:                       p.Username,
		Password:                       p.Password,
		UseEncryption:                  p.UseEncryption,
		DisableCertificateVerification: p.DisableCertificateVerification,
	}
	for _, o := range p.Options {
		d.ExtraOptions = append(d.ExtraOptions, theseus.Option{Key: o.Key, Value: o.Value})
	}
	return d
}

// URL builds a theseus:// connection URL from the profile. Options keep
// their order.
func (p Profile) URL() string {
	u := url.URL{
		Scheme: theseus.DialectName,
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.Database,
	}
	if p.Username != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.Username, p.Password)
		} else {
			u.User = url.User(p.Username)
		}
	}

	var query []string
	if p.UseEncryption {
		query = append(query, theseus.OptionUseEncryption+"=true")
	}
	if p.DisableCertificateVerification {
		query = append(query, theseus.OptionDisableCertificateVerification+"=true")
	}
	for _, o := range p.Options {
		query = append(query, url.QueryEscape(o.Key)+"="+url.QueryEscape(o.Value))
	}
	u.RawQuery = strings.Join(query, "&")

	return u.String()
}

// DisplayString returns a human-readable summary of the profile.
func (p Profile) DisplayString() string {
	s := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
	if p.Database != "" {
		s += "/" + p.Database
	}
	if p.Username != "" {
		s = p.Username + "@" + s
	}
	if p.UseEncryption {
		s += " (tls)"
	}
	return s
}

// ParseURL parses a theseus:// connection URL into a Profile.
func ParseURL(raw string) (Profile, error) {
	d, err := theseus.ParseURL(raw)
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		Host:                           d.Host,
		Port:                           d.Port,
		Database:                       d.Database,
		Username:                       d.Username,
		Password:                       d.Password,
		UseEncryption:                  d.UseEncryption,
		DisableCertificateVerification: d.DisableCertificateVerification,
	}
	for _, o := range d.ExtraOptions {
		p.Options = append(p.Options, ProfileOption{Key: o.Key, Value: o.Value})
	}

	// Auto-generate a name
	p.Name = fmt.Sprintf("%s-%s-%d", theseus.DialectName, p.Host, p.Port)
	if p.Database != "" {
		p.Name += "-" + p.Database
	}

	return p, nil
}

// HasProfile checks if a profile with the given name already exists.
func (cfg *Config) HasProfile(name string) bool {
	return cfg.Profile(name) != nil
}

// Profile returns the profile with the given name, or nil.
func (cfg *Config) Profile(name string) *Profile {
	for i := range cfg.Profiles {
		if cfg.Profiles[i].Name == name {
			return &cfg.Profiles[i]
		}
	}
	return nil
}

// AddProfile appends a profile if it doesn't already exist.
func (cfg *Config) AddProfile(p Profile) bool {
	if cfg.HasProfile(p.Name) {
		return false
	}
	cfg.Profiles = append(cfg.Profiles, p)
	return true
}

// RemoveProfile deletes the named profile and reports whether it existed.
func (cfg *Config) RemoveProfile(name string) bool {
	for i := range cfg.Profiles {
		if cfg.Profiles[i].Name == name {
			cfg.Profiles = append(cfg.Profiles[:i], cfg.Profiles[i+1:]...)
			if cfg.Preferences.DefaultProfile == name {
				cfg.Preferences.DefaultProfile = ""
			}
			return true
		}
	}
	return false
}
