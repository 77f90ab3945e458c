// Package aws reads named profiles from the AWS shared config file.
package aws

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultProfile is used when no profile is configured.
const DefaultProfile = "default"

// ErrProfileNotFound is returned when the config file has no section for a profile.
var ErrProfileNotFound = errors.New("profile not found")

// Options is bound from the AWS configuration section.
type Options struct {
	Profile    string `mapstructure:"Profile" json:"Profile"`
	Region     string `mapstructure:"Region" json:"Region,omitempty"`
	ConfigFile string `mapstructure:"ConfigFile" json:"-"`
}

// ProfileName returns the configured profile, falling back to AWS_PROFILE and then "default".
func (o Options) ProfileName() string {
	if o.Profile != "" {
		return o.Profile
	}
	if p := os.Getenv("AWS_PROFILE"); p != "" {
		return p
	}
	return DefaultProfile
}

// ConfigFilePath returns the shared config location: explicit path, AWS_CONFIG_FILE, or ~/.aws/config.
func (o Options) ConfigFilePath() string {
	if o.ConfigFile != "" {
		return o.ConfigFile
	}
	if p := os.Getenv("AWS_CONFIG_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", "config")
	}
	return filepath.Join(home, ".aws", "config")
}

// SSO holds the single sign-on settings of a profile, either inline or from an sso-session section.
type SSO struct {
	Session   string `json:"Session,omitempty"`
	StartURL  string `json:"StartUrl,omitempty"`
	Region    string `json:"Region,omitempty"`
	AccountID string `json:"AccountId,omitempty"`
	RoleName  string `json:"RoleName,omitempty"`
}

// Profile is a resolved named profile.
type Profile struct {
	Name   string `json:"Name"`
	Region string `json:"Region,omitempty"`
	Output string `json:"Output,omitempty"`
	SSO    *SSO   `json:"Sso,omitempty"`
	// ClientName identifies the application when SSO tokens are refreshed.
	ClientName string `json:"ClientName,omitempty"`
}

// IsSSO reports whether the profile authenticates through SSO.
func (p Profile) IsSSO() bool { return p.SSO != nil }

// LoadProfile reads name from the config file at path.
func LoadProfile(path, name string) (Profile, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: false, IgnoreInlineComment: true}, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Profile{}, fmt.Errorf("%w: %s (no config file at %s)", ErrProfileNotFound, name, path)
		}
		return Profile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return FindProfile(f, name)
}

// FindProfile resolves name from a parsed config file.
// The default profile may be written as [default] or [profile default].
func FindProfile(f *ini.File, name string) (Profile, error) {
	sec := section(f, sectionName(name))
	if sec == nil && name == DefaultProfile {
		sec = section(f, "profile "+DefaultProfile)
	}
	if sec == nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	p := Profile{
		Name:   name,
		Region: sec.Key("region").String(),
		Output: sec.Key("output").String(),
	}

	sso := SSO{
		StartURL:  sec.Key("sso_start_url").String(),
		Region:    sec.Key("sso_region").String(),
		AccountID: sec.Key("sso_account_id").String(),
		RoleName:  sec.Key("sso_role_name").String(),
	}
	if session := sec.Key("sso_session").String(); session != "" {
		ss := section(f, "sso-session "+session)
		if ss == nil {
			return Profile{}, fmt.Errorf("profile %s references missing sso-session %s", name, session)
		}
		sso.Session = session
		sso.StartURL = ss.Key("sso_start_url").String()
		sso.Region = ss.Key("sso_region").String()
	}
	if sso != (SSO{}) {
		p.SSO = &sso
	}
	return p, nil
}

func sectionName(profile string) string {
	if profile == DefaultProfile {
		return DefaultProfile
	}
	return "profile " + profile
}

func section(f *ini.File, name string) *ini.Section {
	for _, s := range f.Sections() {
		if strings.Join(strings.Fields(s.Name()), " ") == name {
			return s
		}
	}
	return nil
}
