// Package config loads connection profiles for sqldoc's two backends from a
// TOML file, the same format Pieczasz-smf uses for its own schema/connection
// profiles.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nuvix/sqldoc/adapter"
)

// profileFile is the top-level TOML document: one [profiles.<name>] table
// per connection, plus an optional default.
type profileFile struct {
	Default  string             `toml:"default"`
	Profiles map[string]profile `toml:"profiles"`
}

// profile maps one [profiles.<name>] table to adapter.Config.
type profile struct {
	Backend           string `toml:"backend"` // "mariadb" | "postgres"
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	User              string `toml:"user"`
	Password          string `toml:"password"`
	Database          string `toml:"database"`
	Prefix            string `toml:"prefix"`
	SharedTables      bool   `toml:"shared_tables"`
	TenantID          *int64 `toml:"tenant_id"`
	MaxVarCharLimit   int    `toml:"max_varchar_limit"`
	PreserveDates     bool   `toml:"preserve_dates"`
	NamedPlaceholders bool   `toml:"named_placeholders"`
}

// Profile is a named connection profile: which backend it targets, plus the
// adapter.Config to construct it with.
type Profile struct {
	Name    string
	Backend string
	Config  adapter.Config
}

// Load reads path and returns every profile it defines, plus the name of
// the default profile (empty if none was set).
func Load(path string) (profiles []Profile, defaultName string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes TOML content from r into named profiles.
func Parse(r io.Reader) ([]Profile, string, error) {
	var pf profileFile
	if _, err := toml.NewDecoder(r).Decode(&pf); err != nil {
		return nil, "", fmt.Errorf("config: decode error: %w", err)
	}

	var out []Profile
	for name, p := range pf.Profiles {
		if p.Backend != "mariadb" && p.Backend != "postgres" {
			return nil, "", fmt.Errorf("config: profile %q: unsupported backend %q", name, p.Backend)
		}
		out = append(out, Profile{
			Name:    name,
			Backend: p.Backend,
			Config: adapter.Config{
				SharedTables:      p.SharedTables,
				TenantID:          p.TenantID,
				Database:          p.Database,
				Prefix:            p.Prefix,
				MaxVarCharLimit:   p.MaxVarCharLimit,
				PreserveDates:     p.PreserveDates,
				NamedPlaceholders: p.NamedPlaceholders,
				Host:              p.Host,
				Port:              p.Port,
				User:              p.User,
				Password:          p.Password,
			},
		})
	}

	if pf.Default != "" {
		if _, ok := pf.Profiles[pf.Default]; !ok {
			return nil, "", fmt.Errorf("config: default profile %q not defined", pf.Default)
		}
	}
	return out, pf.Default, nil
}

// Find returns the profile named name, or ok=false if no such profile exists.
func Find(profiles []Profile, name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
