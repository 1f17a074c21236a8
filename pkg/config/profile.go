package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so profiles can say "3s" or "500ms".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// NodeProfile is a named deployment profile for an edge node.
type NodeProfile struct {
	Name         string          `yaml:"name" json:"name"`
	Transport    TransportConfig `yaml:"transport" json:"transport"`
	Journal      JournalConfig   `yaml:"journal" json:"journal"`
	Telemetry    TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	TickInterval Duration        `yaml:"tick_interval" json:"tick_interval"`
	SignerCount  int             `yaml:"signer_count" json:"signer_count"`
}

// TransportConfig selects the edge transport.
type TransportConfig struct {
	Mode string `yaml:"mode" json:"mode"` // "loopback" | "websocket"
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
}

// JournalConfig controls event journal persistence.
type JournalConfig struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// TelemetryConfig controls the OTel provider.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty" json:"insecure,omitempty"`
}

// DefaultProfile is the zero-configuration profile: loopback transport,
// in-memory journal, telemetry off.
func DefaultProfile() *NodeProfile {
	return &NodeProfile{
		Name:         "default",
		Transport:    TransportConfig{Mode: "loopback"},
		TickInterval: Duration(2 * time.Second),
		SignerCount:  3,
	}
}

// LoadProfile loads a named node profile YAML from the profiles directory.
// It searches for profile_<name>.yaml.
func LoadProfile(profilesDir, name string) (*NodeProfile, error) {
	name = strings.ToLower(name)
	path := filepath.Join(profilesDir, fmt.Sprintf("profile_%s.yaml", name))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", name, err)
	}

	var profile NodeProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile %q: %w", name, err)
	}

	if profile.Name == "" {
		profile.Name = name
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %q: %w", name, err)
	}
	return &profile, nil
}

// Validate rejects profiles that cannot be wired into a node.
func (p *NodeProfile) Validate() error {
	switch p.Transport.Mode {
	case "", "loopback":
	case "websocket":
		if p.Transport.URL == "" {
			return fmt.Errorf("websocket transport requires a url")
		}
	default:
		return fmt.Errorf("unknown transport mode %q", p.Transport.Mode)
	}
	if p.TickInterval < 0 {
		return fmt.Errorf("tick_interval must not be negative")
	}
	if p.SignerCount < 0 {
		return fmt.Errorf("signer_count must not be negative")
	}
	return nil
}
