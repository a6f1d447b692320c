package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wareck/gerbera/pkg/server"
)

const testUDN = "uuid:2fac1234-31f8-11b4-a222-08002b34c003"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  udn: "`+testUDN+`"
  friendly_name: "Living Room"
network:
  ip: "192.168.1.10"
  port: 50000
  alive_interval: 60
discovery:
  mdns: false
content:
  root: "/srv/media"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.UDN != testUDN {
		t.Errorf("Device.UDN = %q, want %q", cfg.Device.UDN, testUDN)
	}
	if cfg.Device.FriendlyName != "Living Room" {
		t.Errorf("Device.FriendlyName = %q", cfg.Device.FriendlyName)
	}
	if cfg.Network.IP != "192.168.1.10" || cfg.Network.Port != 50000 {
		t.Errorf("Network = %+v", cfg.Network)
	}
	if cfg.AliveInterval() != time.Minute {
		t.Errorf("AliveInterval() = %s, want 1m", cfg.AliveInterval())
	}
	if !cfg.Discovery.SSDP || cfg.Discovery.MDNS {
		t.Errorf("Discovery = %+v, want ssdp only", cfg.Discovery)
	}
	if cfg.Content.Root != "/srv/media" {
		t.Errorf("Content.Root = %q", cfg.Content.Root)
	}

	// Unset keys keep their defaults.
	if cfg.Device.Manufacturer != "Gerbera Contributors" {
		t.Errorf("Device.Manufacturer = %q, want default", cfg.Device.Manufacturer)
	}
	if cfg.Network.VirtualDirectory != "content" {
		t.Errorf("Network.VirtualDirectory = %q, want default", cfg.Network.VirtualDirectory)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Network.Port != 49152 {
		t.Errorf("Network.Port = %d, want 49152", cfg.Network.Port)
	}
	if cfg.Device.UDN != "" {
		t.Errorf("Device.UDN = %q, want empty", cfg.Device.UDN)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, `
device:
  udn: "not-a-uuid"
network:
  alive_interval: 0
`))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Load() error = %v, want ErrInvalid", err)
	}
	for _, want := range []string{"device.udn", "network.alive_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GERBERA_UDN", testUDN)
	t.Setenv("GERBERA_IP", "10.0.0.5")
	t.Setenv("GERBERA_PORT", "0")
	t.Setenv("GERBERA_INTERFACE", "eth1")
	t.Setenv("GERBERA_FRIENDLY_NAME", "Env Name")
	t.Setenv("GERBERA_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "network:\n  ip: \"192.168.1.10\"\n  port: 50000\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Device.UDN != testUDN {
		t.Errorf("Device.UDN = %q", cfg.Device.UDN)
	}
	if cfg.Network.IP != "10.0.0.5" {
		t.Errorf("Network.IP = %q, want env value", cfg.Network.IP)
	}
	if cfg.Network.Port != 0 {
		t.Errorf("Network.Port = %d, want 0", cfg.Network.Port)
	}
	if cfg.Network.Interface != "eth1" || cfg.Device.FriendlyName != "Env Name" || cfg.Logging.Level != "warn" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadEnvPort(t *testing.T) {
	t.Setenv("GERBERA_PORT", "http")
	if _, err := Load(""); err == nil {
		t.Error("Load() expected error for non-numeric GERBERA_PORT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"FriendlyName", func(c *Config) { c.Device.FriendlyName = "" }},
		{"UDNPrefix", func(c *Config) { c.Device.UDN = "2fac1234-31f8-11b4-a222-08002b34c003" }},
		{"PortRange", func(c *Config) { c.Network.Port = 70000 }},
		{"VirtualDirectorySlash", func(c *Config) { c.Network.VirtualDirectory = "a/b" }},
		{"VirtualDirectoryEmpty", func(c *Config) { c.Network.VirtualDirectory = "" }},
		{"SubscriptionTimeout", func(c *Config) { c.Network.MaxSubscriptionTimeout = -1 }},
		{"TTL", func(c *Config) { c.Discovery.TTL = 0 }},
		{"BrowseTimeout", func(c *Config) { c.Content.BrowseTimeout = 0 }},
		{"LogLevel", func(c *Config) { c.Logging.Level = "verbose" }},
		{"LogFormat", func(c *Config) { c.Logging.Format = "xml" }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateUDNMatchesServer(t *testing.T) {
	for _, udn := range []string{"", "5a3e1f0c-7b1d-4c53-9d2e-111111111111", "uuid:nope"} {
		err := ValidateUDN(udn)
		if !errors.Is(err, server.ErrInvalidConfig) {
			t.Errorf("ValidateUDN(%q) = %v, want server.ErrInvalidConfig", udn, err)
		}
		if err != nil && !strings.HasPrefix(err.Error(), "device.udn: ") {
			t.Errorf("ValidateUDN(%q) = %q, want device.udn prefix", udn, err)
		}
	}
	if err := ValidateUDN(testUDN); err != nil {
		t.Errorf("ValidateUDN(%q) = %v", testUDN, err)
	}
}

func TestStatePath(t *testing.T) {
	cfg := Default()
	cfg.Device.StateFile = "/var/lib/gerbera/state.json"
	if got, err := cfg.StatePath(); err != nil || got != "/var/lib/gerbera/state.json" {
		t.Errorf("StatePath() = %q, %v", got, err)
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	cfg.Device.StateFile = ""
	got, err := cfg.StatePath()
	if err != nil {
		t.Fatalf("StatePath() error = %v", err)
	}
	if filepath.Base(got) != "state.json" || filepath.Base(filepath.Dir(got)) != "gerbera" {
		t.Errorf("StatePath() = %q, want .../gerbera/state.json", got)
	}
}

func TestStateFileEnvOverride(t *testing.T) {
	t.Setenv("GERBERA_STATE_FILE", "/run/gerbera.json")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Device.StateFile != "/run/gerbera.json" {
		t.Errorf("StateFile = %q", cfg.Device.StateFile)
	}
}

func TestNewUDN(t *testing.T) {
	a, b := NewUDN(), NewUDN()
	if err := ValidateUDN(a); err != nil {
		t.Errorf("NewUDN() = %q is invalid: %v", a, err)
	}
	if a == b {
		t.Error("NewUDN() returned the same value twice")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Device.UDN = testUDN
	path := filepath.Join(t.TempDir(), "saved.yaml")

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Device.UDN != testUDN {
		t.Errorf("Device.UDN = %q after round trip", loaded.Device.UDN)
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	if cfg.MaxSubscriptionTimeout() != 30*time.Minute {
		t.Errorf("MaxSubscriptionTimeout() = %s", cfg.MaxSubscriptionTimeout())
	}
	if cfg.BrowseTimeout() != 5*time.Second {
		t.Errorf("BrowseTimeout() = %s", cfg.BrowseTimeout())
	}
}
