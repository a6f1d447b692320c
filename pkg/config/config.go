package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/wareck/gerbera/pkg/server"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration structure.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Network   NetworkConfig   `yaml:"network"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Content   ContentConfig   `yaml:"content"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig contains the identity published in the device description.
type DeviceConfig struct {
	// UDN is "uuid:" followed by a UUID. Empty means the one kept in the
	// state file, generated and saved there on first start.
	UDN              string `yaml:"udn"`
	FriendlyName     string `yaml:"friendly_name"`
	Manufacturer     string `yaml:"manufacturer"`
	ManufacturerURL  string `yaml:"manufacturer_url"`
	ModelDescription string `yaml:"model_description"`
	ModelName        string `yaml:"model_name"`
	ModelNumber      string `yaml:"model_number"`
	ModelURL         string `yaml:"model_url"`
	SerialNumber     string `yaml:"serial_number"`
	PresentationURL  string `yaml:"presentation_url"`

	// StateFile holds runtime state that survives restarts. Empty means
	// gerbera/state.json under the user configuration directory.
	StateFile string `yaml:"state_file"`
}

// NetworkConfig contains bind and advertisement settings.
type NetworkConfig struct {
	// IP to bind. Empty binds all interfaces and reports the first IPv4
	// address.
	IP string `yaml:"ip"`

	// Port to bind. 0 lets the system choose.
	Port int `yaml:"port"`

	// Interface restricts multicast to one network interface.
	Interface string `yaml:"interface"`

	// AliveInterval is the advertisement max-age in seconds.
	AliveInterval int `yaml:"alive_interval"`

	// VirtualDirectory is the URL path segment content is served under.
	VirtualDirectory string `yaml:"virtual_directory"`

	// MaxSubscriptionTimeout caps granted GENA subscriptions in seconds.
	MaxSubscriptionTimeout int `yaml:"max_subscription_timeout"`
}

// DiscoveryConfig selects the advertisement mechanisms.
type DiscoveryConfig struct {
	SSDP bool `yaml:"ssdp"`
	MDNS bool `yaml:"mdns"`

	// TTL is the multicast time-to-live.
	TTL int `yaml:"ttl"`
}

// ContentConfig contains the ContentDirectory settings.
type ContentConfig struct {
	// Root is a directory whose files are published. Empty publishes an
	// empty directory.
	Root string `yaml:"root"`

	// BrowseTimeout bounds one Browse in seconds.
	BrowseTimeout int `yaml:"browse_timeout"`

	// ProtocolInfo lists the source protocols reported by the
	// ConnectionManager.
	ProtocolInfo []string `yaml:"protocol_info"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`

	// ProtocolLog is the path of the CBOR protocol log. Empty disables it.
	ProtocolLog string `yaml:"protocol_log"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides. An empty path skips the file.
//
// The loading order is:
//  1. Default values
//  2. YAML file values
//  3. Environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			FriendlyName:     "Gerbera",
			Manufacturer:     "Gerbera Contributors",
			ManufacturerURL:  "http://gerbera.io/",
			ModelDescription: "Free UPnP AV MediaServer",
			ModelName:        "Gerbera",
			ModelNumber:      "1.0",
			ModelURL:         "http://gerbera.io/",
		},
		Network: NetworkConfig{
			Port:                   49152,
			AliveInterval:          180,
			VirtualDirectory:       "content",
			MaxSubscriptionTimeout: 1800,
		},
		Discovery: DiscoveryConfig{
			SSDP: true,
			MDNS: true,
			TTL:  4,
		},
		Content: ContentConfig{
			BrowseTimeout: 5,
			ProtocolInfo:  []string{"http-get:*:*:*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
// Variables follow the pattern GERBERA_KEY.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GERBERA_UDN"); v != "" {
		cfg.Device.UDN = v
	}
	if v := os.Getenv("GERBERA_FRIENDLY_NAME"); v != "" {
		cfg.Device.FriendlyName = v
	}
	if v := os.Getenv("GERBERA_STATE_FILE"); v != "" {
		cfg.Device.StateFile = v
	}
	if v := os.Getenv("GERBERA_IP"); v != "" {
		cfg.Network.IP = v
	}
	if v := os.Getenv("GERBERA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GERBERA_PORT %q: %w", v, err)
		}
		cfg.Network.Port = port
	}
	if v := os.Getenv("GERBERA_INTERFACE"); v != "" {
		cfg.Network.Interface = v
	}
	if v := os.Getenv("GERBERA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Device.UDN != "" {
		if err := ValidateUDN(c.Device.UDN); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Device.FriendlyName == "" {
		errs = append(errs, "device.friendly_name is required")
	}

	if c.Network.Port < 0 || c.Network.Port > 65535 {
		errs = append(errs, "network.port must be between 0 and 65535")
	}
	if c.Network.AliveInterval <= 0 {
		errs = append(errs, "network.alive_interval must be positive")
	}
	if c.Network.VirtualDirectory == "" || strings.Contains(c.Network.VirtualDirectory, "/") {
		errs = append(errs, "network.virtual_directory must be a single non-empty path segment")
	}
	if c.Network.MaxSubscriptionTimeout < 0 {
		errs = append(errs, "network.max_subscription_timeout must not be negative")
	}

	if c.Discovery.TTL < 1 || c.Discovery.TTL > 255 {
		errs = append(errs, "discovery.ttl must be between 1 and 255")
	}

	if c.Content.BrowseTimeout <= 0 {
		errs = append(errs, "content.browse_timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is not json or text", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateUDN checks that udn is "uuid:" followed by a UUID, using the
// same rules the server applies at startup.
func ValidateUDN(udn string) error {
	if err := server.ValidateUDN(udn); err != nil {
		return fmt.Errorf("device.udn: %w", err)
	}
	return nil
}

// NewUDN returns a fresh random UDN.
func NewUDN() string {
	return "uuid:" + uuid.NewString()
}

// StatePath returns the state file path.
func (c *Config) StatePath() (string, error) {
	if c.Device.StateFile != "" {
		return c.Device.StateFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("device.state_file is not set: %w", err)
	}
	return filepath.Join(dir, "gerbera", "state.json"), nil
}

// AliveInterval returns the advertisement interval as a Duration.
func (c *Config) AliveInterval() time.Duration {
	return time.Duration(c.Network.AliveInterval) * time.Second
}

// MaxSubscriptionTimeout returns the subscription cap as a Duration.
func (c *Config) MaxSubscriptionTimeout() time.Duration {
	return time.Duration(c.Network.MaxSubscriptionTimeout) * time.Second
}

// BrowseTimeout returns the Browse bound as a Duration.
func (c *Config) BrowseTimeout() time.Duration {
	return time.Duration(c.Content.BrowseTimeout) * time.Second
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
