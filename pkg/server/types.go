package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wareck/gerbera/pkg/log"
)

// Server errors.
var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrStartup        = errors.New("device startup failed")
	ErrAlreadyStarted = errors.New("server already started")
)

// Configuration defaults.
const (
	DefaultFriendlyName     = "Gerbera"
	DefaultManufacturer     = "Gerbera Contributors"
	DefaultManufacturerURL  = "http://gerbera.io/"
	DefaultModelName        = "Gerbera"
	DefaultModelDescription = "Free UPnP AV MediaServer"
	DefaultModelURL         = "http://gerbera.io/"
	DefaultAliveInterval    = 180 * time.Second
	DefaultVirtualDirectory = "content"
)

// ServiceState represents the server lifecycle state.
type ServiceState uint8

const (
	// StateIdle - server created but not started.
	StateIdle ServiceState = iota

	// StateStarting - bind/register/advertise in progress.
	StateStarting

	// StateRunning - device registered and advertised.
	StateRunning

	// StateStopping - cleanup in progress.
	StateStopping

	// StateStopped - cleanup finished; the server can be started again.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Server.
type Config struct {
	// UDN is the unique device name ("uuid:<uuid>"). Required.
	UDN string

	// FriendlyName is the user-visible device name.
	FriendlyName string

	// Device description fields.
	Manufacturer     string
	ManufacturerURL  string
	ModelDescription string
	ModelName        string
	ModelNumber      string
	ModelURL         string
	SerialNumber     string

	// PresentationURL defaults to the device base URL.
	PresentationURL string

	// AliveInterval is the advertisement validity period.
	AliveInterval time.Duration

	// VirtualDirectory is the path segment content is served under.
	VirtualDirectory string

	// Logger is the optional logger for debug output.
	Logger *slog.Logger

	// ProtocolLogger receives routed requests and lifecycle changes (optional).
	ProtocolLogger log.Logger
}

// applyDefaults fills unset optional fields.
func (c *Config) applyDefaults() {
	if c.FriendlyName == "" {
		c.FriendlyName = DefaultFriendlyName
	}
	if c.Manufacturer == "" {
		c.Manufacturer = DefaultManufacturer
	}
	if c.ManufacturerURL == "" {
		c.ManufacturerURL = DefaultManufacturerURL
	}
	if c.ModelName == "" {
		c.ModelName = DefaultModelName
	}
	if c.ModelDescription == "" {
		c.ModelDescription = DefaultModelDescription
	}
	if c.ModelURL == "" {
		c.ModelURL = DefaultModelURL
	}
	if c.AliveInterval == 0 {
		c.AliveInterval = DefaultAliveInterval
	}
	if c.VirtualDirectory == "" {
		c.VirtualDirectory = DefaultVirtualDirectory
	}
}

// Validate checks the device identity.
func (c *Config) Validate() error {
	if err := ValidateUDN(c.UDN); err != nil {
		return err
	}
	if c.AliveInterval <= 0 {
		return fmt.Errorf("%w: alive interval must be positive, got %s", ErrInvalidConfig, c.AliveInterval)
	}
	if c.VirtualDirectory == "" || strings.Contains(c.VirtualDirectory, "/") {
		return fmt.Errorf("%w: virtual directory %q must be a single path segment", ErrInvalidConfig, c.VirtualDirectory)
	}
	return nil
}

// ValidateUDN checks that udn has the form "uuid:<RFC 4122 uuid>".
func ValidateUDN(udn string) error {
	if udn == "" {
		return fmt.Errorf("%w: UDN is required", ErrInvalidConfig)
	}
	id, ok := strings.CutPrefix(udn, "uuid:")
	if !ok {
		return fmt.Errorf("%w: UDN %q must start with \"uuid:\"", ErrInvalidConfig, udn)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: UDN %q: %v", ErrInvalidConfig, udn, err)
	}
	return nil
}
