package discovery

import (
	"context"
	"errors"
	"time"
)

// Discovery errors.
var (
	ErrMissingRequired = errors.New("missing required field")
	ErrClosed          = errors.New("advertiser closed")
)

// Default SSDP parameters.
const (
	MulticastAddress = "239.255.255.250:1900"
	DefaultTTL       = 4
	DefaultMaxAge    = 1800 * time.Second
)

// DeviceInfo describes what an advertiser announces.
type DeviceInfo struct {
	// UDN is the unique device name ("uuid:...").
	UDN string

	// DeviceType is the device type URN.
	DeviceType string

	// ServiceTypes lists the service type URNs of the device.
	ServiceTypes []string

	// Location is the absolute URL of the device description document.
	Location string

	// FriendlyName is the user-visible device name.
	FriendlyName string

	// Server is the SERVER header value.
	Server string

	// MaxAge is how long an announcement stays valid.
	MaxAge time.Duration
}

// Validate checks required fields.
func (d *DeviceInfo) Validate() error {
	if d == nil || d.UDN == "" || d.DeviceType == "" || d.Location == "" {
		return ErrMissingRequired
	}
	return nil
}

// Advertiser announces device presence.
type Advertiser interface {
	// Alive announces the device. Calling it again refreshes the
	// announcement.
	Alive(ctx context.Context, info *DeviceInfo) error

	// ByeBye announces the device's departure.
	ByeBye(ctx context.Context, info *DeviceInfo) error

	// Close releases network resources.
	Close() error
}
