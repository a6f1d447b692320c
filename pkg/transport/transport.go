package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/wareck/gerbera/pkg/upnp"
)

// Transport errors.
var (
	ErrAlreadyBound      = errors.New("transport already bound")
	ErrNotBound          = errors.New("transport not bound")
	ErrAlreadyRegistered = errors.New("device already registered")
	ErrInvalidHandle     = errors.New("invalid device handle")
	ErrNilCallback       = errors.New("callback is required")
	ErrInvalidInterval   = errors.New("advertisement interval must be positive")
)

// Handle identifies a registered device. It is valid between a successful
// Register and the matching Unregister.
type Handle uint32

// InvalidHandle is the zero handle, never returned by Register.
const InvalidHandle Handle = 0

// Address is the actually bound network address.
type Address struct {
	IP   string
	Port int
}

// String returns "ip:port".
func (a Address) String() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
}

// Callback receives every incoming event of a registered device.
// The returned request carries the result in its output slot.
type Callback func(ctx context.Context, ev upnp.Event) (upnp.Request, error)

// Transport is the network side of a UPnP device.
type Transport interface {
	// Bind starts listening. The returned address reflects the port and IP
	// actually in use, which may differ from the requested ones.
	Bind(ctx context.Context, ip string, port int) (Address, error)

	// Register publishes a device description and installs the callback.
	Register(description string, cb Callback) (Handle, error)

	// Advertise starts periodic alive announcements for the device.
	Advertise(h Handle, interval time.Duration) error

	// Unregister stops advertising, sends byebye and removes the device.
	Unregister(h Handle) error

	// Close releases the binding.
	Close() error
}
