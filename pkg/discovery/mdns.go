package discovery

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/enbility/zeroconf/v3"
)

// DNS-SD parameters.
const (
	ServiceTypeMediaServer = "_upnp-ms._tcp"
	Domain                 = "local."
	MaxInstanceNameLen     = 63
)

// MDNSConfig configures an MDNSAdvertiser.
type MDNSConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultMDNSConfig returns the default mDNS configuration.
func DefaultMDNSConfig() MDNSConfig {
	return MDNSConfig{TTL: 120 * time.Second}
}

// MDNSAdvertiser registers the device as a DNS-SD service using zeroconf.
type MDNSAdvertiser struct {
	config MDNSConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config MDNSConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{config: config}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Alive registers the service on first call and refreshes its TXT records
// afterwards, which re-announces it.
func (a *MDNSAdvertiser) Alive(ctx context.Context, info *DeviceInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	txt := EncodeTXT(info)
	if a.server != nil {
		a.server.SetText(txt)
		return nil
	}

	port, err := locationPort(info.Location)
	if err != nil {
		return err
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		InstanceName(info),
		ServiceTypeMediaServer,
		Domain,
		port,
		txt,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register media server service: %w", err)
	}
	a.server = server
	return nil
}

// ByeBye withdraws the service registration.
func (a *MDNSAdvertiser) ByeBye(ctx context.Context, info *DeviceInfo) error {
	return a.Close()
}

// Close shuts the zeroconf server down. It is safe to call Close multiple times.
func (a *MDNSAdvertiser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	return nil
}

// InstanceName returns the DNS-SD instance name for a device: the friendly
// name, or the UDN, cut to MaxInstanceNameLen bytes on a rune boundary.
func InstanceName(info *DeviceInfo) string {
	name := info.FriendlyName
	if name == "" {
		name = info.UDN
	}
	if len(name) <= MaxInstanceNameLen {
		return name
	}
	n := MaxInstanceNameLen
	for n > 0 && !utf8.RuneStart(name[n]) {
		n--
	}
	return name[:n]
}

// EncodeTXT builds the TXT records announced for a device.
func EncodeTXT(info *DeviceInfo) []string {
	txt := []string{
		"udn=" + info.UDN,
		"loc=" + info.Location,
	}
	if info.FriendlyName != "" {
		txt = append(txt, "name="+info.FriendlyName)
	}
	return txt
}

// locationPort extracts the TCP port of the description URL.
func locationPort(location string) (int, error) {
	u, err := url.Parse(location)
	if err != nil {
		return 0, fmt.Errorf("parse location: %w", err)
	}
	p := u.Port()
	if p == "" {
		return 80, nil
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("location port %q: %w", p, err)
	}
	return port, nil
}

// Compile-time interface satisfaction check.
var _ Advertiser = (*MDNSAdvertiser)(nil)
