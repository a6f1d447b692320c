package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"golang.org/x/net/ipv4"
)

// SSDPConfig configures an SSDPAdvertiser.
type SSDPConfig struct {
	// Interface specifies which network interface to send on.
	// Empty string means the system default.
	Interface string

	// TTL is the multicast hop limit (default: 4).
	TTL int

	// Address is the destination (default: 239.255.255.250:1900).
	Address string
}

// DefaultSSDPConfig returns the default SSDP configuration.
func DefaultSSDPConfig() SSDPConfig {
	return SSDPConfig{
		TTL:     DefaultTTL,
		Address: MulticastAddress,
	}
}

// SSDPAdvertiser sends SSDP NOTIFY messages.
type SSDPAdvertiser struct {
	mu     sync.Mutex
	conn   *net.UDPConn
	dst    *net.UDPAddr
	closed bool
}

// notification is one NT/USN pair of an announcement.
type notification struct {
	nt  string
	usn string
}

// NewSSDPAdvertiser opens the UDP socket used for announcements.
func NewSSDPAdvertiser(config SSDPConfig) (*SSDPAdvertiser, error) {
	if config.Address == "" {
		config.Address = MulticastAddress
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}

	dst, err := net.ResolveUDPAddr("udp4", config.Address)
	if err != nil {
		return nil, fmt.Errorf("resolve ssdp address: %w", err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, fmt.Errorf("open ssdp socket: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastTTL(config.TTL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set multicast ttl: %w", err)
	}
	if config.Interface != "" {
		ifi, err := net.InterfaceByName(config.Interface)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("ssdp interface %q: %w", config.Interface, err)
		}
		if err := pc.SetMulticastInterface(ifi); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set multicast interface: %w", err)
		}
	}

	return &SSDPAdvertiser{conn: conn, dst: dst}, nil
}

// Alive sends ssdp:alive for every notification type of the device.
func (a *SSDPAdvertiser) Alive(ctx context.Context, info *DeviceInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	return a.send(ctx, info, "ssdp:alive")
}

// ByeBye sends ssdp:byebye for every notification type of the device.
func (a *SSDPAdvertiser) ByeBye(ctx context.Context, info *DeviceInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	return a.send(ctx, info, "ssdp:byebye")
}

// Close closes the socket. It is safe to call Close multiple times.
func (a *SSDPAdvertiser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	return a.conn.Close()
}

func (a *SSDPAdvertiser) send(ctx context.Context, info *DeviceInfo, nts string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	for _, n := range notifications(info) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := notifyMessage(info, n, nts, a.dst.String())
		if _, err := a.conn.WriteToUDP(msg, a.dst); err != nil {
			return fmt.Errorf("send %s %s: %w", nts, n.nt, err)
		}
	}
	return nil
}

// notifications returns the NT/USN pairs announced for a root device.
func notifications(info *DeviceInfo) []notification {
	out := []notification{
		{nt: "upnp:rootdevice", usn: info.UDN + "::upnp:rootdevice"},
		{nt: info.UDN, usn: info.UDN},
		{nt: info.DeviceType, usn: info.UDN + "::" + info.DeviceType},
	}
	seen := make(map[string]bool)
	for _, st := range info.ServiceTypes {
		if seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, notification{nt: st, usn: info.UDN + "::" + st})
	}
	return out
}

// notifyMessage renders one NOTIFY datagram.
func notifyMessage(info *DeviceInfo, n notification, nts, host string) []byte {
	var b strings.Builder
	b.WriteString("NOTIFY * HTTP/1.1\r\n")
	fmt.Fprintf(&b, "HOST: %s\r\n", host)
	if nts == "ssdp:alive" {
		maxAge := info.MaxAge
		if maxAge <= 0 {
			maxAge = DefaultMaxAge
		}
		fmt.Fprintf(&b, "CACHE-CONTROL: max-age=%d\r\n", int(maxAge.Seconds()))
		fmt.Fprintf(&b, "LOCATION: %s\r\n", info.Location)
		if info.Server != "" {
			fmt.Fprintf(&b, "SERVER: %s\r\n", info.Server)
		}
	}
	fmt.Fprintf(&b, "NT: %s\r\n", n.nt)
	fmt.Fprintf(&b, "NTS: %s\r\n", nts)
	fmt.Fprintf(&b, "USN: %s\r\n", n.usn)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Compile-time interface satisfaction check.
var _ Advertiser = (*SSDPAdvertiser)(nil)
