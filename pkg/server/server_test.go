package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wareck/gerbera/pkg/description"
	"github.com/wareck/gerbera/pkg/log"
	"github.com/wareck/gerbera/pkg/registry"
	"github.com/wareck/gerbera/pkg/transport"
	"github.com/wareck/gerbera/pkg/upnp"
)

const testUDN = "uuid:2f402f80-da50-11e1-9b23-001788255acc"

// fakeTransport is a test double for transport.Transport. Bind moves the
// requested port by one to mimic a busy port.
type fakeTransport struct {
	mu sync.Mutex

	ip         string
	handle     transport.Handle
	callback   transport.Callback
	desc       string
	interval   time.Duration
	bound      bool
	registered bool
	calls      []string
}

func (f *fakeTransport) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeTransport) Bind(_ context.Context, ip string, port int) (transport.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Bind")
	f.bound = true
	if ip == "" {
		ip = f.ip
	}
	return transport.Address{IP: ip, Port: port + 1}, nil
}

func (f *fakeTransport) Register(desc string, cb transport.Callback) (transport.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Register")
	f.handle++
	f.desc = desc
	f.callback = cb
	f.registered = true
	return f.handle, nil
}

func (f *fakeTransport) Advertise(h transport.Handle, interval time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Advertise")
	f.interval = interval
	return nil
}

func (f *fakeTransport) Unregister(h transport.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Unregister")
	if h != f.handle || !f.registered {
		return transport.ErrInvalidHandle
	}
	f.registered = false
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Close")
	f.bound = false
	return nil
}

func (f *fakeTransport) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// nopService accepts every request.
type nopService struct{}

func (nopService) ProcessActionRequest(context.Context, *upnp.ActionRequest) error { return nil }

func (nopService) ProcessSubscriptionRequest(_ context.Context, req *upnp.SubscriptionRequest) error {
	req.Accept()
	return nil
}

// captureLogger records protocol events.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(ev log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *captureLogger) snapshot() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]log.Event(nil), c.events...)
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New(
		registry.Entry{
			Info: description.Service{
				Type:        "urn:schemas-upnp-org:service:ContentDirectory:1",
				ID:          "urn:upnp-org:serviceId:ContentDirectory",
				SCPDURL:     "/upnp/scpd/cds.xml",
				ControlURL:  "/upnp/control/cds",
				EventSubURL: "/upnp/event/cds",
			},
			Service: nopService{},
		},
		registry.Entry{
			Info: description.Service{
				Type:        "urn:schemas-upnp-org:service:ConnectionManager:1",
				ID:          "urn:upnp-org:serviceId:ConnectionManager",
				SCPDURL:     "/upnp/scpd/cm.xml",
				ControlURL:  "/upnp/control/cm",
				EventSubURL: "/upnp/event/cm",
			},
			Service: nopService{},
		},
	)
	if err != nil {
		t.Fatalf("registry.New failed: %v", err)
	}
	return reg
}

func TestNewValidation(t *testing.T) {
	reg := testRegistry(t)
	ft := &fakeTransport{}

	tests := []struct {
		name   string
		config Config
	}{
		{"MissingUDN", Config{}},
		{"NoUUIDPrefix", Config{UDN: "2f402f80-da50-11e1-9b23-001788255acc"}},
		{"BadUUID", Config{UDN: "uuid:not-a-uuid"}},
		{"NegativeInterval", Config{UDN: testUDN, AliveInterval: -time.Second}},
		{"NestedVirtualDirectory", Config{UDN: testUDN, VirtualDirectory: "a/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config, ft, reg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := New(Config{UDN: testUDN}, nil, reg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(nil transport) error = %v, want ErrInvalidConfig", err)
	}
	if _, err := New(Config{UDN: testUDN}, ft, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New(nil registry) error = %v, want ErrInvalidConfig", err)
	}
	if calls := ft.callLog(); len(calls) != 0 {
		t.Errorf("New must not touch the transport, got calls %v", calls)
	}
}

func TestNewDefaults(t *testing.T) {
	s, err := New(Config{UDN: testUDN}, &fakeTransport{}, testRegistry(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.config.FriendlyName != DefaultFriendlyName {
		t.Errorf("FriendlyName = %q, want %q", s.config.FriendlyName, DefaultFriendlyName)
	}
	if s.config.AliveInterval != DefaultAliveInterval {
		t.Errorf("AliveInterval = %s, want %s", s.config.AliveInterval, DefaultAliveInterval)
	}
	if s.config.VirtualDirectory != DefaultVirtualDirectory {
		t.Errorf("VirtualDirectory = %q, want %q", s.config.VirtualDirectory, DefaultVirtualDirectory)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %v, want IDLE", s.State())
	}
}

func TestAccessorsBeforeStart(t *testing.T) {
	s, err := New(Config{UDN: testUDN}, &fakeTransport{}, testRegistry(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.VirtualURL() != "" || s.IP() != "" || s.Port() != "" || s.Description() != "" {
		t.Errorf("accessors before Start = (%q, %q, %q, %q), want empty",
			s.VirtualURL(), s.IP(), s.Port(), s.Description())
	}
	if s.DeviceHandle() != transport.InvalidHandle {
		t.Errorf("DeviceHandle() = %d, want invalid", s.DeviceHandle())
	}
	if s.UDN() != testUDN {
		t.Errorf("UDN() = %q, want %q", s.UDN(), testUDN)
	}
}

func TestStartPublishesIdentity(t *testing.T) {
	ft := &fakeTransport{}
	plog := &captureLogger{}
	s, err := New(Config{
		UDN:            testUDN,
		FriendlyName:   "Living Room",
		AliveInterval:  1800 * time.Second,
		ProtocolLogger: plog,
	}, ft, testRegistry(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := s.Start(context.Background(), "192.168.1.10", 49152); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The bound port (49153) wins over the requested one.
	if got, want := s.VirtualURL(), "http://192.168.1.10:49153/content/"; got != want {
		t.Errorf("VirtualURL() = %q, want %q", got, want)
	}
	if s.Port() != "49153" {
		t.Errorf("Port() = %q, want 49153", s.Port())
	}
	if s.IP() != "192.168.1.10" {
		t.Errorf("IP() = %q, want 192.168.1.10", s.IP())
	}
	if s.DeviceHandle() != ft.handle {
		t.Errorf("DeviceHandle() = %d, want %d", s.DeviceHandle(), ft.handle)
	}
	if ft.interval != 1800*time.Second {
		t.Errorf("advertise interval = %s, want 1800s", ft.interval)
	}
	if s.State() != StateRunning {
		t.Errorf("State() = %v, want RUNNING", s.State())
	}

	want := []string{"Bind", "Register", "Advertise"}
	if got := ft.callLog(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("transport calls = %v, want %v", got, want)
	}

	root, err := description.Parse([]byte(s.Description()))
	if err != nil {
		t.Fatalf("description does not parse: %v", err)
	}
	if s.Description() != ft.desc {
		t.Error("Description() differs from the registered document")
	}
	if root.Device.UDN != testUDN || root.Device.FriendlyName != "Living Room" {
		t.Errorf("device = %+v", root.Device)
	}
	if len(root.Device.Services) != 2 {
		t.Fatalf("service list has %d entries, want 2", len(root.Device.Services))
	}
	if root.Device.PresentationURL != "http://192.168.1.10:49153/" {
		t.Errorf("PresentationURL = %q", root.Device.PresentationURL)
	}

	var states []string
	for _, ev := range plog.snapshot() {
		if ev.StateChange != nil {
			states = append(states, ev.StateChange.NewState)
		}
	}
	if strings.Join(states, ",") != "STARTING,RUNNING" {
		t.Errorf("state changes = %v", states)
	}
}

func TestStartTwice(t *testing.T) {
	ft := &fakeTransport{}
	s, _ := New(Config{UDN: testUDN}, ft, testRegistry(t))

	if err := s.Start(context.Background(), "10.0.0.1", 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	handle := s.DeviceHandle()

	if err := s.Start(context.Background(), "10.0.0.1", 0); err != ErrAlreadyStarted {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
	if s.DeviceHandle() != handle {
		t.Error("second Start must not replace the running device")
	}
	if n := len(ft.callLog()); n != 3 {
		t.Errorf("transport saw %d calls, want 3", n)
	}
}

func TestStopAndRestart(t *testing.T) {
	ft := &fakeTransport{}
	s, _ := New(Config{UDN: testUDN}, ft, testRegistry(t))

	// Stop before Start is a no-op.
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop before Start = %v", err)
	}
	if n := len(ft.callLog()); n != 0 {
		t.Fatalf("Stop before Start touched the transport")
	}

	if err := s.Start(context.Background(), "10.0.0.1", 5000); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if s.State() != StateStopped {
		t.Errorf("State() = %v, want STOPPED", s.State())
	}
	if s.VirtualURL() != "" || s.DeviceHandle() != transport.InvalidHandle || s.Port() != "" {
		t.Error("accessors must be cleared after Stop")
	}
	if ft.registered || ft.bound {
		t.Error("transport not released")
	}

	// Second Stop is a no-op.
	calls := len(ft.callLog())
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop = %v", err)
	}
	if len(ft.callLog()) != calls {
		t.Error("second Stop touched the transport")
	}

	// Restart gets a fresh handle.
	if err := s.Start(context.Background(), "10.0.0.1", 5000); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if s.DeviceHandle() != 2 {
		t.Errorf("DeviceHandle() after restart = %d, want 2", s.DeviceHandle())
	}
}

func TestCallbackInstalledAtRegister(t *testing.T) {
	ft := &fakeTransport{}
	s, _ := New(Config{UDN: testUDN}, ft, testRegistry(t))
	if err := s.Start(context.Background(), "10.0.0.1", 0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	req, err := ft.callback(context.Background(), &upnp.SubscriptionEvent{
		ServiceID: "urn:upnp-org:serviceId:ConnectionManager",
		SID:       "uuid:sub-1",
		Requested: time.Minute,
	})
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	sr, ok := req.(*upnp.SubscriptionRequest)
	if !ok || !sr.Accepted || sr.Granted != time.Minute {
		t.Errorf("subscription request = %+v", req)
	}
}
