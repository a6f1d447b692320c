package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wareck/gerbera/pkg/description"
	"github.com/wareck/gerbera/pkg/log"
	"github.com/wareck/gerbera/pkg/registry"
	"github.com/wareck/gerbera/pkg/transport"
)

// deviceState is the identity fixed by a successful Start.
// It is never mutated after publication.
type deviceState struct {
	handle      transport.Handle
	addr        transport.Address
	virtualURL  string
	description string
}

// Server is a UPnP media server device.
type Server struct {
	config    Config
	transport transport.Transport
	registry  *registry.Registry

	logger         *slog.Logger
	protocolLogger log.Logger

	// mu is the routing critical section held for the whole of Callback.
	mu sync.Mutex

	// lifecycleMu serializes Start and Stop.
	lifecycleMu sync.Mutex

	state   atomic.Uint32
	current atomic.Pointer[deviceState]
}

// New creates a Server. The transport is not touched until Start.
func New(config Config, t transport.Transport, reg *registry.Registry) (*Server, error) {
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidConfig)
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	}

	s := &Server{
		config:         config,
		transport:      t,
		registry:       reg,
		logger:         config.Logger,
		protocolLogger: config.ProtocolLogger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.protocolLogger = log.OrNoop(s.protocolLogger)
	return s, nil
}

// State returns the lifecycle state.
func (s *Server) State() ServiceState {
	return ServiceState(s.state.Load())
}

// Start binds the transport to ip:port, registers the device and starts
// advertising it. The actual port may differ from the requested one.
//
// On failure everything acquired so far is released and the error matches
// ErrStartup. Start on a running server returns ErrAlreadyStarted.
func (s *Server) Start(ctx context.Context, ip string, port int) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if st := s.State(); st != StateIdle && st != StateStopped {
		return ErrAlreadyStarted
	}
	s.setState(StateStarting, fmt.Sprintf("requested %s:%d", ip, port))

	addr, err := s.transport.Bind(ctx, ip, port)
	if err != nil {
		return s.startFailed(fmt.Errorf("%w: bind: %w", ErrStartup, err))
	}
	s.logger.Info("transport bound", "ip", addr.IP, "port", addr.Port)

	baseURL := "http://" + addr.String()
	desc, err := description.Build(s.identity(baseURL), "", s.registry.Descriptions())
	if err != nil {
		s.closeTransport()
		return s.startFailed(fmt.Errorf("%w: description: %w", ErrStartup, err))
	}

	handle, err := s.transport.Register(desc, s.Callback)
	if err != nil {
		s.closeTransport()
		return s.startFailed(fmt.Errorf("%w: register: %w", ErrStartup, err))
	}

	virtualURL := baseURL + "/" + s.config.VirtualDirectory + "/"

	if err := s.transport.Advertise(handle, s.config.AliveInterval); err != nil {
		if uErr := s.transport.Unregister(handle); uErr != nil {
			s.logger.Warn("unregister after failed start", "error", uErr)
		}
		s.closeTransport()
		return s.startFailed(fmt.Errorf("%w: advertise: %w", ErrStartup, err))
	}

	s.current.Store(&deviceState{
		handle:      handle,
		addr:        addr,
		virtualURL:  virtualURL,
		description: desc,
	})
	s.setState(StateRunning, addr.String())

	s.logger.Info("device started",
		"udn", s.config.UDN,
		"handle", handle,
		"virtual_url", virtualURL,
		"services", s.registry.Len())
	return nil
}

// Stop stops advertising, unregisters the device and releases the binding.
// Every step runs even if an earlier one fails; the errors are joined.
// Stop on a server that is not running is a no-op.
func (s *Server) Stop() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	st := s.current.Load()
	if st == nil {
		return nil
	}
	s.setState(StateStopping, "stop")

	var errs []error
	if err := s.transport.Unregister(st.handle); err != nil {
		errs = append(errs, fmt.Errorf("unregister: %w", err))
	}
	if err := s.transport.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close transport: %w", err))
	}

	s.current.Store(nil)
	s.setState(StateStopped, "stop")

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Warn("device cleanup incomplete", "udn", s.config.UDN, "error", err)
	} else {
		s.logger.Info("device stopped", "udn", s.config.UDN)
	}
	return err
}

func (s *Server) startFailed(err error) error {
	s.setState(StateIdle, err.Error())
	s.logger.Error("device start failed", "udn", s.config.UDN, "error", err)
	return err
}

func (s *Server) closeTransport() {
	if err := s.transport.Close(); err != nil {
		s.logger.Warn("close transport after failed start", "error", err)
	}
}

func (s *Server) identity(baseURL string) description.Identity {
	presentation := s.config.PresentationURL
	if presentation == "" {
		presentation = baseURL + "/"
	}
	return description.Identity{
		UDN:              s.config.UDN,
		FriendlyName:     s.config.FriendlyName,
		Manufacturer:     s.config.Manufacturer,
		ManufacturerURL:  s.config.ManufacturerURL,
		ModelDescription: s.config.ModelDescription,
		ModelName:        s.config.ModelName,
		ModelNumber:      s.config.ModelNumber,
		ModelURL:         s.config.ModelURL,
		SerialNumber:     s.config.SerialNumber,
		PresentationURL:  presentation,
	}
}

func (s *Server) setState(newState ServiceState, reason string) {
	old := ServiceState(s.state.Swap(uint32(newState)))
	s.protocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionOut,
		Layer:     log.LayerDispatch,
		Category:  log.CategoryState,
		DeviceUDN: s.config.UDN,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityDevice,
			OldState: old.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})
}

// VirtualURL returns "http://<ip>:<port>/<virtual directory>/", or "" when
// not running.
func (s *Server) VirtualURL() string {
	if st := s.current.Load(); st != nil {
		return st.virtualURL
	}
	return ""
}

// DeviceHandle returns the transport handle, or transport.InvalidHandle when
// not running.
func (s *Server) DeviceHandle() transport.Handle {
	if st := s.current.Load(); st != nil {
		return st.handle
	}
	return transport.InvalidHandle
}

// IP returns the bound IP address, or "" when not running.
func (s *Server) IP() string {
	if st := s.current.Load(); st != nil {
		return st.addr.IP
	}
	return ""
}

// Port returns the bound port in decimal, or "" when not running.
func (s *Server) Port() string {
	if st := s.current.Load(); st != nil {
		return strconv.Itoa(st.addr.Port)
	}
	return ""
}

// Description returns the registered device description, or "" when not
// running.
func (s *Server) Description() string {
	if st := s.current.Load(); st != nil {
		return st.description
	}
	return ""
}

// UDN returns the configured device UDN.
func (s *Server) UDN() string {
	return s.config.UDN
}

// connectionID correlates the request and response entries of one event.
func connectionID() string {
	return uuid.NewString()
}
