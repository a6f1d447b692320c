// Package cm implements the UPnP ConnectionManager:1 service of a media
// server. The server only supports the implicit connection 0.
package cm

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/wareck/gerbera/pkg/description"
	"github.com/wareck/gerbera/pkg/registry"
	"github.com/wareck/gerbera/pkg/upnp"
)

// Service identity and URLs.
const (
	ServiceID   = "urn:upnp-org:serviceId:ConnectionManager"
	ServiceType = "urn:schemas-upnp-org:service:ConnectionManager:1"
	SCPDPath    = "/upnp/scpd/cm.xml"
	ControlPath = "/upnp/control/cm"
	EventPath   = "/upnp/event/cm"
)

// DefaultSourceProtocolInfo is announced when no protocol info is configured.
const DefaultSourceProtocolInfo = "http-get:*:*:*"

// Config configures the ConnectionManager.
type Config struct {
	// SourceProtocolInfo lists the protocols the server can send.
	SourceProtocolInfo []string

	// Logger is the optional logger for debug output.
	Logger *slog.Logger
}

// Service is the ConnectionManager service.
type Service struct {
	source string
	logger *slog.Logger
}

// New creates a ConnectionManager.
func New(config Config) *Service {
	source := strings.Join(config.SourceProtocolInfo, ",")
	if source == "" {
		source = DefaultSourceProtocolInfo
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{source: source, logger: logger}
}

// Entry returns the registry entry of the service.
func (s *Service) Entry() registry.Entry {
	return registry.Entry{
		Info: description.Service{
			Type:        ServiceType,
			ID:          ServiceID,
			SCPDURL:     SCPDPath,
			ControlURL:  ControlPath,
			EventSubURL: EventPath,
		},
		Service: s,
	}
}

// ProcessActionRequest handles ConnectionManager actions.
func (s *Service) ProcessActionRequest(_ context.Context, req *upnp.ActionRequest) error {
	s.logger.Debug("connection manager action", "action", req.ActionName)

	switch req.ActionName {
	case "GetProtocolInfo":
		req.SetResult(
			upnp.Argument{Name: "Source", Value: s.source},
			upnp.Argument{Name: "Sink", Value: ""},
		)
		return nil

	case "GetCurrentConnectionIDs":
		req.SetResult(upnp.Argument{Name: "ConnectionIDs", Value: "0"})
		return nil

	case "GetCurrentConnectionInfo":
		raw, ok := req.Arg("ConnectionID")
		if !ok {
			return upnp.NewActionError(upnp.ErrorInvalidArgs, "ConnectionID is required")
		}
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return upnp.NewActionError(upnp.ErrorInvalidArgs, "ConnectionID %q is not a number", raw)
		}
		if id != 0 {
			return upnp.NewActionError(upnp.ErrorInvalidConnection, "no connection %d", id)
		}
		req.SetResult(
			upnp.Argument{Name: "RcsID", Value: "-1"},
			upnp.Argument{Name: "AVTransportID", Value: "-1"},
			upnp.Argument{Name: "ProtocolInfo", Value: ""},
			upnp.Argument{Name: "PeerConnectionManager", Value: ""},
			upnp.Argument{Name: "PeerConnectionID", Value: "-1"},
			upnp.Argument{Name: "Direction", Value: "Output"},
			upnp.Argument{Name: "Status", Value: "OK"},
		)
		return nil

	default:
		return upnp.NewActionError(upnp.ErrorInvalidAction, "unknown action %q", req.ActionName)
	}
}

// ProcessSubscriptionRequest accepts the subscription with the current
// protocol info and connection list.
func (s *Service) ProcessSubscriptionRequest(_ context.Context, req *upnp.SubscriptionRequest) error {
	req.Accept(
		upnp.StateVariable{Name: "SourceProtocolInfo", Value: s.source},
		upnp.StateVariable{Name: "SinkProtocolInfo", Value: ""},
		upnp.StateVariable{Name: "CurrentConnectionIDs", Value: "0"},
	)
	return nil
}

// SCPD returns the service control protocol description.
func SCPD() *description.SCPD {
	in, out := description.In, description.Out
	return &description.SCPD{
		Actions: []description.Action{
			{Name: "GetProtocolInfo", Arguments: []description.ActionArgument{
				out("Source", "SourceProtocolInfo"),
				out("Sink", "SinkProtocolInfo"),
			}},
			{Name: "GetCurrentConnectionIDs", Arguments: []description.ActionArgument{
				out("ConnectionIDs", "CurrentConnectionIDs"),
			}},
			{Name: "GetCurrentConnectionInfo", Arguments: []description.ActionArgument{
				in("ConnectionID", "A_ARG_TYPE_ConnectionID"),
				out("RcsID", "A_ARG_TYPE_RcsID"),
				out("AVTransportID", "A_ARG_TYPE_AVTransportID"),
				out("ProtocolInfo", "A_ARG_TYPE_ProtocolInfo"),
				out("PeerConnectionManager", "A_ARG_TYPE_ConnectionManager"),
				out("PeerConnectionID", "A_ARG_TYPE_ConnectionID"),
				out("Direction", "A_ARG_TYPE_Direction"),
				out("Status", "A_ARG_TYPE_ConnectionStatus"),
			}},
		},
		StateVariables: []description.StateVariable{
			description.Evented("SourceProtocolInfo", "string"),
			description.Evented("SinkProtocolInfo", "string"),
			description.Evented("CurrentConnectionIDs", "string"),
			description.Unevented("A_ARG_TYPE_ConnectionStatus", "string", "OK", "ContentFormatMismatch", "InsufficientBandwidth", "UnreliableChannel", "Unknown"),
			description.Unevented("A_ARG_TYPE_ConnectionManager", "string"),
			description.Unevented("A_ARG_TYPE_Direction", "string", "Input", "Output"),
			description.Unevented("A_ARG_TYPE_ProtocolInfo", "string"),
			description.Unevented("A_ARG_TYPE_ConnectionID", "i4"),
			description.Unevented("A_ARG_TYPE_AVTransportID", "i4"),
			description.Unevented("A_ARG_TYPE_RcsID", "i4"),
		},
	}
}

// Compile-time interface satisfaction check.
var _ registry.Service = (*Service)(nil)
