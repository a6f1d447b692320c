// Package cds implements the UPnP ContentDirectory:1 service of a media
// server on top of a pluggable Directory.
package cds

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wareck/gerbera/pkg/description"
	"github.com/wareck/gerbera/pkg/registry"
	"github.com/wareck/gerbera/pkg/upnp"
)

// Service identity and URLs.
const (
	ServiceID   = "urn:upnp-org:serviceId:ContentDirectory"
	ServiceType = "urn:schemas-upnp-org:service:ContentDirectory:1"
	SCPDPath    = "/upnp/scpd/cds.xml"
	ControlPath = "/upnp/control/cds"
	EventPath   = "/upnp/event/cds"
)

// Browse flags.
const (
	BrowseMetadata       = "BrowseMetadata"
	BrowseDirectChildren = "BrowseDirectChildren"
)

// ErrorNoSuchContainer is the ContentDirectory error for browsing the
// children of an item.
const ErrorNoSuchContainer = 710

// DefaultBrowseTimeout bounds one Browse against the directory.
const DefaultBrowseTimeout = 5 * time.Second

// Config configures the ContentDirectory.
type Config struct {
	// Directory provides the content. Required.
	Directory Directory

	// BrowseTimeout bounds directory work per Browse (default: 5s).
	BrowseTimeout time.Duration

	// SearchCapabilities and SortCapabilities are reported verbatim.
	SearchCapabilities string
	SortCapabilities   string

	// Logger is the optional logger for debug output.
	Logger *slog.Logger
}

// Service is the ContentDirectory service.
type Service struct {
	config Config
	logger *slog.Logger
}

// New creates a ContentDirectory. A nil Directory is replaced by an empty
// MemoryDirectory.
func New(config Config) *Service {
	if config.Directory == nil {
		config.Directory = NewMemoryDirectory()
	}
	if config.BrowseTimeout <= 0 {
		config.BrowseTimeout = DefaultBrowseTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{config: config, logger: logger}
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

// ProcessActionRequest handles ContentDirectory actions.
func (s *Service) ProcessActionRequest(ctx context.Context, req *upnp.ActionRequest) error {
	switch req.ActionName {
	case "Browse":
		return s.browse(ctx, req)
	case "GetSearchCapabilities":
		req.SetResult(upnp.Argument{Name: "SearchCaps", Value: s.config.SearchCapabilities})
		return nil
	case "GetSortCapabilities":
		req.SetResult(upnp.Argument{Name: "SortCaps", Value: s.config.SortCapabilities})
		return nil
	case "GetSystemUpdateID":
		req.SetResult(upnp.Argument{Name: "Id", Value: s.systemUpdateID()})
		return nil
	default:
		return upnp.NewActionError(upnp.ErrorInvalidAction, "unknown action %q", req.ActionName)
	}
}

// ProcessSubscriptionRequest accepts the subscription with the current
// update ids.
func (s *Service) ProcessSubscriptionRequest(_ context.Context, req *upnp.SubscriptionRequest) error {
	req.Accept(
		upnp.StateVariable{Name: "SystemUpdateID", Value: s.systemUpdateID()},
		upnp.StateVariable{Name: "ContainerUpdateIDs", Value: ""},
	)
	return nil
}

func (s *Service) systemUpdateID() string {
	return strconv.FormatUint(uint64(s.config.Directory.SystemUpdateID()), 10)
}

// browseArgs are the validated Browse inputs.
type browseArgs struct {
	objectID string
	flag     string
	start    int
	count    int
}

func parseBrowseArgs(req *upnp.ActionRequest) (browseArgs, error) {
	var args browseArgs
	var ok bool

	if args.objectID, ok = req.Arg("ObjectID"); !ok || args.objectID == "" {
		return args, upnp.NewActionError(upnp.ErrorInvalidArgs, "ObjectID is required")
	}

	args.flag, _ = req.Arg("BrowseFlag")
	if args.flag != BrowseMetadata && args.flag != BrowseDirectChildren {
		return args, upnp.NewActionError(upnp.ErrorInvalidArgs, "invalid BrowseFlag %q", args.flag)
	}

	var err error
	if args.start, err = uintArg(req, "StartingIndex"); err != nil {
		return args, err
	}
	if args.count, err = uintArg(req, "RequestedCount"); err != nil {
		return args, err
	}
	return args, nil
}

// uintArg parses an optional ui4 argument. Values above the platform int
// range are clamped to math.MaxInt.
func uintArg(req *upnp.ActionRequest, name string) (int, error) {
	raw, ok := req.Arg(name)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, upnp.NewActionError(upnp.ErrorInvalidArgs, "%s %q is not a ui4", name, raw)
	}
	if n > math.MaxInt {
		return math.MaxInt, nil
	}
	return int(n), nil
}

func (s *Service) browse(ctx context.Context, req *upnp.ActionRequest) error {
	args, err := parseBrowseArgs(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.BrowseTimeout)
	defer cancel()

	var (
		objects []*Object
		total   int
	)
	if args.flag == BrowseMetadata {
		obj, err := s.config.Directory.Object(ctx, args.objectID)
		if err != nil {
			return s.directoryError(args.objectID, err)
		}
		objects, total = []*Object{obj}, 1
	} else {
		objects, total, err = s.config.Directory.Children(ctx, args.objectID, args.start, args.count)
		if err != nil {
			return s.directoryError(args.objectID, err)
		}
	}

	didl, err := RenderDIDL(objects)
	if err != nil {
		return upnp.NewActionError(upnp.ErrorActionFailed, "%v", err)
	}

	s.logger.Debug("browse",
		"object", args.objectID,
		"flag", args.flag,
		"returned", len(objects),
		"total", total)

	req.SetResult(
		upnp.Argument{Name: "Result", Value: didl},
		upnp.Argument{Name: "NumberReturned", Value: strconv.Itoa(len(objects))},
		upnp.Argument{Name: "TotalMatches", Value: strconv.Itoa(total)},
		upnp.Argument{Name: "UpdateID", Value: s.systemUpdateID()},
	)
	return nil
}

// directoryError maps a Directory failure to a UPnP error.
func (s *Service) directoryError(objectID string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return upnp.NewActionError(upnp.ErrorNoSuchObject, "no such object %q", objectID)
	case errors.Is(err, ErrNotContainer):
		return upnp.NewActionError(ErrorNoSuchContainer, "%q is not a container", objectID)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.logger.Warn("browse timed out", "object", objectID, "timeout", s.config.BrowseTimeout)
		return upnp.NewActionError(upnp.ErrorCannotProcess, "browse of %q timed out", objectID)
	default:
		s.logger.Warn("browse failed", "object", objectID, "error", err)
		return upnp.NewActionError(upnp.ErrorActionFailed, "browse of %q failed", objectID)
	}
}

// SCPD returns the service control protocol description.
func SCPD() *description.SCPD {
	in, out := description.In, description.Out
	return &description.SCPD{
		Actions: []description.Action{
			{Name: "GetSearchCapabilities", Arguments: []description.ActionArgument{
				out("SearchCaps", "SearchCapabilities"),
			}},
			{Name: "GetSortCapabilities", Arguments: []description.ActionArgument{
				out("SortCaps", "SortCapabilities"),
			}},
			{Name: "GetSystemUpdateID", Arguments: []description.ActionArgument{
				out("Id", "SystemUpdateID"),
			}},
			{Name: "Browse", Arguments: []description.ActionArgument{
				in("ObjectID", "A_ARG_TYPE_ObjectID"),
				in("BrowseFlag", "A_ARG_TYPE_BrowseFlag"),
				in("Filter", "A_ARG_TYPE_Filter"),
				in("StartingIndex", "A_ARG_TYPE_Index"),
				in("RequestedCount", "A_ARG_TYPE_Count"),
				in("SortCriteria", "A_ARG_TYPE_SortCriteria"),
				out("Result", "A_ARG_TYPE_Result"),
				out("NumberReturned", "A_ARG_TYPE_Count"),
				out("TotalMatches", "A_ARG_TYPE_Count"),
				out("UpdateID", "A_ARG_TYPE_UpdateID"),
			}},
		},
		StateVariables: []description.StateVariable{
			description.Unevented("SearchCapabilities", "string"),
			description.Unevented("SortCapabilities", "string"),
			description.Evented("SystemUpdateID", "ui4"),
			description.Evented("ContainerUpdateIDs", "string"),
			description.Unevented("A_ARG_TYPE_ObjectID", "string"),
			description.Unevented("A_ARG_TYPE_Result", "string"),
			description.Unevented("A_ARG_TYPE_BrowseFlag", "string", BrowseMetadata, BrowseDirectChildren),
			description.Unevented("A_ARG_TYPE_Filter", "string"),
			description.Unevented("A_ARG_TYPE_SortCriteria", "string"),
			description.Unevented("A_ARG_TYPE_Index", "ui4"),
			description.Unevented("A_ARG_TYPE_Count", "ui4"),
			description.Unevented("A_ARG_TYPE_UpdateID", "ui4"),
		},
	}
}

// Compile-time interface satisfaction check.
var _ registry.Service = (*Service)(nil)
