package upnp

import (
	"errors"
	"fmt"
)

// Dispatch errors.
var (
	ErrUnsupportedEvent = errors.New("unsupported event type")
	ErrNilEvent         = errors.New("nil event")
	ErrUnknownService   = errors.New("unknown service id")
)

// UPnP control error codes used by the device services.
const (
	ErrorInvalidAction     = 401
	ErrorInvalidArgs       = 402
	ErrorActionFailed      = 501
	ErrorNoSuchObject      = 701
	ErrorInvalidConnection = 706
	ErrorCannotProcess     = 720
)

// TranslationError reports an event that cannot become a request.
type TranslationError struct {
	Type EventType
	Err  error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s event: %v", e.Type, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// RoutingError reports a request whose service id is not registered.
// It indicates a mismatch between the device description and the registry.
type RoutingError struct {
	Kind      RequestKind
	ServiceID string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("route %s request: %v: %q", e.Kind, ErrUnknownService, e.ServiceID)
}

// Is matches ErrUnknownService.
func (e *RoutingError) Is(target error) bool {
	return target == ErrUnknownService
}

// ActionError is a failure returned by a registered service.
type ActionError struct {
	Code        int
	Description string
}

// NewActionError creates a service-level error.
func NewActionError(code int, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Description: fmt.Sprintf(format, args...)}
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("upnp error %d: %s", e.Code, e.Description)
}
