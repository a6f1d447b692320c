package upnp

import "errors"

// Status is the transport-level outcome of a dispatched event.
type Status uint8

const (
	// StatusSuccess indicates the request was processed.
	StatusSuccess Status = 0

	// StatusUnsupportedEvent indicates the event could not be translated.
	StatusUnsupportedEvent Status = 1

	// StatusUnknownService indicates no registered service matched.
	StatusUnknownService Status = 2

	// StatusServiceError indicates the service rejected the request.
	StatusServiceError Status = 3

	// StatusInternal indicates any other failure.
	StatusInternal Status = 4
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusUnsupportedEvent:
		return "UNSUPPORTED_EVENT"
	case StatusUnknownService:
		return "UNKNOWN_SERVICE"
	case StatusServiceError:
		return "SERVICE_ERROR"
	case StatusInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// StatusOf classifies a dispatch error.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}

	var tErr *TranslationError
	if errors.As(err, &tErr) || errors.Is(err, ErrUnsupportedEvent) || errors.Is(err, ErrNilEvent) {
		return StatusUnsupportedEvent
	}
	if errors.Is(err, ErrUnknownService) {
		return StatusUnknownService
	}

	var aErr *ActionError
	if errors.As(err, &aErr) {
		return StatusServiceError
	}
	return StatusInternal
}
