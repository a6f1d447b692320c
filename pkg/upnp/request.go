package upnp

import (
	"time"
)

// RequestKind distinguishes the two routable request types.
type RequestKind uint8

const (
	// KindAction is an ActionRequest.
	KindAction RequestKind = 1

	// KindSubscription is a SubscriptionRequest.
	KindSubscription RequestKind = 2
)

// String returns the request kind name.
func (k RequestKind) String() string {
	switch k {
	case KindAction:
		return "ACTION"
	case KindSubscription:
		return "SUBSCRIPTION"
	default:
		return "UNKNOWN"
	}
}

// Request is a translated event ready for routing.
// The set of implementations is closed to this package.
type Request interface {
	// Kind returns the request kind.
	Kind() RequestKind

	// Service returns the target service id.
	Service() string

	request()
}

// ActionRequest is a control action addressed to one service.
// It is created per incoming event and consumed by exactly one service.
type ActionRequest struct {
	ServiceID  string
	ActionName string
	DeviceUDN  string
	Arguments  []Argument
	RemoteAddr string

	// Result holds the output arguments set by the service.
	Result []Argument

	// Err is the outcome recorded by the dispatcher: nil, a routing error
	// or the service's error verbatim.
	Err error
}

// NewActionRequest builds a request from an action event.
func NewActionRequest(ev *ActionEvent) *ActionRequest {
	args := make([]Argument, len(ev.Arguments))
	copy(args, ev.Arguments)
	return &ActionRequest{
		ServiceID:  ev.ServiceID,
		ActionName: ev.ActionName,
		DeviceUDN:  ev.DeviceUDN,
		Arguments:  args,
		RemoteAddr: ev.RemoteAddr,
	}
}

// Kind implements Request.
func (*ActionRequest) Kind() RequestKind { return KindAction }

// Service implements Request.
func (r *ActionRequest) Service() string { return r.ServiceID }

func (*ActionRequest) request() {}

// Arg returns the value of the named input argument.
func (r *ActionRequest) Arg(name string) (string, bool) {
	for _, a := range r.Arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetResult replaces the output arguments.
func (r *ActionRequest) SetResult(args ...Argument) {
	r.Result = args
}

// AddResult appends one output argument.
func (r *ActionRequest) AddResult(name, value string) {
	r.Result = append(r.Result, Argument{Name: name, Value: value})
}

// SubscriptionRequest is an event subscription addressed to one service.
type SubscriptionRequest struct {
	ServiceID string
	DeviceUDN string
	SID       string
	Requested time.Duration

	// Accepted is set when the service takes the subscription.
	Accepted bool

	// Granted is the duration the service grants. Zero means infinite.
	Granted time.Duration

	// Variables is the initial event set sent to the subscriber.
	Variables []StateVariable

	// Err is the outcome recorded by the dispatcher.
	Err error
}

// NewSubscriptionRequest builds a request from a subscription event.
func NewSubscriptionRequest(ev *SubscriptionEvent) *SubscriptionRequest {
	return &SubscriptionRequest{
		ServiceID: ev.ServiceID,
		DeviceUDN: ev.DeviceUDN,
		SID:       ev.SID,
		Requested: ev.Requested,
	}
}

// Kind implements Request.
func (*SubscriptionRequest) Kind() RequestKind { return KindSubscription }

// Service implements Request.
func (r *SubscriptionRequest) Service() string { return r.ServiceID }

func (*SubscriptionRequest) request() {}

// Accept marks the subscription accepted with the initial variable set.
// The granted duration is the requested one.
func (r *SubscriptionRequest) Accept(vars ...StateVariable) {
	r.Accepted = true
	r.Granted = r.Requested
	r.Variables = vars
}
