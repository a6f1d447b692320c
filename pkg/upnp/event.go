package upnp

import "time"

// EventType identifies the kind of event delivered by the transport.
type EventType uint8

const (
	// EventUnknown is an event the transport could not classify.
	EventUnknown EventType = 0

	// EventActionRequest is a SOAP control action invocation.
	EventActionRequest EventType = 1

	// EventStateVarRequest is a control query for a single state variable.
	EventStateVarRequest EventType = 2

	// EventSubscriptionRequest is a new GENA event subscription.
	EventSubscriptionRequest EventType = 3

	// EventSubscriptionExpired reports that a subscription timed out.
	EventSubscriptionExpired EventType = 4

	// EventAdvertisement reports an SSDP alive/byebye seen on the network.
	EventAdvertisement EventType = 5
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventUnknown:
		return "UNKNOWN"
	case EventActionRequest:
		return "ACTION_REQUEST"
	case EventStateVarRequest:
		return "STATE_VAR_REQUEST"
	case EventSubscriptionRequest:
		return "SUBSCRIPTION_REQUEST"
	case EventSubscriptionExpired:
		return "SUBSCRIPTION_EXPIRED"
	case EventAdvertisement:
		return "ADVERTISEMENT"
	default:
		return "UNKNOWN"
	}
}

// Event is a device event delivered by the transport.
// The set of implementations is closed to this package.
type Event interface {
	// Type returns the event tag.
	Type() EventType

	event()
}

// Argument is a named action argument. Order is significant.
type Argument struct {
	Name  string
	Value string
}

// StateVariable is an evented state variable and its current value.
type StateVariable struct {
	Name  string
	Value string
}

// ActionEvent is an incoming control action.
type ActionEvent struct {
	ServiceID  string
	ActionName string
	DeviceUDN  string
	Arguments  []Argument

	// RemoteAddr is the control point address, if known.
	RemoteAddr string
}

// StateVarEvent is a control query for a state variable.
type StateVarEvent struct {
	ServiceID    string
	DeviceUDN    string
	VariableName string
}

// SubscriptionEvent is a new event subscription.
type SubscriptionEvent struct {
	ServiceID string
	DeviceUDN string

	// SID is the subscription identifier assigned by the transport.
	SID string

	// Requested is the subscription duration asked for by the subscriber.
	// Zero means infinite.
	Requested time.Duration
}

// SubscriptionExpiredEvent reports a subscription that ran out.
type SubscriptionExpiredEvent struct {
	ServiceID string
	SID       string
}

// AdvertisementEvent reports a discovery announcement from another device.
type AdvertisementEvent struct {
	Alive    bool
	USN      string
	Location string
}

// UnknownEvent carries an event the transport could not map to a variant.
type UnknownEvent struct {
	Raw int
}

// Type implements Event.
func (*ActionEvent) Type() EventType { return EventActionRequest }

// Type implements Event.
func (*StateVarEvent) Type() EventType { return EventStateVarRequest }

// Type implements Event.
func (*SubscriptionEvent) Type() EventType { return EventSubscriptionRequest }

// Type implements Event.
func (*SubscriptionExpiredEvent) Type() EventType { return EventSubscriptionExpired }

// Type implements Event.
func (*AdvertisementEvent) Type() EventType { return EventAdvertisement }

// Type implements Event.
func (*UnknownEvent) Type() EventType { return EventUnknown }

func (*ActionEvent) event()              {}
func (*StateVarEvent) event()            {}
func (*SubscriptionEvent) event()        {}
func (*SubscriptionExpiredEvent) event() {}
func (*AdvertisementEvent) event()       {}
func (*UnknownEvent) event()             {}
