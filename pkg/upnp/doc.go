// Package upnp defines the in-process representation of UPnP device events
// and the requests the device dispatcher routes to its services.
//
// # Events
//
// A transport delivers every device event as an Event. Event is a closed sum
// type: the only implementations are the variants declared in this package,
// and UnknownEvent stands in for anything the transport could not map.
//
//	switch ev := ev.(type) {
//	case *upnp.ActionEvent:
//	case *upnp.SubscriptionEvent:
//	case *upnp.UnknownEvent:
//	}
//
// # Requests
//
// Translate converts an event into exactly one Request, either an
// ActionRequest or a SubscriptionRequest. Every other event kind yields a
// TranslationError. Requests carry their own output slot: services record
// results on the request and the transport reads them back after dispatch.
//
// # Errors
//
// Three error families are kept apart so callers can tell a device defect
// from a normal application failure:
//
//   - TranslationError (ErrUnsupportedEvent): the event kind is not routable
//   - RoutingError (ErrUnknownService): the service id is not registered
//   - ActionError: a registered service rejected the request
//
// StatusOf folds an error into the transport-level Status.
package upnp
