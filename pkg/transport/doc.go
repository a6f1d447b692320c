// Package transport connects a UPnP device to the network.
//
// Transport is the contract the device dispatcher programs against: bind an
// address, register a device description together with the callback that
// receives incoming events, start periodic alive advertisements, and tear
// everything down again.
//
// HTTPTransport is the concrete adapter. It serves:
//
//	GET         /description.xml        device description
//	GET         <SCPD paths>             static service documents
//	POST        <controlURL>             SOAP control actions
//	SUBSCRIBE   <eventSubURL>            GENA subscribe / renew
//	UNSUBSCRIBE <eventSubURL>            GENA cancel
//	*           /<virtual directory>/    optional content handler
//
// New subscriptions are handed to the callback; renewals, cancellation and
// expiry are handled inside the transport. Accepted subscribers receive an
// initial NOTIFY with the variables the service returned.
package transport
