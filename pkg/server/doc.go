// Package server runs a UPnP media server device.
//
// A Server owns the device lifecycle and the routing of incoming events:
//
//	transport ──► Callback ──► upnp.Translate ──► registry ──► service
//	                 │
//	                 └── one device-wide critical section
//
// Start binds the transport, builds the device description from the
// configured identity and the registered services, registers the device and
// starts alive advertisements. Stop reverses this and leaves the Server
// ready to be started again.
//
// Callback processes one event at a time. Events arriving concurrently
// wait for the running one to finish. The identity fixed at Start (handle,
// address, virtual URL) is published atomically and can be read from any
// goroutine without taking the routing lock.
package server
