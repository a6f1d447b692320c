// Package log captures a machine-readable trace of everything the device
// routes: SOAP actions, GENA subscriptions and notifications, lifecycle
// changes and dispatch errors.
//
// It is separate from operational logging. The transport, the dispatcher
// and the services each emit Events tagged with their Layer to a Logger
// supplied through their Config:
//
//	fl, err := log.NewFileLogger("/var/log/gerbera/device.glog")
//	...
//	srv, err := server.New(server.Config{
//		ProtocolLogger: log.NewMultiLogger(fl, log.NewSlogAdapter(slog.Default())),
//	}, tr, reg)
//
// Files are a concatenation of CBOR-encoded events, conventionally with a
// .glog extension. Reader streams them back with optional filtering and
// the gerbera-log command renders, filters and summarizes them.
package log
