// Package logging builds the operational slog logger of the media server.
//
// Output is JSON or text, filtered by level, and every record carries the
// service and version fields. Configuration comes from the logging section
// of the config file:
//
//	logging:
//	  level: "info"     # debug, info, warn, error
//	  format: "text"    # json, text
//	  output: "stderr"  # stdout, stderr
package logging
