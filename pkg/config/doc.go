// Package config loads the media server configuration.
//
// Values are resolved in three layers: built-in defaults, the YAML file,
// then environment variables (GERBERA_UDN, GERBERA_IP, GERBERA_PORT,
// GERBERA_INTERFACE, GERBERA_FRIENDLY_NAME, GERBERA_LOG_LEVEL,
// GERBERA_STATE_FILE).
//
// Example file:
//
//	device:
//	  udn: "uuid:2fac1234-31f8-11b4-a222-08002b34c003"
//	  friendly_name: "Living Room Media"
//	  state_file: "/var/lib/gerbera/state.json"
//	network:
//	  ip: "192.168.1.10"
//	  port: 49152
//	  alive_interval: 180
//	content:
//	  root: "/srv/media"
//	logging:
//	  level: "debug"
//	  format: "text"
package config
