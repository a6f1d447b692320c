// Package version provides the product and UPnP architecture versions, and
// the product tokens carried in SERVER and USER-AGENT headers.
package version

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Product is the product token name.
const Product = "Gerbera"

// Current is the product version.
const Current = "1.0"

// Architecture is the UPnP device architecture version implemented.
const Architecture = "1.0"

// SpecVersion represents a parsed "major.minor" version.
type SpecVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (SpecVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return SpecVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return SpecVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return SpecVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return SpecVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// MustParse is Parse for constants. It panics on malformed input.
func MustParse(s string) SpecVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v SpecVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v SpecVersion) Compatible(other SpecVersion) bool {
	return v.Major == other.Major
}

// ServerHeader returns the SERVER header value: "OS/version UPnP/1.0
// Gerbera/1.0".
func ServerHeader() string {
	return fmt.Sprintf("%s/%s UPnP/%s %s/%s",
		runtime.GOOS, strings.TrimPrefix(runtime.Version(), "go"),
		Architecture, Product, Current)
}

// UPnPFromHeader extracts the UPnP architecture version from a SERVER or
// USER-AGENT header. Tokens are separated by spaces or commas.
func UPnPFromHeader(header string) (SpecVersion, error) {
	fields := strings.FieldsFunc(header, func(r rune) bool {
		return r == ' ' || r == ','
	})
	for _, f := range fields {
		name, ver, ok := strings.Cut(f, "/")
		if !ok || !strings.EqualFold(name, "UPnP") {
			continue
		}
		return Parse(ver)
	}
	return SpecVersion{}, fmt.Errorf("no UPnP product token in %q", header)
}
