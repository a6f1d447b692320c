// Package description builds and parses UPnP device description documents.
package description

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/wareck/gerbera/pkg/version"
)

// Well-known document constants.
const (
	Namespace             = "urn:schemas-upnp-org:device-1-0"
	DeviceTypeMediaServer = "urn:schemas-upnp-org:device:MediaServer:1"
	DocumentPath          = "/description.xml"
)

// Description errors.
var (
	ErrMissingUDN       = errors.New("device UDN is required")
	ErrDuplicateService = errors.New("duplicate service id")
	ErrInvalidService   = errors.New("service id and type are required")
	ErrIncompatible     = errors.New("incompatible UPnP architecture version")
)

// Identity carries the device identity fields of the document.
type Identity struct {
	UDN              string
	FriendlyName     string
	Manufacturer     string
	ManufacturerURL  string
	ModelDescription string
	ModelName        string
	ModelNumber      string
	ModelURL         string
	SerialNumber     string
	PresentationURL  string
}

// Service describes one entry of the device service list.
type Service struct {
	Type        string `xml:"serviceType"`
	ID          string `xml:"serviceId"`
	SCPDURL     string `xml:"SCPDURL"`
	ControlURL  string `xml:"controlURL"`
	EventSubURL string `xml:"eventSubURL"`
}

// SpecVersion is the UPnP architecture version.
type SpecVersion struct {
	Major int `xml:"major"`
	Minor int `xml:"minor"`
}

// Device is the device element of the document.
type Device struct {
	DeviceType       string    `xml:"deviceType"`
	FriendlyName     string    `xml:"friendlyName"`
	Manufacturer     string    `xml:"manufacturer"`
	ManufacturerURL  string    `xml:"manufacturerURL,omitempty"`
	ModelDescription string    `xml:"modelDescription,omitempty"`
	ModelName        string    `xml:"modelName"`
	ModelNumber      string    `xml:"modelNumber,omitempty"`
	ModelURL         string    `xml:"modelURL,omitempty"`
	SerialNumber     string    `xml:"serialNumber,omitempty"`
	UDN              string    `xml:"UDN"`
	PresentationURL  string    `xml:"presentationURL,omitempty"`
	Services         []Service `xml:"serviceList>service"`
}

// Root is the root element of a device description.
type Root struct {
	XMLName     xml.Name    `xml:"urn:schemas-upnp-org:device-1-0 root"`
	SpecVersion SpecVersion `xml:"specVersion"`
	URLBase     string      `xml:"URLBase,omitempty"`
	Device      Device      `xml:"device"`
}

// Build renders the device description document.
// baseURL is written as URLBase when non-empty.
func Build(id Identity, baseURL string, services []Service) (string, error) {
	if id.UDN == "" {
		return "", ErrMissingUDN
	}

	seen := make(map[string]bool, len(services))
	for _, svc := range services {
		if svc.ID == "" || svc.Type == "" {
			return "", ErrInvalidService
		}
		if seen[svc.ID] {
			return "", fmt.Errorf("%w: %s", ErrDuplicateService, svc.ID)
		}
		seen[svc.ID] = true
	}

	arch := version.MustParse(version.Architecture)
	root := Root{
		SpecVersion: SpecVersion{Major: int(arch.Major), Minor: int(arch.Minor)},
		URLBase:     baseURL,
		Device: Device{
			DeviceType:       DeviceTypeMediaServer,
			FriendlyName:     id.FriendlyName,
			Manufacturer:     id.Manufacturer,
			ManufacturerURL:  id.ManufacturerURL,
			ModelDescription: id.ModelDescription,
			ModelName:        id.ModelName,
			ModelNumber:      id.ModelNumber,
			ModelURL:         id.ModelURL,
			SerialNumber:     id.SerialNumber,
			UDN:              id.UDN,
			PresentationURL:  id.PresentationURL,
			Services:         services,
		},
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal device description: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

// Parse decodes a device description document.
func Parse(doc []byte) (*Root, error) {
	var root Root
	if err := xml.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("parse device description: %w", err)
	}
	if root.Device.UDN == "" {
		return nil, ErrMissingUDN
	}
	arch := version.MustParse(version.Architecture)
	if root.SpecVersion.Major != int(arch.Major) {
		return nil, fmt.Errorf("%w: %d.%d", ErrIncompatible, root.SpecVersion.Major, root.SpecVersion.Minor)
	}
	return &root, nil
}

// ServiceByID returns the service list entry with the given id.
func (r *Root) ServiceByID(id string) (Service, bool) {
	for _, svc := range r.Device.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}
