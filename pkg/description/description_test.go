package description

import (
	"errors"
	"strings"
	"testing"
)

func testServices() []Service {
	return []Service{
		{
			Type:        "urn:schemas-upnp-org:service:ContentDirectory:1",
			ID:          "urn:upnp-org:serviceId:ContentDirectory",
			SCPDURL:     "/upnp/scpd/cds.xml",
			ControlURL:  "/upnp/control/cds",
			EventSubURL: "/upnp/event/cds",
		},
		{
			Type:        "urn:schemas-upnp-org:service:ConnectionManager:1",
			ID:          "urn:upnp-org:serviceId:ConnectionManager",
			SCPDURL:     "/upnp/scpd/cm.xml",
			ControlURL:  "/upnp/control/cm",
			EventSubURL: "/upnp/event/cm",
		},
	}
}

func TestBuildAndParse(t *testing.T) {
	id := Identity{
		UDN:             "uuid:3f1c2b9a-8f37-4c55-a0e8-4d1b2c3d4e5f",
		FriendlyName:    "Gerbera",
		Manufacturer:    "Gerbera Contributors",
		ModelName:       "Gerbera",
		ModelNumber:     "1.0",
		PresentationURL: "http://192.168.1.10:49153/",
	}

	doc, err := Build(id, "http://192.168.1.10:49153/", testServices())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !strings.HasPrefix(doc, "<?xml") {
		t.Error("document does not start with an XML header")
	}
	for _, want := range []string{
		`<root xmlns="urn:schemas-upnp-org:device-1-0">`,
		"<deviceType>" + DeviceTypeMediaServer + "</deviceType>",
		"<UDN>" + id.UDN + "</UDN>",
		"<friendlyName>Gerbera</friendlyName>",
		"<controlURL>/upnp/control/cds</controlURL>",
		"<eventSubURL>/upnp/event/cm</eventSubURL>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	root, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if root.Device.UDN != id.UDN {
		t.Errorf("UDN = %q", root.Device.UDN)
	}
	if root.SpecVersion.Major != 1 {
		t.Errorf("spec major = %d", root.SpecVersion.Major)
	}
	svc, ok := root.ServiceByID("urn:upnp-org:serviceId:ConnectionManager")
	if !ok {
		t.Fatal("ConnectionManager not found in parsed document")
	}
	if svc.ControlURL != "/upnp/control/cm" {
		t.Errorf("ControlURL = %q", svc.ControlURL)
	}
}

func TestBuildRequiresUDN(t *testing.T) {
	_, err := Build(Identity{FriendlyName: "x"}, "", nil)
	if !errors.Is(err, ErrMissingUDN) {
		t.Errorf("expected ErrMissingUDN, got %v", err)
	}
}

func TestBuildRejectsDuplicateService(t *testing.T) {
	svcs := append(testServices(), testServices()[0])
	_, err := Build(Identity{UDN: "uuid:x"}, "", svcs)
	if !errors.Is(err, ErrDuplicateService) {
		t.Errorf("expected ErrDuplicateService, got %v", err)
	}
}

func TestBuildEscapesText(t *testing.T) {
	doc, err := Build(Identity{UDN: "uuid:x", FriendlyName: "Tom & Jerry <media>"}, "", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.Contains(doc, "Tom &amp; Jerry &lt;media&gt;") {
		t.Errorf("friendly name not escaped:\n%s", doc)
	}
}

func TestParseRejectsIncompatibleVersion(t *testing.T) {
	doc := `<root xmlns="urn:schemas-upnp-org:device-1-0">` +
		`<specVersion><major>2</major><minor>0</minor></specVersion>` +
		`<device><UDN>uuid:x</UDN></device></root>`
	_, err := Parse([]byte(doc))
	if !errors.Is(err, ErrIncompatible) {
		t.Errorf("expected ErrIncompatible, got %v", err)
	}
}
