package cds

import (
	"strings"
	"testing"
)

func TestRenderDIDL(t *testing.T) {
	objects := []*Object{
		{ID: "t1", ParentID: "music", Title: "Rock & Roll", Class: ClassAudioItem, Creator: "Band",
			Resources: []Resource{{URL: "http://h/content/t1?a=1&b=2", ProtocolInfo: "http-get:*:audio/mpeg:*", Size: 10}}},
		{ID: "music", ParentID: RootID, Title: "Music", Class: ClassStorage, Container: true, ChildCount: 1},
	}

	doc, err := RenderDIDL(objects)
	if err != nil {
		t.Fatalf("RenderDIDL failed: %v", err)
	}

	for _, want := range []string{
		`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">`,
		`<container id="music" parentID="0" restricted="1" childCount="1"><dc:title>Music</dc:title><upnp:class>object.container.storageFolder</upnp:class></container>`,
		`<item id="t1" parentID="music" restricted="1">`,
		`<dc:title>Rock &amp; Roll</dc:title>`,
		`<dc:creator>Band</dc:creator>`,
		`<res protocolInfo="http-get:*:audio/mpeg:*" size="10">http://h/content/t1?a=1&amp;b=2</res>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("DIDL missing %q:\n%s", want, doc)
		}
	}

	if strings.Index(doc, "<container") > strings.Index(doc, "<item") {
		t.Error("containers must precede items")
	}
}

func TestRenderDIDLEmpty(t *testing.T) {
	doc, err := RenderDIDL(nil)
	if err != nil {
		t.Fatalf("RenderDIDL failed: %v", err)
	}
	if strings.Contains(doc, "<item") || strings.Contains(doc, "<container") {
		t.Errorf("empty DIDL has entries: %s", doc)
	}
}
