package cds

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// DIDL-Lite namespaces.
const (
	DIDLNamespace = "urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"
	DCNamespace   = "http://purl.org/dc/elements/1.1/"
	UPnPNamespace = "urn:schemas-upnp-org:metadata-1-0/upnp/"
)

type didlLite struct {
	XMLName    xml.Name        `xml:"DIDL-Lite"`
	Xmlns      string          `xml:"xmlns,attr"`
	XmlnsDC    string          `xml:"xmlns:dc,attr"`
	XmlnsUPnP  string          `xml:"xmlns:upnp,attr"`
	Containers []didlContainer `xml:"container"`
	Items      []didlItem      `xml:"item"`
}

type didlContainer struct {
	ID         string `xml:"id,attr"`
	ParentID   string `xml:"parentID,attr"`
	Restricted string `xml:"restricted,attr"`
	ChildCount int    `xml:"childCount,attr"`
	Title      string `xml:"dc:title"`
	Class      string `xml:"upnp:class"`
}

type didlItem struct {
	ID         string    `xml:"id,attr"`
	ParentID   string    `xml:"parentID,attr"`
	Restricted string    `xml:"restricted,attr"`
	Title      string    `xml:"dc:title"`
	Creator    string    `xml:"dc:creator,omitempty"`
	Class      string    `xml:"upnp:class"`
	Resources  []didlRes `xml:"res"`
}

type didlRes struct {
	ProtocolInfo string `xml:"protocolInfo,attr"`
	Size         string `xml:"size,attr,omitempty"`
	Duration     string `xml:"duration,attr,omitempty"`
	URL          string `xml:",chardata"`
}

// RenderDIDL renders objects as a DIDL-Lite document. Containers are listed
// before items.
func RenderDIDL(objects []*Object) (string, error) {
	doc := didlLite{
		Xmlns:     DIDLNamespace,
		XmlnsDC:   DCNamespace,
		XmlnsUPnP: UPnPNamespace,
	}
	for _, o := range objects {
		if o.Container {
			doc.Containers = append(doc.Containers, didlContainer{
				ID:         o.ID,
				ParentID:   o.ParentID,
				Restricted: "1",
				ChildCount: o.ChildCount,
				Title:      o.Title,
				Class:      o.Class,
			})
			continue
		}

		item := didlItem{
			ID:         o.ID,
			ParentID:   o.ParentID,
			Restricted: "1",
			Title:      o.Title,
			Creator:    o.Creator,
			Class:      o.Class,
		}
		for _, r := range o.Resources {
			res := didlRes{ProtocolInfo: r.ProtocolInfo, Duration: r.Duration, URL: r.URL}
			if r.Size > 0 {
				res.Size = strconv.FormatInt(r.Size, 10)
			}
			item.Resources = append(item.Resources, res)
		}
		doc.Items = append(doc.Items, item)
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("render DIDL-Lite: %w", err)
	}
	return string(out), nil
}
