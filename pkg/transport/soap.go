package transport

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wareck/gerbera/pkg/upnp"
)

// SOAP constants.
const (
	SOAPEnvelopeNS    = "http://schemas.xmlsoap.org/soap/envelope/"
	SOAPEncodingStyle = "http://schemas.xmlsoap.org/soap/encoding/"
	ControlNS         = "urn:schemas-upnp-org:control-1-0"
	ContentTypeXML    = `text/xml; charset="utf-8"`

	// QueryStateVariable is the UPnP 1.0 control query for a single
	// evented variable, sent in the ControlNS namespace.
	QueryStateVariable = "QueryStateVariable"
)

// SOAP errors.
var (
	ErrMalformedEnvelope = errors.New("malformed SOAP envelope")
	ErrMissingAction     = errors.New("SOAP body has no action element")
)

type soapEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Fault   *soapFault  `xml:"Fault"`
	Content *soapAction `xml:",any"`
}

type soapAction struct {
	XMLName xml.Name
	Args    []soapArg `xml:",any"`
}

type soapArg struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail struct {
		Error struct {
			Code        int    `xml:"errorCode"`
			Description string `xml:"errorDescription"`
		} `xml:"UPnPError"`
	} `xml:"detail"`
}

// SOAPAction splits a SOAPACTION header value into service type and action.
func SOAPAction(header string) (serviceType, action string, ok bool) {
	header = strings.Trim(strings.TrimSpace(header), `"`)
	idx := strings.LastIndexByte(header, '#')
	if idx <= 0 || idx == len(header)-1 {
		return "", "", false
	}
	return header[:idx], header[idx+1:], true
}

// DecodeAction parses a SOAP control request.
// It returns the action name and its arguments in document order.
func DecodeAction(body []byte) (string, []upnp.Argument, error) {
	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Body.Content == nil || env.Body.Content.XMLName.Local == "" {
		return "", nil, ErrMissingAction
	}

	args := make([]upnp.Argument, 0, len(env.Body.Content.Args))
	for _, a := range env.Body.Content.Args {
		args = append(args, upnp.Argument{Name: a.XMLName.Local, Value: a.Value})
	}
	return env.Body.Content.XMLName.Local, args, nil
}

func argValue(args []upnp.Argument, name string) string {
	for _, a := range args {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// EncodeAction renders a SOAP control request.
func EncodeAction(serviceType, action string, args []upnp.Argument) []byte {
	return encodeEnvelope(serviceType, action, args)
}

// EncodeResponse renders a successful SOAP control response.
func EncodeResponse(serviceType, action string, result []upnp.Argument) []byte {
	return encodeEnvelope(serviceType, action+"Response", result)
}

func encodeEnvelope(serviceType, element string, args []upnp.Argument) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<s:Envelope xmlns:s="%s" s:encodingStyle="%s"><s:Body>`, SOAPEnvelopeNS, SOAPEncodingStyle)
	fmt.Fprintf(&b, `<u:%s xmlns:u="%s">`, element, escape(serviceType))
	for _, a := range args {
		fmt.Fprintf(&b, "<%s>%s</%s>", a.Name, escape(a.Value), a.Name)
	}
	fmt.Fprintf(&b, "</u:%s></s:Body></s:Envelope>\n", element)
	return b.Bytes()
}

// EncodeFault renders a SOAP fault carrying a UPnPError.
func EncodeFault(code int, description string) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<s:Envelope xmlns:s="%s" s:encodingStyle="%s"><s:Body>`, SOAPEnvelopeNS, SOAPEncodingStyle)
	b.WriteString("<s:Fault><faultcode>s:Client</faultcode><faultstring>UPnPError</faultstring><detail>")
	fmt.Fprintf(&b, `<UPnPError xmlns="%s"><errorCode>%d</errorCode><errorDescription>%s</errorDescription></UPnPError>`,
		ControlNS, code, escape(description))
	b.WriteString("</detail></s:Fault></s:Body></s:Envelope>\n")
	return b.Bytes()
}

// DecodeResponse parses a SOAP control response. A fault is returned as
// *upnp.ActionError.
func DecodeResponse(body []byte) ([]upnp.Argument, error) {
	var env soapEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if f := env.Body.Fault; f != nil {
		return nil, &upnp.ActionError{
			Code:        f.Detail.Error.Code,
			Description: f.Detail.Error.Description,
		}
	}
	if env.Body.Content == nil {
		return nil, ErrMissingAction
	}

	out := make([]upnp.Argument, 0, len(env.Body.Content.Args))
	for _, a := range env.Body.Content.Args {
		out = append(out, upnp.Argument{Name: a.XMLName.Local, Value: a.Value})
	}
	return out, nil
}

// FaultDescription returns the standard description of a UPnP error code.
func FaultDescription(code int) string {
	switch code {
	case upnp.ErrorInvalidAction:
		return "Invalid Action"
	case upnp.ErrorInvalidArgs:
		return "Invalid Args"
	case upnp.ErrorActionFailed:
		return "Action Failed"
	case upnp.ErrorNoSuchObject:
		return "No such object"
	case upnp.ErrorInvalidConnection:
		return "Invalid connection reference"
	case upnp.ErrorCannotProcess:
		return "Cannot process the request"
	default:
		return "Error " + strconv.Itoa(code)
	}
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
