package description

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ServiceNamespace is the namespace of service control protocol documents.
const ServiceNamespace = "urn:schemas-upnp-org:service-1-0"

// Argument directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// ErrUnknownStateVariable reports an argument bound to an undeclared variable.
var ErrUnknownStateVariable = errors.New("argument references unknown state variable")

// SCPD is a service control protocol description.
type SCPD struct {
	XMLName        xml.Name        `xml:"urn:schemas-upnp-org:service-1-0 scpd"`
	SpecVersion    SpecVersion     `xml:"specVersion"`
	Actions        []Action        `xml:"actionList>action"`
	StateVariables []StateVariable `xml:"serviceStateTable>stateVariable"`
}

// Action declares one control action.
type Action struct {
	Name      string           `xml:"name"`
	Arguments []ActionArgument `xml:"argumentList>argument,omitempty"`
}

// ActionArgument declares one action argument.
type ActionArgument struct {
	Name                 string `xml:"name"`
	Direction            string `xml:"direction"`
	RelatedStateVariable string `xml:"relatedStateVariable"`
}

// StateVariable declares one entry of the service state table.
type StateVariable struct {
	SendEvents    string   `xml:"sendEvents,attr"`
	Name          string   `xml:"name"`
	DataType      string   `xml:"dataType"`
	AllowedValues []string `xml:"allowedValueList>allowedValue,omitempty"`
}

// In declares an input argument.
func In(name, variable string) ActionArgument {
	return ActionArgument{Name: name, Direction: DirectionIn, RelatedStateVariable: variable}
}

// Out declares an output argument.
func Out(name, variable string) ActionArgument {
	return ActionArgument{Name: name, Direction: DirectionOut, RelatedStateVariable: variable}
}

// Evented declares a state variable that is sent in events.
func Evented(name, dataType string) StateVariable {
	return StateVariable{SendEvents: "yes", Name: name, DataType: dataType}
}

// Unevented declares a state variable that is not sent in events.
func Unevented(name, dataType string, allowed ...string) StateVariable {
	return StateVariable{SendEvents: "no", Name: name, DataType: dataType, AllowedValues: allowed}
}

// Action returns the declared action with the given name.
func (s *SCPD) Action(name string) (Action, bool) {
	for _, a := range s.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Marshal renders the document. Every argument must reference a declared
// state variable.
func (s *SCPD) Marshal() ([]byte, error) {
	vars := make(map[string]bool, len(s.StateVariables))
	for _, v := range s.StateVariables {
		vars[v.Name] = true
	}
	for _, a := range s.Actions {
		for _, arg := range a.Arguments {
			if !vars[arg.RelatedStateVariable] {
				return nil, fmt.Errorf("%w: %s.%s -> %s", ErrUnknownStateVariable, a.Name, arg.Name, arg.RelatedStateVariable)
			}
		}
	}

	doc := *s
	doc.SpecVersion = SpecVersion{Major: 1, Minor: 0}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scpd: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
