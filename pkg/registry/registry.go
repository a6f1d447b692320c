// Package registry holds the fixed set of logical services a UPnP device
// routes requests to.
//
// The registry is populated once at construction and never mutated, so
// lookups need no locking.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/wareck/gerbera/pkg/description"
	"github.com/wareck/gerbera/pkg/upnp"
)

// Registry errors.
var (
	ErrDuplicateService = errors.New("duplicate service id")
	ErrInvalidEntry     = errors.New("invalid registry entry")
)

// Service processes the requests routed to one logical service.
type Service interface {
	// ProcessActionRequest handles a control action. Output arguments are
	// recorded on the request. A returned error is passed to the transport
	// unchanged.
	ProcessActionRequest(ctx context.Context, req *upnp.ActionRequest) error

	// ProcessSubscriptionRequest decides on an event subscription and fills
	// the request's output slot.
	ProcessSubscriptionRequest(ctx context.Context, req *upnp.SubscriptionRequest) error
}

// Entry binds a service to its description metadata.
type Entry struct {
	Info    description.Service
	Service Service
}

// Registry maps service ids to services.
type Registry struct {
	services map[string]Service
	entries  []Entry
}

// New creates a registry from the given entries.
// Entry order is kept for the device description service list.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		services: make(map[string]Service, len(entries)),
		entries:  make([]Entry, 0, len(entries)),
	}

	for _, e := range entries {
		if e.Info.ID == "" || e.Service == nil {
			return nil, fmt.Errorf("%w: service id and implementation are required", ErrInvalidEntry)
		}
		if _, exists := r.services[e.Info.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateService, e.Info.ID)
		}
		r.services[e.Info.ID] = e.Service
		r.entries = append(r.entries, e)
	}

	return r, nil
}

// Lookup returns the service registered under id.
// The error matches upnp.ErrUnknownService when id is not registered.
func (r *Registry) Lookup(id string) (Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", upnp.ErrUnknownService, id)
	}
	return svc, nil
}

// Descriptions returns the service list entries in registration order.
func (r *Registry) Descriptions() []description.Service {
	out := make([]description.Service, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Info
	}
	return out
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	return len(r.entries)
}
