package server

import (
	"context"
	"time"

	"github.com/wareck/gerbera/pkg/log"
	"github.com/wareck/gerbera/pkg/upnp"
)

// Callback processes one transport event. It is the transport.Callback the
// device is registered with.
//
// Only one event is processed at a time across the whole device. Action and
// subscription events are routed to the registered service; any other event
// fails with an error matching upnp.ErrUnsupportedEvent and no service is
// invoked. The returned request carries the service output; the error is
// nil, a translation error, a routing error matching upnp.ErrUnknownService,
// or the service's error unchanged.
func (s *Server) Callback(ctx context.Context, ev upnp.Event) (upnp.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	connID := connectionID()
	s.logRequest(connID, ev)

	req, err := upnp.Translate(ev)
	if err != nil {
		s.logger.Debug("event not routable", "error", err)
		s.logResponse(connID, ev, nil, err, time.Since(start))
		return nil, err
	}

	switch r := req.(type) {
	case *upnp.ActionRequest:
		err = s.handleAction(ctx, r)
	case *upnp.SubscriptionRequest:
		err = s.handleSubscription(ctx, r)
	}

	s.logResponse(connID, ev, req, err, time.Since(start))
	return req, err
}

// handleAction routes an action to its service.
func (s *Server) handleAction(ctx context.Context, req *upnp.ActionRequest) error {
	svc, err := s.registry.Lookup(req.ServiceID)
	if err != nil {
		req.Err = &upnp.RoutingError{Kind: upnp.KindAction, ServiceID: req.ServiceID}
		s.logger.Warn("action for unregistered service",
			"service", req.ServiceID,
			"action", req.ActionName)
		return req.Err
	}

	req.Err = svc.ProcessActionRequest(ctx, req)
	s.logger.Debug("action processed",
		"service", req.ServiceID,
		"action", req.ActionName,
		"error", req.Err)
	return req.Err
}

// handleSubscription routes a subscription to its service.
func (s *Server) handleSubscription(ctx context.Context, req *upnp.SubscriptionRequest) error {
	svc, err := s.registry.Lookup(req.ServiceID)
	if err != nil {
		req.Err = &upnp.RoutingError{Kind: upnp.KindSubscription, ServiceID: req.ServiceID}
		s.logger.Warn("subscription for unregistered service",
			"service", req.ServiceID,
			"sid", req.SID)
		return req.Err
	}

	req.Err = svc.ProcessSubscriptionRequest(ctx, req)
	s.logger.Debug("subscription processed",
		"service", req.ServiceID,
		"sid", req.SID,
		"accepted", req.Accepted,
		"error", req.Err)
	return req.Err
}

func (s *Server) logRequest(connID string, ev upnp.Event) {
	msg := &log.MessageEvent{
		Type:      log.MessageTypeRequest,
		EventType: upnp.EventUnknown,
	}
	var remote string
	if ev != nil {
		msg.EventType = ev.Type()
	}
	switch e := ev.(type) {
	case *upnp.ActionEvent:
		if e != nil {
			msg.ServiceID = e.ServiceID
			msg.Action = e.ActionName
			msg.Arguments = log.ArgumentMap(e.Arguments)
			remote = e.RemoteAddr
		}
	case *upnp.SubscriptionEvent:
		if e != nil {
			msg.ServiceID = e.ServiceID
			msg.SID = e.SID
		}
	}

	s.protocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerDispatch,
		Category:     log.CategoryMessage,
		DeviceUDN:    s.config.UDN,
		RemoteAddr:   remote,
		Message:      msg,
	})
}

func (s *Server) logResponse(connID string, ev upnp.Event, req upnp.Request, err error, elapsed time.Duration) {
	status := upnp.StatusOf(err)
	msg := &log.MessageEvent{
		Type:           log.MessageTypeResponse,
		EventType:      upnp.EventUnknown,
		Status:         &status,
		ProcessingTime: &elapsed,
	}
	if ev != nil {
		msg.EventType = ev.Type()
	}
	if err != nil {
		msg.ErrorText = err.Error()
	}
	switch r := req.(type) {
	case *upnp.ActionRequest:
		msg.ServiceID = r.ServiceID
		msg.Action = r.ActionName
		msg.Arguments = log.ArgumentMap(r.Result)
	case *upnp.SubscriptionRequest:
		msg.ServiceID = r.ServiceID
		msg.SID = r.SID
	}

	s.protocolLogger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerDispatch,
		Category:     log.CategoryMessage,
		DeviceUDN:    s.config.UDN,
		Message:      msg,
	})
}
