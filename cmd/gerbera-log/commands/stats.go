package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/wareck/gerbera/pkg/log"
	"github.com/wareck/gerbera/pkg/upnp"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Services          map[string]*ServiceStats
	Statuses          map[upnp.Status]int
	Subscriptions     map[string]bool
	Transitions       []string
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ServiceStats holds dispatch statistics for one service.
type ServiceStats struct {
	Requests  int
	Actions   map[string]int
	Failures  int
	TotalTime time.Duration
	MaxTime   time.Duration
	Responses int
}

// AvgTime returns the mean processing time of the service's responses.
func (s *ServiceStats) AvgTime() time.Duration {
	if s.Responses == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Responses)
}

// Collect reads all events of path into Stats.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Services:          make(map[string]*ServiceStats),
		Statuses:          make(map[upnp.Status]int),
		Subscriptions:     make(map[string]bool),
	}

	err = forEach(reader, func(event log.Event) error {
		stats.add(event)
		return nil
	})
	return stats, err
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.Error != nil {
		s.Errors++
	}

	if sc := event.StateChange; sc != nil && sc.Entity == log.StateEntityDevice {
		s.Transitions = append(s.Transitions, sc.NewState)
	}

	msg := event.Message
	if msg == nil {
		return
	}
	if msg.SID != "" {
		s.Subscriptions[msg.SID] = true
	}
	if msg.ServiceID == "" {
		if msg.Status != nil {
			s.Statuses[*msg.Status]++
		}
		return
	}

	svc, ok := s.Services[msg.ServiceID]
	if !ok {
		svc = &ServiceStats{Actions: make(map[string]int)}
		s.Services[msg.ServiceID] = svc
	}
	switch msg.Type {
	case log.MessageTypeRequest:
		svc.Requests++
		if msg.Action != "" {
			svc.Actions[msg.Action]++
		}
	case log.MessageTypeResponse:
		svc.Responses++
		if msg.Status != nil {
			s.Statuses[*msg.Status]++
			if !msg.Status.IsSuccess() {
				svc.Failures++
			}
		}
		if msg.ProcessingTime != nil {
			svc.TotalTime += *msg.ProcessingTime
			if *msg.ProcessingTime > svc.MaxTime {
				svc.MaxTime = *msg.ProcessingTime
			}
		}
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Gerbera Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerDispatch, log.LayerService} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Statuses) > 0 {
		fmt.Fprintln(w, "Dispatch Status:")
		for _, st := range []upnp.Status{
			upnp.StatusSuccess, upnp.StatusUnsupportedEvent, upnp.StatusUnknownService,
			upnp.StatusServiceError, upnp.StatusInternal,
		} {
			if count := stats.Statuses[st]; count > 0 {
				fmt.Fprintf(w, "  %-18s %d\n", st.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Services: %d\n", len(stats.Services))
	ids := make([]string, 0, len(stats.Services))
	for id := range stats.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		svc := stats.Services[id]
		fmt.Fprintf(w, "  %s: %d requests, %d failed, avg %s, max %s\n",
			id, svc.Requests, svc.Failures, formatDuration(svc.AvgTime()), formatDuration(svc.MaxTime))

		actions := make([]string, 0, len(svc.Actions))
		for a := range svc.Actions {
			actions = append(actions, a)
		}
		sort.Strings(actions)
		for _, a := range actions {
			fmt.Fprintf(w, "           %s: %d\n", a, svc.Actions[a])
		}
	}

	if len(stats.Subscriptions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Subscriptions: %d\n", len(stats.Subscriptions))
	}

	if len(stats.Transitions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, "Lifecycle: ")
		for i, st := range stats.Transitions {
			if i > 0 {
				fmt.Fprint(w, " -> ")
			}
			fmt.Fprint(w, st)
		}
		fmt.Fprintln(w)
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
