package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/wareck/gerbera/pkg/upnp"
)

// recordingLogger records events for testing
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}

func requestEvent(service, action string) Event {
	return Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerDispatch,
		Category:     CategoryMessage,
		DeviceUDN:    "uuid:test-1234",
		Message: &MessageEvent{
			Type:      MessageTypeRequest,
			EventType: upnp.EventActionRequest,
			ServiceID: service,
			Action:    action,
			Arguments: map[string]string{"ObjectID": "0"},
		},
	}
}

func TestMultiLoggerCallsAll(t *testing.T) {
	l1 := &recordingLogger{}
	l2 := &recordingLogger{}

	multi := NewMultiLogger(l1, nil, l2)
	multi.Log(requestEvent("cds", "Browse"))

	for i, l := range []*recordingLogger{l1, l2} {
		if len(l.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(l.events))
		}
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	status := upnp.StatusUnknownService
	elapsed := 3 * time.Millisecond
	event := Event{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
		Direction: DirectionOut,
		Layer:     LayerDispatch,
		Category:  CategoryMessage,
		Message: &MessageEvent{
			Type:           MessageTypeResponse,
			EventType:      upnp.EventActionRequest,
			ServiceID:      "urn:upnp-org:serviceId:UnknownService",
			Status:         &status,
			ErrorText:      "unknown service id",
			ProcessingTime: &elapsed,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !got.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp: got %v, want %v", got.Timestamp, event.Timestamp)
	}
	if got.Message == nil || got.Message.Status == nil {
		t.Fatal("message status lost in round trip")
	}
	if *got.Message.Status != upnp.StatusUnknownService {
		t.Errorf("status: got %s", *got.Message.Status)
	}
	if *got.Message.ProcessingTime != elapsed {
		t.Errorf("processing time: got %v", *got.Message.ProcessingTime)
	}
}

func TestFileLoggerAndFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.glog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(requestEvent("cds", "Browse"))
	logger.Log(requestEvent("cm", "GetProtocolInfo"))
	logger.Log(Event{
		Timestamp: time.Now(),
		Layer:     LayerService,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityDevice,
			OldState: "STARTING",
			NewState: "RUNNING",
		},
	})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Logging after close is dropped.
	logger.Log(requestEvent("cds", "Browse"))
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if got := logger.Dropped(); got != 1 {
		t.Errorf("Dropped: got %d, want 1", got)
	}

	reader, err := NewFilteredReader(path, Filter{ServiceID: "cm"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.Message.Action != "GetProtocolInfo" {
		t.Errorf("action: got %q", event.Message.Action)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}

	all, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer all.Close()

	count := 0
	for _, err := range all.All() {
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("got %d events, want 3", count)
	}
}

func TestFilterCategory(t *testing.T) {
	state := CategoryState
	f := Filter{Category: &state}

	if f.Matches(requestEvent("cds", "Browse")) {
		t.Error("message event matched state filter")
	}
	if !f.Matches(Event{Category: CategoryState}) {
		t.Error("state event did not match state filter")
	}
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestStreamReaderFiltersAction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStreamLogger(nopCloser{&buf})
	logger.Log(requestEvent("cds", "Browse"))
	logger.Log(requestEvent("cds", "Search"))
	logger.Log(requestEvent("cm", "Browse"))

	reader := NewStreamReader(&buf, Filter{ServiceID: "cds", Action: "Browse"})
	defer reader.Close()

	var got []string
	for event, err := range reader.All() {
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		got = append(got, event.Message.ServiceID+"/"+event.Message.Action)
	}
	if len(got) != 1 || got[0] != "cds/Browse" {
		t.Errorf("got %v, want [cds/Browse]", got)
	}
}

func TestReaderTruncated(t *testing.T) {
	data, err := EncodeEvent(requestEvent("cds", "Browse"))
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	reader := NewStreamReader(bytes.NewReader(data[:len(data)/2]), Filter{})
	if _, err := reader.Next(); err != ErrTruncated {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestFilterSIDIgnoresNonMessages(t *testing.T) {
	f := Filter{SID: "uuid:sub-1"}
	if f.Matches(Event{Category: CategoryState}) {
		t.Error("state event matched SID filter")
	}
	ev := requestEvent("cds", "Browse")
	ev.Message.SID = "uuid:sub-1"
	if !f.Matches(ev) {
		t.Error("message with SID did not match")
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) is not a NoopLogger")
	}
	l := &recordingLogger{}
	if OrNoop(l) != Logger(l) {
		t.Error("OrNoop replaced a non-nil logger")
	}
	if NewMultiLogger(nil, l).Len() != 1 {
		t.Error("MultiLogger kept a nil logger")
	}
}

func TestSlogAdapterLogsMessageEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	adapter := NewSlogAdapter(slog.New(handler))
	adapter.Log(requestEvent("urn:upnp-org:serviceId:ContentDirectory", "Browse"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if entry["layer"] != "DISPATCH" {
		t.Errorf("layer: got %v", entry["layer"])
	}
	if entry["service"] != "urn:upnp-org:serviceId:ContentDirectory" {
		t.Errorf("service: got %v", entry["service"])
	}
	if entry["action"] != "Browse" {
		t.Errorf("action: got %v", entry["action"])
	}
	if entry["udn"] != "uuid:test-1234" {
		t.Errorf("udn: got %v", entry["udn"])
	}
}

func TestArgumentMap(t *testing.T) {
	if ArgumentMap(nil) != nil {
		t.Error("expected nil map for no arguments")
	}
	m := ArgumentMap([]upnp.Argument{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}})
	if m["A"] != "1" || m["B"] != "2" {
		t.Errorf("got %v", m)
	}
}
