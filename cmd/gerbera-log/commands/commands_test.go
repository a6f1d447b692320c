package commands

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wareck/gerbera/pkg/log"
	"github.com/wareck/gerbera/pkg/upnp"
)

const (
	cdsID = "urn:upnp-org:serviceId:ContentDirectory"
	cmID  = "urn:upnp-org:serviceId:ConnectionManager"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.glog")
	fl, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}
	for _, e := range events {
		fl.Log(e)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}
	return path
}

func statusPtr(s upnp.Status) *upnp.Status { return &s }

func durPtr(d time.Duration) *time.Duration { return &d }

// dispatchSession is a start, two routed actions, a subscription, a
// routing failure and a stop.
func dispatchSession() []log.Event {
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	at := func(sec int) time.Time { return ts.Add(time.Duration(sec) * time.Second) }
	code := 401

	return []log.Event{
		{Timestamp: at(0), Layer: log.LayerDispatch, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityDevice, OldState: "IDLE", NewState: "RUNNING"}},
		{Timestamp: at(1), ConnectionID: "aaaaaaaa-1111", Direction: log.DirectionIn, Layer: log.LayerDispatch,
			RemoteAddr: "192.168.1.50:5000",
			Message: &log.MessageEvent{Type: log.MessageTypeRequest, EventType: upnp.EventActionRequest,
				ServiceID: cdsID, Action: "Browse", Arguments: map[string]string{"ObjectID": "0", "BrowseFlag": "BrowseMetadata"}}},
		{Timestamp: at(1), ConnectionID: "aaaaaaaa-1111", Direction: log.DirectionOut, Layer: log.LayerDispatch,
			Message: &log.MessageEvent{Type: log.MessageTypeResponse, EventType: upnp.EventActionRequest,
				ServiceID: cdsID, Action: "Browse", Status: statusPtr(upnp.StatusSuccess), ProcessingTime: durPtr(2 * time.Millisecond)}},
		{Timestamp: at(2), ConnectionID: "bbbbbbbb-2222", Direction: log.DirectionIn, Layer: log.LayerDispatch,
			Message: &log.MessageEvent{Type: log.MessageTypeRequest, EventType: upnp.EventActionRequest,
				ServiceID: cmID, Action: "GetCurrentConnectionInfo"}},
		{Timestamp: at(2), ConnectionID: "bbbbbbbb-2222", Direction: log.DirectionOut, Layer: log.LayerDispatch,
			Message: &log.MessageEvent{Type: log.MessageTypeResponse, EventType: upnp.EventActionRequest,
				ServiceID: cmID, Action: "GetCurrentConnectionInfo", Status: statusPtr(upnp.StatusServiceError),
				ErrorText: "upnp error 706: connection 5 does not exist", ProcessingTime: durPtr(4 * time.Millisecond)}},
		{Timestamp: at(3), ConnectionID: "cccccccc-3333", Direction: log.DirectionIn, Layer: log.LayerDispatch,
			Message: &log.MessageEvent{Type: log.MessageTypeRequest, EventType: upnp.EventSubscriptionRequest,
				ServiceID: cdsID, SID: "uuid:sub-1"}},
		{Timestamp: at(4), ConnectionID: "dddddddd-4444", Direction: log.DirectionOut, Layer: log.LayerDispatch,
			Message: &log.MessageEvent{Type: log.MessageTypeResponse, EventType: upnp.EventUnknown,
				Status: statusPtr(upnp.StatusUnsupportedEvent)}},
		{Timestamp: at(5), Layer: log.LayerTransport, Category: log.CategoryError,
			Error: &log.ErrorEventData{Layer: log.LayerTransport, Message: "invalid action", Code: &code, Context: "control"}},
		{Timestamp: at(65), Layer: log.LayerDispatch, Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityDevice, OldState: "RUNNING", NewState: "STOPPED", Reason: "stop"}},
	}
}

func TestRunView(t *testing.T) {
	path := createTestLogFile(t, dispatchSession())

	var buf bytes.Buffer
	if err := RunView(path, log.Filter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"2026-10-01T12:00:01.000000Z [conn:aaaaaaaa] IN  DISPATCH REQUEST",
		"  Remote: 192.168.1.50:5000",
		"  Action: Browse",
		"  Arguments: BrowseFlag=BrowseMetadata ObjectID=0",
		"  Status: SERVICE_ERROR",
		"  Duration: 4.000ms",
		"  SID: uuid:sub-1",
		"  IDLE -> RUNNING",
		"  Reason: stop",
		"  Code: 401",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q", want)
		}
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := createTestLogFile(t, dispatchSession())

	filter, err := BuildFilter(FilterOptions{ServiceID: cmID, Direction: "out"})
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var buf bytes.Buffer
	if err := RunView(path, filter, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if n := strings.Count(buf.String(), "[conn:"); n != 1 {
		t.Errorf("filtered view shows %d events, want 1:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "GetCurrentConnectionInfo") {
		t.Error("filtered view lost the cm response")
	}
}

func TestBuildFilterErrors(t *testing.T) {
	tests := []FilterOptions{
		{Layer: "wire"},
		{Direction: "sideways"},
		{Category: "control"},
		{TimeStart: "yesterday"},
		{TimeEnd: "2026-13-01"},
	}
	for _, opts := range tests {
		if _, err := BuildFilter(opts); err == nil {
			t.Errorf("BuildFilter(%+v) expected error", opts)
		}
	}
}

func TestBuildFilterTimeRange(t *testing.T) {
	filter, err := BuildFilter(FilterOptions{
		TimeStart: "2026-10-01T12:00:02Z",
		TimeEnd:   "2026-10-01T12:00:04Z",
		Layer:     "dispatch",
		Category:  "message",
	})
	if err != nil {
		t.Fatalf("BuildFilter failed: %v", err)
	}

	var matched int
	for _, e := range dispatchSession() {
		if filter.Matches(e) {
			matched++
		}
	}
	// Two cm messages and the subscription request.
	if matched != 3 {
		t.Errorf("matched %d events, want 3", matched)
	}
}

func TestRunStats(t *testing.T) {
	path := createTestLogFile(t, dispatchSession())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Total Events: 9",
		"Duration:   1m5s",
		"DISPATCH:    8",
		"TRANSPORT:   1",
		"SUCCESS:           1",
		"SERVICE_ERROR:     1",
		"UNSUPPORTED_EVENT: 1",
		"Services: 2",
		cmID + ": 1 requests, 1 failed, avg 4.000ms, max 4.000ms",
		cdsID + ": 2 requests, 0 failed, avg 2.000ms, max 2.000ms",
		"           Browse: 1",
		"Subscriptions: 1",
		"Lifecycle: RUNNING -> STOPPED",
		"Errors: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRunStatsMissingFile(t *testing.T) {
	if err := RunStats(filepath.Join(t.TempDir(), "missing.glog"), &bytes.Buffer{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunFilter(t *testing.T) {
	path := createTestLogFile(t, dispatchSession())
	out := filepath.Join(t.TempDir(), "filtered.glog")

	filter, err := BuildFilter(FilterOptions{Category: "state"})
	if err != nil {
		t.Fatal(err)
	}
	n, err := RunFilter(path, out, filter)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("RunFilter wrote %d events, want 2", n)
	}

	stats, err := Collect(out)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if stats.TotalEvents != 2 || len(stats.Transitions) != 2 {
		t.Errorf("filtered stats = %+v", stats)
	}
}

func TestRunExportCSV(t *testing.T) {
	path := createTestLogFile(t, dispatchSession())

	var buf bytes.Buffer
	if err := RunExport(path, "csv", "", &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("got %d rows, want header + 9", len(rows))
	}
	browse := rows[2]
	if browse[6] != "RESPONSE" || browse[7] != cdsID || browse[8] != "Browse" || browse[10] != "SUCCESS" {
		t.Errorf("browse response row = %v", browse)
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := createTestLogFile(t, dispatchSession())

	var buf bytes.Buffer
	if err := RunExport(path, "jsonl", "", &buf); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 9 {
		t.Errorf("got %d lines, want 9", n)
	}
	if err := RunExport(path, "xml", "", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
