package cds

import (
	"context"
	"errors"
	"math"
	"testing"
)

func testDirectory(t *testing.T) *MemoryDirectory {
	t.Helper()
	d := NewMemoryDirectory()
	steps := []error{
		d.AddContainer(RootID, "music", "Music"),
		d.AddContainer(RootID, "video", "Video"),
		d.AddItem("music", "t1", "Track 1", ClassAudioItem, Resource{
			URL:          "http://10.0.0.1:49152/content/media/t1",
			ProtocolInfo: "http-get:*:audio/mpeg:*",
			Size:         4096,
			Duration:     "0:03:10.000",
		}),
		d.AddItem("music", "t2", "Track 2", ""),
		d.AddItem("music", "t3", "Track 3", ClassAudioItem),
	}
	for i, err := range steps {
		if err != nil {
			t.Fatalf("setup step %d: %v", i, err)
		}
	}
	return d
}

func TestMemoryDirectoryAdd(t *testing.T) {
	d := testDirectory(t)

	if d.Len() != 6 {
		t.Errorf("Len() = %d, want 6", d.Len())
	}
	if d.SystemUpdateID() != 5 {
		t.Errorf("SystemUpdateID() = %d, want 5", d.SystemUpdateID())
	}

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"Duplicate", d.AddItem("music", "t1", "Again", ""), ErrDuplicateID},
		{"MissingParent", d.AddItem("nope", "x", "X", ""), ErrNotFound},
		{"ItemParent", d.AddItem("t1", "x", "X", ""), ErrNotContainer},
		{"NoTitle", d.AddContainer(RootID, "x", ""), ErrInvalidObject},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.wantErr) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.wantErr)
		}
	}
	if d.SystemUpdateID() != 5 {
		t.Error("failed adds must not change the update id")
	}
}

func TestMemoryDirectoryObject(t *testing.T) {
	d := testDirectory(t)

	obj, err := d.Object(context.Background(), "music")
	if err != nil {
		t.Fatalf("Object(music) failed: %v", err)
	}
	if !obj.Container || obj.ChildCount != 3 || obj.ParentID != RootID {
		t.Errorf("Object(music) = %+v", obj)
	}

	// Returned objects are copies.
	obj.Title = "changed"
	again, _ := d.Object(context.Background(), "music")
	if again.Title != "Music" {
		t.Error("Object() must return a copy")
	}

	if _, err := d.Object(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Object(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryDirectoryRestore(t *testing.T) {
	d := NewMemoryDirectory()
	d.Restore(40)
	if got := d.SystemUpdateID(); got != 40 {
		t.Fatalf("SystemUpdateID() = %d, want 40", got)
	}
	d.Restore(3)
	if got := d.SystemUpdateID(); got != 40 {
		t.Errorf("SystemUpdateID() after lower Restore = %d, want 40", got)
	}
	if err := d.AddContainer(RootID, "music", "Music"); err != nil {
		t.Fatal(err)
	}
	if got := d.SystemUpdateID(); got != 41 {
		t.Errorf("SystemUpdateID() after add = %d, want 41", got)
	}
}

func TestMemoryDirectoryChildren(t *testing.T) {
	d := testDirectory(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		start     int
		count     int
		wantIDs   []string
		wantTotal int
	}{
		{"All", 0, 0, []string{"t1", "t2", "t3"}, 3},
		{"Window", 1, 1, []string{"t2"}, 3},
		{"CountPastEnd", 2, 10, []string{"t3"}, 3},
		{"StartPastEnd", 5, 0, nil, 3},
		{"HugeCount", 1, math.MaxInt, []string{"t2", "t3"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			children, total, err := d.Children(ctx, "music", tt.start, tt.count)
			if err != nil {
				t.Fatalf("Children failed: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(children) != len(tt.wantIDs) {
				t.Fatalf("len(children) = %d, want %d", len(children), len(tt.wantIDs))
			}
			for i, c := range children {
				if c.ID != tt.wantIDs[i] {
					t.Errorf("children[%d] = %s, want %s", i, c.ID, tt.wantIDs[i])
				}
			}
		})
	}

	if _, _, err := d.Children(ctx, "t1", 0, 0); !errors.Is(err, ErrNotContainer) {
		t.Errorf("Children(item) error = %v, want ErrNotContainer", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, _, err := d.Children(cancelled, "music", 0, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Children(cancelled) error = %v, want context.Canceled", err)
	}
}
