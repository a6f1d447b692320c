package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testUDN = "uuid:2fac1234-31f8-11b4-a222-08002b34c003"

func TestDeviceStateStore(t *testing.T) {
	t.Run("LoadNonExistent", func(t *testing.T) {
		store := NewDeviceStateStore(filepath.Join(t.TempDir(), "nonexistent.json"))

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %v, want nil for non-existent file", got)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		store := NewDeviceStateStore(filepath.Join(t.TempDir(), "gerbera", "state.json"))

		state := &DeviceState{UDN: testUDN, SystemUpdateID: 17}
		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if state.Version != StateVersion || state.SavedAt.IsZero() {
			t.Errorf("Save() did not stamp version and time: %+v", state)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.UDN != testUDN {
			t.Errorf("UDN = %q, want %q", got.UDN, testUDN)
		}
		if got.SystemUpdateID != 17 {
			t.Errorf("SystemUpdateID = %d, want 17", got.SystemUpdateID)
		}
	})

	t.Run("SaveLeavesNoTempFiles", func(t *testing.T) {
		dir := t.TempDir()
		store := NewDeviceStateStore(filepath.Join(dir, "state.json"))
		for i := range 3 {
			if err := store.Save(&DeviceState{SystemUpdateID: uint32(i)}); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != "state.json" {
			t.Errorf("directory entries = %v, want only state.json", entries)
		}
	})

	t.Run("SaveUnwritable", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		store := NewDeviceStateStore(filepath.Join(file, "state.json"))
		if err := store.Save(&DeviceState{UDN: testUDN}); err == nil {
			t.Error("Save() under a regular file succeeded")
		}
	})

	t.Run("LoadNewerVersion", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte(`{"version": 99}`), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := NewDeviceStateStore(path).Load()
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("Load() error = %v, want ErrUnsupportedVersion", err)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := NewDeviceStateStore(path).Load(); err == nil {
			t.Error("Load() of corrupt file succeeded")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewDeviceStateStore(filepath.Join(t.TempDir(), "state.json"))
		if err := store.Save(&DeviceState{UDN: testUDN}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
		if got, _ := store.Load(); got != nil {
			t.Errorf("Load() after Clear = %+v, want nil", got)
		}
	})
}
