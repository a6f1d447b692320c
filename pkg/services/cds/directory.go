package cds

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Directory errors.
var (
	ErrNotFound      = errors.New("object not found")
	ErrNotContainer  = errors.New("object is not a container")
	ErrDuplicateID   = errors.New("object id already exists")
	ErrInvalidObject = errors.New("object id and title are required")
)

// RootID is the id of the root container.
const RootID = "0"

// Well-known UPnP classes.
const (
	ClassContainer = "object.container"
	ClassStorage   = "object.container.storageFolder"
	ClassItem      = "object.item"
	ClassAudioItem = "object.item.audioItem.musicTrack"
	ClassVideoItem = "object.item.videoItem"
	ClassImageItem = "object.item.imageItem.photo"
)

// Resource is one way to fetch an item.
type Resource struct {
	URL          string
	ProtocolInfo string
	Size         int64
	Duration     string
}

// Object is a container or item of the content directory.
type Object struct {
	ID        string
	ParentID  string
	Title     string
	Class     string
	Creator   string
	Container bool

	// ChildCount is set for containers.
	ChildCount int

	Resources []Resource
}

// Directory is the content backend browsed by the ContentDirectory service.
type Directory interface {
	// Object returns one object. The error matches ErrNotFound when id is
	// unknown.
	Object(ctx context.Context, id string) (*Object, error)

	// Children returns count children of container id starting at start,
	// and the total number of children. count 0 means all.
	Children(ctx context.Context, id string, start, count int) ([]*Object, int, error)

	// SystemUpdateID changes whenever the directory content changes.
	SystemUpdateID() uint32
}

// MemoryDirectory is a Directory held in memory.
type MemoryDirectory struct {
	mu       sync.RWMutex
	objects  map[string]*Object
	children map[string][]string
	updateID uint32
}

// NewMemoryDirectory creates a directory holding only the root container.
func NewMemoryDirectory() *MemoryDirectory {
	d := &MemoryDirectory{
		objects:  make(map[string]*Object),
		children: make(map[string][]string),
	}
	d.objects[RootID] = &Object{
		ID:        RootID,
		ParentID:  "-1",
		Title:     "Root",
		Class:     ClassContainer,
		Container: true,
	}
	return d
}

// AddContainer adds a container under parent.
func (d *MemoryDirectory) AddContainer(parent, id, title string) error {
	return d.add(&Object{
		ID:        id,
		ParentID:  parent,
		Title:     title,
		Class:     ClassStorage,
		Container: true,
	})
}

// AddItem adds an item under parent.
func (d *MemoryDirectory) AddItem(parent, id, title, class string, res ...Resource) error {
	if class == "" {
		class = ClassItem
	}
	return d.add(&Object{
		ID:        id,
		ParentID:  parent,
		Title:     title,
		Class:     class,
		Resources: res,
	})
}

func (d *MemoryDirectory) add(obj *Object) error {
	if obj.ID == "" || obj.Title == "" {
		return ErrInvalidObject
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.objects[obj.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
	}
	parent, ok := d.objects[obj.ParentID]
	if !ok {
		return fmt.Errorf("parent %s: %w", obj.ParentID, ErrNotFound)
	}
	if !parent.Container {
		return fmt.Errorf("parent %s: %w", obj.ParentID, ErrNotContainer)
	}

	d.objects[obj.ID] = obj
	d.children[obj.ParentID] = append(d.children[obj.ParentID], obj.ID)
	parent.ChildCount++
	d.updateID++
	return nil
}

// Object implements Directory.
func (d *MemoryDirectory) Object(ctx context.Context, id string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, ok := d.objects[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	cp := *obj
	return &cp, nil
}

// Children implements Directory.
func (d *MemoryDirectory) Children(ctx context.Context, id string, start, count int) ([]*Object, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, ok := d.objects[id]
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if !obj.Container {
		return nil, 0, fmt.Errorf("%s: %w", id, ErrNotContainer)
	}

	ids := d.children[id]
	total := len(ids)
	if start >= total {
		return nil, total, nil
	}
	end := total
	if count > 0 && count < total-start {
		end = start + count
	}

	out := make([]*Object, 0, end-start)
	for _, cid := range ids[start:end] {
		cp := *d.objects[cid]
		out = append(out, &cp)
	}
	return out, total, nil
}

// SystemUpdateID implements Directory.
func (d *MemoryDirectory) SystemUpdateID() uint32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.updateID
}

// Restore raises the SystemUpdateID to id, typically the value published
// before a restart. Lower values are ignored.
func (d *MemoryDirectory) Restore(id uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id > d.updateID {
		d.updateID = id
	}
}

// Len returns the number of objects including the root.
func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.objects)
}

// Compile-time interface satisfaction check.
var _ Directory = (*MemoryDirectory)(nil)
