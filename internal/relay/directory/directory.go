// Package directory is the relay's registry of connected devices.
//
// A Directory maps each device id to exactly one live connection. All
// mutations and reads go through a single RWMutex so a reader never sees a
// half-applied registration.
package directory

import (
	"sort"
	"sync"
	"time"

	"utter/internal/domain"
	"utter/internal/protocol/wire"
)

// Conn is the part of a relay session the directory hands out.
type Conn interface {
	// ID identifies the underlying socket, not the device.
	ID() string
	// Send queues m without blocking. It reports false when the frame was
	// dropped because the connection is closing or its buffer is full.
	Send(m wire.Message) bool
	// Close tears the connection down. It is safe to call more than once.
	Close()
}

type entry struct {
	device domain.Device
	conn   Conn
}

// Directory is safe for concurrent use.
type Directory struct {
	mu      sync.RWMutex
	entries map[domain.DeviceID]entry
	now     func() time.Time
}

// New returns an empty directory.
func New() *Directory {
	return &Directory{
		entries: make(map[domain.DeviceID]entry),
		now:     time.Now,
	}
}

// Register inserts or replaces the record for dev.ID, bound to c. When a
// different connection already held the id it is returned so the caller can
// notify it; the directory itself never closes connections.
func (d *Directory) Register(dev domain.Device, c Conn) (superseded Conn) {
	dev.Online = true
	dev.LastSeen = d.now().UTC()

	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.entries[dev.ID]; ok && prev.conn != c {
		superseded = prev.conn
	}
	d.entries[dev.ID] = entry{device: dev, conn: c}
	return superseded
}

// Unregister removes id regardless of which connection holds it.
func (d *Directory) Unregister(id domain.DeviceID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.entries[id]; !ok {
		return false
	}
	delete(d.entries, id)
	return true
}

// UnregisterConn removes id only while it is still bound to c. A session
// that was superseded uses this on close so it cannot evict its successor.
func (d *Directory) UnregisterConn(id domain.DeviceID, c Conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[id]
	if !ok || e.conn != c {
		return false
	}
	delete(d.entries, id)
	return true
}

// Touch refreshes the last-seen time of id if c still holds it.
func (d *Directory) Touch(id domain.DeviceID, c Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[id]; ok && e.conn == c {
		e.device.LastSeen = d.now().UTC()
		d.entries[id] = e
	}
}

// LookupConnection returns the live connection for id.
func (d *Directory) LookupConnection(id domain.DeviceID) (Conn, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[id]
	return e.conn, ok
}

// Get returns the device record for id.
func (d *Directory) Get(id domain.DeviceID) (domain.Device, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[id]
	return e.device, ok
}

// List returns a snapshot of every device, ordered by id.
func (d *Directory) List() []domain.Device {
	d.mu.RLock()
	out := make([]domain.Device, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.device)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Connections returns a snapshot of every registered connection.
func (d *Directory) Connections() []Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Conn, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.conn)
	}
	return out
}

// Len returns the number of registered devices.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
