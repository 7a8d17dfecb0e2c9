package channel

import (
	"fmt"
	"sync"
)

// Table is the channel table, a map keyed by SSRC. It is not
// grow-only: Free deletes the channel's entry, and freed slots are not
// kept for reuse. Structural
// mutations (Create/Free) are guarded by a mutex; Lookup takes a
// read lock, which under the read-mostly access pattern described in
// §5 behaves like a lock-free lookup without depending on
// word-tearing assumptions about a raw grow-only slice.
type Table struct {
	mu       sync.RWMutex
	channels map[uint32]*Channel
}

// NewTable returns an empty channel table.
func NewTable() *Table {
	return &Table{channels: make(map[uint32]*Channel)}
}

// Create allocates a new channel for ssrc with default settings. It
// fails if ssrc already exists or is the reserved broadcast SSRC.
func (t *Table) Create(ssrc uint32) (*Channel, error) {
	if ssrc == BroadcastSSRC {
		return nil, fmt.Errorf("channel: ssrc 0 is reserved for broadcast")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.channels[ssrc]; exists {
		return nil, fmt.Errorf("channel: ssrc %08x already exists", ssrc)
	}

	c := newChannel(ssrc)
	t.channels[ssrc] = c
	return c, nil
}

// Lookup returns the channel for ssrc, or nil if none exists.
func (t *Table) Lookup(ssrc uint32) *Channel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.channels[ssrc]
}

// Setup is lookup-or-create with default settings: if ssrc already
// has a channel it is returned unchanged, otherwise one is created.
func (t *Table) Setup(ssrc uint32) (*Channel, error) {
	if c := t.Lookup(ssrc); c != nil {
		return c, nil
	}
	return t.Create(ssrc)
}

// Free raises terminate on the channel, invokes its close hook (which
// joins per-channel threads and releases network sockets in the
// owning package), and removes it from the table.
func (t *Table) Free(ssrc uint32) {
	t.mu.Lock()
	c, ok := t.channels[ssrc]
	if ok {
		delete(t.channels, ssrc)
	}
	t.mu.Unlock()

	if !ok {
		return
	}

	c.RaiseTerminate()
	if c.closeHook != nil {
		c.closeHook()
	}
	c.inUse.Store(false)
}

// SetCloseHook registers the function Free calls (after raising
// terminate) to join the channel's threads and release its sockets.
func (t *Table) SetCloseHook(ssrc uint32, hook func()) {
	t.mu.RLock()
	c := t.channels[ssrc]
	t.mu.RUnlock()
	if c != nil {
		c.closeHook = hook
	}
}

// Snapshot returns every live channel, for status emission or the
// reaper's lifetime scan. The returned slice is a point-in-time copy
// of the table's pointers, not a live view.
func (t *Table) Snapshot() []*Channel {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Channel, 0, len(t.channels))
	for _, c := range t.channels {
		out = append(out, c)
	}
	return out
}

// Len returns the number of live channels.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.channels)
}
