package channel

import (
	"time"
)

// Reaper scans the channel table once per second, decrementing any
// channel with a positive Lifetime countdown and freeing it once the
// countdown reaches zero.
type Reaper struct {
	table *Table
	stop  chan struct{}
}

// NewReaper binds a Reaper to a table. Call Run to start its
// once-per-second scan loop; it is meant to run in its own goroutine.
func NewReaper(table *Table) *Reaper {
	return &Reaper{table: table, stop: make(chan struct{})}
}

// Run blocks, ticking once per second until Stop is called, freeing
// any channel whose lifetime countdown reaches zero.
func (r *Reaper) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Reaper) tick() {
	for _, c := range r.table.Snapshot() {
		life := c.Lifetime.Load()
		if life <= 0 {
			continue // 0 means "no expiry"
		}

		remaining := c.Lifetime.Add(-1)
		if remaining <= 0 {
			r.table.Free(c.SSRC)
		}
	}
}

// Stop ends the reaper's scan loop.
func (r *Reaper) Stop() {
	close(r.stop)
}
