// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"io"
	"time"
)

// ProgressFunc receives the bytes transferred so far and the expected total,
// which is -1 when the server did not announce a length. It runs on a separate
// goroutine; every call has returned by the time Fetch returns.
type ProgressFunc func(done, total int64)

type progressUpdate struct {
	done, total int64
}

// progressReporter delivers updates on its own goroutine. Only the latest
// pending update is kept, so a slow callback never stalls the copy.
type progressReporter struct {
	total    int64
	interval time.Duration
	done     int64
	last     time.Time
	updates  chan progressUpdate
	stopped  chan struct{}
}

func newProgressReporter(fn ProgressFunc, total int64, interval time.Duration) *progressReporter {
	if fn == nil {
		return nil
	}
	if total < 0 {
		total = -1
	}
	p := &progressReporter{
		total:    total,
		interval: interval,
		updates:  make(chan progressUpdate, 1),
		stopped:  make(chan struct{}),
	}
	go func() {
		defer close(p.stopped)
		for u := range p.updates {
			fn(u.done, u.total)
		}
	}()
	return p
}

func (p *progressReporter) add(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.done += int64(n)
	now := time.Now()
	if !p.last.IsZero() && now.Sub(p.last) < p.interval {
		return
	}
	p.last = now
	p.publish()
}

func (p *progressReporter) publish() {
	u := progressUpdate{done: p.done, total: p.total}
	select {
	case p.updates <- u:
		return
	default:
	}
	// Replace the stale pending update.
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- u:
	default:
	}
}

// finish publishes the final count and waits for the delivery goroutine to drain.
func (p *progressReporter) finish() {
	if p == nil {
		return
	}
	p.publish()
	close(p.updates)
	<-p.stopped
}

type countingReader struct {
	r      io.Reader
	onRead func(int)
}

func (c *countingReader) Read(b []byte) (int, error) {
	n, err := c.r.Read(b)
	c.onRead(n)
	return n, err
}

// idleTimeoutReader cancels the request when no Read completes within d.
type idleTimeoutReader struct {
	r     io.Reader
	d     time.Duration
	timer *time.Timer
}

func newIdleTimeoutReader(r io.Reader, d time.Duration, onTimeout func()) *idleTimeoutReader {
	ir := &idleTimeoutReader{r: r, d: d}
	if d > 0 {
		ir.timer = time.AfterFunc(d, onTimeout)
	}
	return ir
}

func (ir *idleTimeoutReader) Read(b []byte) (int, error) {
	n, err := ir.r.Read(b)
	if ir.timer != nil && n > 0 {
		ir.timer.Reset(ir.d)
	}
	return n, err
}

func (ir *idleTimeoutReader) stop() {
	if ir.timer != nil {
		ir.timer.Stop()
	}
}
