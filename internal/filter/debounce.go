package filter

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDebounce is the quiet period before a keyword is committed.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer buffers keyword input and commits it once typing has paused.
// It is idle until Input arms the timer; each further Input restarts the
// timer; when the timer fires the buffered value is committed unless it
// matches current(). Stop cancels a pending commit for good.
type Debouncer struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	delay   time.Duration
	current func() string
	commit  func(string)

	value   string
	timer   clockwork.Timer
	seq     uint64
	stopped bool
}

func NewDebouncer(clk clockwork.Clock, delay time.Duration, current func() string, commit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		clock:   clk,
		delay:   delay,
		current: current,
		commit:  commit,
		value:   current(),
	}
}

// Input records the latest text and restarts the timer.
func (d *Debouncer) Input(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.value = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush commits the buffered value now, as if the timer had fired.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.mu.Unlock()
	d.fire(seq)
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	v := strings.TrimSpace(d.value)
	d.mu.Unlock()

	if v == strings.TrimSpace(d.current()) {
		return
	}
	d.commit(v)
}

// Pending reports whether a commit is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Value returns the buffered text, committed or not.
func (d *Debouncer) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Reset replaces the buffer without scheduling a commit, e.g. after the
// committed keyword was changed from elsewhere.
func (d *Debouncer) Reset(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.value = v
}

// Stop cancels any pending commit. Later input is ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
