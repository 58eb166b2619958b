package recorder

import (
	"fmt"
	"sync"
	"time"
)

// Sink receives batches of events as they are flushed. The host wires
// this to persistence (internal/sessionstore) and/or a transport.Sink.
type Sink func(batch []Event)

const (
	flushInterval   = 5 * time.Second
	burstWindow     = 5 * time.Second
	burstMinKeys    = 30
	burstMaxGapMS   = 50
	bothAvgGapMS    = 50
)

// Recorder is the append-only SessionEvent log described in §3/§4.7: it
// accumulates events, flushes them to its Sink every 5 seconds (or on
// Stop), and runs a sliding-window burst-paste detector over incoming key
// events.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	pending []Event
	sink    Sink
	timer   *time.Timer

	// burst detector state: timestamps (ms) of keys seen within the
	// trailing window, oldest first.
	keyWindow []int64
}

// New builds a Recorder that flushes pending events to sink every 5
// seconds.
func New(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

// Record appends an event to the log. Key events are additionally run
// through the burst detector, which may synthesize a paste event.
func (r *Recorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	r.pending = append(r.pending, e)
	if e.Kind == KindKey {
		r.observeKey(e)
	}
	r.resetTimer()
}

// RecordPaste records a clipboard-API paste event directly, checking
// whether it overlaps an in-flight burst window to produce a "both"
// detection per §4.7.
func (r *Recorder) RecordPaste(ts int64, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	by := DetectedByClipboardAPI
	if r.overlapsActiveBurst(ts) {
		by = DetectedByBoth
	}
	e := NewPasteEvent(ts, content, by)
	r.events = append(r.events, e)
	r.pending = append(r.pending, e)
	r.resetTimer()
}

// overlapsActiveBurst reports whether the average gap between the last 5
// keys in the current window is under 50ms, meaning a fast typing/paste
// burst is already underway when the clipboard-API paste lands.
func (r *Recorder) overlapsActiveBurst(ts int64) bool {
	n := len(r.keyWindow)
	if n < 5 {
		return false
	}
	last5 := r.keyWindow[n-5:]
	var total int64
	for i := 1; i < len(last5); i++ {
		total += last5[i] - last5[i-1]
	}
	avg := total / int64(len(last5)-1)
	return avg < bothAvgGapMS
}

// observeKey slides ts into the key window, evicting anything older than
// burstWindow, then checks the burst-paste condition: the most recent k
// consecutive keys, scanning backward from ts, all have gaps of at most
// 50ms between them, with k >= 30.
func (r *Recorder) observeKey(e Event) {
	ts := e.TimestampMS
	r.keyWindow = append(r.keyWindow, ts)
	cutoff := ts - burstWindow.Milliseconds()
	i := 0
	for i < len(r.keyWindow) && r.keyWindow[i] < cutoff {
		i++
	}
	r.keyWindow = r.keyWindow[i:]

	start := len(r.keyWindow) - 1
	for start > 0 && r.keyWindow[start]-r.keyWindow[start-1] <= burstMaxGapMS {
		start--
	}
	k := len(r.keyWindow) - start
	if k < burstMinKeys {
		return
	}
	duration := ts - r.keyWindow[start]
	content := fmt.Sprintf("[burst detected: %d chars in %dms]", k, duration)
	paste := NewPasteEvent(ts, content, DetectedByBurst)
	r.events = append(r.events, paste)
	r.pending = append(r.pending, paste)
	r.keyWindow = nil
}

// resetTimer arms the 5-second flush timer when none is pending; a pending
// timer is left running unchanged. Callers must hold r.mu.
func (r *Recorder) resetTimer() {
	if r.timer != nil {
		return
	}
	r.timer = time.AfterFunc(flushInterval, func() {
		r.mu.Lock()
		r.timer = nil
		r.flushLocked()
		r.mu.Unlock()
	})
}

// flushLocked hands the pending batch to Sink; callers must hold r.mu.
func (r *Recorder) flushLocked() {
	if len(r.pending) == 0 || r.sink == nil {
		return
	}
	batch := r.pending
	r.pending = nil
	r.sink(batch)
}

// Flush forces an immediate flush of any pending events, independent of
// the periodic timer.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.flushLocked()
}

// Stop cancels the periodic timer and flushes any remaining events.
func (r *Recorder) Stop() {
	r.Flush()
}

// Events returns a snapshot copy of every event recorded so far,
// chronological order as recorded.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
