// Package replay implements the Replay Engine described in §4.8:
// deterministic, speed-adjustable playback of a recorded session event
// log, plus a VTerm-backed helper that reconstructs the terminal screen
// at an arbitrary point in the recording.
package replay

import (
	"sort"
	"sync"
	"time"

	"github.com/assessments/shellcore/internal/recorder"
)

const defaultTickCapMS = 2000

// State is the snapshot handed to OnStateChange after anything changes.
type State struct {
	CurrentIndex int
	IsPlaying    bool
	Speed        float64
}

// Engine drives playback of a fixed event list.
type Engine struct {
	mu   sync.Mutex
	log  []recorder.Event
	idx  int
	play bool
	speed float64
	timer *time.Timer

	OnEvent      func(recorder.Event)
	OnStateChange func(State)
}

// New builds an Engine over events, defensively re-sorted chronologically
// per §4.8. Speed defaults to 1x.
func New(events []recorder.Event) *Engine {
	log := make([]recorder.Event, len(events))
	copy(log, events)
	sort.SliceStable(log, func(i, j int) bool { return log[i].TimestampMS < log[j].TimestampMS })
	return &Engine{log: log, speed: 1.0}
}

// Duration returns last.timestamp - first.timestamp, or 0 for an empty
// or single-event log.
func (e *Engine) Duration() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.log) < 2 {
		return 0
	}
	return e.log[len(e.log)-1].TimestampMS - e.log[0].TimestampMS
}

// CurrentIndex, IsPlaying and Speed report the engine's current state.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idx
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.play
}

func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Play resumes playback from the current index, wrapping to 0 if
// already at the end.
func (e *Engine) Play() {
	e.mu.Lock()
	if len(e.log) == 0 {
		e.mu.Unlock()
		return
	}
	if e.idx >= len(e.log) {
		e.idx = 0
	}
	e.play = true
	e.scheduleLocked()
	s := e.stateLocked()
	e.mu.Unlock()
	e.notify(s)
}

// Pause cancels the pending tick without moving the index.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.play = false
	e.cancelTimerLocked()
	s := e.stateLocked()
	e.mu.Unlock()
	e.notify(s)
}

// SetSpeed updates playback speed, re-scheduling the pending tick (if
// any) against the new speed.
func (e *Engine) SetSpeed(s float64) {
	e.mu.Lock()
	if s <= 0 {
		e.mu.Unlock()
		return
	}
	e.speed = s
	if e.play {
		e.cancelTimerLocked()
		e.scheduleLocked()
	}
	st := e.stateLocked()
	e.mu.Unlock()
	e.notify(st)
}

// SeekTo clamps index into [0, len(log)] and notifies.
func (e *Engine) SeekTo(index int) {
	e.mu.Lock()
	e.cancelTimerLocked()
	e.idx = clamp(index, 0, len(e.log))
	if e.play {
		e.scheduleLocked()
	}
	s := e.stateLocked()
	e.mu.Unlock()
	e.notify(s)
}

// SeekToTime jumps to the first index whose timestamp is >= ms.
func (e *Engine) SeekToTime(ms int64) {
	e.mu.Lock()
	e.cancelTimerLocked()
	i := sort.Search(len(e.log), func(i int) bool { return e.log[i].TimestampMS >= ms })
	e.idx = i
	if e.play {
		e.scheduleLocked()
	}
	s := e.stateLocked()
	e.mu.Unlock()
	e.notify(s)
}

// Stop cancels any pending timer; the engine must not schedule further
// ticks after Stop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.play = false
	e.cancelTimerLocked()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// scheduleLocked delivers the event at idx immediately via the tick
// callback chain; callers must hold e.mu and have confirmed e.play.
func (e *Engine) scheduleLocked() {
	e.cancelTimerLocked()
	if e.idx >= len(e.log) {
		e.play = false
		return
	}
	e.timer = time.AfterFunc(0, e.tick)
}

func (e *Engine) tick() {
	e.mu.Lock()
	if !e.play || e.idx >= len(e.log) {
		e.play = false
		e.mu.Unlock()
		return
	}
	current := e.log[e.idx]
	e.idx++
	onEvent := e.OnEvent

	var delayMS int64
	if e.idx < len(e.log) {
		next := e.log[e.idx]
		gap := next.TimestampMS - current.TimestampMS
		delayMS = int64(float64(gap) / e.speed)
		capMS := int64(float64(defaultTickCapMS) / e.speed)
		if delayMS > capMS {
			delayMS = capMS
		}
		if delayMS < 0 {
			delayMS = 0
		}
	}
	atEnd := e.idx >= len(e.log)
	if atEnd {
		e.play = false
	}
	e.mu.Unlock()

	if onEvent != nil {
		onEvent(current)
	}
	e.mu.Lock()
	s := e.stateLocked()
	e.mu.Unlock()
	e.notify(s)

	if atEnd {
		return
	}
	e.mu.Lock()
	if e.play {
		e.timer = time.AfterFunc(time.Duration(delayMS)*time.Millisecond, e.tick)
	}
	e.mu.Unlock()
}

func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// stateLocked builds a State snapshot; callers must hold e.mu.
func (e *Engine) stateLocked() State {
	return State{CurrentIndex: e.idx, IsPlaying: e.play, Speed: e.speed}
}

// notify invokes OnStateChange, if installed, outside of e.mu so a
// callback is free to call back into the Engine.
func (e *Engine) notify(s State) {
	if e.OnStateChange != nil {
		e.OnStateChange(s)
	}
}

// RenderAt replays every output event from index 0 through (but not
// including) target into a fresh terminal emulator and returns the
// reconnect-style snapshot bytes, reconstructing exactly what the
// candidate's screen looked like at that point in the recording.
func RenderAt(events []recorder.Event, target, cols, rows int) []byte {
	term := newScreenTerm(cols, rows)
	defer term.Close()
	target = clamp(target, 0, len(events))
	for i := 0; i < target; i++ {
		e := events[i]
		if e.Kind == recorder.KindOutput {
			term.Write([]byte(e.OutputContent))
		}
	}
	return term.Snapshot()
}
