package replay

import (
	"sync"
	"testing"
	"time"

	"github.com/assessments/shellcore/internal/recorder"
)

func sampleLog() []recorder.Event {
	return []recorder.Event{
		recorder.NewCommandEvent(100, "pwd", 0),
		recorder.NewOutputEvent(50, "/home/candidate\n"),
		recorder.NewCommandEvent(200, "ls", 0),
	}
}

func TestNewDefensivelyReSorts(t *testing.T) {
	e := New(sampleLog())
	if e.log[0].TimestampMS != 50 {
		t.Fatalf("expected re-sort to put ts=50 first, got %+v", e.log)
	}
}

func TestDurationIsLastMinusFirst(t *testing.T) {
	e := New(sampleLog())
	if d := e.Duration(); d != 150 {
		t.Errorf("expected duration 150, got %d", d)
	}
}

func TestSeekToClampsIntoRange(t *testing.T) {
	e := New(sampleLog())
	e.SeekTo(999)
	if e.CurrentIndex() != 3 {
		t.Errorf("expected clamp to len(log)=3, got %d", e.CurrentIndex())
	}
	e.SeekTo(-5)
	if e.CurrentIndex() != 0 {
		t.Errorf("expected clamp to 0, got %d", e.CurrentIndex())
	}
}

func TestSeekToTimeFindsFirstAtOrAfter(t *testing.T) {
	e := New(sampleLog())
	e.SeekToTime(150)
	if e.CurrentIndex() != 2 {
		t.Errorf("expected index 2 (ts=200), got %d", e.CurrentIndex())
	}
}

func TestPlayDeliversEventsInOrderThenStops(t *testing.T) {
	e := New(sampleLog())
	e.SetSpeed(1000) // compress timing so the test runs fast
	var mu sync.Mutex
	var delivered []int64
	done := make(chan struct{})
	e.OnStateChange = func(s State) {
		if !s.IsPlaying {
			select {
			case <-done:
			default:
				close(done)
			}
		}
	}
	e.OnEvent = func(ev recorder.Event) {
		mu.Lock()
		delivered = append(delivered, ev.TimestampMS)
		mu.Unlock()
	}
	e.Play()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not finish in time")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 3 {
		t.Fatalf("expected 3 delivered events, got %d: %+v", len(delivered), delivered)
	}
	for i := 1; i < len(delivered); i++ {
		if delivered[i] < delivered[i-1] {
			t.Fatalf("events delivered out of order: %+v", delivered)
		}
	}
	if e.IsPlaying() {
		t.Error("expected playback to stop at end of log")
	}
}

func TestPauseCancelsPendingTick(t *testing.T) {
	e := New(sampleLog())
	var count int
	var mu sync.Mutex
	e.OnEvent = func(ev recorder.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}
	e.Play()
	e.Pause()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	n := count
	mu.Unlock()
	if n > 1 {
		t.Errorf("expected playback to stop after pause, delivered %d events", n)
	}
}

func TestRenderAtProducesNonEmptySnapshot(t *testing.T) {
	events := []recorder.Event{
		recorder.NewOutputEvent(0, "hello\r\n"),
		recorder.NewOutputEvent(1, "world\r\n"),
	}
	snap := RenderAt(events, 2, 80, 24)
	if len(snap) == 0 {
		t.Error("expected non-empty snapshot")
	}
}
