package recorder

import (
	"testing"
)

func TestRecordAccumulatesEvents(t *testing.T) {
	r := New(nil)
	r.Record(NewCommandEvent(1000, "ls", 0))
	r.Record(NewCommandEvent(1001, "pwd", 0))
	if len(r.Events()) != 2 {
		t.Fatalf("expected 2 events, got %d", len(r.Events()))
	}
}

func TestFlushDeliversPendingBatchToSink(t *testing.T) {
	var got []Event
	r := New(func(batch []Event) { got = append(got, batch...) })
	r.Record(NewCommandEvent(1000, "ls", 0))
	r.Flush()
	if len(got) != 1 {
		t.Fatalf("expected sink to receive 1 event, got %d", len(got))
	}
	// a second flush with nothing pending must not redeliver.
	r.Flush()
	if len(got) != 1 {
		t.Fatalf("expected no redelivery, got %d", len(got))
	}
}

func TestBurstOfThirtyTightKeysSynthesizesPasteEvent(t *testing.T) {
	r := New(nil)
	ts := int64(0)
	for i := 0; i < 30; i++ {
		r.Record(NewKeyEvent(ts, "x", KeyMeta{}))
		ts += 10
	}
	events := r.Events()
	found := false
	for _, e := range events {
		if e.Kind == KindPaste && e.DetectedBy == DetectedByBurst {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a synthesized burst paste event, got %+v", events)
	}
}

func TestSlowKeysDoNotTriggerBurst(t *testing.T) {
	r := New(nil)
	ts := int64(0)
	for i := 0; i < 30; i++ {
		r.Record(NewKeyEvent(ts, "x", KeyMeta{}))
		ts += 200
	}
	for _, e := range r.Events() {
		if e.Kind == KindPaste {
			t.Fatalf("did not expect a paste event from slow typing")
		}
	}
}

func TestOneSlowGapResetsBurstWindow(t *testing.T) {
	r := New(nil)
	ts := int64(0)
	for i := 0; i < 15; i++ {
		r.Record(NewKeyEvent(ts, "x", KeyMeta{}))
		ts += 10
	}
	ts += 500 // one slow gap
	for i := 0; i < 15; i++ {
		r.Record(NewKeyEvent(ts, "x", KeyMeta{}))
		ts += 10
	}
	for _, e := range r.Events() {
		if e.Kind == KindPaste {
			t.Fatalf("did not expect burst across a slow gap, got one")
		}
	}
}

func TestClipboardPasteDuringBurstIsDetectedAsBoth(t *testing.T) {
	r := New(nil)
	ts := int64(0)
	for i := 0; i < 10; i++ {
		r.Record(NewKeyEvent(ts, "x", KeyMeta{}))
		ts += 10
	}
	r.RecordPaste(ts, "pasted text")
	events := r.Events()
	last := events[len(events)-1]
	if last.Kind != KindPaste || last.DetectedBy != DetectedByBoth {
		t.Fatalf("expected both-detected paste, got %+v", last)
	}
}

func TestClipboardPasteWithoutBurstIsClipboardOnly(t *testing.T) {
	r := New(nil)
	r.RecordPaste(0, "pasted text")
	events := r.Events()
	if events[0].DetectedBy != DetectedByClipboardAPI {
		t.Fatalf("expected clipboard_api detection, got %q", events[0].DetectedBy)
	}
}
