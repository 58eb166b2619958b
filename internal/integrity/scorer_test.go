package integrity

import (
	"testing"

	"github.com/assessments/shellcore/internal/recorder"
)

func keySeq(startMS int64, gapMS int64, n int) []recorder.Event {
	var out []recorder.Event
	ts := startMS
	for i := 0; i < n; i++ {
		out = append(out, recorder.NewKeyEvent(ts, "x", recorder.KeyMeta{}))
		ts += gapMS
	}
	return out
}

func TestDeriveAverageWPMOverKeySpan(t *testing.T) {
	// 50 keys over exactly 1 minute => 50/5 = 10 wpm.
	events := keySeq(0, 60000/49, 50)
	p := Derive(events)
	if p.AverageWPM < 9 || p.AverageWPM > 11 {
		t.Errorf("expected ~10 wpm, got %f", p.AverageWPM)
	}
}

func TestDeriveBackspaceRatio(t *testing.T) {
	events := []recorder.Event{
		recorder.NewKeyEvent(0, "a", recorder.KeyMeta{}),
		recorder.NewKeyEvent(10, "\x7f", recorder.KeyMeta{}),
		recorder.NewKeyEvent(20, "b", recorder.KeyMeta{}),
		recorder.NewKeyEvent(30, "c", recorder.KeyMeta{}),
	}
	p := Derive(events)
	if p.BackspaceRatio != 0.25 {
		t.Errorf("expected 0.25, got %f", p.BackspaceRatio)
	}
}

func TestDeriveIdleBurstCount(t *testing.T) {
	var events []recorder.Event
	events = append(events, recorder.NewKeyEvent(0, "a", recorder.KeyMeta{}))
	events = append(events, keySeqFrom(15000, 50, 25)...)
	p := Derive(events)
	if p.IdleBurstCount != 1 {
		t.Errorf("expected 1 idle burst, got %d", p.IdleBurstCount)
	}
}

func keySeqFrom(start int64, gap int64, n int) []recorder.Event {
	return keySeq(start, gap, n)
}

func TestDeriveTabAwayCount(t *testing.T) {
	events := []recorder.Event{
		recorder.NewFocusChangeEvent(0, false),
		recorder.NewFocusChangeEvent(10, true),
		recorder.NewFocusChangeEvent(20, false),
	}
	p := Derive(events)
	if p.TabAwayCount != 2 {
		t.Errorf("expected 2, got %d", p.TabAwayCount)
	}
}

func TestScoreSessionCleanLogScoresHigh(t *testing.T) {
	events := keySeq(0, 150, 50)
	s := ScoreSession(events)
	if s.Value != 100 {
		t.Errorf("expected clean score of 100, got %d (%+v)", s.Value, s.Flags)
	}
}

func TestScoreSessionExcessivePasteDeductsHigh(t *testing.T) {
	var events []recorder.Event
	for i := 0; i < 6; i++ {
		events = append(events, recorder.NewPasteEvent(int64(i*1000), "x", recorder.DetectedByBurst))
	}
	s := ScoreSession(events)
	if s.Value != 70 {
		t.Errorf("expected 100-30=70, got %d", s.Value)
	}
	if len(s.Flags) != 1 || s.Flags[0].Name != "excessive_paste" {
		t.Errorf("expected excessive_paste flag, got %+v", s.Flags)
	}
}

func TestScoreSessionModeratePasteDeductsMedium(t *testing.T) {
	var events []recorder.Event
	for i := 0; i < 3; i++ {
		events = append(events, recorder.NewPasteEvent(int64(i*1000), "x", recorder.DetectedByBurst))
	}
	s := ScoreSession(events)
	if s.Value != 85 {
		t.Errorf("expected 100-15=85, got %d", s.Value)
	}
}

func TestScoreStaysWithinBoundsUnderManyFlags(t *testing.T) {
	var events []recorder.Event
	for i := 0; i < 6; i++ {
		events = append(events, recorder.NewPasteEvent(int64(i*1000), "x", recorder.DetectedByBurst))
	}
	for i := 0; i < 11; i++ {
		events = append(events, recorder.NewFocusChangeEvent(int64(i*1000), false))
	}
	for i := 0; i < 4; i++ {
		events = append(events, recorder.NewKeyEvent(int64(20000+i*15000), "a", recorder.KeyMeta{}))
		events = append(events, keySeq(int64(20000+i*15000+11000), 50, 20)...)
	}
	s := ScoreSession(events)
	if s.Value < 0 || s.Value > 100 {
		t.Fatalf("score out of bounds: %d", s.Value)
	}
}
