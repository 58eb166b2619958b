// Package integrity implements the Integrity Scorer of §4.9: a pure
// function over a completed session event log that derives a typing
// fingerprint and turns it into a weighted-deduction trust score.
package integrity

import (
	"github.com/assessments/shellcore/internal/recorder"
)

// TypingPattern is the set of behavioural signals derived from a
// session's key, paste and focus-change events.
type TypingPattern struct {
	AverageWPM                  float64
	MaxWPM                      float64
	BackspaceRatio              float64
	IdleBurstCount              int
	TabAwayCount                int
	SustainedHighSpeedSegments  int
	PerfectCodeSegments         int
	PasteCount                  int
}

// keyEvents filters ev down to key events only, preserving order.
func keyEvents(events []recorder.Event) []recorder.Event {
	var out []recorder.Event
	for _, e := range events {
		if e.Kind == recorder.KindKey {
			out = append(out, e)
		}
	}
	return out
}

// wpm converts a character count and a millisecond span into words per
// minute using the standard 5-characters-per-word convention.
func wpm(chars int, spanMS int64) float64 {
	if spanMS <= 0 {
		return 0
	}
	minutes := float64(spanMS) / 60000.0
	return float64(chars) / 5.0 / minutes
}

// Derive computes a TypingPattern from the full session event log.
func Derive(events []recorder.Event) TypingPattern {
	keys := keyEvents(events)
	p := TypingPattern{}

	if len(keys) >= 2 {
		span := keys[len(keys)-1].TimestampMS - keys[0].TimestampMS
		p.AverageWPM = wpm(len(keys), span)
	}

	p.MaxWPM = maxWindowWPM(keys, 10)

	backspaces := 0
	for _, k := range keys {
		if k.IsBackspace() {
			backspaces++
		}
	}
	if len(keys) > 0 {
		p.BackspaceRatio = float64(backspaces) / float64(len(keys))
	}

	p.IdleBurstCount = countIdleBursts(keys)

	for _, e := range events {
		if e.Kind == recorder.KindFocusChange && !e.Focused {
			p.TabAwayCount++
		}
		if e.Kind == recorder.KindPaste {
			p.PasteCount++
		}
	}

	p.SustainedHighSpeedSegments = countSegments(keys, 50, func(window []recorder.Event) bool {
		span := window[len(window)-1].TimestampMS - window[0].TimestampMS
		return wpm(len(window), span) > 200
	})

	p.PerfectCodeSegments = countSegments(keys, 100, func(window []recorder.Event) bool {
		bs := 0
		for _, k := range window {
			if k.IsBackspace() {
				bs++
			}
		}
		return float64(bs)/float64(len(window)) < 0.02
	})

	return p
}

// maxWindowWPM slides a window of size n over keys and returns the
// maximum WPM measured across any such window.
func maxWindowWPM(keys []recorder.Event, n int) float64 {
	if len(keys) < n {
		return 0
	}
	max := 0.0
	for i := 0; i+n <= len(keys); i++ {
		window := keys[i : i+n]
		span := window[len(window)-1].TimestampMS - window[0].TimestampMS
		if w := wpm(n, span); w > max {
			max = w
		}
	}
	return max
}

// countIdleBursts counts gaps of at least 10s immediately followed by a
// run of at least 20 keys each separated by under 100ms.
func countIdleBursts(keys []recorder.Event) int {
	count := 0
	i := 1
	for i < len(keys) {
		gap := keys[i].TimestampMS - keys[i-1].TimestampMS
		if gap < 10000 {
			i++
			continue
		}
		run := 1
		j := i + 1
		for j < len(keys) && keys[j].TimestampMS-keys[j-1].TimestampMS < 100 {
			run++
			j++
		}
		if run >= 20 {
			count++
			i = j
		} else {
			i++
		}
	}
	return count
}

// countSegments walks non-overlapping windows of size n over keys,
// advancing by n each time a window satisfies pred, and counts matches.
func countSegments(keys []recorder.Event, n int, pred func([]recorder.Event) bool) int {
	count := 0
	i := 0
	for i+n <= len(keys) {
		window := keys[i : i+n]
		if pred(window) {
			count++
			i += n
		} else {
			i++
		}
	}
	return count
}

// Flag is one deduction applied to the score.
type Flag struct {
	Name     string
	Severity string
	Points   int
}

const (
	severityHigh   = "high"
	severityMedium = "medium"
	severityLow    = "low"
)

var severityPoints = map[string]int{
	severityHigh:   30,
	severityMedium: 15,
	severityLow:    5,
}

// Score is the result of scoring a session: the final clamped score, the
// flags that fired, and a textual summary bucketed by score.
type Score struct {
	Value   int
	Flags   []Flag
	Summary string
}

// ScoreSession runs the full §4.9 pipeline: derive the TypingPattern,
// evaluate each named flag against it, deduct by severity, clamp to
// [0, 100], and choose a textual summary by score bucket.
func ScoreSession(events []recorder.Event) Score {
	p := Derive(events)
	var flags []Flag

	add := func(name, severity string) {
		flags = append(flags, Flag{Name: name, Severity: severity, Points: severityPoints[severity]})
	}

	switch {
	case p.PasteCount > 5:
		add("excessive_paste", severityHigh)
	case p.PasteCount > 2:
		add("moderate_paste", severityMedium)
	}
	if p.SustainedHighSpeedSegments > 0 {
		add("speed_anomaly", severityMedium)
	}
	if p.PerfectCodeSegments > 2 {
		add("perfect_code", severityMedium)
	}
	if p.IdleBurstCount > 3 {
		add("idle_burst", severityLow)
	}
	if p.TabAwayCount > 10 {
		add("frequent_tab_away", severityLow)
	}

	value := 100
	for _, f := range flags {
		value -= f.Points
	}
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	return Score{Value: value, Flags: flags, Summary: summarize(value)}
}

func summarize(score int) string {
	switch {
	case score >= 90:
		return "No significant integrity concerns detected."
	case score >= 70:
		return "Minor anomalies detected; review recommended but not concerning."
	case score >= 50:
		return "Multiple integrity flags raised; manual review advised."
	default:
		return "Significant integrity concerns; strongly recommend manual review."
	}
}
