// Package recorder implements the append-only SessionEvent log and the
// burst-based paste detector described in §3/§4.7.
package recorder

// KeyMeta carries the modifier state accompanying a key event.
type KeyMeta struct {
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Alt   bool `json:"alt,omitempty"`
	Meta  bool `json:"meta,omitempty"`
}

// DetectedBy names how a paste event was recognised.
type DetectedBy string

const (
	DetectedByClipboardAPI DetectedBy = "clipboard_api"
	DetectedByBurst        DetectedBy = "burst"
	DetectedByBoth         DetectedBy = "both"
)

// Kind tags the variant of a SessionEvent, mirroring §3's tagged union.
type Kind string

const (
	KindKey              Kind = "key"
	KindPaste            Kind = "paste"
	KindOutput           Kind = "output"
	KindCommand          Kind = "command"
	KindObjectiveComplete Kind = "objective_complete"
	KindLevelAdvance     Kind = "level_advance"
	KindHintUsed         Kind = "hint_used"
	KindFocusChange      Kind = "focus_change"
	KindResize           Kind = "resize"
)

// Event is one entry in the session's event log. Only the fields relevant
// to Kind are populated; the rest stay at their zero value. A flatter
// struct (rather than an interface per variant) matches how the format is
// actually consumed downstream: serialised to JSON, walked by index in the
// replay engine, and aggregated field-by-field by the integrity scorer.
type Event struct {
	TimestampMS int64      `json:"timestamp_ms"`
	Kind        Kind       `json:"kind"`

	// key
	Key     string  `json:"key,omitempty"`
	KeyMeta KeyMeta `json:"key_meta,omitempty"`

	// paste
	Content    string     `json:"content,omitempty"`
	DetectedBy DetectedBy `json:"detected_by,omitempty"`

	// output
	OutputContent string `json:"output_content,omitempty"`

	// command
	Raw      string `json:"raw,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`

	// objective_complete / hint_used
	ObjectiveID string `json:"objective_id,omitempty"`

	// level_advance
	Level int `json:"level,omitempty"`

	// focus_change
	Focused bool `json:"focused,omitempty"`

	// resize
	Cols int `json:"cols,omitempty"`
	Rows int `json:"rows,omitempty"`
}

func NewKeyEvent(ts int64, key string, meta KeyMeta) Event {
	return Event{TimestampMS: ts, Kind: KindKey, Key: key, KeyMeta: meta}
}

func NewPasteEvent(ts int64, content string, by DetectedBy) Event {
	return Event{TimestampMS: ts, Kind: KindPaste, Content: content, DetectedBy: by}
}

func NewOutputEvent(ts int64, content string) Event {
	return Event{TimestampMS: ts, Kind: KindOutput, OutputContent: content}
}

func NewCommandEvent(ts int64, raw string, exitCode int) Event {
	return Event{TimestampMS: ts, Kind: KindCommand, Raw: raw, ExitCode: exitCode}
}

func NewObjectiveCompleteEvent(ts int64, id string) Event {
	return Event{TimestampMS: ts, Kind: KindObjectiveComplete, ObjectiveID: id}
}

func NewLevelAdvanceEvent(ts int64, level int) Event {
	return Event{TimestampMS: ts, Kind: KindLevelAdvance, Level: level}
}

func NewHintUsedEvent(ts int64, id string) Event {
	return Event{TimestampMS: ts, Kind: KindHintUsed, ObjectiveID: id}
}

func NewFocusChangeEvent(ts int64, focused bool) Event {
	return Event{TimestampMS: ts, Kind: KindFocusChange, Focused: focused}
}

func NewResizeEvent(ts int64, cols, rows int) Event {
	return Event{TimestampMS: ts, Kind: KindResize, Cols: cols, Rows: rows}
}

// IsBackspace reports whether a key event names a backspace key, per
// §4.9's "char codes 8, 127, or the string Backspace".
func (e Event) IsBackspace() bool {
	return e.Kind == KindKey && (e.Key == "\x08" || e.Key == "\x7f" || e.Key == "Backspace")
}
