// Package lineedit implements the keystroke-level InputBuffer described in
// §3/§4.5: buffer/cursor state, history navigation, kill/yank-style word
// deletion, and the ANSI echo fragments the terminal must write to keep
// the displayed line consistent with the logical cursor.
package lineedit

import (
	"fmt"
	"strings"
)

// CompletionProvider resolves a partial token into candidate completions.
// isFirstToken tells the provider whether partial is the first
// whitespace-separated token of the buffer (a command name) or a later
// one (a path argument). The Terminal Engine installs one that returns
// command names in the former case and delegates to vfs.CompletePath in
// the latter.
type CompletionProvider func(partial string, isFirstToken bool) []string

// Buffer holds the InputBuffer state of §3.
type Buffer struct {
	content      []rune
	cursor       int
	history      []string
	historyIndex int // -1 == editing a fresh line
	tempBuffer   string

	Complete CompletionProvider
}

func New() *Buffer {
	return &Buffer{historyIndex: -1}
}

func (b *Buffer) String() string { return string(b.content) }
func (b *Buffer) Cursor() int    { return b.cursor }
func (b *Buffer) History() []string {
	out := make([]string, len(b.history))
	copy(out, b.history)
	return out
}

func (b *Buffer) tailLen() int { return len(b.content) - b.cursor }

// Insert handles a printable rune at the cursor.
func (b *Buffer) Insert(r rune) string {
	tail := string(b.content[b.cursor:])
	b.content = append(b.content[:b.cursor], append([]rune{r}, b.content[b.cursor:]...)...)
	b.cursor++
	echo := string(r) + tail
	if len(tail) > 0 {
		echo += fmt.Sprintf("\x1b[%dD", len(tail))
	}
	return echo
}

// Backspace deletes the rune to the left of the cursor.
func (b *Buffer) Backspace() string {
	if b.cursor == 0 {
		return ""
	}
	tail := string(b.content[b.cursor:])
	b.content = append(b.content[:b.cursor-1], b.content[b.cursor:]...)
	b.cursor--
	return fmt.Sprintf("\x1b[D%s \x1b[%dD", tail, len(tail)+1)
}

// DeleteUnderCursor implements ESC[3~ (forward delete).
func (b *Buffer) DeleteUnderCursor() string {
	if b.cursor >= len(b.content) {
		return ""
	}
	b.content = append(b.content[:b.cursor], b.content[b.cursor+1:]...)
	tail := string(b.content[b.cursor:])
	return fmt.Sprintf("%s \x1b[%dD", tail, len(tail)+1)
}

// MoveLeft / MoveRight implement ESC[D / ESC[C, bounded to the buffer.
func (b *Buffer) MoveLeft() string {
	if b.cursor == 0 {
		return ""
	}
	b.cursor--
	return "\x1b[D"
}

func (b *Buffer) MoveRight() string {
	if b.cursor >= len(b.content) {
		return ""
	}
	b.cursor++
	return "\x1b[C"
}

// Home / End implement ESC[H / ESC[F and Ctrl-A / Ctrl-E.
func (b *Buffer) Home() string {
	n := b.cursor
	b.cursor = 0
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%dD", n)
}

func (b *Buffer) End() string {
	n := len(b.content) - b.cursor
	b.cursor = len(b.content)
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("\x1b[%dC", n)
}

// KillToEOL implements Ctrl-K.
func (b *Buffer) KillToEOL() string {
	tail := b.content[b.cursor:]
	n := len(tail)
	if n == 0 {
		return ""
	}
	b.content = b.content[:b.cursor]
	return fmt.Sprintf("%s\x1b[%dD", strings.Repeat(" ", n), n)
}

// KillToBOL implements Ctrl-U.
func (b *Buffer) KillToBOL() string {
	if b.cursor == 0 {
		return ""
	}
	removed := b.cursor
	b.content = b.content[b.cursor:]
	b.cursor = 0
	rest := string(b.content)
	pad := strings.Repeat(" ", removed)
	restore := len(rest) + removed
	return fmt.Sprintf("\x1b[%dD%s%s\x1b[%dD", removed, rest, pad, restore)
}

// DeleteWordLeft implements Ctrl-W: skip trailing spaces, then delete a
// run of non-space characters.
func (b *Buffer) DeleteWordLeft() string {
	start := b.cursor
	i := b.cursor
	for i > 0 && b.content[i-1] == ' ' {
		i--
	}
	for i > 0 && b.content[i-1] != ' ' {
		i--
	}
	if i == start {
		return ""
	}
	tail := string(b.content[b.cursor:])
	b.content = append(b.content[:i], b.content[b.cursor:]...)
	removed := start - i
	b.cursor = i
	pad := strings.Repeat(" ", removed)
	return fmt.Sprintf("\x1b[%dD%s%s\x1b[%dD", removed, tail, pad, len(tail)+removed)
}

// replaceLine swaps the entire buffer content, used by history navigation.
func (b *Buffer) replaceLine(s string) string {
	old := len(b.content)
	b.content = []rune(s)
	b.cursor = len(b.content)
	pad := ""
	if old > len(b.content) {
		pad = strings.Repeat(" ", old-len(b.content)) + fmt.Sprintf("\x1b[%dD", old-len(b.content))
	}
	return fmt.Sprintf("\x1b[%dD%s%s", old, s, pad)
}

// HistoryUp implements ESC[A: navigate to the previous (older) entry,
// stashing the unsubmitted line in tempBuffer on first press.
func (b *Buffer) HistoryUp() string {
	if len(b.history) == 0 {
		return ""
	}
	if b.historyIndex == -1 {
		b.tempBuffer = b.String()
		b.historyIndex = len(b.history) - 1
	} else if b.historyIndex > 0 {
		b.historyIndex--
	} else {
		return ""
	}
	return b.replaceLine(b.history[b.historyIndex])
}

// HistoryDown implements ESC[B: navigate to the next (newer) entry,
// restoring tempBuffer once past the newest.
func (b *Buffer) HistoryDown() string {
	if b.historyIndex == -1 {
		return ""
	}
	if b.historyIndex < len(b.history)-1 {
		b.historyIndex++
		return b.replaceLine(b.history[b.historyIndex])
	}
	b.historyIndex = -1
	return b.replaceLine(b.tempBuffer)
}

// Submit implements Enter: push the trimmed line to history (if
// non-empty), clear the buffer, and return the submitted text.
func (b *Buffer) Submit() string {
	line := b.String()
	trimmed := strings.TrimSpace(line)
	if trimmed != "" {
		b.history = append(b.history, trimmed)
	}
	b.content = nil
	b.cursor = 0
	b.historyIndex = -1
	b.tempBuffer = ""
	return line
}

// Clear abandons the current line without submitting (Ctrl-C).
func (b *Buffer) Clear() {
	b.content = nil
	b.cursor = 0
	b.historyIndex = -1
	b.tempBuffer = ""
}

// currentToken returns the final whitespace-split fragment up to the
// cursor, the token Tab completion operates on.
func (b *Buffer) currentToken() (prefix string, tokenStart int) {
	upTo := string(b.content[:b.cursor])
	idx := strings.LastIndexByte(upTo, ' ')
	if idx == -1 {
		return upTo, 0
	}
	return upTo[idx+1:], idx + 1
}

// isFirstToken reports whether the cursor's current token is the first
// whitespace-separated token in the buffer.
func (b *Buffer) isFirstToken(tokenStart int) bool {
	before := string(b.content[:tokenStart])
	return strings.TrimSpace(before) == ""
}

// Tab runs completion per §4.5's policy and returns the echo fragment.
func (b *Buffer) Tab() string {
	if b.Complete == nil {
		return ""
	}
	partial, tokenStart := b.currentToken()
	candidates := b.Complete(partial, b.isFirstToken(tokenStart))
	switch len(candidates) {
	case 0:
		return ""
	case 1:
		completion := candidates[0]
		suffix := completion[len(partial):]
		if !strings.HasSuffix(completion, "/") {
			suffix += " "
		}
		return b.insertAtCursor(suffix)
	default:
		lcp := longestCommonPrefix(candidates)
		if len(lcp) > len(partial) {
			return b.insertAtCursor(lcp[len(partial):])
		}
		return "\r\n" + strings.Join(candidates, "  ")
	}
}

func (b *Buffer) insertAtCursor(s string) string {
	var echo strings.Builder
	for _, r := range s {
		echo.WriteString(b.Insert(r))
	}
	return echo.String()
}

func longestCommonPrefix(strs []string) string {
	if len(strs) == 0 {
		return ""
	}
	prefix := strs[0]
	for _, s := range strs[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}
	return prefix
}
