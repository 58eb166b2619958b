package replay

import (
	"fmt"
	"strings"
	"sync"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/vt"
)

const maxScrollbackLines = 50000

// screenTerm wraps charmbracelet/x/vt the same way the live terminal
// widget does, so replaying a log through it produces byte-identical
// output to what the candidate actually saw. A fresh screenTerm is built
// for every RenderAt call, per §4.8: events 0..target are replayed into it from
// scratch rather than incrementally maintained, trading some redundant
// work for a reconstruction that can never drift from the live rendering
// path.
type screenTerm struct {
	emu        *vt.Emulator
	scrollback []string
	sbHead     int
	sbLen      int

	mu           sync.Mutex
	altScreen    bool
	cursorHidden bool
	cols, rows   int
}

func newScreenTerm(cols, rows int) *screenTerm {
	v := &screenTerm{
		emu:        vt.NewEmulator(cols, rows),
		scrollback: make([]string, maxScrollbackLines),
		cols:       cols,
		rows:       rows,
	}
	v.emu.SetCallbacks(vt.Callbacks{
		ScrollOut: func(lines []uv.Line) {
			if v.altScreen {
				return
			}
			for _, line := range lines {
				rendered := line.Render()
				if v.sbLen == len(v.scrollback) {
					v.scrollback[v.sbHead] = ""
				}
				v.scrollback[v.sbHead] = rendered
				v.sbHead = (v.sbHead + 1) % len(v.scrollback)
				if v.sbLen < len(v.scrollback) {
					v.sbLen++
				}
			}
		},
		ScrollbackClear: func() {
			for i := range v.scrollback {
				v.scrollback[i] = ""
			}
			v.sbLen = 0
			v.sbHead = 0
		},
		AltScreen: func(on bool) {
			v.altScreen = on
		},
		CursorVisibility: func(visible bool) {
			v.cursorHidden = !visible
		},
	})
	return v
}

func (v *screenTerm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.emu.Write(p)
}

// Snapshot renders scrollback + grid + cursor restore, matching the live
// reconnect payload format so a replay frontend can reuse one renderer.
func (v *screenTerm) Snapshot() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()

	var buf strings.Builder
	lines := v.scrollbackLines()
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteString("\r\n")
	}
	if len(lines) > 0 {
		for range v.rows - 1 {
			buf.WriteByte('\n')
		}
	}
	buf.WriteString("\x1b[m\x1b[H")
	buf.WriteString(v.emu.Render())
	pos := v.emu.CursorPosition()
	fmt.Fprintf(&buf, "\x1b[%d;%dH", pos.Y+1, pos.X+1)
	if v.cursorHidden {
		buf.WriteString("\x1b[?25l")
	} else {
		buf.WriteString("\x1b[?25h")
	}
	return []byte(buf.String())
}

func (v *screenTerm) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.emu.Close()
}

func (v *screenTerm) scrollbackLines() []string {
	if v.sbLen == 0 {
		return nil
	}
	lines := make([]string, v.sbLen)
	start := (v.sbHead - v.sbLen + len(v.scrollback)) % len(v.scrollback)
	for i := range v.sbLen {
		lines[i] = v.scrollback[(start+i)%len(v.scrollback)]
	}
	return lines
}
