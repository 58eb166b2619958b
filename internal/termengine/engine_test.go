package termengine

import (
	"strings"
	"testing"
)

func newTestEngine(t *testing.T) (*Engine, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	e := New("candidate", "assessment", "/home/candidate", func(s string) { out.WriteString(s) }, nil)
	return e, &out
}

func feed(e *Engine, s string) {
	e.HandleInput([]byte(s))
}

func TestBootWritesPrompt(t *testing.T) {
	e, out := newTestEngine(t)
	e.Boot()
	if !strings.Contains(out.String(), "candidate@assessment") {
		t.Errorf("prompt missing from boot output: %q", out.String())
	}
}

func TestTypedCommandExecutes(t *testing.T) {
	e, out := newTestEngine(t)
	feed(e, "echo hi\r")
	if !strings.Contains(out.String(), "hi") {
		t.Errorf("expected echo output, got %q", out.String())
	}
}

func TestBackspaceEditsBuffer(t *testing.T) {
	e, out := newTestEngine(t)
	feed(e, "ecHo\x7f\x7f")
	feed(e, "ho hi\r")
	if !strings.Contains(out.String(), "hi") {
		t.Errorf("expected corrected command to run, got %q", out.String())
	}
}

func TestCtrlCAbandonsLine(t *testing.T) {
	e, out := newTestEngine(t)
	feed(e, "rm -rf /\x03")
	if !strings.Contains(out.String(), "^C") {
		t.Errorf("expected ^C echo, got %q", out.String())
	}
	if e.Input.String() != "" {
		t.Errorf("expected buffer cleared, got %q", e.Input.String())
	}
}

func TestArrowUpRecallsHistory(t *testing.T) {
	e, _ := newTestEngine(t)
	feed(e, "pwd\r")
	feed(e, "\x1b[A")
	if e.Input.String() != "pwd" {
		t.Errorf("expected history recall, got %q", e.Input.String())
	}
}

func TestPasteInsertsMultilineAsSeparateCommands(t *testing.T) {
	e, out := newTestEngine(t)
	feed(e, "echo one\necho two\n")
	text := out.String()
	if !strings.Contains(text, "one") || !strings.Contains(text, "two") {
		t.Errorf("expected both paste lines executed, got %q", text)
	}
}

func TestHeredocWritesRedirectTarget(t *testing.T) {
	e, _ := newTestEngine(t)
	feed(e, "cat > note.txt << EOF\r")
	feed(e, "hello\r")
	feed(e, "world\r")
	feed(e, "EOF\r")
	content, err := e.FS.ReadFile("note.txt", e.Ctx.Cwd)
	if err != nil {
		t.Fatalf("note.txt not written: %v", err)
	}
	if content != "hello\nworld\n" {
		t.Errorf("got %q", content)
	}
}

func TestUnknownCommandReportsExit127(t *testing.T) {
	e, out := newTestEngine(t)
	feed(e, "bogus-tool\r")
	if !strings.Contains(out.String(), "command not found") {
		t.Errorf("expected not-found message, got %q", out.String())
	}
	if e.Ctx.LastExitCode != 127 {
		t.Errorf("expected exit 127, got %d", e.Ctx.LastExitCode)
	}
}
