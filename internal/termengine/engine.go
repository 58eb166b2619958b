// Package termengine implements the Terminal Engine described in §4.6:
// the component that owns the VFS, command registry, executor, line
// editor and command context for one candidate session, turns a raw
// input byte stream into InputBuffer operations and executed commands,
// and renders prompts, heredocs and pasted text the way a real terminal
// would.
package termengine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/assessments/shellcore/internal/executor"
	"github.com/assessments/shellcore/internal/lineedit"
	"github.com/assessments/shellcore/internal/shellcmd"
	"github.com/assessments/shellcore/internal/shparse"
	"github.com/assessments/shellcore/internal/vfs"
)

// OutputFunc is how the engine writes terminal-bound bytes; the host
// wires this to a transport.Sink and/or the recorder.
type OutputFunc func(data string)

// EventFunc notifies the host of engine events ("paste", "command",
// "objective_complete"), for the recorder.
type EventFunc func(kind string, payload map[string]any)

// Engine owns every piece of per-session state and is the single entry
// point the host (websocket handler, CLI harness, or test) drives with
// raw input bytes.
type Engine struct {
	FS       *vfs.VFS
	Registry *shellcmd.Registry
	Exec     *executor.Executor
	Ctx      *shellcmd.Context
	Input    *lineedit.Buffer

	Output OutputFunc
	Event  EventFunc

	processing bool

	// heredoc accumulation state, set while a `<< TAG` is pending.
	heredocActive bool
	heredocTag    string
	heredocQuoted bool
	heredocLines  []string
	heredocCmd    string // the command line that introduced the heredoc

	// escBuf is unused: handleEscape looks ahead only within the chunk it
	// was given, so a CSI sequence split across two HandleInput calls is
	// not reassembled.
	escBuf []byte
}

// New builds an Engine for one candidate session.
func New(user, hostname, home string, out OutputFunc, ev EventFunc) *Engine {
	fs := vfs.New()
	fs.Mkdir(home, "/", true)
	reg := shellcmd.NewRegistry()
	ctx := shellcmd.NewContext(fs, user, hostname, home)
	e := &Engine{
		FS:       fs,
		Registry: reg,
		Exec:     executor.New(reg),
		Ctx:      ctx,
		Input:    lineedit.New(),
		Output:   out,
		Event:    ev,
	}
	ctx.HistoryFunc = e.Input.History
	e.Input.Complete = e.complete
	return e
}

func (e *Engine) write(s string) {
	if e.Output != nil && s != "" {
		e.Output(s)
	}
}

func (e *Engine) emit(kind string, payload map[string]any) {
	if e.Event != nil {
		e.Event(kind, payload)
	}
}

// Boot writes the session's opening banner and first prompt.
func (e *Engine) Boot() {
	e.write("shellcore assessment terminal\ntype `status` to see your current objectives.\n\n")
	e.writePrompt()
}

// prompt renders `<green user@host><reset>:<blue cwd><reset>$ ` with the
// cwd abbreviated under the candidate's home directory.
func (e *Engine) prompt() string {
	cwd := vfs.AbbreviateHome(e.Ctx.Cwd, e.Ctx.Env["HOME"])
	return fmt.Sprintf("\x1b[32m%s@%s\x1b[0m:\x1b[34m%s\x1b[0m$ ", e.Ctx.User, e.Ctx.Hostname, cwd)
}

func (e *Engine) writePrompt() {
	e.write(e.prompt())
}

// complete is the lineedit.CompletionProvider installed on Input: first
// token completes against registered command names, later tokens
// delegate to the VFS path completer.
func (e *Engine) complete(partial string, isFirstToken bool) []string {
	if isFirstToken {
		return e.Registry.MatchNames(partial)
	}
	return e.FS.CompletePath(partial, e.Ctx.Cwd)
}

// HandleInput processes a chunk of raw bytes arriving from the
// transport, as if typed or pasted by the candidate. A chunk longer than
// one byte and free of control characters (aside from whitespace) is
// treated as a paste; anything else is walked byte-by-byte through the
// key/CSI dispatcher.
func (e *Engine) HandleInput(data []byte) {
	if e.processing {
		// §5: input arriving while a command is still running is dropped,
		// Ctrl-C included (handlers run to completion synchronously, so
		// there is nothing for it to interrupt).
		return
	}
	if looksLikePaste(data) {
		e.handlePaste(string(data))
		return
	}
	for i := 0; i < len(data); i++ {
		e.handleByte(data, &i)
	}
}

// looksLikePaste applies §4.6's heuristic: more than one byte, containing
// no control bytes other than \n \r \t.
func looksLikePaste(data []byte) bool {
	if len(data) <= 1 {
		return false
	}
	n := 0
	for _, b := range data {
		if (b < 0x20 || b == 0x7f) && b != '\n' && b != '\r' && b != '\t' {
			return false
		}
		if b == 0x1b {
			return false
		}
		n++
	}
	return n > 1
}

// handlePaste inserts the pasted text: a single line goes straight into
// the buffer, a multi-line paste executes each line as its own command in
// turn (matching a terminal echoing a pasted multi-line script).
func (e *Engine) handlePaste(text string) {
	filtered := filterControlChars(text)
	e.emit("paste", map[string]any{"content": filtered})
	lines := strings.Split(strings.ReplaceAll(strings.ReplaceAll(filtered, "\r\n", "\n"), "\r", "\n"), "\n")
	if len(lines) == 1 {
		for _, r := range lines[0] {
			e.write(e.Input.Insert(r))
		}
		return
	}
	for i, line := range lines {
		for _, r := range line {
			e.write(e.Input.Insert(r))
		}
		if i < len(lines)-1 {
			e.submitLine()
		}
	}
}

func filterControlChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// handleByte dispatches one byte of "typed" input, consuming a bounded
// CSI lookahead (ESC [ <final>, or ESC [ 3 ~) when it sees ESC.
func (e *Engine) handleByte(data []byte, i *int) {
	b := data[*i]
	switch {
	case b == 0x1b:
		e.handleEscape(data, i)
	case b == '\r' || b == '\n':
		e.submitLine()
	case b == 0x7f || b == 0x08:
		e.write(e.Input.Backspace())
	case b == 0x03: // Ctrl-C
		e.Input.Clear()
		e.heredocActive = false
		e.heredocTag = ""
		e.heredocQuoted = false
		e.heredocLines = nil
		e.heredocCmd = ""
		e.write("^C\r\n")
		e.writePrompt()
	case b == 0x04: // Ctrl-D
		if e.Input.String() == "" {
			e.write("\r\n")
		}
		// non-empty buffer: ignored, per §5.
	case b == 0x01: // Ctrl-A
		e.write(e.Input.Home())
	case b == 0x05: // Ctrl-E
		e.write(e.Input.End())
	case b == 0x0b: // Ctrl-K
		e.write(e.Input.KillToEOL())
	case b == 0x15: // Ctrl-U
		e.write(e.Input.KillToBOL())
	case b == 0x17: // Ctrl-W
		e.write(e.Input.DeleteWordLeft())
	case b == 0x0c: // Ctrl-L
		e.write("\x1b[2J\x1b[H")
		e.writePrompt()
		e.write(e.Input.String())
	case b == '\t':
		e.write(e.Input.Tab())
	case b >= 0x20:
		r, size := utf8.DecodeRune(data[*i:])
		e.write(e.Input.Insert(r))
		*i += size - 1
	}
}

// handleEscape consumes ESC [ <final> or the 3-byte ESC [ 3 ~ form,
// looking ahead at most 3 bytes past ESC so a lone ESC (or a truncated
// sequence split across reads) never blocks forever.
func (e *Engine) handleEscape(data []byte, i *int) {
	rest := data[*i+1:]
	if len(rest) == 0 || rest[0] != '[' {
		return // bare ESC (not followed by '['): only the ESC is dropped
	}
	if len(rest) < 2 {
		*i++ // truncated "ESC [": swallowed
		return
	}
	switch rest[1] {
	case 'A':
		e.write(e.Input.HistoryUp())
		*i += 2
	case 'B':
		e.write(e.Input.HistoryDown())
		*i += 2
	case 'C':
		e.write(e.Input.MoveRight())
		*i += 2
	case 'D':
		e.write(e.Input.MoveLeft())
		*i += 2
	case 'H':
		e.write(e.Input.Home())
		*i += 2
	case 'F':
		e.write(e.Input.End())
		*i += 2
	case '3':
		if len(rest) >= 3 && rest[2] == '~' {
			e.write(e.Input.DeleteUnderCursor())
			*i += 3
		} else {
			*i += 2
		}
	default:
		*i += 2 // unrecognised sequence: swallowed
	}
}

// submitLine handles Enter: if a heredoc is pending, accumulate or close
// it; otherwise run the submitted line as a command.
func (e *Engine) submitLine() {
	line := e.Input.Submit()
	e.write("\r\n")
	if e.heredocActive {
		e.continueHeredoc(line)
		return
	}
	if tag, quoted, ok := detectHeredoc(line); ok {
		e.heredocActive = true
		e.heredocTag = tag
		e.heredocQuoted = quoted
		e.heredocCmd = line
		e.heredocLines = nil
		e.write("> ")
		return
	}
	e.runLine(line)
	e.writePrompt()
}

// detectHeredoc recognises a trailing `<< [-]TAG` or `<< 'TAG'`/`<< "TAG"`
// on the command line.
func detectHeredoc(line string) (tag string, quoted bool, ok bool) {
	idx := strings.Index(line, "<<")
	if idx == -1 {
		return "", false, false
	}
	rest := strings.TrimSpace(line[idx+2:])
	if rest == "" {
		return "", false, false
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "-"))
	if rest == "" {
		return "", false, false
	}
	if len(rest) >= 2 && (rest[0] == '\'' || rest[0] == '"') && rest[len(rest)-1] == rest[0] {
		return rest[1 : len(rest)-1], true, true
	}
	return rest, false, true
}

// continueHeredoc accumulates lines until one equals the tag exactly,
// then runs the introducing command with the accumulated body as its
// stdin. The command's output, not the body itself, goes to the
// output-redirect target if there is one, so the target holds the body
// only when the command echoes its stdin unchanged (as `cat` does).
func (e *Engine) continueHeredoc(line string) {
	if line == e.heredocTag {
		e.heredocActive = false
		body := strings.Join(e.heredocLines, "\n")
		if body != "" {
			body += "\n"
		}
		cmdLine := e.heredocCmd
		if idx := strings.Index(cmdLine, "<<"); idx != -1 {
			cmdLine = strings.TrimRight(cmdLine[:idx], " \t")
		}
		e.runHeredocCommand(cmdLine, body)
		e.writePrompt()
		return
	}
	e.heredocLines = append(e.heredocLines, line)
	e.write("> ")
}

// runHeredocCommand runs the command that introduced the heredoc with
// the accumulated body as its stdin, since the executor has no pipeline
// stage that would otherwise supply one.
func (e *Engine) runHeredocCommand(cmdLine, body string) {
	cmd := shparse.ParseCommand(strings.TrimSpace(cmdLine))
	h, found := e.Registry.Lookup(cmd.Name)
	var res shellcmd.Result
	if !found {
		res = shellcmd.Result{Output: cmd.Name + ": command not found", ExitCode: 127}
	} else {
		res = h(cmd, e.Ctx, body)
	}
	e.Ctx.LastExitCode = res.ExitCode

	if cmd.OutputRedirect != nil {
		content := res.Output
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if cmd.OutputRedirect.Append {
			e.Ctx.FS.AppendFile(cmd.OutputRedirect.Path, e.Ctx.Cwd, content)
		} else {
			e.Ctx.FS.WriteFile(cmd.OutputRedirect.Path, e.Ctx.Cwd, content)
		}
	} else if res.Output != "" {
		e.write(strings.ReplaceAll(res.Output, "\n", "\r\n") + "\r\n")
	}
	e.afterCommand(cmdLine, res.ExitCode)
}

// runLine executes one submitted command line and fires the post-command
// objective hook.
func (e *Engine) runLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	e.processing = true
	res := e.Exec.Run(line, e.Ctx)
	e.processing = false
	if res.Output != "" {
		e.write(strings.ReplaceAll(res.Output, "\n", "\r\n") + "\r\n")
	}
	e.afterCommand(line, res.ExitCode)
}

// afterCommand runs the objective hook: re-evaluate the installed
// evaluator, mark any newly satisfied objectives complete, and announce
// level completion once every objective for the current level is done.
func (e *Engine) afterCommand(line string, exitCode int) {
	e.emit("command", map[string]any{"raw": line, "exit_code": exitCode})

	eval := shellcmd.CurrentEvaluator()
	if eval == nil {
		return
	}
	satisfied := eval.Evaluate(e.Ctx)
	c := e.Ctx.Challenge
	newly := 0
	for _, id := range satisfied {
		if !c.CompletedObjectives[id] {
			c.CompletedObjectives[id] = true
			newly++
			e.write(fmt.Sprintf("\x1b[32m✓ objective complete: %s\x1b[0m\r\n", id))
			e.emit("objective_complete", map[string]any{"objective_id": id})
		}
	}
	if newly == 0 {
		return
	}
	all := eval.Objectives(c.Level)
	done := true
	for _, o := range all {
		if !c.CompletedObjectives[o.ID] {
			done = false
			break
		}
	}
	if done && len(all) > 0 {
		e.write(fmt.Sprintf("\x1b[36mlevel %d complete. run `next-level` to continue.\x1b[0m\r\n", c.Level))
	}
}
