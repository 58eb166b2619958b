// Package executor walks a parsed pipeline, applying operator semantics,
// stdin chaining between stages, and output redirection, per §4.4.
package executor

import (
	"fmt"
	"strings"

	"github.com/assessments/shellcore/internal/shellcmd"
	"github.com/assessments/shellcore/internal/shparse"
)

// Result is what running a whole pipeline (or a single `;`-joined command
// run) yields: the text to write to the terminal and the exit code of the
// last command actually executed.
type Result struct {
	Output   string
	ExitCode int
}

// Executor owns the command registry and runs pipelines against a
// shellcmd.Context.
type Executor struct {
	Registry *shellcmd.Registry
}

func New(registry *shellcmd.Registry) *Executor {
	return &Executor{Registry: registry}
}

// Run parses raw into a pipeline via shparse and executes it against ctx,
// returning the terminal-bound output and the pipeline's final exit code.
func (e *Executor) Run(raw string, ctx *shellcmd.Context) Result {
	segments := shparse.SplitPipeline(raw)
	if len(segments) == 0 {
		return Result{}
	}

	var terminalOutput strings.Builder
	stdin := ""
	lastExit := 0
	skipping := false

	for i, seg := range segments {
		if i > 0 {
			switch seg.Operator {
			case shparse.OpAnd:
				if !skipping {
					skipping = lastExit != 0
				}
			case shparse.OpOr:
				if !skipping {
					skipping = lastExit == 0
				}
			case shparse.OpSeq:
				skipping = false
			case shparse.OpPipe:
				// Same && / || chain as the stage before it: inherits
				// whatever skip state that stage is in.
			}
		}
		if skipping {
			continue
		}

		text := strings.TrimSpace(seg.Text)
		if text == "" {
			// Empty command (trailing/consecutive operator): no-op, exit 0.
			lastExit = 0
			stdin = ""
			continue
		}

		if name, value, isAssign := parseBareAssignment(text); isAssign {
			ctx.Env[name] = value
			lastExit = 0
			ctx.LastExitCode = 0
			stdin = ""
			continue
		}

		cmd := shparse.ParseCommand(text)
		isLastStage := i == len(segments)-1 || segments[i+1].Operator != shparse.OpPipe

		res := e.runOne(cmd, ctx, stdin)
		lastExit = res.ExitCode
		ctx.LastExitCode = res.ExitCode

		if cmd.OutputRedirect != nil {
			content := res.Output
			if !strings.HasSuffix(content, "\n") {
				content += "\n"
			}
			if cmd.OutputRedirect.Append {
				ctx.FS.AppendFile(cmd.OutputRedirect.Path, ctx.Cwd, content)
			} else {
				ctx.FS.WriteFile(cmd.OutputRedirect.Path, ctx.Cwd, content)
			}
			stdin = ""
			continue
		}

		if isLastStage {
			if terminalOutput.Len() > 0 {
				terminalOutput.WriteString("\n")
			}
			terminalOutput.WriteString(res.Output)
			stdin = ""
		} else {
			// Piped to the next stage; not written to the terminal.
			stdin = res.Output
		}
	}

	return Result{Output: terminalOutput.String(), ExitCode: lastExit}
}

// runOne dispatches a single command, recovering from any handler panic
// into the canonical internal-error result per §7.
func (e *Executor) runOne(cmd shparse.Command, ctx *shellcmd.Context, stdin string) (res shellcmd.Result) {
	if cmd.Name == "" {
		return shellcmd.Result{ExitCode: 0}
	}
	defer func() {
		if r := recover(); r != nil {
			res = shellcmd.Result{Output: fmt.Sprintf("%s: internal error", cmd.Name), ExitCode: 1}
		}
	}()
	h, found := e.Registry.Lookup(cmd.Name)
	if !found {
		return shellcmd.Result{Output: fmt.Sprintf("%s: command not found", cmd.Name), ExitCode: 127}
	}
	return h(cmd, ctx, stdin)
}

// parseBareAssignment recognises `VAR=value` used bare at the command
// position (§4.3's tie-break), distinct from `export VAR=value`.
func parseBareAssignment(text string) (name, value string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return "", "", false
	}
	eq := strings.IndexByte(fields[0], '=')
	if eq <= 0 {
		return "", "", false
	}
	name = fields[0][:eq]
	for _, r := range name {
		if !(r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return "", "", false
		}
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "", "", false
	}
	return name, fields[0][eq+1:], true
}
