// Package shellcmd implements the command registry and the ~40 simulated
// tool handlers that execute against a CommandContext and its VFS.
package shellcmd

import (
	"time"

	"github.com/assessments/shellcore/internal/vfs"
)

// Challenge holds the assessment progress sub-record: current level,
// seniority rank, completed objectives, hints used, and timestamps. The
// semantic rule catalogue that decides which commands complete which
// objective is supplied by the host as an ObjectiveEvaluator (see
// internal/catalogue) — this struct only tracks state, never rules.
type Challenge struct {
	Level             int
	SeniorityRank     string
	CompletedObjectives map[string]bool
	HintsUsed         map[string]bool
	StartedAt         time.Time
	LastActivityAt    time.Time
}

func NewChallenge() *Challenge {
	return &Challenge{
		Level:               1,
		CompletedObjectives: map[string]bool{},
		HintsUsed:           map[string]bool{},
		StartedAt:            time.Now(),
		LastActivityAt:       time.Now(),
	}
}

// SimState holds the process-wide-in-the-original-source git/docker
// simulation state, relocated per §9's design note into a struct owned by
// a single engine instance so concurrent sessions never share it.
type SimState struct {
	Git    *GitState
	Docker *DockerState
}

func NewSimState() *SimState {
	return &SimState{
		Git:    NewGitState(),
		Docker: NewDockerState(),
	}
}

// Context is the mutable execution state shared across commands in a
// pipeline and across pipelines within a session (§3's CommandContext).
// The Terminal Engine exclusively owns a Context; handlers receive it by
// pointer for the duration of a single invocation.
type Context struct {
	Cwd     string
	Env     map[string]string
	FS      *vfs.VFS
	LastExitCode int
	User    string
	Hostname string

	Challenge *Challenge
	Sim       *SimState

	OldPwd string

	// History is consulted by the `history` builtin; it is owned by the
	// line editor but exposed read-only here so handlers can render it.
	HistoryFunc func() []string
}

// NewContext builds a Context with the standard environment variables
// initialised per §3.
func NewContext(fs *vfs.VFS, user, hostname, home string) *Context {
	ctx := &Context{
		Cwd:      home,
		OldPwd:   home,
		FS:       fs,
		User:     user,
		Hostname: hostname,
		Challenge: NewChallenge(),
		Sim:       NewSimState(),
		Env: map[string]string{
			"HOME":     home,
			"USER":     user,
			"PATH":     "/usr/local/bin:/usr/bin:/bin",
			"SHELL":    "/bin/bash",
			"TERM":     "xterm-256color",
			"NODE_ENV": "development",
			"PWD":      home,
		},
	}
	return ctx
}
