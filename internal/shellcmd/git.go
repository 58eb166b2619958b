package shellcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/assessments/shellcore/internal/shparse"
)

// GitCommit is one canned log entry.
type GitCommit struct {
	Hash    string
	Author  string
	Date    time.Time
	Message string
}

// GitState is the per-session simulated git repository: enough state to
// make status/log/branch/add/commit/diff feel coherent across a single
// assessment run without touching any real VCS. Owned by the engine's
// SimState, never process-global (§9).
type GitState struct {
	Branch     string
	Branches   []string
	Staged     []string
	Modified   []string
	Untracked  []string
	Commits    []GitCommit
	RemoteURL  string
	Initialized bool
	Stashed    []string
}

func NewGitState() *GitState {
	now := time.Now()
	return &GitState{
		Branch:      "main",
		Branches:    []string{"main"},
		Initialized: true,
		RemoteURL:   "git@github.com:fleetcore/fleetcore-api.git",
		Commits: []GitCommit{
			{Hash: "a3f9c1d", Author: "jordan", Date: now.Add(-96 * time.Hour), Message: "Add health check endpoint"},
			{Hash: "7b2e8aa", Author: "priya", Date: now.Add(-72 * time.Hour), Message: "Fix race in connection pool"},
			{Hash: "1d4f0e2", Author: "jordan", Date: now.Add(-48 * time.Hour), Message: "Bump dependency versions"},
			{Hash: "9c6a77b", Author: "sam", Date: now.Add(-24 * time.Hour), Message: "Refactor request logging middleware"},
			{Hash: "e0114aa", Author: "priya", Date: now.Add(-2 * time.Hour), Message: "Initial commit"},
		},
	}
}

func (r *Registry) registerGit() {
	r.Register("git", cmdGit)
}

func cmdGit(cmd shparse.Command, ctx *Context, stdin string) Result {
	if cmd.FlagBool("version") {
		return ok("git version 2.43.0")
	}
	if len(cmd.Args) == 0 {
		return usage("usage: git <command> [<args>]")
	}
	g := ctx.Sim.Git
	sub := cmd.Args[0]
	rest := cmd.Args[1:]
	switch sub {
	case "status":
		return gitStatus(g, ctx)
	case "log":
		return gitLog(g, cmd)
	case "branch":
		return gitBranch(g, rest)
	case "checkout":
		return gitCheckout(g, cmd, rest)
	case "add":
		return gitAdd(g, rest)
	case "commit":
		return gitCommit(g, cmd, rest)
	case "diff":
		return gitDiff(g, rest)
	case "remote":
		return gitRemote(g, rest)
	case "init":
		g.Initialized = true
		return ok(fmt.Sprintf("Initialized empty Git repository in %s/.git/", ctx.Cwd))
	case "stash":
		return gitStash(g, rest)
	case "pull":
		return ok(fmt.Sprintf("From %s\n * branch            %s -> FETCH_HEAD\nAlready up to date.", g.RemoteURL, g.Branch))
	case "push":
		return ok(fmt.Sprintf("To %s\n   %s..%s  %s -> %s", g.RemoteURL, g.Commits[len(g.Commits)-1].Hash, g.Commits[len(g.Commits)-1].Hash, g.Branch, g.Branch))
	default:
		return fail(fmt.Sprintf("git: '%s' is not a git command. See 'git --help'.", sub))
	}
}

func gitStatus(g *GitState, ctx *Context) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "On branch %s\n", g.Branch)
	if len(g.Staged) == 0 && len(g.Modified) == 0 && len(g.Untracked) == 0 {
		b.WriteString("nothing to commit, working tree clean")
		return ok(b.String())
	}
	if len(g.Staged) > 0 {
		b.WriteString("Changes to be committed:\n")
		for _, f := range g.Staged {
			fmt.Fprintf(&b, "\t\x1b[32mnew file:   %s\x1b[0m\n", f)
		}
	}
	if len(g.Modified) > 0 {
		b.WriteString("Changes not staged for commit:\n")
		for _, f := range g.Modified {
			fmt.Fprintf(&b, "\t\x1b[31mmodified:   %s\x1b[0m\n", f)
		}
	}
	if len(g.Untracked) > 0 {
		b.WriteString("Untracked files:\n")
		for _, f := range g.Untracked {
			fmt.Fprintf(&b, "\t\x1b[31m%s\x1b[0m\n", f)
		}
	}
	return ok(strings.TrimRight(b.String(), "\n"))
}

func gitLog(g *GitState, cmd shparse.Command) Result {
	oneline := cmd.FlagBool("oneline")
	var lines []string
	for i := len(g.Commits) - 1; i >= 0; i-- {
		c := g.Commits[i]
		if oneline {
			lines = append(lines, fmt.Sprintf("%s %s", c.Hash, c.Message))
			continue
		}
		lines = append(lines, fmt.Sprintf("commit %s\nAuthor: %s\nDate:   %s\n\n    %s\n",
			c.Hash, c.Author, c.Date.Format("Mon Jan 2 15:04:05 2006 -0700"), c.Message))
	}
	return ok(strings.Join(lines, "\n"))
}

func gitBranch(g *GitState, args []string) Result {
	if len(args) == 0 {
		var lines []string
		for _, b := range g.Branches {
			if b == g.Branch {
				lines = append(lines, "* "+b)
			} else {
				lines = append(lines, "  "+b)
			}
		}
		return ok(strings.Join(lines, "\n"))
	}
	name := args[0]
	for _, b := range g.Branches {
		if b == name {
			return fail(fmt.Sprintf("fatal: a branch named '%s' already exists", name))
		}
	}
	g.Branches = append(g.Branches, name)
	return ok("")
}

func gitCheckout(g *GitState, cmd shparse.Command, args []string) Result {
	create := cmd.FlagBool("b")
	name := ""
	for _, a := range args {
		if a == "-b" {
			create = true
			continue
		}
		name = a
	}
	if name == "" {
		return usage("git checkout: missing branch name")
	}
	if create {
		g.Branches = append(g.Branches, name)
		g.Branch = name
		return ok(fmt.Sprintf("Switched to a new branch '%s'", name))
	}
	for _, b := range g.Branches {
		if b == name {
			g.Branch = name
			return ok(fmt.Sprintf("Switched to branch '%s'", name))
		}
	}
	return fail(fmt.Sprintf("error: pathspec '%s' did not match any file(s) known to git", name))
}

func gitAdd(g *GitState, args []string) Result {
	if len(args) == 0 {
		return usage("Nothing specified, nothing added.")
	}
	if len(args) == 1 && args[0] == "." {
		g.Staged = append(g.Staged, g.Modified...)
		g.Staged = append(g.Staged, g.Untracked...)
		g.Modified = nil
		g.Untracked = nil
		return ok("")
	}
	for _, f := range args {
		g.Staged = append(g.Staged, f)
		g.Modified = removeString(g.Modified, f)
		g.Untracked = removeString(g.Untracked, f)
	}
	return ok("")
}

func removeString(list []string, target string) []string {
	var out []string
	for _, s := range list {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// gitCommit takes the message from --message, or, for -m, from the first
// positional argument after the subcommand, since the short-flag coalescer
// in ParseCommand turns -m into a bare boolean and leaves the message as a
// positional argument.
func gitCommit(g *GitState, cmd shparse.Command, args []string) Result {
	msg, hasMsg := cmd.FlagString("message")
	if !hasMsg && cmd.FlagBool("m") && len(args) > 0 {
		msg, hasMsg = args[0], true
	}
	if !hasMsg {
		return fail("Aborting commit due to empty commit message.")
	}
	if len(g.Staged) == 0 {
		return fail("nothing added to commit but untracked files present")
	}
	n := len(g.Staged)
	hash := fmt.Sprintf("%07x", (len(g.Commits)+1)*2654435761)
	g.Commits = append(g.Commits, GitCommit{Hash: hash, Author: "candidate", Date: time.Now(), Message: msg})
	g.Staged = nil
	return ok(fmt.Sprintf("[%s %s] %s\n %d file(s) changed", g.Branch, hash[:7], msg, n))
}

func gitDiff(g *GitState, args []string) Result {
	if len(g.Modified) == 0 && len(g.Staged) == 0 {
		return ok("")
	}
	var b strings.Builder
	for _, f := range g.Modified {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\nindex 0000000..1111111 100644\n--- a/%s\n+++ b/%s\n", f, f, f, f)
	}
	return ok(strings.TrimRight(b.String(), "\n"))
}

func gitRemote(g *GitState, args []string) Result {
	if len(args) > 0 && args[0] == "-v" {
		return ok(fmt.Sprintf("origin\t%s (fetch)\norigin\t%s (push)", g.RemoteURL, g.RemoteURL))
	}
	return ok("origin")
}

func gitStash(g *GitState, args []string) Result {
	if len(args) > 0 && args[0] == "pop" {
		if len(g.Stashed) == 0 {
			return fail("No stash entries found.")
		}
		popped := g.Stashed[len(g.Stashed)-1]
		g.Stashed = g.Stashed[:len(g.Stashed)-1]
		g.Modified = append(g.Modified, popped)
		return ok(fmt.Sprintf("Dropped refs/stash@{0} (%s)", popped))
	}
	if len(g.Modified) == 0 {
		return ok("No local changes to save")
	}
	g.Stashed = append(g.Stashed, g.Modified...)
	g.Modified = nil
	return ok(fmt.Sprintf("Saved working directory and index state WIP on %s", g.Branch))
}
