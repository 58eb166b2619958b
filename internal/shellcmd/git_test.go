package shellcmd

import (
	"strings"
	"testing"

	"github.com/assessments/shellcore/internal/shparse"
)

func TestGitStatusCleanTree(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdGit(shparse.ParseCommand("git status"), ctx, "")
	if !strings.Contains(res.Output, "nothing to commit") {
		t.Errorf("unexpected status: %q", res.Output)
	}
}

func TestGitAddStageThenCommit(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Sim.Git.Untracked = []string{"main.go"}
	cmdGit(shparse.ParseCommand("git add main.go"), ctx, "")
	if len(ctx.Sim.Git.Staged) != 1 {
		t.Fatalf("expected 1 staged file, got %+v", ctx.Sim.Git.Staged)
	}
	res := cmdGit(shparse.ParseCommand(`git commit -m "add main"`), ctx, "")
	if res.ExitCode != 0 {
		t.Fatalf("commit failed: %+v", res)
	}
	if len(ctx.Sim.Git.Staged) != 0 {
		t.Errorf("staged files should be cleared after commit")
	}
}

func TestGitCommitWithoutMessageFails(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Sim.Git.Staged = []string{"x"}
	res := cmdGit(shparse.ParseCommand("git commit"), ctx, "")
	if res.ExitCode == 0 {
		t.Errorf("expected failure committing without -m")
	}
}

func TestGitCheckoutNewBranch(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdGit(shparse.ParseCommand("git checkout -b feature/x"), ctx, "")
	if res.ExitCode != 0 {
		t.Fatalf("checkout -b failed: %+v", res)
	}
	if ctx.Sim.Git.Branch != "feature/x" {
		t.Errorf("expected branch feature/x, got %q", ctx.Sim.Git.Branch)
	}
}

func TestGitCheckoutUnknownBranchFails(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdGit(shparse.ParseCommand("git checkout nope"), ctx, "")
	if res.ExitCode == 0 {
		t.Errorf("expected failure checking out unknown branch")
	}
}

func TestGitLogOnelineListsCommits(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdGit(shparse.ParseCommand("git log --oneline"), ctx, "")
	if len(strings.Split(res.Output, "\n")) != len(ctx.Sim.Git.Commits) {
		t.Errorf("expected one line per commit, got %q", res.Output)
	}
}
