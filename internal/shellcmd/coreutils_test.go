package shellcmd

import (
	"strings"
	"testing"

	"github.com/assessments/shellcore/internal/shparse"
	"github.com/assessments/shellcore/internal/vfs"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	fs := vfs.New()
	if err := fs.Mkdir("/home/candidate", "/", true); err != nil {
		t.Fatalf("setup mkdir: %v", err)
	}
	ctx := NewContext(fs, "candidate", "assessment", "/home/candidate")
	return ctx
}

func TestPwdReturnsCwd(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdPwd(shparse.Command{}, ctx, "")
	if res.Output != "/home/candidate" {
		t.Errorf("got %q", res.Output)
	}
}

func TestCdUpdatesOldPwd(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkdir("/home/candidate/project", ctx.Cwd, false)
	cmd := shparse.ParseCommand("cd project")
	res := cmdCd(cmd, ctx, "")
	if res.ExitCode != 0 {
		t.Fatalf("cd failed: %+v", res)
	}
	if ctx.Cwd != "/home/candidate/project" {
		t.Errorf("got cwd %q", ctx.Cwd)
	}
	if ctx.OldPwd != "/home/candidate" {
		t.Errorf("got oldpwd %q", ctx.OldPwd)
	}

	back := shparse.ParseCommand("cd -")
	res = cmdCd(back, ctx, "")
	if ctx.Cwd != "/home/candidate" {
		t.Errorf("cd - did not restore: %q", ctx.Cwd)
	}
}

func TestCdRejectsFile(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkfile("/home/candidate/file.txt", ctx.Cwd, "hi")
	cmd := shparse.ParseCommand("cd file.txt")
	res := cmdCd(cmd, ctx, "")
	if res.ExitCode == 0 {
		t.Errorf("expected failure cd-ing into a file")
	}
}

func TestMkdirThenLsShowsEntry(t *testing.T) {
	ctx := newTestContext(t)
	cmdMkdir(shparse.ParseCommand("mkdir sub"), ctx, "")
	res := cmdLs(shparse.ParseCommand("ls"), ctx, "")
	if !strings.Contains(res.Output, "sub") {
		t.Errorf("expected sub in ls output, got %q", res.Output)
	}
}

func TestCatMissingFile(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdCat(shparse.ParseCommand("cat missing.txt"), ctx, "")
	if res.ExitCode == 0 {
		t.Errorf("expected failure")
	}
}

func TestCatDirectoryIsError(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkdir("/home/candidate/sub", ctx.Cwd, false)
	res := cmdCat(shparse.ParseCommand("cat sub"), ctx, "")
	if res.ExitCode == 0 || !strings.Contains(res.Output, "Is a directory") {
		t.Errorf("expected directory error, got %+v", res)
	}
}

func TestRmForceSuppressesMissing(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdRm(shparse.ParseCommand("rm -f ghost.txt"), ctx, "")
	if res.ExitCode != 0 {
		t.Errorf("rm -f on missing file should succeed: %+v", res)
	}
}

func TestRmRefusesNonEmptyDirectoryWithoutRecursive(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkdir("/home/candidate/sub", ctx.Cwd, false)
	ctx.FS.Mkfile("/home/candidate/sub/a.txt", ctx.Cwd, "x")
	res := cmdRm(shparse.ParseCommand("rm sub"), ctx, "")
	if res.ExitCode == 0 {
		t.Errorf("expected failure removing non-empty dir without -r")
	}
}

func TestFindMatchesName(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkfile("/home/candidate/report.md", ctx.Cwd, "x")
	ctx.FS.Mkfile("/home/candidate/other.txt", ctx.Cwd, "x")
	res := cmdFind(shparse.ParseCommand("find . --name report.md"), ctx, "")
	if !strings.Contains(res.Output, "report.md") || strings.Contains(res.Output, "other.txt") {
		t.Errorf("unexpected find output: %q", res.Output)
	}
}

func TestGrepFromStdin(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdGrep(shparse.ParseCommand("grep hello"), ctx, "hello world\ngoodbye\n")
	if res.ExitCode != 0 || !strings.Contains(res.Output, "hello world") {
		t.Errorf("unexpected grep result: %+v", res)
	}
}

func TestGrepNoMatchExitsOne(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdGrep(shparse.ParseCommand("grep zzz"), ctx, "hello world\n")
	if res.ExitCode != 1 {
		t.Errorf("expected exit 1, got %d", res.ExitCode)
	}
}

func TestHeadLimitsLines(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkfile("/home/candidate/f.txt", ctx.Cwd, "a\nb\nc\nd\n")
	res := cmdHead(shparse.ParseCommand("head -n 2 f.txt"), ctx, "")
	if res.Output != "a\nb" {
		t.Errorf("got %q", res.Output)
	}
}

func TestTailLimitsLines(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkfile("/home/candidate/f.txt", ctx.Cwd, "a\nb\nc\nd\n")
	res := cmdTail(shparse.ParseCommand("tail -n 2 f.txt"), ctx, "")
	if res.Output != "c\nd" {
		t.Errorf("got %q", res.Output)
	}
}

func TestWcCountsLinesWordsChars(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkfile("/home/candidate/f.txt", ctx.Cwd, "one two\nthree\n")
	res := cmdWc(shparse.ParseCommand("wc f.txt"), ctx, "")
	if !strings.Contains(res.Output, "2") || !strings.Contains(res.Output, "3") {
		t.Errorf("unexpected wc output: %q", res.Output)
	}
}

func TestTreeSummarizesCounts(t *testing.T) {
	ctx := newTestContext(t)
	ctx.FS.Mkdir("/home/candidate/sub", ctx.Cwd, false)
	ctx.FS.Mkfile("/home/candidate/sub/a.txt", ctx.Cwd, "x")
	res := cmdTree(shparse.ParseCommand("tree"), ctx, "")
	if !strings.Contains(res.Output, "1 directories, 1 files") {
		t.Errorf("unexpected tree summary: %q", res.Output)
	}
}
