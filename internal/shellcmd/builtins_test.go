package shellcmd

import (
	"strings"
	"testing"

	"github.com/assessments/shellcore/internal/shparse"
)

func TestEchoExpandsEnvVar(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Env["FOO"] = "bar"
	res := cmdEcho(shparse.ParseCommand("echo $FOO ${FOO}"), ctx, "")
	if res.Output != "bar bar" {
		t.Errorf("got %q", res.Output)
	}
}

func TestEchoNoNewlineFlag(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdEcho(shparse.ParseCommand("echo -n hi"), ctx, "")
	if res.Output != "hi" {
		t.Errorf("got %q", res.Output)
	}
}

func TestExportSetsVariable(t *testing.T) {
	ctx := newTestContext(t)
	cmdExport(shparse.ParseCommand("export FOO=bar"), ctx, "")
	if ctx.Env["FOO"] != "bar" {
		t.Errorf("export did not set FOO")
	}
}

func TestWhichKnownCommand(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdWhich(shparse.ParseCommand("which git"), ctx, "")
	if res.Output != "/usr/bin/git" {
		t.Errorf("got %q", res.Output)
	}
}

func TestWhichUnknownCommandFails(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdWhich(shparse.ParseCommand("which zzz"), ctx, "")
	if res.ExitCode == 0 {
		t.Errorf("expected failure for unknown command")
	}
}

func TestSortNumeric(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdSort(shparse.ParseCommand("sort -n"), ctx, "10\n2\n1\n")
	if res.Output != "1\n2\n10" {
		t.Errorf("got %q", res.Output)
	}
}

func TestUniqDedupesAdjacent(t *testing.T) {
	ctx := newTestContext(t)
	res := cmdUniq(shparse.ParseCommand("uniq"), ctx, "a\na\nb\na\n")
	if res.Output != "a\nb\na" {
		t.Errorf("got %q", res.Output)
	}
}

func TestHistoryRendersNumberedEntries(t *testing.T) {
	ctx := newTestContext(t)
	ctx.HistoryFunc = func() []string { return []string{"pwd", "ls"} }
	res := cmdHistory(shparse.ParseCommand("history"), ctx, "")
	if !strings.Contains(res.Output, "1  pwd") || !strings.Contains(res.Output, "2  ls") {
		t.Errorf("unexpected history output: %q", res.Output)
	}
}
