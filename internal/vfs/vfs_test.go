package vfs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	v := New()
	if err := v.WriteFile("/tmp/x", "/", "hi\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := v.ReadFile("/tmp/x", "/")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "hi\n" {
		t.Errorf("got %q, want %q", got, "hi\n")
	}
	if !v.Exists("/tmp/x", "/") {
		t.Error("expected file to exist")
	}
}

func TestRmRemovesNode(t *testing.T) {
	v := New()
	v.Mkdir("/tmp", "/", false)
	v.WriteFile("/tmp/x", "/", "data")
	if err := v.Rm("/tmp/x", "/", false); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if v.Exists("/tmp/x", "/") {
		t.Error("expected file to be removed")
	}
}

func TestRmRefusesRoot(t *testing.T) {
	v := New()
	if err := v.Rm("/", "/", true); err != ErrRoot {
		t.Errorf("got %v, want ErrRoot", err)
	}
}

func TestRmRefusesNonEmptyDirWithoutRecursive(t *testing.T) {
	v := New()
	v.Mkdir("/a", "/", false)
	v.WriteFile("/a/b", "/", "x")
	if err := v.Rm("/a", "/", false); err != ErrNotEmpty {
		t.Errorf("got %v, want ErrNotEmpty", err)
	}
	if err := v.Rm("/a", "/", true); err != nil {
		t.Errorf("recursive rm failed: %v", err)
	}
}

func TestMkdirPRecursiveIsIdempotent(t *testing.T) {
	v := New()
	if err := v.Mkdir("/a/b/c", "/", true); err != nil {
		t.Fatalf("mkdir -p: %v", err)
	}
	if !v.IsDirectory("/a/b/c", "/") {
		t.Fatal("expected /a/b/c to exist as a directory")
	}
	before := v.ToSnapshot()
	if err := v.Mkdir("/a/b/c", "/", true); err != nil {
		t.Fatalf("second mkdir -p: %v", err)
	}
	after := v.ToSnapshot()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("tree changed on idempotent mkdir -p: %s", diff)
	}
}

func TestMkdirNonRecursiveFailsOnMissingParent(t *testing.T) {
	v := New()
	if err := v.Mkdir("/a/b", "/", false); err != ErrInvalidParent && err != ErrNotFound {
		t.Errorf("got %v, want a not-found-ish error", err)
	}
}

func TestResolvePathDotDot(t *testing.T) {
	got := ResolvePath("../b", "/a/c")
	if got != "/a/b" {
		t.Errorf("got %q, want /a/b", got)
	}
}

func TestSymlinkTransparentRead(t *testing.T) {
	v := New()
	v.Mkdir("/real", "/", false)
	v.WriteFile("/real/file", "/", "content")
	v.Symlink("/link", "/", "/real/file")
	got, err := v.ReadFile("/link", "/")
	if err != nil {
		t.Fatalf("read through symlink: %v", err)
	}
	if got != "content" {
		t.Errorf("got %q, want content", got)
	}
}

func TestSymlinkCycleBounded(t *testing.T) {
	v := New()
	v.Symlink("/a", "/", "/b")
	v.Symlink("/b", "/", "/a")
	_, err := v.Resolve("/a", "/")
	if err != ErrSymlinkLoop {
		t.Errorf("got %v, want ErrSymlinkLoop", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	v := New()
	v.Mkdir("/a/b", "/", true)
	v.WriteFile("/a/b/f.txt", "/", "hello")
	v.Symlink("/a/link", "/", "/a/b/f.txt")

	snap := v.ToSnapshot()
	v2 := FromSnapshot(snap)
	snap2 := v2.ToSnapshot()

	if diff := cmp.Diff(snap, snap2); diff != "" {
		t.Errorf("snapshot round trip mismatch: %s", diff)
	}
}

func TestListDirSortedLexicographically(t *testing.T) {
	v := New()
	v.Mkdir("/d", "/", false)
	v.WriteFile("/d/zebra", "/", "")
	v.WriteFile("/d/apple", "/", "")
	v.WriteFile("/d/mango", "/", "")

	nodes, err := v.ListDir("/d", "/")
	if err != nil {
		t.Fatalf("list dir: %v", err)
	}
	var names []string
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	want := []string{"apple", "mango", "zebra"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unsorted listing: %s", diff)
	}
}

func TestFindMatchesGlobOnName(t *testing.T) {
	v := New()
	v.Mkdir("/src", "/", true)
	v.WriteFile("/src/main.go", "/", "")
	v.WriteFile("/src/main_test.go", "/", "")
	v.WriteFile("/src/readme.md", "/", "")

	got, err := v.Find("/src", "/", "*.go")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d matches, want 2: %v", len(got), got)
	}
}

func TestGrepReturnsLineNumbers(t *testing.T) {
	v := New()
	v.WriteFile("/f.txt", "/", "alpha\nbeta\nalpha again\n")
	matches, err := v.Grep("alpha", "/f.txt", "/", false, false)
	if err != nil {
		t.Fatalf("grep: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].LineNumber != 1 || matches[1].LineNumber != 3 {
		t.Errorf("unexpected line numbers: %+v", matches)
	}
}

func TestGrepNonRecursiveOnDirectoryIsEmpty(t *testing.T) {
	v := New()
	v.Mkdir("/d", "/", false)
	v.WriteFile("/d/f", "/", "alpha")
	matches, err := v.Grep("alpha", "/d", "/", false, false)
	if err != nil {
		t.Fatalf("grep: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches on non-recursive dir grep, got %d", len(matches))
	}
}

func TestCompletePathAppendsSlashForDirectories(t *testing.T) {
	v := New()
	v.Mkdir("/proj/src", "/", true)
	v.WriteFile("/proj/readme.md", "/", "")

	got := v.CompletePath("/proj/s", "/")
	if len(got) != 1 || got[0] != "src/" {
		t.Errorf("got %v, want [src/]", got)
	}
}
