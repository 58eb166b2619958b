// Package vfs implements the in-memory virtual filesystem the shell
// executes against: a tree of files, directories, and symlinks with
// POSIX-like path resolution, mirroring the subset of semantics a real
// filesystem exposes to coreutils-style handlers.
package vfs

import (
	"errors"
	"strings"
	"time"
)

// Kind discriminates the three node types the tree can hold.
type Kind int

const (
	File Kind = iota
	Directory
	Symlink
)

// maxSymlinkHops bounds resolution so a cyclic symlink degrades to a
// bounded traversal instead of an infinite loop.
const maxSymlinkHops = 20

var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrExists        = errors.New("file exists")
	ErrNotDir        = errors.New("not a directory")
	ErrIsDir         = errors.New("is a directory")
	ErrNotEmpty      = errors.New("directory not empty")
	ErrRoot          = errors.New("cannot remove root")
	ErrSymlinkLoop   = errors.New("too many levels of symbolic links")
	ErrInvalidParent = errors.New("parent directory does not exist")
)

// Node is a single entry in the VFS tree.
type Node struct {
	Name        string
	Kind        Kind
	Content     string // file contents only
	Target      string // symlink target path only
	Permissions string // display-only, e.g. "drwxr-xr-x"
	Modified    time.Time

	Children map[string]*Node // directory children, nil otherwise
}

func newFile(name, content string) *Node {
	return &Node{Name: name, Kind: File, Content: content, Permissions: "-rw-r--r--", Modified: time.Now()}
}

func newDir(name string) *Node {
	return &Node{Name: name, Kind: Directory, Permissions: "drwxr-xr-x", Modified: time.Now(), Children: map[string]*Node{}}
}

func newSymlink(name, target string) *Node {
	return &Node{Name: name, Kind: Symlink, Target: target, Permissions: "lrwxrwxrwx", Modified: time.Now()}
}

// VFS owns the root node of the tree.
type VFS struct {
	root *Node
}

// New creates an empty VFS with a single root directory.
func New() *VFS {
	return &VFS{root: newDir("/")}
}

// Root exposes the root node read-only for callers that need to walk the
// raw tree directly (tree, snapshot).
func (v *VFS) Root() *Node {
	return v.root
}

// splitPath splits a normalised absolute path into its non-empty segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// ResolvePath performs pure syntactic normalisation: ".", "..", repeated
// slashes, and a leading "/" are collapsed. Relative paths are resolved
// against cwd. "~" is not expanded: the VFS itself has no notion of HOME,
// and the shell command handlers do not expand it before calling in, so a
// path beginning with "~" is treated as an ordinary relative name.
func ResolvePath(path, cwd string) string {
	if path == "" {
		path = "."
	}
	if !strings.HasPrefix(path, "/") {
		path = cwd + "/" + path
	}
	parts := strings.Split(path, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	return "/" + strings.Join(stack, "/")
}

// Resolve walks path (relative to cwd), following symlinks encountered
// anywhere along the walk, and returns the final target node. A dangling
// target or a cycle deeper than maxSymlinkHops is an error.
func (v *VFS) Resolve(path, cwd string) (*Node, error) {
	abs := ResolvePath(path, cwd)
	return v.resolveAbs(abs, 0)
}

func (v *VFS) resolveAbs(abs string, hops int) (*Node, error) {
	parts := splitPath(abs)
	node := v.root
	dir := "/"
	for _, part := range parts {
		if node.Kind != Directory {
			return nil, ErrNotDir
		}
		child, ok := node.Children[part]
		if !ok {
			return nil, ErrNotFound
		}
		if child.Kind == Symlink {
			if hops >= maxSymlinkHops {
				return nil, ErrSymlinkLoop
			}
			targetAbs := ResolvePath(child.Target, dir)
			resolved, err := v.resolveAbs(targetAbs, hops+1)
			if err != nil {
				return nil, err
			}
			child = resolved
		}
		node = child
		dir = ResolvePath(part, dir)
	}
	return node, nil
}

// resolveNoFollow resolves path but returns the symlink node itself rather
// than its target. It has no callers: Rm looks the final path component up
// in its parent directly.
func (v *VFS) resolveNoFollow(path, cwd string) (*Node, error) {
	abs := ResolvePath(path, cwd)
	parts := splitPath(abs)
	if len(parts) == 0 {
		return v.root, nil
	}
	parentParts := parts[:len(parts)-1]
	name := parts[len(parts)-1]
	parentAbs := "/" + strings.Join(parentParts, "/")
	parent, err := v.resolveAbs(parentAbs, 0)
	if err != nil {
		return nil, err
	}
	if parent.Kind != Directory {
		return nil, ErrNotDir
	}
	child, ok := parent.Children[name]
	if !ok {
		return nil, ErrNotFound
	}
	return child, nil
}

// resolveParent resolves the directory that should contain the final path
// component, without requiring the component itself to exist.
func (v *VFS) resolveParent(abs string) (*Node, string, error) {
	parts := splitPath(abs)
	if len(parts) == 0 {
		return nil, "", ErrInvalidParent
	}
	parentAbs := "/" + strings.Join(parts[:len(parts)-1], "/")
	parent, err := v.resolveAbs(parentAbs, 0)
	if err != nil {
		return nil, "", err
	}
	if parent.Kind != Directory {
		return nil, "", ErrNotDir
	}
	return parent, parts[len(parts)-1], nil
}
