package vfs

import (
	"regexp"
	"sort"
	"strings"
)

// globToRegexp converts a shell glob (only "*" and "?" are special; every
// other regex metacharacter is escaped) into an anchored regular expression.
func globToRegexp(glob string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Find descends base, matching each node's NAME (not its full path) against
// glob. Directories are included in the results so callers can assert
// directory hits, matching §4.1.
func (v *VFS) Find(base, cwd, glob string) ([]string, error) {
	re, err := globToRegexp(glob)
	if err != nil {
		return nil, err
	}
	root, err := v.Resolve(base, cwd)
	if err != nil {
		return nil, err
	}
	baseAbs := ResolvePath(base, cwd)

	var out []string
	var walk func(node *Node, abs string)
	walk = func(node *Node, abs string) {
		if re.MatchString(node.Name) {
			out = append(out, abs)
		}
		if node.Kind == Directory {
			names := make([]string, 0, len(node.Children))
			for name := range node.Children {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				child := node.Children[name]
				childAbs := abs
				if childAbs == "/" {
					childAbs += name
				} else {
					childAbs += "/" + name
				}
				walk(child, childAbs)
			}
		}
	}
	walk(root, baseAbs)
	return out, nil
}

// GrepMatch is a single matching line.
type GrepMatch struct {
	File       string
	LineNumber int // 1-based
	Line       string
}

// Grep compiles pattern as a regular expression and searches path. A
// directory searched non-recursively yields no matches (not an error).
func (v *VFS) Grep(pattern, path, cwd string, recursive, ignoreCase bool) ([]GrepMatch, error) {
	expr := pattern
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	node, err := v.Resolve(path, cwd)
	if err != nil {
		return nil, err
	}
	abs := ResolvePath(path, cwd)

	var out []GrepMatch
	var walk func(node *Node, abs string, top bool)
	walk = func(node *Node, abs string, top bool) {
		switch node.Kind {
		case File:
			for i, line := range strings.Split(node.Content, "\n") {
				if re.MatchString(line) {
					out = append(out, GrepMatch{File: abs, LineNumber: i + 1, Line: line})
				}
			}
		case Directory:
			if !recursive {
				return
			}
			names := make([]string, 0, len(node.Children))
			for name := range node.Children {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				child := node.Children[name]
				childAbs := abs
				if childAbs == "/" {
					childAbs += name
				} else {
					childAbs += "/" + name
				}
				walk(child, childAbs, false)
			}
		}
	}
	walk(node, abs, true)
	return out, nil
}

// CompletePath returns the sorted set of names in partial's resolved parent
// directory that start with its final path component, with a trailing "/"
// appended for directory names.
func (v *VFS) CompletePath(partial, cwd string) []string {
	dir := cwd
	frag := partial
	if idx := strings.LastIndex(partial, "/"); idx >= 0 {
		dir = ResolvePath(partial[:idx+1], cwd)
		frag = partial[idx+1:]
	}
	node, err := v.Resolve(dir, cwd)
	if err != nil || node.Kind != Directory {
		return nil
	}
	var out []string
	for name, child := range node.Children {
		if strings.HasPrefix(name, frag) {
			if child.Kind == Directory {
				out = append(out, name+"/")
			} else {
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}
