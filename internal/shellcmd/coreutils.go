package shellcmd

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/assessments/shellcore/internal/shparse"
	"github.com/assessments/shellcore/internal/vfs"
)

func (r *Registry) registerCoreutils() {
	r.Register("pwd", cmdPwd)
	r.Register("cd", cmdCd)
	r.Register("ls", cmdLs)
	r.Register("cat", cmdCat)
	r.Register("mkdir", cmdMkdir)
	r.Register("touch", cmdTouch)
	r.Register("rm", cmdRm)
	r.Register("cp", cmdCp)
	r.Register("mv", cmdMv)
	r.Register("find", cmdFind)
	r.Register("grep", cmdGrep)
	r.Register("head", cmdHead)
	r.Register("tail", cmdTail)
	r.Register("wc", cmdWc)
	r.Register("tree", cmdTree)
}

func cmdPwd(cmd shparse.Command, ctx *Context, stdin string) Result {
	return ok(ctx.Cwd)
}

func cmdCd(cmd shparse.Command, ctx *Context, stdin string) Result {
	target := ctx.Env["HOME"]
	if len(cmd.Args) > 0 {
		target = cmd.Args[0]
	}
	if target == "-" {
		target = ctx.OldPwd
	}
	abs := vfs.ResolvePath(target, ctx.Cwd)
	node, err := ctx.FS.Resolve(abs, ctx.Cwd)
	if err != nil {
		return fail(fmt.Sprintf("cd: %s: no such file or directory", target))
	}
	if node.Kind != vfs.Directory {
		return fail(fmt.Sprintf("cd: %s: not a directory", target))
	}
	ctx.OldPwd = ctx.Cwd
	ctx.Cwd = abs
	ctx.Env["PWD"] = abs
	return ok("")
}

func cmdLs(cmd shparse.Command, ctx *Context, stdin string) Result {
	long := cmd.FlagBool("l") || cmd.FlagBool("la")
	all := cmd.FlagBool("a") || cmd.FlagBool("la")

	target := ctx.Cwd
	if len(cmd.Args) > 0 {
		target = cmd.Args[0]
	}
	node, err := ctx.FS.Resolve(target, ctx.Cwd)
	if err != nil {
		return Result{Output: fmt.Sprintf("ls: cannot access '%s': No such file or directory", target), ExitCode: 2}
	}
	if node.Kind != vfs.Directory {
		if long {
			return ok(formatLongRow(node))
		}
		return ok(colorizeName(node))
	}
	children, err := ctx.FS.ListDir(target, ctx.Cwd)
	if err != nil {
		return Result{Output: fmt.Sprintf("ls: cannot access '%s': No such file or directory", target), ExitCode: 2}
	}
	if all {
		children = append([]*vfsNode{dotEntry(".")}, children...)
	}
	var filtered []*vfsNode
	for _, c := range children {
		if !all && strings.HasPrefix(c.Name, ".") {
			continue
		}
		filtered = append(filtered, c)
	}
	if long {
		var lines []string
		for _, c := range filtered {
			lines = append(lines, formatLongRow(c))
		}
		return ok(strings.Join(lines, "\n"))
	}
	var names []string
	for _, c := range filtered {
		names = append(names, colorizeName(c))
	}
	return ok(strings.Join(names, "  "))
}

type vfsNode = vfs.Node

func dotEntry(name string) *vfsNode {
	return &vfsNode{Name: name, Kind: vfs.Directory, Permissions: "drwxr-xr-x"}
}

func colorizeName(n *vfsNode) string {
	switch n.Kind {
	case vfs.Directory:
		return "\x1b[34;1m" + n.Name + "\x1b[0m"
	case vfs.Symlink:
		return "\x1b[36;1m" + n.Name + "\x1b[0m"
	default:
		if strings.HasSuffix(n.Name, ".sh") {
			return "\x1b[32;1m" + n.Name + "\x1b[0m"
		}
		return n.Name
	}
}

func formatLongRow(n *vfsNode) string {
	size := len(n.Content)
	name := colorizeName(n)
	if n.Kind == vfs.Symlink {
		name = fmt.Sprintf("%s -> %s", name, n.Target)
	}
	return fmt.Sprintf("%-10s %3d %-8s %-8s %6d %s %s", n.Permissions, 1, "candidate", "candidate", size, n.Modified.Format("Jan _2 15:04"), name)
}

func cmdCat(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return ok(stdin)
	}
	var parts []string
	for _, path := range cmd.Args {
		node, err := ctx.FS.Resolve(path, ctx.Cwd)
		if err != nil {
			return fail(fmt.Sprintf("cat: %s: No such file or directory", path))
		}
		if node.Kind == vfs.Directory {
			return fail(fmt.Sprintf("cat: %s: Is a directory", path))
		}
		content, err := ctx.FS.ReadFile(path, ctx.Cwd)
		if err != nil {
			return fail(fmt.Sprintf("cat: %s: %v", path, err))
		}
		parts = append(parts, content)
	}
	return ok(strings.Join(parts, ""))
}

func cmdMkdir(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("mkdir: missing operand")
	}
	recursive := cmd.FlagBool("p")
	for _, path := range cmd.Args {
		if err := ctx.FS.Mkdir(path, ctx.Cwd, recursive); err != nil {
			return fail(fmt.Sprintf("mkdir: cannot create directory '%s': %v", path, err))
		}
	}
	return ok("")
}

func cmdTouch(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("touch: missing operand")
	}
	for _, path := range cmd.Args {
		if !ctx.FS.Exists(path, ctx.Cwd) {
			if err := ctx.FS.Mkfile(path, ctx.Cwd, ""); err != nil {
				return fail(fmt.Sprintf("touch: cannot touch '%s': %v", path, err))
			}
		} else {
			ctx.FS.Mkfile(path, ctx.Cwd, "")
		}
	}
	return ok("")
}

func cmdRm(cmd shparse.Command, ctx *Context, stdin string) Result {
	recursive := cmd.FlagBool("r") || cmd.FlagBool("R")
	force := cmd.FlagBool("f")
	if len(cmd.Args) == 0 {
		if force {
			return ok("")
		}
		return usage("rm: missing operand")
	}
	for _, path := range cmd.Args {
		if err := ctx.FS.Rm(path, ctx.Cwd, recursive); err != nil {
			if force {
				continue
			}
			return fail(fmt.Sprintf("rm: cannot remove '%s': %v", path, err))
		}
	}
	return ok("")
}

func cmdCp(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) < 2 {
		return usage("cp: missing destination file operand")
	}
	src, dst := cmd.Args[0], cmd.Args[1]
	if err := ctx.FS.Cp(src, dst, ctx.Cwd); err != nil {
		return fail(fmt.Sprintf("cp: cannot stat '%s': %v", src, err))
	}
	return ok("")
}

func cmdMv(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) < 2 {
		return usage("mv: missing destination file operand")
	}
	src, dst := cmd.Args[0], cmd.Args[1]
	if err := ctx.FS.Mv(src, dst, ctx.Cwd); err != nil {
		return fail(fmt.Sprintf("mv: cannot stat '%s': %v", src, err))
	}
	return ok("")
}

func cmdFind(cmd shparse.Command, ctx *Context, stdin string) Result {
	base := "."
	if len(cmd.Args) > 0 {
		base = cmd.Args[0]
	}
	glob := "*"
	if v, ok := cmd.FlagString("name"); ok {
		glob = v
	}
	matches, err := ctx.FS.Find(base, ctx.Cwd, glob)
	if err != nil {
		return fail(fmt.Sprintf("find: %v", err))
	}
	sort.Strings(matches)
	return ok(strings.Join(matches, "\n"))
}

func cmdGrep(cmd shparse.Command, ctx *Context, stdin string) Result {
	recursive := cmd.FlagBool("r")
	ignoreCase := cmd.FlagBool("i")
	if len(cmd.Args) == 0 {
		return usage("usage: grep [-ri] PATTERN [FILE...]")
	}
	pattern := cmd.Args[0]
	paths := cmd.Args[1:]
	multiFile := len(paths) > 1 || recursive

	if len(paths) == 0 {
		if stdin == "" {
			return okCode("", 1)
		}
		var lines []string
		for i, line := range strings.Split(stdin, "\n") {
			matched, err := grepLineMatches(pattern, line, ignoreCase)
			if err != nil {
				return usage(fmt.Sprintf("grep: %v", err))
			}
			if matched {
				lines = append(lines, fmt.Sprintf("%d:%s", i+1, line))
			}
		}
		if len(lines) == 0 {
			return okCode("", 1)
		}
		return ok(strings.Join(lines, "\n"))
	}

	var out []string
	for _, path := range paths {
		matches, err := ctx.FS.Grep(pattern, path, ctx.Cwd, recursive, ignoreCase)
		if err != nil {
			return usage(fmt.Sprintf("grep: %v", err))
		}
		for _, m := range matches {
			if multiFile {
				out = append(out, fmt.Sprintf("\x1b[35m%s\x1b[0m:\x1b[32m%d\x1b[0m:%s", m.File, m.LineNumber, m.Line))
			} else {
				out = append(out, m.Line)
			}
		}
	}
	if len(out) == 0 {
		return okCode("", 1)
	}
	return ok(strings.Join(out, "\n"))
}

func grepLineMatches(pattern, line string, ignoreCase bool) (bool, error) {
	expr := pattern
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return false, err
	}
	return re.MatchString(line), nil
}

func cmdHead(cmd shparse.Command, ctx *Context, stdin string) Result {
	n := flagCount(cmd, "n", 10)
	lines, code, errOut := linesFromFileOrStdin(cmd, ctx, stdin)
	if errOut != "" {
		return Result{Output: errOut, ExitCode: code}
	}
	if n > len(lines) {
		n = len(lines)
	}
	return ok(strings.Join(lines[:n], "\n"))
}

func cmdTail(cmd shparse.Command, ctx *Context, stdin string) Result {
	n := flagCount(cmd, "n", 10)
	lines, code, errOut := linesFromFileOrStdin(cmd, ctx, stdin)
	if errOut != "" {
		return Result{Output: errOut, ExitCode: code}
	}
	if n > len(lines) {
		n = len(lines)
	}
	return ok(strings.Join(lines[len(lines)-n:], "\n"))
}

// flagCount extracts `-n N` from raw_args since the short-flag coalescer
// would otherwise collapse it to a bare boolean, per §4.2's note that
// numeric short-flag values are read from RawArgs.
func flagCount(cmd shparse.Command, flag string, def int) int {
	fields := strings.Fields(cmd.RawArgs)
	for i, f := range fields {
		if f == "-"+flag && i+1 < len(fields) {
			if v, err := strconv.Atoi(fields[i+1]); err == nil {
				return v
			}
		}
		if strings.HasPrefix(f, "-"+flag) && len(f) > len(flag)+1 {
			if v, err := strconv.Atoi(f[len(flag)+1:]); err == nil {
				return v
			}
		}
	}
	if v, ok := cmd.FlagString(flag); ok {
		if iv, err := strconv.Atoi(v); err == nil {
			return iv
		}
	}
	return def
}

func linesFromFileOrStdin(cmd shparse.Command, ctx *Context, stdin string) ([]string, int, string) {
	// "-n N" reaches Args as a bare positional N, so skip that one token.
	countArg := ""
	fields := strings.Fields(cmd.RawArgs)
	for i, f := range fields {
		if f == "-n" && i+1 < len(fields) {
			countArg = fields[i+1]
			break
		}
	}
	var filtered []string
	for _, a := range cmd.Args {
		if countArg != "" && a == countArg {
			countArg = ""
			continue
		}
		if !strings.HasPrefix(a, "-") {
			filtered = append(filtered, a)
		}
	}
	if len(filtered) == 0 {
		return strings.Split(strings.TrimSuffix(stdin, "\n"), "\n"), 0, ""
	}
	content, err := ctx.FS.ReadFile(filtered[0], ctx.Cwd)
	if err != nil {
		return nil, 1, fmt.Sprintf("%s: No such file or directory", filtered[0])
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n"), 0, ""
}

func cmdWc(cmd shparse.Command, ctx *Context, stdin string) Result {
	content := stdin
	if len(cmd.Args) > 0 {
		c, err := ctx.FS.ReadFile(cmd.Args[0], ctx.Cwd)
		if err != nil {
			return fail(fmt.Sprintf("wc: %s: No such file or directory", cmd.Args[0]))
		}
		content = c
	}
	lines := strings.Count(content, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		lines++
	}
	words := len(strings.Fields(content))
	chars := len(content)

	showLines := cmd.FlagBool("l")
	showWords := cmd.FlagBool("w")
	showChars := cmd.FlagBool("c")
	if !showLines && !showWords && !showChars {
		return ok(fmt.Sprintf("%7d %7d %7d", lines, words, chars))
	}
	var parts []string
	if showLines {
		parts = append(parts, fmt.Sprintf("%7d", lines))
	}
	if showWords {
		parts = append(parts, fmt.Sprintf("%7d", words))
	}
	if showChars {
		parts = append(parts, fmt.Sprintf("%7d", chars))
	}
	return ok(strings.Join(parts, " "))
}

func cmdTree(cmd shparse.Command, ctx *Context, stdin string) Result {
	depth := 4
	if v, ok := cmd.FlagString("L"); ok {
		if d, err := strconv.Atoi(v); err == nil {
			depth = d
		}
	}
	base := ctx.Cwd
	if len(cmd.Args) > 0 {
		base = cmd.Args[0]
	}
	node, err := ctx.FS.Resolve(base, ctx.Cwd)
	if err != nil {
		return fail(fmt.Sprintf("tree: %s [error opening dir]", base))
	}
	var lines []string
	dirs, files := 0, 0
	var walk func(n *vfsNode, prefix string, level int)
	walk = func(n *vfsNode, prefix string, level int) {
		if level > depth || n.Kind != vfs.Directory {
			return
		}
		names := make([]string, 0, len(n.Children))
		for name := range n.Children {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			child := n.Children[name]
			last := i == len(names)-1
			connector := "├── "
			nextPrefix := prefix + "│   "
			if last {
				connector = "└── "
				nextPrefix = prefix + "    "
			}
			lines = append(lines, prefix+connector+colorizeName(child))
			if child.Kind == vfs.Directory {
				dirs++
				walk(child, nextPrefix, level+1)
			} else {
				files++
			}
		}
	}
	walk(node, "", 1)
	lines = append(lines, "", fmt.Sprintf("%d directories, %d files", dirs, files))
	return ok(strings.Join(lines, "\n"))
}
