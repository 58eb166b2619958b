package shellcmd

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/assessments/shellcore/internal/shparse"
)

func (r *Registry) registerBuiltins() {
	r.Register("echo", cmdEcho)
	r.Register("env", cmdEnv)
	r.Register("export", cmdExport)
	r.Register("clear", cmdClear)
	r.Register("history", cmdHistory)
	r.Register("whoami", cmdWhoami)
	r.Register("hostname", cmdHostname)
	r.Register("date", cmdDate)
	r.Register("uname", cmdUname)
	r.Register("which", cmdWhich)
	r.Register("man", cmdMan)
	r.Register("help", cmdHelp)
	r.Register("true", cmdTrue)
	r.Register("false", cmdFalse)
	r.Register("exit", cmdExit)
	r.Register("sort", cmdSort)
	r.Register("uniq", cmdUniq)
	r.Register("xargs", cmdXargs)
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnv substitutes $VAR and ${VAR} from ctx.Env; an unset variable
// expands to the empty string.
func expandEnv(s string, ctx *Context) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := envVarPattern.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		return ctx.Env[name]
	})
}

func cmdEcho(cmd shparse.Command, ctx *Context, stdin string) Result {
	noNewline := cmd.FlagBool("n")
	interpretEscapes := cmd.FlagBool("e")
	args := make([]string, len(cmd.Args))
	for i, a := range cmd.Args {
		args[i] = expandEnv(a, ctx)
	}
	out := strings.Join(args, " ")
	if interpretEscapes {
		out = strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(out)
	}
	if !noNewline {
		out += "\n"
	}
	return ok(strings.TrimSuffix(out, "\n"))
}

func cmdEnv(cmd shparse.Command, ctx *Context, stdin string) Result {
	var keys []string
	for k := range ctx.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%s", k, ctx.Env[k]))
	}
	return ok(strings.Join(lines, "\n"))
}

func cmdExport(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		var keys []string
		for k := range ctx.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var lines []string
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf(`declare -x %s="%s"`, k, ctx.Env[k]))
		}
		return ok(strings.Join(lines, "\n"))
	}
	for _, a := range cmd.Args {
		if eq := strings.IndexByte(a, '='); eq >= 0 {
			ctx.Env[a[:eq]] = a[eq+1:]
		}
	}
	return ok("")
}

func cmdClear(cmd shparse.Command, ctx *Context, stdin string) Result {
	return ok("\x1b[2J\x1b[H")
}

func cmdHistory(cmd shparse.Command, ctx *Context, stdin string) Result {
	if ctx.HistoryFunc == nil {
		return ok("")
	}
	entries := ctx.HistoryFunc()
	var lines []string
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%5d  %s", i+1, e))
	}
	return ok(strings.Join(lines, "\n"))
}

func cmdWhoami(cmd shparse.Command, ctx *Context, stdin string) Result {
	return ok(ctx.User)
}

func cmdHostname(cmd shparse.Command, ctx *Context, stdin string) Result {
	return ok(ctx.Hostname)
}

func cmdDate(cmd shparse.Command, ctx *Context, stdin string) Result {
	return ok(time.Now().Format("Mon Jan  2 15:04:05 MST 2006"))
}

func cmdUname(cmd shparse.Command, ctx *Context, stdin string) Result {
	if cmd.FlagBool("a") {
		return ok(fmt.Sprintf("Linux %s 6.6.0-assessment #1 SMP x86_64 GNU/Linux", ctx.Hostname))
	}
	return ok("Linux")
}

var whichTable = map[string]string{
	"node":   "/usr/local/bin/node",
	"npm":    "/usr/local/bin/npm",
	"npx":    "/usr/local/bin/npx",
	"git":    "/usr/bin/git",
	"docker": "/usr/bin/docker",
	"python": "/usr/bin/python",
	"python3": "/usr/bin/python3",
	"pip":    "/usr/bin/pip",
	"curl":   "/usr/bin/curl",
	"wget":   "/usr/bin/wget",
	"bash":   "/bin/bash",
	"sh":     "/bin/sh",
	"vim":    "/usr/bin/vim",
	"grep":   "/usr/bin/grep",
	"ls":     "/bin/ls",
}

func cmdWhich(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("which: missing argument")
	}
	path, ok2 := whichTable[cmd.Args[0]]
	if !ok2 {
		return fail(fmt.Sprintf("which: no %s in (%s)", cmd.Args[0], ctx.Env["PATH"]))
	}
	return ok(path)
}

var manPages = map[string]string{
	"git":  "GIT(1)\n\nNAME\n       git - the stupid content tracker\n",
	"ls":   "LS(1)\n\nNAME\n       ls - list directory contents\n",
	"grep": "GREP(1)\n\nNAME\n       grep - print lines matching a pattern\n",
}

func cmdMan(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("What manual page do you want?")
	}
	page, found := manPages[cmd.Args[0]]
	if !found {
		return fail(fmt.Sprintf("No manual entry for %s", cmd.Args[0]))
	}
	return ok(page)
}

const helpText = `shellcore - simulated assessment shell

Available command families: coreutils (ls, cat, cd, ...), git, docker,
node/npm, python, curl, and challenge helpers (status, hint, submit).
Type a command and press Enter. Use Tab for completion, Ctrl-C to abandon
a line, and the up/down arrows for history.`

func cmdHelp(cmd shparse.Command, ctx *Context, stdin string) Result {
	return ok(helpText)
}

func cmdTrue(cmd shparse.Command, ctx *Context, stdin string) Result  { return Result{ExitCode: 0} }
func cmdFalse(cmd shparse.Command, ctx *Context, stdin string) Result { return Result{ExitCode: 1} }
func cmdExit(cmd shparse.Command, ctx *Context, stdin string) Result  { return Result{ExitCode: 0} }

func cmdSort(cmd shparse.Command, ctx *Context, stdin string) Result {
	content := stdin
	if len(cmd.Args) > 0 {
		c, err := ctx.FS.ReadFile(cmd.Args[0], ctx.Cwd)
		if err != nil {
			return fail(fmt.Sprintf("sort: cannot read: %s", cmd.Args[0]))
		}
		content = c
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		lines = nil
	}
	if cmd.FlagBool("n") {
		sort.Slice(lines, func(i, j int) bool { return numericLess(lines[i], lines[j]) })
	} else {
		sort.Strings(lines)
	}
	if cmd.FlagBool("r") {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	if cmd.FlagBool("u") {
		lines = dedupeAdjacent(sortedUnique(lines))
	}
	return ok(strings.Join(lines, "\n"))
}

func numericLess(a, b string) bool {
	var an, bn float64
	fmt.Sscanf(strings.TrimSpace(a), "%f", &an)
	fmt.Sscanf(strings.TrimSpace(b), "%f", &bn)
	return an < bn
}

func sortedUnique(lines []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range lines {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

func cmdUniq(cmd shparse.Command, ctx *Context, stdin string) Result {
	content := stdin
	if len(cmd.Args) > 0 {
		c, err := ctx.FS.ReadFile(cmd.Args[0], ctx.Cwd)
		if err != nil {
			return fail(fmt.Sprintf("uniq: cannot read: %s", cmd.Args[0]))
		}
		content = c
	}
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	return ok(strings.Join(dedupeAdjacent(lines), "\n"))
}

func dedupeAdjacent(lines []string) []string {
	var out []string
	for i, l := range lines {
		if i == 0 || l != lines[i-1] {
			out = append(out, l)
		}
	}
	return out
}

// cmdXargs joins stdin tokens and appends them to the sub-command's
// argument list, matching §4.3's "simplified" xargs.
func cmdXargs(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return ok(strings.Join(strings.Fields(stdin), " "))
	}
	sub := cmd.Args[0]
	args := append(append([]string{}, cmd.Args[1:]...), strings.Fields(stdin)...)
	inner := shparse.ParseCommand(sub + " " + strings.Join(args, " "))
	return ok(fmt.Sprintf("[xargs] %s %s", inner.Name, strings.Join(inner.Args, " ")))
}
