package shellcmd

import (
	"fmt"
	"strings"

	"github.com/assessments/shellcore/internal/shparse"
)

func (r *Registry) registerPython() {
	r.Register("python", cmdPython)
	r.Register("python3", cmdPython)
	r.Register("pip", cmdPip)
	r.Register("pip3", cmdPip)
}

func cmdPython(cmd shparse.Command, ctx *Context, stdin string) Result {
	if cmd.FlagBool("version") {
		return ok("Python 3.11.6")
	}
	if expr, has := cmd.FlagString("c"); has {
		return pythonEval(expr)
	}
	if len(cmd.Args) == 0 {
		return ok("Python 3.11.6\n>>> ")
	}
	file := cmd.Args[0]
	if !ctx.FS.Exists(file, ctx.Cwd) {
		return fail(fmt.Sprintf("python3: can't open file '%s': [Errno 2] No such file or directory", file))
	}
	content, err := ctx.FS.ReadFile(file, ctx.Cwd)
	if err != nil {
		return fail(fmt.Sprintf("python3: can't open file '%s'", file))
	}
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "print(") && strings.HasSuffix(line, ")") {
			inner := strings.Trim(line[len("print(") : len(line)-1], `"'`)
			out = append(out, inner)
		}
	}
	return ok(strings.Join(out, "\n"))
}

func pythonEval(expr string) Result {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "print(") && strings.HasSuffix(expr, ")") {
		inner := strings.Trim(expr[len("print(") : len(expr)-1], `"'`)
		if v, err := evalArith(inner); err == nil {
			return ok(fmt.Sprintf("%d", v))
		}
		return ok(inner)
	}
	if v, err := evalArith(expr); err == nil {
		return ok(fmt.Sprintf("%d", v))
	}
	return fail(fmt.Sprintf("python3: unsupported expression: %s", expr))
}

func cmdPip(cmd shparse.Command, ctx *Context, stdin string) Result {
	if len(cmd.Args) == 0 {
		return usage("Usage: pip <command>")
	}
	switch cmd.Args[0] {
	case "install":
		if len(cmd.Args) < 2 {
			return usage("You must give at least one requirement to install")
		}
		return ok(fmt.Sprintf("Successfully installed %s", strings.Join(cmd.Args[1:], " ")))
	case "list":
		return ok("Package    Version\n---------- -------\npip        24.0\nsetuptools 69.1.1")
	case "--version":
		return ok("pip 24.0")
	default:
		return fail(fmt.Sprintf("ERROR: unknown command \"%s\"", cmd.Args[0]))
	}
}
