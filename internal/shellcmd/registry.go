package shellcmd

import (
	"sort"
	"strings"

	"github.com/assessments/shellcore/internal/shparse"
)

// Result is what a handler returns: the terminal-bound output text and the
// POSIX-style exit code (§7).
type Result struct {
	Output   string
	ExitCode int
}

// Handler is the signature every simulated command implements. Handlers
// are pure over their inputs plus the Context they mutate — they perform
// no I/O outside the VFS and never block.
type Handler func(cmd shparse.Command, ctx *Context, stdin string) Result

// Registry maps command names to handlers. Aliases are resolved on
// lookup, not at registration, matching §4.3.
type Registry struct {
	handlers map[string]Handler
	aliases  map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		handlers: map[string]Handler{},
		aliases:  map[string]string{},
	}
	r.registerCoreutils()
	r.registerBuiltins()
	r.registerGit()
	r.registerDocker()
	r.registerNode()
	r.registerPython()
	r.registerNetwork()
	r.registerChallenge()
	return r
}

// Register installs handler under name.
func (r *Registry) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Alias makes `from` resolve to the same handler as `to` at lookup time.
func (r *Registry) Alias(from, to string) {
	r.aliases[from] = to
}

// Lookup resolves name through aliases and returns its handler, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	resolved := name
	if target, ok := r.aliases[name]; ok {
		resolved = target
	}
	h, ok := r.handlers[resolved]
	return h, ok
}

// MatchNames returns every registered command or alias name with the
// given prefix, sorted, for first-token Tab completion.
func (r *Registry) MatchNames(prefix string) []string {
	seen := map[string]bool{}
	var out []string
	for name := range r.handlers {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for name := range r.aliases {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func ok(output string) Result      { return Result{Output: output, ExitCode: 0} }
func okCode(output string, code int) Result { return Result{Output: output, ExitCode: code} }
func fail(output string) Result    { return Result{Output: output, ExitCode: 1} }
func usage(output string) Result   { return Result{Output: output, ExitCode: 2} }
func notFound(output string) Result { return Result{Output: output, ExitCode: 1} }
