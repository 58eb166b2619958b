package shparse

import "strings"

// OutputRedirect is a `>`/`>>` target.
type OutputRedirect struct {
	Path   string
	Append bool
}

// Command is a single parsed command within a pipeline.
type Command struct {
	Name          string
	Args          []string
	RawArgs       string // space-joined original tokens, excluding Name
	Flags         map[string]any // string value or bool true
	InputRedirect string         // "" if absent
	OutputRedirect *OutputRedirect
}

// ParseCommand tokenizes text and classifies the resulting tokens into a
// Command: the command name, positional args, long/short flags, and
// redirections, per §4.2.
func ParseCommand(text string) Command {
	tokens := Tokenize(text)
	cmd := Command{Flags: map[string]any{}}
	if len(tokens) == 0 {
		return cmd
	}
	cmd.Name = tokens[0]
	rest := tokens[1:]
	cmd.RawArgs = strings.Join(rest, " ")

	i := 0
	for i < len(rest) {
		tok := rest[i]
		switch {
		case tok == ">>" || tok == ">" || tok == "<":
			if i+1 < len(rest) {
				target := rest[i+1]
				applyRedirect(&cmd, tok, target)
				i += 2
			} else {
				i++
			}
		case strings.HasPrefix(tok, ">>"):
			applyRedirect(&cmd, ">>", strings.TrimPrefix(tok, ">>"))
			i++
		case strings.HasPrefix(tok, ">"):
			applyRedirect(&cmd, ">", strings.TrimPrefix(tok, ">"))
			i++
		case strings.HasPrefix(tok, "<"):
			applyRedirect(&cmd, "<", strings.TrimPrefix(tok, "<"))
			i++
		case strings.HasPrefix(tok, "--"):
			name := strings.TrimPrefix(tok, "--")
			if eq := strings.IndexByte(name, '='); eq >= 0 {
				cmd.Flags[name[:eq]] = name[eq+1:]
				i++
				continue
			}
			if i+1 < len(rest) && !looksLikeFlag(rest[i+1]) && !isOperatorToken(rest[i+1]) {
				cmd.Flags[name] = rest[i+1]
				i += 2
				continue
			}
			cmd.Flags[name] = true
			i++
		case strings.HasPrefix(tok, "-") && len(tok) > 1 && tok != "-":
			for _, r := range tok[1:] {
				cmd.Flags[string(r)] = true
			}
			i++
		default:
			cmd.Args = append(cmd.Args, tok)
			i++
		}
	}
	return cmd
}

func looksLikeFlag(tok string) bool {
	return strings.HasPrefix(tok, "-") && tok != "-"
}

func isOperatorToken(tok string) bool {
	switch tok {
	case "|", "&&", "||", ";", ">", ">>", "<":
		return true
	}
	return false
}

func applyRedirect(cmd *Command, op, target string) {
	switch op {
	case ">":
		cmd.OutputRedirect = &OutputRedirect{Path: target, Append: false}
	case ">>":
		cmd.OutputRedirect = &OutputRedirect{Path: target, Append: true}
	case "<":
		cmd.InputRedirect = target
	}
}

// FlagString returns the flag's value as a string if it was set via
// `--flag=value` or `--flag value`, and ok=false otherwise (including when
// the flag was set bare, i.e. Flags[name] == true).
func (c Command) FlagString(name string) (string, bool) {
	v, ok := c.Flags[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// FlagBool reports whether name is present at all (bare or with a value).
func (c Command) FlagBool(name string) bool {
	_, ok := c.Flags[name]
	return ok
}
