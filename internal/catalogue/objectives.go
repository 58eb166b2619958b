package catalogue

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/assessments/shellcore/internal/shellcmd"
)

// Rule is one objective's satisfaction check: either a regular
// expression matched against every command the candidate has run, or a
// file whose content must match a pattern. Exactly one of CommandPattern
// or FilePath should be set; FilePath without ContentPattern only checks
// existence.
type Rule struct {
	ID              string `yaml:"id"`
	Level           int    `yaml:"level"`
	Description     string `yaml:"description"`
	Hint            string `yaml:"hint"`
	CommandPattern  string `yaml:"command_pattern,omitempty"`
	FilePath        string `yaml:"file_path,omitempty"`
	ContentPattern  string `yaml:"content_pattern,omitempty"`

	commandRe *regexp.Regexp
	contentRe *regexp.Regexp
}

// Document is the top-level YAML shape for an objective/level catalogue.
type Document struct {
	Rules []Rule `yaml:"objectives"`
}

// LoadDocument reads and parses a catalogue YAML file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalogue: read objectives %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalogue: parse objectives %s: %w", path, err)
	}
	if err := doc.compile(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) compile() error {
	for i := range d.Rules {
		r := &d.Rules[i]
		if r.CommandPattern != "" {
			re, err := regexp.Compile(r.CommandPattern)
			if err != nil {
				return fmt.Errorf("catalogue: objective %s: command_pattern: %w", r.ID, err)
			}
			r.commandRe = re
		}
		if r.ContentPattern != "" {
			re, err := regexp.Compile(r.ContentPattern)
			if err != nil {
				return fmt.Errorf("catalogue: objective %s: content_pattern: %w", r.ID, err)
			}
			r.contentRe = re
		}
	}
	return nil
}

// Evaluator is the reference ObjectiveEvaluator: a regex-over-raw-command-
// and-VFS-content rule engine, per the design note that the evaluator is
// data the host supplies rather than logic the core embeds.
type Evaluator struct {
	doc *Document
}

// NewEvaluator wraps doc as a shellcmd.ObjectiveEvaluator.
func NewEvaluator(doc *Document) *Evaluator {
	return &Evaluator{doc: doc}
}

func (e *Evaluator) rulesForLevel(level int) []Rule {
	var out []Rule
	for _, r := range e.doc.Rules {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Objectives implements shellcmd.ObjectiveEvaluator.
func (e *Evaluator) Objectives(level int) []shellcmd.ObjectiveInfo {
	var out []shellcmd.ObjectiveInfo
	for _, r := range e.rulesForLevel(level) {
		out = append(out, shellcmd.ObjectiveInfo{ID: r.ID, Description: r.Description, Hint: r.Hint})
	}
	return out
}

// Evaluate implements shellcmd.ObjectiveEvaluator: it returns every
// objective ID (at the candidate's current level) whose rule is
// satisfied by the current session history and VFS state.
func (e *Evaluator) Evaluate(ctx *shellcmd.Context) []string {
	var history []string
	if ctx.HistoryFunc != nil {
		history = ctx.HistoryFunc()
	}

	var satisfied []string
	for _, r := range e.rulesForLevel(ctx.Challenge.Level) {
		if r.commandRe != nil {
			matched := false
			for _, cmd := range history {
				if r.commandRe.MatchString(cmd) {
					matched = true
					break
				}
			}
			if matched {
				satisfied = append(satisfied, r.ID)
			}
			continue
		}
		if r.FilePath != "" {
			path := r.FilePath
			if path == "~" || strings.HasPrefix(path, "~/") {
				path = ctx.Env["HOME"] + path[1:]
			}
			content, err := ctx.FS.ReadFile(path, ctx.Cwd)
			if err != nil {
				continue
			}
			if r.contentRe == nil || r.contentRe.MatchString(content) {
				satisfied = append(satisfied, r.ID)
			}
		}
	}
	return satisfied
}

// DefaultDocument is the built-in ~6-objective, 2-level catalogue that
// lets the engine run end-to-end without a host-supplied assessment
// file.
func DefaultDocument() *Document {
	doc := &Document{
		Rules: []Rule{
			{
				ID:             "find-repo",
				Level:          1,
				Description:    "Locate the fleetcore-api git repository on disk.",
				Hint:           "Try `find / -name fleetcore-api` or `ls` around /home and /srv.",
				CommandPattern: `\bfind\b.*fleetcore-api`,
			},
			{
				ID:             "check-status",
				Level:          1,
				Description:    "Check the working tree status of the repository.",
				Hint:           "Run `git status` inside the repo.",
				CommandPattern: `\bgit\s+status\b`,
			},
			{
				ID:             "start-containers",
				Level:          1,
				Description:    "Bring the fleetcore-api Docker stack up.",
				Hint:           "Try `docker compose up` or `docker start fleetcore-api`.",
				CommandPattern: `\bdocker\s+(compose\s+up|start)\b`,
			},
			{
				ID:             "hit-health-endpoint",
				Level:          2,
				Description:    "Confirm the API is serving traffic on /health.",
				Hint:           "Use `curl localhost:3000/health`.",
				CommandPattern: `\bcurl\b.*\/health`,
			},
			{
				ID:             "write-incident-notes",
				Level:          2,
				Description:    "Write your findings to ~/incident-notes.md.",
				Hint:           "Use a heredoc or `echo ... > ~/incident-notes.md`.",
				FilePath:       "~/incident-notes.md",
			},
			{
				ID:             "commit-fix",
				Level:          2,
				Description:    "Stage and commit your fix with a descriptive message.",
				Hint:           "Run `git add -A` then `git commit -m \"...\"`.",
				CommandPattern: `\bgit\s+commit\s+-m\b`,
			},
		},
	}
	if err := doc.compile(); err != nil {
		panic(err) // the built-in catalogue's patterns are a compile-time invariant
	}
	return doc
}
