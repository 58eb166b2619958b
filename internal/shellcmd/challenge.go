package shellcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/assessments/shellcore/internal/shparse"
)

// ObjectiveEvaluator decides, given the current Context, which objective
// IDs for the active level are now satisfied. It is supplied by the host
// (internal/catalogue holds the reference implementation) so the
// challenge command family never hard-codes assessment content.
type ObjectiveEvaluator interface {
	Objectives(level int) []ObjectiveInfo
	Evaluate(ctx *Context) []string
}

// ObjectiveInfo is the display-facing description of one objective.
type ObjectiveInfo struct {
	ID          string
	Description string
	Hint        string
}

// globalEvaluator is how challenge handlers reach the host's evaluator: a
// package-level variable, since Context has no dedicated field for it
// (handlers only see shparse.Command/Context/stdin). cmd/shellcored
// installs it via SetEvaluator.
var globalEvaluator ObjectiveEvaluator

// SetEvaluator installs the active ObjectiveEvaluator. cmd/shellcored calls
// it once per connection at session setup.
func SetEvaluator(e ObjectiveEvaluator) {
	globalEvaluator = e
}

// CurrentEvaluator returns the installed ObjectiveEvaluator, or nil if
// none has been set yet (e.g. in a test Context built without one).
func CurrentEvaluator() ObjectiveEvaluator {
	return globalEvaluator
}

func (r *Registry) registerChallenge() {
	r.Register("status", cmdChallengeStatus)
	r.Register("hint", cmdChallengeHint)
	r.Register("submit", cmdChallengeSubmit)
	r.Register("next-level", cmdChallengeNextLevel)
}

func cmdChallengeStatus(cmd shparse.Command, ctx *Context, stdin string) Result {
	c := ctx.Challenge
	elapsed := time.Since(c.StartedAt).Round(time.Second)
	var b strings.Builder
	fmt.Fprintf(&b, "Level %d — %s\n", c.Level, c.SeniorityRank)
	fmt.Fprintf(&b, "Elapsed: %s\n\n", elapsed)
	if globalEvaluator == nil {
		b.WriteString("No objectives loaded.")
		return ok(b.String())
	}
	for _, o := range globalEvaluator.Objectives(c.Level) {
		mark := "[ ]"
		if c.CompletedObjectives[o.ID] {
			mark = "[x]"
		}
		fmt.Fprintf(&b, "%s %s - %s\n", mark, o.ID, o.Description)
	}
	return ok(strings.TrimRight(b.String(), "\n"))
}

func cmdChallengeHint(cmd shparse.Command, ctx *Context, stdin string) Result {
	c := ctx.Challenge
	if globalEvaluator == nil {
		return fail("hint: no objectives loaded")
	}
	objectives := globalEvaluator.Objectives(c.Level)
	for _, o := range objectives {
		if c.CompletedObjectives[o.ID] {
			continue
		}
		if len(cmd.Args) > 0 && cmd.Args[0] != o.ID {
			continue
		}
		c.HintsUsed[o.ID] = true
		return ok(fmt.Sprintf("%s: %s", o.ID, o.Hint))
	}
	return ok("No pending objectives to hint.")
}

// cmdChallengeSubmit implements `submit <objective-id>`: the candidate
// names the objective they believe they have satisfied, and the engine
// re-runs the evaluator to check whether it is actually among the
// currently-satisfied set.
func cmdChallengeSubmit(cmd shparse.Command, ctx *Context, stdin string) Result {
	c := ctx.Challenge
	if len(cmd.Args) == 0 {
		return usage("usage: submit <objective-id>")
	}
	id := cmd.Args[0]
	if globalEvaluator == nil {
		return fail("submit: no objectives loaded")
	}
	c.LastActivityAt = time.Now()
	if c.CompletedObjectives[id] {
		return ok(fmt.Sprintf("%s is already complete.", id))
	}
	satisfied := globalEvaluator.Evaluate(ctx)
	for _, sid := range satisfied {
		if sid == id {
			c.CompletedObjectives[id] = true
			return ok(fmt.Sprintf("Completed: %s", id))
		}
	}
	return fail(fmt.Sprintf("%s is not yet satisfied.", id))
}

func cmdChallengeNextLevel(cmd shparse.Command, ctx *Context, stdin string) Result {
	c := ctx.Challenge
	if globalEvaluator == nil {
		return fail("next-level: no objectives loaded")
	}
	for _, o := range globalEvaluator.Objectives(c.Level) {
		if !c.CompletedObjectives[o.ID] {
			return fail(fmt.Sprintf("Level %d is not complete: %s still pending", c.Level, o.ID))
		}
	}
	c.Level++
	c.StartedAt = time.Now()
	return ok(fmt.Sprintf("Advanced to level %d", c.Level))
}
