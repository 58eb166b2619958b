// Command shellcoreplay loads a recorded session event log and either
// replays it to a terminal sink at real or adjusted speed, or prints
// an integrity score report for it offline — the local review tool a
// proctor reaches for instead of re-running the candidate's browser
// session, the way the teacher's `wt log`/`wt timeline` let an operator
// inspect a task after the fact without re-running it.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/assessments/shellcore/internal/integrity"
	"github.com/assessments/shellcore/internal/recorder"
	"github.com/assessments/shellcore/internal/replay"
)

func main() {
	root := &cobra.Command{
		Use:   "shellcoreplay",
		Short: "Replay and score recorded shellcore assessment sessions",
	}
	root.AddCommand(runCmd(), scoreCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadEvents(path string) ([]recorder.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event log %s: %w", path, err)
	}
	var events []recorder.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parse event log %s: %w", path, err)
	}
	return events, nil
}

func runCmd() *cobra.Command {
	var speed float64

	cmd := &cobra.Command{
		Use:   "run <event-log.json>",
		Short: "Replay a recorded session to stdout at the given speed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := loadEvents(args[0])
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("(empty session)")
				return nil
			}

			eng := replay.New(events)
			eng.SetSpeed(speed)

			done := make(chan struct{}, 1)
			eng.OnEvent = func(e recorder.Event) {
				if e.Kind == recorder.KindOutput {
					fmt.Print(e.OutputContent)
				}
			}
			eng.OnStateChange = func(s replay.State) {
				if !s.IsPlaying && s.CurrentIndex >= len(events) {
					select {
					case done <- struct{}{}:
					default:
					}
				}
			}

			eng.Play()
			select {
			case <-done:
			case <-time.After(5 * time.Minute):
				fmt.Fprintln(os.Stderr, "\nshellcoreplay: replay timed out after 5 minutes")
			}

			fmt.Println()
			printReport(events)
			return nil
		},
	}
	cmd.Flags().Float64Var(&speed, "speed", 1.0, "playback speed multiplier")
	return cmd
}

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <event-log.json>",
		Short: "Print an integrity score report for a recorded session, without replaying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := loadEvents(args[0])
			if err != nil {
				return err
			}
			printReport(events)
			return nil
		},
	}
}

func printReport(events []recorder.Event) {
	score := integrity.ScoreSession(events)
	fmt.Printf("integrity score: %d/100 — %s\n", score.Value, score.Summary)
	if len(score.Flags) == 0 {
		fmt.Println("no flags raised")
		return
	}
	for _, f := range score.Flags {
		fmt.Printf("  - %-20s %-8s -%d\n", f.Name, f.Severity, f.Points)
	}
}
