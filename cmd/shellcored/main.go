// Command shellcored is a small daemon that exposes the Terminal Engine
// over a WebSocket, so a browser widget (out of scope for this module
// per §1) can drive a live session during local development — the
// transport collaborator of §6 made concrete, analogous to how the
// teacher's `wt serve` puts its relay HTTP server behind a single Cobra
// command.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/assessments/shellcore/internal/catalogue"
	"github.com/assessments/shellcore/internal/integrity"
	"github.com/assessments/shellcore/internal/recorder"
	"github.com/assessments/shellcore/internal/sessionstore"
	"github.com/assessments/shellcore/internal/shellcmd"
	"github.com/assessments/shellcore/internal/termengine"
	"github.com/assessments/shellcore/internal/transport"
)

func main() {
	root := &cobra.Command{
		Use:   "shellcored",
		Short: "Serve shellcore assessment sessions over WebSocket",
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// content holds the hot-reloadable assessment authoring content: the VFS
// seed fixture and the objective/level catalogue. A server swaps this
// pointer under contentMu whenever fsnotify reports the source files
// changed, the way the teacher's wing daemon reloads wing.yaml on SIGHUP.
type content struct {
	fixture *catalogue.Fixture
	doc     *catalogue.Document
}

type server struct {
	contentMu sync.RWMutex
	content   content

	store *sessionstore.Store
}

func (s *server) snapshot() content {
	s.contentMu.RLock()
	defer s.contentMu.RUnlock()
	return s.content
}

// reload re-reads whichever of fixturePath/objectivesPath is non-empty
// and swaps it into s.content. A file that fails to parse is logged and
// the previously loaded content for it is kept, so a typo mid-edit never
// takes the daemon's existing sessions down.
func (s *server) reload(fixturePath, objectivesPath string) {
	if fixturePath != "" {
		if fx, err := catalogue.LoadFixture(fixturePath); err != nil {
			log.Printf("shellcored: reload fixture: %v (keeping previous)", err)
		} else {
			s.contentMu.Lock()
			s.content.fixture = fx
			s.contentMu.Unlock()
		}
	}
	if objectivesPath != "" {
		if doc, err := catalogue.LoadDocument(objectivesPath); err != nil {
			log.Printf("shellcored: reload objectives: %v (keeping previous)", err)
		} else {
			s.contentMu.Lock()
			s.content.doc = doc
			s.contentMu.Unlock()
		}
	}
	log.Println("shellcored: assessment content reloaded")
}

func serveCmd() *cobra.Command {
	var addr string
	var fixturePath string
	var objectivesPath string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept WebSocket connections and drive one Terminal Engine per session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sessionstore.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer store.Close()

			srv := &server{store: store}
			srv.content.doc = catalogue.DefaultDocument()
			if objectivesPath != "" {
				doc, err := catalogue.LoadDocument(objectivesPath)
				if err != nil {
					return fmt.Errorf("load objectives: %w", err)
				}
				srv.content.doc = doc
			}
			if fixturePath != "" {
				fx, err := catalogue.LoadFixture(fixturePath)
				if err != nil {
					return fmt.Errorf("load fixture: %w", err)
				}
				srv.content.fixture = fx
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if fixturePath != "" || objectivesPath != "" {
				watcher, err := fsnotify.NewWatcher()
				if err != nil {
					return fmt.Errorf("start fixture watcher: %w", err)
				}
				defer watcher.Close()
				for _, p := range []string{fixturePath, objectivesPath} {
					if p != "" {
						if err := watcher.Add(p); err != nil {
							log.Printf("shellcored: watch %s: %v", p, err)
						}
					}
				}
				go func() {
					for {
						select {
						case ev, ok := <-watcher.Events:
							if !ok {
								return
							}
							if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
								srv.reload(fixturePath, objectivesPath)
							}
						case err, ok := <-watcher.Errors:
							if !ok {
								return
							}
							log.Printf("shellcored: watcher error: %v", err)
						case <-ctx.Done():
							return
						}
					}
				}()
			}

			mux := http.NewServeMux()
			mux.HandleFunc("/ws", srv.handleWS)
			httpSrv := &http.Server{Addr: addr, Handler: mux}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("shellcored listening on %s", addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				log.Println("shellcored: shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if err == http.ErrServerClosed {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to a VFS seed fixture YAML file (hot-reloaded)")
	cmd.Flags().StringVar(&objectivesPath, "objectives", "", "path to an objective/level catalogue YAML file (hot-reloaded)")
	cmd.Flags().StringVar(&dbPath, "db", "shellcore.db", "session store SQLite database path")
	return cmd
}

// handleWS upgrades one connection and drives a single Terminal Engine
// session until the candidate disconnects, then persists the recorded
// event log and its integrity score to the session store.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Printf("shellcored: accept: %v", err)
		return
	}

	sessionID := uuid.New().String()
	sink := &wsSink{conn: conn, sessionID: sessionID}
	defer sink.Close()

	c := s.snapshot()
	const user, hostname, home = "candidate", "assessment", "/home/candidate"

	eng := termengine.New(user, hostname, home, func(data string) {
		if err := sink.WriteOutput([]byte(data)); err != nil {
			log.Printf("shellcored: session %s: write output: %v", sessionID, err)
		}
	}, nil)
	if c.fixture != nil {
		*eng.FS = *c.fixture.Build()
	}
	if c.doc != nil {
		shellcmd.SetEvaluator(catalogue.NewEvaluator(c.doc))
	}

	rec := recorder.New(func(batch []recorder.Event) {
		for _, e := range batch {
			payload, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if err := sink.WriteEvent(payload); err != nil {
				log.Printf("shellcored: session %s: write event: %v", sessionID, err)
			}
		}
	})
	defer rec.Stop()

	eng.Event = func(kind string, payload map[string]any) {
		rec.Record(eventFromEngine(kind, payload))
	}

	startedAt := time.Now().UTC()
	eng.Boot()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		eng.HandleInput(data)
	}

	rec.Flush()
	events := rec.Events()
	score := integrity.ScoreSession(events)
	finishedAt := time.Now().UTC()
	sess := &sessionstore.Session{
		ID:               sessionID,
		User:             user,
		StartedAt:        startedAt,
		FinishedAt:       &finishedAt,
		Events:           events,
		IntegrityScore:   &score.Value,
		IntegritySummary: &score.Summary,
	}
	if err := s.store.SaveSession(sess); err != nil {
		log.Printf("shellcored: session %s: save: %v", sessionID, err)
	}
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}

// eventFromEngine maps the terminal engine's (kind, payload) callback
// shape — a loosely-typed map chosen so termengine stays decoupled from
// the recorder's concrete Event type — into a recorder.Event.
func eventFromEngine(kind string, payload map[string]any) recorder.Event {
	ts := nowMS()
	switch recorder.Kind(kind) {
	case recorder.KindCommand:
		raw, _ := payload["raw"].(string)
		code, _ := payload["exit_code"].(int)
		return recorder.NewCommandEvent(ts, raw, code)
	case recorder.KindObjectiveComplete:
		id, _ := payload["objective_id"].(string)
		return recorder.NewObjectiveCompleteEvent(ts, id)
	case recorder.KindPaste:
		content, _ := payload["content"].(string)
		return recorder.NewPasteEvent(ts, content, recorder.DetectedByClipboardAPI)
	default:
		return recorder.Event{TimestampMS: ts, Kind: recorder.Kind(kind)}
	}
}

// wsSink adapts transport.WSSink's envelope shapes to a raw
// *websocket.Conn accepted server-side (transport.DialWSSink is a
// client-side dialer; the daemon is the accept side of the same wire
// protocol, so it builds envelopes directly).
type wsSink struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
}

func (s *wsSink) WriteOutput(data []byte) error {
	msg := transport.OutputMessage{
		Type:      transport.TypeOutput,
		SessionID: s.sessionID,
		Data:      base64.StdEncoding.EncodeToString(data),
	}
	return s.writeJSON(msg)
}

func (s *wsSink) WriteEvent(payload json.RawMessage) error {
	msg := transport.EventMessage{
		Type:      transport.TypeEvent,
		SessionID: s.sessionID,
		Payload:   payload,
	}
	return s.writeJSON(msg)
}

func (s *wsSink) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, b)
}

func (s *wsSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close(websocket.StatusNormalClosure, "session ended")
}
