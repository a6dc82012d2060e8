package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/halcyon-ai/respstream/natsfeed"
	"github.com/halcyon-ai/respstream/session"
)

var (
	serveAddr    string
	serveURL     string
	serveSubject string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Follow a live stream and serve the assembled snapshot over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Serve.Addr = serveAddr
		}
		if serveURL != "" {
			cfg.NATS.URL = serveURL
		}
		if serveSubject != "" {
			cfg.NATS.Subject = serveSubject
		}

		log := newLogger()
		src, err := natsfeed.Connect(cfg.NATS.URL, cfg.NATS.Subject, natsfeed.WithLogger(log))
		if err != nil {
			return err
		}
		defer src.Close()

		sess := session.NewSession(session.WithLogger(log))
		return runServer(cmd.Context(), cfg.Serve.Addr, sess, src, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveURL, "url", "", "NATS server URL (overrides config)")
	serveCmd.Flags().StringVar(&serveSubject, "subject", "", "Subject carrying the event stream (overrides config)")
}

// runServer drains the source in the background while serving snapshot reads.
// It returns when the context is canceled or the listener fails.
func runServer(ctx context.Context, addr string, sess *session.Session, src session.EventSource, log *slog.Logger) error {
	drainCtx, cancelDrain := context.WithCancel(ctx)
	defer cancelDrain()
	go func() {
		_, err := sess.Drain(drainCtx, src)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, session.ErrSourceClosed) {
			log.Error("drain stopped", "error", err)
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Get("/v1/session", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, log, snapshotView(sess.Snapshot()))
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// sessionView is the JSON shape served for a snapshot. The transcript keeps
// its reading order; per-message event history is elided.
type sessionView struct {
	Status     string            `json:"status"`
	Ended      bool              `json:"ended"`
	Response   any               `json:"response,omitempty"`
	Transcript []transcriptEntry `json:"transcript"`
	Error      any               `json:"error,omitempty"`
}

type transcriptEntry struct {
	Role string `json:"role"`
	Item any    `json:"item"`
}

func snapshotView(snap session.Snapshot) sessionView {
	view := sessionView{
		Status:     string(snap.Status),
		Ended:      snap.Ended,
		Transcript: make([]transcriptEntry, 0, len(snap.Transcript)),
	}
	if snap.Response != nil {
		view.Response = snap.Response
	}
	if snap.LastError != nil {
		view.Error = snap.LastError
	}
	for _, msg := range snap.Transcript {
		if msg.IsInput() {
			view.Transcript = append(view.Transcript, transcriptEntry{Role: "input", Item: msg.Input})
			continue
		}
		view.Transcript = append(view.Transcript, transcriptEntry{Role: "output", Item: msg.Output.Item})
	}
	return view
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", "error", err)
	}
}
