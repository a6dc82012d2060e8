package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/halcyon-ai/respstream/protocol"
	"github.com/halcyon-ai/respstream/session"
)

func TestSnapshotView(t *testing.T) {
	s := session.NewSession(session.WithInputItems(protocol.NewUserTextInput("question")))
	s.Ingest(protocol.Event{
		Type:     protocol.EventResponseCreated,
		Response: &protocol.Response{ID: "resp_1", Status: protocol.StatusInProgress},
	})
	zero := 0
	s.Ingest(protocol.Event{
		Type:         protocol.EventOutputTextDelta,
		ItemID:       "msg_1",
		OutputIndex:  &zero,
		ContentIndex: &zero,
		Delta:        "answer",
	})

	view := snapshotView(s.Snapshot())
	if view.Status != "in_progress" {
		t.Errorf("Status = %q, want in_progress", view.Status)
	}
	if len(view.Transcript) != 2 {
		t.Fatalf("len(Transcript) = %d, want 2", len(view.Transcript))
	}
	if view.Transcript[0].Role != "input" || view.Transcript[1].Role != "output" {
		t.Errorf("roles = %q, %q", view.Transcript[0].Role, view.Transcript[1].Role)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("default URL = %q", cfg.NATS.URL)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "nats:\n  subject: custom.subject\nserve:\n  addr: \":9999\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.NATS.Subject != "custom.subject" {
		t.Errorf("Subject = %q", cfg.NATS.Subject)
	}
	if cfg.Serve.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Serve.Addr)
	}
	// File did not set the URL; the default survives.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("URL = %q", cfg.NATS.URL)
	}
}
