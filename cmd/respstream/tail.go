package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyon-ai/respstream/natsfeed"
	"github.com/halcyon-ai/respstream/protocol"
	"github.com/halcyon-ai/respstream/session"
)

var (
	tailURL     string
	tailSubject string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow a live event stream on a NATS subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if tailURL != "" {
			cfg.NATS.URL = tailURL
		}
		if tailSubject != "" {
			cfg.NATS.Subject = tailSubject
		}

		log := newLogger()
		src, err := natsfeed.Connect(cfg.NATS.URL, cfg.NATS.Subject, natsfeed.WithLogger(log))
		if err != nil {
			return err
		}
		defer src.Close()

		sess := session.NewSession(session.WithLogger(log))
		sess.OnStatus(func(st protocol.Status) {
			log.Info("status changed", "status", st)
		})
		sess.OnError(func(detail *protocol.ErrorDetail) {
			log.Error("stream error", "code", detail.Code, "message", detail.Message)
		})
		sess.OnEvent(func(ev protocol.Event) {
			if verbose {
				log.Debug("event", "type", ev.Type, "seq", ev.SequenceNumber)
			}
		})

		log.Info("tailing subject", "url", cfg.NATS.URL, "subject", cfg.NATS.Subject)
		snap, err := sess.Drain(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("drain stream: %w", err)
		}

		printTranscript(snap)
		return sess.Err()
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().StringVar(&tailURL, "url", "", "NATS server URL (overrides config)")
	tailCmd.Flags().StringVar(&tailSubject, "subject", "", "Subject carrying the event stream (overrides config)")
}
