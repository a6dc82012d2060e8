package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-ai/respstream/protocol"
	"github.com/halcyon-ai/respstream/session"
	"github.com/halcyon-ai/respstream/sse"
)

var replayShowEvents bool

var replayCmd = &cobra.Command{
	Use:   "replay <stream-file>",
	Short: "Replay a captured SSE stream and print the assembled transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open stream: %w", err)
		}
		defer f.Close()

		log := newLogger()
		sess := session.NewSession(session.WithLogger(log))
		if replayShowEvents {
			sess.OnEvent(func(ev protocol.Event) {
				fmt.Printf("%-45s seq=%d\n", ev.Type, ev.SequenceNumber)
			})
		}

		snap, err := sess.Drain(cmd.Context(), sse.New(f, sse.WithLogger(log)))
		if err != nil {
			return fmt.Errorf("drain stream: %w", err)
		}

		printTranscript(snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayShowEvents, "events", false, "Print each event type as it is ingested")
}
