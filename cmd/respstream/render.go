package main

import (
	"fmt"
	"strings"

	"github.com/halcyon-ai/respstream/protocol"
	"github.com/halcyon-ai/respstream/session"
)

// printTranscript dumps the materialized transcript in reading order.
func printTranscript(snap session.Snapshot) {
	fmt.Printf("\n=== Transcript (%d messages, status %s) ===\n", len(snap.Transcript), snap.Status)
	for i, msg := range snap.Transcript {
		if msg.IsInput() {
			printInput(i, msg.Input)
			continue
		}
		printOutput(i, msg.Output)
	}

	if snap.AudioTranscript != "" {
		fmt.Printf("\nAudio transcript:\n%s\n", indent(snap.AudioTranscript))
	}
	if snap.LastError != nil {
		fmt.Printf("\nError: [%s] %s\n", snap.LastError.Code, snap.LastError.Message)
	}
	if snap.Response != nil && snap.Response.Usage != nil {
		u := snap.Response.Usage
		fmt.Printf("\nUsage: %d in / %d out / %d total\n", u.InputTokens, u.OutputTokens, u.TotalTokens)
	}
}

func printInput(i int, in *protocol.InputItem) {
	role := in.Role
	if role == "" {
		role = "user"
	}
	text, ok := in.TextContent()
	if !ok {
		text = string(in.Content)
	}
	fmt.Printf("\n[%d] %s:\n%s\n", i, role, indent(text))
}

func printOutput(i int, out *session.OutputMessage) {
	switch it := out.Item.(type) {
	case *protocol.MessageItem:
		fmt.Printf("\n[%d] assistant:\n", i)
		for _, part := range it.Content {
			switch part.Type {
			case protocol.PartTypeRefusal:
				fmt.Printf("%s\n", indent("(refused) "+part.Refusal))
			default:
				fmt.Printf("%s\n", indent(part.Text))
			}
		}
	case *protocol.ReasoningItem:
		fmt.Printf("\n[%d] reasoning:\n", i)
		for _, part := range it.Summary {
			fmt.Printf("%s\n", indent(part.Text))
		}
		if out.Augments != nil && len(out.Augments.ReasoningText) > 0 {
			fmt.Printf("%s\n", indent(fmt.Sprintf("(%d raw reasoning segment(s))", len(out.Augments.ReasoningText))))
		}
	case *protocol.FunctionCallItem:
		fmt.Printf("\n[%d] function call %s(%s)\n", i, it.Name, it.Arguments)
	case *protocol.CustomToolCallItem:
		fmt.Printf("\n[%d] custom tool %s:\n%s\n", i, it.Name, indent(it.Input))
	case *protocol.MCPCallItem:
		fmt.Printf("\n[%d] mcp call %s/%s(%s)\n", i, it.ServerLabel, it.Name, it.Arguments)
		if it.Output != "" {
			fmt.Printf("%s\n", indent(it.Output))
		}
	case *protocol.CodeInterpreterCallItem:
		fmt.Printf("\n[%d] code interpreter (%s):\n%s\n", i, it.Status, indent(it.Code))
	case *protocol.ImageGenerationCallItem:
		fmt.Printf("\n[%d] image generation (%s, %d base64 bytes)\n", i, it.Status, len(it.Result))
	case *protocol.MCPListToolsItem:
		fmt.Printf("\n[%d] mcp tools from %s: %d tool(s)\n", i, it.ServerLabel, len(it.Tools))
	default:
		fmt.Printf("\n[%d] %s item %s\n", i, out.Item.Kind(), out.Item.ItemID())
	}
}

func indent(s string) string {
	if s == "" {
		return "    (empty)"
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
