package protocol

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalItemKinds(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ItemKind
		check   func(t *testing.T, item Item)
	}{
		{
			name:    "message",
			payload: `{"type":"message","id":"msg_1","role":"assistant","content":[{"type":"output_text","text":"hi"}]}`,
			want:    ItemKindMessage,
			check: func(t *testing.T, item Item) {
				m := item.(*MessageItem)
				if len(m.Content) != 1 || m.Content[0].Text != "hi" {
					t.Errorf("Content = %+v", m.Content)
				}
			},
		},
		{
			name:    "reasoning",
			payload: `{"type":"reasoning","id":"rs_1","summary":[{"type":"summary_text","text":"thinking"}]}`,
			want:    ItemKindReasoning,
			check: func(t *testing.T, item Item) {
				r := item.(*ReasoningItem)
				if len(r.Summary) != 1 || r.Summary[0].Text != "thinking" {
					t.Errorf("Summary = %+v", r.Summary)
				}
			},
		},
		{
			name:    "function call",
			payload: `{"type":"function_call","id":"fc_1","call_id":"call_1","name":"get_weather","arguments":"{\"city\":\"Oslo\"}"}`,
			want:    ItemKindFunctionCall,
			check: func(t *testing.T, item Item) {
				f := item.(*FunctionCallItem)
				if f.Name != "get_weather" || f.CallID != "call_1" {
					t.Errorf("call = %+v", f)
				}
			},
		},
		{
			name:    "custom tool call",
			payload: `{"type":"custom_tool_call","id":"ct_1","name":"patch","input":"diff"}`,
			want:    ItemKindCustomToolCall,
		},
		{
			name:    "mcp call",
			payload: `{"type":"mcp_call","id":"mcp_1","server_label":"deploy","name":"rollout","arguments":"{}"}`,
			want:    ItemKindMCPCall,
		},
		{
			name:    "code interpreter call",
			payload: `{"type":"code_interpreter_call","id":"ci_1","code":"print(1)","status":"completed"}`,
			want:    ItemKindCodeInterpreterCall,
		},
		{
			name:    "image generation call",
			payload: `{"type":"image_generation_call","id":"ig_1","status":"generating"}`,
			want:    ItemKindImageGenerationCall,
		},
		{
			name:    "mcp list tools",
			payload: `{"type":"mcp_list_tools","id":"lt_1","server_label":"deploy","tools":[{"name":"rollout"}]}`,
			want:    ItemKindMCPListTools,
			check: func(t *testing.T, item Item) {
				l := item.(*MCPListToolsItem)
				if len(l.Tools) != 1 || l.Tools[0].Name != "rollout" {
					t.Errorf("Tools = %+v", l.Tools)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := UnmarshalItem([]byte(tt.payload))
			if err != nil {
				t.Fatalf("UnmarshalItem: %v", err)
			}
			if item.Kind() != tt.want {
				t.Fatalf("Kind = %q, want %q", item.Kind(), tt.want)
			}
			if tt.check != nil {
				tt.check(t, item)
			}
		})
	}
}

func TestUnmarshalItemUnknownKind(t *testing.T) {
	payload := `{"type":"quantum_call","id":"q_1","flux":42}`
	item, err := UnmarshalItem([]byte(payload))
	if err != nil {
		t.Fatalf("UnmarshalItem: %v", err)
	}
	if item.Kind() != "quantum_call" {
		t.Errorf("Kind = %q, want quantum_call", item.Kind())
	}
	if item.ItemID() != "q_1" {
		t.Errorf("ItemID = %q, want q_1", item.ItemID())
	}

	// Raw bytes round-trip verbatim.
	out, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != payload {
		t.Errorf("round-trip = %s, want %s", out, payload)
	}
}

func TestItemListUnmarshal(t *testing.T) {
	var resp Response
	payload := `{"id":"resp_1","output":[{"type":"message","id":"msg_1","content":[]},{"type":"function_call","id":"fc_1","arguments":""}]}`
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(resp.Output) != 2 {
		t.Fatalf("len(Output) = %d, want 2", len(resp.Output))
	}
	if resp.Output[0].Kind() != ItemKindMessage {
		t.Errorf("Output[0].Kind = %q, want message", resp.Output[0].Kind())
	}
	if resp.Output[1].Kind() != ItemKindFunctionCall {
		t.Errorf("Output[1].Kind = %q, want function_call", resp.Output[1].Kind())
	}
}

func TestResponseClone(t *testing.T) {
	orig := &Response{
		ID:     "resp_1",
		Status: StatusInProgress,
		Output: ItemList{
			&MessageItem{Type: ItemKindMessage, ID: "msg_1", Content: []ContentPart{{Type: PartTypeOutputText, Text: "hi"}}},
			nil, // positional hole
		},
		Usage:    &Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3},
		Metadata: map[string]string{"k": "v"},
	}

	clone := orig.Clone()
	clone.Output[0].(*MessageItem).Content[0].Text = "mutated"
	clone.Usage.TotalTokens = 99
	clone.Metadata["k"] = "mutated"

	if got := orig.Output[0].(*MessageItem).Content[0].Text; got != "hi" {
		t.Errorf("Content mutated through clone: %q", got)
	}
	if orig.Usage.TotalTokens != 3 {
		t.Errorf("Usage mutated through clone: %d", orig.Usage.TotalTokens)
	}
	if orig.Metadata["k"] != "v" {
		t.Errorf("Metadata mutated through clone: %q", orig.Metadata["k"])
	}
	if clone.Output[1] != nil {
		t.Errorf("Output[1] = %v, want preserved nil hole", clone.Output[1])
	}
}

func TestCloneNilReceivers(t *testing.T) {
	var r *Response
	if r.Clone() != nil {
		t.Error("nil Response.Clone() != nil")
	}
	var d *ErrorDetail
	if d.Clone() != nil {
		t.Error("nil ErrorDetail.Clone() != nil")
	}
}
