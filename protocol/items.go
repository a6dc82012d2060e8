package protocol

import "encoding/json"

// ItemKind discriminates between output item kinds.
type ItemKind string

const (
	ItemKindMessage             ItemKind = "message"
	ItemKindReasoning           ItemKind = "reasoning"
	ItemKindFunctionCall        ItemKind = "function_call"
	ItemKindCustomToolCall      ItemKind = "custom_tool_call"
	ItemKindMCPCall             ItemKind = "mcp_call"
	ItemKindCodeInterpreterCall ItemKind = "code_interpreter_call"
	ItemKindImageGenerationCall ItemKind = "image_generation_call"
	ItemKindMCPListTools        ItemKind = "mcp_list_tools"
)

// Item status values shared across kinds.
const (
	ItemStatusInProgress   = "in_progress"
	ItemStatusInterpreting = "interpreting"
	ItemStatusGenerating   = "generating"
	ItemStatusCompleted    = "completed"
	ItemStatusFailed       = "failed"
)

// Item is the interface for all output item kinds.
type Item interface {
	Kind() ItemKind
	ItemID() string
	CloneItem() Item
}

// ContentPart is one element of a message item's content array: either
// generated text (with optional annotations) or a refusal.
type ContentPart struct {
	Type        string            `json:"type"`
	Text        string            `json:"text,omitempty"`
	Refusal     string            `json:"refusal,omitempty"`
	Annotations []json.RawMessage `json:"annotations,omitempty"`
}

// Content part types.
const (
	PartTypeOutputText = "output_text"
	PartTypeRefusal    = "refusal"
)

// Clone returns a deep copy of the content part.
func (p ContentPart) Clone() ContentPart {
	out := p
	if p.Annotations != nil {
		out.Annotations = make([]json.RawMessage, len(p.Annotations))
		for i, a := range p.Annotations {
			out.Annotations[i] = cloneRaw(a)
		}
	}
	return out
}

// MessageItem is a generated assistant message.
type MessageItem struct {
	Type    ItemKind      `json:"type"`
	ID      string        `json:"id,omitempty"`
	Status  string        `json:"status,omitempty"`
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content"`
}

func (m *MessageItem) Kind() ItemKind { return ItemKindMessage }
func (m *MessageItem) ItemID() string { return m.ID }

// CloneItem returns a deep copy of the message.
func (m *MessageItem) CloneItem() Item {
	out := *m
	if m.Content != nil {
		out.Content = make([]ContentPart, len(m.Content))
		for i, p := range m.Content {
			out.Content[i] = p.Clone()
		}
	}
	return &out
}

// SummaryPart is one element of a reasoning item's summary array.
type SummaryPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ReasoningTextPart is one element of a reasoning item's content array.
// Builders never mutate these; raw reasoning-text deltas accumulate as a
// session augmentation instead. The field exists so snapshots that already
// carry reasoning content round-trip verbatim.
type ReasoningTextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ReasoningItem is a generated reasoning trace.
type ReasoningItem struct {
	Type    ItemKind            `json:"type"`
	ID      string              `json:"id,omitempty"`
	Status  string              `json:"status,omitempty"`
	Summary []SummaryPart       `json:"summary"`
	Content []ReasoningTextPart `json:"content,omitempty"`
}

func (r *ReasoningItem) Kind() ItemKind { return ItemKindReasoning }
func (r *ReasoningItem) ItemID() string { return r.ID }

// CloneItem returns a deep copy of the reasoning item.
func (r *ReasoningItem) CloneItem() Item {
	out := *r
	out.Summary = append([]SummaryPart(nil), r.Summary...)
	out.Content = append([]ReasoningTextPart(nil), r.Content...)
	return &out
}

// FunctionCallItem is a call to a caller-declared function tool.
type FunctionCallItem struct {
	Type      ItemKind `json:"type"`
	ID        string   `json:"id,omitempty"`
	CallID    string   `json:"call_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Arguments string   `json:"arguments"`
	Status    string   `json:"status,omitempty"`
}

func (f *FunctionCallItem) Kind() ItemKind { return ItemKindFunctionCall }
func (f *FunctionCallItem) ItemID() string { return f.ID }

// CloneItem returns a copy of the function call.
func (f *FunctionCallItem) CloneItem() Item {
	out := *f
	return &out
}

// CustomToolCallItem is a call to a freeform custom tool.
type CustomToolCallItem struct {
	Type   ItemKind `json:"type"`
	ID     string   `json:"id,omitempty"`
	CallID string   `json:"call_id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Input  string   `json:"input"`
}

func (c *CustomToolCallItem) Kind() ItemKind { return ItemKindCustomToolCall }
func (c *CustomToolCallItem) ItemID() string { return c.ID }

// CloneItem returns a copy of the custom tool call.
func (c *CustomToolCallItem) CloneItem() Item {
	out := *c
	return &out
}

// MCPCallItem is a multi-step call against an external MCP server.
type MCPCallItem struct {
	Type        ItemKind `json:"type"`
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	ServerLabel string   `json:"server_label,omitempty"`
	Arguments   string   `json:"arguments"`
	Output      string   `json:"output,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (m *MCPCallItem) Kind() ItemKind { return ItemKindMCPCall }
func (m *MCPCallItem) ItemID() string { return m.ID }

// CloneItem returns a copy of the MCP call.
func (m *MCPCallItem) CloneItem() Item {
	out := *m
	return &out
}

// CodeInterpreterCallItem is a code execution call.
type CodeInterpreterCallItem struct {
	Type        ItemKind          `json:"type"`
	ID          string            `json:"id,omitempty"`
	Status      string            `json:"status,omitempty"`
	ContainerID string            `json:"container_id,omitempty"`
	Code        string            `json:"code"`
	Outputs     []json.RawMessage `json:"outputs,omitempty"`
}

func (c *CodeInterpreterCallItem) Kind() ItemKind { return ItemKindCodeInterpreterCall }
func (c *CodeInterpreterCallItem) ItemID() string { return c.ID }

// CloneItem returns a deep copy of the code interpreter call.
func (c *CodeInterpreterCallItem) CloneItem() Item {
	out := *c
	if c.Outputs != nil {
		out.Outputs = make([]json.RawMessage, len(c.Outputs))
		for i, o := range c.Outputs {
			out.Outputs[i] = cloneRaw(o)
		}
	}
	return &out
}

// ImageGenerationCallItem is a generated image. Result holds the final
// base64 payload; partial frames are never stored here, they accumulate as a
// transcript augmentation.
type ImageGenerationCallItem struct {
	Type   ItemKind `json:"type"`
	ID     string   `json:"id,omitempty"`
	Status string   `json:"status,omitempty"`
	Result string   `json:"result,omitempty"`
}

func (i *ImageGenerationCallItem) Kind() ItemKind { return ItemKindImageGenerationCall }
func (i *ImageGenerationCallItem) ItemID() string { return i.ID }

// CloneItem returns a copy of the image generation call.
func (i *ImageGenerationCallItem) CloneItem() Item {
	out := *i
	return &out
}

// MCPToolDescriptor describes one tool advertised by an MCP server.
type MCPToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// MCPListToolsItem is a tool listing fetched from an MCP server. It has no
// incremental sub-protocol; the item-done event populates it wholesale.
type MCPListToolsItem struct {
	Type        ItemKind            `json:"type"`
	ID          string              `json:"id,omitempty"`
	ServerLabel string              `json:"server_label,omitempty"`
	Tools       []MCPToolDescriptor `json:"tools"`
	Error       string              `json:"error,omitempty"`
}

func (m *MCPListToolsItem) Kind() ItemKind { return ItemKindMCPListTools }
func (m *MCPListToolsItem) ItemID() string { return m.ID }

// CloneItem returns a deep copy of the tool listing.
func (m *MCPListToolsItem) CloneItem() Item {
	out := *m
	if m.Tools != nil {
		out.Tools = make([]MCPToolDescriptor, len(m.Tools))
		for i, t := range m.Tools {
			t.InputSchema = cloneRaw(t.InputSchema)
			out.Tools[i] = t
		}
	}
	return &out
}

// UnknownItem preserves an output item of a kind this package does not know
// about. The raw bytes round-trip verbatim so forward compatibility degrades
// gracefully instead of dropping data.
type UnknownItem struct {
	kind ItemKind
	id   string
	raw  json.RawMessage
}

func (u *UnknownItem) Kind() ItemKind { return u.kind }
func (u *UnknownItem) ItemID() string { return u.id }

// CloneItem returns a copy of the unknown item.
func (u *UnknownItem) CloneItem() Item {
	return &UnknownItem{kind: u.kind, id: u.id, raw: cloneRaw(u.raw)}
}

// MarshalJSON emits the original raw bytes.
func (u *UnknownItem) MarshalJSON() ([]byte, error) {
	if u.raw == nil {
		return []byte("null"), nil
	}
	return u.raw, nil
}

// NewUnknownItem builds a placeholder for an item of an unrecognized kind,
// so events for it still have a transcript entry to attach to.
func NewUnknownItem(id string) *UnknownItem {
	raw, _ := json.Marshal(map[string]string{"id": id})
	return &UnknownItem{id: id, raw: raw}
}

// UnmarshalItem decodes one output item by its type discriminant. Unknown
// kinds are preserved raw rather than rejected.
func UnmarshalItem(data []byte) (Item, error) {
	var probe struct {
		Type ItemKind `json:"type"`
		ID   string   `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case ItemKindMessage:
		var it MessageItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	case ItemKindReasoning:
		var it ReasoningItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	case ItemKindFunctionCall:
		var it FunctionCallItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	case ItemKindCustomToolCall:
		var it CustomToolCallItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	case ItemKindMCPCall:
		var it MCPCallItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	case ItemKindCodeInterpreterCall:
		var it CodeInterpreterCallItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	case ItemKindImageGenerationCall:
		var it ImageGenerationCallItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	case ItemKindMCPListTools:
		var it MCPListToolsItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, err
		}
		return &it, nil
	default:
		return &UnknownItem{
			kind: probe.Type,
			id:   probe.ID,
			raw:  cloneRaw(data),
		}, nil
	}
}
