package protocol

import "encoding/json"

// EventType discriminates between stream event kinds.
type EventType string

// Response lifecycle events.
const (
	EventResponseCreated    EventType = "response.created"
	EventResponseQueued     EventType = "response.queued"
	EventResponseInProgress EventType = "response.in_progress"
	EventResponseCompleted  EventType = "response.completed"
	EventResponseFailed     EventType = "response.failed"
	EventResponseIncomplete EventType = "response.incomplete"
	EventError              EventType = "error"
)

// Output item structure events.
const (
	EventOutputItemAdded EventType = "response.output_item.added"
	EventOutputItemDone  EventType = "response.output_item.done"
)

// Message content events.
const (
	EventContentPartAdded        EventType = "response.content_part.added"
	EventContentPartDone         EventType = "response.content_part.done"
	EventOutputTextDelta         EventType = "response.output_text.delta"
	EventOutputTextDone          EventType = "response.output_text.done"
	EventOutputTextAnnotationAdd EventType = "response.output_text.annotation.added"
	EventRefusalDelta            EventType = "response.refusal.delta"
	EventRefusalDone             EventType = "response.refusal.done"
)

// Tool call events.
const (
	EventFunctionCallArgumentsDelta EventType = "response.function_call_arguments.delta"
	EventFunctionCallArgumentsDone  EventType = "response.function_call_arguments.done"
	EventCustomToolCallInputDelta   EventType = "response.custom_tool_call_input.delta"
	EventCustomToolCallInputDone    EventType = "response.custom_tool_call_input.done"
	EventMCPCallArgumentsDelta      EventType = "response.mcp_call_arguments.delta"
	EventMCPCallArgumentsDone       EventType = "response.mcp_call_arguments.done"
	EventMCPCallInProgress          EventType = "response.mcp_call.in_progress"
	EventMCPCallCompleted           EventType = "response.mcp_call.completed"
	EventMCPCallFailed              EventType = "response.mcp_call.failed"
	EventMCPListToolsInProgress     EventType = "response.mcp_list_tools.in_progress"
	EventMCPListToolsCompleted      EventType = "response.mcp_list_tools.completed"
	EventMCPListToolsFailed         EventType = "response.mcp_list_tools.failed"
)

// Reasoning events.
const (
	EventReasoningSummaryPartAdded EventType = "response.reasoning_summary_part.added"
	EventReasoningSummaryPartDone  EventType = "response.reasoning_summary_part.done"
	EventReasoningSummaryTextDelta EventType = "response.reasoning_summary_text.delta"
	EventReasoningSummaryTextDone  EventType = "response.reasoning_summary_text.done"
	EventReasoningTextDelta        EventType = "response.reasoning_text.delta"
	EventReasoningTextDone         EventType = "response.reasoning_text.done"
)

// Code interpreter events.
const (
	EventCodeInterpreterInProgress   EventType = "response.code_interpreter_call.in_progress"
	EventCodeInterpreterInterpreting EventType = "response.code_interpreter_call.interpreting"
	EventCodeInterpreterCompleted    EventType = "response.code_interpreter_call.completed"
	EventCodeInterpreterCodeDelta    EventType = "response.code_interpreter_call_code.delta"
	EventCodeInterpreterCodeDone     EventType = "response.code_interpreter_call_code.done"
)

// Image generation events.
const (
	EventImageGenInProgress   EventType = "response.image_generation_call.in_progress"
	EventImageGenGenerating   EventType = "response.image_generation_call.generating"
	EventImageGenCompleted    EventType = "response.image_generation_call.completed"
	EventImageGenPartialImage EventType = "response.image_generation_call.partial_image"
)

// Audio events. These are scoped to the whole response, not an output item.
const (
	EventAudioDelta           EventType = "response.audio.delta"
	EventAudioDone            EventType = "response.audio.done"
	EventAudioTranscriptDelta EventType = "response.audio.transcript.delta"
	EventAudioTranscriptDone  EventType = "response.audio.transcript.done"
)

// Event is the envelope for every stream event. The service discriminates
// events by the Type string; all other fields are populated per kind, so the
// envelope carries the union of their payloads. Unknown future kinds still
// parse into a usable envelope as long as they follow the generic
// {output_index, item_id?} shape.
type Event struct {
	Type           EventType `json:"type"`
	SequenceNumber int       `json:"sequence_number,omitempty"`

	// Lifecycle payload. Present on response.* lifecycle events.
	Response *Response `json:"response,omitempty"`

	// Item addressing. OutputIndex is a pointer so index 0 and "absent"
	// stay distinguishable.
	OutputIndex *int   `json:"output_index,omitempty"`
	ItemID      string `json:"item_id,omitempty"`

	// Sub-field addressing within an item.
	ContentIndex    *int `json:"content_index,omitempty"`
	SummaryIndex    *int `json:"summary_index,omitempty"`
	AnnotationIndex *int `json:"annotation_index,omitempty"`

	// Incremental payloads.
	Delta      string          `json:"delta,omitempty"`
	Text       string          `json:"text,omitempty"`
	Refusal    string          `json:"refusal,omitempty"`
	Arguments  string          `json:"arguments,omitempty"`
	Input      string          `json:"input,omitempty"`
	Annotation json.RawMessage `json:"annotation,omitempty"`

	// Structural payloads. Item stays raw until a handler needs it, the
	// same way unknown kinds survive untouched in raw event history.
	Item json.RawMessage `json:"item,omitempty"`
	Part *ContentPart    `json:"part,omitempty"`

	// Image generation payload.
	PartialImageB64   string `json:"partial_image_b64,omitempty"`
	PartialImageIndex int    `json:"partial_image_index,omitempty"`

	// Error payload. Code doubles as the final code string of
	// response.code_interpreter_call_code.done.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`
}

// ParseEvent parses a single JSON event payload. Events with an unknown Type
// are returned as-is rather than rejected; only malformed JSON errors.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// ParsedItem decodes the event's item payload, if any.
func (e Event) ParsedItem() (Item, error) {
	if len(e.Item) == 0 {
		return nil, nil
	}
	return UnmarshalItem(e.Item)
}

// Clone returns a structural deep copy of the event.
func (e Event) Clone() Event {
	out := e
	if e.Response != nil {
		out.Response = e.Response.Clone()
	}
	out.OutputIndex = cloneIntPtr(e.OutputIndex)
	out.ContentIndex = cloneIntPtr(e.ContentIndex)
	out.SummaryIndex = cloneIntPtr(e.SummaryIndex)
	out.AnnotationIndex = cloneIntPtr(e.AnnotationIndex)
	out.Annotation = cloneRaw(e.Annotation)
	out.Item = cloneRaw(e.Item)
	if e.Part != nil {
		p := e.Part.Clone()
		out.Part = &p
	}
	return out
}

// ErrorDetail is the payload of a protocol-level error event, and the error
// field of a failed response snapshot.
type ErrorDetail struct {
	Code           string `json:"code,omitempty"`
	Message        string `json:"message"`
	Param          string `json:"param,omitempty"`
	SequenceNumber int    `json:"sequence_number,omitempty"`
}

// Clone returns a copy of the error detail.
func (d *ErrorDetail) Clone() *ErrorDetail {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}
