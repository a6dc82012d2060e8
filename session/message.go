package session

import "github.com/halcyon-ai/respstream/protocol"

// Message is one entry of the transcript: either an externally-supplied
// input item or a generated output item. Exactly one of Input and Output is
// set.
type Message struct {
	Input  *protocol.InputItem
	Output *OutputMessage
}

// IsInput reports whether the message wraps an input item.
func (m Message) IsInput() bool { return m.Input != nil }

// Clone returns a structural deep copy of the message.
func (m Message) Clone() Message {
	var out Message
	if m.Input != nil {
		in := m.Input.Clone()
		out.Input = &in
	}
	if m.Output != nil {
		out.Output = m.Output.Clone()
	}
	return out
}

// OutputMessage wraps one generated output item together with the raw events
// that produced it and any accumulated augmentations.
type OutputMessage struct {
	// Item is the materialized output item.
	Item protocol.Item

	// OutputIndex is the position the service assigned the item within the
	// current response.
	OutputIndex int

	// Events is the ordered raw event history for the item, kept for
	// replay and debugging.
	Events []protocol.Event

	// Augments holds accumulated sub-streams the item's own shape cannot
	// represent. Nil until the first augmentation arrives.
	Augments *Augmentations
}

// Clone returns a structural deep copy of the output message.
func (om *OutputMessage) Clone() *OutputMessage {
	if om == nil {
		return nil
	}
	out := &OutputMessage{
		Item:        om.Item.CloneItem(),
		OutputIndex: om.OutputIndex,
	}
	if om.Events != nil {
		out.Events = make([]protocol.Event, len(om.Events))
		for i, ev := range om.Events {
			out.Events[i] = ev.Clone()
		}
	}
	out.Augments = om.Augments.Clone()
	return out
}

func (om *OutputMessage) augments() *Augmentations {
	if om.Augments == nil {
		om.Augments = &Augmentations{}
	}
	return om.Augments
}

// PartialImage is one intermediate frame of an image generation call.
type PartialImage struct {
	Index int
	B64   string
}

// Augmentations are auxiliary accumulated sub-streams attached to an output
// message: partial image frames, raw custom-tool-input deltas, and raw
// reasoning-text deltas keyed by content index.
type Augmentations struct {
	PartialImages     []PartialImage
	CustomInputDeltas []string
	ReasoningText     map[int]string
}

// Clone returns a deep copy of the augmentations.
func (a *Augmentations) Clone() *Augmentations {
	if a == nil {
		return nil
	}
	out := &Augmentations{
		PartialImages:     append([]PartialImage(nil), a.PartialImages...),
		CustomInputDeltas: append([]string(nil), a.CustomInputDeltas...),
	}
	if a.ReasoningText != nil {
		out.ReasoningText = make(map[int]string, len(a.ReasoningText))
		for k, v := range a.ReasoningText {
			out.ReasoningText[k] = v
		}
	}
	return out
}

// Snapshot bundles the full public state of a session at one point in time.
// All fields are deep copies; mutating them never affects the session.
type Snapshot struct {
	Transcript      []Message
	Status          protocol.Status
	Ended           bool
	Response        *protocol.Response
	LastError       *protocol.ErrorDetail
	AudioChunks     []string
	AudioTranscript string
}
