package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/halcyon-ai/respstream/protocol"
)

// impliedKind maps an item-scoped event type to the item kind whose
// incremental sub-protocol it belongs to. Unknown and non-item event types
// report false.
func impliedKind(t protocol.EventType) (protocol.ItemKind, bool) {
	switch t {
	case protocol.EventContentPartAdded,
		protocol.EventContentPartDone,
		protocol.EventOutputTextDelta,
		protocol.EventOutputTextDone,
		protocol.EventOutputTextAnnotationAdd,
		protocol.EventRefusalDelta,
		protocol.EventRefusalDone:
		return protocol.ItemKindMessage, true

	case protocol.EventReasoningSummaryPartAdded,
		protocol.EventReasoningSummaryPartDone,
		protocol.EventReasoningSummaryTextDelta,
		protocol.EventReasoningSummaryTextDone,
		protocol.EventReasoningTextDelta,
		protocol.EventReasoningTextDone:
		return protocol.ItemKindReasoning, true

	case protocol.EventFunctionCallArgumentsDelta,
		protocol.EventFunctionCallArgumentsDone:
		return protocol.ItemKindFunctionCall, true

	case protocol.EventCustomToolCallInputDelta,
		protocol.EventCustomToolCallInputDone:
		return protocol.ItemKindCustomToolCall, true

	case protocol.EventMCPCallArgumentsDelta,
		protocol.EventMCPCallArgumentsDone,
		protocol.EventMCPCallInProgress,
		protocol.EventMCPCallCompleted,
		protocol.EventMCPCallFailed:
		return protocol.ItemKindMCPCall, true

	case protocol.EventMCPListToolsInProgress,
		protocol.EventMCPListToolsCompleted,
		protocol.EventMCPListToolsFailed:
		return protocol.ItemKindMCPListTools, true

	case protocol.EventCodeInterpreterInProgress,
		protocol.EventCodeInterpreterInterpreting,
		protocol.EventCodeInterpreterCompleted,
		protocol.EventCodeInterpreterCodeDelta,
		protocol.EventCodeInterpreterCodeDone:
		return protocol.ItemKindCodeInterpreterCall, true

	case protocol.EventImageGenInProgress,
		protocol.EventImageGenGenerating,
		protocol.EventImageGenCompleted,
		protocol.EventImageGenPartialImage:
		return protocol.ItemKindImageGenerationCall, true

	default:
		return "", false
	}
}

// newPlaceholder builds the minimally-valid in_progress shell for the item
// kind the event implies. The id comes from the event when the service
// already assigned one, otherwise it is generated; a later event carrying
// the real id re-indexes the item.
func newPlaceholder(ev protocol.Event) protocol.Item {
	id := ev.ItemID
	if id == "" {
		id = fmt.Sprintf("item_%s", uuid.NewString())
	}

	kind, known := impliedKind(ev.Type)
	if !known {
		return protocol.NewUnknownItem(id)
	}

	switch kind {
	case protocol.ItemKindMessage:
		return &protocol.MessageItem{
			Type:    protocol.ItemKindMessage,
			ID:      id,
			Status:  protocol.ItemStatusInProgress,
			Role:    "assistant",
			Content: []protocol.ContentPart{},
		}
	case protocol.ItemKindReasoning:
		return &protocol.ReasoningItem{
			Type:    protocol.ItemKindReasoning,
			ID:      id,
			Status:  protocol.ItemStatusInProgress,
			Summary: []protocol.SummaryPart{},
		}
	case protocol.ItemKindFunctionCall:
		return &protocol.FunctionCallItem{Type: protocol.ItemKindFunctionCall, ID: id}
	case protocol.ItemKindCustomToolCall:
		return &protocol.CustomToolCallItem{Type: protocol.ItemKindCustomToolCall, ID: id}
	case protocol.ItemKindMCPCall:
		return &protocol.MCPCallItem{Type: protocol.ItemKindMCPCall, ID: id}
	case protocol.ItemKindMCPListTools:
		return &protocol.MCPListToolsItem{
			Type:  protocol.ItemKindMCPListTools,
			ID:    id,
			Tools: []protocol.MCPToolDescriptor{},
		}
	case protocol.ItemKindCodeInterpreterCall:
		return &protocol.CodeInterpreterCallItem{
			Type:   protocol.ItemKindCodeInterpreterCall,
			ID:     id,
			Status: protocol.ItemStatusInProgress,
		}
	case protocol.ItemKindImageGenerationCall:
		return &protocol.ImageGenerationCallItem{
			Type:   protocol.ItemKindImageGenerationCall,
			ID:     id,
			Status: protocol.ItemStatusInProgress,
		}
	default:
		return protocol.NewUnknownItem(id)
	}
}

// applyToItem applies one event's incremental mutation to an item of the
// matching kind. Delta events append to the accumulating field; done events
// replace it authoritatively, reconciling any lost or duplicated deltas.
// Events that only feed augmentations (raw reasoning text, partial images)
// or only mark sibling status (mcp_call, mcp_list_tools lifecycle) leave the
// item untouched.
func applyToItem(item protocol.Item, ev protocol.Event) {
	switch it := item.(type) {
	case *protocol.MessageItem:
		applyMessage(it, ev)
	case *protocol.ReasoningItem:
		applyReasoning(it, ev)
	case *protocol.FunctionCallItem:
		switch ev.Type {
		case protocol.EventFunctionCallArgumentsDelta:
			it.Arguments += ev.Delta
		case protocol.EventFunctionCallArgumentsDone:
			it.Arguments = ev.Arguments
		}
	case *protocol.CustomToolCallItem:
		switch ev.Type {
		case protocol.EventCustomToolCallInputDelta:
			it.Input += ev.Delta
		case protocol.EventCustomToolCallInputDone:
			it.Input = ev.Input
		}
	case *protocol.MCPCallItem:
		switch ev.Type {
		case protocol.EventMCPCallArgumentsDelta:
			it.Arguments += ev.Delta
		case protocol.EventMCPCallArgumentsDone:
			it.Arguments = ev.Arguments
		}
	case *protocol.CodeInterpreterCallItem:
		switch ev.Type {
		case protocol.EventCodeInterpreterInProgress:
			it.Status = protocol.ItemStatusInProgress
		case protocol.EventCodeInterpreterInterpreting:
			it.Status = protocol.ItemStatusInterpreting
		case protocol.EventCodeInterpreterCompleted:
			it.Status = protocol.ItemStatusCompleted
		case protocol.EventCodeInterpreterCodeDelta:
			it.Code += ev.Delta
		case protocol.EventCodeInterpreterCodeDone:
			it.Code = ev.Code
		}
	case *protocol.ImageGenerationCallItem:
		switch ev.Type {
		case protocol.EventImageGenInProgress:
			it.Status = protocol.ItemStatusInProgress
		case protocol.EventImageGenGenerating:
			it.Status = protocol.ItemStatusGenerating
		case protocol.EventImageGenCompleted:
			it.Status = protocol.ItemStatusCompleted
		}
	}
}

func applyMessage(m *protocol.MessageItem, ev protocol.Event) {
	ci := indexOf(ev.ContentIndex)

	switch ev.Type {
	case protocol.EventContentPartAdded, protocol.EventContentPartDone:
		part := ensurePart(m, ci)
		if ev.Part != nil {
			*part = ev.Part.Clone()
		}

	case protocol.EventOutputTextDelta:
		part := ensurePartOfType(m, ci, protocol.PartTypeOutputText)
		part.Text += ev.Delta

	case protocol.EventOutputTextDone:
		part := ensurePartOfType(m, ci, protocol.PartTypeOutputText)
		part.Text = ev.Text

	case protocol.EventOutputTextAnnotationAdd:
		part := ensurePartOfType(m, ci, protocol.PartTypeOutputText)
		ai := indexOf(ev.AnnotationIndex)
		for len(part.Annotations) <= ai {
			part.Annotations = append(part.Annotations, nil)
		}
		part.Annotations[ai] = append([]byte(nil), ev.Annotation...)

	case protocol.EventRefusalDelta:
		part := ensurePartOfType(m, ci, protocol.PartTypeRefusal)
		part.Refusal += ev.Delta

	case protocol.EventRefusalDone:
		part := ensurePartOfType(m, ci, protocol.PartTypeRefusal)
		part.Refusal = ev.Refusal
	}
}

func applyReasoning(r *protocol.ReasoningItem, ev protocol.Event) {
	si := indexOf(ev.SummaryIndex)

	switch ev.Type {
	case protocol.EventReasoningSummaryPartAdded, protocol.EventReasoningSummaryPartDone:
		ensureSummary(r, si)
		if ev.Part != nil {
			r.Summary[si] = protocol.SummaryPart{Type: ev.Part.Type, Text: ev.Part.Text}
		}

	case protocol.EventReasoningSummaryTextDelta:
		ensureSummary(r, si)
		r.Summary[si].Text += ev.Delta

	case protocol.EventReasoningSummaryTextDone:
		ensureSummary(r, si)
		r.Summary[si].Text = ev.Text
	}
	// Raw reasoning-text deltas never touch the item shape; they accumulate
	// as a transcript augmentation.
}

// ensurePart grows the content array so idx is addressable and returns the
// part at idx.
func ensurePart(m *protocol.MessageItem, idx int) *protocol.ContentPart {
	for len(m.Content) <= idx {
		m.Content = append(m.Content, protocol.ContentPart{Type: protocol.PartTypeOutputText})
	}
	return &m.Content[idx]
}

// ensurePartOfType is ensurePart plus the replacement rule: a part of a
// mismatched type at idx is replaced wholesale, never merged.
func ensurePartOfType(m *protocol.MessageItem, idx int, partType string) *protocol.ContentPart {
	part := ensurePart(m, idx)
	if part.Type != partType {
		*part = protocol.ContentPart{Type: partType}
	}
	return part
}

func ensureSummary(r *protocol.ReasoningItem, idx int) {
	for len(r.Summary) <= idx {
		r.Summary = append(r.Summary, protocol.SummaryPart{Type: "summary_text"})
	}
}

func indexOf(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// applyAugments accumulates the sub-streams an item's shape cannot carry.
func applyAugments(om *OutputMessage, ev protocol.Event) {
	switch ev.Type {
	case protocol.EventImageGenPartialImage:
		a := om.augments()
		a.PartialImages = append(a.PartialImages, PartialImage{
			Index: ev.PartialImageIndex,
			B64:   ev.PartialImageB64,
		})

	case protocol.EventCustomToolCallInputDelta:
		a := om.augments()
		a.CustomInputDeltas = append(a.CustomInputDeltas, ev.Delta)

	case protocol.EventReasoningTextDelta:
		a := om.augments()
		if a.ReasoningText == nil {
			a.ReasoningText = make(map[int]string)
		}
		ci := indexOf(ev.ContentIndex)
		a.ReasoningText[ci] += ev.Delta

	case protocol.EventReasoningTextDone:
		a := om.augments()
		if a.ReasoningText == nil {
			a.ReasoningText = make(map[int]string)
		}
		a.ReasoningText[indexOf(ev.ContentIndex)] = ev.Text
	}
}
