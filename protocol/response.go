package protocol

import "encoding/json"

// Status is the lifecycle status of a response (and of the session tracking
// it). StatusIdle is the session-local zero state before any lifecycle event
// arrives; the service itself never reports it.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusIncomplete Status = "incomplete"
)

// Terminal reports whether the status ends the response lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusIncomplete:
		return true
	default:
		return false
	}
}

// ItemList is an ordered list of output items that decodes each element
// through the item kind discriminant.
type ItemList []Item

// UnmarshalJSON implements json.Unmarshaler.
func (l *ItemList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(ItemList, 0, len(raws))
	for _, raw := range raws {
		item, err := UnmarshalItem(raw)
		if err != nil {
			return err
		}
		out = append(out, item)
	}
	*l = out
	return nil
}

// Clone returns a deep copy of the list.
func (l ItemList) Clone() ItemList {
	if l == nil {
		return nil
	}
	out := make(ItemList, len(l))
	for i, item := range l {
		// Positional padding can leave nil holes until their events arrive.
		if item == nil {
			continue
		}
		out[i] = item.CloneItem()
	}
	return out
}

// Usage tracks token usage reported on the final response object.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// IncompleteDetails explains why a response ended incomplete.
type IncompleteDetails struct {
	Reason string `json:"reason,omitempty"`
}

// Response is the canonical, protocol-shaped projection of one generation
// response: top-level metadata plus output items indexed positionally by
// output index.
type Response struct {
	ID                string             `json:"id,omitempty"`
	Object            string             `json:"object,omitempty"`
	CreatedAt         int64              `json:"created_at,omitempty"`
	Status            Status             `json:"status,omitempty"`
	Model             string             `json:"model,omitempty"`
	Output            ItemList           `json:"output"`
	Error             *ErrorDetail       `json:"error,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Usage             *Usage             `json:"usage,omitempty"`
	Metadata          map[string]string  `json:"metadata,omitempty"`
}

// Clone returns a structural deep copy of the response.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	out := *r
	out.Output = r.Output.Clone()
	out.Error = r.Error.Clone()
	if r.IncompleteDetails != nil {
		d := *r.IncompleteDetails
		out.IncompleteDetails = &d
	}
	if r.Usage != nil {
		u := *r.Usage
		out.Usage = &u
	}
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
