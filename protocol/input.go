package protocol

import "encoding/json"

// Input item types.
const (
	InputTypeMessage          = "message"
	InputTypeApprovalResponse = "mcp_approval_response"
)

// InputItem is one externally-supplied conversation input: a user message, a
// tool-approval response, or any other protocol input shape. Content stays
// raw because the protocol accepts both plain strings and part arrays there.
type InputItem struct {
	Type              string          `json:"type,omitempty"`
	ID                string          `json:"id,omitempty"`
	Role              string          `json:"role,omitempty"`
	Content           json.RawMessage `json:"content,omitempty"`
	ApprovalRequestID string          `json:"approval_request_id,omitempty"`
	Approve           *bool           `json:"approve,omitempty"`
}

// NewUserTextInput constructs a plain-text user message input.
func NewUserTextInput(text string) InputItem {
	content, _ := json.Marshal(text)
	return InputItem{
		Type:    InputTypeMessage,
		Role:    "user",
		Content: content,
	}
}

// NewApprovalResponse constructs a tool-approval response input for the
// given approval request.
func NewApprovalResponse(approvalRequestID string, approve bool) InputItem {
	a := approve
	return InputItem{
		Type:              InputTypeApprovalResponse,
		ApprovalRequestID: approvalRequestID,
		Approve:           &a,
	}
}

// TextContent returns the content as a plain string, if it is one.
func (it InputItem) TextContent() (string, bool) {
	if len(it.Content) == 0 || it.Content[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(it.Content, &s); err != nil {
		return "", false
	}
	return s, true
}

// Clone returns a structural deep copy of the input item.
func (it InputItem) Clone() InputItem {
	out := it
	out.Content = cloneRaw(it.Content)
	if it.Approve != nil {
		a := *it.Approve
		out.Approve = &a
	}
	return out
}
