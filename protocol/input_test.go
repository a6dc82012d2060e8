package protocol

import "testing"

func TestNewUserTextInput(t *testing.T) {
	in := NewUserTextInput("hello there")
	if in.Type != InputTypeMessage || in.Role != "user" {
		t.Fatalf("input = %+v", in)
	}
	text, ok := in.TextContent()
	if !ok || text != "hello there" {
		t.Errorf("TextContent = (%q, %v), want (hello there, true)", text, ok)
	}
}

func TestTextContentNonString(t *testing.T) {
	in := InputItem{Content: []byte(`[{"type":"input_text","text":"hi"}]`)}
	if _, ok := in.TextContent(); ok {
		t.Error("TextContent reported ok for a part array")
	}
}

func TestNewApprovalResponse(t *testing.T) {
	in := NewApprovalResponse("apr_1", true)
	if in.Type != InputTypeApprovalResponse {
		t.Errorf("Type = %q", in.Type)
	}
	if in.ApprovalRequestID != "apr_1" {
		t.Errorf("ApprovalRequestID = %q", in.ApprovalRequestID)
	}
	if in.Approve == nil || !*in.Approve {
		t.Errorf("Approve = %v, want true", in.Approve)
	}

	clone := in.Clone()
	*clone.Approve = false
	if !*in.Approve {
		t.Error("Approve mutated through clone")
	}
}
