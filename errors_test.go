package billinglogix

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindConfig, "config"},
		{KindValidation, "validation"},
		{KindAuth, "auth"},
		{KindTransport, "transport"},
		{KindParse, "parse"},
		{KindUnexpected, "unexpected"},
		{ErrorKind(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := newAPIError(KindValidation, "Invalid request path", nil)
	if err.Name != ErrorName {
		t.Errorf("expected name %q, got %q", ErrorName, err.Name)
	}
	if err.Error() != "BillingLogixApiError: Invalid request path" {
		t.Errorf("unexpected message %q", err.Error())
	}

	cause := errors.New("dial tcp: refused")
	wrapped := newAPIError(KindTransport, "Request Failure", cause)
	if !strings.Contains(wrapped.Error(), "dial tcp: refused") {
		t.Errorf("expected cause in message, got %q", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if err.Unwrap() != nil {
		t.Error("expected nil Unwrap without an error cause")
	}
}

func TestAPIErrorJSON(t *testing.T) {
	err := newAPIError(KindConfig, "Unsupported API version: v2", "v2")

	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("Marshal: %v", mErr)
	}
	var decoded map[string]any
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatalf("Unmarshal: %v", uErr)
	}
	if decoded["name"] != ErrorName || decoded["data"] != "v2" {
		t.Errorf("unexpected JSON %s", data)
	}
	if _, ok := decoded["stack"]; ok {
		t.Error("stack must not be serialized by default")
	}

	withStack := err.ToJSON(true)
	stack, _ := withStack["stack"].(string)
	if !strings.Contains(stack, "TestAPIErrorJSON") {
		t.Errorf("expected stack to include the creating test, got %q", stack)
	}
	if _, ok := err.ToJSON(false)["stack"]; ok {
		t.Error("ToJSON(false) must omit stack")
	}

	transport := newAPIError(KindTransport, "Request Failure", fmt.Errorf("timeout"))
	if got := transport.ToJSON(false)["data"]; got != "timeout" {
		t.Errorf("expected error data rendered as message, got %v", got)
	}
}

func TestUpstreamError(t *testing.T) {
	body := map[string]any{"error": map[string]any{"name": "NotFound"}}
	err := &UpstreamError{StatusCode: 404, Data: body}

	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("Marshal: %v", mErr)
	}
	if string(data) != `{"error":{"name":"NotFound"}}` {
		t.Errorf("expected body passed through, got %s", data)
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status in message, got %q", err.Error())
	}
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("call: %w", newAPIError(KindParse, "Error parsing response data", nil))
	if !IsParse(wrapped) {
		t.Error("expected IsParse through wrapping")
	}
	if IsTransport(wrapped) || IsConfig(wrapped) || IsValidation(wrapped) || IsAuth(wrapped) || IsUnexpected(wrapped) {
		t.Error("expected only IsParse to match")
	}
	if !IsUpstream(&UpstreamError{StatusCode: 500}) {
		t.Error("expected IsUpstream")
	}
	if IsUpstream(errors.New("plain")) {
		t.Error("plain error is not upstream")
	}
}
