package billinglogix

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/billinglogix/billinglogix-go/logger"
)

func TestValidateRequestOrder(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want string
	}{
		{"nil descriptor", nil, "Invalid request options"},
		{"empty method", &Request{Path: "/"}, "Invalid request method"},
		{"unsupported method", &Request{Method: "HEAD", Path: "/"}, "Unsupported request method"},
		{"empty path", &Request{Method: "GET"}, "Invalid request path"},
		{"root path", &Request{Method: "GET", Path: "/"}, "Invalid request path"},
		{"padded root path", &Request{Method: "GET", Path: "  /  ", Timeout: time.Millisecond}, "Invalid request path"},
		{"timeout too small", &Request{Method: "GET", Path: "/tags", Timeout: 999 * time.Millisecond}, "Unsupported request timeout"},
		{"timeout too large", &Request{Method: "GET", Path: "/tags", Timeout: 61 * time.Second}, "Unsupported request timeout"},
		{"object query value", &Request{Method: "GET", Path: "/tags", Query: map[string]any{"q": map[string]any{}}}, "Invalid request query params"},
		{"nested slice query value", &Request{Method: "GET", Path: "/tags", Query: map[string]any{"q": []any{[]int{1}}}}, "Invalid request query params"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRequest(tc.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			apiErr := err.(*APIError)
			if apiErr.Kind != KindValidation {
				t.Errorf("expected KindValidation, got %s", apiErr.Kind)
			}
			if apiErr.Message != tc.want {
				t.Errorf("expected %q, got %q", tc.want, apiErr.Message)
			}
			if tc.req != nil && apiErr.Data != tc.req {
				t.Error("expected descriptor as data")
			}
		})
	}
}

func TestValidateRequestAccepts(t *testing.T) {
	valid := []*Request{
		{Method: "get", Path: "tags"},
		{Method: "Delete", Path: "/tags/1", Timeout: MinTimeout},
		{Method: "PATCH", Path: "/tags/1", Timeout: MaxTimeout},
		{Method: "GET", Path: "/tags", Query: map[string]any{"limit": 5, "active": true, "name": "x", "ids": []int{1, 2}, "none": nil}},
	}
	for _, req := range valid {
		if err := validateRequest(req); err != nil {
			t.Errorf("%+v: unexpected error %v", req, err)
		}
	}
}

func TestBuildURL(t *testing.T) {
	base := "https://acme.billinglogix.com/api/v1"
	tests := []struct {
		path  string
		query map[string]any
		want  string
	}{
		{"/tags", nil, base + "/tags"},
		{"tags", nil, base + "/tags"},
		{" /tags ", nil, base + "/tags"},
		{"/tags", map[string]any{"limit": 10, "name": "a b"}, base + "/tags?limit=10&name=a+b"},
		{"/tags?sort=asc", map[string]any{"limit": 1}, base + "/tags?sort=asc&limit=1"},
		{"/tags", map[string]any{"id": []string{"1", "2"}}, base + "/tags?id=1&id=2"},
		{"/tags", map[string]any{}, base + "/tags"},
	}
	for _, tc := range tests {
		if got := buildURL(base, tc.path, tc.query); got != tc.want {
			t.Errorf("buildURL(%q, %v) = %q, want %q", tc.path, tc.query, got, tc.want)
		}
	}
}

func TestEncodeBody(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
		none bool
	}{
		{"nil", nil, "", true},
		{"empty string", "", "", true},
		{"empty bytes", []byte{}, "", true},
		{"raw string", `{"raw":true}`, `{"raw":true}`, false},
		{"raw bytes", []byte("plain"), "plain", false},
		{"map", map[string]any{"name": "x"}, `{"name":"x"}`, false},
		{"struct", struct {
			Name string `json:"name"`
		}{"x"}, `{"name":"x"}`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := encodeBody(tc.body)
			if err != nil {
				t.Fatalf("encodeBody: %v", err)
			}
			if tc.none {
				if r != nil {
					t.Error("expected no payload")
				}
				return
			}
			data, _ := io.ReadAll(r)
			if string(data) != tc.want {
				t.Errorf("expected %s, got %s", tc.want, data)
			}
		})
	}

	if _, err := encodeBody(map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("expected error for unencodable body")
	}
}

func TestCleanHeaders(t *testing.T) {
	h := cleanHeaders(map[string]string{
		" X-Trace ":  "  abc  ",
		"Bad Header": "x",
		"X-Bad":      "line\nbreak",
		"":           "empty",
	}, logger.Nop())

	if len(h) != 1 {
		t.Fatalf("expected only the valid header, got %v", h)
	}
	if h.Get("X-Trace") != "abc" {
		t.Errorf("expected trimmed value, got %q", h.Get("X-Trace"))
	}
}

func TestMergeHeadersDefaultsWin(t *testing.T) {
	perRequest := http.Header{}
	perRequest.Set("X-Tenant", "caller")
	perRequest.Set("X-Only-Request", "kept")
	defaults := http.Header{}
	defaults.Set("X-Tenant", "client")

	merged := mergeHeaders(perRequest, defaults)
	if merged.Get("X-Tenant") != "client" {
		t.Errorf("expected client default to win, got %q", merged.Get("X-Tenant"))
	}
	if merged.Get("X-Only-Request") != "kept" {
		t.Error("expected per-request header kept")
	}
}

func TestDecodeBody(t *testing.T) {
	v, err := decodeBody([]byte("  "))
	if err != nil || v != nil {
		t.Errorf("expected nil for empty body, got %v, %v", v, err)
	}
	v, err = decodeBody([]byte(`[1,"a"]`))
	if err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	if arr, ok := v.([]any); !ok || len(arr) != 2 {
		t.Errorf("unexpected value %#v", v)
	}
	if _, err := decodeBody([]byte("<html>")); err == nil {
		t.Error("expected parse error")
	}
}

func TestRequestOptionsNil(t *testing.T) {
	var opts *RequestOptions
	r := opts.request(http.MethodPost, "/tags", "x")
	if r.Method != "POST" || r.Path != "/tags" || r.Body != "x" || r.Query != nil {
		t.Errorf("unexpected request %+v", r)
	}
	r = (&RequestOptions{Timeout: 2 * time.Second}).request(http.MethodGet, "/tags", nil)
	if r.Timeout != 2*time.Second {
		t.Errorf("expected timeout copied, got %s", r.Timeout)
	}
}
