package billinglogix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/billinglogix/billinglogix-go/logger"
	"github.com/billinglogix/billinglogix-go/validation"
)

// Request describes one API call.
type Request struct {
	// Method is GET, POST, PUT, PATCH or DELETE, in any case.
	Method string `json:"method" validate:"required,http_method"`

	// Path is relative to the versioned base URL. A leading "/" is added
	// when missing. Empty and bare "/" paths are rejected.
	Path string `json:"path" validate:"api_path"`

	// Query values must be scalars or slices of scalars.
	Query map[string]any `json:"query,omitempty" validate:"-"`

	// Body is sent verbatim when it is a string or []byte and JSON-encoded
	// otherwise. nil and "" send no payload.
	Body any `json:"body,omitempty" validate:"-"`

	// Timeout overrides the client default (range 1s-60s, zero = default).
	Timeout time.Duration `json:"timeout,omitempty" validate:"omitempty,min=1s,max=60s"`

	// Headers are trimmed; invalid entries are dropped. Client default
	// headers override these.
	Headers map[string]string `json:"headers,omitempty" validate:"-"`
}

// RequestOptions holds the optional parts of a Request for the verb helpers.
type RequestOptions struct {
	Query   map[string]any
	Timeout time.Duration
	Headers map[string]string
}

func (o *RequestOptions) request(method, path string, body any) *Request {
	r := &Request{Method: method, Path: path, Body: body}
	if o != nil {
		r.Query = o.Query
		r.Timeout = o.Timeout
		r.Headers = o.Headers
	}
	return r
}

// validateRequest reports the first problem with req. Validation errors
// carry the descriptor as Data.
func validateRequest(req *Request) error {
	if req == nil {
		return newAPIError(KindValidation, "Invalid request options", nil)
	}
	if err := validation.Validate(*req); err != nil {
		fe := err.(*validation.Error).First()
		switch {
		case fe.Field == "method" && fe.Tag == "required":
			return newAPIError(KindValidation, "Invalid request method", req)
		case fe.Field == "method":
			return newAPIError(KindValidation, "Unsupported request method", req)
		case fe.Field == "path":
			return newAPIError(KindValidation, "Invalid request path", req)
		case fe.Field == "timeout":
			return newAPIError(KindValidation, "Unsupported request timeout", req)
		default:
			return newAPIError(KindValidation, "Invalid request options", req)
		}
	}
	for _, v := range req.Query {
		if !isQueryValue(v) {
			return newAPIError(KindValidation, "Invalid request query params", req)
		}
	}
	return nil
}

func isScalar(v any) bool {
	if v == nil {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isQueryValue(v any) bool {
	if isScalar(v) {
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if !isScalar(rv.Index(i).Interface()) {
			return false
		}
	}
	return true
}

// encodeQuery renders q as a sorted query string. Slices repeat the key;
// nil encodes as an empty value.
func encodeQuery(q map[string]any) string {
	if len(q) == 0 {
		return ""
	}
	values := make(url.Values, len(q))
	for k, v := range q {
		if v == nil {
			values.Add(k, "")
			continue
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				values.Add(k, fmt.Sprint(rv.Index(i).Interface()))
			}
			continue
		}
		values.Add(k, fmt.Sprint(v))
	}
	return values.Encode()
}

// buildURL joins the base URL, the normalized path and the query.
func buildURL(baseURL, path string, query map[string]any) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := baseURL + path
	if qs := encodeQuery(query); qs != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + qs
	}
	return u
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		if b == "" {
			return nil, nil
		}
		return strings.NewReader(b), nil
	case []byte:
		if len(b) == 0 {
			return nil, nil
		}
		return bytes.NewReader(b), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// cleanHeaders trims per-request headers and drops entries that are not
// valid HTTP fields.
func cleanHeaders(headers map[string]string, log *logger.Logger) http.Header {
	h := make(http.Header, len(headers))
	for k, v := range headers {
		key, value := strings.TrimSpace(k), strings.TrimSpace(v)
		if !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
			log.Debug("dropping invalid request header", logger.Fields("header", k))
			continue
		}
		h.Set(key, value)
	}
	return h
}

// mergeHeaders applies defaults over the cleaned per-request headers.
func mergeHeaders(perRequest, defaults http.Header) http.Header {
	for k, vs := range defaults {
		perRequest[k] = append([]string(nil), vs...)
	}
	return perRequest
}

// decodeBody parses a JSON response body. An empty body decodes to nil.
func decodeBody(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
