// Package testserver is a fake BillingLogix API for tests. It verifies the
// bearer JWT on every request, records what it received and answers from
// registered stubs.
//
//	srv := testserver.New(t, "s3cr3t")
//	srv.Handle("GET", "/tags", 200, `[{"id":1}]`)
//	client, _ := billinglogix.New("acme", "ABC123", "s3cr3t",
//		&billinglogix.Options{HTTPClient: srv.Client()})
package testserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billinglogix/billinglogix-go/auth/jwt"
)

// BasePath is the API prefix every request must carry.
const BasePath = "/api/v1"

const originalURLHeader = "X-Testserver-Original-Url"

// Recorded is a request as the server received it.
type Recorded struct {
	Method string
	// URL is the URL the client addressed, before rewriting.
	URL    string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
	Claims *jwt.Claims
}

type stub struct {
	status int
	body   string
}

// Server is an httptest server speaking the BillingLogix API.
type Server struct {
	secret string
	tokens *jwt.Service
	srv    *httptest.Server

	mu       sync.Mutex
	stubs    map[string]stub
	requests []Recorded
	delay    time.Duration
}

// New starts a server that accepts tokens signed with secret. It is closed
// when the test ends.
func New(t testing.TB, secret string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := jwt.NewService(&jwt.Config{})
	if err != nil {
		t.Fatalf("testserver: %v", err)
	}
	s := &Server{
		secret: secret,
		tokens: tokens,
		stubs:  make(map[string]stub),
	}

	engine := gin.New()
	engine.Use(s.recovery(), s.record(), s.authenticate())
	engine.Any(BasePath+"/*path", s.respond)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody("NotFound", "unknown route"))
	})

	s.srv = httptest.NewServer(engine)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Handle registers a response for method and path (relative to BasePath).
// body is written verbatim.
func (s *Server) Handle(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs[stubKey(method, path)] = stub{status: status, body: body}
}

// SetDelay makes every response wait d, or until the client gives up.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Client returns an HTTP client that sends requests for any host to this
// server, keeping the original URL for Recorded.URL.
func (s *Server) Client() *http.Client {
	target, _ := url.Parse(s.srv.URL)
	return &http.Client{Transport: &rewriteTransport{
		target: target,
		base:   s.srv.Client().Transport,
	}}
}

func stubKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

func errorBody(name, message string) gin.H {
	return gin.H{"error": gin.H{"name": name, "message": message}}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("InternalError", "Internal server error"))
			}
		}()
		c.Next()
	}
}

// record stores the request before authentication so rejected calls are
// visible too.
func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		header := c.Request.Header.Clone()
		original := header.Get(originalURLHeader)
		header.Del(originalURLHeader)
		if original == "" {
			original = s.srv.URL + c.Request.URL.RequestURI()
		}

		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: c.Request.Method,
			URL:    original,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.Query(),
			Header: header,
			Body:   body,
		})
		c.Set("record_index", len(s.requests)-1)
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Unauthorized", "Authorization header required"))
			return
		}

		claims, err := s.tokens.Parse(parts[1], s.secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("Unauthorized", "Invalid token"))
			return
		}

		s.mu.Lock()
		s.requests[c.GetInt("record_index")].Claims = claims
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) respond(c *gin.Context) {
	s.mu.Lock()
	st, ok := s.stubs[stubKey(c.Request.Method, c.Param("path"))]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-c.Request.Context().Done():
			return
		}
	}

	if !ok {
		c.JSON(http.StatusNotFound, errorBody("NotFound", "no stub for "+c.Request.Method+" "+c.Param("path")))
		return
	}
	c.Data(st.status, "application/json", []byte(st.body))
}

type rewriteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(originalURLHeader, req.URL.String())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = t.target.Host
	return t.base.RoundTrip(r)
}
