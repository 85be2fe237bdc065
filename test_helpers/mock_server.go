package test_helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Cookies set by the default login flow of KAMockServer.
const (
	BootstrapCookie = "KAAS=bootstrap-session; path=/; secure; httponly"
	LoginCookie     = "KAAS=logged-in-session; path=/; secure; httponly"
	AuthCookie      = "auth=signed-token; path=/; secure; httponly"
)

// MockServer provides a configurable mock Khan Academy server for testing
type MockServer struct {
	server *httptest.Server

	mu          sync.Mutex
	responses   map[string]*MockResponse
	handlers    map[string]http.HandlerFunc
	defaultResp *MockResponse
	delay       time.Duration
	requestLog  []RequestEntry
	callCount   map[string]int
}

// RequestEntry logs incoming requests for assertions
type RequestEntry struct {
	Method       string
	Path         string
	RawQuery     string
	Headers      http.Header
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// MockResponse defines a mock API response
type MockResponse struct {
	Status     int
	Body       string
	Headers    map[string]string
	SetCookies []string
	Delay      time.Duration
}

// NewMockServer creates a new mock server instance. Unconfigured paths answer 404.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]*MockResponse),
		handlers:  make(map[string]http.HandlerFunc),
		callCount: make(map[string]int),
		defaultResp: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"error": "not found"}`,
		},
	}
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Client returns an http.Client wired to the mock server
func (ms *MockServer) Client() *http.Client {
	return ms.server.Client()
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures a response for a path, regardless of method
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// SetMethodResponse configures a response for one method on a path. It takes
// precedence over SetResponse.
func (ms *MockServer) SetMethodResponse(method, path string, response *MockResponse) {
	ms.SetResponse(method+" "+path, response)
}

// SetHandler routes a path to a custom handler, for responses that depend on
// the query string or body.
func (ms *MockServer) SetHandler(path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[path] = handler
}

// SetDefaultResponse configures the response for unconfigured paths
func (ms *MockServer) SetDefaultResponse(response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.defaultResp = response
}

// SetDelay adds delay to all responses
func (ms *MockServer) SetDelay(delay time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.delay = delay
}

// GetRequestLog returns the request log
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]RequestEntry{}, ms.requestLog...)
}

// GetCallCount returns the call count for a path
func (ms *MockServer) GetCallCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.callCount[path]
}

// TotalCalls returns the number of requests received on any path
func (ms *MockServer) TotalCalls() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requestLog)
}

// ClearLog clears the request log and call counts
func (ms *MockServer) ClearLog() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requestLog = ms.requestLog[:0]
	ms.callCount = make(map[string]int)
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		RawQuery:  r.URL.RawQuery,
		Headers:   r.Header.Clone(),
		Body:      string(body),
		Timestamp: time.Now(),
	}

	ms.mu.Lock()
	ms.callCount[r.URL.Path]++
	handler := ms.handlers[r.URL.Path]
	response, exists := ms.responses[r.Method+" "+r.URL.Path]
	if !exists {
		response, exists = ms.responses[r.URL.Path]
	}
	if !exists {
		response = ms.defaultResp
	}
	delay := ms.delay
	ms.mu.Unlock()

	if handler != nil {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(rec, r)
		entry.ResponseCode = rec.status
		ms.record(entry)
		return
	}

	if total := delay + response.Delay; total > 0 {
		time.Sleep(total)
	}
	status := response.Status
	if status == 0 {
		status = http.StatusOK
	}
	entry.ResponseCode = status
	ms.record(entry)

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	for _, c := range response.SetCookies {
		w.Header().Add("Set-Cookie", c)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	w.Write([]byte(response.Body))
}

func (ms *MockServer) record(entry RequestEntry) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requestLog = append(ms.requestLog, entry)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// KAMockServer provides Khan Academy specific mock responses
type KAMockServer struct {
	*MockServer
}

// NewKAMockServer creates a mock server pre-configured with a working login flow
func NewKAMockServer() *KAMockServer {
	server := &KAMockServer{MockServer: NewMockServer()}
	server.setupDefaultResponses()
	return server
}

// setupDefaultResponses configures the login endpoints
func (kms *KAMockServer) setupDefaultResponses() {
	kms.SetMethodResponse(http.MethodGet, "/login", &MockResponse{
		Status:     http.StatusOK,
		Body:       "<html></html>",
		Headers:    map[string]string{"Content-Type": "text/html"},
		SetCookies: []string{BootstrapCookie},
	})

	kms.SetMethodResponse(http.MethodPost, "/api/internal/graphql/loginWithPasswordMutation", &MockResponse{
		Status:     http.StatusOK,
		Body:       `{"data":{"loginWithPassword":{"user":{"id":"1","kaid":"kaid_326465577260382527912172"},"isFirstLogin":false,"error":null}}}`,
		SetCookies: []string{LoginCookie, AuthCookie},
	})
}

// SetupLoginFailure makes the credential submission answer with a GraphQL
// error code and no cookies
func (kms *KAMockServer) SetupLoginFailure(status int, code string) {
	kms.SetMethodResponse(http.MethodPost, "/api/internal/graphql/loginWithPasswordMutation", &MockResponse{
		Status: status,
		Body:   fmt.Sprintf(`{"data":{"loginWithPassword":{"user":null,"error":{"code":%q}}}}`, code),
	})
}

// SetupBootstrapFailure makes the login page answer without cookies
func (kms *KAMockServer) SetupBootstrapFailure(status int) {
	kms.SetMethodResponse(http.MethodGet, "/login", &MockResponse{
		Status:  status,
		Body:    "<html></html>",
		Headers: map[string]string{"Content-Type": "text/html"},
	})
}

// SetupGraphQL configures the data returned by a GraphQL operation
func (kms *KAMockServer) SetupGraphQL(operation, data string) {
	kms.SetMethodResponse(http.MethodPost, "/api/internal/graphql/"+operation, &MockResponse{
		Status: http.StatusOK,
		Body:   `{"data":` + data + `}`,
	})
}

// SetupJSON configures a JSON response for a path
func (kms *KAMockServer) SetupJSON(method, path string, status int, body string) {
	kms.SetMethodResponse(method, path, &MockResponse{Status: status, Body: body})
}

// WaitForRequests waits for a specific number of requests to be made
func (ms *MockServer) WaitForRequests(count int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %d requests", count)
		case <-ticker.C:
			if ms.TotalCalls() >= count {
				return nil
			}
		}
	}
}

// AssertRequestCount asserts that a specific number of requests were made to a path
func (ms *MockServer) AssertRequestCount(path string, expectedCount int) error {
	actualCount := ms.GetCallCount(path)
	if actualCount != expectedCount {
		return fmt.Errorf("expected %d requests to %s, got %d", expectedCount, path, actualCount)
	}
	return nil
}

// GetLastRequest returns the last request made to a specific path
func (ms *MockServer) GetLastRequest(path string) (*RequestEntry, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for i := len(ms.requestLog) - 1; i >= 0; i-- {
		if ms.requestLog[i].Path == path {
			entry := ms.requestLog[i]
			return &entry, nil
		}
	}

	return nil, fmt.Errorf("no requests found for path: %s", path)
}
