package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ReceivedRequest is a request captured by ApiMock.
type ReceivedRequest struct {
	Headers map[string]string
	Queries map[string]string
	Body    map[string]any
}

// ApiMock fakes a third-party HTTP API. Every request is recorded by method and path and
// answered with the configured response, or 200 with an empty object.
type ApiMock struct {
	mu        sync.Mutex
	server    *httptest.Server
	requests  map[string][]ReceivedRequest
	responses map[string]mockResponse
}

type mockResponse struct {
	status int
	body   any
}

func NewApiServer() *ApiMock {
	return &ApiMock{
		requests:  map[string][]ReceivedRequest{},
		responses: map[string]mockResponse{},
	}
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	return a.server.URL
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + r.URL.Path

	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	_ = json.Unmarshal(raw, &body)

	received := ReceivedRequest{
		Headers: map[string]string{},
		Queries: map[string]string{},
		Body:    body,
	}
	for name, values := range r.Header {
		received.Headers[name] = values[0]
	}
	for name, values := range r.URL.Query() {
		received.Queries[name] = values[0]
	}

	a.mu.Lock()
	a.requests[key] = append(a.requests[key], received)
	resp, ok := a.responses[key]
	a.mu.Unlock()

	if !ok {
		resp = mockResponse{status: http.StatusOK, body: map[string]any{}}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_ = json.NewEncoder(w).Encode(resp.body)
}

// SetResponse configures the answer for every following request to method and path.
func (a *ApiMock) SetResponse(method, path string, status int, response any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[method+path] = mockResponse{status: status, body: response}
}

// Requests returns the requests received on method and path, oldest first.
func (a *ApiMock) Requests(method, path string) []ReceivedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ReceivedRequest(nil), a.requests[method+path]...)
}

// Reset forgets all received requests and configured responses.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = map[string][]ReceivedRequest{}
	a.responses = map[string]mockResponse{}
}
