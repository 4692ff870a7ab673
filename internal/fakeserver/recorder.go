package fakeserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
)

// maxRecordedBody caps how much of a JSON request body is kept
const maxRecordedBody = 64 << 10

// RecordedRequest is one request as the server received it
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// Recorder keeps every API request so tests can assert on what the client
// actually sent
type Recorder struct {
	mu       sync.Mutex
	requests []RecordedRequest
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Middleware records the request and restores its body for the handler
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
		}
		if r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			body, _ := io.ReadAll(io.LimitReader(r.Body, maxRecordedBody))
			_ = r.Body.Close()
			entry.Body = body
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		rec.mu.Lock()
		rec.requests = append(rec.requests, entry)
		rec.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// Requests returns a copy of everything recorded so far
func (rec *Recorder) Requests() []RecordedRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]RecordedRequest(nil), rec.requests...)
}

// RequestsTo returns the recorded requests for one path
func (rec *Recorder) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range rec.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// MarkReadCalls decodes the id batch of every mark_read call
func (rec *Recorder) MarkReadCalls() [][]int64 {
	var calls [][]int64
	for _, r := range rec.RequestsTo("/api/messages/mark_read") {
		var body struct {
			MessageIDs []int64 `json:"message_ids"`
		}
		_ = json.Unmarshal(r.Body, &body)
		calls = append(calls, body.MessageIDs)
	}
	return calls
}

// Reset forgets every recorded request
func (rec *Recorder) Reset() {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.requests = nil
}
