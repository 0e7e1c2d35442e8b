package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	mw "github.com/eline/driftline/internal/api/middleware"
	"github.com/eline/driftline/internal/model"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withClaims injects an authenticated identity into the request context.
func withClaims(r *http.Request, userID, email string) *http.Request {
	claims := &model.JWTClaims{Sub: userID, Email: email}
	return r.WithContext(mw.WithClaims(r.Context(), claims))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}
