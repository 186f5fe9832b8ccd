package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"Allowed Origin", []string{"http://localhost:3000"}, "http://localhost:3000", "GET", "http://localhost:3000", http.StatusTeapot},
		{"Unknown Origin", []string{"http://localhost:3000"}, "http://evil.test", "GET", "", http.StatusTeapot},
		{"Wildcard", []string{"*"}, "http://any.test", "POST", "http://any.test", http.StatusTeapot},
		{"Preflight", []string{"*"}, "http://any.test", "OPTIONS", "http://any.test", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/search", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORS(tt.allowed)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
