package testutils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Site serves a fixed set of HTML pages keyed by path and counts hits.
// Pages may reference the server's own address through the {{base}}
// placeholder. Unknown paths answer 404, paths in Broken answer 500 and
// paths in Redirects answer 302 to their target.
type Site struct {
	*httptest.Server

	mu        sync.Mutex
	hits      map[string]int
	pages     map[string]string
	Broken    map[string]bool
	Redirects map[string]string
}

func NewSite(t *testing.T, pages map[string]string) *Site {
	t.Helper()

	s := &Site{
		hits:      make(map[string]int),
		pages:     pages,
		Broken:    make(map[string]bool),
		Redirects: make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	broken := s.Broken[r.URL.Path]
	target, redirect := s.Redirects[r.URL.Path]
	body, ok := s.pages[r.URL.Path]
	s.mu.Unlock()

	if redirect {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	if broken {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{base}}", s.URL)))
}

// Hits returns how many requests path received.
func (s *Site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Page returns the absolute URL of path on this site.
func (s *Site) Page(path string) string {
	return s.URL + path
}
