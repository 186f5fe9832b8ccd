package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabh4269/website-content-search/internal/config"
	"github.com/saurabh4269/website-content-search/internal/testutils"
)

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestSmoke_Startup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping smoke test in short mode")
	}

	suite := testutils.NewIntegrationSuite(t)
	suite.Setup()
	defer suite.Teardown()

	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"version":"0.13.5"}`))
	}))
	defer ollama.Close()

	port := freePort(t)
	cfg := &config.Config{
		Host:                       "127.0.0.1",
		Port:                       port,
		AllowedOrigins:             []string{"*"},
		WeaviateURL:                "http://" + suite.Host,
		WeaviateClass:              "HtmlChunk",
		Embedder:                   config.EmbedderOllama,
		OllamaHost:                 ollama.URL,
		OllamaModel:                "all-minilm",
		FetchTimeoutSeconds:        5,
		UserAgent:                  "smoke-test",
		CrawlMaxDepth:              1,
		SearchLimit:                10,
		QueryLogPath:               filepath.Join(t.TempDir(), "query.log"),
		BootstrapRetryAttempts:     3,
		BootstrapRetryDelaySeconds: 1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 20*time.Second, 500*time.Millisecond)

	resp, err := http.Get(base + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["search"])
	assert.True(t, names["crawl"])
}

func TestRootCmd_SearchRequiresFlags(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"search", "--url", "https://example.com"})
	root.SetOut(new(nopWriter))
	root.SetErr(new(nopWriter))

	err := root.Execute()
	assert.ErrorContains(t, err, "query")
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--log-level", "loud", "crawl", "--url", "https://example.com"})
	root.SetOut(new(nopWriter))
	root.SetErr(new(nopWriter))

	err := root.Execute()
	assert.ErrorContains(t, err, "invalid log level")
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
