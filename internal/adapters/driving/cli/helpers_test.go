package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/indexfeed-cli/internal/core/services"
)

// fakeIndexServer is a minimal index service: one writable partition
// with one collection, an empty fingerprint index, and a recorder for
// uploaded document IDs.
type fakeIndexServer struct {
	*httptest.Server

	mu       sync.Mutex
	uploaded []string
}

func newFakeIndexServer(t *testing.T) *fakeIndexServer {
	t.Helper()

	fake := &fakeIndexServer{}
	mux := http.NewServeMux()

	handle := func(method, pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h(w, r)
		})
	}

	handle(http.MethodGet, "/v1/partitions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"partitions": []map[string]any{
				{"partition_id": "part-1", "name": "main", "read_only": false},
			},
		})
	})
	handle(http.MethodGet, "/v1/partitions/part-1/collections", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"collections": []map[string]any{
				{"collection_id": "col-1", "name": "docs"},
			},
		})
	})
	handle(http.MethodGet, "/v1/partitions/part-1/collections/col-1/query", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"matching_results": 0, "results": []any{}})
	})
	handle(http.MethodPost, "/v1/partitions/part-1/collections/col-1/documents/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/partitions/part-1/collections/col-1/documents/")
		fake.mu.Lock()
		fake.uploaded = append(fake.uploaded, id)
		fake.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	fake.Server = httptest.NewServer(mux)
	t.Cleanup(fake.Server.Close)
	return fake
}

func (s *fakeIndexServer) uploadedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploaded...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// writeCredentialsFile writes a credentials file pointing at the fake
// server, with a high QPS so tests are not throttled.
func writeCredentialsFile(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.toml")
	content := fmt.Sprintf("url = %q\napikey = \"test-key\"\nqps = 1000.0\n", baseURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// executeCommand runs the root command with args and captures output.
// Package-level flag state is restored afterwards.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		credentialsPath = ""
		verbose = false
		ingestDryRun = false
		ingestWatch = false
		ingestWorkers = services.DefaultWorkerCount
		ingestPartition = ""
		ingestCollection = ""
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}
