package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/olp/internal/testutil"
)

var olpVars = []string{
	"OLP_URL", "OLP_BASE_URL", "OLP_MAX_ATTEMPTS", "OLP_BACKOFF",
	"OLP_BACKOFF_MULTIPLIER", "OLP_BACKOFF_MAX", "OLP_BACKOFF_JITTER",
	"OLP_REQUEST_TIMEOUT", "OLP_STREAM_ID", "OLP_RECEIPT_PATH",
	"OLP_LEDGER_PATH", "OLP_LISTEN_ADDR", "OLP_LOG_LEVEL",
}

// cleanEnv clears OLP_* variables and moves into a temp dir, so default
// data/ paths and .env lookups stay inside the test.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range olpVars {
		if v, ok := os.LookupEnv(k); ok {
			t.Setenv(k, v)
			require.NoError(t, os.Unsetenv(k))
		}
	}
	t.Chdir(t.TempDir())
}

// fakeBus is an httptest frame endpoint that records every body.
type fakeBus struct {
	*httptest.Server
	mu     sync.Mutex
	bodies [][]byte
}

// newFakeBus answers each request with handle, after recording the body.
func newFakeBus(t *testing.T, handle func(body map[string]any) (int, string)) *fakeBus {
	t.Helper()
	b := &fakeBus{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, raw)
		b.mu.Unlock()

		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		status, resp := handle(body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(b.Close)
	t.Setenv("OLP_URL", b.URL+"/frame")
	return b
}

func acceptAll(map[string]any) (int, string) {
	return http.StatusOK, `{"ok":true}`
}

// envelopeOnly rejects raw frames and accepts {"frame": ...}.
func envelopeOnly(body map[string]any) (int, string) {
	if _, ok := body["frame"]; ok {
		return http.StatusOK, `{"ok":true,"shape":"envelope"}`
	}
	return http.StatusUnprocessableEntity, `{"detail":"missing frame"}`
}

func alwaysBusy(map[string]any) (int, string) {
	return http.StatusServiceUnavailable, "busy"
}

func (b *fakeBus) Bodies() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.bodies...)
}

func (b *fakeBus) Decoded(t *testing.T, i int) map[string]any {
	t.Helper()
	bodies := b.Bodies()
	require.Greater(t, len(bodies), i)
	var m map[string]any
	require.NoError(t, json.Unmarshal(bodies[i], &m))
	return m
}

// runCLI executes the root command with a non-blocking sleeper.
func runCLI(t *testing.T, args ...string) (string, *testutil.RecordingSleeper, error) {
	t.Helper()
	out, _, sleeper, err := runCLIStreams(t, args...)
	return out, sleeper, err
}

// runCLIStreams is runCLI that also returns what the command wrote to stderr.
func runCLIStreams(t *testing.T, args ...string) (string, string, *testutil.RecordingSleeper, error) {
	t.Helper()
	sleeper := &testutil.RecordingSleeper{}
	cmd := newRootCommand(&RootOptions{Sleeper: sleeper})
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), sleeper, err
}
