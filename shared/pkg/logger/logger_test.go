package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]interface{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestNew_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("contest-service", "warn", &buf)

	log.WithPeriod("2026-10-16").Info("dropped")
	log.WithUserID(7).Warn("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["message"])
	assert.Equal(t, "warning", lines[0]["level"])
	assert.Equal(t, "contest-service", lines[0]["service"])
	assert.Equal(t, float64(7), lines[0]["user_id"])
	assert.Contains(t, lines[0], "timestamp")
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("svc", "loud", &buf)

	log.Entry().Debug("hidden")
	log.Entry().Info("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestUnaryServerInterceptor_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := New("svc", "info", &buf)
	interceptor := UnaryServerInterceptor(log)

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/contest.ContestService/CastVote"},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			return nil, status.Error(codes.AlreadyExists, "already voted")
		})
	require.Error(t, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "AlreadyExists", lines[0]["code"])
	assert.Equal(t, "/contest.ContestService/CastVote", lines[0]["method"])
}

func TestHTTPMiddleware_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := New("svc", "info", &buf)

	h := HTTPMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/contest/prompt", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(http.StatusTeapot), lines[0]["status"])
	assert.Equal(t, "/api/contest/prompt", lines[0]["path"])
}
