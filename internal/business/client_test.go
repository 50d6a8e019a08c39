package business

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

func newStubBusiness(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"agent_id": "agent-1"})
	})
	mux.HandleFunc("/report_status", func(w http.ResponseWriter, r *http.Request) {
		var report domain.StatusReport
		json.NewDecoder(r.Body).Decode(&report)
		if report.AgentID != "agent-1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "agent not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Status received for agent agent-1"})
	})
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("agent_id") != "agent-1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "agent not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": map[string]domain.Task{
				"task1": {Description: "Update inventory", Priority: "high"},
			},
		})
	})
	mux.HandleFunc("/adder", func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Number int `json:"number"`
		}
		json.NewDecoder(r.Body).Decode(&input)
		json.NewEncoder(w).Encode(map[string]int{"result": input.Number + 1})
	})
	mux.HandleFunc("/joke", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.Joke{Setup: "S", Punchline: "P"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientRoundTrips(t *testing.T) {
	server := newStubBusiness(t)
	client := NewClient(server.URL, time.Second)
	ctx := context.Background()

	resp, err := client.RegisterAgent(ctx, "DataBot", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "agent-1", resp.AgentID)

	ack, err := client.ReportStatus(ctx, domain.StatusReport{AgentID: "agent-1", Status: "running"})
	require.NoError(t, err)
	assert.Contains(t, ack.Message, "agent-1")

	tasks, err := client.GetTasks(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "high", tasks["task1"].Priority)

	sum, err := client.AddNumber(ctx, 41)
	require.NoError(t, err)
	assert.Equal(t, 42, sum)

	joke, err := client.GetJoke(ctx)
	require.NoError(t, err)
	assert.Equal(t, "S", joke.Setup)
	assert.Equal(t, "P", joke.Punchline)
}

func TestClientMapsNotFound(t *testing.T) {
	server := newStubBusiness(t)
	client := NewClient(server.URL, time.Second)

	_, err := client.GetTasks(context.Background(), "never-issued")
	require.Error(t, err)

	var toolErr *domain.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, domain.ErrCodeNotFound, toolErr.Code)
	assert.Equal(t, "agent not found", toolErr.Message)
}

func TestClientMapsUpstreamFailure(t *testing.T) {
	t.Run("service error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"error": "could not fetch joke"})
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.GetJoke(context.Background())

		var toolErr *domain.ToolError
		require.True(t, errors.As(err, &toolErr))
		assert.Equal(t, domain.ErrCodeUpstreamUnavailable, toolErr.Code)
		assert.Contains(t, toolErr.Message, "could not fetch joke")
	})

	t.Run("unreachable service", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(server.URL, time.Second)
		_, err := client.GetJoke(context.Background())

		var toolErr *domain.ToolError
		require.True(t, errors.As(err, &toolErr))
		assert.Equal(t, domain.ErrCodeUpstreamUnavailable, toolErr.Code)
	})
}
