package businessapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/mcp-bridge/internal/domain"
	"github.com/xiaot623/mcp-bridge/internal/joke"
	"github.com/xiaot623/mcp-bridge/internal/registry"
)

func newTestHandler(t *testing.T, jokeHandler http.HandlerFunc) (*Handler, *registry.Registry) {
	t.Helper()

	if jokeHandler == nil {
		jokeHandler = func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(domain.Joke{Setup: "S", Punchline: "P"})
		}
	}
	upstream := httptest.NewServer(jokeHandler)
	t.Cleanup(upstream.Close)

	reg := registry.New()
	return NewHandler(reg, joke.NewClient(upstream.URL, time.Second)), reg
}

func doJSON(t *testing.T, handler echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	return rec
}

func TestRegisterAgent(t *testing.T) {
	handler, reg := newTestHandler(t, nil)

	rec := doJSON(t, handler.RegisterAgent, http.MethodPost, "/register", `{"name":"DataBot","version":"1.0.0"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["agent_id"])
	assert.Equal(t, 1, reg.AgentCount())
}

func TestRegisterAgentValidation(t *testing.T) {
	handler, reg := newTestHandler(t, nil)

	rec := doJSON(t, handler.RegisterAgent, http.MethodPost, "/register", `{"name":"DataBot"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, reg.AgentCount())

	rec = doJSON(t, handler.RegisterAgent, http.MethodPost, "/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportStatus(t *testing.T) {
	handler, reg := newTestHandler(t, nil)
	agentID := reg.Register("DataBot", "1.0.0")

	rec := doJSON(t, handler.ReportStatus, http.MethodPost, "/report_status",
		`{"agent_id":"`+agentID+`","status":"running","cpu_usage":42.5}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], agentID)

	rec = doJSON(t, handler.ReportStatus, http.MethodPost, "/report_status",
		`{"agent_id":"never-issued","status":"running"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTasks(t *testing.T) {
	handler, reg := newTestHandler(t, nil)
	agentID := reg.Register("DataBot", "1.0.0")

	rec := doJSON(t, handler.GetTasks, http.MethodGet, "/tasks?agent_id="+agentID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tasks map[string]domain.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tasks, 2)
	assert.Equal(t, "high", resp.Tasks["task1"].Priority)

	rec = doJSON(t, handler.GetTasks, http.MethodGet, "/tasks?agent_id=never-issued", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler.GetTasks, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdder(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rec := doJSON(t, handler.Adder, http.MethodPost, "/adder", `{"number":41}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":42}`, rec.Body.String())

	rec = doJSON(t, handler.Adder, http.MethodPost, "/adder", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJoke(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rec := doJSON(t, handler.GetJoke, http.MethodGet, "/joke", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"setup":"S","punchline":"P"}`, rec.Body.String())
}

func TestGetJokeUpstreamDown(t *testing.T) {
	handler, _ := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := doJSON(t, handler.GetJoke, http.MethodGet, "/joke", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	rec := doJSON(t, handler.Health, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
