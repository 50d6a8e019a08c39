package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestTouchClient(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.TouchClient(ctx, "127.0.0.1:5000"))
	require.NoError(t, s.TouchClient(ctx, "127.0.0.1:5000"))
	require.NoError(t, s.TouchClient(ctx, "127.0.0.1:5001"))

	sessions, err := s.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "127.0.0.1:5000", sessions[0].ClientID)
	assert.Equal(t, 2, sessions[0].RequestsCount)
	assert.Equal(t, 1, sessions[1].RequestsCount)
}

func TestRecordAndListCalls(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.RecordCall(ctx, &domain.CallRecord{
		CallID:     "call_1",
		ClientID:   "127.0.0.1:5000",
		ToolName:   "add_number",
		Outcome:    domain.CallOutcomeSucceeded,
		StartedAt:  time.Now().Add(-time.Second),
		DurationMs: 12,
	}))
	require.NoError(t, s.RecordCall(ctx, &domain.CallRecord{
		CallID:     "call_2",
		ClientID:   "127.0.0.1:5000",
		ToolName:   "get_joke",
		Outcome:    domain.CallOutcomeFailed,
		ErrorCode:  string(domain.ErrCodeUpstreamUnavailable),
		StartedAt:  time.Now(),
		DurationMs: 5003,
	}))

	calls, err := s.ListCalls(ctx, "127.0.0.1:5000")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "add_number", calls[0].ToolName)
	assert.Equal(t, domain.CallOutcomeSucceeded, calls[0].Outcome)
	assert.Empty(t, calls[0].ErrorCode)
	assert.Equal(t, "get_joke", calls[1].ToolName)
	assert.Equal(t, domain.CallOutcomeFailed, calls[1].Outcome)
	assert.Equal(t, "upstream_unavailable", calls[1].ErrorCode)

	other, err := s.ListCalls(ctx, "127.0.0.1:9999")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCalls)
	assert.Equal(t, 0, stats.ConnectedClients)

	require.NoError(t, s.TouchClient(ctx, "c1"))
	for i, outcome := range []domain.CallOutcome{
		domain.CallOutcomeSucceeded,
		domain.CallOutcomeSucceeded,
		domain.CallOutcomeFailed,
	} {
		require.NoError(t, s.RecordCall(ctx, &domain.CallRecord{
			CallID:    string(rune('a' + i)),
			ClientID:  "c1",
			ToolName:  "add_number",
			Outcome:   outcome,
			StartedAt: time.Now(),
		}))
	}

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCalls)
	assert.Equal(t, 2, stats.SucceededCalls)
	assert.Equal(t, 1, stats.FailedCalls)
	assert.Equal(t, 1, stats.ConnectedClients)
}
