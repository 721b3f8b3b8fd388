package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{DeliveryID: "d1", ReceivedAt: base, Action: "opened", Outcome: "moved", TaskGID: "456", ProjectGID: "123"},
		{DeliveryID: "d2", ReceivedAt: base.Add(time.Minute), Action: "closed", Outcome: "completed", TaskGID: "456", ProjectGID: "123"},
		{DeliveryID: "d3", ReceivedAt: base.Add(2 * time.Minute), Action: "opened", Outcome: "missing_reference", Error: "asana id not found", PRURL: "https://github.com/o/r/pull/9"},
	}
	for _, e := range entries {
		require.NoError(t, s.Record(ctx, e))
	}

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "d3", got[0].DeliveryID)
	assert.Equal(t, "d2", got[1].DeliveryID)
	assert.Equal(t, "missing_reference", got[0].Outcome)
	assert.Equal(t, base.Add(2*time.Minute), got[0].ReceivedAt)

	depth, err := s.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)
}

func TestRecordRedeliveryOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Record(ctx, Entry{DeliveryID: "d1", ReceivedAt: now, Outcome: "upstream", Error: "status 500"}))
	require.NoError(t, s.Record(ctx, Entry{DeliveryID: "d1", ReceivedAt: now.Add(time.Second), Outcome: "completed"}))

	depth, err := s.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	got, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "completed", got[0].Outcome)
	assert.Empty(t, got[0].Error)
}
