package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydentango/ping-social-app/internal/models"
)

func TestWatchPingsDeliversSnapshots(t *testing.T) {
	st := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := st.WatchPings(ctx)
	require.NoError(t, err)

	// Initial snapshot is empty.
	snap := <-ch
	assert.Empty(t, snap)

	p := &models.Ping{
		Message:    "Coffee?",
		Mode:       models.ModeFriends,
		SenderID:   "u1",
		Recipients: []string{"u1", "u2"},
		SentAt:     time.Now().UTC(),
	}
	require.NoError(t, st.CreatePing(ctx, p))

	snap = <-ch
	require.Len(t, snap, 1)
	assert.Equal(t, p.ID, snap[0].ID)

	require.NoError(t, st.DeletePing(ctx, p.ID))
	snap = <-ch
	assert.Empty(t, snap)
}

func TestWatchPingsStopsOnCancel(t *testing.T) {
	st := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := st.WatchPings(ctx)
	require.NoError(t, err)
	<-ch

	cancel()
	// Channel closes once the subscription is torn down.
	for range ch {
	}
}

func TestListPingsOrder(t *testing.T) {
	st := New()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, st.CreatePing(ctx, &models.Ping{
			Message:    "m",
			SenderID:   "u1",
			Recipients: []string{"u1"},
			SentAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	snap, err := st.ListPings(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 3)
	assert.True(t, snap[0].SentAt.After(snap[1].SentAt))
	assert.True(t, snap[1].SentAt.After(snap[2].SentAt))
}
