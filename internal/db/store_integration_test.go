package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fire-triage/backend/internal/models"
)

// setupTestStore connects to the database named by TEST_DATABASE_URL and
// applies migrations. Tests that need a live database skip without it.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.Migrate(ctx))
	return store
}

func testTicket() models.Ticket {
	return models.Ticket{
		ID:          uuid.New(),
		GUID:        uuid.New(),
		Status:      models.StatusNew,
		Description: "Не открывается приложение",
		Segment:     "Mass",
		Country:     "Казахстан",
		City:        "Алматы",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateTicketDedupByGUID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := testTicket()
	id, created, err := store.CreateTicket(ctx, first)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, first.ID, id)

	// same GUID again must be a no-op
	dup := testTicket()
	dup.GUID = first.GUID
	_, created, err = store.CreateTicket(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestMarkProcessingOnlyFromNew(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tk := testTicket()
	_, _, err := store.CreateTicket(ctx, tk)
	require.NoError(t, err)

	started, err := store.MarkProcessing(ctx, tk.ID)
	require.NoError(t, err)
	require.True(t, started)

	// second delivery of the same message must not restart the pipeline
	started, err = store.MarkProcessing(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, started)
}

func TestRetryResetsOnlyFailed(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tk := testTicket()
	_, _, err := store.CreateTicket(ctx, tk)
	require.NoError(t, err)

	reset, err := store.ResetForRetry(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, reset, "NEW ticket must not be resettable")

	_, err = store.MarkProcessing(ctx, tk.ID)
	require.NoError(t, err)
	require.NoError(t, store.MarkFailed(ctx, tk.ID, "GEO_FAILED", "geocode not found"))

	reset, err = store.ResetForRetry(ctx, tk.ID)
	require.NoError(t, err)
	require.True(t, reset)

	got, err := store.TicketByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, got.Status)
	assert.Empty(t, got.ErrorCode)
}
