package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedtailor/feedtailor/internal/common"
	"github.com/feedtailor/feedtailor/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(InMemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func createTestSession(t *testing.T, store *SQLiteStorage) *model.Session {
	t.Helper()
	session, err := store.CreateSession(context.Background(), "feed.tsv")
	require.NoError(t, err)
	return session
}

func TestNewSQLiteStorageFileBacked(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions", "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
}

func TestNewSQLiteStorageEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyString))
}

func TestCreateAndGetSession(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateSession(ctx, "products.tsv")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "products.tsv", created.SourceFile)

	got, err := store.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.SourceFile, got.SourceFile)
}

func TestGetSessionNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetSession(context.Background(), "no-such-session")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSessionsAreIsolated(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := createTestSession(t, store)
	second := createTestSession(t, store)
	require.NotEqual(t, first.ID, second.ID)

	require.NoError(t, store.SaveSelection(ctx, first.ID, []model.SelectionEntry{
		{Column: "title", Keep: true},
	}))
	require.NoError(t, store.SaveSelection(ctx, second.ID, []model.SelectionEntry{
		{Column: "title", Keep: false},
		{Column: "brand", Keep: true},
	}))

	got1, err := store.GetSelection(ctx, first.ID)
	require.NoError(t, err)
	got2, err := store.GetSelection(ctx, second.ID)
	require.NoError(t, err)

	assert.Len(t, got1, 1)
	assert.Len(t, got2, 2)
	assert.True(t, got1[0].Keep)
	assert.False(t, got2[0].Keep)
}

func TestTouchSession(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	require.NoError(t, store.TouchSession(ctx, session.ID))

	err := store.TouchSession(ctx, "no-such-session")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSelectionRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	entries := []model.SelectionEntry{
		{Column: "id", Keep: false},
		{Column: "title", Keep: true},
		{Column: "colour", Keep: true},
		{Column: "price", Keep: false},
	}
	require.NoError(t, store.SaveSelection(ctx, session.ID, entries))

	got, err := store.GetSelection(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, entries, got, "selection must round-trip in order")
}

func TestSaveSelectionReplacesWholesale(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	require.NoError(t, store.SaveSelection(ctx, session.ID, []model.SelectionEntry{
		{Column: "a", Keep: true},
		{Column: "b", Keep: true},
	}))
	require.NoError(t, store.SaveSelection(ctx, session.ID, []model.SelectionEntry{
		{Column: "c", Keep: false},
	}))

	got, err := store.GetSelection(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.SelectionEntry{{Column: "c", Keep: false}}, got)
}

func TestGetSelectionEmpty(t *testing.T) {
	store := createTestStorage(t)
	session := createTestSession(t, store)

	got, err := store.GetSelection(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterSpecRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	spec := model.FilterSpec{
		"size":  {"M", "L"},
		"brand": {"Acme"},
	}
	require.NoError(t, store.SaveFilterSpec(ctx, session.ID, spec))

	got, err := store.GetFilterSpec(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, spec, got)
}

func TestSaveFilterSpecClears(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	require.NoError(t, store.SaveFilterSpec(ctx, session.ID, model.FilterSpec{
		"size": {"M"},
	}))
	require.NoError(t, store.SaveFilterSpec(ctx, session.ID, model.FilterSpec{}))

	got, err := store.GetFilterSpec(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestResolutionEditsRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	edits := []model.ResolutionEdit{
		{Value: "teal", GenericColour: "blue"},
		{Value: "amber", GenericColour: "yellow"},
	}
	require.NoError(t, store.SaveResolutionEdits(ctx, session.ID, edits))

	got, err := store.GetResolutionEdits(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, edits, got, "edits must come back in first-resolved order")
}

func TestResolutionEditUpsertKeepsPosition(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	require.NoError(t, store.SaveResolutionEdits(ctx, session.ID, []model.ResolutionEdit{
		{Value: "teal", GenericColour: "blue"},
		{Value: "amber", GenericColour: "yellow"},
	}))
	// Re-resolving teal must replace its generic without moving it
	// behind amber.
	require.NoError(t, store.SaveResolutionEdits(ctx, session.ID, []model.ResolutionEdit{
		{Value: "teal", GenericColour: "green"},
	}))

	got, err := store.GetResolutionEdits(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.ResolutionEdit{
		{Value: "teal", GenericColour: "green"},
		{Value: "amber", GenericColour: "yellow"},
	}, got)
}

func TestDeleteResolutionEdit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	session := createTestSession(t, store)

	require.NoError(t, store.SaveResolutionEdits(ctx, session.ID, []model.ResolutionEdit{
		{Value: "teal", GenericColour: "blue"},
		{Value: "amber", GenericColour: "yellow"},
	}))
	require.NoError(t, store.DeleteResolutionEdit(ctx, session.ID, "teal"))

	got, err := store.GetResolutionEdits(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.ResolutionEdit{
		{Value: "amber", GenericColour: "yellow"},
	}, got)
}

func TestListSessions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	empty, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	first, err := store.CreateSession(ctx, "spring.tsv")
	require.NoError(t, err)
	second, err := store.CreateSession(ctx, "autumn.tsv")
	require.NoError(t, err)

	// Touching the older session moves it to the front
	require.NoError(t, store.TouchSession(ctx, first.ID))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
	assert.Equal(t, "spring.tsv", sessions[0].SourceFile)
}

func TestValidationErrors(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.CreateSession(ctx, "  ")
	assert.True(t, errors.Is(err, ErrEmptyString))

	_, err = store.GetSelection(ctx, "")
	assert.True(t, errors.Is(err, ErrEmptyString))

	err = store.SaveSelection(ctx, "session", nil)
	assert.True(t, errors.Is(err, ErrNilParameter))
}
