package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/models"
)

// --- Test helpers ---

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(testLogger(), filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

// --- Store tests ---

func TestStore_OpenClose(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(testLogger(), filepath.Join(dir, "nested", "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store.DB() == nil {
		t.Fatal("expected non-nil DB")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{}
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil DB should not error: %v", err)
	}
}

func TestStore_FromConfig(t *testing.T) {
	cfg := common.StorageConfig{Path: filepath.Join(t.TempDir(), "portfolio")}
	store, err := NewStoreFromConfig(cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badger")
	ctx := context.Background()

	store, err := NewStore(testLogger(), path)
	require.NoError(t, err)
	_, err = NewPortfolioStorage(store, testLogger()).SaveProfiles(ctx, "alice", []models.Profile{
		{ID: "default", Name: "Main Portfolio", Stocks: []models.Holding{{Symbol: "NABIL", Quantity: 10}}},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(testLogger(), path)
	require.NoError(t, err)
	defer store.Close()

	rec, err := NewPortfolioStorage(store, testLogger()).GetRecord(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "NABIL", rec.Profiles[0].Stocks[0].Symbol)
}

// --- Portfolio storage tests ---

func TestPortfolioStorage_GetMissing(t *testing.T) {
	ps := NewPortfolioStorage(newTestStore(t), testLogger())

	rec, err := ps.GetRecord(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestPortfolioStorage_SaveProfiles(t *testing.T) {
	ps := NewPortfolioStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	profiles := []models.Profile{
		{ID: "default", Name: "Main Portfolio", Stocks: []models.Holding{
			{Symbol: "NABIL", Quantity: 10, Note: "IPO"},
			{Symbol: "NTC", Quantity: 25.5},
		}},
		{ID: "mum", Name: "Mum", Stocks: []models.Holding{{Symbol: "UPPER", Quantity: 100}}},
	}

	saved, err := ps.SaveProfiles(ctx, "alice", profiles)
	require.NoError(t, err)
	assert.Equal(t, "alice", saved.UserID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := ps.GetRecord(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, profiles, got.Profiles)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
}

func TestPortfolioStorage_SaveKeepsCreatedAtAndLegacyStocks(t *testing.T) {
	ps := NewPortfolioStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, ps.PutRecord(ctx, &models.PortfolioRecord{
		UserID:    "bob",
		Stocks:    []models.Holding{{Symbol: "ADBL", Quantity: 50}},
		CreatedAt: created,
	}))

	_, err := ps.SaveProfiles(ctx, "bob", []models.Profile{{ID: "p1", Name: "One"}})
	require.NoError(t, err)

	got, err := ps.GetRecord(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, got.UpdatedAt.After(created))
	assert.Equal(t, []models.Holding{{Symbol: "ADBL", Quantity: 50}}, got.Stocks)
	require.Len(t, got.Profiles, 1)
	assert.Equal(t, "p1", got.Profiles[0].ID)
}

func TestPortfolioStorage_PutRecordRequiresUser(t *testing.T) {
	ps := NewPortfolioStorage(newTestStore(t), testLogger())

	assert.Error(t, ps.PutRecord(context.Background(), &models.PortfolioRecord{}))
	assert.Error(t, ps.PutRecord(context.Background(), nil))
}

func TestPortfolioStorage_DeleteAndList(t *testing.T) {
	ps := NewPortfolioStorage(newTestStore(t), testLogger())
	ctx := context.Background()

	for _, u := range []string{"carol", "alice", "bob"} {
		_, err := ps.SaveProfiles(ctx, u, nil)
		require.NoError(t, err)
	}

	users, err := ps.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, users)

	require.NoError(t, ps.DeleteRecord(ctx, "bob"))
	require.NoError(t, ps.DeleteRecord(ctx, "bob"), "deleting twice is not an error")

	users, err = ps.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, users)

	rec, err := ps.GetRecord(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

// --- Quote cache tests ---

func TestQuoteCache_EmptyThenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	qc := NewQuoteCacheStorage(store, testLogger())
	ctx := context.Background()

	snap, err := qc.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	updated := time.Date(2026, 3, 4, 11, 30, 0, 0, time.UTC)
	quotes := []models.Quote{
		{Symbol: "NABIL", Name: "Nabil Bank Limited", CurrentPrice: 1250.5, PreviousPrice: 1240.5, OpenPrice: 1240, Sector: "Commercial Bank"},
	}
	require.NoError(t, qc.SaveQuotes(ctx, models.FeedSnapshot{Quotes: quotes, UpdatedAt: updated, Status: models.FeedStatusLive}))

	snap, err = qc.LoadQuotes(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, quotes, snap.Quotes)
	assert.True(t, updated.Equal(snap.UpdatedAt))
}

func TestQuoteCache_DoesNotCollideWithPortfolios(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ps := NewPortfolioStorage(store, testLogger())
	_, err := ps.SaveProfiles(ctx, "latest", []models.Profile{{ID: "x", Name: "X"}})
	require.NoError(t, err)

	qc := NewQuoteCacheStorage(store, testLogger())
	require.NoError(t, qc.SaveQuotes(ctx, models.FeedSnapshot{Quotes: []models.Quote{{Symbol: "NTC", CurrentPrice: 890}}}))

	rec, err := ps.GetRecord(ctx, "latest")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "x", rec.Profiles[0].ID)
}
