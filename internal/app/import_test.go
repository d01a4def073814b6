package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/nepsewatch/internal/common"
	"github.com/bobmcallan/nepsewatch/internal/interfaces"
	"github.com/bobmcallan/nepsewatch/internal/storage/badger"
)

func newTestPortfolioStore(t *testing.T) interfaces.PortfolioStorage {
	t.Helper()
	logger := common.NewSilentLogger()
	store, err := badger.NewStore(logger, filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return badger.NewPortfolioStorage(store, logger)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolios.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestImportPortfoliosFromFile_Success(t *testing.T) {
	store := newTestPortfolioStore(t)
	ctx := context.Background()

	path := writeFile(t, `{
		"portfolios": [
			{
				"userId": "alice",
				"profiles": [
					{"id": "default", "name": "Main Portfolio", "stocks": [{"symbol": "NABIL", "quantity": 10, "note": ""}]},
					{"id": "mum", "name": "Mum", "stocks": []}
				]
			},
			{
				"userId": "bob",
				"stocks": [{"symbol": "NTC", "quantity": 50}]
			},
			{
				"userId": "",
				"stocks": [{"symbol": "ADBL", "quantity": 1}]
			}
		]
	}`)

	imported, skipped, err := ImportPortfoliosFromFile(ctx, store, common.NewSilentLogger(), path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if imported != 2 {
		t.Errorf("expected 2 imported, got %d", imported)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}

	alice, err := store.GetRecord(ctx, "alice")
	if err != nil || alice == nil {
		t.Fatalf("alice not stored: %v", err)
	}
	if len(alice.Profiles) != 2 {
		t.Errorf("expected 2 profiles for alice, got %d", len(alice.Profiles))
	}

	bob, err := store.GetRecord(ctx, "bob")
	if err != nil || bob == nil {
		t.Fatalf("bob not stored: %v", err)
	}
	if len(bob.Stocks) != 1 || bob.Stocks[0].Symbol != "NTC" {
		t.Errorf("expected bob's legacy stocks to be kept, got %+v", bob.Stocks)
	}
}

func TestImportPortfoliosFromFile_SkipsExisting(t *testing.T) {
	store := newTestPortfolioStore(t)
	ctx := context.Background()
	logger := common.NewSilentLogger()

	path := writeFile(t, `{"portfolios": [{"userId": "alice", "stocks": [{"symbol": "NTC", "quantity": 5}]}]}`)

	if _, _, err := ImportPortfoliosFromFile(ctx, store, logger, path); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	imported, skipped, err := ImportPortfoliosFromFile(ctx, store, logger, path)
	if err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if imported != 0 || skipped != 1 {
		t.Errorf("expected 0 imported / 1 skipped, got %d / %d", imported, skipped)
	}
}

func TestImportPortfoliosFromFile_MissingFile(t *testing.T) {
	store := newTestPortfolioStore(t)
	_, _, err := ImportPortfoliosFromFile(context.Background(), store, common.NewSilentLogger(), "/nonexistent/portfolios.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportPortfoliosFromFile_InvalidJSON(t *testing.T) {
	store := newTestPortfolioStore(t)
	path := writeFile(t, `{"portfolios": [`)
	_, _, err := ImportPortfoliosFromFile(context.Background(), store, common.NewSilentLogger(), path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
