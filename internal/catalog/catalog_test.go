package catalog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"intake/internal/catalog"
)

func openStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAssignsIdentityAndTimestamp(t *testing.T) {
	store := openStore(t)

	rec, err := store.Append(context.Background(), catalog.Record{
		Entity:     "AAPL",
		SourcePath: "/reports/AAPL/downloads/q1.zip",
		Kind:       "archive_multi",
		OutputPath: "/reports/AAPL/unzipped/q1",
		Entries:    3,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected timestamp")
	}
	if rec.Status != catalog.StatusCompleted {
		t.Fatalf("expected default status completed, got %q", rec.Status)
	}
}

func TestRecentFiltersAndOrders(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, entity := range []string{"AAPL", "MSFT", "AAPL"} {
		_, err := store.Append(ctx, catalog.Record{
			Entity:     entity,
			SourcePath: "/x",
			Status:     catalog.StatusCompleted,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.Recent(ctx, "", 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if !all[0].CreatedAt.After(all[2].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	aapl, err := store.Recent(ctx, "AAPL", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(aapl) != 2 {
		t.Fatalf("expected 2 AAPL records, got %d", len(aapl))
	}
	for _, rec := range aapl {
		if rec.Entity != "AAPL" {
			t.Fatalf("unexpected entity %q", rec.Entity)
		}
	}
}

func TestSummaryAggregatesPerEntity(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	outcomes := []catalog.Status{
		catalog.StatusCompleted,
		catalog.StatusCompleted,
		catalog.StatusFailed,
		catalog.StatusSkipped,
	}
	for _, status := range outcomes {
		if _, err := store.Append(ctx, catalog.Record{Entity: "TSLA", SourcePath: "/x", Status: status}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Append(ctx, catalog.Record{Entity: "NVDA", SourcePath: "/y", Status: catalog.StatusCompleted}); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(summaries))
	}

	var tsla *catalog.EntitySummary
	for i := range summaries {
		if summaries[i].Entity == "TSLA" {
			tsla = &summaries[i]
		}
	}
	if tsla == nil {
		t.Fatal("missing TSLA summary")
	}
	if tsla.Completed != 2 || tsla.Failed != 1 || tsla.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", tsla)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, catalog.Record{Entity: "X", SourcePath: "/x"}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}

	remaining, err := store.Recent(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty journal, got %d", len(remaining))
	}
}

func TestOpenReusesExistingSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	first, err := catalog.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Append(context.Background(), catalog.Record{Entity: "A", SourcePath: "/a"}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	records, err := second.Recent(context.Background(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected persisted record, got %d", len(records))
	}
}
