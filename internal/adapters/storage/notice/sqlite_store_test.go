package notice_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"noticeboard/internal/adapters/storage"
	noticeStore "noticeboard/internal/adapters/storage/notice"
	domain "noticeboard/internal/domain/notice"
)

// openTestDB creates a temp-file SQLite database with the full schema.
// A file-backed DB (not :memory:) so concurrent connections share state.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return db
}

var testTime = time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

// insertTestNotice inserts a notice with sensible defaults and returns its id.
func insertTestNotice(t *testing.T, store *noticeStore.SQLiteStore, title string) int64 {
	t.Helper()
	id, err := store.Insert(context.Background(), domain.Notice{
		Title:     title,
		IsNotice:  domain.FlagRegular,
		Contents:  "test contents",
		AuthorID:  "USER01",
		CreatedBy: "USER01",
		CreatedAt: testTime,
		UpdatedBy: "USER01",
		UpdatedAt: testTime,
	})
	if err != nil {
		t.Fatalf("Insert() unexpected error: %v", err)
	}
	return id
}

// TestSQLiteStore_InsertAssignsIDs tests that the store assigns increasing ids.
func TestSQLiteStore_InsertAssignsIDs(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))

	first := insertTestNotice(t, store, "first")
	second := insertTestNotice(t, store, "second")

	if first <= 0 {
		t.Errorf("expected positive id, got %d", first)
	}
	if second <= first {
		t.Errorf("expected second id > first id, got %d <= %d", second, first)
	}
}

// TestSQLiteStore_RoundTrip tests that an inserted notice reads back intact.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	id, err := store.Insert(ctx, domain.Notice{
		Title:     "System maintenance",
		IsNotice:  domain.FlagPinned,
		Contents:  "Scheduled downtime",
		AuthorID:  "USER01",
		CreatedBy: "USER01",
		CreatedAt: testTime,
		UpdatedBy: "USER01",
		UpdatedAt: testTime,
	})
	if err != nil {
		t.Fatalf("Insert() unexpected error: %v", err)
	}

	got, err := store.GetByID(ctx, id, false)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if got.ID != id {
		t.Errorf("expected ID=%d, got %d", id, got.ID)
	}
	if got.Title != "System maintenance" || got.IsNotice != domain.FlagPinned ||
		got.Contents != "Scheduled downtime" || got.AuthorID != "USER01" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.ReadCount != 0 {
		t.Errorf("expected ReadCount=0, got %d", got.ReadCount)
	}
	if !got.CreatedAt.Equal(testTime) || !got.UpdatedAt.Equal(testTime) {
		t.Errorf("expected created_at == updated_at == %v, got %v / %v", testTime, got.CreatedAt, got.UpdatedAt)
	}
	if got.CreatedBy != "USER01" || got.UpdatedBy != "USER01" {
		t.Errorf("expected audit stamps USER01, got %s / %s", got.CreatedBy, got.UpdatedBy)
	}
}

// TestSQLiteStore_GetByID_Increment tests read-count increment semantics.
func TestSQLiteStore_GetByID_Increment(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	id := insertTestNotice(t, store, "counted")

	for i := int64(1); i <= 3; i++ {
		got, err := store.GetByID(ctx, id, true)
		if err != nil {
			t.Fatalf("GetByID(increment) unexpected error: %v", err)
		}
		if got.ReadCount != i {
			t.Errorf("after %d counted reads, expected ReadCount=%d, got %d", i, i, got.ReadCount)
		}
	}

	// Plain reads never change the counter.
	for i := 0; i < 5; i++ {
		got, err := store.GetByID(ctx, id, false)
		if err != nil {
			t.Fatalf("GetByID() unexpected error: %v", err)
		}
		if got.ReadCount != 3 {
			t.Errorf("plain read changed ReadCount: got %d, want 3", got.ReadCount)
		}
	}
}

// TestSQLiteStore_GetByID_NotFound tests that a missing id yields ErrNotFound,
// with and without increment.
func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	if _, err := store.GetByID(ctx, 999, false); !errors.Is(err, noticeStore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByID(ctx, 999, true); !errors.Is(err, noticeStore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on counted read, got %v", err)
	}
}

// TestSQLiteStore_ConcurrentIncrements tests that M concurrent counted reads
// bump the counter by exactly M (no lost updates).
func TestSQLiteStore_ConcurrentIncrements(t *testing.T) {
	db := openTestDB(t)
	db.SetMaxOpenConns(10)
	store := noticeStore.NewSQLiteStore(db)
	ctx := context.Background()
	id := insertTestNotice(t, store, "hot notice")

	const m = 25
	var wg sync.WaitGroup
	errs := make(chan error, m)
	for i := 0; i < m; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.GetByID(ctx, id, true); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent counted read failed: %v", err)
	}

	got, err := store.GetByID(ctx, id, false)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if got.ReadCount != m {
		t.Errorf("expected ReadCount=%d after %d concurrent reads, got %d", m, m, got.ReadCount)
	}
}

// TestSQLiteStore_Update tests that Update touches only the mutable columns.
func TestSQLiteStore_Update(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	id := insertTestNotice(t, store, "before")

	// Bump the counter so we can observe it surviving the update.
	if _, err := store.GetByID(ctx, id, true); err != nil {
		t.Fatalf("GetByID(increment) unexpected error: %v", err)
	}

	later := testTime.Add(2 * time.Hour)
	err := store.Update(ctx, id, noticeStore.UpdateFields{
		Title:    "after",
		IsNotice: domain.FlagPinned,
		Contents: "updated contents",
		AuthorID: "USER02",
	}, later)
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}

	got, err := store.GetByID(ctx, id, false)
	if err != nil {
		t.Fatalf("GetByID() unexpected error: %v", err)
	}
	if got.Title != "after" || got.IsNotice != domain.FlagPinned ||
		got.Contents != "updated contents" || got.AuthorID != "USER02" {
		t.Errorf("update not applied: %+v", got)
	}
	if got.UpdatedBy != "USER02" || !got.UpdatedAt.Equal(later) {
		t.Errorf("expected updated stamps USER02/%v, got %s/%v", later, got.UpdatedBy, got.UpdatedAt)
	}
	// Immutable columns survive.
	if got.ID != id {
		t.Errorf("update changed id: %d -> %d", id, got.ID)
	}
	if got.CreatedBy != "USER01" || !got.CreatedAt.Equal(testTime) {
		t.Errorf("update touched created stamps: %s/%v", got.CreatedBy, got.CreatedAt)
	}
	if got.ReadCount != 1 {
		t.Errorf("update touched read count: got %d, want 1", got.ReadCount)
	}
}

// TestSQLiteStore_Update_NotFound tests that updating a missing id reports
// ErrNotFound and leaves the store unchanged.
func TestSQLiteStore_Update_NotFound(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	id := insertTestNotice(t, store, "only one")

	err := store.Update(ctx, id+100, noticeStore.UpdateFields{
		Title: "x", IsNotice: domain.FlagRegular, Contents: "y", AuthorID: "USER02",
	}, testTime)
	if !errors.Is(err, noticeStore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() unexpected error: %v", err)
	}
	if len(all) != 1 || all[0].Title != "only one" {
		t.Errorf("store changed by failed update: %+v", all)
	}
}

// TestSQLiteStore_Delete tests hard delete and NotFound on re-delete.
func TestSQLiteStore_Delete(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()
	id := insertTestNotice(t, store, "doomed")

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := store.GetByID(ctx, id, false); !errors.Is(err, noticeStore.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, noticeStore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

// TestSQLiteStore_ListAll tests list ordering and the empty-board case.
func TestSQLiteStore_ListAll(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	all, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() on empty board: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected empty slice, got %d notices", len(all))
	}

	insertTestNotice(t, store, "oldest")
	insertTestNotice(t, store, "middle")
	insertTestNotice(t, store, "newest")

	all, err = store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 notices, got %d", len(all))
	}
	if all[0].Title != "newest" || all[2].Title != "oldest" {
		t.Errorf("expected newest-first ordering, got %s .. %s", all[0].Title, all[2].Title)
	}
}

// TestSQLiteStore_InsertRejectsConstraintViolations tests the schema checks.
func TestSQLiteStore_InsertRejectsConstraintViolations(t *testing.T) {
	store := noticeStore.NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Insert(ctx, domain.Notice{
		Title:     "bad flag",
		IsNotice:  "Q",
		Contents:  "c",
		AuthorID:  "USER01",
		CreatedBy: "USER01",
		CreatedAt: testTime,
		UpdatedBy: "USER01",
		UpdatedAt: testTime,
	})
	if err == nil {
		t.Error("expected constraint error for invalid flag")
	}
}
