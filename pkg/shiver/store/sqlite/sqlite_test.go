package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 table, got %d", count)
	}
}

func TestAddAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "collections.db")

	st, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	loc, err := st.Add(ctx, &records.Location{
		Name:        "Main street",
		Description: "Cobbles and fog.",
		Inhabitants: []string{"Alexander"},
		Features:    []string{},
		Tags:        []string{"eerie"},
	})
	if err != nil {
		t.Fatalf("Add location: %v", err)
	}
	cf, err := st.Add(ctx, &records.CaseFile{Name: "Case: Alexander", Status: "Open", Evidence: []string{"ledger"}})
	if err != nil {
		t.Fatalf("Add case: %v", err)
	}
	if loc.Meta().ID != 1 || cf.Meta().ID != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", loc.Meta().ID, cf.Meta().ID)
	}
	if loc.Meta().Route != "main-street" {
		t.Errorf("route = %q", loc.Meta().Route)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, err := st.Get(ctx, records.KindLocation, loc.Meta().ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(loc, got); diff != "" {
		t.Errorf("reloaded location differs (-want +got):\n%s", diff)
	}

	next, err := st.Add(ctx, &records.Chapter{Name: "Third"})
	if err != nil {
		t.Fatalf("Add after reopen: %v", err)
	}
	if next.Meta().ID != 3 {
		t.Errorf("id after reopen = %d, want 3", next.Meta().ID)
	}

	all, err := st.GetAll(ctx, records.KindCase)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 || all[0].Title() != "Case: Alexander" {
		t.Errorf("GetAll(case) = %+v", all)
	}
	if n, _ := st.Count(ctx, records.KindChapter); n != 1 {
		t.Errorf("Count(chapter) = %d", n)
	}
}

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "missing.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	if _, err := st.Get(ctx, records.KindMedia, 42); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.Add(ctx, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("nil record: got %v", err)
	}
}

func TestConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "concurrent.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	const n = 64
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  = make(map[int64]bool)
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := st.Add(ctx, &records.Character{Name: fmt.Sprintf("Walker %d", i)})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids[rec.Meta().ID] = true
		}(i)
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("%d of %d concurrent adds failed, first: %v", len(errs), n, errs[0])
	}
	if len(ids) != n {
		t.Errorf("expected %d unique ids, got %d", n, len(ids))
	}
	if count, _ := st.Count(ctx, records.KindCharacter); count != n {
		t.Errorf("Count(character) = %d, want %d", count, n)
	}
}
