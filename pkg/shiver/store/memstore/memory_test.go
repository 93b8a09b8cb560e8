package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cognicore/shiver/pkg/shiver/internalerr"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

func TestAddAssignsSharedMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, err := s.Add(ctx, &records.Character{Name: "Mira Vale"})
	if err != nil {
		t.Fatalf("Add character: %v", err)
	}
	l, err := s.Add(ctx, &records.Location{Name: "Greyhaven"})
	if err != nil {
		t.Fatalf("Add location: %v", err)
	}
	c2, _ := s.Add(ctx, &records.Character{Name: ""})

	if c.Meta().ID != 1 || l.Meta().ID != 2 || c2.Meta().ID != 3 {
		t.Errorf("ids = %d, %d, %d; want 1, 2, 3", c.Meta().ID, l.Meta().ID, c2.Meta().ID)
	}
	if c.Meta().Route != "mira-vale" {
		t.Errorf("route = %q", c.Meta().Route)
	}
	if c2.Meta().Route != "item-3" {
		t.Errorf("fallback route = %q", c2.Meta().Route)
	}
	if c.Meta().CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	s := New()
	in := &records.Chapter{Name: "One"}
	if _, err := s.Add(context.Background(), in); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if in.Info.ID != 0 {
		t.Error("input record was stamped")
	}
}

func TestGetAndCount(t *testing.T) {
	ctx := context.Background()
	s := New()
	saved, _ := s.Add(ctx, &records.CaseFile{Name: "Case: Mira", Evidence: []string{"ledger"}})

	got, err := s.Get(ctx, records.KindCase, saved.Meta().ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.(*records.CaseFile).Evidence[0] != "ledger" {
		t.Errorf("unexpected record %+v", got)
	}
	got.(*records.CaseFile).Evidence[0] = "changed"
	again, _ := s.Get(ctx, records.KindCase, saved.Meta().ID)
	if again.(*records.CaseFile).Evidence[0] != "ledger" {
		t.Error("Get returned shared state")
	}

	if _, err := s.Get(ctx, records.KindCharacter, saved.Meta().ID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("wrong kind: got %v", err)
	}
	if n, _ := s.Count(ctx, records.KindCase); n != 1 {
		t.Errorf("Count = %d", n)
	}
	if _, err := s.GetAll(ctx, "nope"); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("GetAll bad kind: got %v", err)
	}
}

func TestConcurrentAddsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := New()
	const n = 100

	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := s.Add(ctx, &records.MediaItem{Name: "m"})
			if err == nil {
				ids <- rec.Meta().ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("got %d ids, want %d", len(seen), n)
	}
}
