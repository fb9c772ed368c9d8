package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_InsertLookup(t *testing.T) {
	store := NewMemoryStore()
	ds := &Dataset{ID: "a", FileName: "a.csv", Columns: []string{"x"}, Rows: []Row{{IntCell(1)}}}

	if err := store.Insert(ds); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, ok := store.Lookup("a")
	if !ok {
		t.Fatal("Lookup(a) not found")
	}
	if got != ds {
		t.Error("Lookup returned a different dataset")
	}
	if _, ok := store.Lookup("missing"); ok {
		t.Error("Lookup(missing) should not be found")
	}
	if n := store.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	store := NewMemoryStore()
	first := &Dataset{ID: "a", FileName: "first.csv"}
	_ = store.Insert(first)

	err := store.Insert(&Dataset{ID: "a", FileName: "second.csv"})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Insert() error = %v, want ErrDuplicateID", err)
	}

	got, _ := store.Lookup("a")
	if got.FileName != "first.csv" {
		t.Errorf("existing dataset replaced: FileName = %q", got.FileName)
	}
}

func TestMemoryStore_ListOrder(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = store.Insert(&Dataset{ID: "c", CreatedAt: base.Add(2 * time.Second)})
	_ = store.Insert(&Dataset{ID: "b", CreatedAt: base})
	_ = store.Insert(&Dataset{ID: "a", CreatedAt: base})

	infos := store.List()
	want := []string{"a", "b", "c"}
	if len(infos) != len(want) {
		t.Fatalf("List() returned %d datasets, want %d", len(infos), len(want))
	}
	for i, id := range want {
		if infos[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, infos[i].ID, id)
		}
		if infos[i].AccessURL != "/data/"+id {
			t.Errorf("List()[%d].AccessURL = %q", i, infos[i].AccessURL)
		}
	}
}

func TestMemoryStore_ConcurrentInsert(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("ds-%d", i)
			if err := store.Insert(&Dataset{ID: id}); err != nil {
				t.Errorf("Insert(%s) error = %v", id, err)
			}
			if _, ok := store.Lookup(id); !ok {
				t.Errorf("Lookup(%s) not found after insert", id)
			}
		}(i)
	}
	wg.Wait()

	if n := store.Len(); n != 50 {
		t.Errorf("Len() = %d, want 50", n)
	}
}
