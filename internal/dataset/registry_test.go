package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := OpenRegistry(filepath.Join(t.TempDir(), ".mnedata", "registry.bolt"))
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestRegistryUpsertGet(t *testing.T) {
	reg := openTestRegistry(t)

	rec := Record{
		Name:        "sample",
		Version:     "0.7",
		Path:        "/home/alice/mne_data/MNE-sample-data",
		ArchiveSize: 1024,
		FetchedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := reg.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := reg.Get(context.Background(), "sample")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got != rec {
		t.Fatalf("get = %+v, want %+v", *got, rec)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	reg := openTestRegistry(t)

	_, err := reg.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestRegistryUpsertRequiresName(t *testing.T) {
	reg := openTestRegistry(t)

	if err := reg.Upsert(context.Background(), Record{Version: "1"}); err == nil {
		t.Fatalf("expected error for nameless record")
	}
}

func TestRegistryListAndDelete(t *testing.T) {
	reg := openTestRegistry(t)

	for _, name := range []string{"sample", "somato", "testing"} {
		if err := reg.Upsert(context.Background(), Record{Name: name, Version: "1"}); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	records, err := reg.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// bbolt iterates keys in byte order
	if records[0].Name != "sample" || records[2].Name != "testing" {
		t.Fatalf("unexpected order: %v", records)
	}

	if err := reg.Delete(context.Background(), "somato"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, err = reg.List(context.Background())
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records after delete, got %d", len(records))
	}

	// Deleting a missing record is fine
	if err := reg.Delete(context.Background(), "somato"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestRegistryHonorsContext(t *testing.T) {
	reg := openTestRegistry(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := reg.Upsert(ctx, Record{Name: "sample"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("upsert with canceled ctx = %v, want context.Canceled", err)
	}
	if _, err := reg.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("list with canceled ctx = %v, want context.Canceled", err)
	}
}
