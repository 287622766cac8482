package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const bucketDatasets = "datasets"

// ErrNotFound is returned when a dataset record is missing from the registry.
var ErrNotFound = errors.New("dataset: record not found")

// Record is one registered dataset inside the data directory.
type Record struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Path        string    `json:"path"`
	ArchiveSize int64     `json:"archive_size"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Registry is a bbolt-backed index of fetched datasets.
type Registry struct {
	db *bbolt.DB
}

// OpenRegistry opens the registry database, creating parent directories and
// the schema as needed.
func OpenRegistry(path string) (*Registry, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create registry directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open registry db: %w", err)
	}

	reg := &Registry{db: db}
	if err := reg.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return reg, nil
}

func (r *Registry) ensureBuckets() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketDatasets)); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucketDatasets, err)
		}
		return nil
	})
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Get returns the record for name, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, name string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketDatasets)).Get([]byte(name))
		if data == nil {
			return ErrNotFound
		}
		rec = &Record{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("decode record %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns all records, ordered by name.
func (r *Registry) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketDatasets)).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode record %s: %w", k, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Upsert stores rec keyed by its name.
func (r *Registry) Upsert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Name == "" {
		return fmt.Errorf("record name is required")
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", rec.Name, err)
		}
		return tx.Bucket([]byte(bucketDatasets)).Put([]byte(rec.Name), data)
	})
}

// Delete removes the record for name. Deleting an absent record is not an
// error.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketDatasets)).Delete([]byte(name))
	})
}
