package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func testRecord(i int) Record {
	return Record{
		At:      time.Date(2025, 6, 1, 12, 0, i, 0, time.UTC),
		From:    "all-mounted",
		To:      "any-unmounted",
		Path:    fmt.Sprintf("/mnt/%d", i),
		Command: "echo down",
		Success: true,
	}
}

// storeFactories lets the same tests run against both implementations.
func storeFactories(t *testing.T) map[string]func() Store {
	t.Helper()

	return map[string]func() Store{
		"bolt": func() Store {
			s, err := NewBoltStore(filepath.Join(t.TempDir(), "history.db"))
			if err != nil {
				t.Fatalf("NewBoltStore() error = %v", err)
			}
			return s
		},
		"memory": func() Store {
			return NewMemoryStore()
		},
	}
}

func TestAppendAndRecent(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer func() {
				if err := s.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}()

			for i := 0; i < 5; i++ {
				if err := s.Append(testRecord(i)); err != nil {
					t.Fatalf("Append() error = %v", err)
				}
			}

			records, err := s.Recent(3)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}

			if len(records) != 3 {
				t.Fatalf("len(Recent(3)) = %d, want 3", len(records))
			}
			// Newest first.
			for i, want := range []string{"/mnt/4", "/mnt/3", "/mnt/2"} {
				if records[i].Path != want {
					t.Errorf("records[%d].Path = %q, want %q", i, records[i].Path, want)
				}
			}
		})
	}
}

func TestRecentMoreThanStored(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer func() {
				if err := s.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}()

			if err := s.Append(testRecord(0)); err != nil {
				t.Fatalf("Append() error = %v", err)
			}

			records, err := s.Recent(100)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(records) != 1 {
				t.Errorf("len(Recent(100)) = %d, want 1", len(records))
			}
		})
	}
}

func TestRecentEmptyAndNonPositive(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer func() {
				if err := s.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}()

			if records, err := s.Recent(10); err != nil || len(records) != 0 {
				t.Errorf("Recent(10) on empty store = %v, %v", records, err)
			}
			if records, err := s.Recent(0); err != nil || records != nil {
				t.Errorf("Recent(0) = %v, %v, want nil, nil", records, err)
			}
			if records, err := s.Recent(-1); err != nil || records != nil {
				t.Errorf("Recent(-1) = %v, %v, want nil, nil", records, err)
			}
		})
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	rec := testRecord(1)
	rec.Error = "exit status 2"
	rec.Success = false
	rec.DurationMS = 1500
	if appendErr := s.Append(rec); appendErr != nil {
		t.Fatalf("Append() error = %v", appendErr)
	}
	if closeErr := s.Close(); closeErr != nil {
		t.Fatalf("Close() error = %v", closeErr)
	}

	s, err = NewBoltStore(path)
	if err != nil {
		t.Fatalf("reopen NewBoltStore() error = %v", err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			t.Errorf("Close() error = %v", closeErr)
		}
	}()

	records, err := s.Recent(1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(Recent(1)) = %d, want 1", len(records))
	}

	got := records[0]
	if got.Path != rec.Path || got.Error != rec.Error || got.Success || got.DurationMS != 1500 {
		t.Errorf("reloaded record = %+v, want %+v", got, rec)
	}
	if !got.At.Equal(rec.At) {
		t.Errorf("reloaded At = %v, want %v", got.At, rec.At)
	}
}

func TestBoltStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "history.db")

	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	if closeErr := s.Close(); closeErr != nil {
		t.Errorf("Close() error = %v", closeErr)
	}
}
