package answers

import (
	"context"
	"time"
)

// MemoryStore keeps answers for the lifetime of the process. It is the test
// double for the state machine and the degraded mode when the durable store
// cannot be opened (a missing or corrupt store is an empty cache, not a
// fatal condition).
type MemoryStore struct {
	records map[string]Record
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Seed pre-loads records, silently dropping placeholder rows. Used when
// importing a legacy answer file.
func (s *MemoryStore) Seed(recs []Record) {
	for _, rec := range recs {
		if validate(rec) != nil {
			continue
		}
		s.records[rec.Signature] = rec
	}
}

// Lookup returns the remembered value for a signature.
func (s *MemoryStore) Lookup(_ context.Context, signature string) (string, bool, error) {
	rec, ok := s.records[signature]
	if !ok {
		return "", false, nil
	}
	return rec.Value, true, nil
}

// Remember stores a record, overwriting any previous value for the same
// signature.
func (s *MemoryStore) Remember(_ context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[rec.Signature] = rec
	return nil
}

// Close is a no-op for the in-process store.
func (s *MemoryStore) Close() {}

// Len reports the number of remembered answers.
func (s *MemoryStore) Len() int {
	return len(s.records)
}
