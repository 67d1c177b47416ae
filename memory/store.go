// Package memory is an in-process realestates.Store.
//
// It evaluates filters with filter.Match and orders with the cursor
// comparator, so it exhibits exactly the semantics the database stores
// translate into their own query languages.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/cursor"
	"github.com/nrfta/realestates-go/filter"
)

// Store keeps records in a map guarded by a RWMutex. Records are cloned on
// the way in and out so callers never share state with the store.
type Store struct {
	mu      sync.RWMutex
	records map[string]*realestates.RealEstate
}

var _ realestates.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string]*realestates.RealEstate)}
}

func (s *Store) Create(ctx context.Context, re *realestates.RealEstate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[re.ID] = re.Clone()
	return nil
}

func (s *Store) FindOne(ctx context.Context, id string) (*realestates.RealEstate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	re, ok := s.records[id]
	if !ok {
		return nil, realestates.ErrNoRecord
	}
	return re.Clone(), nil
}

// Find scans every record. The keyset boundary is applied as one more
// predicate on top of params.Filter.
func (s *Store) Find(ctx context.Context, params realestates.FetchParams) ([]*realestates.RealEstate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	where := filter.Conjoin(params.Filter, cursor.Boundary(params.OrderBy, params.Cursor))

	s.mu.RLock()
	matched := make([]*realestates.RealEstate, 0)
	for _, re := range s.records {
		if filter.Match(where, re) {
			matched = append(matched, re.Clone())
		}
	}
	s.mu.RUnlock()

	cmp := cursor.Comparator(params.OrderBy)
	slices.SortFunc(matched, func(a, b *realestates.RealEstate) int {
		if c := cmp(a, b); c != 0 {
			return c
		}
		// map iteration is random; keep results stable without a tiebreaker
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	if params.Limit > 0 && len(matched) > params.Limit {
		matched = matched[:params.Limit]
	}
	return matched, nil
}

func (s *Store) Update(ctx context.Context, re *realestates.RealEstate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[re.ID]; !ok {
		return realestates.ErrNoRecord
	}
	s.records[re.ID] = re.Clone()
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return realestates.ErrNoRecord
	}
	delete(s.records, id)
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
