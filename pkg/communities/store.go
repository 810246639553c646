package communities

import (
	"context"
)

// Store persists community records keyed by tenant id.
type Store interface {
	// Save upserts a record and returns the stored value.
	Save(ctx context.Context, c Community) (Community, error)
	// Find returns all records matching the partial-field filter.
	Find(ctx context.Context, f Filter) ([]Community, error)
	// Remove deletes by tenant id; false when no record existed.
	Remove(ctx context.Context, tenantID string) (bool, error)
}

// First is a convenience for single-result lookups: the first match, or
// false when none found. Absence is not an error.
func First(ctx context.Context, s Store, f Filter) (Community, bool, error) {
	list, err := s.Find(ctx, f)
	if err != nil {
		return Community{}, false, err
	}
	if len(list) == 0 {
		return Community{}, false, nil
	}
	return list[0], true, nil
}
