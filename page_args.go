package realestates

import (
	"encoding/json"
	"fmt"

	"github.com/nrfta/realestates-go/filter"
)

const (
	// DefaultCount is the number of items per page when not specified.
	DefaultCount = 20

	// MaxCount is the largest page a client may request.
	MaxCount = 100

	// MinCount is the smallest page a client may request.
	MinCount = 1
)

// PageConfig holds page size configuration.
// Use NewPageConfig() to create a config with the service defaults,
// then customize using the With* methods.
//
// Example:
//
//	config := realestates.NewPageConfig().WithDefaultCount(10)
//	if err := config.Validate(count); err != nil {
//	    return err
//	}
type PageConfig struct {
	// DefaultCount is the page size used when the descriptor omits count.
	DefaultCount int

	// MaxCount is the largest accepted count. Larger requests are rejected,
	// not capped.
	MaxCount int
}

// NewPageConfig creates a PageConfig with DefaultCount 20 and MaxCount 100.
func NewPageConfig() *PageConfig {
	return &PageConfig{
		DefaultCount: DefaultCount,
		MaxCount:     MaxCount,
	}
}

// WithDefaultCount sets the default page size and returns the config for chaining.
func (c *PageConfig) WithDefaultCount(count int) *PageConfig {
	if count > 0 {
		c.DefaultCount = count
	}
	return c
}

// WithMaxCount sets the maximum page size and returns the config for chaining.
func (c *PageConfig) WithMaxCount(count int) *PageConfig {
	if count > 0 {
		c.MaxCount = count
	}
	return c
}

// EffectiveCount returns count when given, the default otherwise.
// It does not validate; call Validate first.
func (c *PageConfig) EffectiveCount(count *int) int {
	if c == nil {
		c = NewPageConfig()
	}
	if count == nil {
		if c.DefaultCount <= 0 {
			return DefaultCount
		}
		return c.DefaultCount
	}
	return *count
}

// Validate rejects a count outside [MinCount, MaxCount]. A nil count is valid.
func (c *PageConfig) Validate(count *int) error {
	if c == nil {
		c = NewPageConfig()
	}
	if count == nil {
		return nil
	}

	maxCount := c.MaxCount
	if maxCount <= 0 {
		maxCount = MaxCount
	}

	if *count < MinCount || *count > maxCount {
		return &CountError{
			Requested: *count,
			Minimum:   MinCount,
			Maximum:   maxCount,
		}
	}
	return nil
}

// CountError is returned when the requested page size is out of range.
type CountError struct {
	Requested int
	Minimum   int
	Maximum   int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("count %d is out of range, expected %d to %d",
		e.Requested, e.Minimum, e.Maximum)
}

// QuerySpec is the validated form of a client list descriptor.
// It is built fresh for every request and discarded afterwards.
type QuerySpec struct {
	// Filter is the decoded client predicate. Visibility scoping ANDs the
	// principal's predicate onto it.
	Filter filter.Node

	// Sort holds the client sort keys in request order, without tiebreakers.
	Sort []OrderBy

	// Fields is the requested projection. Empty means every public field.
	Fields []string

	// Count is the page size.
	Count int

	// Cursor is the opaque token from a pagination link, if any.
	Cursor string

	// Query is the client query as received. Pagination links repeat it
	// verbatim so the next request decodes to the same filter.
	Query json.RawMessage
}

// Clone returns a shallow copy of s with its own slices.
func (s *QuerySpec) Clone() *QuerySpec {
	c := *s
	c.Sort = append([]OrderBy(nil), s.Sort...)
	c.Fields = append([]string(nil), s.Fields...)
	return &c
}
