// Package executor runs list and fetch requests against a realestates.Store.
//
// A list request goes through every stage of the query engine:
//
//	decode → scope to the caller → plan → fetch Count+1 → trim and reverse
//	→ page info → projection → Link header
//
// The executor never writes to the store.
package executor

import (
	"context"
	"net/url"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/cursor"
	"github.com/nrfta/realestates-go/query"
	"github.com/nrfta/realestates-go/visibility"
)

const defaultTimeout = 3 * time.Second

// Executor answers list and fetch requests.
type Executor struct {
	store   realestates.Store
	decoder *query.Decoder
	schema  *cursor.Schema[*realestates.RealEstate]
	timeout time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithDecoder replaces the default query decoder.
func WithDecoder(d *query.Decoder) Option {
	return func(e *Executor) {
		e.decoder = d
	}
}

// WithTimeout bounds every store call.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// New creates an Executor over store.
func New(store realestates.Store, opts ...Option) *Executor {
	e := &Executor{
		store:   store,
		decoder: query.NewDecoder(),
		schema:  cursor.RealEstates,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is a rendered list page.
type Result struct {
	Page *realestates.Page[map[string]any]

	// Link is the value of the Link header, "" without neighbours.
	Link string
}

// Find decodes raw, restricts it to what p may read and returns one page.
// base is the absolute collection URL pagination links are built on.
func (e *Executor) Find(ctx context.Context, p realestates.Principal, raw string, base *url.URL) (*Result, error) {
	spec, err := e.decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	scoped := visibility.Scope(p, spec)

	plan, err := cursor.NewPlan(e.schema, scoped)
	if err != nil {
		return nil, err
	}
	if plan.Cursor != nil {
		id, _ := plan.Cursor.Values["id"].(string)
		if _, err := uuid.Parse(id); err != nil {
			return nil, realestates.BadRequest("%s", cursor.ErrInvalidCursor.Error())
		}
	}

	startTime := time.Now()
	items, err := e.fetch(ctx, plan.FetchParams(scoped.Filter))
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(startTime)

	nodes, info := cursor.Paginate(plan, items)
	page, err := realestates.BuildPage(nodes, info, func(re *realestates.RealEstate) (map[string]any, error) {
		return Project(re, spec.Fields), nil
	})
	if err != nil {
		return nil, err
	}
	page.Metadata = realestates.Metadata{
		Direction:     plan.Direction(),
		QueryTimeMs:   elapsed.Milliseconds(),
		ItemsExamined: len(items),
	}

	link, err := Links(base, spec, info)
	if err != nil {
		return nil, err
	}
	return &Result{Page: page, Link: link}, nil
}

func (e *Executor) fetch(ctx context.Context, params realestates.FetchParams) ([]*realestates.RealEstate, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	items, err := e.store.Find(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "find real estates")
	}
	return items, nil
}

// FindOne returns the resource id if p may read it.
func (e *Executor) FindOne(ctx context.Context, p realestates.Principal, id string) (*realestates.RealEstate, error) {
	return e.Resolve(ctx, p, id, realestates.ActionRead)
}

// Resolve returns the resource id if p may perform action on it. Unknown
// ids, malformed ids and resources p may not act on are all NotFound.
func (e *Executor) Resolve(ctx context.Context, p realestates.Principal, id, action string) (*realestates.RealEstate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, realestates.NotFound("real estate %s not found", id)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	re, err := e.store.FindOne(ctx, id)
	if errors.Is(err, realestates.ErrNoRecord) {
		return nil, realestates.NotFound("real estate %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find real estate %s", id)
	}

	if !visibility.Visible(p, re, action) {
		return nil, realestates.NotFound("real estate %s not found", id)
	}
	return re, nil
}
