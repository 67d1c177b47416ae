// Package workflow owns every write to real estates: creation, updates,
// removal, status transitions and the bumpup x-action.
//
// Status moves through a fixed table of actions:
//
//	editing --review--> reviewing --approve--> unpublished --publish--> published
//	   ^                    |                      |  ^                     |
//	   +------reject--------+                      |  +------unpublish------+
//	   +-----------------------edit----------------+
//
// approve and reject are admin actions. Publishing grants the public group
// read access and unpublishing withdraws it.
package workflow

import (
	"context"
	"slices"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"

	"github.com/nrfta/realestates-go"
)

// ActionBumpUp refreshes updatedAt without changing status.
const ActionBumpUp = "bumpup"

// Resolver loads a resource the principal may act on. executor.Executor
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, p realestates.Principal, id, action string) (*realestates.RealEstate, error)
}

type transition struct {
	from, to  string
	adminOnly bool
	apply     func(re *realestates.RealEstate)
}

var transitions = map[string]transition{
	"review":    {from: realestates.StatusEditing, to: realestates.StatusReviewing},
	"approve":   {from: realestates.StatusReviewing, to: realestates.StatusUnpublished, adminOnly: true},
	"reject":    {from: realestates.StatusReviewing, to: realestates.StatusEditing, adminOnly: true},
	"publish":   {from: realestates.StatusUnpublished, to: realestates.StatusPublished, apply: grantPublic},
	"unpublish": {from: realestates.StatusPublished, to: realestates.StatusUnpublished, apply: revokePublic},
	"edit":      {from: realestates.StatusUnpublished, to: realestates.StatusEditing},
}

// Actions lists the transition names in a stable order.
func Actions() []string {
	out := make([]string, 0, len(transitions))
	for name := range transitions {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Workflow applies writes to a store.
type Workflow struct {
	store    realestates.Store
	resolver Resolver
	now      func() time.Time
	newID    func() string
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithIDs replaces the uuid generator.
func WithIDs(newID func() string) Option {
	return func(w *Workflow) {
		w.newID = newID
	}
}

// New creates a Workflow writing to store. Reads go through resolver so
// writes see exactly what the caller may see.
func New(store realestates.Store, resolver Resolver, opts ...Option) *Workflow {
	w := &Workflow{
		store:    store,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Create stores re as a new editing resource owned by p.
func (w *Workflow) Create(ctx context.Context, p realestates.Principal, re *realestates.RealEstate) (*realestates.RealEstate, error) {
	if p.IsAnonymous() {
		return nil, realestates.Unauthorized("sign in to create real estates")
	}

	now := w.now()
	created := re.Clone()
	created.ID = w.newID()
	created.User = p.ID
	created.Status = realestates.StatusEditing
	created.Permissions = []realestates.Grant{
		realestates.UserGrant(p.ID, realestates.ActionRead, realestates.ActionUpdate, realestates.ActionDelete),
	}
	created.CreatedAt = now
	created.ModifiedAt = now
	created.UpdatedAt = now

	if err := w.store.Create(ctx, created); err != nil {
		return nil, errors.Wrap(err, "create real estate")
	}
	return created, nil
}

// Update replaces the client-owned fields of id with those of re.
func (w *Workflow) Update(ctx context.Context, p realestates.Principal, id string, re *realestates.RealEstate) (*realestates.RealEstate, error) {
	current, err := w.resolver.Resolve(ctx, p, id, realestates.ActionUpdate)
	if err != nil {
		return nil, err
	}

	now := w.now()
	updated := re.Clone()
	updated.ID = current.ID
	updated.User = current.User
	updated.Status = current.Status
	updated.Permissions = current.Permissions
	updated.CreatedAt = current.CreatedAt
	updated.ModifiedAt = now
	updated.UpdatedAt = now

	if err := w.save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes id.
func (w *Workflow) Remove(ctx context.Context, p realestates.Principal, id string) error {
	if _, err := w.resolver.Resolve(ctx, p, id, realestates.ActionDelete); err != nil {
		return err
	}

	err := w.store.Remove(ctx, id)
	if errors.Is(err, realestates.ErrNoRecord) {
		return realestates.NotFound("real estate %s not found", id)
	}
	return errors.Wrapf(err, "remove real estate %s", id)
}

// Transit applies the named status transition to id.
func (w *Workflow) Transit(ctx context.Context, p realestates.Principal, id, action string) (*realestates.RealEstate, error) {
	re, err := w.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	t, ok := transitions[action]
	if !ok {
		return nil, realestates.UnprocessableEntity("unknown action %q", action)
	}
	if t.adminOnly && !p.Admin {
		return nil, realestates.UnprocessableEntity("%s requires an administrator", action)
	}
	if re.Status != t.from {
		return nil, realestates.UnprocessableEntity("cannot %s a real estate in %s status", action, re.Status)
	}

	re.Status = t.to
	if t.apply != nil {
		t.apply(re)
	}
	re.ModifiedAt = w.now()

	if err := w.save(ctx, re); err != nil {
		return nil, err
	}
	return re, nil
}

// BumpUp moves id to the top of updatedAt ordered listings.
func (w *Workflow) BumpUp(ctx context.Context, p realestates.Principal, id string) error {
	re, err := w.owned(ctx, p, id)
	if err != nil {
		return err
	}
	re.UpdatedAt = w.now()
	return w.save(ctx, re)
}

// owned resolves id for its owner or an admin. Readers who are neither get
// the same NotFound as strangers.
func (w *Workflow) owned(ctx context.Context, p realestates.Principal, id string) (*realestates.RealEstate, error) {
	re, err := w.resolver.Resolve(ctx, p, id, realestates.ActionRead)
	if err != nil {
		return nil, err
	}
	if !p.Admin && (p.IsAnonymous() || re.User != p.ID) {
		return nil, realestates.NotFound("real estate %s not found", id)
	}
	return re, nil
}

func (w *Workflow) save(ctx context.Context, re *realestates.RealEstate) error {
	err := w.store.Update(ctx, re)
	if errors.Is(err, realestates.ErrNoRecord) {
		return realestates.NotFound("real estate %s not found", re.ID)
	}
	return errors.Wrapf(err, "update real estate %s", re.ID)
}

func grantPublic(re *realestates.RealEstate) {
	if re.IsPublic() {
		return
	}
	re.Permissions = append(re.Permissions, realestates.GroupGrant(realestates.PublicGroup, realestates.ActionRead))
}

func revokePublic(re *realestates.RealEstate) {
	re.Permissions = slices.DeleteFunc(re.Permissions, func(g realestates.Grant) bool {
		return g.Group == realestates.PublicGroup
	})
}
