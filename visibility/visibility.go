// Package visibility narrows queries to what a principal may see.
//
// A real estate is visible to a principal for an action when the principal
// owns it, or when one of its grants names the principal (directly or through
// a group, the implicit public group included) and allows the action. Admins
// see everything. The predicate is always ANDed onto the client filter, so a
// client filter can narrow a listing but never widen it.
package visibility

import (
	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
)

// Predicate returns the filter selecting resources p may perform action on.
// Admins get filter.All.
func Predicate(p realestates.Principal, action string) filter.Node {
	if p.Admin {
		return filter.All{}
	}

	groups := p.AllGroups()
	groupList := make([]any, len(groups))
	for i, g := range groups {
		groupList[i] = g
	}

	branches := []filter.Node{
		filter.ElemMatch{Field: "permissions", Node: filter.Conjoin(
			filter.Cmp("group", filter.OpIn, groupList),
			filter.Cmp("actions", filter.OpEq, action),
		)},
	}
	if !p.IsAnonymous() {
		branches = append([]filter.Node{
			filter.Cmp("user", filter.OpEq, p.ID),
			filter.ElemMatch{Field: "permissions", Node: filter.Conjoin(
				filter.Cmp("user", filter.OpEq, p.ID),
				filter.Cmp("actions", filter.OpEq, action),
			)},
		}, branches...)
	}
	return filter.Disjoin(branches...)
}

// Scope returns a copy of spec whose filter also requires read visibility
// for p. The input spec is not modified.
func Scope(p realestates.Principal, spec *realestates.QuerySpec) *realestates.QuerySpec {
	scoped := spec.Clone()
	scoped.Filter = filter.Conjoin(spec.Filter, Predicate(p, realestates.ActionRead))
	return scoped
}

// Visible reports whether p may perform action on re.
func Visible(p realestates.Principal, re *realestates.RealEstate, action string) bool {
	if p.Admin {
		return true
	}
	if !p.IsAnonymous() && re.User == p.ID {
		return true
	}
	for _, g := range re.Permissions {
		if g.Matches(p) && g.Allows(action) {
			return true
		}
	}
	return false
}
