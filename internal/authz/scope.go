package authz

import (
	"context"
	"fmt"
	"time"
)

// Scope describes the exact set of records an actor may list: either every
// record, or records whose owner is in OwnerIDs, optionally narrowed by an
// inclusive creation-date range.
type Scope struct {
	All      bool
	OwnerIDs []int64
	Range    *DateRange
}

// AllowsOwner reports whether records owned by ownerID are inside the scope,
// ignoring the date filter. This mirrors Policy.CanAccess for reads.
func (s Scope) AllowsOwner(ownerID int64) bool {
	if s.All {
		return true
	}
	for _, id := range s.OwnerIDs {
		if id == ownerID {
			return true
		}
	}
	return false
}

// Allows reports full scope membership, date filter included.
func (s Scope) Allows(ownerID int64, createdAt time.Time) bool {
	return s.AllowsOwner(ownerID) && s.Range.Contains(createdAt)
}

// Resolver computes listing scopes from the same role rules the Policy
// enforces per record.
type Resolver struct {
	directory Directory
}

// NewResolver constructs a Resolver.
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// ScopeFor returns the visibility scope for the actor. Superusers see all
// records; group leaders see their direct reports' records plus their own;
// everyone else sees only their own. The range narrows the result but never
// widens it.
func (r *Resolver) ScopeFor(ctx context.Context, actor Principal, dateRange *DateRange) (Scope, error) {
	if actor == nil {
		return Scope{}, fmt.Errorf("authz: nil actor")
	}

	scope := Scope{Range: dateRange}
	switch {
	case actor.IsSuperUser():
		scope.All = true
	case actor.GetRole() == RoleGroupLeader:
		reports, err := r.directory.ListDirectReportIDs(ctx, actor.GetID())
		if err != nil {
			return Scope{}, fmt.Errorf("authz: list direct reports: %w", err)
		}
		scope.OwnerIDs = append(reports, actor.GetID())
	default:
		scope.OwnerIDs = []int64{actor.GetID()}
	}
	return scope, nil
}
