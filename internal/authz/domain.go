// Package authz decides record visibility and access for the CRM.
//
// Two entry points exist: Policy.CanAccess gates a single record, and
// Resolver.ScopeFor computes the set of record owners an actor may list.
// Both are driven by the same role rules so their answers never diverge.
package authz

import (
	"context"
	"time"
)

// Role is the coarse permission tier assigned to a user.
type Role string

const (
	// RoleRegular users see and modify only records they own.
	RoleRegular Role = "regular"
	// RoleGroupLeader users additionally see records owned by their direct reports.
	RoleGroupLeader Role = "group_leader"
	// RoleAdministrator is the named tier for administrative accounts. Access
	// decisions key off the superuser flag, not this value.
	RoleAdministrator Role = "administrator"
)

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleRegular, RoleGroupLeader, RoleAdministrator:
		return true
	}
	return false
}

// Action identifies the operation being authorized.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Decision is the outcome of a single rule evaluation.
type Decision int

const (
	// Abstain passes the decision to the next rule in priority order.
	Abstain Decision = iota
	// Allow grants the action and stops evaluation.
	Allow
	// Deny refuses the action and stops evaluation.
	Deny
)

// Principal describes the authenticated actor.
type Principal interface {
	GetID() int64
	GetRole() Role
	IsSuperUser() bool
}

// Owned is any record carrying an owner reference.
type Owned interface {
	GetOwnerID() int64
}

// Directory resolves the leadership relation between users. Implemented by the
// users repository; the core only ever reads direct-report edges.
type Directory interface {
	ListDirectReportIDs(ctx context.Context, leaderID int64) ([]int64, error)
}

// DateRange is an inclusive creation-time filter.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DateRangeFrom builds a range only when both bounds are supplied. A single
// bound deactivates the filter entirely rather than producing a half-open one.
func DateRangeFrom(start, end *time.Time) *DateRange {
	if start == nil || end == nil {
		return nil
	}
	return &DateRange{Start: *start, End: *end}
}

// Contains reports whether t falls within the inclusive range.
func (d *DateRange) Contains(t time.Time) bool {
	if d == nil {
		return true
	}
	return !t.Before(d.Start) && !t.After(d.End)
}
