package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/authz"
)

func TestScopeForSuperuser(t *testing.T) {
	resolver := authz.NewResolver(stubDirectory{})
	admin := principal{id: 1, super: true}

	scope, err := resolver.ScopeFor(context.Background(), admin, nil)
	require.NoError(t, err)
	assert.True(t, scope.All)
	assert.True(t, scope.AllowsOwner(999))
}

func TestScopeForRegularUser(t *testing.T) {
	resolver := authz.NewResolver(stubDirectory{})
	alice := principal{id: 2, role: authz.RoleRegular}

	scope, err := resolver.ScopeFor(context.Background(), alice, nil)
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.True(t, scope.AllowsOwner(2))
	assert.False(t, scope.AllowsOwner(3))
}

// The concrete scenario: leader1 leads alice; alice owns r1, bob owns r2.
// leader1 sees r1 and their own records, never r2; bob sees only r2.
func TestScopeLeaderScenario(t *testing.T) {
	directory := stubDirectory{reports: map[int64][]int64{
		10: {2}, // leader1 -> alice
	}}
	resolver := authz.NewResolver(directory)

	leader1 := principal{id: 10, role: authz.RoleGroupLeader}
	bob := principal{id: 3, role: authz.RoleRegular}

	leaderScope, err := resolver.ScopeFor(context.Background(), leader1, nil)
	require.NoError(t, err)
	assert.True(t, leaderScope.AllowsOwner(2), "alice's r1 is visible")
	assert.True(t, leaderScope.AllowsOwner(10), "leader1's own records are visible")
	assert.False(t, leaderScope.AllowsOwner(3), "bob's r2 is not visible")

	bobScope, err := resolver.ScopeFor(context.Background(), bob, nil)
	require.NoError(t, err)
	assert.True(t, bobScope.AllowsOwner(3))
	assert.False(t, bobScope.AllowsOwner(2))
	assert.False(t, bobScope.AllowsOwner(10))
}

func TestDateRangeAllOrNothing(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	assert.Nil(t, authz.DateRangeFrom(&start, nil), "start alone must not activate the filter")
	assert.Nil(t, authz.DateRangeFrom(nil, &end), "end alone must not activate the filter")
	assert.Nil(t, authz.DateRangeFrom(nil, nil))

	dr := authz.DateRangeFrom(&start, &end)
	require.NotNil(t, dr)
	assert.True(t, dr.Contains(start), "range is inclusive at the start")
	assert.True(t, dr.Contains(end), "range is inclusive at the end")
	assert.True(t, dr.Contains(start.AddDate(0, 0, 10)))
	assert.False(t, dr.Contains(start.Add(-time.Second)))
	assert.False(t, dr.Contains(end.Add(time.Second)))
}

func TestScopeDateFilterOnlyNarrows(t *testing.T) {
	resolver := authz.NewResolver(stubDirectory{})
	alice := principal{id: 2, role: authz.RoleRegular}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	scope, err := resolver.ScopeFor(context.Background(), alice, authz.DateRangeFrom(&start, &end))
	require.NoError(t, err)

	inRange := start.AddDate(0, 0, 5)
	outOfRange := end.AddDate(0, 1, 0)
	assert.True(t, scope.Allows(2, inRange))
	assert.False(t, scope.Allows(2, outOfRange), "date filter narrows membership")
	assert.True(t, scope.AllowsOwner(2), "owner membership is unaffected by the filter")
	assert.False(t, scope.Allows(3, inRange), "filter never widens membership")
}

// Predicate and scope resolver must agree on membership for every actor and
// record owner, modulo the date filter.
func TestScopePredicateConsistency(t *testing.T) {
	directory := stubDirectory{reports: map[int64][]int64{
		10: {2, 4},
		11: {5},
	}}
	policy := authz.NewPolicy(directory, nil)
	resolver := authz.NewResolver(directory)

	actors := []principal{
		{id: 1, role: authz.RoleAdministrator, super: true},
		{id: 2, role: authz.RoleRegular},
		{id: 3, role: authz.RoleRegular},
		{id: 4, role: authz.RoleRegular},
		{id: 5, role: authz.RoleRegular},
		{id: 10, role: authz.RoleGroupLeader},
		{id: 11, role: authz.RoleGroupLeader},
	}
	owners := []int64{1, 2, 3, 4, 5, 10, 11}

	for _, actor := range actors {
		scope, err := resolver.ScopeFor(context.Background(), actor, nil)
		require.NoError(t, err)
		for _, owner := range owners {
			allowed, err := policy.CanAccess(context.Background(), actor, record{owner: owner}, authz.ActionRead)
			require.NoError(t, err)
			assert.Equal(t, allowed, scope.AllowsOwner(owner),
				"actor %d, owner %d: predicate and scope must agree", actor.id, owner)
		}
	}
}
