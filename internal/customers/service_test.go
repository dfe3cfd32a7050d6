package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdesk/salesdesk/internal/authz"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/users"
)

type mockRepository struct {
	records map[int64]*Detail
	order   []int64
	names   map[int64]string
	nextID  int64
	now     time.Time
}

func newMockRepository(names map[int64]string) *mockRepository {
	return &mockRepository{
		records: make(map[int64]*Detail),
		names:   names,
		nextID:  1,
		now:     time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Detail, error) {
	d, ok := m.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockRepository) ListScoped(_ context.Context, scope authz.Scope) ([]Detail, error) {
	var out []Detail
	for _, id := range m.order {
		d, ok := m.records[id]
		if !ok {
			continue
		}
		if scope.Allows(d.OwnerID, d.CreatedAt) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, customer Customer) (int64, error) {
	customer.ID = m.nextID
	m.nextID++
	customer.CreatedAt = m.now
	customer.UpdatedAt = m.now
	m.records[customer.ID] = &Detail{Customer: customer, OwnerName: m.names[customer.OwnerID]}
	m.order = append(m.order, customer.ID)
	return customer.ID, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, updates map[string]interface{}, modifiedBy int64) error {
	d, ok := m.records[id]
	if !ok {
		return shared.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		d.Name = v.(string)
	}
	if v, ok := updates["phone"]; ok {
		d.Phone = v.(string)
	}
	if v, ok := updates["status"]; ok {
		d.Status = v.(string)
	}
	d.LastModifiedBy = &modifiedBy
	name := m.names[modifiedBy]
	d.LastModifiedByName = &name
	d.UpdatedAt = m.now.Add(time.Hour)
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

var _ Repository = (*mockRepository)(nil)

type mapDirectory map[int64][]int64

func (d mapDirectory) ListDirectReportIDs(_ context.Context, leaderID int64) ([]int64, error) {
	return d[leaderID], nil
}

func newFixture(directory mapDirectory, names map[int64]string) (*Service, *mockRepository) {
	repo := newMockRepository(names)
	policy := authz.NewPolicy(directory, nil)
	scopes := authz.NewResolver(directory)
	return NewService(repo, policy, scopes), repo
}

func regularUser(id int64, name string) *users.User {
	return &users.User{ID: id, Username: name, Role: authz.RoleRegular}
}

func createRequest(name string) CreateCustomerRequest {
	return CreateCustomerRequest{
		Name:          name,
		Phone:         "13800000000",
		Education:     EducationBachelor,
		MajorCategory: MajorIT,
		Status:        StatusUnemployed,
		Address:       "12 Xinhua Road",
	}
}

func TestAttributionImmutability(t *testing.T) {
	names := map[int64]string{1: "root", 2: "alice"}
	service, repo := newFixture(mapDirectory{}, names)

	admin := &users.User{ID: 1, Username: "root", Superuser: true, Role: authz.RoleAdministrator}
	alice := regularUser(2, "alice")

	created, err := service.Create(context.Background(), alice, createRequest("Zhang Wei"))
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Owner)
	assert.Nil(t, created.LastModifiedBy)

	newName := "Zhang Wei (updated)"
	updated, err := service.Update(context.Background(), admin, created.ID, UpdateCustomerRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, "alice", updated.Owner, "owner never changes after creation")
	require.NotNil(t, updated.LastModifiedBy)
	assert.Equal(t, "root", *updated.LastModifiedBy)

	stored, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.OwnerID)
}

func TestGetDeniedLooksLikeMissing(t *testing.T) {
	names := map[int64]string{2: "alice", 3: "bob"}
	service, _ := newFixture(mapDirectory{}, names)

	alice := regularUser(2, "alice")
	bob := regularUser(3, "bob")

	created, err := service.Create(context.Background(), alice, createRequest("Li Na"))
	require.NoError(t, err)

	_, err = service.Get(context.Background(), bob, created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = service.Get(context.Background(), alice, created.ID)
	assert.NoError(t, err)
}

func TestUpdateDeniedForNonOwner(t *testing.T) {
	names := map[int64]string{2: "alice", 3: "bob"}
	service, repo := newFixture(mapDirectory{}, names)

	alice := regularUser(2, "alice")
	bob := regularUser(3, "bob")

	created, err := service.Create(context.Background(), alice, createRequest("Li Na"))
	require.NoError(t, err)

	status := StatusEmployed
	_, err = service.Update(context.Background(), bob, created.ID, UpdateCustomerRequest{Status: &status})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	stored, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnemployed, stored.Status, "denied update must not touch the record")
}

func TestDeleteRequiresAccess(t *testing.T) {
	names := map[int64]string{2: "alice", 3: "bob", 10: "leader1"}
	service, repo := newFixture(mapDirectory{10: {2}}, names)

	alice := regularUser(2, "alice")
	bob := regularUser(3, "bob")
	leader := &users.User{ID: 10, Username: "leader1", Role: authz.RoleGroupLeader}

	created, err := service.Create(context.Background(), alice, createRequest("Li Na"))
	require.NoError(t, err)

	err = service.Delete(context.Background(), bob, created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	err = service.Delete(context.Background(), leader, created.ID)
	require.NoError(t, err, "leader may delete a direct report's record")

	_, err = repo.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListGroupsByOwnerFirstSeen(t *testing.T) {
	names := map[int64]string{1: "root", 2: "alice", 3: "bob"}
	service, _ := newFixture(mapDirectory{}, names)

	admin := &users.User{ID: 1, Username: "root", Superuser: true}
	alice := regularUser(2, "alice")
	bob := regularUser(3, "bob")

	_, err := service.Create(context.Background(), alice, createRequest("c1"))
	require.NoError(t, err)
	_, err = service.Create(context.Background(), bob, createRequest("c2"))
	require.NoError(t, err)
	_, err = service.Create(context.Background(), alice, createRequest("c3"))
	require.NoError(t, err)

	grouped, err := service.List(context.Background(), admin, nil, nil)
	require.NoError(t, err)

	require.Len(t, grouped.Groups, 2)
	assert.Equal(t, 3, grouped.Total)
	assert.Equal(t, "alice", grouped.Groups[0].Owner, "group keys keep first-seen order")
	assert.Equal(t, "bob", grouped.Groups[1].Owner)
	require.Len(t, grouped.Groups[0].Customers, 2)
	assert.Equal(t, "c1", grouped.Groups[0].Customers[0].Name)
	assert.Equal(t, "c3", grouped.Groups[0].Customers[1].Name)
}

func TestListScopesToActor(t *testing.T) {
	names := map[int64]string{2: "alice", 3: "bob", 10: "leader1"}
	service, _ := newFixture(mapDirectory{10: {2}}, names)

	alice := regularUser(2, "alice")
	bob := regularUser(3, "bob")
	leader := &users.User{ID: 10, Username: "leader1", Role: authz.RoleGroupLeader}

	_, err := service.Create(context.Background(), alice, createRequest("r1"))
	require.NoError(t, err)
	_, err = service.Create(context.Background(), bob, createRequest("r2"))
	require.NoError(t, err)

	leaderList, err := service.List(context.Background(), leader, nil, nil)
	require.NoError(t, err)
	require.Len(t, leaderList.Groups, 1)
	assert.Equal(t, "alice", leaderList.Groups[0].Owner)
	assert.Equal(t, 1, leaderList.Total, "bob's record stays invisible to leader1")

	bobList, err := service.List(context.Background(), bob, nil, nil)
	require.NoError(t, err)
	require.Len(t, bobList.Groups, 1)
	assert.Equal(t, "bob", bobList.Groups[0].Owner)
	assert.Equal(t, 1, bobList.Total)
}

func TestListDateFilterAllOrNothing(t *testing.T) {
	names := map[int64]string{2: "alice"}
	service, _ := newFixture(mapDirectory{}, names)

	alice := regularUser(2, "alice")
	_, err := service.Create(context.Background(), alice, createRequest("in-range"))
	require.NoError(t, err)

	// Records were created at the repo's fixed clock, 2024-03-15.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	farStart := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	farEnd := time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC)

	all, err := service.List(context.Background(), alice, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, all.Total)

	partial, err := service.List(context.Background(), alice, &start, nil)
	require.NoError(t, err)
	assert.Equal(t, all.Total, partial.Total, "a single bound must not activate the filter")

	filtered, err := service.List(context.Background(), alice, &start, &end)
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Total)

	empty, err := service.List(context.Background(), alice, &farStart, &farEnd)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Groups)
}

func TestListRequiresActor(t *testing.T) {
	service, _ := newFixture(mapDirectory{}, map[int64]string{})
	_, err := service.List(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, shared.ErrAuthenticationRequired)
}
