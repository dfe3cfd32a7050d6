package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/salesdesk/salesdesk/internal/authz"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// maxLeaderDepth bounds the ancestor walk during cycle detection so a
// malformed graph in the store cannot loop the service.
const maxLeaderDepth = 64

// RepositoryPort defines data access methods for users and sessions.
type RepositoryPort interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User) (int64, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListDirectReportIDs(ctx context.Context, leaderID int64) ([]int64, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdateLeader(ctx context.Context, id int64, leaderID *int64) error
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// Service wraps account and leadership business rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a new Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Register creates a regular user account. Self-registration can never grant
// an elevated role or the superuser flag, whatever the request claimed.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrValidation)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, shared.ErrUsernameTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         authz.RoleRegular,
		Superuser:    false,
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// GetUser fetches a single user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// ListUsers returns all users. Restricted to administrators.
func (s *Service) ListUsers(ctx context.Context, actor *User) ([]User, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !actor.IsSuperUser() {
		return nil, shared.ErrForbidden
	}
	return s.repo.ListUsers(ctx)
}

// AssignRole changes a user's role tier. Restricted to administrators; this is
// the only path that can elevate an account past regular.
func (s *Service) AssignRole(ctx context.Context, actor *User, userID int64, role authz.Role) (*User, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !actor.IsSuperUser() {
		return nil, shared.ErrForbidden
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, role)
	}
	if err := s.repo.UpdateRole(ctx, userID, string(role)); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

// AssignLeader sets or clears the leader a user reports to. Restricted to
// administrators. The leader relation must stay a forest: self-leadership and
// any assignment that would close a cycle are rejected here, at the only
// boundary where the edges are mutated.
func (s *Service) AssignLeader(ctx context.Context, actor *User, userID int64, leaderID *int64) (*User, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	if !actor.IsSuperUser() {
		return nil, shared.ErrForbidden
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	if leaderID != nil {
		if *leaderID == userID {
			return nil, fmt.Errorf("%w: a user cannot lead themselves", shared.ErrValidation)
		}
		if err := s.checkNoCycle(ctx, userID, *leaderID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateLeader(ctx, userID, leaderID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

// checkNoCycle walks the candidate leader's ancestor chain and rejects the
// assignment if it reaches userID.
func (s *Service) checkNoCycle(ctx context.Context, userID, leaderID int64) error {
	current := leaderID
	for depth := 0; depth < maxLeaderDepth; depth++ {
		leader, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: leader %d does not exist", shared.ErrValidation, current)
			}
			return err
		}
		if leader.LeaderID == nil {
			return nil
		}
		if *leader.LeaderID == userID {
			return fmt.Errorf("%w: assignment would create a leadership cycle", shared.ErrValidation)
		}
		current = *leader.LeaderID
	}
	return fmt.Errorf("%w: leadership chain too deep", shared.ErrValidation)
}
