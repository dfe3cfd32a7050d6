package customers

import (
	"context"
	"fmt"
	"time"

	"github.com/salesdesk/salesdesk/internal/authz"
	"github.com/salesdesk/salesdesk/internal/shared"
	"github.com/salesdesk/salesdesk/internal/users"
)

// Service enforces visibility and ownership rules around customer records.
// Every single-record operation runs through the authorization policy; the
// listing path runs through the scope resolver. The two must agree, which is
// what the consistency tests pin down.
type Service struct {
	repo   Repository
	policy *authz.Policy
	scopes *authz.Resolver
}

// NewService constructs a new Service.
func NewService(repo Repository, policy *authz.Policy, scopes *authz.Resolver) *Service {
	return &Service{repo: repo, policy: policy, scopes: scopes}
}

// List resolves the actor's visibility scope, materializes it and groups the
// result by owner username in first-seen order. The date filter applies only
// when both bounds are present.
func (s *Service) List(ctx context.Context, actor *users.User, start, end *time.Time) (*GroupedListResponse, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}

	scope, err := s.scopes.ScopeFor(ctx, actor, authz.DateRangeFrom(start, end))
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}

	details, err := s.repo.ListScoped(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	resp := &GroupedListResponse{Groups: []OwnerGroup{}, Total: len(details)}
	index := make(map[string]int)
	for _, d := range details {
		i, ok := index[d.OwnerName]
		if !ok {
			i = len(resp.Groups)
			index[d.OwnerName] = i
			resp.Groups = append(resp.Groups, OwnerGroup{Owner: d.OwnerName})
		}
		resp.Groups[i].Customers = append(resp.Groups[i].Customers, toResponse(d))
	}
	return resp, nil
}

// Get returns a single customer if the actor may read it.
func (s *Service) Get(ctx context.Context, actor *users.User, id int64) (*CustomerResponse, error) {
	detail, err := s.authorize(ctx, actor, id, authz.ActionRead)
	if err != nil {
		return nil, err
	}
	resp := toResponse(*detail)
	return &resp, nil
}

// Create inserts a new customer owned by the actor. The owner is stamped here,
// exactly once; no later operation can change it.
func (s *Service) Create(ctx context.Context, actor *users.User, req CreateCustomerRequest) (*CustomerResponse, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}

	customer := Customer{
		Name:          req.Name,
		Phone:         req.Phone,
		WechatID:      req.WechatID,
		Education:     req.Education,
		MajorCategory: req.MajorCategory,
		MajorDetail:   req.MajorDetail,
		Status:        req.Status,
		Address:       req.Address,
		Description:   req.Description,
		OwnerID:       actor.ID,
	}
	id, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload customer: %w", err)
	}
	resp := toResponse(*detail)
	return &resp, nil
}

// Update applies a partial update if the actor may modify the record, and
// stamps the actor as last modifier.
func (s *Service) Update(ctx context.Context, actor *users.User, id int64, req UpdateCustomerRequest) (*CustomerResponse, error) {
	if _, err := s.authorize(ctx, actor, id, authz.ActionUpdate); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.WechatID != nil {
		updates["wechat_id"] = *req.WechatID
	}
	if req.Education != nil {
		updates["education"] = *req.Education
	}
	if req.MajorCategory != nil {
		updates["major_category"] = *req.MajorCategory
	}
	if req.MajorDetail != nil {
		updates["major_detail"] = *req.MajorDetail
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if err := s.repo.Update(ctx, id, updates, actor.ID); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload customer: %w", err)
	}
	resp := toResponse(*detail)
	return &resp, nil
}

// Delete removes a customer if the actor may delete it.
func (s *Service) Delete(ctx context.Context, actor *users.User, id int64) error {
	if _, err := s.authorize(ctx, actor, id, authz.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) authorize(ctx context.Context, actor *users.User, id int64, action authz.Action) (*Detail, error) {
	if actor == nil {
		return nil, shared.ErrAuthenticationRequired
	}
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanAccess(ctx, actor, detail, action)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, shared.ErrForbidden
	}
	return detail, nil
}
