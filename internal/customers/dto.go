package customers

// CreateCustomerRequest carries the fields accepted at creation. Ownership is
// never taken from the payload; it is stamped from the authenticated actor.
type CreateCustomerRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Phone         string  `json:"phone" validate:"required,max=20"`
	WechatID      string  `json:"wechat_id" validate:"max=50"`
	Education     string  `json:"education" validate:"required,oneof=below_college college bachelor master_above"`
	MajorCategory string  `json:"major_category" validate:"required,oneof=it non_it"`
	MajorDetail   *string `json:"major_detail,omitempty" validate:"omitempty,max=100"`
	Status        string  `json:"status" validate:"required,oneof=employed unemployed"`
	Address       string  `json:"address" validate:"required"`
	Description   *string `json:"description,omitempty"`
}

// UpdateCustomerRequest carries partial updates; nil fields are left alone.
type UpdateCustomerRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	WechatID      *string `json:"wechat_id,omitempty" validate:"omitempty,max=50"`
	Education     *string `json:"education,omitempty" validate:"omitempty,oneof=below_college college bachelor master_above"`
	MajorCategory *string `json:"major_category,omitempty" validate:"omitempty,oneof=it non_it"`
	MajorDetail   *string `json:"major_detail,omitempty" validate:"omitempty,max=100"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=employed unemployed"`
	Address       *string `json:"address,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// CustomerResponse is the JSON shape returned to clients. Timestamps are
// rendered date-only, matching what the listing UI expects.
type CustomerResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	WechatID       string  `json:"wechat_id"`
	Education      string  `json:"education"`
	MajorCategory  string  `json:"major_category"`
	MajorDetail    *string `json:"major_detail,omitempty"`
	Status         string  `json:"status"`
	Address        string  `json:"address"`
	Description    *string `json:"description,omitempty"`
	Owner          string  `json:"created_by"`
	LastModifiedBy *string `json:"updated_by,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

const dateOnly = "2006-01-02"

func toResponse(d Detail) CustomerResponse {
	return CustomerResponse{
		ID:             d.ID,
		Name:           d.Name,
		Phone:          d.Phone,
		WechatID:       d.WechatID,
		Education:      d.Education,
		MajorCategory:  d.MajorCategory,
		MajorDetail:    d.MajorDetail,
		Status:         d.Status,
		Address:        d.Address,
		Description:    d.Description,
		Owner:          d.OwnerName,
		LastModifiedBy: d.LastModifiedByName,
		CreatedAt:      d.CreatedAt.Format(dateOnly),
		UpdatedAt:      d.UpdatedAt.Format(dateOnly),
	}
}

// OwnerGroup holds one owner's customers in result order.
type OwnerGroup struct {
	Owner     string             `json:"owner"`
	Customers []CustomerResponse `json:"customers"`
}

// GroupedListResponse partitions a scoped listing by owner. Group order is the
// first-seen order of owners in the underlying result set; grouping is purely
// presentational and never changes which records are included.
type GroupedListResponse struct {
	Groups []OwnerGroup `json:"groups"`
	Total  int          `json:"total"`
}
