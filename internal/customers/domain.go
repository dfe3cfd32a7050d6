package customers

import "time"

// Education levels tracked for a customer.
const (
	EducationBelowCollege = "below_college"
	EducationCollege      = "college"
	EducationBachelor     = "bachelor"
	EducationMasterAbove  = "master_above"
)

// Major categories.
const (
	MajorIT    = "it"
	MajorNonIT = "non_it"
)

// Employment statuses.
const (
	StatusEmployed   = "employed"
	StatusUnemployed = "unemployed"
)

// Customer is a protected CRM record. OwnerID is stamped once at creation and
// never changes; LastModifiedBy tracks the most recent updater and detaches
// (becomes nil) if that user is later removed.
type Customer struct {
	ID            int64
	Name          string
	Phone         string
	WechatID      string
	Education     string
	MajorCategory string
	MajorDetail   *string
	Status        string
	Address       string
	Description   *string

	OwnerID        int64
	LastModifiedBy *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetOwnerID implements authz.Owned.
func (c *Customer) GetOwnerID() int64 { return c.OwnerID }

// Detail joins a customer with the usernames behind its ownership references
// for presentation.
type Detail struct {
	Customer
	OwnerName          string
	LastModifiedByName *string
}
