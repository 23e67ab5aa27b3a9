package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cert is a monitoring center, identified by (Name, OrgID).
type Cert struct {
	ID             int64      `db:"id"`
	UUID           string     `db:"uuid"`
	Name           string     `db:"name"`
	Type           string     `db:"type"`
	DateActualResp *time.Time `db:"date_actual_resp"`
	OrgID          int64      `db:"org_id"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func NewCert(name string, orgID int64) *Cert {
	return &Cert{UUID: uuid.NewString(), Name: name, OrgID: orgID}
}

// Resource is an information system owned by an organization, identified by (Name, OrgID).
type Resource struct {
	ID               int64     `db:"id"`
	UUID             string    `db:"uuid"`
	Name             string    `db:"name"`
	OrgID            int64     `db:"org_id"`
	IsOKII           bool      `db:"is_okii"`
	FSTECRegNumber   string    `db:"fstec_reg_number"`
	Category         *int16    `db:"category"`
	FactualAddresses string    `db:"factual_addresses"`
	IsActive         bool      `db:"is_active"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`

	RegionIDs []int64 `db:"-"`
}

func NewResource(name string, orgID int64) *Resource {
	return &Resource{UUID: uuid.NewString(), Name: name, OrgID: orgID, IsActive: true}
}

// ResponsibilityKey is the deduplication identity of a Responsibility.
type ResponsibilityKey struct {
	ResourceID int64
	CertID     int64
	DateStart  time.Time
	DateEnd    time.Time
}

type Responsibility struct {
	ID         int64     `db:"id"`
	ResourceID int64     `db:"resource_id"`
	CertID     int64     `db:"cert_id"`
	Type       string    `db:"type"`
	Props      string    `db:"props"`
	DateStart  time.Time `db:"date_start"`
	DateEnd    time.Time `db:"date_end"`
	Comment    string    `db:"comment"`

	ServiceIDs []int64 `db:"-"`
}

func (r *Responsibility) Key() ResponsibilityKey {
	return ResponsibilityKey{
		ResourceID: r.ResourceID,
		CertID:     r.CertID,
		DateStart:  r.DateStart,
		DateEnd:    r.DateEnd,
	}
}

type Service struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}
