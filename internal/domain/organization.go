package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ougirez/certzone/internal/pkg/utils"
)

type Okrug struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Region is a row of the fixed reference table, ID is the region code.
type Region struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	OkrugID *int64 `db:"okrug_id"`
}

type Organization struct {
	ID             int64      `db:"id"`
	UUID           string     `db:"uuid"`
	DBName         string     `db:"db_name"`
	FullName       string     `db:"full_name"`
	ShortName      string     `db:"short_name"`
	INN            string     `db:"inn"`
	KPP            string     `db:"kpp"`
	OGRN           string     `db:"ogrn"`
	FactualAddress string     `db:"factual_address"`
	MailingAddress string     `db:"mailing_address"`
	RegionID       *int64     `db:"region_id"`
	DateAgreement  *time.Time `db:"date_agreement"`
	IsActive       bool       `db:"is_active"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// NewOrganization returns an unsaved organization with names normalized the way they are stored.
func NewOrganization(fullName, shortName, inn, kpp, ogrn string) *Organization {
	if shortName == "" {
		shortName = fullName
	}
	return &Organization{
		UUID:      uuid.NewString(),
		DBName:    utils.AlphaNumString(fullName),
		FullName:  strings.ToUpper(fullName),
		ShortName: strings.ToUpper(shortName),
		INN:       inn,
		KPP:       kpp,
		OGRN:      ogrn,
		IsActive:  true,
	}
}

// IsNew reports whether the organization has not been persisted yet.
func (o *Organization) IsNew() bool {
	return o.ID == 0
}

func (o *Organization) HasAgreement() bool {
	return o.DateAgreement != nil && !o.DateAgreement.IsZero()
}

func (o *Organization) String() string {
	name := o.FullName
	if r := []rune(name); len(r) > 88 {
		name = string(r[:88])
	}
	if o.INN != "" || o.KPP != "" {
		return name + " (ИНН/КПП " + o.INN + "/" + o.KPP + ")"
	}
	return name
}

type Contact struct {
	ID        int64  `db:"id"`
	OrgID     int64  `db:"org_id"`
	FIO       string `db:"fio"`
	Dep       string `db:"dep"`
	Pos       string `db:"pos"`
	MobPhone  string `db:"mob_phone"`
	WorkPhone string `db:"work_phone"`
	Email     string `db:"email"`
	IsMain    bool   `db:"is_main"`
}
