package memstore

import (
	"context"
	"time"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/constants"
)

type tx struct {
	s    *Store
	d    *data
	done bool
}

func (t *tx) Commit(_ context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.CommitErr != nil {
		return t.s.CommitErr
	}
	t.s.data = t.d
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	t.done = true
	return nil
}

func (t *tx) GetOrganization(_ context.Context, inn, kpp, ogrn string) (*domain.Organization, error) {
	var found *domain.Organization
	for _, o := range t.d.orgs {
		if o.INN == inn && o.KPP == kpp && o.OGRN == ogrn {
			if found == nil || o.ID < found.ID {
				cp := o
				found = &cp
			}
		}
	}
	if found == nil {
		return nil, constants.ErrDBNotFound
	}
	return found, nil
}

func (t *tx) CreateOrganization(_ context.Context, org *domain.Organization) error {
	org.ID = t.d.id()
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	t.d.orgs[org.ID] = *org
	return nil
}

func (t *tx) UpdateMailingAddress(_ context.Context, orgID int64, address string) error {
	o, ok := t.d.orgs[orgID]
	if !ok {
		return constants.ErrDBNotFound
	}
	o.MailingAddress = address
	o.UpdatedAt = time.Now()
	t.d.orgs[orgID] = o
	return nil
}

func (t *tx) DeleteContacts(_ context.Context, orgID int64) (int64, error) {
	var n int64
	for id, c := range t.d.contacts {
		if c.OrgID == orgID {
			delete(t.d.contacts, id)
			n++
		}
	}
	return n, nil
}

func (t *tx) CreateContacts(_ context.Context, contacts []*domain.Contact) error {
	for _, c := range contacts {
		c.ID = t.d.id()
		t.d.contacts[c.ID] = *c
	}
	return nil
}

func (t *tx) GetCert(_ context.Context, name string, orgID int64) (*domain.Cert, error) {
	for _, c := range t.d.certs {
		if c.Name == name && c.OrgID == orgID {
			cp := c
			return &cp, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (t *tx) CreateCert(_ context.Context, cert *domain.Cert) error {
	cert.ID = t.d.id()
	cert.CreatedAt = time.Now()
	cert.UpdatedAt = cert.CreatedAt
	t.d.certs[cert.ID] = *cert
	return nil
}

func (t *tx) UpdateCert(_ context.Context, cert *domain.Cert) error {
	c, ok := t.d.certs[cert.ID]
	if !ok {
		return constants.ErrDBNotFound
	}
	c.Type = cert.Type
	c.DateActualResp = cert.DateActualResp
	c.UpdatedAt = time.Now()
	cert.UpdatedAt = c.UpdatedAt
	t.d.certs[cert.ID] = c
	return nil
}

func (t *tx) GetResource(_ context.Context, name string, orgID int64) (*domain.Resource, error) {
	for _, r := range t.d.resources {
		if r.Name == name && r.OrgID == orgID {
			cp := r
			cp.RegionIDs = append([]int64(nil), r.RegionIDs...)
			return &cp, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (t *tx) CreateResource(_ context.Context, res *domain.Resource) error {
	res.ID = t.d.id()
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	cp.RegionIDs = append([]int64(nil), res.RegionIDs...)
	t.d.resources[res.ID] = cp
	return nil
}

func (t *tx) UpdateResource(_ context.Context, res *domain.Resource) error {
	r, ok := t.d.resources[res.ID]
	if !ok {
		return constants.ErrDBNotFound
	}
	r.IsOKII = res.IsOKII
	r.FSTECRegNumber = res.FSTECRegNumber
	r.Category = res.Category
	r.FactualAddresses = res.FactualAddresses
	r.RegionIDs = append([]int64(nil), res.RegionIDs...)
	r.UpdatedAt = time.Now()
	res.UpdatedAt = r.UpdatedAt
	t.d.resources[res.ID] = r
	return nil
}

func (t *tx) ResponsibilityExists(_ context.Context, key domain.ResponsibilityKey) (bool, error) {
	for _, r := range t.d.responsibilities {
		if r.Key() == key {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) CreateResponsibility(_ context.Context, resp *domain.Responsibility) error {
	resp.ID = t.d.id()
	cp := *resp
	cp.ServiceIDs = append([]int64(nil), resp.ServiceIDs...)
	t.d.responsibilities[resp.ID] = cp
	return nil
}
