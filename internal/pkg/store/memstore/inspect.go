package memstore

import (
	"sort"

	"github.com/ougirez/certzone/internal/domain"
)

// Snapshot is a read-only copy of the committed state.
type Snapshot struct {
	Organizations    []*domain.Organization
	Contacts         []*domain.Contact
	Certs            []*domain.Cert
	Resources        []*domain.Resource
	Responsibilities []*domain.Responsibility
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	d := s.data.clone()
	s.mu.Unlock()

	var snap Snapshot
	for _, v := range d.orgs {
		v := v
		snap.Organizations = append(snap.Organizations, &v)
	}
	for _, v := range d.contacts {
		v := v
		snap.Contacts = append(snap.Contacts, &v)
	}
	for _, v := range d.certs {
		v := v
		snap.Certs = append(snap.Certs, &v)
	}
	for _, v := range d.resources {
		v := v
		snap.Resources = append(snap.Resources, &v)
	}
	for _, v := range d.responsibilities {
		v := v
		snap.Responsibilities = append(snap.Responsibilities, &v)
	}

	sortByID(snap.Organizations, func(v *domain.Organization) int64 { return v.ID })
	sortByID(snap.Contacts, func(v *domain.Contact) int64 { return v.ID })
	sortByID(snap.Certs, func(v *domain.Cert) int64 { return v.ID })
	sortByID(snap.Resources, func(v *domain.Resource) int64 { return v.ID })
	sortByID(snap.Responsibilities, func(v *domain.Responsibility) int64 { return v.ID })
	return snap
}

// ContactsOf returns the committed contacts of one organization.
func (s Snapshot) ContactsOf(orgID int64) []*domain.Contact {
	var out []*domain.Contact
	for _, c := range s.Contacts {
		if c.OrgID == orgID {
			out = append(out, c)
		}
	}
	return out
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
