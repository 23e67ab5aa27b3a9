// Package memstore is an in-memory store.Store for tests.
// Begin snapshots the committed state, Commit replaces it with the transaction's copy.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/ougirez/certzone/internal/pkg/store"
)

var errTxDone = errors.New("memstore: transaction already finished")

type data struct {
	nextID           int64
	orgs             map[int64]domain.Organization
	contacts         map[int64]domain.Contact
	certs            map[int64]domain.Cert
	resources        map[int64]domain.Resource
	responsibilities map[int64]domain.Responsibility
}

func newData() *data {
	return &data{
		orgs:             map[int64]domain.Organization{},
		contacts:         map[int64]domain.Contact{},
		certs:            map[int64]domain.Cert{},
		resources:        map[int64]domain.Resource{},
		responsibilities: map[int64]domain.Responsibility{},
	}
}

func (d *data) clone() *data {
	c := newData()
	c.nextID = d.nextID
	for k, v := range d.orgs {
		c.orgs[k] = v
	}
	for k, v := range d.contacts {
		c.contacts[k] = v
	}
	for k, v := range d.certs {
		c.certs[k] = v
	}
	for k, v := range d.resources {
		v.RegionIDs = append([]int64(nil), v.RegionIDs...)
		c.resources[k] = v
	}
	for k, v := range d.responsibilities {
		v.ServiceIDs = append([]int64(nil), v.ServiceIDs...)
		c.responsibilities[k] = v
	}
	return c
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

type Store struct {
	mu       sync.Mutex
	data     *data
	regions  []*domain.Region
	services []*domain.Service

	// CommitErr, when set, is returned by every Commit and the transaction is discarded.
	CommitErr error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		data:    newData(),
		regions: []*domain.Region{{ID: constants.OtherTerritoriesRegionCode, Name: "Иные территории"}},
	}
}

func (s *Store) AddRegion(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = append(s.regions, &domain.Region{ID: id, Name: name})
}

func (s *Store) AddService(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.id()
	s.services = append(s.services, &domain.Service{ID: id, Name: name})
	return id
}

// AddOrganization stores org directly, outside of any transaction, and sets its ID.
func (s *Store) AddOrganization(org *domain.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org.ID = s.data.id()
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	s.data.orgs[org.ID] = *org
}

func (s *Store) Begin(_ context.Context) (store.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &tx{s: s, d: s.data.clone()}, nil
}

func (s *Store) ListRegions(_ context.Context) ([]*domain.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Region, 0, len(s.regions))
	for _, r := range s.regions {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListServices(_ context.Context) ([]*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Service, 0, len(s.services))
	for _, r := range s.services {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
