package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/domain/dto"
	"github.com/ougirez/certzone/internal/pkg/store/memstore"
	"github.com/ougirez/certzone/internal/service/address"
	"github.com/ougirez/certzone/internal/service/reference"
	"github.com/ougirez/certzone/internal/service/registry"
	"github.com/ougirez/certzone/internal/service/resolver"
	"github.com/stretchr/testify/require"
)

var (
	ownerID = dto.OrgIdentity{INN: "2128000001", KPP: "213001001", OGRN: "1022100000001", FullName: "Бюджетное учреждение Центр информационных технологий"}
	energy  = dto.OrgIdentity{INN: "2128000002", KPP: "213001002", OGRN: "1022100000002", FullName: "АО Чувашская энергосбытовая компания"}
)

// stubRegistry knows organizations by INN. It never talks to the network.
type stubRegistry struct {
	orgs      map[string]*dto.RegistryOrganization
	searchErr error
	searches  int
}

func (r *stubRegistry) Search(_ context.Context, inn string, _ bool) (*dto.RegistryList, error) {
	r.searches++
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	list := &dto.RegistryList{}
	if _, ok := r.orgs[inn]; ok {
		list.Count = 1
		list.Results = []dto.RegistryListItem{{RelativeAddr: "/api/organizations/" + inn + "/"}}
	}
	return list, nil
}

func (r *stubRegistry) Detail(_ context.Context, addr string) (*dto.RegistryOrganization, error) {
	inn := strings.Trim(strings.TrimPrefix(addr, "/api/organizations/"), "/")
	org, ok := r.orgs[inn]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return org, nil
}

type fixture struct {
	store    *memstore.Store
	registry *stubRegistry
	handler  *Handler
	engine   *Engine
	owner    *domain.Organization
	services map[string]int64
	logDir   string
}

func newOwner(agreed bool) *domain.Organization {
	owner := domain.NewOrganization(ownerID.FullName, "", ownerID.INN, ownerID.KPP, ownerID.OGRN)
	if agreed {
		agreement := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
		owner.DateAgreement = &agreement
	}
	return owner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithOwner(t, newOwner(true))
}

// newFixtureWithOwner stores owner unless it is nil.
func newFixtureWithOwner(t *testing.T, owner *domain.Organization) *fixture {
	t.Helper()

	s := memstore.New()
	s.AddRegion(21, "Чувашская Республика")
	s.AddRegion(77, "г. Москва")
	services := map[string]int64{
		"Мониторинг":   s.AddService("Мониторинг"),
		"Реагирование": s.AddService("Реагирование"),
	}

	if owner != nil {
		s.AddOrganization(owner)
	}

	region := dto.RegionCode(21)
	reg := &stubRegistry{orgs: map[string]*dto.RegistryOrganization{
		energy.INN: {
			FullName:       energy.FullName,
			INN:            energy.INN,
			KPP:            energy.KPP,
			OGRN:           energy.OGRN,
			FactualAddress: "г. Чебоксары, ул. Гагарина, д. 5",
			RegionCode:     &region,
		},
	}}

	refs, err := reference.Load(context.Background(), s)
	require.NoError(t, err)

	engine := NewEngine(resolver.NewResolver(reg, refs, true), address.NewFormatter(refs), refs)

	return &fixture{
		store:    s,
		registry: reg,
		engine:   engine,
		handler:  NewHandler(s, engine),
		owner:    owner,
		services: services,
		logDir:   t.TempDir(),
	}
}

func (f *fixture) handle(t *testing.T, file string) domain.FileResult {
	t.Helper()
	logFile := filepath.Join(f.logDir, fmt.Sprintf("%s-%d.log", filepath.Base(file), time.Now().UnixNano()))
	return f.handler.HandleResult(context.Background(), file, testSchema, "test", logFile)
}

func (f *fixture) orgByINN(snap memstore.Snapshot, inn string) *domain.Organization {
	for _, o := range snap.Organizations {
		if o.INN == inn {
			return o
		}
	}
	return nil
}

func resourceByName(snap memstore.Snapshot, name string) *domain.Resource {
	for _, r := range snap.Resources {
		if r.Name == name {
			return r
		}
	}
	return nil
}
