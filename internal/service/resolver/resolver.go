// Package resolver finds organizations locally or in the registry.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/domain/dto"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/service/registry"
)

type Registry interface {
	Search(ctx context.Context, inn string, isMain bool) (*dto.RegistryList, error)
	Detail(ctx context.Context, relativeAddr string) (*dto.RegistryOrganization, error)
}

type Regions interface {
	Region(code int64) (*domain.Region, bool)
}

// Lookup is the part of the unit of work the resolver reads from.
type Lookup interface {
	GetOrganization(ctx context.Context, inn, kpp, ogrn string) (*domain.Organization, error)
}

type Resolver struct {
	registry Registry
	regions  Regions
	isMain   bool
}

func NewResolver(reg Registry, regions Regions, isMain bool) *Resolver {
	return &Resolver{registry: reg, regions: regions, isMain: isMain}
}

// Resolve returns the stored organization with exactly this identity, or an unsaved one built
// from the registry (ID 0), or nil when neither knows it. Only registry.ErrWrongFormat and
// store failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, repo Lookup, id dto.OrgIdentity) (*domain.Organization, error) {
	logger.Infof(ctx, "looking up organization (INN %s) in the database", id.INN)

	org, err := repo.GetOrganization(ctx, id.INN, id.KPP, id.OGRN)
	switch {
	case err == nil:
		logger.Infof(ctx, "organization (INN %s) found in the database", id.INN)
		return org, nil
	case !errors.Is(err, constants.ErrDBNotFound):
		return nil, fmt.Errorf("GetOrganization: %w", err)
	}

	logger.Infof(ctx, "organization (INN %s) not in the database, asking the registry", id.INN)

	org, err = r.fromRegistry(ctx, id.INN)
	if err != nil {
		if errors.Is(err, registry.ErrWrongFormat) {
			logger.Errorf(ctx, "registry contract violation: %s", err.Error())
			return nil, err
		}
		logger.Warnf(ctx, "registry lookup for INN %s failed: %s", id.INN, err.Error())
		return nil, nil
	}
	if org == nil {
		logger.Infof(ctx, "organization (INN %s) not found in the registry", id.INN)
		return nil, nil
	}
	// запись реестра хранится как есть, следующая загрузка с теми же КПП/ОГРН её не найдёт
	if org.KPP != id.KPP || org.OGRN != id.OGRN {
		logger.Warnf(ctx, "registry identity of INN %s differs from the document: KPP %s/%s, OGRN %s/%s",
			id.INN, org.KPP, id.KPP, org.OGRN, id.OGRN)
	}

	return org, nil
}

func (r *Resolver) fromRegistry(ctx context.Context, inn string) (*domain.Organization, error) {
	list, err := r.registry.Search(ctx, inn, r.isMain)
	if err != nil {
		return nil, err
	}
	if len(list.Results) == 0 {
		return nil, nil
	}

	detail, err := r.registry.Detail(ctx, list.Results[0].RelativeAddr)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return r.toOrganization(ctx, detail), nil
}

func (r *Resolver) toOrganization(ctx context.Context, d *dto.RegistryOrganization) *domain.Organization {
	shortName := ""
	if d.ShortName != nil {
		shortName = *d.ShortName
	}

	org := domain.NewOrganization(d.FullName, shortName, d.INN, d.KPP, d.OGRN)
	org.FactualAddress = d.FactualAddress

	if d.RegionCode != nil {
		code := int64(*d.RegionCode)
		if region, ok := r.regions.Region(code); ok {
			org.RegionID = &region.ID
		} else {
			logger.Warnf(ctx, "registry region code %d is unknown, organization left without region", code)
		}
	}

	logger.Infof(ctx, "organization %s built from the registry", org)
	return org
}
