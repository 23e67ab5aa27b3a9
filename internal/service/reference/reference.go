// Package reference holds the read-only catalogues the pipeline looks things up in.
package reference

import (
	"context"
	"fmt"
	"slices"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type Source interface {
	ListRegions(ctx context.Context) ([]*domain.Region, error)
	ListServices(ctx context.Context) ([]*domain.Service, error)
}

// Repository is loaded once and never changes afterwards, so it is safe for concurrent use.
type Repository struct {
	regions  map[int64]*domain.Region
	services map[string]*domain.Service
}

func Load(ctx context.Context, src Source) (*Repository, error) {
	var (
		regions  []*domain.Region
		services []*domain.Service
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		regions, err = src.ListRegions(egCtx)
		if err != nil {
			return fmt.Errorf("ListRegions: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		services, err = src.ListServices(egCtx)
		if err != nil {
			return fmt.Errorf("ListServices: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Infof(ctx, "reference data loaded: %d regions, %d services", len(regions), len(services))
	return New(regions, services), nil
}

func New(regions []*domain.Region, services []*domain.Service) *Repository {
	r := &Repository{
		regions:  make(map[int64]*domain.Region, len(regions)),
		services: make(map[string]*domain.Service, len(services)),
	}
	for _, region := range regions {
		r.regions[region.ID] = region
	}
	for _, service := range services {
		r.services[service.Name] = service
	}
	return r
}

func (r *Repository) HasRegion(code int64) bool {
	_, ok := r.regions[code]
	return ok
}

func (r *Repository) Region(code int64) (*domain.Region, bool) {
	region, ok := r.regions[code]
	return region, ok
}

// Regions returns the known region codes in ascending order.
func (r *Repository) Regions() []int64 {
	codes := make([]int64, 0, len(r.regions))
	for code := range r.regions {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// ServiceIDs maps names onto catalogue ids. Unknown names are dropped, duplicates collapse.
func (r *Repository) ServiceIDs(names []string) []int64 {
	ids := make([]int64, 0, len(names))
	seen := make(map[int64]struct{}, len(names))
	for _, name := range names {
		service, ok := r.services[name]
		if !ok {
			continue
		}
		if _, dup := seen[service.ID]; dup {
			continue
		}
		seen[service.ID] = struct{}{}
		ids = append(ids, service.ID)
	}
	return ids
}
