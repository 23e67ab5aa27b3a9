package store

import (
	"context"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/store/xpgx"
)

var (
	regionsColumns  = []string{"id", "name", "okrug_id"}
	servicesColumns = []string{"id", "name"}
)

func (s *store) ListRegions(ctx context.Context) ([]*domain.Region, error) {
	query := builder().Select(regionsColumns...).
		From(tableRegions).
		OrderBy("id")

	selected, err := xpgx.Selectx[domain.Region](ctx, s.pool, query)
	if err != nil {
		return nil, err
	}

	return selected, nil
}

func (s *store) ListServices(ctx context.Context) ([]*domain.Service, error) {
	query := builder().Select(servicesColumns...).
		From(tableServices).
		OrderBy("name")

	selected, err := xpgx.Selectx[domain.Service](ctx, s.pool, query)
	if err != nil {
		return nil, err
	}

	return selected, nil
}
