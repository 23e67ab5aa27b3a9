package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/store/xpgx"
)

var resourcesColumns = []string{
	"id", "uuid", "name", "org_id", "is_okii", "fstec_reg_number", "category",
	"factual_addresses", "is_active", "created_at", "updated_at",
}

func (r *repo) GetResource(ctx context.Context, name string, orgID int64) (*domain.Resource, error) {
	query := builder().Select(resourcesColumns...).
		From(tableResources).
		Where(sq.Eq{
			"name":   name,
			"org_id": orgID,
		})

	selected, err := xpgx.Getx[domain.Resource](ctx, r.q, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	regionIDs, err := r.listResourceRegions(ctx, selected.ID)
	if err != nil {
		return nil, err
	}
	selected.RegionIDs = regionIDs

	return selected, nil
}

func (r *repo) CreateResource(ctx context.Context, res *domain.Resource) error {
	query := builder().Insert(tableResources).
		Columns(resourcesColumns[1:9]...).
		Values(res.UUID, res.Name, res.OrgID, res.IsOKII, res.FSTECRegNumber, res.Category, res.FactualAddresses, res.IsActive).
		Suffix("RETURNING id, created_at, updated_at")

	if err := xpgx.Scanx(ctx, r.q, query, &res.ID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return fmt.Errorf("insert resource %q: %w", res.Name, wrapErr(err))
	}

	return r.setResourceRegions(ctx, res.ID, res.RegionIDs)
}

// UpdateResource overwrites the KII attributes and addresses and replaces the region links.
func (r *repo) UpdateResource(ctx context.Context, res *domain.Resource) error {
	query := builder().Update(tableResources).
		Set("is_okii", res.IsOKII).
		Set("fstec_reg_number", res.FSTECRegNumber).
		Set("category", res.Category).
		Set("factual_addresses", res.FactualAddresses).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": res.ID}).
		Suffix("RETURNING updated_at")

	if err := xpgx.Scanx(ctx, r.q, query, &res.UpdatedAt); err != nil {
		return fmt.Errorf("update resource %d: %w", res.ID, wrapErr(err))
	}

	return r.setResourceRegions(ctx, res.ID, res.RegionIDs)
}

func (r *repo) listResourceRegions(ctx context.Context, resourceID int64) ([]int64, error) {
	query := builder().Select("region_id").
		From(tableRegionsResources).
		Where(sq.Eq{"resource_id": resourceID}).
		OrderBy("region_id")

	rows, err := xpgx.Selectx[struct {
		RegionID int64 `db:"region_id"`
	}](ctx, r.q, query)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.RegionID)
	}
	return ids, nil
}

func (r *repo) setResourceRegions(ctx context.Context, resourceID int64, regionIDs []int64) error {
	del := builder().Delete(tableRegionsResources).
		Where(sq.Eq{"resource_id": resourceID})
	if _, err := xpgx.Execx(ctx, r.q, del); err != nil {
		return fmt.Errorf("clear resource regions: %w", err)
	}

	if len(regionIDs) == 0 {
		return nil
	}

	query := builder().Insert(tableRegionsResources).
		Columns("region_id", "resource_id")
	for _, id := range regionIDs {
		query = query.Values(id, resourceID)
	}
	query = query.Suffix("on conflict do nothing")

	if _, err := xpgx.Execx(ctx, r.q, query); err != nil {
		return fmt.Errorf("insert resource regions: %w", wrapErr(err))
	}

	return nil
}
