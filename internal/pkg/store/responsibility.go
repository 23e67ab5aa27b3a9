package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/store/xpgx"
)

func (r *repo) ResponsibilityExists(ctx context.Context, key domain.ResponsibilityKey) (bool, error) {
	query := builder().Select("count(1)").
		From(tableResponsibilities).
		Where(sq.Eq{
			"resource_id": key.ResourceID,
			"cert_id":     key.CertID,
			"date_start":  key.DateStart,
			"date_end":    key.DateEnd,
		})

	var count int64
	if err := xpgx.Scanx(ctx, r.q, query, &count); err != nil {
		return false, err
	}

	return count > 0, nil
}

// CreateResponsibility inserts the assignment together with its service links.
func (r *repo) CreateResponsibility(ctx context.Context, resp *domain.Responsibility) error {
	query := builder().Insert(tableResponsibilities).
		Columns("resource_id", "cert_id", "type", "props", "date_start", "date_end", "comment").
		Values(resp.ResourceID, resp.CertID, resp.Type, resp.Props, resp.DateStart, resp.DateEnd, resp.Comment).
		Suffix("RETURNING id")

	if err := xpgx.Scanx(ctx, r.q, query, &resp.ID); err != nil {
		return fmt.Errorf("insert responsibility: %w", wrapErr(err))
	}

	if len(resp.ServiceIDs) == 0 {
		return nil
	}

	links := builder().Insert(tableResponsibilitiesService).
		Columns("responsibility_id", "service_id")
	for _, id := range resp.ServiceIDs {
		links = links.Values(resp.ID, id)
	}
	links = links.Suffix("on conflict do nothing")

	if _, err := xpgx.Execx(ctx, r.q, links); err != nil {
		return fmt.Errorf("insert responsibility services: %w", wrapErr(err))
	}

	return nil
}
