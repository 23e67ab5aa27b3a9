package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/store/xpgx"
)

var certsColumns = []string{"id", "uuid", "name", "type", "date_actual_resp", "org_id", "created_at", "updated_at"}

func (r *repo) GetCert(ctx context.Context, name string, orgID int64) (*domain.Cert, error) {
	query := builder().Select(certsColumns...).
		From(tableCerts).
		Where(sq.Eq{
			"name":   name,
			"org_id": orgID,
		})

	selected, err := xpgx.Getx[domain.Cert](ctx, r.q, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (r *repo) CreateCert(ctx context.Context, cert *domain.Cert) error {
	query := builder().Insert(tableCerts).
		Columns("uuid", "name", "type", "date_actual_resp", "org_id").
		Values(cert.UUID, cert.Name, cert.Type, cert.DateActualResp, cert.OrgID).
		Suffix("RETURNING id, created_at, updated_at")

	if err := xpgx.Scanx(ctx, r.q, query, &cert.ID, &cert.CreatedAt, &cert.UpdatedAt); err != nil {
		return fmt.Errorf("insert cert %q: %w", cert.Name, wrapErr(err))
	}

	return nil
}

func (r *repo) UpdateCert(ctx context.Context, cert *domain.Cert) error {
	query := builder().Update(tableCerts).
		Set("type", cert.Type).
		Set("date_actual_resp", cert.DateActualResp).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": cert.ID}).
		Suffix("RETURNING updated_at")

	if err := xpgx.Scanx(ctx, r.q, query, &cert.UpdatedAt); err != nil {
		return fmt.Errorf("update cert %d: %w", cert.ID, wrapErr(err))
	}

	return nil
}
