package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/ougirez/certzone/internal/pkg/store/xpgx"
)

var organizationsColumns = []string{
	"id", "uuid", "db_name", "full_name", "short_name", "inn", "kpp", "ogrn",
	"factual_address", "mailing_address", "region_id", "date_agreement", "is_active",
	"created_at", "updated_at",
}

func (r *repo) GetOrganization(ctx context.Context, inn, kpp, ogrn string) (*domain.Organization, error) {
	query := builder().Select(organizationsColumns...).
		From(tableOrganizations).
		Where(sq.Eq{
			"inn":  inn,
			"kpp":  kpp,
			"ogrn": ogrn,
		}).
		OrderBy("id").
		Limit(1)

	selected, err := xpgx.Getx[domain.Organization](ctx, r.q, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (r *repo) CreateOrganization(ctx context.Context, org *domain.Organization) error {
	query := builder().Insert(tableOrganizations).
		Columns(organizationsColumns[1:13]...).
		Values(
			org.UUID, org.DBName, org.FullName, org.ShortName, org.INN, org.KPP, org.OGRN,
			org.FactualAddress, org.MailingAddress, org.RegionID, org.DateAgreement, org.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at")

	if err := xpgx.Scanx(ctx, r.q, query, &org.ID, &org.CreatedAt, &org.UpdatedAt); err != nil {
		return fmt.Errorf("insert organization %s: %w", org.INN, wrapErr(err))
	}

	return nil
}

func (r *repo) UpdateMailingAddress(ctx context.Context, orgID int64, address string) error {
	query := builder().Update(tableOrganizations).
		Set("mailing_address", address).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": orgID})

	tag, err := xpgx.Execx(ctx, r.q, query)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return constants.ErrDBNotFound
	}

	return nil
}
