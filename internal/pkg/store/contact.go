package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/store/xpgx"
)

var contactColumns = []string{"org_id", "fio", "dep", "pos", "mob_phone", "work_phone", "email", "is_main"}

func (r *repo) DeleteContacts(ctx context.Context, orgID int64) (int64, error) {
	query := builder().Delete(tableContacts).
		Where(sq.Eq{"org_id": orgID})

	tag, err := xpgx.Execx(ctx, r.q, query)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *repo) CreateContacts(ctx context.Context, contacts []*domain.Contact) error {
	// пустой INSERT squirrel не собирает
	if len(contacts) == 0 {
		return nil
	}

	query := builder().Insert(tableContacts).
		Columns(contactColumns...)

	for _, c := range contacts {
		query = query.Values(c.OrgID, c.FIO, c.Dep, c.Pos, c.MobPhone, c.WorkPhone, c.Email, c.IsMain)
	}

	rows, err := xpgx.Selectx[struct {
		ID int64 `db:"id"`
	}](ctx, r.q, query.Suffix("RETURNING id"))
	if err != nil {
		return err
	}
	for i, row := range rows {
		contacts[i].ID = row.ID
	}

	return nil
}
