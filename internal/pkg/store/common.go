package store

import (
	"errors"
	"fmt"

	"github.com/ougirez/certzone/internal/pkg/constants"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	tableOkrugs                  = "okrugs"
	tableRegions                 = "regions"
	tableOrganizations           = "organizations"
	tableContacts                = "contacts"
	tableCerts                   = "certs"
	tableResources               = "resources"
	tableRegionsResources        = "regions_resources"
	tableResponsibilities        = "responsibilities"
	tableResponsibilitiesService = "responsibilities_services"
	tableServices                = "services"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

// pgCodes maps Postgres SQLSTATE codes onto store sentinels.
var pgCodes = map[string]error{
	"23505": constants.ErrDBConflict,   // unique_violation: (name, org_id) у certs/resources, кортеж ответственности
	"23503": constants.ErrDBMissingRef, // foreign_key_violation: регион или услуга не из справочника
}

// wrapErr turns driver errors into store sentinels. Constraint violations keep the constraint
// name in the message.
func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if v, ok := pgCodes[pgErr.Code]; ok {
			return fmt.Errorf("%w: %s", v, pgErr.ConstraintName)
		}
	}
	return err
}

// builder возвращает squirrel SQL Builder обьект.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

