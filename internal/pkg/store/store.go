package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/ougirez/certzone/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

// Repository is the set of reads and writes one ingestion performs inside a unit of work.
// Lookups return constants.ErrDBNotFound when nothing matches.
type Repository interface {
	GetOrganization(ctx context.Context, inn, kpp, ogrn string) (*domain.Organization, error)
	CreateOrganization(ctx context.Context, org *domain.Organization) error
	UpdateMailingAddress(ctx context.Context, orgID int64, address string) error

	DeleteContacts(ctx context.Context, orgID int64) (int64, error)
	CreateContacts(ctx context.Context, contacts []*domain.Contact) error

	GetCert(ctx context.Context, name string, orgID int64) (*domain.Cert, error)
	CreateCert(ctx context.Context, cert *domain.Cert) error
	UpdateCert(ctx context.Context, cert *domain.Cert) error

	GetResource(ctx context.Context, name string, orgID int64) (*domain.Resource, error)
	CreateResource(ctx context.Context, res *domain.Resource) error
	UpdateResource(ctx context.Context, res *domain.Resource) error

	ResponsibilityExists(ctx context.Context, key domain.ResponsibilityKey) (bool, error)
	CreateResponsibility(ctx context.Context, resp *domain.Responsibility) error
}

// Tx is a unit of work. Nothing written through it is visible to others until Commit.
type Tx interface {
	Repository
	Commit(ctx context.Context) error
	// Rollback is a no-op after a successful Commit.
	Rollback(ctx context.Context) error
}

type Store interface {
	Begin(ctx context.Context) (Tx, error)
	ListRegions(ctx context.Context) ([]*domain.Region, error)
	ListServices(ctx context.Context) ([]*domain.Service, error)
}

// Connect opens the pool, waiting for the database to come up.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	return xpgx.NewPool(ctx, dsn, constants.DefaultDBConnectWait)
}

type store struct {
	pool Pool
}

func NewStore(pool Pool) Store {
	return &store{pool}
}

func (s *store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &txStore{repo: repo{q: tx}, tx: tx}, nil
}

// repo runs the Repository queries against any querier, a transaction in practice.
type repo struct {
	q xpgx.Querier
}

type txStore struct {
	repo
	tx pgx.Tx
}

func (t *txStore) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txStore) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
