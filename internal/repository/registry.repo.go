package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

// RegistryRepository reads the approved-members registry. Phone is unique, so
// lookups expect zero or one rows.
type RegistryRepository struct {
	db *pgxpool.Pool
}

func NewRegistryRepository(db *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{db: db}
}

func (r *RegistryRepository) FindByPhone(ctx context.Context, phone string) (*domain.ApprovedMember, error) {
	row := r.db.QueryRow(ctx, `
		SELECT phone, full_name, city
		FROM approved_members
		WHERE phone = $1
	`, phone)

	m := new(domain.ApprovedMember)
	if err := row.Scan(&m.Phone, &m.FullName, &m.City); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: registry lookup: %v", xerrors.ErrTransport, err)
	}
	return m, nil
}
