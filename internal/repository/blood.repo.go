package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type BloodDonorRepository struct {
	db *pgxpool.Pool
}

func NewBloodDonorRepository(db *pgxpool.Pool) *BloodDonorRepository {
	return &BloodDonorRepository{db: db}
}

const donorColumns = `id, user_id, blood_group, city, phone, is_available, created_at`

func (r *BloodDonorRepository) List(ctx context.Context, f domain.DonorFilter) ([]*domain.BloodDonor, error) {
	q := `SELECT ` + donorColumns + ` FROM blood_donors WHERE is_available = TRUE`
	args := []interface{}{}
	if f.BloodGroup != "" {
		args = append(args, f.BloodGroup)
		q += fmt.Sprintf(" AND blood_group = $%d", len(args))
	}
	if f.City != "" {
		args = append(args, f.City)
		q += fmt.Sprintf(" AND city = $%d", len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list donors: %v", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var out []*domain.BloodDonor
	for rows.Next() {
		d := new(domain.BloodDonor)
		if err := rows.Scan(&d.ID, &d.UserID, &d.BloodGroup, &d.City, &d.Phone, &d.IsAvailable, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan donor: %v", xerrors.ErrTransport, err)
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, rows.Err())
	}
	return out, nil
}

// Register upserts by user: a member has at most one donor card, re-registering
// updates it.
func (r *BloodDonorRepository) Register(ctx context.Context, d *domain.BloodDonor) (*domain.BloodDonor, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO blood_donors (user_id, blood_group, city, phone, is_available)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET
			blood_group  = EXCLUDED.blood_group,
			city         = EXCLUDED.city,
			phone        = EXCLUDED.phone,
			is_available = TRUE
		RETURNING `+donorColumns+`
	`, d.UserID, d.BloodGroup, d.City, d.Phone)

	out := new(domain.BloodDonor)
	if err := row.Scan(&out.ID, &out.UserID, &out.BloodGroup, &out.City, &out.Phone, &out.IsAvailable, &out.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, xerrors.ErrNoRowReturned)
		}
		return nil, fmt.Errorf("%w: register donor: %v", xerrors.ErrTransport, err)
	}
	return out, nil
}
