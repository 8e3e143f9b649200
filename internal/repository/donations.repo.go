package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type DonationRepository struct {
	db *pgxpool.Pool
}

func NewDonationRepository(db *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) List(ctx context.Context) ([]*domain.Donation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, donor_name, amount, purpose, donated_at
		FROM donations
		ORDER BY donated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list donations: %v", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var out []*domain.Donation
	for rows.Next() {
		d := new(domain.Donation)
		if err := rows.Scan(&d.ID, &d.DonorName, &d.Amount, &d.Purpose, &d.DonatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan donation: %v", xerrors.ErrTransport, err)
		}
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, rows.Err())
	}
	return out, nil
}

func (r *DonationRepository) Record(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO donations (donor_name, amount, purpose)
		VALUES ($1, $2, $3)
		RETURNING id, donor_name, amount, purpose, donated_at
	`, d.DonorName, d.Amount, d.Purpose)

	out := new(domain.Donation)
	if err := row.Scan(&out.ID, &out.DonorName, &out.Amount, &out.Purpose, &out.DonatedAt); err != nil {
		return nil, fmt.Errorf("%w: record donation: %v", xerrors.ErrTransport, err)
	}
	return out, nil
}
