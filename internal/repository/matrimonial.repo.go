package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type MatrimonialRepository struct {
	db *pgxpool.Pool
}

func NewMatrimonialRepository(db *pgxpool.Pool) *MatrimonialRepository {
	return &MatrimonialRepository{db: db}
}

const matrimonialColumns = `id, user_id, full_name, gender, city, gotra, birth_date, bio, photo_url, status, created_at`

func (r *MatrimonialRepository) List(ctx context.Context, f domain.MatrimonialFilter) ([]*domain.MatrimonialProfile, error) {
	q := `SELECT ` + matrimonialColumns + ` FROM matrimonial_profiles WHERE status = 'approved'`
	args := []interface{}{}
	if f.Gender != "" {
		args = append(args, f.Gender)
		q += fmt.Sprintf(" AND gender = $%d", len(args))
	}
	if f.City != "" {
		args = append(args, f.City)
		q += fmt.Sprintf(" AND city = $%d", len(args))
	}
	if f.Gotra != "" {
		args = append(args, f.Gotra)
		q += fmt.Sprintf(" AND gotra = $%d", len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list matrimonial profiles: %v", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var out []*domain.MatrimonialProfile
	for rows.Next() {
		m, err := scanMatrimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan matrimonial profile: %v", xerrors.ErrTransport, err)
		}
		out = append(out, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, rows.Err())
	}
	return out, nil
}

func (r *MatrimonialRepository) Get(ctx context.Context, id string) (*domain.MatrimonialProfile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+matrimonialColumns+` FROM matrimonial_profiles WHERE id = $1`, id)
	m, err := scanMatrimonial(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrRecordMissing
		}
		return nil, fmt.Errorf("%w: get matrimonial profile: %v", xerrors.ErrTransport, err)
	}
	return m, nil
}

func (r *MatrimonialRepository) Create(ctx context.Context, m *domain.MatrimonialProfile) (*domain.MatrimonialProfile, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO matrimonial_profiles (user_id, full_name, gender, city, gotra, birth_date, bio, photo_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		RETURNING `+matrimonialColumns+`
	`, m.UserID, m.FullName, m.Gender, m.City, m.Gotra, m.BirthDate, m.Bio, m.PhotoURL)

	created, err := scanMatrimonial(row)
	if err != nil {
		return nil, fmt.Errorf("%w: create matrimonial profile: %v", xerrors.ErrTransport, err)
	}
	return created, nil
}

// CreateContactRequest records interest in a matrimonial profile.
func (r *MatrimonialRepository) CreateContactRequest(ctx context.Context, profileID, requesterID string) (*domain.ContactRequest, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO contact_requests (profile_id, requester_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, profile_id, requester_id, status, created_at
	`, profileID, requesterID)

	cr := new(domain.ContactRequest)
	if err := row.Scan(&cr.ID, &cr.ProfileID, &cr.RequesterID, &cr.Status, &cr.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: create contact request: %v", xerrors.ErrTransport, err)
	}
	return cr, nil
}

func scanMatrimonial(row pgx.Row) (*domain.MatrimonialProfile, error) {
	m := new(domain.MatrimonialProfile)
	err := row.Scan(&m.ID, &m.UserID, &m.FullName, &m.Gender, &m.City, &m.Gotra,
		&m.BirthDate, &m.Bio, &m.PhotoURL, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}
