package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, phone, full_name, city, occupation, photo_url, email, google_id, is_verified, is_admin, updated_at`

// Fetch returns the member profile for a subject id, or nil when the user has
// not created one yet. Only genuine transport problems surface as errors.
func (r *ProfileRepository) Fetch(ctx context.Context, subjectID string) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM users
		WHERE id = $1
	`, subjectID)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: fetch profile: %v", xerrors.ErrTransport, err)
	}
	return p, nil
}

// Upsert creates or replaces the profile row for subjectID. String fields are
// trimmed and unset optionals persist as NULL. The persisted row is always
// returned: if the write reports success without echoing a row, the row is
// re-read, and a still-missing row is a transport failure — a "successful"
// write with unknown content must never be treated as success.
func (r *ProfileRepository) Upsert(ctx context.Context, subjectID string, in domain.ProfileInput) (*domain.Profile, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, xerrors.NewValidation("id", xerrors.ErrUserIDRequired)
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, xerrors.NewValidation("phone", xerrors.ErrPhoneRequired)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, phone, full_name, city, occupation, photo_url, email, google_id, is_verified, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			phone       = EXCLUDED.phone,
			full_name   = EXCLUDED.full_name,
			city        = EXCLUDED.city,
			occupation  = EXCLUDED.occupation,
			photo_url   = EXCLUDED.photo_url,
			email       = EXCLUDED.email,
			google_id   = EXCLUDED.google_id,
			is_verified = EXCLUDED.is_verified,
			updated_at  = EXCLUDED.updated_at
		RETURNING `+profileColumns+`
	`, subjectID,
		phone,
		strings.TrimSpace(in.FullName),
		strings.TrimSpace(in.City),
		trimPtr(in.Occupation),
		trimPtr(in.PhotoURL),
		trimPtr(in.Email),
		trimPtr(in.GoogleID),
		in.IsVerified,
		time.Now().UTC(),
	)

	p, err := scanProfile(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: upsert profile: %v", xerrors.ErrTransport, err)
	}

	// Write claimed success but echoed nothing; re-read before trusting it.
	p, ferr := r.Fetch(ctx, subjectID)
	if ferr != nil {
		return nil, ferr
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, xerrors.ErrNoRowReturned)
	}
	return p, nil
}

// ListVerified returns the member directory, verified profiles only, ordered
// by name.
func (r *ProfileRepository) ListVerified(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+profileColumns+`
		FROM users
		WHERE is_verified = TRUE
		ORDER BY full_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list directory: %v", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var out []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan directory row: %v", xerrors.ErrTransport, err)
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, rows.Err())
	}
	return out, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	p := new(domain.Profile)
	err := row.Scan(
		&p.ID, &p.Phone, &p.FullName, &p.City,
		&p.Occupation, &p.PhotoURL, &p.Email, &p.GoogleID,
		&p.IsVerified, &p.IsAdmin, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
