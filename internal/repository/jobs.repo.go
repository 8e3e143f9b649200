package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type JobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, title, company, city, description, contact_info, status, posted_by, created_at`

func (r *JobRepository) List(ctx context.Context) ([]*domain.Job, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = 'approved'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var out []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan job: %v", xerrors.ErrTransport, err)
		}
		out = append(out, j)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, rows.Err())
	}
	return out, nil
}

func (r *JobRepository) Create(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO jobs (title, company, city, description, contact_info, status, posted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+jobColumns+`
	`, j.Title, j.Company, j.City, j.Description, j.ContactInfo, j.Status, j.PostedBy)

	created, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("%w: create job: %v", xerrors.ErrTransport, err)
	}
	return created, nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	j := new(domain.Job)
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.City, &j.Description,
		&j.ContactInfo, &j.Status, &j.PostedBy, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}
