package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type PostHolderRepository struct {
	db *pgxpool.Pool
}

func NewPostHolderRepository(db *pgxpool.Pool) *PostHolderRepository {
	return &PostHolderRepository{db: db}
}

func (r *PostHolderRepository) List(ctx context.Context) ([]*domain.PostHolder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, full_name, position, photo_url, display_order
		FROM post_holders
		ORDER BY display_order ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list post holders: %v", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var out []*domain.PostHolder
	for rows.Next() {
		p := new(domain.PostHolder)
		if err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.Position, &p.PhotoURL, &p.DisplayOrder); err != nil {
			return nil, fmt.Errorf("%w: scan post holder: %v", xerrors.ErrTransport, err)
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, rows.Err())
	}
	return out, nil
}
