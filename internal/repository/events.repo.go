package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, event_date, location, image_url, is_announcement, is_visible, status, created_by, created_at`

// List returns approved, visible events newest-first; kind narrows to dated
// events or announcements.
func (r *EventRepository) List(ctx context.Context, kind domain.EventKind) ([]*domain.Event, error) {
	q := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'approved' AND is_visible = TRUE`
	switch kind {
	case domain.EventsOnly:
		q += ` AND is_announcement = FALSE`
	case domain.EventsAnnouncements:
		q += ` AND is_announcement = TRUE`
	}
	q += ` ORDER BY event_date DESC NULLS LAST`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", xerrors.ErrTransport, err)
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan event: %v", xerrors.ErrTransport, err)
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTransport, rows.Err())
	}
	return out, nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, xerrors.ErrRecordMissing
		}
		return nil, fmt.Errorf("%w: get event: %v", xerrors.ErrTransport, err)
	}
	return e, nil
}

// Create inserts a new event. Status is decided by the caller: member posts
// enter the moderation queue as 'pending', admin posts go straight to
// 'approved'.
func (r *EventRepository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO events (title, description, event_date, location, image_url, is_announcement, is_visible, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)
		RETURNING `+eventColumns+`
	`, e.Title, e.Description, e.EventDate, e.Location, e.ImageURL, e.IsAnnouncement, e.Status, e.CreatedBy)

	created, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("%w: create event: %v", xerrors.ErrTransport, err)
	}
	return created, nil
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	e := new(domain.Event)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.EventDate, &e.Location,
		&e.ImageURL, &e.IsAnnouncement, &e.IsVisible, &e.Status, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}
