package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventseating/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, owner_id, name, date, start_time, end_time, location, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Date, &e.StartTime, &e.EndTime, &e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, name, date, start_time, end_time, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, e.OwnerID, e.Name, e.Date, e.StartTime, e.EndTime, e.Location, e.CreatedAt, e.UpdatedAt).
		Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, notFoundIfMalformed(err)
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string, page domain.PaginationParams) ([]*domain.Event, int, error) {
	return r.list(ctx, `WHERE owner_id = $1`, []any{ownerID}, page)
}

func (r *eventRepository) ListAll(ctx context.Context, page domain.PaginationParams) ([]*domain.Event, int, error) {
	return r.list(ctx, "", nil, page)
}

// list runs a count and a page query over events matching where. LIMIT and OFFSET
// take the two placeholders after args.
func (r *eventRepository) list(ctx context.Context, where string, args []any, page domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		%s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, eventColumns, where, n+1, n+2)
	rows, err := r.DB.QueryContext(ctx, query, append(args, page.PageSize, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event, credentialExpiry *time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE events
		SET name = $2, date = $3, start_time = $4, end_time = $5, location = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, e.ID, e.Name, e.Date, e.StartTime, e.EndTime, e.Location, e.UpdatedAt)
	if err != nil {
		return notFoundIfMalformed(err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	if credentialExpiry != nil {
		_, err := tx.ExecContext(ctx,
			`UPDATE guests SET credential_expires_at = $2, updated_at = $3 WHERE event_id = $1`,
			e.ID, *credentialExpiry, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("reissue credential expiry: %w", err)
		}
	}
	return tx.Commit()
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return notFoundIfMalformed(err)
	}
	return expectOneRow(res)
}

func (r *eventRepository) SummarizeByOwner(ctx context.Context, ownerID string, today time.Time) (*domain.OrganizerSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM events WHERE owner_id = $1),
			(SELECT COUNT(*) FROM events WHERE owner_id = $1 AND date >= $2),
			COUNT(g.id),
			COUNT(g.id) FILTER (WHERE g.rsvp_status = 'accepted'),
			COUNT(g.id) FILTER (WHERE g.checked_in AND g.rsvp_status = 'accepted')
		FROM events e
		LEFT JOIN guests g ON g.event_id = e.id
		WHERE e.owner_id = $1
	`
	sum := &domain.OrganizerSummary{}
	err := r.DB.QueryRowContext(ctx, query, ownerID, today).
		Scan(&sum.TotalEvents, &sum.UpcomingEvents, &sum.TotalGuests, &sum.AcceptedGuests, &sum.CheckedIn)
	if err != nil {
		return nil, err
	}
	return sum, nil
}

const rsvpCountsQuery = `
	SELECT
		e.id, e.name, e.date,
		COUNT(g.id) FILTER (WHERE g.rsvp_status = 'accepted'),
		COUNT(g.id) FILTER (WHERE g.rsvp_status = 'declined'),
		COUNT(g.id)
	FROM events e
	LEFT JOIN guests g ON g.event_id = e.id
	%s
	GROUP BY e.id, e.name, e.date
	ORDER BY COUNT(g.id) DESC, e.date DESC, e.id
`

func (r *eventRepository) RSVPCountsByOwner(ctx context.Context, ownerID string) ([]domain.EventRSVPCount, error) {
	return r.rsvpCounts(ctx, fmt.Sprintf(rsvpCountsQuery, `WHERE e.owner_id = $1`), ownerID)
}

func (r *eventRepository) RSVPCounts(ctx context.Context) ([]domain.EventRSVPCount, error) {
	return r.rsvpCounts(ctx, fmt.Sprintf(rsvpCountsQuery, ""))
}

func (r *eventRepository) rsvpCounts(ctx context.Context, query string, args ...any) ([]domain.EventRSVPCount, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]domain.EventRSVPCount, 0)
	for rows.Next() {
		var c domain.EventRSVPCount
		if err := rows.Scan(&c.EventID, &c.EventName, &c.Date, &c.Accepted, &c.Declined, &c.Total); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *eventRepository) SummarizePlatform(ctx context.Context) (*domain.PlatformStatistics, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(DISTINCT owner_id) FROM events),
			(SELECT COUNT(*) FROM guests),
			(SELECT COUNT(*) FROM guests WHERE rsvp_status = 'accepted')
	`
	stats := &domain.PlatformStatistics{}
	err := r.DB.QueryRowContext(ctx, query).
		Scan(&stats.TotalEvents, &stats.TotalOrganizers, &stats.TotalRSVPs, &stats.AcceptedRSVPs)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// expectOneRow maps an update or delete that touched nothing to domain.ErrNotFound.
func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
