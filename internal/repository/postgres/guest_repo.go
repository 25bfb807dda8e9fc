package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventseating/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{
		DB: db,
	}
}

const guestColumns = `g.id, g.event_id, g.first_name, g.last_name, g.email, g.category, g.rsvp_status,
	g.access_code, g.qr_code, g.credential_expires_at, g.checked_in, g.seat_label, g.cancelled_at,
	g.created_at, g.updated_at`

func guestDest(g *domain.Guest, seat *sql.NullString, cancelled *sql.NullTime) []any {
	return []any{
		&g.ID, &g.EventID, &g.FirstName, &g.LastName, &g.Email, &g.Category, &g.RSVPStatus,
		&g.AccessCode, &g.QRCode, &g.CredentialExpiresAt, &g.CheckedIn, seat, cancelled,
		&g.CreatedAt, &g.UpdatedAt,
	}
}

func fillNullable(g *domain.Guest, seat sql.NullString, cancelled sql.NullTime) {
	if seat.Valid {
		g.SeatLabel = &seat.String
	}
	if cancelled.Valid {
		g.CancelledAt = &cancelled.Time
	}
}

func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	query := `
		INSERT INTO guests (event_id, first_name, last_name, email, category, rsvp_status,
			access_code, qr_code, credential_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		g.EventID, g.FirstName, g.LastName, g.Email, g.Category, g.RSVPStatus,
		g.AccessCode, g.QRCode, g.CredentialExpiresAt, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == constraintGuestEventEmail {
			return domain.ErrAlreadyResponded
		}
		return domain.ErrConflict
	}
	return err
}

func (r *guestRepository) GetWithEventByAccessCode(ctx context.Context, code string) (*domain.GuestWithEvent, error) {
	query := `
		SELECT ` + guestColumns + `,
			e.id, e.owner_id, e.name, e.date, e.start_time, e.end_time, e.location, e.created_at, e.updated_at
		FROM guests g
		JOIN events e ON e.id = g.event_id
		WHERE g.access_code = $1
	`
	g := &domain.Guest{}
	e := &domain.Event{}
	var seat sql.NullString
	var cancelled sql.NullTime
	dest := append(guestDest(g, &seat, &cancelled),
		&e.ID, &e.OwnerID, &e.Name, &e.Date, &e.StartTime, &e.EndTime, &e.Location, &e.CreatedAt, &e.UpdatedAt)
	if err := r.DB.QueryRowContext(ctx, query, code).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	fillNullable(g, seat, cancelled)
	return &domain.GuestWithEvent{Guest: g, Event: e}, nil
}

func (r *guestRepository) ExistsForEventAndEmail(ctx context.Context, eventID, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM guests WHERE event_id = $1 AND email = $2)`, eventID, email).
		Scan(&exists)
	return exists, err
}

func (r *guestRepository) ListByEventID(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM guests WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, notFoundIfMalformed(err)
	}

	query := `SELECT ` + guestColumns + ` FROM guests g WHERE g.event_id = $1 ORDER BY g.created_at, g.id LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, eventID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g := &domain.Guest{}
		var seat sql.NullString
		var cancelled sql.NullTime
		if err := rows.Scan(guestDest(g, &seat, &cancelled)...); err != nil {
			return nil, 0, err
		}
		fillNullable(g, seat, cancelled)
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

func (r *guestRepository) Cancel(ctx context.Context, guestID string, at time.Time) (bool, error) {
	query := `
		UPDATE guests
		SET rsvp_status = 'declined', cancelled_at = $2, seat_label = NULL, updated_at = $2
		WHERE id = $1 AND cancelled_at IS NULL
	`
	res, err := r.DB.ExecContext(ctx, query, guestID, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *guestRepository) MarkCheckedIn(ctx context.Context, guestID string) (bool, error) {
	// The WHERE clause makes the write one-way: a checked-in guest is never reset.
	res, err := r.DB.ExecContext(ctx,
		`UPDATE guests SET checked_in = TRUE, updated_at = NOW() WHERE id = $1 AND checked_in = FALSE`, guestID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
