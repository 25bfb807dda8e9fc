package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventseating/internal/domain"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type seatingRepository struct {
	DB *sql.DB
}

func NewSeatingRepository(db *sql.DB) domain.SeatingRepository {
	return &seatingRepository{
		DB: db,
	}
}

func (r *seatingRepository) CreateConfig(ctx context.Context, cfg *domain.SeatingConfiguration) error {
	tables, perTable, rows, perRow := domain.ShapeDimensions(cfg.Shape)
	query := `
		INSERT INTO seating_configurations (event_id, table_count, seats_per_table, number_of_rows, seats_per_row, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, cfg.EventID, tables, perTable, rows, perRow, cfg.CreatedAt, cfg.UpdatedAt)
	if constraint, ok := uniqueViolation(err); ok && constraint == constraintSeatingConfigPK {
		return domain.ErrConfigExists
	}
	return err
}

func (r *seatingRepository) GetConfig(ctx context.Context, eventID string) (*domain.SeatingConfiguration, error) {
	return seatingStore{q: r.DB}.GetConfig(ctx, eventID)
}

func (r *seatingRepository) ListGuestSeats(ctx context.Context, eventID string) ([]*domain.GuestSeat, error) {
	return seatingStore{q: r.DB}.ListGuestSeats(ctx, eventID)
}

// WithinEventLock takes a transaction-scoped advisory lock keyed by the event id, so
// concurrent seat writers for one event run one after another.
func (r *seatingRepository) WithinEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, tx domain.SeatingTx) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, eventID); err != nil {
		return fmt.Errorf("lock event seating: %w", err)
	}
	if err = fn(ctx, seatingStore{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// seatingStore runs seating queries against a DB or a transaction.
type seatingStore struct {
	q queryer
}

func (s seatingStore) GetConfig(ctx context.Context, eventID string) (*domain.SeatingConfiguration, error) {
	query := `
		SELECT event_id, table_count, seats_per_table, number_of_rows, seats_per_row, created_at, updated_at
		FROM seating_configurations
		WHERE event_id = $1
	`
	cfg := &domain.SeatingConfiguration{}
	var tables, perTable, rows, perRow sql.NullInt64
	err := s.q.QueryRowContext(ctx, query, eventID).
		Scan(&cfg.EventID, &tables, &perTable, &rows, &perRow, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	shape, err := domain.NewShape(nullInt(tables), nullInt(perTable), nullInt(rows), nullInt(perRow))
	if err != nil {
		return nil, fmt.Errorf("stored seating configuration for %s: %w", eventID, err)
	}
	cfg.Shape = shape
	return cfg, nil
}

func (s seatingStore) UpdateConfig(ctx context.Context, cfg *domain.SeatingConfiguration) error {
	tables, perTable, rows, perRow := domain.ShapeDimensions(cfg.Shape)
	// Every column is written, so switching shape nulls the other pair.
	query := `
		UPDATE seating_configurations
		SET table_count = $2, seats_per_table = $3, number_of_rows = $4, seats_per_row = $5, updated_at = $6
		WHERE event_id = $1
	`
	res, err := s.q.ExecContext(ctx, query, cfg.EventID, tables, perTable, rows, perRow, cfg.UpdatedAt)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (s seatingStore) ListGuestSeats(ctx context.Context, eventID string) ([]*domain.GuestSeat, error) {
	query := `
		SELECT id, first_name, last_name, category, rsvp_status, cancelled_at IS NOT NULL, seat_label
		FROM guests
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := s.q.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := make([]*domain.GuestSeat, 0)
	for rows.Next() {
		g := &domain.GuestSeat{}
		var seat sql.NullString
		if err := rows.Scan(&g.GuestID, &g.FirstName, &g.LastName, &g.Category, &g.RSVPStatus, &g.Cancelled, &seat); err != nil {
			return nil, err
		}
		if seat.Valid {
			g.SeatLabel = &seat.String
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return guests, nil
}

func (s seatingStore) SetSeat(ctx context.Context, eventID, guestID string, label *string) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE guests SET seat_label = $3, updated_at = NOW() WHERE event_id = $1 AND id = $2`,
		eventID, guestID, label)
	if err != nil {
		return seatWriteError(err)
	}
	return expectOneRow(res)
}

func (s seatingStore) SetSeats(ctx context.Context, eventID string, pairings []domain.SeatPairing) error {
	guestIDs := make([]string, len(pairings))
	labels := make([]string, len(pairings))
	for i, p := range pairings {
		guestIDs[i] = p.GuestID
		labels[i] = p.SeatLabel
	}
	query := `
		UPDATE guests g
		SET seat_label = p.seat_label, updated_at = NOW()
		FROM unnest($2::uuid[], $3::text[]) AS p(guest_id, seat_label)
		WHERE g.event_id = $1 AND g.id = p.guest_id AND g.seat_label IS NULL
	`
	res, err := s.q.ExecContext(ctx, query, eventID, pq.Array(guestIDs), pq.Array(labels))
	if err != nil {
		return seatWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != int64(len(pairings)) {
		return domain.ErrSeatTaken
	}
	return nil
}

func (s seatingStore) ClearSeatsExcept(ctx context.Context, eventID string, keep []string) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE guests
		SET seat_label = NULL, updated_at = NOW()
		WHERE event_id = $1 AND seat_label IS NOT NULL AND NOT (seat_label = ANY($2::text[]))
	`, eventID, pq.Array(keep))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func seatWriteError(err error) error {
	if constraint, ok := uniqueViolation(err); ok && constraint == constraintGuestEventSeat {
		return domain.ErrSeatTaken
	}
	return err
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
