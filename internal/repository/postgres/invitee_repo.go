package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventseating/internal/domain"
)

type inviteeRepository struct {
	DB *sql.DB
}

func NewInviteeRepository(db *sql.DB) domain.InviteeRepository {
	return &inviteeRepository{
		DB: db,
	}
}

func (r *inviteeRepository) Create(ctx context.Context, inv *domain.Invitee) error {
	query := `
		INSERT INTO invitees (event_id, owner_id, first_name, last_name, email, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, inv.EventID, inv.OwnerID, inv.FirstName, inv.LastName, inv.Email, inv.Category, inv.CreatedAt).
		Scan(&inv.ID)
	if constraint, ok := uniqueViolation(err); ok && constraint == constraintInviteeEventEmail {
		return domain.ErrInviteeExists
	}
	return err
}

func (r *inviteeRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Invitee, error) {
	query := `
		SELECT id, event_id, owner_id, first_name, last_name, email, category, created_at
		FROM invitees
		WHERE event_id = $1 AND email = $2
	`
	inv := &domain.Invitee{}
	err := r.DB.QueryRowContext(ctx, query, eventID, email).
		Scan(&inv.ID, &inv.EventID, &inv.OwnerID, &inv.FirstName, &inv.LastName, &inv.Email, &inv.Category, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *inviteeRepository) ListByEventID(ctx context.Context, eventID string, page domain.PaginationParams) ([]*domain.Invitee, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitees WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, notFoundIfMalformed(err)
	}

	query := `
		SELECT id, event_id, owner_id, first_name, last_name, email, category, created_at
		FROM invitees
		WHERE event_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitee, 0)
	for rows.Next() {
		inv := &domain.Invitee{}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.OwnerID, &inv.FirstName, &inv.LastName, &inv.Email, &inv.Category, &inv.CreatedAt); err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return invs, total, nil
}

func (r *inviteeRepository) Delete(ctx context.Context, eventID, email string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invitees WHERE event_id = $1 AND email = $2`, eventID, email)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}
