package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Constraint names the repositories map to domain conflicts.
const (
	constraintInviteeEventEmail = "invitees_event_email_key"
	constraintGuestEventEmail   = "guests_event_email_key"
	constraintGuestEventSeat    = "guests_event_seat_key"
	constraintSeatingConfigPK   = "seating_configurations_pkey"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id TEXT NOT NULL,
		name VARCHAR(255) NOT NULL,
		date DATE NOT NULL,
		start_time VARCHAR(5) NOT NULL,
		end_time VARCHAR(5) NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS invitees (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		owner_id TEXT NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(254) NOT NULL,
		category VARCHAR(20) NOT NULL CHECK (category IN ('VIP', 'Regular')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + constraintInviteeEventEmail + ` UNIQUE (event_id, email)
	)`,

	`CREATE TABLE IF NOT EXISTS guests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		email VARCHAR(254) NOT NULL,
		category VARCHAR(20) NOT NULL,
		rsvp_status VARCHAR(10) NOT NULL CHECK (rsvp_status IN ('accepted', 'declined')),
		access_code UUID NOT NULL UNIQUE,
		qr_code BYTEA NOT NULL,
		credential_expires_at TIMESTAMPTZ NOT NULL,
		checked_in BOOLEAN NOT NULL DEFAULT FALSE,
		seat_label VARCHAR(64),
		cancelled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + constraintGuestEventEmail + ` UNIQUE (event_id, email)
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS ` + constraintGuestEventSeat + `
		ON guests(event_id, seat_label) WHERE seat_label IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS seating_configurations (
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		table_count INTEGER,
		seats_per_table INTEGER,
		number_of_rows INTEGER,
		seats_per_row INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + constraintSeatingConfigPK + ` PRIMARY KEY (event_id),
		CONSTRAINT seating_configurations_one_shape CHECK (
			(table_count IS NOT NULL AND seats_per_table IS NOT NULL AND number_of_rows IS NULL AND seats_per_row IS NULL)
			OR
			(table_count IS NULL AND seats_per_table IS NULL AND number_of_rows IS NOT NULL AND seats_per_row IS NOT NULL)
		)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_owner_id ON events(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_guests_event_id ON guests(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invitees_event_id ON invitees(event_id)`,
}

// Migrate creates the schema if it does not exist. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("run migration %d: %w", i, err)
		}
	}
	return nil
}
