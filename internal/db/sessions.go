package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/schoolthings/apphub/internal/models"
)

// CreateSession inserts a session row logged in as userID and returns it.
// Sessions are created lazily on first successful login or signup.
func (db *DB) CreateSession(ctx context.Context, userID int64) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "db.create_session",
		trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	query := `INSERT INTO sessions (logged_in_user) VALUES ($1) RETURNING id, logged_in_user`

	var session models.Session
	err := db.conn.QueryRowContext(ctx, query, userID).Scan(&session.ID, &session.LoggedInUser)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// GetSession retrieves a session by id
func (db *DB) GetSession(ctx context.Context, sessionID int64) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "db.get_session")
	defer span.End()

	query := `SELECT id, logged_in_user FROM sessions WHERE id = $1`

	var session models.Session
	err := db.conn.QueryRowContext(ctx, query, sessionID).Scan(&session.ID, &session.LoggedInUser)
	if err != nil {
		if err == sql.ErrNoRows {
			// Don't record as error - a stale cookie is expected
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// SetSessionUser points an existing session at userID (login on a
// returning browser). Returns ErrSessionNotFound if the row is gone.
func (db *DB) SetSessionUser(ctx context.Context, sessionID, userID int64) error {
	ctx, span := tracer.Start(ctx, "db.set_session_user",
		trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	query := `UPDATE sessions SET logged_in_user = $1 WHERE id = $2`
	res, err := db.conn.ExecContext(ctx, query, userID, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ClearSessionUser signs a session out. The row persists so the cookie
// can be reused by a later login.
func (db *DB) ClearSessionUser(ctx context.Context, sessionID int64) error {
	ctx, span := tracer.Start(ctx, "db.clear_session_user")
	defer span.End()

	query := `UPDATE sessions SET logged_in_user = NULL WHERE id = $1`
	if _, err := db.conn.ExecContext(ctx, query, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
