package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/schoolthings/apphub/internal/models"
)

// CreateApp inserts an app and returns the stored row.
// Connected state starts false with an empty error.
func (db *DB) CreateApp(ctx context.Context, ownerID int64, title, description, domain, token string) (*models.App, error) {
	query := `
		INSERT INTO apps (owner_id, title, description, domain, token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, title, description, domain, token, connected, connected_error
	`

	var app models.App
	err := db.conn.QueryRowContext(ctx, query, ownerID, title, description, domain, token).Scan(
		&app.ID,
		&app.OwnerID,
		&app.Title,
		&app.Description,
		&app.Domain,
		&app.Token,
		&app.Connected,
		&app.ConnectedError,
	)
	if err != nil {
		if uv := AsUniqueViolation(err); uv != nil {
			return nil, uv
		}
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	return &app, nil
}

// GetAppByID retrieves an app by id
func (db *DB) GetAppByID(ctx context.Context, appID int64) (*models.App, error) {
	return db.scanApp(db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, domain, token, connected, connected_error
		 FROM apps WHERE id = $1`, appID))
}

// GetAppByTitle retrieves an app by its unique title
func (db *DB) GetAppByTitle(ctx context.Context, title string) (*models.App, error) {
	return db.scanApp(db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, domain, token, connected, connected_error
		 FROM apps WHERE title = $1`, title))
}

func (db *DB) scanApp(row *sql.Row) (*models.App, error) {
	var app models.App
	err := row.Scan(
		&app.ID,
		&app.OwnerID,
		&app.Title,
		&app.Description,
		&app.Domain,
		&app.Token,
		&app.Connected,
		&app.ConnectedError,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return &app, nil
}

// ListApps returns all apps ordered by id
func (db *DB) ListApps(ctx context.Context) ([]models.App, error) {
	query := `
		SELECT id, owner_id, title, description, domain, token, connected, connected_error
		FROM apps ORDER BY id
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	var apps []models.App
	for rows.Next() {
		var app models.App
		if err := rows.Scan(
			&app.ID,
			&app.OwnerID,
			&app.Title,
			&app.Description,
			&app.Domain,
			&app.Token,
			&app.Connected,
			&app.ConnectedError,
		); err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// ReposContainingApp returns the repos whose member list contains appID
func (db *DB) ReposContainingApp(ctx context.Context, appID int64) ([]models.Repo, error) {
	query := `
		SELECT id, owner_id, title, description, apps
		FROM repos WHERE apps @> $1 ORDER BY id
	`

	rows, err := db.conn.QueryContext(ctx, query, pq.Int64Array{appID})
	if err != nil {
		return nil, fmt.Errorf("failed to find repos containing app: %w", err)
	}
	defer rows.Close()

	var repos []models.Repo
	for rows.Next() {
		var repo models.Repo
		var members pq.Int64Array
		if err := rows.Scan(&repo.ID, &repo.OwnerID, &repo.Title, &repo.Description, &members); err != nil {
			return nil, fmt.Errorf("failed to scan repo: %w", err)
		}
		repo.Apps = members
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

// DeleteApp removes an app and prunes its id from every repo referencing
// it. Runs in one transaction so a failed prune leaves nothing half-done.
// Pruning is a single atomic statement per repo set, so concurrent addApp
// writers cannot be silently overwritten.
func (db *DB) DeleteApp(ctx context.Context, appID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// array_remove drops every occurrence of the id; after the row is
	// gone any remaining reference would dangle
	pruneSQL := `UPDATE repos SET apps = array_remove(apps, $1) WHERE apps @> $2`
	if _, err := tx.ExecContext(ctx, pruneSQL, appID, pq.Int64Array{appID}); err != nil {
		return fmt.Errorf("failed to remove app from repos: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM apps WHERE id = $1`, appID)
	if err != nil {
		return fmt.Errorf("failed to delete app: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAppNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit app deletion: %w", err)
	}
	return nil
}
