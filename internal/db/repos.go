package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/schoolthings/apphub/internal/models"
)

// CreateRepo inserts a repo with an empty member list and returns the
// stored row.
func (db *DB) CreateRepo(ctx context.Context, ownerID int64, title, description string) (*models.Repo, error) {
	query := `
		INSERT INTO repos (owner_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, owner_id, title, description, apps
	`

	var repo models.Repo
	var members pq.Int64Array
	err := db.conn.QueryRowContext(ctx, query, ownerID, title, description).Scan(
		&repo.ID,
		&repo.OwnerID,
		&repo.Title,
		&repo.Description,
		&members,
	)
	if err != nil {
		if uv := AsUniqueViolation(err); uv != nil {
			return nil, uv
		}
		return nil, fmt.Errorf("failed to create repo: %w", err)
	}
	repo.Apps = members

	return &repo, nil
}

// GetRepoByTitle retrieves a repo by its unique title
func (db *DB) GetRepoByTitle(ctx context.Context, title string) (*models.Repo, error) {
	query := `SELECT id, owner_id, title, description, apps FROM repos WHERE title = $1`

	var repo models.Repo
	var members pq.Int64Array
	err := db.conn.QueryRowContext(ctx, query, title).Scan(
		&repo.ID,
		&repo.OwnerID,
		&repo.Title,
		&repo.Description,
		&members,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRepoNotFound
		}
		return nil, fmt.Errorf("failed to get repo by title: %w", err)
	}
	repo.Apps = members

	return &repo, nil
}

// ListRepos returns all repos ordered by id
func (db *DB) ListRepos(ctx context.Context) ([]models.Repo, error) {
	query := `SELECT id, owner_id, title, description, apps FROM repos ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list repos: %w", err)
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

// RepoApps resolves a repo's member ids to app rows, preserving the
// member order. A missing member is an error: membership should have been
// pruned when the app was deleted.
func (db *DB) RepoApps(ctx context.Context, repo *models.Repo) ([]models.App, error) {
	apps := make([]models.App, 0, len(repo.Apps))
	for _, appID := range repo.Apps {
		app, err := db.GetAppByID(ctx, appID)
		if err != nil {
			return nil, fmt.Errorf("failed to get app %d for repo %d: %w", appID, repo.ID, err)
		}
		apps = append(apps, *app)
	}
	return apps, nil
}

// AddAppToRepo appends appID to the repo's member list. The append is a
// single atomic statement, so concurrent adds cannot lose each other's
// write. Duplicate membership is permitted.
func (db *DB) AddAppToRepo(ctx context.Context, repoID, appID int64) error {
	query := `UPDATE repos SET apps = array_append(apps, $1) WHERE id = $2`
	res, err := db.conn.ExecContext(ctx, query, appID, repoID)
	if err != nil {
		return fmt.Errorf("failed to add app to repo: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRepoNotFound
	}
	return nil
}

// DeleteRepo removes a repo row. Member apps are untouched.
func (db *DB) DeleteRepo(ctx context.Context, repoID int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM repos WHERE id = $1`, repoID)
	if err != nil {
		return fmt.Errorf("failed to delete repo: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRepoNotFound
	}
	return nil
}
