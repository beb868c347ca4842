package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staygrow/errs"
	"staygrow/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// ToggleLike flips the viewer's like on a published project.
func (db *DB) ToggleLike(ctx context.Context, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error) {
	return db.toggle(ctx, tableLikes, projectID, viewer)
}

// ToggleBookmark flips the viewer's bookmark on a published project.
func (db *DB) ToggleBookmark(ctx context.Context, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error) {
	return db.toggle(ctx, tableSaved, projectID, viewer)
}

// toggle deletes the (project, user) row if present and inserts it otherwise,
// in one statement, then reads the new count inside the same transaction.
// The project row is share-locked so it cannot be deleted or moderated
// underneath the toggle, and toggles by the same user on the same project
// are serialized by an advisory lock.
func (db *DB) toggle(ctx context.Context, table string, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error) {
	start := time.Now()
	var result models.ToggleResult

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		var ownerID uuid.UUID
		var status string
		lockQuery := fmt.Sprintf(`SELECT user_id, status FROM %s WHERE id = $1 FOR SHARE`, tableProjects)
		if err := tx.QueryRow(ctx, lockQuery, projectID).Scan(&ownerID, &status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound("project")
			}
			return fmt.Errorf("failed to load project: %w", err)
		}
		if models.Status(status) != models.StatusPublished {
			return errs.NotFound("project")
		}
		if ownerID == viewer.UserID {
			return errs.Forbidden("owners cannot react to their own project")
		}

		// one toggle at a time per (table, project, user)
		lockKey := table + ":" + projectID.String() + ":" + viewer.UserID.String()
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("failed to lock %s toggle: %w", table, err)
		}

		// SAFETY: table is one of this package's constants.
		toggleQuery := fmt.Sprintf(`
			WITH removed AS (
				DELETE FROM %[1]s WHERE project_id = $1 AND user_id = $2
				RETURNING 1
			), added AS (
				INSERT INTO %[1]s (project_id, user_id)
				SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM removed)
				ON CONFLICT (project_id, user_id) DO NOTHING
				RETURNING 1
			)
			SELECT EXISTS (SELECT 1 FROM added)
		`, table)
		if err := tx.QueryRow(ctx, toggleQuery, projectID, viewer.UserID).Scan(&result.Active); err != nil {
			return fmt.Errorf("failed to toggle %s: %w", table, err)
		}

		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE project_id = $1`, table)
		if err := tx.QueryRow(ctx, countQuery, projectID).Scan(&result.Count); err != nil {
			return fmt.Errorf("failed to count %s: %w", table, err)
		}
		return nil
	})
	if err != nil {
		return models.ToggleResult{}, err
	}

	log.Debug().
		Dur("duration", time.Since(start)).
		Str("table", table).
		Str("project_id", projectID.String()).
		Bool("active", result.Active).
		Msg("toggle")
	return result, nil
}

// RecordView appends a view for projectID. Views by the project's owner are
// not recorded. Anonymous views are stored without a viewer. Reports whether
// a view was recorded.
func (db *DB) RecordView(ctx context.Context, projectID uuid.UUID, viewer models.Viewer) (bool, error) {
	var viewerID *uuid.UUID
	switch v := viewer.(type) {
	case models.Identified:
		id := v.UserID
		viewerID = &id
	case models.Anonymous:
	}

	query := fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO %s (project_id, viewer_id)
			SELECT p.id, $2::uuid FROM %s p
			WHERE p.id = $1 AND ($2::uuid IS NULL OR p.user_id <> $2::uuid)
			RETURNING project_id
		)
		UPDATE %s SET view_count = view_count + 1
		WHERE id IN (SELECT project_id FROM inserted)
	`, tableViews, tableProjects, tableProjects)

	tag, err := db.Pool.Exec(ctx, query, projectID, viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to record view: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
