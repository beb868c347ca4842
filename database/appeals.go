package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staygrow/errs"
	"staygrow/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const appealColumns = "id, project_id, user_id, reason, status, admin_note, resolved_by, created_at, resolved_at"

// CreateAppeal files the owner's appeal against a FLAGGED project.
// A project has at most one pending appeal.
func (db *DB) CreateAppeal(ctx context.Context, projectID uuid.UUID, viewer models.Identified, reason string) (*models.Appeal, error) {
	var appeal *models.Appeal

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		project, err := db.getProjectRecord(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if !CanView(project.Status, project.UserID, viewer) {
			return errs.NotFound("project")
		}
		if project.UserID != viewer.UserID {
			return errs.Forbidden("only the owner can appeal")
		}
		if project.Status != models.StatusFlagged {
			return errs.Conflict("only flagged projects can be appealed")
		}

		query := fmt.Sprintf(`
			INSERT INTO %s (project_id, user_id, reason)
			VALUES ($1, $2, $3)
			RETURNING %s
		`, tableAppeals, appealColumns)

		appeal, err = scanAppeal(tx.QueryRow(ctx, query, projectID, viewer.UserID, strings.TrimSpace(reason)))
		if err != nil {
			if isUniqueViolation(err) {
				return errs.Conflict("an appeal is already pending for this project")
			}
			return fmt.Errorf("failed to create appeal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("appeal_id", appeal.ID.String()).Str("project_id", projectID.String()).Msg("Created appeal")
	return appeal, nil
}

// ListAppeals returns appeals with the given status, oldest first.
// An empty status lists every appeal.
func (db *DB) ListAppeals(ctx context.Context, status models.AppealStatus) ([]models.Appeal, error) {
	qb := NewQueryBuilder()
	if status != "" {
		qb.AddCondition("status", string(status))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY created_at ASC`, appealColumns, tableAppeals, qb.WhereClause())

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appeals: %w", err)
	}
	defer rows.Close()

	appeals := []models.Appeal{}
	for rows.Next() {
		appeal, err := scanAppeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appeal: %w", err)
		}
		appeals = append(appeals, *appeal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appeals: %w", err)
	}

	return appeals, nil
}

// ResolveAppeal closes a pending appeal. APPROVED republishes the project,
// REJECTED archives it.
func (db *DB) ResolveAppeal(ctx context.Context, appealID uuid.UUID, admin models.Identified, decision models.AppealStatus, note string) (*models.Appeal, error) {
	var target models.Status
	switch decision {
	case models.AppealApproved:
		target = models.StatusPublished
	case models.AppealRejected:
		target = models.StatusArchived
	default:
		return nil, errs.NewValidationError("decision must be APPROVED or REJECTED", "decision")
	}

	var appeal *models.Appeal
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, appealColumns, tableAppeals)
		current, err := scanAppeal(tx.QueryRow(ctx, query, appealID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound("appeal")
			}
			return fmt.Errorf("failed to get appeal: %w", err)
		}
		if current.Status != models.AppealPending {
			return errs.Conflict("appeal already resolved")
		}

		project, err := db.getProjectRecord(ctx, tx, current.ProjectID)
		if err != nil {
			return err
		}
		if !models.CanTransition(project.Status, target) {
			return fmt.Errorf("%s -> %s: %w", project.Status, target, errs.ErrInvalidTransition)
		}

		projectQuery := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, tableProjects)
		if _, err := tx.Exec(ctx, projectQuery, project.ID, string(target)); err != nil {
			return fmt.Errorf("failed to update project status: %w", err)
		}

		var adminNote *string
		if note = strings.TrimSpace(note); note != "" {
			adminNote = &note
		}
		updateQuery := fmt.Sprintf(`
			UPDATE %s
			SET status = $2, admin_note = $3, resolved_by = $4, resolved_at = NOW()
			WHERE id = $1
			RETURNING %s
		`, tableAppeals, appealColumns)
		appeal, err = scanAppeal(tx.QueryRow(ctx, updateQuery, appealID, string(decision), adminNote, admin.UserID))
		if err != nil {
			return fmt.Errorf("failed to resolve appeal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("appeal_id", appealID.String()).Str("decision", string(decision)).Msg("Resolved appeal")
	return appeal, nil
}

func scanAppeal(row rowScanner) (*models.Appeal, error) {
	var appeal models.Appeal
	var status string
	err := row.Scan(
		&appeal.ID,
		&appeal.ProjectID,
		&appeal.UserID,
		&appeal.Reason,
		&status,
		&appeal.AdminNote,
		&appeal.ResolvedBy,
		&appeal.CreatedAt,
		&appeal.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	appeal.Status = models.AppealStatus(status)
	return &appeal, nil
}
