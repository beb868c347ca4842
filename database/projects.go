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

// CreateProject inserts a project owned by ownerID and returns its summary.
// The owner must exist. Tags are normalized; status defaults to PUBLISHED.
func (db *DB) CreateProject(ctx context.Context, ownerID uuid.UUID, req models.CreateProjectRequest) (*models.ProjectSummary, error) {
	if _, err := db.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	status := models.StatusPublished
	if req.Status != "" {
		st, ok := models.ParseStatus(req.Status)
		if !ok || (st != models.StatusDraft && st != models.StatusPublished) {
			return nil, errs.NewValidationError("status must be DRAFT or PUBLISHED", "status")
		}
		status = st
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, description, image_url, sdg_tags, tech_tags, github_url, demo_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, tableProjects)

	var id uuid.UUID
	err := db.Pool.QueryRow(ctx, query,
		ownerID,
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		emptyToNil(req.ImageURL),
		models.NormalizeTags(req.SDGTags, models.NormalizeSDGTag),
		models.NormalizeTags(req.TechTags, nil),
		emptyToNil(req.GithubURL),
		emptyToNil(req.DemoURL),
		string(status),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	log.Info().Str("project_id", id.String()).Str("owner_id", ownerID.String()).Str("status", string(status)).Msg("Created project")
	return db.GetProject(ctx, id, models.Identified{UserID: ownerID, Role: models.RoleUser})
}

// GetProject returns the summary of a project if viewer may see it.
// Hidden projects are reported as not found.
func (db *DB) GetProject(ctx context.Context, id uuid.UUID, viewer models.Viewer) (*models.ProjectSummary, error) {
	summaries, err := db.fetchSummaries(ctx, []uuid.UUID{id}, viewer)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, errs.NotFound("project")
	}

	summary := summaries[0]
	if !CanView(summary.Status, summary.Owner.ID, viewer) {
		return nil, errs.NotFound("project")
	}
	return &summary, nil
}

// CanView applies the visibility rules: PUBLISHED is public, DRAFT is
// owner-only, FLAGGED and ARCHIVED are visible to the owner and admins.
func CanView(status models.Status, ownerID uuid.UUID, viewer models.Viewer) bool {
	if status == models.StatusPublished {
		return true
	}

	switch v := viewer.(type) {
	case models.Identified:
		if v.UserID == ownerID {
			return true
		}
		return v.Role == models.RoleAdmin && status != models.StatusDraft
	default:
		return false
	}
}

func (db *DB) getProjectRecord(ctx context.Context, q pgx.Tx, id uuid.UUID) (*models.ShowcaseProject, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, description, image_url, sdg_tags, tech_tags,
			github_url, demo_url, status, featured, ai_match_score, view_count, created_at, updated_at
		FROM %s
		WHERE id = $1
		FOR UPDATE
	`, tableProjects)

	project, err := scanProject(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("project")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// UpdateProject applies the owner's edits. Only drafts are editable; setting
// status to PUBLISHED publishes the draft.
func (db *DB) UpdateProject(ctx context.Context, id uuid.UUID, viewer models.Identified, req models.UpdateProjectRequest) (*models.ProjectSummary, error) {
	var status *string
	if req.Status != nil {
		st, ok := models.ParseStatus(*req.Status)
		if !ok || (st != models.StatusDraft && st != models.StatusPublished) {
			return nil, errs.NewValidationError("status must be DRAFT or PUBLISHED", "status")
		}
		s := string(st)
		status = &s
	}

	var sdgTags, techTags []string
	if req.SDGTags != nil {
		sdgTags = models.NormalizeTags(req.SDGTags, models.NormalizeSDGTag)
	}
	if req.TechTags != nil {
		techTags = models.NormalizeTags(req.TechTags, nil)
	}

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		project, err := db.getProjectRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanView(project.Status, project.UserID, viewer) {
			return errs.NotFound("project")
		}
		if project.UserID != viewer.UserID {
			return errs.Forbidden("only the owner can edit a project")
		}
		if project.Status != models.StatusDraft {
			return errs.Conflict("only draft projects can be edited")
		}

		query := fmt.Sprintf(`
			UPDATE %s SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				image_url = COALESCE($4, image_url),
				sdg_tags = COALESCE($5::text[], sdg_tags),
				tech_tags = COALESCE($6::text[], tech_tags),
				github_url = COALESCE($7, github_url),
				demo_url = COALESCE($8, demo_url),
				status = COALESCE($9, status),
				updated_at = NOW()
			WHERE id = $1
		`, tableProjects)

		_, err = tx.Exec(ctx, query, id,
			trimPtr(req.Title), trimPtr(req.Description), req.ImageURL,
			sdgTags, techTags, req.GithubURL, req.DemoURL, status)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("project_id", id.String()).Msg("Updated project")
	return db.GetProject(ctx, id, viewer)
}

// DeleteProject removes a project. Owners may delete their own; deleteAny
// lets moderators remove projects they do not own.
func (db *DB) DeleteProject(ctx context.Context, id uuid.UUID, viewer models.Identified, deleteAny bool) error {
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		project, err := db.getProjectRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanView(project.Status, project.UserID, viewer) {
			return errs.NotFound("project")
		}
		if project.UserID != viewer.UserID && !deleteAny {
			return errs.Forbidden("only the owner or an admin can delete a project")
		}

		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, tableProjects), id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("project_id", id.String()).Str("by", viewer.UserID.String()).Msg("Deleted project")
	return nil
}

// SetProjectStatus is the admin moderation transition.
// Allowed: PUBLISHED→FLAGGED, FLAGGED→PUBLISHED, FLAGGED→ARCHIVED.
func (db *DB) SetProjectStatus(ctx context.Context, id uuid.UUID, to models.Status, admin models.Identified) (*models.ProjectSummary, error) {
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		project, err := db.getProjectRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if !CanView(project.Status, project.UserID, admin) {
			return errs.NotFound("project")
		}
		if !models.CanTransition(project.Status, to) {
			return fmt.Errorf("%s -> %s: %w", project.Status, to, errs.ErrInvalidTransition)
		}

		query := fmt.Sprintf(`UPDATE %s SET status = $2, updated_at = NOW() WHERE id = $1`, tableProjects)
		if _, err := tx.Exec(ctx, query, id, string(to)); err != nil {
			return fmt.Errorf("failed to update project status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("project_id", id.String()).Str("status", string(to)).Str("admin_id", admin.UserID.String()).Msg("Moderated project")
	return db.GetProject(ctx, id, admin)
}

// Helper functions

func scanProject(row rowScanner) (*models.ShowcaseProject, error) {
	var project models.ShowcaseProject
	var status string
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Title,
		&project.Description,
		&project.ImageURL,
		&project.SDGTags,
		&project.TechTags,
		&project.GithubURL,
		&project.DemoURL,
		&status,
		&project.Featured,
		&project.AIMatchScore,
		&project.ViewCount,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.Status = models.Status(status)
	return &project, nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
