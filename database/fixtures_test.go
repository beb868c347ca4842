package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"staygrow/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, db *DB, name string, role models.Role) models.Identified {
	t.Helper()

	email := fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8])
	user, err := db.CreateUser(context.Background(), name, email, role)
	require.NoError(t, err)
	return models.Identified{UserID: user.ID, Role: role}
}

type projectSeed struct {
	title    string
	desc     string
	sdg      []string
	tech     []string
	status   models.Status
	featured bool
	score    *float64
	age      time.Duration
}

// seedProject inserts a project and backdates it by seed.age so ordering is
// deterministic. Statuses other than DRAFT/PUBLISHED are set directly.
func seedProject(t *testing.T, db *DB, owner models.Identified, seed projectSeed) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	desc := seed.desc
	if desc == "" {
		desc = seed.title + " description"
	}
	req := models.CreateProjectRequest{
		Title:       seed.title,
		Description: desc,
		SDGTags:     seed.sdg,
		TechTags:    seed.tech,
	}
	if seed.status == models.StatusDraft {
		req.Status = string(models.StatusDraft)
	}

	created, err := db.CreateProject(ctx, owner.UserID, req)
	require.NoError(t, err)

	status := seed.status
	if status == "" {
		status = models.StatusPublished
	}

	_, err = db.Pool.Exec(ctx, `
		UPDATE showcase_projects
		SET created_at = NOW() - $2::interval, status = $3, featured = $4, ai_match_score = $5
		WHERE id = $1
	`, created.ID, fmt.Sprintf("%d seconds", int64(seed.age.Seconds())), string(status), seed.featured, seed.score)
	require.NoError(t, err)

	return created.ID
}

func listAs(t *testing.T, db *DB, viewer models.Viewer, params models.ListParams) ([]models.ProjectSummary, int64) {
	t.Helper()

	spec, err := NewListingSpec(params, viewer, time.Now())
	require.NoError(t, err)

	projects, total, err := db.ListProjects(context.Background(), spec)
	require.NoError(t, err)
	return projects, total
}

func titles(projects []models.ProjectSummary) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.Title
	}
	return out
}

func score(v float64) *float64 {
	return &v
}
