package database

import (
	"context"
	"sync"
	"testing"

	"staygrow/errs"
	"staygrow/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_RoundTrip(t *testing.T) {
	db := IntegrationDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "ada", models.RoleUser)
	fan := seedUser(t, db, "bob", models.RoleUser)
	id := seedProject(t, db, owner, projectSeed{title: "p"})

	on, err := db.ToggleLike(ctx, id, fan)
	require.NoError(t, err)
	assert.Equal(t, models.ToggleResult{Active: true, Count: 1}, on)

	got, err := db.GetProject(ctx, id, fan)
	require.NoError(t, err)
	assert.True(t, got.IsLiked)
	assert.Equal(t, int64(1), got.Likes)

	off, err := db.ToggleLike(ctx, id, fan)
	require.NoError(t, err)
	assert.Equal(t, models.ToggleResult{Active: false, Count: 0}, off)
}

func TestToggleBookmark_IndependentOfLikes(t *testing.T) {
	db := IntegrationDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "ada", models.RoleUser)
	fan := seedUser(t, db, "bob", models.RoleUser)
	id := seedProject(t, db, owner, projectSeed{title: "p"})

	saved, err := db.ToggleBookmark(ctx, id, fan)
	require.NoError(t, err)
	assert.True(t, saved.Active)

	got, err := db.GetProject(ctx, id, fan)
	require.NoError(t, err)
	assert.True(t, got.IsBookmarked)
	assert.False(t, got.IsLiked)
	assert.Equal(t, int64(1), got.Saves)
	assert.Equal(t, int64(0), got.Likes)
}

func TestToggle_Rejections(t *testing.T) {
	db := IntegrationDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "ada", models.RoleUser)
	fan := seedUser(t, db, "bob", models.RoleUser)
	public := seedProject(t, db, owner, projectSeed{title: "public"})
	draft := seedProject(t, db, owner, projectSeed{title: "draft", status: models.StatusDraft})

	_, err := db.ToggleLike(ctx, public, owner)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = db.ToggleLike(ctx, draft, fan)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = db.ToggleBookmark(ctx, uuid.New(), fan)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestToggleLike_Concurrent(t *testing.T) {
	db := IntegrationDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "ada", models.RoleUser)
	id := seedProject(t, db, owner, projectSeed{title: "p"})

	fans := make([]models.Identified, 8)
	for i := range fans {
		fans[i] = seedUser(t, db, "fan", models.RoleUser)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(fans))
	for _, fan := range fans {
		wg.Add(1)
		go func(fan models.Identified) {
			defer wg.Done()
			if _, err := db.ToggleLike(ctx, id, fan); err != nil {
				errCh <- err
			}
		}(fan)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	got, err := db.GetProject(ctx, id, models.Anonymous{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(fans)), got.Likes)
}

func TestToggleLike_ConcurrentSameUser(t *testing.T) {
	db := IntegrationDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "ada", models.RoleUser)
	fan := seedUser(t, db, "fan", models.RoleUser)
	id := seedProject(t, db, owner, projectSeed{title: "p"})

	const toggles = 6
	var wg sync.WaitGroup
	results := make(chan models.ToggleResult, toggles)
	errCh := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := db.ToggleLike(ctx, id, fan)
			if err != nil {
				errCh <- err
				return
			}
			results <- res
		}()
	}
	wg.Wait()
	close(errCh)
	close(results)

	for err := range errCh {
		require.NoError(t, err)
	}

	var on, off int
	for res := range results {
		if res.Active {
			on++
			assert.Equal(t, int64(1), res.Count)
		} else {
			off++
			assert.Equal(t, int64(0), res.Count)
		}
	}
	assert.Equal(t, toggles/2, on, "each toggle sees the previous one")
	assert.Equal(t, toggles/2, off)

	got, err := db.GetProject(ctx, id, fan)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Likes)
	assert.False(t, got.IsLiked)
}

func TestRecordView(t *testing.T) {
	db := IntegrationDB(t)
	CleanupTestDB(t, db)
	ctx := context.Background()

	owner := seedUser(t, db, "ada", models.RoleUser)
	visitor := seedUser(t, db, "bob", models.RoleUser)
	id := seedProject(t, db, owner, projectSeed{title: "p"})

	recorded, err := db.RecordView(ctx, id, owner)
	require.NoError(t, err)
	assert.False(t, recorded, "owner views are not counted")

	recorded, err = db.RecordView(ctx, id, visitor)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = db.RecordView(ctx, id, models.Anonymous{})
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = db.RecordView(ctx, uuid.New(), visitor)
	require.NoError(t, err)
	assert.False(t, recorded)

	got, err := db.GetProject(ctx, id, models.Anonymous{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Views)

	var rows int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM project_views WHERE project_id = $1`, id).Scan(&rows))
	assert.Equal(t, 2, rows)
}
