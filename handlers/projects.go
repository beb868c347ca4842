package handlers

import (
	"context"
	"net/http"
	"time"

	"staygrow/authz"
	"staygrow/database"
	"staygrow/metrics"
	"staygrow/middleware"
	"staygrow/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ShowcaseStore is the persistence the showcase handlers need.
// *database.DB implements it.
type ShowcaseStore interface {
	Ping(ctx context.Context) error

	ListProjects(ctx context.Context, spec database.ListingSpec) ([]models.ProjectSummary, int64, error)
	CreateProject(ctx context.Context, ownerID uuid.UUID, req models.CreateProjectRequest) (*models.ProjectSummary, error)
	GetProject(ctx context.Context, id uuid.UUID, viewer models.Viewer) (*models.ProjectSummary, error)
	UpdateProject(ctx context.Context, id uuid.UUID, viewer models.Identified, req models.UpdateProjectRequest) (*models.ProjectSummary, error)
	DeleteProject(ctx context.Context, id uuid.UUID, viewer models.Identified, deleteAny bool) error
	SetProjectStatus(ctx context.Context, id uuid.UUID, to models.Status, admin models.Identified) (*models.ProjectSummary, error)

	ToggleLike(ctx context.Context, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error)
	ToggleBookmark(ctx context.Context, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error)
	RecordView(ctx context.Context, projectID uuid.UUID, viewer models.Viewer) (bool, error)

	CreateAppeal(ctx context.Context, projectID uuid.UUID, viewer models.Identified, reason string) (*models.Appeal, error)
	ListAppeals(ctx context.Context, status models.AppealStatus) ([]models.Appeal, error)
	ResolveAppeal(ctx context.Context, appealID uuid.UUID, admin models.Identified, decision models.AppealStatus, note string) (*models.Appeal, error)
}

// ListProjects serves the paginated, filtered showcase listing.
func ListProjects(store ShowcaseStore, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params models.ListParams
		if err := c.ShouldBindQuery(&params); err != nil {
			writeError(c, bindError(err))
			return
		}

		spec, err := database.NewListingSpec(params, middleware.ViewerFrom(c), now())
		if err != nil {
			writeError(c, err)
			return
		}

		mode := "browse"
		if spec.IsSearch() {
			mode = "search"
		}
		metrics.ListingsTotal.WithLabelValues(mode).Inc()

		projects, total, err := store.ListProjects(c.Request.Context(), spec)
		if err != nil {
			writeError(c, err)
			return
		}
		if projects == nil {
			projects = []models.ProjectSummary{}
		}

		c.JSON(http.StatusOK, models.ListResponse{
			Projects:   projects,
			Pagination: models.NewPagination(spec.Page, spec.Limit, total),
			Filters:    spec.Applied(),
		})
	}
}

func CreateProject(store ShowcaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.IdentifiedFrom(c)

		var req models.CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, bindError(err))
			return
		}

		project, err := store.CreateProject(c.Request.Context(), viewer.UserID, req)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, project)
	}
}

// GetProject returns one project and records the view. A failed view
// insert is logged and does not fail the request.
func GetProject(store ShowcaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id", "project")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		viewer := middleware.ViewerFrom(c)

		project, err := store.GetProject(ctx, projectID, viewer)
		if err != nil {
			writeError(c, err)
			return
		}

		recorded, err := store.RecordView(ctx, projectID, viewer)
		if err != nil {
			log.Warn().Err(err).Str("project_id", projectID.String()).Msg("failed to record view")
		}
		if recorded {
			project.Views++
			metrics.ViewsRecorded.Inc()
		}

		c.JSON(http.StatusOK, project)
	}
}

func UpdateProject(store ShowcaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id", "project")
		if !ok {
			return
		}
		viewer, _ := middleware.IdentifiedFrom(c)

		var req models.UpdateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, bindError(err))
			return
		}

		project, err := store.UpdateProject(c.Request.Context(), projectID, viewer, req)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, project)
	}
}

// DeleteProject lets owners delete their own projects and roles holding
// showcase:delete_any delete anyone's.
func DeleteProject(store ShowcaseStore, perms middleware.PermissionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id", "project")
		if !ok {
			return
		}
		viewer, _ := middleware.IdentifiedFrom(c)

		deleteAny, err := perms.Can(viewer, authz.ObjShowcase, authz.ActDeleteAny)
		if err != nil {
			writeError(c, err)
			return
		}

		if err := store.DeleteProject(c.Request.Context(), projectID, viewer, deleteAny); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}
