package handlers

import (
	"net/http"
	"strings"

	"staygrow/errs"
	"staygrow/middleware"
	"staygrow/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SetProjectStatus is the moderation endpoint.
func SetProjectStatus(store ShowcaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id", "project")
		if !ok {
			return
		}
		admin, _ := middleware.IdentifiedFrom(c)

		var req models.StatusChangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, bindError(err))
			return
		}

		to, ok := models.ParseStatus(req.Status)
		if !ok {
			writeError(c, errs.NewValidationError("unknown status", "status"))
			return
		}

		project, err := store.SetProjectStatus(c.Request.Context(), projectID, to, admin)
		if err != nil {
			writeError(c, err)
			return
		}

		log.Info().
			Str("project_id", projectID.String()).
			Str("status", string(to)).
			Str("reason", req.Reason).
			Msg("status changed by moderator")
		c.JSON(http.StatusOK, project)
	}
}

// ListAppeals lists appeals by ?status= (default PENDING, "all" for every status).
func ListAppeals(store ShowcaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status models.AppealStatus
		switch raw := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("status", "PENDING"))); models.AppealStatus(raw) {
		case models.AppealPending, models.AppealApproved, models.AppealRejected:
			status = models.AppealStatus(raw)
		case "ALL":
		default:
			writeError(c, errs.NewValidationError("unknown appeal status", "status"))
			return
		}

		appeals, err := store.ListAppeals(c.Request.Context(), status)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"appeals": appeals, "total": len(appeals)})
	}
}

func ResolveAppeal(store ShowcaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		appealID, ok := parseID(c, "id", "appeal")
		if !ok {
			return
		}
		admin, _ := middleware.IdentifiedFrom(c)

		var req models.AppealResolution
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, bindError(err))
			return
		}

		appeal, err := store.ResolveAppeal(c.Request.Context(), appealID, admin, models.AppealStatus(req.Decision), req.AdminNote)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, appeal)
	}
}
