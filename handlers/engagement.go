package handlers

import (
	"context"
	"net/http"

	"staygrow/metrics"
	"staygrow/middleware"
	"staygrow/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type toggleFunc func(ctx context.Context, projectID uuid.UUID, viewer models.Identified) (models.ToggleResult, error)

func ToggleLike(store ShowcaseStore) gin.HandlerFunc {
	return toggle("like", store.ToggleLike)
}

func ToggleBookmark(store ShowcaseStore) gin.HandlerFunc {
	return toggle("bookmark", store.ToggleBookmark)
}

func toggle(kind string, fn toggleFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id", "project")
		if !ok {
			return
		}
		viewer, _ := middleware.IdentifiedFrom(c)

		result, err := fn(c.Request.Context(), projectID, viewer)
		if err != nil {
			writeError(c, err)
			return
		}

		state := "off"
		if result.Active {
			state = "on"
		}
		metrics.EngagementTotal.WithLabelValues(kind, state).Inc()

		c.JSON(http.StatusOK, result)
	}
}

// CreateAppeal files the owner's appeal against a flagged project.
func CreateAppeal(store ShowcaseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c, "id", "project")
		if !ok {
			return
		}
		viewer, _ := middleware.IdentifiedFrom(c)

		var req models.AppealRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, bindError(err))
			return
		}

		appeal, err := store.CreateAppeal(c.Request.Context(), projectID, viewer, req.Reason)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, appeal)
	}
}
