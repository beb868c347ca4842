package handlers

import (
	"net/http"
	"time"

	"staygrow/authz"
	"staygrow/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Store       ShowcaseStore
	Viewers     middleware.ViewerResolver
	Permissions middleware.PermissionChecker
	Uploader    Uploader
	TokenCookie string

	// EngagementLimit guards like, bookmark and upload endpoints.
	EngagementLimit gin.HandlerFunc
	Now             func() time.Time
	// MetricsHandler serves /metrics; nil uses the default prometheus registry.
	MetricsHandler http.Handler
}

// NewRouter builds the gin engine with every route of the service.
func NewRouter(deps Deps) *gin.Engine {
	registerJSONFieldNames()

	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.TokenCookie == "" {
		deps.TokenCookie = "token"
	}
	if deps.EngagementLimit == nil {
		deps.EngagementLimit = func(c *gin.Context) { c.Next() }
	}
	if deps.MetricsHandler == nil {
		deps.MetricsHandler = promhttp.Handler()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	r.Use(middleware.OptionalViewer(deps.Viewers, deps.TokenCookie))

	r.GET("/health", HealthCheck(deps.Store))
	r.GET("/metrics", gin.WrapH(deps.MetricsHandler))

	can := func(obj, act string) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Permissions, obj, act)
	}

	api := r.Group("/api")
	{
		showcase := api.Group("/showcase")
		showcase.GET("", ListProjects(deps.Store, deps.Now))
		showcase.POST("", can(authz.ObjShowcase, authz.ActCreate), CreateProject(deps.Store))
		showcase.GET("/:id", GetProject(deps.Store))
		showcase.PUT("/:id", middleware.RequireViewer(), UpdateProject(deps.Store))
		showcase.DELETE("/:id", middleware.RequireViewer(), DeleteProject(deps.Store, deps.Permissions))
		showcase.POST("/:id/like", can(authz.ObjShowcase, authz.ActEngage), deps.EngagementLimit, ToggleLike(deps.Store))
		showcase.POST("/:id/bookmark", can(authz.ObjShowcase, authz.ActEngage), deps.EngagementLimit, ToggleBookmark(deps.Store))
		showcase.POST("/:id/appeal", can(authz.ObjShowcase, authz.ActAppeal), CreateAppeal(deps.Store))

		api.POST("/upload", can(authz.ObjUpload, authz.ActCreate), deps.EngagementLimit, UploadImage(deps.Uploader))

		admin := api.Group("/admin")
		admin.GET("/appeals", can(authz.ObjAppeal, authz.ActList), ListAppeals(deps.Store))
		admin.POST("/appeals/:id/resolve", can(authz.ObjAppeal, authz.ActResolve), ResolveAppeal(deps.Store))
		admin.PATCH("/showcase/:id/status", can(authz.ObjShowcase, authz.ActModerate), SetProjectStatus(deps.Store))
	}

	return r
}
