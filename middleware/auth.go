package middleware

import (
	"net/http"
	"strings"

	"staygrow/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const viewerKey = "viewer"

// ViewerResolver turns a session token into a viewer; it never fails.
type ViewerResolver interface {
	Resolve(token string) models.Viewer
}

// PermissionChecker answers role permission questions.
type PermissionChecker interface {
	Can(viewer models.Viewer, obj, act string) (bool, error)
}

// OptionalViewer resolves the session token from the cookie named cookieName
// or an "Authorization: Bearer" header and stores the viewer on the context.
// Requests without a valid token continue as Anonymous.
func OptionalViewer(resolver ViewerResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(viewerKey, resolver.Resolve(sessionToken(c, cookieName)))
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// ViewerFrom returns the viewer stored by OptionalViewer, or Anonymous.
func ViewerFrom(c *gin.Context) models.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(models.Viewer); ok {
			return viewer
		}
	}
	return models.Anonymous{}
}

// IdentifiedFrom returns the identified viewer. Only valid behind RequireViewer.
func IdentifiedFrom(c *gin.Context) (models.Identified, bool) {
	id, ok := ViewerFrom(c).(models.Identified)
	return id, ok
}

// RequireViewer rejects anonymous requests with 401.
func RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentifiedFrom(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission rejects requests whose role may not perform act on obj.
// Anonymous requests get 401, identified ones 403.
func RequirePermission(checker PermissionChecker, obj, act string) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := ViewerFrom(c)
		if _, ok := viewer.(models.Identified); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		allowed, err := checker.Can(viewer, obj, act)
		if err != nil {
			log.Error().Err(err).Str("obj", obj).Str("act", act).Msg("permission check failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			c.Abort()
			return
		}

		c.Next()
	}
}
