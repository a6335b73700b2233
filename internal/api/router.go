package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/gateway"
	"github.com/ivopashov/classdocs/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Groups    *GroupHandler
	Roots     *DocumentRootHandler
	Documents *DocumentHandler
	Templates *TemplateHandler
	Uploads   *UploadHandler
	Gateway   *gateway.Manager

	TokenService *auth.TokenService
	Redis        *redis.Client
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// WebSocket gateway
	e.GET("/gateway", deps.Gateway.HandleWebSocket)

	v1 := e.Group("/api/v1")

	// Auth routes — no auth middleware, stricter rate limit
	authGroup := v1.Group("/auth",
		RateLimitMiddleware(deps.Redis, 5, time.Minute),
	)
	authGroup.POST("/register", deps.Auth.Register)
	authGroup.POST("/login", deps.Auth.Login)
	authGroup.POST("/refresh", deps.Auth.Refresh)

	// Protected routes — require JWT auth + general rate limit
	authMw := deps.TokenService.Middleware()
	protected := v1.Group("", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)

	// Auth (protected)
	protected.POST("/auth/logout", deps.Auth.Logout)

	// Signup tokens
	protected.POST("/signup-tokens", deps.Auth.CreateSignupToken)
	protected.GET("/signup-tokens", deps.Auth.ListSignupTokens)
	protected.DELETE("/signup-tokens/:token", deps.Auth.DeleteSignupToken)

	// Users
	protected.GET("/users/@me", deps.Users.GetMe)
	protected.PATCH("/users/@me", deps.Users.UpdateMe)
	protected.GET("/users", deps.Users.ListUsers)
	protected.GET("/users/:id", deps.Users.GetUser)
	protected.PATCH("/users/:id/role", deps.Users.UpdateRole)
	protected.DELETE("/users/:id", deps.Users.DeleteUser)

	// Groups
	protected.POST("/groups", deps.Groups.CreateGroup)
	protected.GET("/groups", deps.Groups.ListGroups)
	protected.GET("/groups/:id", deps.Groups.GetGroup)
	protected.PATCH("/groups/:id", deps.Groups.UpdateGroup)
	protected.DELETE("/groups/:id", deps.Groups.DeleteGroup)
	protected.GET("/groups/:id/members", deps.Groups.ListMembers)
	protected.PUT("/groups/:id/members/:user_id", deps.Groups.AddMember)
	protected.PATCH("/groups/:id/members/:user_id", deps.Groups.SetMemberAdmin)
	protected.DELETE("/groups/:id/members/:user_id", deps.Groups.RemoveMember)

	// Document roots
	protected.POST("/document-roots", deps.Roots.CreateRoot)
	protected.GET("/document-roots", deps.Roots.ListRoots)
	protected.GET("/document-roots/:id", deps.Roots.GetRoot)
	protected.PATCH("/document-roots/:id", deps.Roots.UpdateRoot)
	protected.DELETE("/document-roots/:id", deps.Roots.DeleteRoot)

	// Root permissions
	protected.PUT("/document-roots/:id/permissions/users/:user_id", deps.Roots.SetUserPermission)
	protected.DELETE("/document-roots/:id/permissions/users/:user_id", deps.Roots.DeleteUserPermission)
	protected.PUT("/document-roots/:id/permissions/groups/:group_id", deps.Roots.SetGroupPermission)
	protected.DELETE("/document-roots/:id/permissions/groups/:group_id", deps.Roots.DeleteGroupPermission)

	// Documents
	protected.POST("/document-roots/:id/documents", deps.Documents.CreateDocument)
	protected.GET("/document-roots/:id/documents", deps.Documents.ListDocuments)
	protected.GET("/documents/:id", deps.Documents.GetDocument)
	protected.PATCH("/documents/:id", deps.Documents.UpdateDocument)
	protected.PATCH("/documents/:id/parent", deps.Documents.MoveDocument)
	protected.DELETE("/documents/:id", deps.Documents.DeleteDocument)

	// Templates
	protected.POST("/templates", deps.Templates.CreateTemplate)
	protected.GET("/templates", deps.Templates.ListTemplates)
	protected.GET("/templates/:id", deps.Templates.GetTemplate)
	protected.PATCH("/templates/:id", deps.Templates.UpdateTemplate)
	protected.DELETE("/templates/:id", deps.Templates.DeleteTemplate)

	// Attachments
	protected.POST("/documents/:id/attachments", deps.Uploads.Upload)
	protected.GET("/documents/:id/attachments", deps.Uploads.ListAttachments)
	protected.DELETE("/attachments/:id", deps.Uploads.DeleteAttachment)
}
