// Package handlers implements the HTTP API described by the embedded
// OpenAPI contract (internal/api/openapi).
//
// Handlers report failures with c.Error and an *apperrors.AppError; the
// ErrorHandler middleware renders them.
//
// Import Path: vme-analyzer.io/analyzer/internal/api/handlers
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"vme-analyzer.io/analyzer/internal/api/middleware"
	"vme-analyzer.io/analyzer/internal/classifier"
	"vme-analyzer.io/analyzer/internal/repository"
)

// DefaultMaxBatchRows bounds a classify request when no limit is configured.
const DefaultMaxBatchRows = 50000

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of every API handler.
type Server struct {
	engine       *classifier.Engine
	normalizer   classifier.OSNormalizer
	store        repository.Store
	database     Pinger
	maxBatchRows int
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Engine     *classifier.Engine
	Normalizer classifier.OSNormalizer
	// Store backs the admin endpoints. Classification reads go through Engine.
	Store repository.Store
	// Database is optional; nil skips the readiness database check.
	Database     Pinger
	MaxBatchRows int
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	maxRows := deps.MaxBatchRows
	if maxRows <= 0 {
		maxRows = DefaultMaxBatchRows
	}
	return &Server{
		engine:       deps.Engine,
		normalizer:   deps.Normalizer,
		store:        deps.Store,
		database:     deps.Database,
		maxBatchRows: maxRows,
	}
}

// RegisterRoutes mounts the contract routes on api. Admin routes run auth
// first and then the per-route permission check.
func (s *Server) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	api.POST("/classify", s.Classify)
	api.POST("/normalize", s.Normalize)
	api.GET("/tiers", s.ListTiers)

	admin := api.Group("/admin", auth)
	admin.GET("/matrix", middleware.RequirePermission(middleware.PermMatrixRead), s.ListMatrix)
	admin.POST("/matrix", middleware.RequirePermission(middleware.PermMatrixWrite), s.CreateMatrixEntry)
	admin.PUT("/matrix/:id", middleware.RequirePermission(middleware.PermMatrixWrite), s.UpdateMatrixEntry)
	admin.DELETE("/matrix/:id", middleware.RequirePermission(middleware.PermMatrixWrite), s.DeleteMatrixEntry)
	admin.GET("/migration-paths", middleware.RequirePermission(middleware.PermMatrixRead), s.ListMigrationPaths)
	admin.PUT("/migration-paths/:id", middleware.RequirePermission(middleware.PermGuidanceWrite), s.UpdateMigrationPath)
}

// RegisterHealthRoutes mounts the liveness and readiness probes.
func (s *Server) RegisterHealthRoutes(r gin.IRoutes) {
	r.GET("/health/live", s.GetLiveness)
	r.GET("/health/ready", s.GetReadiness)
}

// actorFromCtx returns the token subject for audit logging.
func actorFromCtx(c *gin.Context) string {
	if sub := middleware.GetSubject(c.Request.Context()); sub != "" {
		return sub
	}
	return "anonymous"
}
