package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/domain"
	apperrors "vme-analyzer.io/analyzer/internal/pkg/errors"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
	"vme-analyzer.io/analyzer/internal/repository"
)

type matrixCreateRequest struct {
	Vendor   string      `json:"vendor"`
	Family   string      `json:"os_family"`
	Versions string      `json:"versions"`
	Tier     domain.Tier `json:"tier"`
	Notes    string      `json:"notes"`
}

type migrationPathUpdateRequest struct {
	Text string `json:"guidance_text"`
}

// ListMatrix handles GET /admin/matrix.
func (s *Server) ListMatrix(c *gin.Context) {
	entries, err := s.store.ListMatrix(c.Request.Context())
	if err != nil {
		_ = c.Error(storeError(err, nil))
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CreateMatrixEntry handles POST /admin/matrix.
func (s *Server) CreateMatrixEntry(c *gin.Context) {
	var req matrixCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid request body: "+err.Error()))
		return
	}
	if !req.Tier.Valid() {
		_ = c.Error(apperrors.ErrInvalidTier(req.Tier.String()))
		return
	}

	entry, err := s.store.CreateMatrixEntry(c.Request.Context(), domain.MatrixEntry{
		Vendor:   strings.TrimSpace(req.Vendor),
		Family:   strings.TrimSpace(req.Family),
		Versions: strings.TrimSpace(req.Versions),
		Tier:     req.Tier,
		Notes:    req.Notes,
	})
	if err != nil {
		_ = c.Error(storeError(err, nil))
		return
	}

	logger.Info("matrix entry created",
		zap.Int64("id", entry.ID),
		zap.String("os_family", entry.Family),
		zap.String("tier", entry.Tier.String()),
		zap.String("actor", actorFromCtx(c)),
	)
	c.JSON(http.StatusCreated, entry)
}

// UpdateMatrixEntry handles PUT /admin/matrix/{id}. Absent fields are kept.
func (s *Server) UpdateMatrixEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch repository.MatrixPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid request body: "+err.Error()))
		return
	}
	if patch.Tier != nil && !patch.Tier.Valid() {
		_ = c.Error(apperrors.ErrInvalidTier(patch.Tier.String()))
		return
	}

	entry, err := s.store.UpdateMatrixEntry(c.Request.Context(), id, patch)
	if err != nil {
		_ = c.Error(storeError(err, apperrors.ErrMatrixEntryNotFound(id)))
		return
	}

	logger.Info("matrix entry updated", zap.Int64("id", id), zap.String("actor", actorFromCtx(c)))
	c.JSON(http.StatusOK, entry)
}

// DeleteMatrixEntry handles DELETE /admin/matrix/{id}.
func (s *Server) DeleteMatrixEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteMatrixEntry(c.Request.Context(), id); err != nil {
		_ = c.Error(storeError(err, apperrors.ErrMatrixEntryNotFound(id)))
		return
	}

	logger.Info("matrix entry deleted", zap.Int64("id", id), zap.String("actor", actorFromCtx(c)))
	c.Status(http.StatusNoContent)
}

// ListMigrationPaths handles GET /admin/migration-paths.
func (s *Server) ListMigrationPaths(c *gin.Context) {
	paths, err := s.store.ListGuidance(c.Request.Context())
	if err != nil {
		_ = c.Error(storeError(err, nil))
		return
	}
	c.JSON(http.StatusOK, paths)
}

// UpdateMigrationPath handles PUT /admin/migration-paths/{id}. Only the
// guidance text can change.
func (s *Server) UpdateMigrationPath(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req migrationPathUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid request body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "guidance_text must not be empty").
			WithFieldErrors([]apperrors.FieldError{{Field: "guidance_text", Code: "required"}}))
		return
	}

	path, err := s.store.UpdateGuidanceText(c.Request.Context(), id, req.Text)
	if err != nil {
		_ = c.Error(storeError(err, apperrors.ErrMigrationPathNotFound(id)))
		return
	}

	logger.Info("migration path updated",
		zap.Int64("id", id),
		zap.String("tier", path.Tier.String()),
		zap.String("actor", actorFromCtx(c)),
	)
	c.JSON(http.StatusOK, path)
}

// pathID parses the :id parameter, reporting a 400 when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeInvalidID, "invalid id: "+raw))
		return 0, false
	}
	return id, true
}

// storeError maps a store failure to its API error. notFound is used for
// repository.ErrNotFound when the operation addresses a single row.
func storeError(err error, notFound *apperrors.AppError) *apperrors.AppError {
	switch {
	case notFound != nil && errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrInvalidEntry):
		return apperrors.Wrap(err, apperrors.CodeValidationFailed, err.Error(), http.StatusBadRequest)
	default:
		return apperrors.Unavailable(err, apperrors.CodeStoreUnavailable, "matrix store failure")
	}
}
