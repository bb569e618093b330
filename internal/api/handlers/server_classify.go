package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vme-analyzer.io/analyzer/internal/domain"
	apperrors "vme-analyzer.io/analyzer/internal/pkg/errors"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
)

// SummaryHeader carries the batch summary as JSON alongside the response body.
const SummaryHeader = "X-Analysis-Summary"

type classifyRequest struct {
	Rows []domain.VMInputRow `json:"rows"`
}

type classifyResponse struct {
	Results []domain.ClassifiedVM `json:"results"`
	Summary domain.Summary        `json:"summary"`
	// SkippedRows counts input rows dropped for having no VM name.
	SkippedRows int `json:"skipped_rows"`
}

type normalizeRequest struct {
	OS string `json:"os"`
}

// Classify handles POST /classify.
func (s *Server) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid request body: "+err.Error()))
		return
	}

	switch n := len(req.Rows); {
	case n == 0:
		_ = c.Error(apperrors.BadRequest(apperrors.CodeEmptyBatch, "batch contains no rows"))
		return
	case n > s.maxBatchRows:
		_ = c.Error(apperrors.ErrBatchTooLarge(n, s.maxBatchRows))
		return
	}

	rows, skipped := namedRows(req.Rows)
	if skipped > 0 {
		logger.Info("skipped rows without a VM name",
			zap.Int("skipped_rows", skipped),
			zap.Int("batch_rows", len(req.Rows)),
		)
	}

	results := s.engine.ClassifyAll(c.Request.Context(), rows)
	summary := domain.Summarize(results)

	if header, err := json.Marshal(summary); err == nil {
		c.Header(SummaryHeader, string(header))
	} else {
		logger.Warn("encode summary header", zap.Error(err))
	}
	c.JSON(http.StatusOK, classifyResponse{Results: results, Summary: summary, SkippedRows: skipped})
}

// namedRows drops rows whose name is blank. Kept rows get their input
// position as RowIndex unless the caller set one.
func namedRows(in []domain.VMInputRow) ([]domain.VMInputRow, int) {
	out := make([]domain.VMInputRow, 0, len(in))
	for i, row := range in {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		if row.RowIndex == 0 {
			row.RowIndex = i
		}
		out = append(out, row)
	}
	return out, len(in) - len(out)
}

// Normalize handles POST /normalize.
func (s *Server) Normalize(c *gin.Context) {
	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest(apperrors.CodeValidationFailed, "invalid request body: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.normalizer.Normalize(req.OS))
}

// ListTiers handles GET /tiers.
func (s *Server) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, domain.TierTable())
}
