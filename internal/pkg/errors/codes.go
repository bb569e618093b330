package errors

import "fmt"

// Classification error codes.
const (
	CodeEmptyBatch    = "EMPTY_BATCH"
	CodeBatchTooLarge = "BATCH_TOO_LARGE"
)

// Matrix and guidance error codes.
const (
	CodeMatrixEntryNotFound   = "MATRIX_ENTRY_NOT_FOUND"
	CodeMigrationPathNotFound = "MIGRATION_PATH_NOT_FOUND"
	CodeInvalidTier           = "INVALID_TIER"
	CodeInvalidID             = "INVALID_ID"
	CodeStoreUnavailable      = "STORE_UNAVAILABLE"
)

// Auth error codes.
const (
	CodeAuthFailed       = "AUTH_FAILED"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeTokenInvalid     = "TOKEN_INVALID"
	CodePermissionDenied = "PERMISSION_DENIED"
)

// Request validation error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrMatrixEntryNotFound creates the 404 for an unknown matrix row.
func ErrMatrixEntryNotFound(id int64) *AppError {
	return NotFound(CodeMatrixEntryNotFound, fmt.Sprintf("matrix entry %d not found", id)).
		WithParams(map[string]any{"id": id})
}

// ErrMigrationPathNotFound creates the 404 for an unknown guidance row.
func ErrMigrationPathNotFound(id int64) *AppError {
	return NotFound(CodeMigrationPathNotFound, fmt.Sprintf("migration path %d not found", id)).
		WithParams(map[string]any{"id": id})
}

// ErrInvalidTier creates a bad request error for a tier outside the six known tiers.
func ErrInvalidTier(tier string) *AppError {
	return BadRequest(CodeInvalidTier, "unknown tier: "+tier).
		WithParams(map[string]any{"tier": tier})
}

// ErrBatchTooLarge creates the 413 returned when a batch exceeds the row limit.
func ErrBatchTooLarge(rows, limit int) *AppError {
	return TooLarge(CodeBatchTooLarge, fmt.Sprintf("batch has %d rows, limit is %d", rows, limit)).
		WithParams(map[string]any{"rows": rows, "limit": limit})
}
