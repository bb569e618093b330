package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vme-analyzer.io/analyzer/internal/api/middleware"
	"vme-analyzer.io/analyzer/internal/classifier"
	"vme-analyzer.io/analyzer/internal/domain"
	"vme-analyzer.io/analyzer/internal/normalizer"
	"vme-analyzer.io/analyzer/internal/pkg/logger"
	"vme-analyzer.io/analyzer/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

var testJWT = middleware.JWTConfig{
	SigningKey: []byte("handlers-test-signing-key-0123456789abcdef"),
	Issuer:     "vme-analyzer-test",
	ExpiresIn:  time.Hour,
}

func seededStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	seed, err := repository.DefaultSeed()
	require.NoError(t, err)
	return repository.NewSeededMemoryStore(seed)
}

func newTestServer(store repository.Store, db Pinger, maxRows int) *Server {
	n := normalizer.New()
	return NewServer(ServerDeps{
		Engine:       classifier.New(store, classifier.WithNormalizer(n)),
		Normalizer:   n,
		Store:        store,
		Database:     db,
		MaxBatchRows: maxRows,
	})
}

func newTestRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	s.RegisterHealthRoutes(r)
	api := r.Group("/api/v1")
	api.Use(middleware.MustOpenAPIValidator("/api/v1"))
	s.RegisterRoutes(api, middleware.JWTAuth(testJWT))
	return r
}

func bearer(t *testing.T, perms ...string) string {
	t.Helper()
	token, _, err := middleware.GenerateToken(testJWT, "analyst@example.com", []string{"analyst"}, perms)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(r http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

// brokenStore fails every read the admin and readiness paths make.
type brokenStore struct {
	*repository.MemoryStore
}

func (brokenStore) ListMatrix(context.Context) ([]domain.MatrixEntry, error) {
	return nil, errors.New("relation vme_matrix does not exist")
}

func (brokenStore) Ping(context.Context) error { return errors.New("store offline") }

func TestNewServer_DefaultBatchLimit(t *testing.T) {
	s := NewServer(ServerDeps{Store: repository.NewMemoryStore()})
	assert.Equal(t, DefaultMaxBatchRows, s.maxBatchRows)
}

func TestHealth(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		r := newTestRouter(newTestServer(seededStore(t), nil, 0))
		w := do(r, http.MethodGet, "/health/live", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("ready without database", func(t *testing.T) {
		r := newTestRouter(newTestServer(seededStore(t), nil, 0))
		w := do(r, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","checks":{"matrix":"ok"}}`, w.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		r := newTestRouter(newTestServer(seededStore(t), downPinger{}, 0))
		w := do(r, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"database":"error","matrix":"ok"}}`, w.Body.String())
	})

	t.Run("store down", func(t *testing.T) {
		r := newTestRouter(newTestServer(brokenStore{seededStore(t)}, nil, 0))
		w := do(r, http.MethodGet, "/health/ready", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"matrix":"error"`)
	})
}

func TestStoreError(t *testing.T) {
	notFound := storeError(repository.ErrNotFound, nil)
	assert.Equal(t, http.StatusServiceUnavailable, notFound.HTTPStatus)

	invalid := storeError(repository.ValidateMatrixEntry(domain.MatrixEntry{}), nil)
	assert.Equal(t, http.StatusBadRequest, invalid.HTTPStatus)

	other := storeError(errors.New("boom"), nil)
	assert.Equal(t, "STORE_UNAVAILABLE", other.Code)
}
