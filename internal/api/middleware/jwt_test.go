package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vme-analyzer.io/analyzer/internal/pkg/errors"
)

func TestJWTConfigValidateToken_Success(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: []byte("test-signing-key-1234567890123456"),
		Issuer:     "vme-analyzer",
		ExpiresIn:  time.Hour,
	}

	token, expiresAt, err := GenerateToken(cfg, "ops@example.com", []string{"matrix-admin"}, []string{PermMatrixWrite})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := cfg.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, []string{PermMatrixWrite}, claims.Permissions)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.NotBefore)
}

func TestJWTConfigValidateToken_RejectsInvalidIssuer(t *testing.T) {
	issuerCfg := JWTConfig{
		SigningKey: []byte("issuer-key-123456789012345678901234"),
		Issuer:     "vme-analyzer",
		ExpiresIn:  time.Hour,
	}
	token, _, err := GenerateToken(issuerCfg, "ops", nil, nil)
	require.NoError(t, err)

	validatorCfg := JWTConfig{
		SigningKey: issuerCfg.SigningKey,
		Issuer:     "other-issuer",
	}
	_, err = validatorCfg.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWTConfigValidateToken_SupportsVerificationKeyRotation(t *testing.T) {
	oldKey := []byte("old-key-123456789012345678901234567890")
	newKey := []byte("new-key-123456789012345678901234567890")

	token, _, err := GenerateToken(JWTConfig{
		SigningKey: oldKey,
		Issuer:     "vme-analyzer",
		ExpiresIn:  time.Hour,
	}, "ops", nil, nil)
	require.NoError(t, err)

	claims, err := JWTConfig{
		SigningKey:       newKey,
		VerificationKeys: [][]byte{oldKey},
		Issuer:           "vme-analyzer",
	}.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	_, err = JWTConfig{SigningKey: newKey, Issuer: "vme-analyzer"}.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTConfigValidateToken_RejectsNoneSigningMethod(t *testing.T) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "vme-analyzer",
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = JWTConfig{
		SigningKey: []byte("signing-key-123456789012345678901234"),
		Issuer:     "vme-analyzer",
	}.ValidateToken(context.Background(), tokenString)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTConfigValidateToken_RejectsExpired(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: []byte("expiry-key-1234567890123456789012345"),
		Issuer:     "vme-analyzer",
		ExpiresIn:  -time.Minute,
	}
	token, _, err := GenerateToken(cfg, "ops", nil, nil)
	require.NoError(t, err)

	_, err = cfg.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTConfigValidateToken_RequiresSigningKey(t *testing.T) {
	token, _, err := GenerateToken(JWTConfig{
		SigningKey: []byte("key-to-sign-valid-token-1234567890123456"),
		Issuer:     "vme-analyzer",
		ExpiresIn:  time.Hour,
	}, "ops", nil, nil)
	require.NoError(t, err)

	_, err = JWTConfig{Issuer: "vme-analyzer"}.ValidateToken(context.Background(), token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenUnverifiable)
	assert.ErrorIs(t, err, ErrJWTSigningKeyMissing)

	_, _, err = GenerateToken(JWTConfig{}, "ops", nil, nil)
	assert.ErrorIs(t, err, ErrJWTSigningKeyMissing)
}

func TestJWTAuth(t *testing.T) {
	cfg := JWTConfig{
		SigningKey: []byte("middleware-key-123456789012345678901"),
		Issuer:     "vme-analyzer",
		ExpiresIn:  time.Hour,
	}
	valid, _, err := GenerateToken(cfg, "ops", []string{"matrix-admin"}, []string{PermMatrixRead})
	require.NoError(t, err)
	expired, _, err := GenerateToken(JWTConfig{SigningKey: cfg.SigningKey, Issuer: cfg.Issuer, ExpiresIn: -time.Minute}, "ops", nil, nil)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/admin", JWTAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"subject":     GetSubject(c.Request.Context()),
			"permissions": c.GetStringSlice("permissions"),
		})
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"missing header", "", http.StatusUnauthorized, apperrors.CodeAuthFailed},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, apperrors.CodeAuthFailed},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, apperrors.CodeTokenInvalid},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, apperrors.CodeTokenExpired},
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, body["code"])
				return
			}
			assert.Equal(t, "ops", body["subject"])
			assert.Equal(t, []any{PermMatrixRead}, body["permissions"])
		})
	}
}
