package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "vme-analyzer.io/analyzer/internal/pkg/errors"
)

// ErrJWTSigningKeyMissing is returned when no signing key is configured.
var ErrJWTSigningKeyMissing = errors.New("jwt signing key is not configured")

// JWTClaims defines custom JWT claims for admin API tokens.
type JWTClaims struct {
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT signing and verification configuration.
type JWTConfig struct {
	SigningKey []byte
	// VerificationKeys are previous signing keys still accepted.
	VerificationKeys [][]byte
	Issuer           string
	ExpiresIn        time.Duration
}

// GenerateToken creates a signed JWT for subject.
func GenerateToken(cfg JWTConfig, subject string, roles, permissions []string) (string, time.Time, error) {
	if len(cfg.SigningKey) == 0 {
		return "", time.Time{}, ErrJWTSigningKeyMissing
	}
	now := time.Now()
	expiresAt := now.Add(cfg.ExpiresIn)

	jti, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token id: %w", err)
	}

	claims := JWTClaims{
		Roles:       roles,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti.String(),
			Issuer:    cfg.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken parses tokenString, trying the signing key first and then
// each verification key.
func (cfg JWTConfig) ValidateToken(_ context.Context, tokenString string) (*JWTClaims, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, fmt.Errorf("%w: %w", jwt.ErrTokenUnverifiable, ErrJWTSigningKeyMissing)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	keys := append([][]byte{cfg.SigningKey}, cfg.VerificationKeys...)
	var lastErr error
	for _, key := range keys {
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		}, opts...)
		if err == nil && token.Valid {
			return claims, nil
		}
		lastErr = err
		// Only a signature mismatch is worth retrying with another key.
		if !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			break
		}
	}
	return nil, lastErr
}

// JWTAuth returns a Gin middleware that validates Bearer tokens and populates context.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortAuth(c, apperrors.CodeAuthFailed, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortAuth(c, apperrors.CodeAuthFailed, "invalid authorization header format")
			return
		}

		claims, err := cfg.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortAuth(c, apperrors.CodeTokenExpired, "token expired")
				return
			}
			abortAuth(c, apperrors.CodeTokenInvalid, "invalid token")
			return
		}

		c.Set("subject", claims.Subject)
		c.Set("roles", claims.Roles)
		c.Set("permissions", claims.Permissions)
		c.Request = c.Request.WithContext(
			SetSubjectContext(c.Request.Context(), claims.Subject, claims.Roles),
		)

		c.Next()
	}
}

func abortAuth(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    code,
		"message": message,
	})
}
