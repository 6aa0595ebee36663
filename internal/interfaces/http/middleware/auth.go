package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/stockscan/internal/infrastructure/auth"
	"github.com/erp/stockscan/internal/infrastructure/logger"
	"github.com/erp/stockscan/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authorization header and gin context keys
const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	JWTClaimsKey  = "jwt_claims"
)

// TokenValidator validates a bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// JWTAuth rejects requests without a valid bearer token. The validated
// claims are stored under JWTClaimsKey and the token subject is added to the
// request logger as "device".
func JWTAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required", auth.ErrInvalidToken)
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid authorization header format", auth.ErrInvalidToken)
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			code, message := tokenError(err)
			abortUnauthorized(c, code, message, err)
			return
		}

		c.Set(JWTClaimsKey, claims)

		ctx := c.Request.Context()
		reqLogger := logger.FromContext(ctx).With(zap.String("device", claims.Subject))
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))

		c.Next()
	}
}

// RequireScope rejects requests whose token lacks scope. It must run after
// JWTAuth.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required", auth.ErrInvalidToken)
			return
		}
		if !claims.HasScope(scope) {
			logger.GetGinLogger(c).Warn("scope denied",
				zap.String("device", claims.Subject),
				zap.String("required_scope", scope),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"Token lacks the "+scope+" scope",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}

// GetJWTClaims returns the claims stored by JWTAuth, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func tokenError(err error) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeUnauthorized, "Token is not yet valid"
	default:
		return dto.ErrCodeUnauthorized, "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, code, message string, err error) {
	logger.GetGinLogger(c).Warn("authentication failed", zap.Error(err), zap.String("reason", message))

	c.Header("WWW-Authenticate", `Bearer realm="stockscan"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
