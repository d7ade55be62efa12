// Package ginguard adapts goToken engines to gin.
//
// It shares extraction, error mapping and the rotate request/response types
// with package middleware, so net/http and gin services answer identically.
package ginguard

import (
	"net/http"
	"strings"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClaimsKey is the gin context key verified claims are stored under, in
// addition to the request context.
const ClaimsKey = "gotoken.claims"

// Guard aborts requests that do not carry a valid access token. On success
// the claims are set on both the gin context and the request context.
func Guard(engine middleware.Verifier, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Info("missing bearer token", zap.String("path", c.Request.URL.Path))
			abort(c, middleware.RejectionFor(middleware.ErrMissingToken))
			return
		}

		claims, err := engine.VerifyAccess(token)
		if err != nil {
			fields := []zap.Field{
				zap.String("kind", goToken.KindOf(err).String()),
				zap.String("path", c.Request.URL.Path),
			}
			if goToken.KindOf(err) == goToken.KindAudienceMismatch {
				logger.Warn("token rejected", fields...)
			} else {
				logger.Info("token rejected", fields...)
			}
			abort(c, middleware.RejectionFor(err))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(goToken.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// Claims returns the claims Guard stored on c.
func Claims(c *gin.Context) (goToken.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return goToken.Claims{}, false
	}
	claims, ok := v.(goToken.Claims)
	return claims, ok
}

// Rotate handles POST bodies of the form {"refresh_token": "..."}.
func Rotate(engine middleware.Rotator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req middleware.RotateRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorBody{
				ErrorCode: middleware.CodeBadRequest,
				Message:   "refresh_token is required",
			})
			return
		}

		token, claims, err := engine.Rotate(strings.TrimSpace(req.RefreshToken))
		if err != nil {
			abort(c, middleware.RejectionFor(err))
			return
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, middleware.RotateResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   claims.ExpiresAt,
		})
	}
}

func abort(c *gin.Context, rej middleware.Rejection) {
	if rej.Challenge != "" {
		c.Header("WWW-Authenticate", rej.Challenge)
	}
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(rej.Status, rej.Body)
}
