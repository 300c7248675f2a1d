package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aidevchallenge/backend/internal/auth"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func ZapLoggerMiddleware(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			reqLogger := l.With(
				zap.String("request_id", requestID),
			)

			c.Set("logger", reqLogger)

			ctx := logger.WithLogger(req.Context(), reqLogger)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			latency := time.Since(start)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
				zap.Int64("bytes_in", req.ContentLength),
				zap.Int64("bytes_out", res.Size),
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				reqLogger.Error("request failed", fields...)
			} else {
				reqLogger.Info("request completed", fields...)
			}

			return err
		}
	}
}

const claimsContextKey = "claims"

// AuthMiddleware verifies the bearer token and requires one of the
// given roles. Claims land in the echo context for handlers.
func AuthMiddleware(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return c.NoContent(http.StatusUnauthorized)
			}

			claims, valid := auth.IsValidToken(tokenString)
			if !valid {
				return c.NoContent(http.StatusUnauthorized)
			}

			if !slices.Contains(roles, claims.Role) {
				return c.NoContent(http.StatusForbidden)
			}

			c.Set(claimsContextKey, claims)

			return next(c)
		}
	}
}

// ClaimsFromContext returns the token claims stored by AuthMiddleware.
func ClaimsFromContext(c echo.Context) *auth.TokenClaims {
	if claims, ok := c.Get(claimsContextKey).(*auth.TokenClaims); ok {
		return claims
	}
	return nil
}
