package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// UnauthorizedMessage is the single message returned for every rejected token.
// Callers cannot tell a missing header from an expired or forged token.
const UnauthorizedMessage = "Unauthorized"

// AuthMiddleware creates a Gin middleware handler that validates Bearer session tokens.
func AuthMiddleware(sessions portssvc.SessionVerifierSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tokenString) == "" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
			return
		}

		session, err := sessions.Verify(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
			return
		}

		enrichedLogger := logger.With(slog.String("subject", session.Subject))
		ctx := WithSubject(c.Request.Context(), session.Subject)
		ctx = WithLogger(ctx, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(subjectKey), session.Subject)
		c.Set(string(loggerKey), enrichedLogger)

		c.Next()
	}
}
