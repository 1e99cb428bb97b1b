package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/domain"
	"github.com/tradeops/backoffice/internal/repository"
	"github.com/tradeops/backoffice/pkg/errors"
)

const clientContextKey = "api_client"

// AuthMiddleware authenticates requests by their bearer API key
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		apiKey, found := strings.CutPrefix(header, "Bearer ")
		apiKey = strings.TrimSpace(apiKey)
		if !found || apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		client, err := repos.APIClient.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			if _, ok := err.(*errors.ErrUnauthorized); ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			logger.Error("Failed to authenticate API client", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(clientContextKey, client)
		c.Next()
	}
}

// GetClientFromContext returns the authenticated API client
func GetClientFromContext(c *gin.Context) (*domain.APIClient, bool) {
	v, ok := c.Get(clientContextKey)
	if !ok {
		return nil, false
	}
	client, ok := v.(*domain.APIClient)
	return client, ok
}
