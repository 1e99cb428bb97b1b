package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/api/middleware"
	"github.com/tradeops/backoffice/internal/config"
	"github.com/tradeops/backoffice/internal/declaration"
	"github.com/tradeops/backoffice/internal/repository"
	"github.com/tradeops/backoffice/internal/service"
	"github.com/tradeops/backoffice/pkg/errors"
)

const asOfLayout = "2006-01-02"

// HandleGetDeclaration handles GET /v1/orders/:id/declaration
func HandleGetDeclaration(cfg *config.Config, repos *repository.Repositories, engine declaration.Options, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := middleware.GetClientFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// Parse order ID
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		asOf, err := parseAsOf(c.Query("as_of"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		declarationService := service.NewDeclarationService(repos, engine, cfg.Declaration.FetchBatchSize, logger)
		result, err := declarationService.Compute(c.Request.Context(), orderID, asOf)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to compute declaration",
				zap.String("order_id", orderID.String()),
				zap.String("client", client.Name),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute declaration"})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// parseAsOf reads the optional as_of query parameter; empty means now
func parseAsOf(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(asOfLayout, raw)
	if err != nil {
		return time.Time{}, &errors.ErrValidation{Field: "as_of", Message: "expected YYYY-MM-DD"}
	}
	return t, nil
}
