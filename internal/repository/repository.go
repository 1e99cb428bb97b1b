package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tradeops/backoffice/internal/domain"
)

// APIClientRepository stores the integrations allowed to call the API
type APIClientRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.APIClient, error)
	Create(ctx context.Context, client *domain.APIClient) error
	Update(ctx context.Context, client *domain.APIClient) error
}

// OrderRepository reads purchase order headers
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

// InvoiceLineRepository reads the catalog-linked invoice lines of an order
type InvoiceLineRepository interface {
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.InvoiceLine, error)
}

// PackingLineRepository reads the lines of every packing list of an order
type PackingLineRepository interface {
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.PackingLine, error)
}

// AttributeRepository reads catalog attribute definitions and values
type AttributeRepository interface {
	ListDefinitions(ctx context.Context) ([]domain.AttributeDefinition, error)
	ListValues(ctx context.Context, productIDs []uuid.UUID) ([]domain.AttributeValue, error)
	ListExtras(ctx context.Context, productIDs []uuid.UUID) ([]domain.ExtraAttribute, error)
}

// ComplianceRepository reads compliance records joined with type names
type ComplianceRepository interface {
	ListByTypes(ctx context.Context, typeIDs []uuid.UUID, typeNames []string) ([]domain.ComplianceCandidate, error)
}

// Repositories groups every repository the services need
type Repositories struct {
	APIClient   APIClientRepository
	Order       OrderRepository
	InvoiceLine InvoiceLineRepository
	PackingLine PackingLineRepository
	Attribute   AttributeRepository
	Compliance  ComplianceRepository
}
