package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// APIClient represents a back-office integration allowed to read declarations
type APIClient struct {
	ID         uuid.UUID
	Name       string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Order represents a purchase order header
type Order struct {
	ID              uuid.UUID
	OrderNo         string
	SupplierID      uuid.UUID
	SupplierName    string
	SupplierCountry string
	CreatedAt       time.Time
}

// InvoiceLine represents a catalog-linked line of the commercial invoice
type InvoiceLine struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       *uuid.UUID
	Quantity        float64
	UnitPrice       decimal.Decimal
	ProductCode     string
	ProductName     string
	GtipCode        string
	ProductTypeID   *uuid.UUID
	ProductTypeName *string
}

// PackingLine represents a line of a supplier packing list.
// ProductID is usually absent; the line is then known only by its raw name.
type PackingLine struct {
	PackingListID  uuid.UUID
	ProductID      *uuid.UUID
	ProductNameRaw string
	Quantity       float64
	NetWeight      float64
	GrossWeight    float64
	PackagesCount  float64
}

// AttributeDefinition describes a structured catalog attribute
type AttributeDefinition struct {
	ID   uuid.UUID
	Name string
}

// AttributeValue is a structured attribute value of a catalog product
type AttributeValue struct {
	ProductID    uuid.UUID
	DefinitionID uuid.UUID
	Value        string
}

// ExtraAttribute is a free-form name/value pair of a catalog product
type ExtraAttribute struct {
	ProductID uuid.UUID
	Name      string
	Value     string
}

// ComplianceCandidate is a regulatory record scoped by product type, origin
// country and validity window. ProductTypeName is joined from the type table.
type ComplianceCandidate struct {
	ID               uuid.UUID
	ProductTypeID    *uuid.UUID
	ProductTypeName  string
	Country          *string
	TSEStatus        string
	AnalysisValidity string
	TareksNo         string
	ReportNo         string
	ValidFrom        *time.Time
	ValidTo          *time.Time
}
