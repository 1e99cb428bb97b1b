package service

import (
	"github.com/tradeops/backoffice/internal/declaration"
)

// Degraded input collections reported in DeclarationResult.Warnings
const (
	WarningPackingLines   = "packing_lines_unavailable"
	WarningDefinitions    = "attribute_definitions_unavailable"
	WarningValues         = "attribute_values_unavailable"
	WarningExtras         = "extra_attributes_unavailable"
	WarningComplianceRows = "compliance_records_unavailable"
)

// DeclarationResult is the reconciled declaration plus the list of input
// collections that could not be loaded
type DeclarationResult struct {
	declaration.Result
	Warnings []string `json:"warnings"`
}
