package declaration

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tradeops/backoffice/internal/domain"
)

// Input is everything one reconciliation run needs, already fetched
type Input struct {
	Order        domain.Order
	InvoiceLines []domain.InvoiceLine
	PackingLines []domain.PackingLine
	Definitions  []domain.AttributeDefinition
	Values       []domain.AttributeValue
	Extras       []domain.ExtraAttribute
	Compliance   []domain.ComplianceCandidate
	AsOf         time.Time
}

// Options tune a reconciliation run
type Options struct {
	Roles  RoleMapping
	Locale language.Tag
}

// DefaultOptions discovers attribute roles by name and orders rows with
// Turkish collation.
func DefaultOptions() Options {
	return Options{
		Roles:  DefaultRoleMapping(),
		Locale: language.Turkish,
	}
}

// Result is the reconciled declaration of one order
type Result struct {
	OrderID          uuid.UUID        `json:"order_id"`
	AsOf             time.Time        `json:"as_of"`
	Rows             []DeclarationRow `json:"rows"`
	Summary          Summary          `json:"summary"`
	UnmatchedLineIDs []uuid.UUID      `json:"unmatched_line_ids"`
	Leftovers        []Bucket         `json:"leftovers"`
}

// Reconcile runs the whole pipeline for one order: packing buckets and line
// attributes, allocation, compliance selection and aggregation.
func Reconcile(in Input, opts Options) Result {
	if opts.Roles.Rules == nil {
		opts.Roles = DefaultRoleMapping()
	}

	pool := BuildPool(in.PackingLines)

	resolver := NewAttributeResolver(opts.Roles, in.Definitions, in.Values, in.Extras)
	attrs := make([]ResolvedAttributes, len(in.InvoiceLines))
	for i, line := range in.InvoiceLines {
		attrs[i] = resolver.Resolve(line)
	}

	allocs := Allocate(pool, in.InvoiceLines, attrs)

	compliance := make([]*domain.ComplianceCandidate, len(allocs))
	for i, a := range allocs {
		compliance[i] = SelectCompliance(in.Compliance, ComplianceQuery{
			TypeID:   a.Line.ProductTypeID,
			TypeName: a.Attributes.ProductType,
			Country:  in.Order.SupplierCountry,
			AsOf:     in.AsOf,
		})
	}

	rows, summary := Aggregate(allocs, compliance, collate.New(opts.Locale))

	result := Result{
		OrderID:          in.Order.ID,
		AsOf:             in.AsOf,
		Rows:             rows,
		Summary:          summary,
		UnmatchedLineIDs: []uuid.UUID{},
		Leftovers:        pool.Leftovers(),
	}
	for _, a := range allocs {
		if !a.Matched {
			result.UnmatchedLineIDs = append(result.UnmatchedLineIDs, a.Line.ID)
		}
	}
	return result
}
