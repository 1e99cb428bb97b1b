package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/config"
	"github.com/tradeops/backoffice/internal/declaration"
	"github.com/tradeops/backoffice/internal/domain"
	"github.com/tradeops/backoffice/internal/repository"
)

type declarationService struct {
	repos     *repository.Repositories
	engine    declaration.Options
	batchSize int
	logger    *zap.Logger
}

// NewDeclarationService creates a new declaration service
func NewDeclarationService(
	repos *repository.Repositories,
	engine declaration.Options,
	batchSize int,
	logger *zap.Logger,
) *declarationService {
	return &declarationService{
		repos:     repos,
		engine:    engine,
		batchSize: config.ClampBatchSize(batchSize),
		logger:    logger,
	}
}

// Compute loads everything the reconciliation needs for one order and runs
// it. Only a missing order or a failure to load invoice lines is fatal;
// other collections degrade to empty and are listed in Warnings.
func (s *declarationService) Compute(ctx context.Context, orderID uuid.UUID, asOf time.Time) (*DeclarationResult, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repos.InvoiceLine.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice lines: %w", err)
	}

	warnings := []string{}
	degrade := func(warning string, err error) {
		s.logger.Warn("Declaration input unavailable, continuing without it",
			zap.String("order_id", orderID.String()),
			zap.String("collection", warning),
			zap.Error(err),
		)
		warnings = append(warnings, warning)
	}

	packing, err := s.repos.PackingLine.ListByOrderID(ctx, orderID)
	if err != nil {
		degrade(WarningPackingLines, err)
		packing = nil
	}

	defs, err := s.repos.Attribute.ListDefinitions(ctx)
	if err != nil {
		degrade(WarningDefinitions, err)
		defs = nil
	}

	productIDs := productIDsOf(lines)

	var values []domain.AttributeValue
	for _, batch := range chunk(productIDs, s.batchSize) {
		rows, err := s.repos.Attribute.ListValues(ctx, batch)
		if err != nil {
			degrade(WarningValues, err)
			values = nil
			break
		}
		values = append(values, rows...)
	}

	var extras []domain.ExtraAttribute
	for _, batch := range chunk(productIDs, s.batchSize) {
		rows, err := s.repos.Attribute.ListExtras(ctx, batch)
		if err != nil {
			degrade(WarningExtras, err)
			extras = nil
			break
		}
		extras = append(extras, rows...)
	}

	compliance, err := s.loadCompliance(ctx, lines, defs, values, extras)
	if err != nil {
		degrade(WarningComplianceRows, err)
		compliance = nil
	}

	result := declaration.Reconcile(declaration.Input{
		Order:        *order,
		InvoiceLines: lines,
		PackingLines: packing,
		Definitions:  defs,
		Values:       values,
		Extras:       extras,
		Compliance:   compliance,
		AsOf:         asOf,
	}, s.engine)

	s.logger.Info("Declaration computed",
		zap.String("order_id", orderID.String()),
		zap.Int("invoice_lines", len(lines)),
		zap.Int("packing_lines", len(packing)),
		zap.Int("rows", len(result.Rows)),
		zap.Int("unmatched_lines", len(result.UnmatchedLineIDs)),
		zap.Int("leftover_buckets", len(result.Leftovers)),
		zap.Strings("warnings", warnings),
	)

	return &DeclarationResult{Result: result, Warnings: warnings}, nil
}

// loadCompliance fetches records for every type id on the lines and, for
// lines without one, for the type name the attributes resolve to.
func (s *declarationService) loadCompliance(
	ctx context.Context,
	lines []domain.InvoiceLine,
	defs []domain.AttributeDefinition,
	values []domain.AttributeValue,
	extras []domain.ExtraAttribute,
) ([]domain.ComplianceCandidate, error) {
	resolver := declaration.NewAttributeResolver(s.engine.Roles, defs, values, extras)

	var typeIDs []uuid.UUID
	var typeNames []string
	seenID := make(map[uuid.UUID]bool)
	seenName := make(map[string]bool)
	for _, line := range lines {
		if line.ProductTypeID != nil {
			if !seenID[*line.ProductTypeID] {
				seenID[*line.ProductTypeID] = true
				typeIDs = append(typeIDs, *line.ProductTypeID)
			}
			continue
		}
		name := resolver.Resolve(line).ProductType
		if key := strings.ToLower(name); !seenName[key] {
			seenName[key] = true
			typeNames = append(typeNames, name)
		}
	}

	var records []domain.ComplianceCandidate
	seenRecord := make(map[uuid.UUID]bool)
	add := func(rows []domain.ComplianceCandidate) {
		for _, r := range rows {
			if !seenRecord[r.ID] {
				seenRecord[r.ID] = true
				records = append(records, r)
			}
		}
	}

	for _, batch := range chunk(typeIDs, s.batchSize) {
		rows, err := s.repos.Compliance.ListByTypes(ctx, batch, nil)
		if err != nil {
			return nil, err
		}
		add(rows)
	}
	for _, batch := range chunk(typeNames, s.batchSize) {
		rows, err := s.repos.Compliance.ListByTypes(ctx, nil, batch)
		if err != nil {
			return nil, err
		}
		add(rows)
	}

	return records, nil
}

func productIDsOf(lines []domain.InvoiceLine) []uuid.UUID {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, line := range lines {
		if line.ProductID == nil || seen[*line.ProductID] {
			continue
		}
		seen[*line.ProductID] = true
		ids = append(ids, *line.ProductID)
	}
	return ids
}

// chunk splits items into consecutive batches of at most size elements
func chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	var batches [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
