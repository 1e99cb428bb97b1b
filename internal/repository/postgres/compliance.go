package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/domain"
)

type complianceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewComplianceRepository creates a new compliance record repository
func NewComplianceRepository(db *sql.DB, logger *zap.Logger) *complianceRepository {
	return &complianceRepository{
		db:     db,
		logger: logger,
	}
}

// ListByTypes returns compliance records whose type id is in typeIDs or whose
// type name is in typeNames (case-insensitive), in insertion order.
func (r *complianceRepository) ListByTypes(ctx context.Context, typeIDs []uuid.UUID, typeNames []string) ([]domain.ComplianceCandidate, error) {
	if len(typeIDs) == 0 && len(typeNames) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(typeNames))
	for i, name := range typeNames {
		lowered[i] = strings.ToLower(strings.TrimSpace(name))
	}

	query := `
		SELECT c.id, c.product_type_id, COALESCE(pt.name, ''), c.country,
		       COALESCE(c.tse_status, ''), COALESCE(c.analysis_validity, ''),
		       COALESCE(c.tareks_no, ''), COALESCE(c.report_no, ''),
		       c.valid_from, c.valid_to
		FROM compliance_records c
		LEFT JOIN product_types pt ON pt.id = c.product_type_id
		WHERE c.product_type_id = ANY($1::uuid[])
		   OR lower(pt.name) = ANY($2::text[])
		ORDER BY c.created_at, c.id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(typeIDs)), pq.Array(lowered))
	if err != nil {
		r.logger.Error("Failed to query compliance records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []domain.ComplianceCandidate
	for rows.Next() {
		var c domain.ComplianceCandidate
		var typeID uuid.NullUUID
		var country sql.NullString
		var validFrom, validTo sql.NullTime

		if err := rows.Scan(
			&c.ID,
			&typeID,
			&c.ProductTypeName,
			&country,
			&c.TSEStatus,
			&c.AnalysisValidity,
			&c.TareksNo,
			&c.ReportNo,
			&validFrom,
			&validTo,
		); err != nil {
			r.logger.Error("Failed to scan compliance record", zap.Error(err))
			return nil, err
		}

		c.ProductTypeID = nullUUIDPtr(typeID)
		c.Country = nullStringPtr(country)
		c.ValidFrom = nullTimePtr(validFrom)
		c.ValidTo = nullTimePtr(validTo)
		records = append(records, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate compliance records", zap.Error(err))
		return nil, err
	}

	return records, nil
}
