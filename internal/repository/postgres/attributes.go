package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/domain"
)

type attributeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttributeRepository creates a new catalog attribute repository
func NewAttributeRepository(db *sql.DB, logger *zap.Logger) *attributeRepository {
	return &attributeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *attributeRepository) ListDefinitions(ctx context.Context) ([]domain.AttributeDefinition, error) {
	query := `
		SELECT id, name
		FROM attribute_definitions
		ORDER BY position, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query attribute definitions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var defs []domain.AttributeDefinition
	for rows.Next() {
		var def domain.AttributeDefinition
		if err := rows.Scan(&def.ID, &def.Name); err != nil {
			r.logger.Error("Failed to scan attribute definition", zap.Error(err))
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, rows.Err()
}

// ListValues returns structured attribute values of the given products.
// Callers bound the size of productIDs.
func (r *attributeRepository) ListValues(ctx context.Context, productIDs []uuid.UUID) ([]domain.AttributeValue, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT v.product_id, v.definition_id, COALESCE(v.value, '')
		FROM product_attribute_values v
		JOIN attribute_definitions d ON d.id = v.definition_id
		WHERE v.product_id = ANY($1::uuid[])
		ORDER BY v.product_id, d.position, d.name
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(productIDs)))
	if err != nil {
		r.logger.Error("Failed to query attribute values", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var values []domain.AttributeValue
	for rows.Next() {
		var v domain.AttributeValue
		if err := rows.Scan(&v.ProductID, &v.DefinitionID, &v.Value); err != nil {
			r.logger.Error("Failed to scan attribute value", zap.Error(err))
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// ListExtras returns free-form attributes of the given products.
// Callers bound the size of productIDs.
func (r *attributeRepository) ListExtras(ctx context.Context, productIDs []uuid.UUID) ([]domain.ExtraAttribute, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT product_id, name, COALESCE(value, '')
		FROM product_extra_attributes
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, position, name
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uuidStrings(productIDs)))
	if err != nil {
		r.logger.Error("Failed to query extra attributes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var extras []domain.ExtraAttribute
	for rows.Next() {
		var e domain.ExtraAttribute
		if err := rows.Scan(&e.ProductID, &e.Name, &e.Value); err != nil {
			r.logger.Error("Failed to scan extra attribute", zap.Error(err))
			return nil, err
		}
		extras = append(extras, e)
	}

	return extras, rows.Err()
}
