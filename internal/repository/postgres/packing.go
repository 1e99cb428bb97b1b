package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/domain"
)

type packingLineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPackingLineRepository creates a new packing line repository
func NewPackingLineRepository(db *sql.DB, logger *zap.Logger) *packingLineRepository {
	return &packingLineRepository{
		db:     db,
		logger: logger,
	}
}

func (r *packingLineRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.PackingLine, error) {
	query := `
		SELECT pl.packing_list_id, pl.product_id, COALESCE(pl.product_name_raw, ''),
		       COALESCE(pl.quantity, 0), COALESCE(pl.net_weight, 0),
		       COALESCE(pl.gross_weight, 0), COALESCE(pl.packages_count, 0)
		FROM packing_list_lines pl
		JOIN packing_lists l ON l.id = pl.packing_list_id
		WHERE l.order_id = $1
		ORDER BY l.created_at, pl.line_no, pl.id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query packing lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.PackingLine
	for rows.Next() {
		var line domain.PackingLine
		var productID uuid.NullUUID

		if err := rows.Scan(
			&line.PackingListID,
			&productID,
			&line.ProductNameRaw,
			&line.Quantity,
			&line.NetWeight,
			&line.GrossWeight,
			&line.PackagesCount,
		); err != nil {
			r.logger.Error("Failed to scan packing line", zap.Error(err))
			return nil, err
		}

		line.ProductID = nullUUIDPtr(productID)
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate packing lines", zap.Error(err))
		return nil, err
	}

	return lines, nil
}
