package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/domain"
	"github.com/tradeops/backoffice/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new purchase order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT po.id, po.order_no, po.supplier_id, s.name, s.country, po.created_at
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id
		WHERE po.id = $1
	`

	var order domain.Order
	var country sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.OrderNo,
		&order.SupplierID,
		&order.SupplierName,
		&country,
		&order.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	if country.Valid {
		order.SupplierCountry = country.String
	}

	return &order, nil
}

type invoiceLineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceLineRepository creates a new invoice line repository
func NewInvoiceLineRepository(db *sql.DB, logger *zap.Logger) *invoiceLineRepository {
	return &invoiceLineRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceLineRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]domain.InvoiceLine, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price,
		       COALESCE(p.code, ''), COALESCE(p.name, ''), COALESCE(p.gtip_code, ''),
		       p.product_type_id, pt.name
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN product_types pt ON pt.id = p.product_type_id
		WHERE oi.order_id = $1
		ORDER BY oi.line_no, oi.id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to query invoice lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.InvoiceLine
	for rows.Next() {
		var line domain.InvoiceLine
		var productID, typeID uuid.NullUUID
		var typeName sql.NullString

		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&productID,
			&line.Quantity,
			&line.UnitPrice,
			&line.ProductCode,
			&line.ProductName,
			&line.GtipCode,
			&typeID,
			&typeName,
		); err != nil {
			r.logger.Error("Failed to scan invoice line", zap.Error(err))
			return nil, err
		}

		line.ProductID = nullUUIDPtr(productID)
		line.ProductTypeID = nullUUIDPtr(typeID)
		line.ProductTypeName = nullStringPtr(typeName)
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate invoice lines", zap.Error(err))
		return nil, err
	}

	return lines, nil
}
