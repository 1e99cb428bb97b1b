package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tradeops/backoffice/internal/declaration"
	"github.com/tradeops/backoffice/internal/domain"
	"github.com/tradeops/backoffice/internal/repository/memory"
	"github.com/tradeops/backoffice/pkg/errors"
)

type fixture struct {
	store   *memory.Store
	order   domain.Order
	typeID  uuid.UUID
	product uuid.UUID
	cert    domain.ComplianceCandidate
}

func newFixture() fixture {
	store := memory.NewStore()
	order := domain.Order{ID: uuid.New(), OrderNo: "PO-1", SupplierCountry: "CN"}
	typeID := uuid.New()
	product := uuid.New()
	lengthDef := domain.AttributeDefinition{ID: uuid.New(), Name: "Uzunluk"}

	store.Orders = append(store.Orders, order)
	store.InvoiceLines = []domain.InvoiceLine{
		{ID: uuid.New(), OrderID: order.ID, ProductID: &product, ProductCode: "ROD-8", Quantity: 50, UnitPrice: decimal.NewFromInt(2), GtipCode: "7214.20", ProductTypeID: &typeID},
		{ID: uuid.New(), OrderID: order.ID, ProductID: &product, ProductCode: "ROD-8", Quantity: 100, UnitPrice: decimal.NewFromInt(2), GtipCode: "7214.20", ProductTypeID: &typeID},
		{ID: uuid.New(), OrderID: order.ID, ProductCode: "LOOSE", Quantity: 20, UnitPrice: decimal.NewFromInt(1), GtipCode: "7318.15"},
	}
	store.PackingLines[order.ID] = []domain.PackingLine{
		{PackingListID: uuid.New(), ProductNameRaw: "rod-8", Quantity: 150, NetWeight: 75, GrossWeight: 80, PackagesCount: 10},
	}
	store.Definitions = []domain.AttributeDefinition{lengthDef}
	store.Values = []domain.AttributeValue{{ProductID: product, DefinitionID: lengthDef.ID, Value: "6000"}}

	country := "CN"
	cert := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeID: &typeID, Country: &country, TareksNo: "T-9"}
	store.Compliance = []domain.ComplianceCandidate{cert}

	return fixture{store: store, order: order, typeID: typeID, product: product, cert: cert}
}

func (f fixture) service(batchSize int) *declarationService {
	return NewDeclarationService(f.store.Repositories(), declaration.DefaultOptions(), batchSize, zap.NewNop())
}

func TestComputeDeclaration(t *testing.T) {
	f := newFixture()

	res, err := f.service(100).Compute(context.Background(), f.order.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}

	rod := res.Rows[0]
	if rod.Quantity != 150 || rod.NetWeight != 75 || rod.Packages != 10 {
		t.Errorf("rod row = %+v", rod.Amounts)
	}
	if rod.Length != "6000" || rod.Compliance.TareksNo != "T-9" {
		t.Errorf("rod row attributes = %q, compliance = %+v", rod.Length, rod.Compliance)
	}
	if len(res.UnmatchedLineIDs) != 1 {
		t.Errorf("expected the loose line unmatched, got %v", res.UnmatchedLineIDs)
	}
	if res.Summary.GrandTotal.Quantity != 170 {
		t.Errorf("grand total quantity = %v, want 170", res.Summary.GrandTotal.Quantity)
	}
}

func TestComputeDeclarationFailures(t *testing.T) {
	t.Run("unknown order", func(t *testing.T) {
		f := newFixture()
		_, err := f.service(100).Compute(context.Background(), uuid.New(), time.Now())
		if _, ok := err.(*errors.ErrNotFound); !ok {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("invoice lines are fatal", func(t *testing.T) {
		f := newFixture()
		boom := stderrors.New("connection reset")
		f.store.Faults.InvoiceLines = boom

		_, err := f.service(100).Compute(context.Background(), f.order.ID, time.Now())
		if !stderrors.Is(err, boom) {
			t.Fatalf("expected wrapped invoice line error, got %v", err)
		}
	})
}

func TestComputeDeclarationDegradedInputs(t *testing.T) {
	boom := stderrors.New("timeout")

	tests := []struct {
		name    string
		fault   func(*memory.Faults)
		warning string
		check   func(t *testing.T, res *DeclarationResult)
	}{
		{
			name:    "packing lines",
			fault:   func(f *memory.Faults) { f.PackingLines = boom },
			warning: WarningPackingLines,
			check: func(t *testing.T, res *DeclarationResult) {
				if len(res.UnmatchedLineIDs) != 3 {
					t.Errorf("expected every line unmatched, got %d", len(res.UnmatchedLineIDs))
				}
				if res.Summary.GrandTotal.NetWeight != 0 {
					t.Errorf("expected no weight, got %v", res.Summary.GrandTotal.NetWeight)
				}
			},
		},
		{
			name:    "attribute values",
			fault:   func(f *memory.Faults) { f.Values = boom },
			warning: WarningValues,
			check: func(t *testing.T, res *DeclarationResult) {
				if res.Rows[0].Length != "" {
					t.Errorf("expected no length, got %q", res.Rows[0].Length)
				}
			},
		},
		{
			name:    "compliance",
			fault:   func(f *memory.Faults) { f.Compliance = boom },
			warning: WarningComplianceRows,
			check: func(t *testing.T, res *DeclarationResult) {
				for _, row := range res.Rows {
					if row.Compliance.RecordID != nil {
						t.Errorf("expected blank compliance, got %+v", row.Compliance)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.fault(&f.store.Faults)

			res, err := f.service(100).Compute(context.Background(), f.order.ID, time.Now())
			if err != nil {
				t.Fatalf("degraded input should not fail the run: %v", err)
			}
			if len(res.Warnings) != 1 || res.Warnings[0] != tt.warning {
				t.Errorf("warnings = %v, want [%s]", res.Warnings, tt.warning)
			}
			tt.check(t, res)
		})
	}
}

func TestComputeDeclarationBatchesLookups(t *testing.T) {
	f := newFixture()
	for i := 0; i < 7; i++ {
		product := uuid.New()
		f.store.InvoiceLines = append(f.store.InvoiceLines, domain.InvoiceLine{
			ID: uuid.New(), OrderID: f.order.ID, ProductID: &product, ProductCode: "X", Quantity: 1,
		})
	}

	if _, err := f.service(3).Compute(context.Background(), f.order.ID, time.Now()); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(f.store.Batches) == 0 {
		t.Fatal("expected batched lookups")
	}
	for _, n := range f.store.Batches {
		if n > 3 {
			t.Errorf("lookup batch of %d exceeds the configured size", n)
		}
	}
}

func TestChunk(t *testing.T) {
	batches := chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(batches) != 3 || len(batches[2]) != 1 || batches[2][0] != 5 {
		t.Errorf("unexpected batches: %v", batches)
	}
	if chunk([]int(nil), 10) != nil {
		t.Error("expected no batches for no items")
	}
}
