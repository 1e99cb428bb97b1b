package declaration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradeops/backoffice/internal/domain"
)

func invoiceLine(code string, qty float64) domain.InvoiceLine {
	return domain.InvoiceLine{
		ID:          uuid.New(),
		ProductCode: code,
		Quantity:    qty,
		UnitPrice:   decimal.NewFromInt(1),
		GtipCode:    "7214.20",
	}
}

func TestAllocateSplitsOneBucketAcrossLines(t *testing.T) {
	pool := BuildPool([]domain.PackingLine{
		{ProductNameRaw: "ROD-8", Quantity: 150, NetWeight: 75, GrossWeight: 80, PackagesCount: 10},
	})
	lines := []domain.InvoiceLine{invoiceLine("rod-8", 50), invoiceLine("ROD-8", 100)}

	allocs := Allocate(pool, lines, nil)

	assertAmounts(t, "first line", allocs[0].Consumed, Amounts{Quantity: 50, NetWeight: 25, GrossWeight: 26.6667, Packages: 3.3333})
	if allocs[0].Available != 150 {
		t.Errorf("first line saw %v available, want 150", allocs[0].Available)
	}
	if allocs[1].Available != 100 {
		t.Errorf("second line saw %v available, want 100", allocs[1].Available)
	}
	assertAmounts(t, "second line", allocs[1].Consumed, Amounts{Quantity: 100, NetWeight: 50, GrossWeight: 53.3333, Packages: 6.6667})

	if pool.Len() != 0 {
		t.Errorf("expected exhausted bucket to be removed, %d left", pool.Len())
	}

	total := allocs[0].Consumed.add(allocs[1].Consumed)
	assertAmounts(t, "total consumed", total, Amounts{Quantity: 150, NetWeight: 75, GrossWeight: 80, Packages: 10})
}

func TestAllocateUnmatchedLineKeepsInvoiceQuantity(t *testing.T) {
	pool := BuildPool(nil)

	allocs := Allocate(pool, []domain.InvoiceLine{invoiceLine("MISSING", 20)}, nil)

	if allocs[0].Matched {
		t.Error("expected line to be unmatched")
	}
	assertAmounts(t, "unmatched line", allocs[0].Consumed, Amounts{Quantity: 20})
}

func TestAllocateConservesBucketTotals(t *testing.T) {
	packing := []domain.PackingLine{
		{ProductNameRaw: "A", Quantity: 33, NetWeight: 10, GrossWeight: 11, PackagesCount: 3},
		{ProductNameRaw: "A", Quantity: 17, NetWeight: 7, GrossWeight: 9, PackagesCount: 2},
		{ProductNameRaw: "B", Quantity: 40, NetWeight: 20, GrossWeight: 21, PackagesCount: 4},
	}
	lines := []domain.InvoiceLine{
		invoiceLine("A", 12.5),
		invoiceLine("B", 7),
		invoiceLine("A", 20),
		invoiceLine("B", 100),
		invoiceLine("A", 3),
		invoiceLine("B", 5),
	}
	original := map[string]Amounts{
		"code:A": {Quantity: 50, NetWeight: 17, GrossWeight: 20, Packages: 5},
		"code:B": {Quantity: 40, NetWeight: 20, GrossWeight: 21, Packages: 4},
	}

	pool := BuildPool(packing)
	allocs := Allocate(pool, lines, nil)

	drawn := make(map[string]Amounts)
	for _, a := range allocs {
		if !a.Matched {
			continue
		}
		if a.Drawn.Quantity > a.Available+tolerance {
			t.Errorf("line drew %v with only %v available", a.Drawn.Quantity, a.Available)
		}
		drawn[a.BucketKey] = drawn[a.BucketKey].add(a.Drawn)
	}
	for _, b := range pool.Leftovers() {
		drawn[b.Key] = drawn[b.Key].add(b.Amounts)
	}

	for key, want := range original {
		assertAmounts(t, key, drawn[key], want)
	}

	if allocs[5].Matched {
		t.Error("line after bucket B was exhausted should be unmatched")
	}
}

func TestAllocateNonPositiveNeedTakesEverything(t *testing.T) {
	pool := BuildPool([]domain.PackingLine{
		{ProductNameRaw: "X", Quantity: 8, NetWeight: 4, GrossWeight: 5, PackagesCount: 1},
	})

	allocs := Allocate(pool, []domain.InvoiceLine{invoiceLine("X", 0)}, nil)

	assertAmounts(t, "zero-need line", allocs[0].Consumed, Amounts{Quantity: 8, NetWeight: 4, GrossWeight: 5, Packages: 1})
	if pool.Len() != 0 {
		t.Error("expected bucket to be consumed")
	}
}

func TestAllocateKeyPriority(t *testing.T) {
	productID := uuid.New()

	t.Run("product id before code", func(t *testing.T) {
		pool := BuildPool([]domain.PackingLine{
			{ProductID: &productID, ProductNameRaw: "other name", Quantity: 5},
			{ProductNameRaw: "P-1", Quantity: 9},
		})
		line := invoiceLine("P-1", 5)
		line.ProductID = &productID

		allocs := Allocate(pool, []domain.InvoiceLine{line}, nil)
		if allocs[0].BucketKey != productKey(productID) {
			t.Errorf("matched %q, want product bucket", allocs[0].BucketKey)
		}
	})

	t.Run("code reaches product bucket through alias", func(t *testing.T) {
		pool := BuildPool([]domain.PackingLine{
			{ProductID: &productID, ProductNameRaw: "p-1", Quantity: 5},
		})

		allocs := Allocate(pool, []domain.InvoiceLine{invoiceLine("P-1", 5)}, nil)
		if allocs[0].BucketKey != productKey(productID) {
			t.Errorf("matched %q, want product bucket via alias", allocs[0].BucketKey)
		}
	})

	t.Run("alias pruned once bucket is exhausted", func(t *testing.T) {
		pool := BuildPool([]domain.PackingLine{
			{ProductID: &productID, ProductNameRaw: "p-1", Quantity: 5},
		})

		allocs := Allocate(pool, []domain.InvoiceLine{invoiceLine("P-1", 5), invoiceLine("P-1", 5)}, nil)
		if !allocs[0].Matched || allocs[1].Matched {
			t.Errorf("expected first matched and second unmatched, got %v and %v", allocs[0].Matched, allocs[1].Matched)
		}
		if _, ok := pool.Alias("P-1"); ok {
			t.Error("alias should be gone with its bucket")
		}
	})
}

func TestAllocateWeightFallback(t *testing.T) {
	w := 2.5
	attrs := []ResolvedAttributes{{ProductType: "Profil", WeightPerUnit: &w}}

	allocs := Allocate(BuildPool(nil), []domain.InvoiceLine{invoiceLine("NONE", 4)}, attrs)

	assertAmounts(t, "fallback weight", allocs[0].Consumed, Amounts{Quantity: 4, NetWeight: 10, GrossWeight: 10})
	assertAmounts(t, "drawn", allocs[0].Drawn, Amounts{})
}
