package declaration

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

const tolerance = 1e-4

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func assertAmounts(t *testing.T, label string, got, want Amounts) {
	t.Helper()
	if !approx(got.Quantity, want.Quantity) ||
		!approx(got.NetWeight, want.NetWeight) ||
		!approx(got.GrossWeight, want.GrossWeight) ||
		!approx(got.Packages, want.Packages) {
		t.Errorf("%s = %+v, want %+v", label, got, want)
	}
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func strPtr(s string) *string {
	return &s
}
