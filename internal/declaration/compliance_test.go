package declaration

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tradeops/backoffice/internal/domain"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestSelectCompliance(t *testing.T) {
	typeID := uuid.New()
	asOf := *day("2024-06-01")

	current := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeID: &typeID, Country: strPtr("CN"), ValidFrom: day("2024-01-01"), ValidTo: day("2024-12-31")}
	generic := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeID: &typeID}
	expired := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeID: &typeID, Country: strPtr("CN"), ValidFrom: day("2023-01-01"), ValidTo: day("2023-12-31")}
	otherType := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeID: idPtr(uuid.New()), Country: strPtr("CN")}

	tests := []struct {
		name       string
		candidates []domain.ComplianceCandidate
		country    string
		want       *uuid.UUID
	}{
		{"country and date match", []domain.ComplianceCandidate{current, generic, expired}, "CN", &current.ID},
		{"country is case-insensitive", []domain.ComplianceCandidate{current, generic, expired}, "cn", &current.ID},
		{"generic date-fit record", []domain.ComplianceCandidate{current, generic, expired}, "DE", &generic.ID},
		{"country match ignoring date", []domain.ComplianceCandidate{expired}, "CN", &expired.ID},
		{"first candidate as last resort", []domain.ComplianceCandidate{expired, current}, "US", &expired.ID},
		{"other types are ignored", []domain.ComplianceCandidate{otherType}, "CN", nil},
		{"empty set", nil, "CN", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectCompliance(tt.candidates, ComplianceQuery{TypeID: &typeID, Country: tt.country, AsOf: asOf})
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected no record, got %s", got.ID)
			case tt.want != nil && got == nil:
				t.Errorf("expected %s, got none", *tt.want)
			case tt.want != nil && got.ID != *tt.want:
				t.Errorf("expected %s, got %s", *tt.want, got.ID)
			}
		})
	}
}

func TestSelectComplianceByTypeName(t *testing.T) {
	match := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeName: "Çelik Profil"}
	other := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeName: "Boru"}

	got := SelectCompliance([]domain.ComplianceCandidate{other, match}, ComplianceQuery{
		TypeName: "çelik profil",
		Country:  "CN",
		AsOf:     *day("2024-06-01"),
	})
	if got == nil || got.ID != match.ID {
		t.Fatalf("expected record matched by type name, got %+v", got)
	}
}

func TestSelectComplianceValidToIsInclusive(t *testing.T) {
	typeID := uuid.New()
	endsToday := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeID: &typeID, Country: strPtr("CN"), ValidTo: day("2024-06-01")}
	generic := domain.ComplianceCandidate{ID: uuid.New(), ProductTypeID: &typeID}

	asOf := time.Date(2024, 6, 1, 17, 30, 0, 0, time.UTC)
	got := SelectCompliance([]domain.ComplianceCandidate{generic, endsToday}, ComplianceQuery{TypeID: &typeID, Country: "CN", AsOf: asOf})
	if got == nil || got.ID != endsToday.ID {
		t.Fatalf("expected record valid through the as-of day, got %+v", got)
	}
}
