package declaration

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradeops/backoffice/internal/domain"
)

// ComplianceQuery identifies the record wanted for one line
type ComplianceQuery struct {
	TypeID   *uuid.UUID
	TypeName string
	Country  string
	AsOf     time.Time
}

type complianceRule func(c domain.ComplianceCandidate, q ComplianceQuery) bool

// complianceRules are evaluated in order over the whole candidate set; the
// first rule with a matching candidate decides.
var complianceRules = []complianceRule{
	func(c domain.ComplianceCandidate, q ComplianceQuery) bool {
		return sameCountry(c, q.Country) && fitsDate(c, q.AsOf)
	},
	func(c domain.ComplianceCandidate, q ComplianceQuery) bool {
		return countryOf(c) == "" && fitsDate(c, q.AsOf)
	},
	func(c domain.ComplianceCandidate, q ComplianceQuery) bool {
		return sameCountry(c, q.Country)
	},
	func(c domain.ComplianceCandidate, q ComplianceQuery) bool {
		return true
	},
}

// SelectCompliance picks the compliance record applying to a product type,
// supplier country and date. It returns nil when no record exists for the
// type.
func SelectCompliance(candidates []domain.ComplianceCandidate, q ComplianceQuery) *domain.ComplianceCandidate {
	set := complianceCandidates(candidates, q)
	for _, rule := range complianceRules {
		for i := range set {
			if rule(set[i], q) {
				c := set[i]
				return &c
			}
		}
	}
	return nil
}

// complianceCandidates keeps the records of the line's type, by id when the
// line has one and by case-insensitive type name otherwise.
func complianceCandidates(candidates []domain.ComplianceCandidate, q ComplianceQuery) []domain.ComplianceCandidate {
	var set []domain.ComplianceCandidate
	for _, c := range candidates {
		if q.TypeID != nil {
			if c.ProductTypeID != nil && *c.ProductTypeID == *q.TypeID {
				set = append(set, c)
			}
			continue
		}
		name := strings.TrimSpace(q.TypeName)
		if name != "" && strings.EqualFold(strings.TrimSpace(c.ProductTypeName), name) {
			set = append(set, c)
		}
	}
	return set
}

func countryOf(c domain.ComplianceCandidate) string {
	if c.Country == nil {
		return ""
	}
	return strings.TrimSpace(*c.Country)
}

func sameCountry(c domain.ComplianceCandidate, country string) bool {
	country = strings.TrimSpace(country)
	return country != "" && strings.EqualFold(countryOf(c), country)
}

// fitsDate compares calendar days, so a record valid to a date still applies
// during the whole of that day.
func fitsDate(c domain.ComplianceCandidate, asOf time.Time) bool {
	day := calendarDay(asOf)
	if c.ValidFrom != nil && calendarDay(*c.ValidFrom).After(day) {
		return false
	}
	if c.ValidTo != nil && calendarDay(*c.ValidTo).Before(day) {
		return false
	}
	return true
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
