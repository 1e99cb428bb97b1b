package declaration

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"

	"github.com/tradeops/backoffice/internal/domain"
)

// ComplianceSnapshot copies the compliance fields shown on a declaration row
type ComplianceSnapshot struct {
	RecordID         *uuid.UUID `json:"record_id,omitempty"`
	TSEStatus        string     `json:"tse_status"`
	AnalysisValidity string     `json:"analysis_validity"`
	TareksNo         string     `json:"tareks_no"`
	ReportNo         string     `json:"report_no"`
}

func snapshotOf(c *domain.ComplianceCandidate) ComplianceSnapshot {
	if c == nil {
		return ComplianceSnapshot{}
	}
	id := c.ID
	return ComplianceSnapshot{
		RecordID:         &id,
		TSEStatus:        c.TSEStatus,
		AnalysisValidity: c.AnalysisValidity,
		TareksNo:         c.TareksNo,
		ReportNo:         c.ReportNo,
	}
}

// DeclarationRow is one grouped row of the customs declaration
type DeclarationRow struct {
	ProductID   *uuid.UUID         `json:"product_id,omitempty"`
	ProductCode string             `json:"product_code"`
	ProductName string             `json:"product_name"`
	GtipCode    string             `json:"gtip_code"`
	ProductType string             `json:"product_type"`
	Length      string             `json:"length,omitempty"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	Compliance  ComplianceSnapshot `json:"compliance"`
	LineIDs     []uuid.UUID        `json:"line_ids"`
	Amounts
}

// Totals accumulates a summary group
type Totals struct {
	Quantity    float64         `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	NetWeight   float64         `json:"net_weight"`
	GrossWeight float64         `json:"gross_weight"`
	Packages    float64         `json:"packages"`
}

func (t *Totals) add(a Amounts, unitPrice decimal.Decimal) {
	t.Quantity += a.Quantity
	t.Amount = t.Amount.Add(decimal.NewFromFloat(a.Quantity).Mul(unitPrice))
	t.NetWeight += a.NetWeight
	t.GrossWeight += a.GrossWeight
	t.Packages += a.Packages
}

// TypeSummary totals one product type under a GTIP code
type TypeSummary struct {
	ProductType string `json:"product_type"`
	Totals
}

// GtipSummary totals one GTIP code, broken down by product type
type GtipSummary struct {
	GtipCode string        `json:"gtip_code"`
	Types    []TypeSummary `json:"types"`
	Subtotal Totals        `json:"subtotal"`
}

// Summary is the GTIP x type breakdown of a declaration
type Summary struct {
	Gtips      []GtipSummary `json:"gtips"`
	GrandTotal Totals        `json:"grand_total"`
}

type rowKey struct {
	product string
	typ     string
	length  string
	gtip    string
}

func rowIdentity(line domain.InvoiceLine) string {
	if line.ProductID != nil {
		return productKey(*line.ProductID)
	}
	return codeKey(NormalizeKey(line.ProductCode))
}

// Aggregate groups allocations into declaration rows and GTIP x type totals.
// compliance is indexed like allocs. The first line of a group provides the
// representative unit price and compliance snapshot.
func Aggregate(allocs []Allocation, compliance []*domain.ComplianceCandidate, coll *collate.Collator) ([]DeclarationRow, Summary) {
	rows := make([]*DeclarationRow, 0, len(allocs))
	index := make(map[rowKey]*DeclarationRow)

	var gtips []*GtipSummary
	gtipIndex := make(map[string]*GtipSummary)
	types := make(map[string][]*TypeSummary)
	typeIndex := make(map[string]map[string]*TypeSummary)
	var summary Summary

	for i, a := range allocs {
		line := a.Line
		key := rowKey{
			product: rowIdentity(line),
			typ:     a.Attributes.ProductType,
			length:  a.Attributes.Length,
			gtip:    line.GtipCode,
		}

		row, ok := index[key]
		if !ok {
			var c *domain.ComplianceCandidate
			if i < len(compliance) {
				c = compliance[i]
			}
			row = &DeclarationRow{
				ProductID:   line.ProductID,
				ProductCode: line.ProductCode,
				ProductName: line.ProductName,
				GtipCode:    line.GtipCode,
				ProductType: a.Attributes.ProductType,
				Length:      a.Attributes.Length,
				UnitPrice:   line.UnitPrice,
				Compliance:  snapshotOf(c),
			}
			index[key] = row
			rows = append(rows, row)
		}
		row.Amounts = row.Amounts.add(a.Consumed)
		row.LineIDs = append(row.LineIDs, line.ID)

		g, ok := gtipIndex[line.GtipCode]
		if !ok {
			g = &GtipSummary{GtipCode: line.GtipCode}
			gtipIndex[line.GtipCode] = g
			gtips = append(gtips, g)
			typeIndex[line.GtipCode] = make(map[string]*TypeSummary)
		}
		t, ok := typeIndex[line.GtipCode][a.Attributes.ProductType]
		if !ok {
			t = &TypeSummary{ProductType: a.Attributes.ProductType}
			typeIndex[line.GtipCode][a.Attributes.ProductType] = t
			types[line.GtipCode] = append(types[line.GtipCode], t)
		}
		t.add(a.Consumed, line.UnitPrice)
		g.Subtotal.add(a.Consumed, line.UnitPrice)
		summary.GrandTotal.add(a.Consumed, line.UnitPrice)
	}

	out := make([]DeclarationRow, len(rows))
	for i, row := range rows {
		out[i] = *row
	}
	sortRows(out, coll)

	for _, g := range gtips {
		for _, t := range types[g.GtipCode] {
			g.Types = append(g.Types, *t)
		}
		sort.SliceStable(g.Types, func(i, j int) bool {
			return coll.CompareString(g.Types[i].ProductType, g.Types[j].ProductType) < 0
		})
		summary.Gtips = append(summary.Gtips, *g)
	}
	sort.SliceStable(summary.Gtips, func(i, j int) bool {
		return coll.CompareString(summary.Gtips[i].GtipCode, summary.Gtips[j].GtipCode) < 0
	})

	return out, summary
}

// sortRows orders rows by GTIP, type, numeric length (missing or non-numeric
// last) and product code.
func sortRows(rows []DeclarationRow, coll *collate.Collator) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := coll.CompareString(a.GtipCode, b.GtipCode); c != 0 {
			return c < 0
		}
		if c := coll.CompareString(a.ProductType, b.ProductType); c != 0 {
			return c < 0
		}
		la, okA := lengthSortValue(a.Length)
		lb, okB := lengthSortValue(b.Length)
		switch {
		case okA && okB && la != lb:
			return la < lb
		case okA != okB:
			return okA
		}
		return coll.CompareString(a.ProductCode, b.ProductCode) < 0
	})
}
