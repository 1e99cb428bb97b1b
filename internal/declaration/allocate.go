package declaration

import (
	"github.com/tradeops/backoffice/internal/domain"
)

// Allocation is the share of packing data assigned to one invoice line
type Allocation struct {
	Line       domain.InvoiceLine
	Attributes ResolvedAttributes
	BucketKey  string
	Matched    bool
	Available  float64
	// Drawn is what was taken from the bucket; Consumed is what the line
	// declares, which may add weight derived from the product.
	Drawn      Amounts
	Consumed   Amounts
}

// keyRule proposes a bucket key for a line; rules are tried in order and the
// first hit wins.
type keyRule func(p *Pool, line domain.InvoiceLine) (string, bool)

var keyRules = []keyRule{
	func(p *Pool, line domain.InvoiceLine) (string, bool) {
		if line.ProductID == nil {
			return "", false
		}
		key := productKey(*line.ProductID)
		_, ok := p.Get(key)
		return key, ok
	},
	func(p *Pool, line domain.InvoiceLine) (string, bool) {
		code := NormalizeKey(line.ProductCode)
		if code == "" {
			return "", false
		}
		return p.Alias(code)
	},
	func(p *Pool, line domain.InvoiceLine) (string, bool) {
		code := NormalizeKey(line.ProductCode)
		if code == "" {
			return "", false
		}
		key := codeKey(code)
		_, ok := p.Get(key)
		return key, ok
	},
}

func resolveBucketKey(p *Pool, line domain.InvoiceLine) (string, bool) {
	for _, rule := range keyRules {
		if key, ok := rule(p, line); ok {
			return key, true
		}
	}
	return "", false
}

// Allocate walks the invoice lines in order and draws each line's share from
// its packing bucket. attrs is indexed like lines. Unmatched lines keep their
// invoice quantity with zero weights and packages. When a line ends up with
// no weight at all and its product declares a per-unit weight, net and gross
// weight are derived from that.
func Allocate(p *Pool, lines []domain.InvoiceLine, attrs []ResolvedAttributes) []Allocation {
	out := make([]Allocation, 0, len(lines))

	for i, line := range lines {
		a := Allocation{Line: line}
		if i < len(attrs) {
			a.Attributes = attrs[i]
		}

		if key, ok := resolveBucketKey(p, line); ok {
			a.BucketKey = key
			a.Matched = true
			a.Available, a.Drawn = p.consume(key, line.Quantity)
			a.Consumed = a.Drawn
		} else {
			a.Consumed = Amounts{Quantity: line.Quantity}
		}

		if a.Consumed.NetWeight == 0 && a.Consumed.GrossWeight == 0 && a.Attributes.WeightPerUnit != nil {
			w := a.Consumed.Quantity * *a.Attributes.WeightPerUnit
			a.Consumed.NetWeight = w
			a.Consumed.GrossWeight = w
		}

		out = append(out, a)
	}

	return out
}
