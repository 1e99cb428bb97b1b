package declaration

import (
	"math"

	"github.com/google/uuid"

	"github.com/tradeops/backoffice/internal/domain"
)

// exhaustedQuantity is the remaining quantity at or below which a bucket is
// treated as fully consumed.
const exhaustedQuantity = 1e-4

// Amounts holds the quantities tracked for packing data
type Amounts struct {
	Quantity    float64 `json:"quantity"`
	NetWeight   float64 `json:"net_weight"`
	GrossWeight float64 `json:"gross_weight"`
	Packages    float64 `json:"packages"`
}

func (a Amounts) add(b Amounts) Amounts {
	return Amounts{
		Quantity:    a.Quantity + b.Quantity,
		NetWeight:   a.NetWeight + b.NetWeight,
		GrossWeight: a.GrossWeight + b.GrossWeight,
		Packages:    a.Packages + b.Packages,
	}
}

func (a Amounts) sub(b Amounts) Amounts {
	return Amounts{
		Quantity:    math.Max(0, a.Quantity-b.Quantity),
		NetWeight:   math.Max(0, a.NetWeight-b.NetWeight),
		GrossWeight: math.Max(0, a.GrossWeight-b.GrossWeight),
		Packages:    math.Max(0, a.Packages-b.Packages),
	}
}

func (a Amounts) scale(ratio float64) Amounts {
	return Amounts{
		Quantity:    a.Quantity * ratio,
		NetWeight:   a.NetWeight * ratio,
		GrossWeight: a.GrossWeight * ratio,
		Packages:    a.Packages * ratio,
	}
}

// Bucket is a keyed pool of packing-list totals
type Bucket struct {
	Key string `json:"key"`
	Amounts
}

// Pool holds the packing buckets of one reconciliation run and the alias
// table that lets a product code reach a bucket keyed by product id.
// It is consumed destructively by Allocate.
type Pool struct {
	buckets map[string]*Bucket
	aliases map[string]string
	order   []string
}

func productKey(id uuid.UUID) string {
	return "pid:" + id.String()
}

func codeKey(code string) string {
	return "code:" + code
}

// BuildPool sums packing lines into buckets. A line is keyed by its product
// id when present, otherwise by its normalized raw name; lines with neither
// are dropped.
func BuildPool(lines []domain.PackingLine) *Pool {
	p := &Pool{
		buckets: make(map[string]*Bucket),
		aliases: make(map[string]string),
	}

	for _, line := range lines {
		name := NormalizeKey(line.ProductNameRaw)

		var key string
		switch {
		case line.ProductID != nil:
			key = productKey(*line.ProductID)
		case name != "":
			key = codeKey(name)
		default:
			continue
		}

		amounts := Amounts{
			Quantity:    math.Max(0, line.Quantity),
			NetWeight:   math.Max(0, line.NetWeight),
			GrossWeight: math.Max(0, line.GrossWeight),
			Packages:    math.Max(0, line.PackagesCount),
		}

		if b, ok := p.buckets[key]; ok {
			b.Amounts = b.Amounts.add(amounts)
		} else {
			p.buckets[key] = &Bucket{Key: key, Amounts: amounts}
			p.order = append(p.order, key)
		}

		if name != "" {
			p.aliases[name] = key
		}
	}

	for _, key := range p.order {
		if b, ok := p.buckets[key]; ok && b.Quantity <= exhaustedQuantity {
			p.remove(key)
		}
	}

	return p
}

// Get returns the live bucket for key
func (p *Pool) Get(key string) (*Bucket, bool) {
	b, ok := p.buckets[key]
	return b, ok
}

// Alias returns the bucket key a normalized code points to, provided that
// bucket still exists.
func (p *Pool) Alias(code string) (string, bool) {
	key, ok := p.aliases[code]
	if !ok {
		return "", false
	}
	if _, live := p.buckets[key]; !live {
		return "", false
	}
	return key, true
}

// Len returns the number of live buckets
func (p *Pool) Len() int {
	return len(p.buckets)
}

// consume takes need units from the bucket at key, with weights and package
// counts scaled by the same ratio. need <= 0 takes everything available.
func (p *Pool) consume(key string, need float64) (available float64, consumed Amounts) {
	b, ok := p.buckets[key]
	if !ok {
		return 0, Amounts{}
	}

	available = b.Quantity
	used := available
	if need > 0 {
		used = math.Min(available, need)
	}

	ratio := 0.0
	if available > 0 {
		ratio = used / available
	}

	if ratio == 1 {
		consumed = b.Amounts
	} else {
		consumed = b.Amounts.scale(ratio)
		consumed.Quantity = used
	}

	b.Amounts = b.Amounts.sub(consumed)
	if b.Quantity <= exhaustedQuantity {
		p.remove(key)
	}
	return available, consumed
}

// remove deletes a bucket and every alias pointing at it
func (p *Pool) remove(key string) {
	delete(p.buckets, key)
	for code, target := range p.aliases {
		if target == key {
			delete(p.aliases, code)
		}
	}
}

// Leftovers returns the unconsumed buckets in first-seen order
func (p *Pool) Leftovers() []Bucket {
	out := make([]Bucket, 0, len(p.buckets))
	for _, key := range p.order {
		if b, ok := p.buckets[key]; ok {
			out = append(out, *b)
		}
	}
	return out
}
