package declaration

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tradeops/backoffice/internal/domain"
)

// PlaceholderType is used when no product type can be resolved
const PlaceholderType = "Belirtilecek"

// RoleRule tells which attributes carry one role. Explicit DefinitionIDs win;
// without them the definitions are matched by name (NameTokens anywhere in
// the folded name, NamePrefixes at its start). Extra attributes have no
// definition and are always matched by name.
type RoleRule struct {
	DefinitionIDs []uuid.UUID
	NameTokens    []string
	NamePrefixes  []string
}

func (r RoleRule) matchesName(name string) bool {
	folded := foldName(name)
	if folded == "" {
		return false
	}
	for _, token := range r.NameTokens {
		if t := foldName(token); t != "" && strings.Contains(folded, t) {
			return true
		}
	}
	for _, prefix := range r.NamePrefixes {
		if p := foldName(prefix); p != "" && strings.HasPrefix(folded, p) {
			return true
		}
	}
	return false
}

// RoleMapping maps attribute roles to the attributes that carry them
type RoleMapping struct {
	Rules           map[domain.AttributeRole]RoleRule
	PlaceholderType string
}

// DefaultRoleMapping discovers roles by definition name
func DefaultRoleMapping() RoleMapping {
	return RoleMapping{
		Rules: map[domain.AttributeRole]RoleRule{
			domain.AttributeRoleType:   {NameTokens: []string{"tip"}},
			domain.AttributeRoleLength: {NamePrefixes: []string{"uzunluk"}},
			domain.AttributeRoleWeight: {NameTokens: []string{"weight", "ağırlık", "agirlik", "kg"}},
		},
		PlaceholderType: PlaceholderType,
	}
}

// Bind resolves the mapping against the known definitions and returns, per
// role, the set of definition ids carrying it.
func (m RoleMapping) Bind(defs []domain.AttributeDefinition) map[domain.AttributeRole]map[uuid.UUID]bool {
	bound := make(map[domain.AttributeRole]map[uuid.UUID]bool, len(m.Rules))
	for role, rule := range m.Rules {
		ids := make(map[uuid.UUID]bool)
		if len(rule.DefinitionIDs) > 0 {
			for _, id := range rule.DefinitionIDs {
				ids[id] = true
			}
		} else {
			for _, def := range defs {
				if rule.matchesName(def.Name) {
					ids[def.ID] = true
				}
			}
		}
		bound[role] = ids
	}
	return bound
}

// ResolvedAttributes are the regulatory attributes derived for one line
type ResolvedAttributes struct {
	ProductType   string
	Length        string
	WeightPerUnit *float64
}

// AttributeResolver derives type, length and per-unit weight of invoice lines
// from the catalog attributes of their products.
type AttributeResolver struct {
	mapping RoleMapping
	roles   map[domain.AttributeRole]map[uuid.UUID]bool
	values  map[uuid.UUID][]domain.AttributeValue
	extras  map[uuid.UUID][]domain.ExtraAttribute
}

// NewAttributeResolver indexes attribute rows by product
func NewAttributeResolver(
	mapping RoleMapping,
	defs []domain.AttributeDefinition,
	values []domain.AttributeValue,
	extras []domain.ExtraAttribute,
) *AttributeResolver {
	if mapping.PlaceholderType == "" {
		mapping.PlaceholderType = PlaceholderType
	}

	r := &AttributeResolver{
		mapping: mapping,
		roles:   mapping.Bind(defs),
		values:  make(map[uuid.UUID][]domain.AttributeValue),
		extras:  make(map[uuid.UUID][]domain.ExtraAttribute),
	}
	for _, v := range values {
		r.values[v.ProductID] = append(r.values[v.ProductID], v)
	}
	for _, e := range extras {
		r.extras[e.ProductID] = append(r.extras[e.ProductID], e)
	}
	return r
}

// Resolve derives the attributes of one invoice line
func (r *AttributeResolver) Resolve(line domain.InvoiceLine) ResolvedAttributes {
	var values []domain.AttributeValue
	var extras []domain.ExtraAttribute
	if line.ProductID != nil {
		values = r.values[*line.ProductID]
		extras = r.extras[*line.ProductID]
	}

	out := ResolvedAttributes{
		ProductType: r.resolveType(line, values, extras),
		Length:      r.structured(domain.AttributeRoleLength, values),
	}

	raw := r.structured(domain.AttributeRoleWeight, values)
	if raw == "" {
		raw = r.extra(domain.AttributeRoleWeight, extras)
	}
	if w, ok := parseNumber(raw); ok {
		out.WeightPerUnit = &w
	}

	return out
}

func (r *AttributeResolver) resolveType(
	line domain.InvoiceLine,
	values []domain.AttributeValue,
	extras []domain.ExtraAttribute,
) string {
	sources := []func() string{
		func() string { return r.structured(domain.AttributeRoleType, values) },
		func() string { return r.extra(domain.AttributeRoleType, extras) },
		func() string {
			if line.ProductTypeName == nil {
				return ""
			}
			return strings.TrimSpace(*line.ProductTypeName)
		},
	}
	for _, source := range sources {
		if v := source(); v != "" {
			return v
		}
	}
	return r.mapping.PlaceholderType
}

// structured returns the first non-empty value whose definition carries role
func (r *AttributeResolver) structured(role domain.AttributeRole, values []domain.AttributeValue) string {
	ids := r.roles[role]
	for _, v := range values {
		if !ids[v.DefinitionID] {
			continue
		}
		if s := strings.TrimSpace(v.Value); s != "" {
			return s
		}
	}
	return ""
}

// extra returns the first non-empty free-form value whose name carries role
func (r *AttributeResolver) extra(role domain.AttributeRole, extras []domain.ExtraAttribute) string {
	rule, ok := r.mapping.Rules[role]
	if !ok {
		return ""
	}
	for _, e := range extras {
		if !rule.matchesName(e.Name) {
			continue
		}
		if s := strings.TrimSpace(e.Value); s != "" {
			return s
		}
	}
	return ""
}

// lengthSortValue returns the numeric value of a length attribute
func lengthSortValue(length string) (float64, bool) {
	if length == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(length), 64); err == nil {
		return v, true
	}
	return parseNumber(length)
}
