package invalidation

import (
	"strings"
	"unicode"
)

// Graph maps an entity name to the key patterns a mutation of that entity
// must clear. The table is hand-maintained; there is no automatic dependency
// inference. A missing edge means dependent queries serve stale data until
// natural TTL expiry, so any new cross-entity embed belongs here.
type Graph map[string][]string

// DefaultGraph returns the point-of-sale dependency table. Entities whose
// names are embedded in other entities' cached listings (unit names inside
// product rows, customer names inside sale rows, and so on) clear the
// dependent patterns too.
func DefaultGraph() Graph {
	return Graph{
		"product":   {"products"},
		"category":  {"categories", "products"},
		"brand":     {"brands", "products"},
		"unit":      {"units", "products"},
		"variation": {"variations", "products"},
		"tax":       {"taxes", "products"},
		"customer":  {"customers", "sales"},
		"supplier":  {"suppliers", "purchases"},
		"sale":      {"sales", "stock", "reports"},
		"purchase":  {"purchases", "stock", "products", "reports"},
		"stock":     {"stock", "products", "reports"},
		"expense":   {"expenses", "reports"},
		"warehouse": {"warehouses", "stock"},
		"coupon":    {"coupons", "sales"},
	}
}

// Patterns returns the clear patterns registered for entity. The name is
// normalized first, so "Product", "product" and "PRODUCT" resolve alike.
// Unknown entities return nil.
func (g Graph) Patterns(entity string) []string {
	patterns := g[normalizeEntity(entity)]
	return append([]string(nil), patterns...)
}

// Entities returns every entity name the graph knows about.
func (g Graph) Entities() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	return names
}

// normalizeEntity lowercases the name and folds camel-case boundaries and
// punctuation into underscores. Reflected type names can carry pointers and
// generic suffixes; leaving those in would break pattern lookups.
func normalizeEntity(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)

	underscore := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 && !underscore {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			underscore = false
		case unicode.IsLower(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			underscore = false
		default:
			if b.Len() > 0 && !underscore {
				b.WriteByte('_')
			}
			underscore = true
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}
