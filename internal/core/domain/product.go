package domain

import "github.com/shopspring/decimal"

// CategoryAll selects every product when listing the catalog.
const CategoryAll = "All"

type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Category string
	Image    string
}

// InCategory reports whether p is shown under the given filter.
// An empty filter behaves like CategoryAll.
func (p Product) InCategory(filter string) bool {
	return filter == "" || filter == CategoryAll || p.Category == filter
}
