package accounts

import (
	"sort"

	"github.com/cleared-dev/teller/internal/model"
)

// Catalog is the immutable set of products the bank offers.
type Catalog struct {
	byKey map[string]model.Product
}

// NewCatalog builds a Catalog from products. Duplicates collapse.
func NewCatalog(products ...model.Product) *Catalog {
	byKey := make(map[string]model.Product, len(products))
	for _, p := range products {
		byKey[p.Key()] = p
	}
	return &Catalog{byKey: byKey}
}

// DefaultProducts returns the products offered out of the box: savings in
// pesos and dollars, checking in pesos.
func DefaultProducts() []model.Product {
	return []model.Product{
		{Type: model.AccountTypeSavings, Currency: model.CurrencyPesos},
		{Type: model.AccountTypeChecking, Currency: model.CurrencyPesos},
		{Type: model.AccountTypeSavings, Currency: model.CurrencyDollars},
	}
}

// DefaultCatalog returns a Catalog of DefaultProducts.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultProducts()...)
}

// Supports reports whether p is offered.
func (c *Catalog) Supports(p model.Product) bool {
	_, ok := c.byKey[p.Key()]
	return ok
}

// Products returns the offered products sorted by key.
func (c *Catalog) Products() []model.Product {
	out := make([]model.Product, 0, len(c.byKey))
	for _, p := range c.byKey {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Len returns the number of offered products.
func (c *Catalog) Len() int {
	return len(c.byKey)
}
