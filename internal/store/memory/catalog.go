package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/matheusmosca/commerce-orders/internal/domain"
)

var errDuplicateOrderNumber = errors.New("duplicate order number")

// Catalog serves products and customers.
type Catalog struct {
	s *Store
}

func NewCatalog(s *Store) *Catalog {
	return &Catalog{s: s}
}

// ListProducts returns matching products ordered by name.
func (c *Catalog) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	out := []domain.Product{}
	err := c.s.view(ctx, func() error {
		for _, p := range c.s.products {
			if filter.Active != nil && p.Active != *filter.Active {
				continue
			}
			if filter.Category != nil && p.Category != *filter.Category {
				continue
			}
			out = append(out, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (c *Catalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var out *domain.Product
	err := c.s.view(ctx, func() error {
		p, ok := c.s.products[id]
		if !ok {
			return &domain.NotFoundError{Resource: "product", ID: id}
		}
		out = cloneProduct(p)
		return nil
	})
	return out, err
}

// FindOrCreateCustomer fills customer from the stored row matching its phone, inserting it when absent.
func (c *Catalog) FindOrCreateCustomer(ctx context.Context, customer *domain.Customer) (bool, error) {
	created := false
	err := c.s.view(ctx, func() error {
		for _, existing := range c.s.customers {
			if existing.Phone == customer.Phone {
				*customer = *existing
				return nil
			}
		}
		*customer = c.s.insertCustomer(*customer)
		created = true
		return nil
	})
	return created, err
}

func (c *Catalog) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var out *domain.Customer
	err := c.s.view(ctx, func() error {
		existing, ok := c.s.customers[id]
		if !ok {
			return &domain.NotFoundError{Resource: "customer", ID: id}
		}
		clone := *existing
		out = &clone
		return nil
	})
	return out, err
}
