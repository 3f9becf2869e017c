// Package catalog serves the product and customer lookups around order placement.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheusmosca/commerce-orders/internal/domain"
)

type Store interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	FindOrCreateCustomer(ctx context.Context, customer *domain.Customer) (bool, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
}

type UseCase struct {
	store Store
}

func NewUseCase(store Store) *UseCase {
	return &UseCase{store: store}
}

func (uc *UseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := uc.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (uc *UseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := uc.store.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// FindOrCreateCustomer returns the customer owning phone, creating it when absent.
// The bool reports whether a row was created. Name and email of an existing
// customer are left untouched.
func (uc *UseCase) FindOrCreateCustomer(ctx context.Context, phone, name string, email *string) (*domain.Customer, bool, error) {
	phone = strings.TrimSpace(phone)
	name = strings.TrimSpace(name)
	if phone == "" {
		return nil, false, &domain.ValidationError{Field: "phone", Reason: "is required"}
	}
	if name == "" {
		return nil, false, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if email != nil && strings.TrimSpace(*email) == "" {
		email = nil
	}

	customer := &domain.Customer{Phone: phone, Name: name, Email: email}
	created, err := uc.store.FindOrCreateCustomer(ctx, customer)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find or create customer: %w", err)
	}
	return customer, created, nil
}

func (uc *UseCase) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := uc.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}
