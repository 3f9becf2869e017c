package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/commerce-orders/internal/domain"
)

const customerColumns = `id, phone, name, email, created_at, updated_at`

// Catalog serves products and customers straight from the pool.
type Catalog struct {
	db *DB
}

func NewCatalog(db *DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1::boolean IS NULL OR active = $1)
		  AND ($2::text IS NULL OR category = $2)
		ORDER BY name, id`

	rows, err := c.db.pool.Query(ctx, query, filter.Active, filter.Category)
	if err != nil {
		return nil, translate("list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, translate("list products", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list products", err)
	}
	return products, nil
}

func (c *Catalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(c.db.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return nil, translate("get product", err)
	}
	return p, nil
}

// CreateProduct inserts a catalog row. Used for seeding.
func (c *Catalog) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (name, price, stock, category, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := c.db.pool.QueryRow(ctx, query, p.Name, p.Price, p.Stock, p.Category, p.Active).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate("create product", err)
}

// FindOrCreateCustomer fills customer from the row matching its phone, inserting it when absent.
func (c *Catalog) FindOrCreateCustomer(ctx context.Context, customer *domain.Customer) (bool, error) {
	insert := `
		INSERT INTO customers (phone, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO NOTHING
		RETURNING ` + customerColumns

	err := scanCustomer(c.db.pool.QueryRow(ctx, insert, customer.Phone, customer.Name, customer.Email), customer)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, translate("create customer", err)
	}

	err = scanCustomer(c.db.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, customer.Phone), customer)
	if err != nil {
		return false, translate("find customer", err)
	}
	return false, nil
}

func (c *Catalog) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := scanCustomer(c.db.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id), &customer)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "customer", ID: id}
	}
	if err != nil {
		return nil, translate("get customer", err)
	}
	return &customer, nil
}

func scanCustomer(row pgx.Row, c *domain.Customer) error {
	return row.Scan(&c.ID, &c.Phone, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
}
