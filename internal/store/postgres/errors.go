package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/matheusmosca/commerce-orders/internal/domain"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeNumericOutOfRange   = "22003"
)

// Constraint names from the schema.
const (
	constraintOrdersCustomer = "orders_customer_id_fkey"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == codeUniqueViolation
}

// translate wraps driver errors into the domain taxonomy.
func translate(op string, err error) error {
	return domain.WrapStoreError(op, err)
}
