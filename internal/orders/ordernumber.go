package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderNumberFunc produces a candidate order number. Uniqueness is checked by the caller.
type OrderNumberFunc func(now time.Time) string

// NewOrderNumber returns ORD-YYYYMMDD-XXXXXXXXXXXX with 48 random bits.
func NewOrderNumber(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(token[:12])
}
