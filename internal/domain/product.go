package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — товар продавца в каталоге.
type Product struct {
	ID        string
	VendorID  string
	Name      string
	Price     decimal.Decimal
	Stock     int32
	UpdatedAt time.Time
}
