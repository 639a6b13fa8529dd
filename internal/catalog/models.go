package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

// StatusCreated is the only status an order reaches in this service.
const StatusCreated Status = "created"

type Size struct {
	Size     string
	Quantity int
}

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Sizes     []Size
	CreatedAt time.Time
}

type OrderItem struct {
	ProductID string
	Qty       int
}

// Order references products by id only; names and prices are resolved on read.
type Order struct {
	ID        string
	UserID    string
	Items     []OrderItem
	Status    Status
	CreatedAt time.Time
}

// ProductFilter fields are ignored when empty.
type ProductFilter struct {
	Name string // regex, matched case-insensitively
	Size string // exact size label
}

type ProductSummary struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

type ProductList struct {
	Data []ProductSummary
	Page Pagination
}

type OrderLine struct {
	ProductID   string
	ProductName string
	Qty         int
}

type OrderView struct {
	ID    string
	Items []OrderLine
	Total decimal.Decimal
}

type OrderList struct {
	Data []OrderView
	Page Pagination
}
