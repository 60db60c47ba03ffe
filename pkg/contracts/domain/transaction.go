package domain

import (
	"strings"
	"time"
)

// Required input columns, in the order they are written back out.
const (
	ColInvoiceNo   = "InvoiceNo"
	ColStockCode   = "StockCode"
	ColDescription = "Description"
	ColQuantity    = "Quantity"
	ColInvoiceDate = "InvoiceDate"
	ColUnitPrice   = "UnitPrice"
	ColCustomerID  = "CustomerID"
	ColCountry     = "Country"
	ColTotalPrice  = "TotalPrice"
)

// RequiredColumns lists the header columns every input extract must carry.
var RequiredColumns = []string{
	ColInvoiceNo,
	ColStockCode,
	ColDescription,
	ColQuantity,
	ColInvoiceDate,
	ColUnitPrice,
	ColCustomerID,
	ColCountry,
}

// CancelledInvoicePrefix marks credit notes in InvoiceNo.
const CancelledInvoicePrefix = "C"

// FilledCustomerID replaces a missing CustomerID when missing customers are filled.
const FilledCustomerID = "-1"

// Transaction is one invoice line of the input extract.
type Transaction struct {
	InvoiceNo   string    `json:"invoice_no" db:"invoice_no"`
	StockCode   string    `json:"stock_code" db:"stock_code"`
	Description string    `json:"description" db:"description"`
	Quantity    int       `json:"quantity" db:"quantity"`
	InvoiceDate time.Time `json:"invoice_date" db:"invoice_date"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	CustomerID  string    `json:"customer_id,omitempty" db:"customer_id"`
	Country     string    `json:"country" db:"country"`
	TotalPrice  float64   `json:"total_price" db:"total_price"`
}

// IsCancelled reports whether the line belongs to a cancelled invoice.
func (t Transaction) IsCancelled() bool {
	return strings.HasPrefix(t.InvoiceNo, CancelledInvoicePrefix)
}

// HasCustomer reports whether the line carries a customer id.
func (t Transaction) HasCustomer() bool {
	return t.CustomerID != ""
}
