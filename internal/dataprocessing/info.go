package dataprocessing

import (
	"time"

	"custseg/internal/stats"
	"custseg/pkg/contracts/domain"
)

// previewRows is the number of leading rows included in DataInfo.
const previewRows = 5

// DataInfo is the basic profile of a loaded extract.
type DataInfo struct {
	Source          string                       `json:"source"`
	Encoding        string                       `json:"encoding"`
	Rows            int                          `json:"rows"`
	Columns         []string                     `json:"columns"`
	MissingValues   map[string]int               `json:"missing_values"`
	DuplicateRows   int                          `json:"duplicate_rows"`
	FirstDate       time.Time                    `json:"first_date"`
	LastDate        time.Time                    `json:"last_date"`
	UniqueCustomers int                          `json:"unique_customers"`
	UniqueInvoices  int                          `json:"unique_invoices"`
	UniqueProducts  int                          `json:"unique_products"`
	UniqueCountries int                          `json:"unique_countries"`
	Numeric         map[string]stats.Description `json:"numeric"`
	Preview         []domain.Transaction         `json:"preview"`
}

// Info profiles a dataset: shape, missing values, duplicates, date range,
// cardinalities and a numeric description of Quantity and UnitPrice.
func Info(ds *Dataset) DataInfo {
	txns := ds.Transactions
	info := DataInfo{
		Source:        ds.Source,
		Encoding:      ds.Encoding,
		Rows:          len(txns),
		Columns:       ds.Columns,
		MissingValues: ds.MissingValues,
		DuplicateRows: CountDuplicates(txns),
	}

	customers := make(map[string]struct{})
	invoices := make(map[string]struct{})
	products := make(map[string]struct{})
	countries := make(map[string]struct{})
	quantities := make([]float64, 0, len(txns))
	prices := make([]float64, 0, len(txns))

	for i, t := range txns {
		if i == 0 || t.InvoiceDate.Before(info.FirstDate) {
			info.FirstDate = t.InvoiceDate
		}
		if i == 0 || t.InvoiceDate.After(info.LastDate) {
			info.LastDate = t.InvoiceDate
		}
		if t.HasCustomer() {
			customers[t.CustomerID] = struct{}{}
		}
		invoices[t.InvoiceNo] = struct{}{}
		products[t.StockCode] = struct{}{}
		countries[t.Country] = struct{}{}
		quantities = append(quantities, float64(t.Quantity))
		prices = append(prices, t.UnitPrice)
	}

	info.UniqueCustomers = len(customers)
	info.UniqueInvoices = len(invoices)
	info.UniqueProducts = len(products)
	info.UniqueCountries = len(countries)
	info.Numeric = map[string]stats.Description{
		domain.ColQuantity:  stats.Describe(quantities),
		domain.ColUnitPrice: stats.Describe(prices),
	}

	n := previewRows
	if len(txns) < n {
		n = len(txns)
	}
	info.Preview = txns[:n]

	return info
}

// CountDuplicates returns the number of rows identical to an earlier row.
func CountDuplicates(txns []domain.Transaction) int {
	seen := make(map[domain.Transaction]struct{}, len(txns))
	dups := 0
	for _, t := range txns {
		if _, ok := seen[t]; ok {
			dups++
			continue
		}
		seen[t] = struct{}{}
	}
	return dups
}
