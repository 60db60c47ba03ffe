// Package dataprocessing loads transaction extracts and cleans them before
// RFM analysis.
//
// # Loading
//
// Loader reads CSV (or .xlsx) files, strips a UTF-8 byte order mark, falls
// back to latin-1 when the content is not valid UTF-8 and checks that every
// required column is present:
//
//	InvoiceNo, StockCode, Description, Quantity, InvoiceDate, UnitPrice, CustomerID, Country
//
// An unparsable InvoiceDate is fatal and reports the offending row.
//
// # Cleaning
//
// Cleaner applies an ordered set of filters and logs how many rows each one
// removed:
//
//	1. drop cancelled invoices (InvoiceNo starting with "C")
//	2. drop rows with Quantity <= 0 or UnitPrice <= 0
//	3. drop rows without CustomerID, or fill them with "-1"
//	4. compute TotalPrice = Quantity * UnitPrice
//	5. drop exact duplicate rows
//	6. optionally drop rows above the 95th percentile of Quantity, UnitPrice
//	   and TotalPrice, in that order
//
// Without outlier removal, cleaning already-clean data removes nothing.
package dataprocessing
