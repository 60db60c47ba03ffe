package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TransactionHeader is the header row of a well-formed transaction extract.
const TransactionHeader = "InvoiceNo,StockCode,Description,Quantity,InvoiceDate,UnitPrice,CustomerID,Country"

// WriteCSV writes a header and rows to name inside a fresh temp dir and
// returns the file path.
func WriteCSV(t *testing.T, name, header string, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := header + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// SampleTransactionRows covers cancelled invoices, invalid quantities and
// prices, a missing customer, an exact duplicate and three countries.
func SampleTransactionRows() []string {
	return []string{
		"536365,85123A,WHITE HANGING HEART,6,2010-12-01 08:26:00,2.55,17850,United Kingdom",
		"536365,71053,WHITE METAL LANTERN,6,2010-12-01 08:26:00,3.39,17850,United Kingdom",
		"536366,22633,HAND WARMER UNION JACK,6,2010-12-01 08:28:00,1.85,17850,United Kingdom",
		"536367,84879,ASSORTED BIRD ORNAMENT,32,2010-12-01 08:34:00,1.69,13047,United Kingdom",
		"536368,22960,JAM MAKING SET,6,2011-01-10 09:00:00,4.25,13047,United Kingdom",
		"C536379,D,Discount,-1,2010-12-01 09:41:00,27.50,14527,United Kingdom",
		"536380,22961,JAM JAR,0,2010-12-01 09:45:00,1.45,14527,United Kingdom",
		"536381,22962,JAM POT,2,2010-12-01 09:46:00,0,14527,United Kingdom",
		"536382,22963,JAM LID,3,2010-12-01 09:47:00,1.00,,United Kingdom",
		"536370,22728,ALARM CLOCK BAKELIKE PINK,24,2010-12-01 08:45:00,3.75,12583,France",
		"536370,22728,ALARM CLOCK BAKELIKE PINK,24,2010-12-01 08:45:00,3.75,12583,France",
		"536390,22941,CHRISTMAS LIGHTS,12,2011-12-09 12:50:00,1.25,12347,Iceland",
	}
}
