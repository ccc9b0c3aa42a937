// Package dataset defines the sales transaction model and the CSV codec for
// the raw input and the canonical cleaned table.
package dataset

import (
	"time"
)

// Raw input column names. These match the input header exactly, case and
// spelling sensitive.
const (
	ColInvoiceID    = "Invoice ID"
	ColBranch       = "Branch"
	ColCity         = "City"
	ColCustomerType = "Customer type"
	ColGender       = "Gender"
	ColProductLine  = "Product line"
	ColUnitPrice    = "Unit price"
	ColQuantity     = "Quantity"
	ColTax          = "Tax 5%"
	ColTotal        = "Total"
	ColDate         = "Date"
	ColTime         = "Time"
	ColPayment      = "Payment"
	ColCOGS         = "cogs"
	ColGrossIncome  = "gross income"
	ColRating       = "Rating"
)

// Derived column names appended to the cleaned CSV
const (
	ColHour      = "Hour"
	ColDayOfWeek = "Day_of_week"
	ColMonth     = "Month"
	ColQuarter   = "Quarter"
)

// RequiredColumns is the full raw column set; a header missing any of these
// is a fatal load error.
var RequiredColumns = []string{
	ColInvoiceID, ColBranch, ColCity, ColCustomerType, ColGender,
	ColProductLine, ColUnitPrice, ColQuantity, ColTax, ColTotal,
	ColDate, ColTime, ColPayment, ColCOGS, ColGrossIncome, ColRating,
}

// NumericColumns are imputed with the per-column median
var NumericColumns = []string{
	ColUnitPrice, ColQuantity, ColTax, ColTotal, ColCOGS, ColGrossIncome,
	ColRating,
}

// CategoricalColumns are imputed with the per-column mode
var CategoricalColumns = []string{
	ColBranch, ColCity, ColCustomerType, ColGender, ColProductLine, ColPayment,
}

// RawRow is one uncleaned input row keyed by column name. An empty string
// marks a missing value.
type RawRow map[string]string

// Clone returns a copy of the row
func (r RawRow) Clone() RawRow {
	out := make(RawRow, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Record is one cleaned sales transaction. All fields are populated and the
// derived attributes are computed once during cleaning; downstream consumers
// treat records as immutable.
type Record struct {
	InvoiceID    string
	Branch       string
	City         string
	CustomerType string
	Gender       string
	ProductLine  string
	UnitPrice    float64
	Quantity     int
	Tax          float64
	Total        float64
	Date         time.Time
	Time         string
	Payment      string
	COGS         float64
	GrossIncome  float64
	Rating       float64

	Hour      int
	DayOfWeek string
	Month     string
	Quarter   int
}
