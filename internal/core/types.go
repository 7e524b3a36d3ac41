package core

import "io"

// Schema column names, in output order.
const (
	ColOrderNo          = "Order No."
	ColOrderTime        = "Order Time"
	ColTradeNo          = "Trade No."
	ColTradeTime        = "Trade Time"
	ColSecurity         = "Security/Contract Description"
	ColBuySell          = "Buy (B) / Sell (S)"
	ColQuantity         = "Quantity"
	ColGrossRateForeign = "Gross Rate/Trade Price Per unit (in foreign currency)"
	ColGrossRate        = "Gross Rate/trade price per Unit (Rs)"
	ColBrokerage        = "Brokerage per Unit (Rs)"
	ColNetRate          = "Net Rate per Unit (Rs)"
	ColClosingRate      = "Closing Rate Per Unit(Rs)"
	ColNetTotal         = "** Net Total (Before Levies)(Rs.)"
	ColRemark           = "R e m a r k"

	ColSourceFile = "Source File"
	ColDate       = "Date"
)

// Columns is the fixed 14-column trade schema. Cell i of a table row maps to
// Columns[i].
var Columns = []string{
	ColOrderNo,
	ColOrderTime,
	ColTradeNo,
	ColTradeTime,
	ColSecurity,
	ColBuySell,
	ColQuantity,
	ColGrossRateForeign,
	ColGrossRate,
	ColBrokerage,
	ColNetRate,
	ColClosingRate,
	ColNetTotal,
	ColRemark,
}

// Header returns the 16 CSV header names: the schema plus source file and date.
func Header() []string {
	h := make([]string, 0, len(Columns)+2)
	h = append(h, Columns...)
	return append(h, ColSourceFile, ColDate)
}

// TradeRecord is one normalized trade line. Field order matches Header and
// the csv tags drive gocsv serialization.
type TradeRecord struct {
	OrderNo          string `csv:"Order No." json:"Order No."`
	OrderTime        string `csv:"Order Time" json:"Order Time"`
	TradeNo          string `csv:"Trade No." json:"Trade No."`
	TradeTime        string `csv:"Trade Time" json:"Trade Time"`
	Security         string `csv:"Security/Contract Description" json:"Security/Contract Description"`
	BuySell          string `csv:"Buy (B) / Sell (S)" json:"Buy (B) / Sell (S)"`
	Quantity         string `csv:"Quantity" json:"Quantity"`
	GrossRateForeign string `csv:"Gross Rate/Trade Price Per unit (in foreign currency)" json:"Gross Rate/Trade Price Per unit (in foreign currency)"`
	GrossRate        string `csv:"Gross Rate/trade price per Unit (Rs)" json:"Gross Rate/trade price per Unit (Rs)"`
	Brokerage        string `csv:"Brokerage per Unit (Rs)" json:"Brokerage per Unit (Rs)"`
	NetRate          string `csv:"Net Rate per Unit (Rs)" json:"Net Rate per Unit (Rs)"`
	ClosingRate      string `csv:"Closing Rate Per Unit(Rs)" json:"Closing Rate Per Unit(Rs)"`
	NetTotal         string `csv:"** Net Total (Before Levies)(Rs.)" json:"** Net Total (Before Levies)(Rs.)"`
	Remark           string `csv:"R e m a r k" json:"R e m a r k"`
	SourceFile       string `csv:"Source File" json:"Source File"`
	Date             string `csv:"Date" json:"Date"`
}

// schemaFields points at the 14 schema fields in Columns order.
func (r *TradeRecord) schemaFields() []*string {
	return []*string{
		&r.OrderNo,
		&r.OrderTime,
		&r.TradeNo,
		&r.TradeTime,
		&r.Security,
		&r.BuySell,
		&r.Quantity,
		&r.GrossRateForeign,
		&r.GrossRate,
		&r.Brokerage,
		&r.NetRate,
		&r.ClosingRate,
		&r.NetTotal,
		&r.Remark,
	}
}

// SchemaValues returns the 14 schema values in Columns order.
func (r TradeRecord) SchemaValues() []string {
	fields := r.schemaFields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = *f
	}
	return out
}

// Values returns all 16 values in Header order.
func (r TradeRecord) Values() []string {
	return append(r.SchemaValues(), r.SourceFile, r.Date)
}

// Map returns the record keyed by header name. It always has 16 keys.
func (r TradeRecord) Map() map[string]string {
	header := Header()
	values := r.Values()
	m := make(map[string]string, len(header))
	for i, k := range header {
		m[k] = values[i]
	}
	return m
}

// Upload is one attached file of a batch request.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// BatchResult is the aggregate of one batch request.
type BatchResult struct {
	BatchID    string
	Files      int
	Records    []TradeRecord
	OutputFile string // empty when nothing was written
}

// TotalTrades returns the number of aggregated records.
func (r *BatchResult) TotalTrades() int {
	return len(r.Records)
}
