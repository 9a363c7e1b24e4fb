// Package invoice turns an order snapshot into a PDF invoice.
package invoice

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is how the generation time is printed.
const TimestampLayout = "2006-01-02 15:04:05"

// LineItem is one stored order line.
type LineItem struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Snapshot is everything the invoice shows about an order.
type Snapshot struct {
	OrderID     uint
	OrderRef    string
	WarehouseID uint
	Items       []LineItem
}

// Total sums the line totals.
func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range s.Items {
		total = total.Add(li.Total())
	}
	return total
}

type Options struct {
	Organization string
	Contact      string
	Currency     string
}

func DefaultOptions() Options {
	return Options{
		Organization: "SMART INVENTORY SOLUTIONS PVT. LTD.",
		Contact:      "support@smartinventory.com",
		Currency:     "INR",
	}
}

// Row is one rendered table line. Shaded rows get the darker fill.
type Row struct {
	ProductID string
	Quantity  string
	UnitPrice string
	LineTotal string
	Shaded    bool
}

// Layout is the fully formatted content of an invoice, independent of the
// output format.
type Layout struct {
	Organization  string
	InvoiceNumber string
	GeneratedAt   time.Time
	Date          string
	OrderRef      string
	WarehouseID   string
	Headers       []string
	Rows          []Row
	Total         decimal.Decimal
	GrandTotal    string
	Footer        []string
}

func InvoiceNumber(orderID uint) string {
	return fmt.Sprintf("INV-%04d", orderID)
}

// BlobName is the storage key of an order's invoice. Regenerating an
// invoice reuses it.
func BlobName(orderID uint) string {
	return fmt.Sprintf("invoice_order_%d.pdf", orderID)
}

func money(currency string, d decimal.Decimal) string {
	return currency + " " + d.StringFixed(2)
}

// BuildLayout formats s. The result depends only on its arguments.
func BuildLayout(s Snapshot, generatedAt time.Time, opts Options) Layout {
	def := DefaultOptions()
	if opts.Organization == "" {
		opts.Organization = def.Organization
	}
	if opts.Contact == "" {
		opts.Contact = def.Contact
	}
	if opts.Currency == "" {
		opts.Currency = def.Currency
	}

	rows := make([]Row, 0, len(s.Items))
	for i, li := range s.Items {
		rows = append(rows, Row{
			ProductID: strconv.FormatUint(uint64(li.ProductID), 10),
			Quantity:  strconv.Itoa(li.Quantity),
			UnitPrice: li.UnitPrice.StringFixed(2),
			LineTotal: money(opts.Currency, li.Total()),
			Shaded:    i%2 == 1,
		})
	}

	total := s.Total()
	return Layout{
		Organization:  opts.Organization,
		InvoiceNumber: InvoiceNumber(s.OrderID),
		GeneratedAt:   generatedAt,
		Date:          generatedAt.Format(TimestampLayout),
		OrderRef:      s.OrderRef,
		WarehouseID:   strconv.FormatUint(uint64(s.WarehouseID), 10),
		Headers: []string{
			"Product ID",
			"Quantity",
			fmt.Sprintf("Price (%s)", opts.Currency),
			fmt.Sprintf("Total (%s)", opts.Currency),
		},
		Rows:       rows,
		Total:      total,
		GrandTotal: money(opts.Currency, total),
		Footer: []string{
			"Thank you for your business!",
			"Contact: " + opts.Contact,
		},
	}
}
