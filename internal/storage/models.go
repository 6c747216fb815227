package storage

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is how delivery dates are stored in SQLite.
const dateLayout = "2006-01-02"

// Order is a single row from the order spreadsheet.
type Order struct {
	OrderNo      string
	Contractor   string
	DeliveryDate time.Time
	Row          int // 1-based sheet row, preserves sheet ordering
}

// Key uniquely identifies an order within a snapshot.
// Order numbers are unique in the sheet, so the key is the order number.
func (o Order) Key() string {
	return o.OrderNo
}

// Label returns the human-readable button text for the order.
func (o Order) Label() string {
	if o.Contractor == "" {
		return fmt.Sprintf("№%s", o.OrderNo)
	}
	return fmt.Sprintf("№%s %s", o.OrderNo, strings.TrimSpace(o.Contractor))
}
