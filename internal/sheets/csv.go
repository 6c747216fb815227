package sheets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avolkov/osg-linebot-go/internal/dateparse"
	"github.com/avolkov/osg-linebot-go/internal/storage"
)

// Required header names in the first sheet row. Matching is
// case-insensitive after trimming.
const (
	headerOrderNo      = "orderno"
	headerDeliveryDate = "deliverydate"
	headerContractor   = "contractor"
)

// ParseOrders reads the CSV export of the order sheet.
//
// The first row must contain OrderNo and DeliveryDate headers; a
// Contractor column is optional. Rows with an empty order number or an
// unparseable delivery date are skipped and counted. A later row with a
// duplicate order number wins, matching spreadsheet semantics where the
// bottom row is the current one.
func ParseOrders(r io.Reader) (orders []storage.Order, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Sheet rows may have trailing empty cells trimmed

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("sheet is empty")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header row: %w", err)
	}

	colOrder, colDate, colContractor := -1, -1, -1
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case headerOrderNo:
			colOrder = i
		case headerDeliveryDate:
			colDate = i
		case headerContractor:
			colContractor = i
		}
	}
	if colOrder < 0 || colDate < 0 {
		return nil, 0, fmt.Errorf("OrderNo/DeliveryDate headers not found, got: %v", header)
	}

	byKey := make(map[string]int) // order number -> index in orders

	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to read row %d: %w", rowNum+1, err)
		}
		rowNum++

		if colOrder >= len(row) || colDate >= len(row) {
			skipped++
			continue
		}

		orderNo := strings.TrimSpace(row[colOrder])
		if orderNo == "" {
			skipped++
			continue
		}

		deliveryDate, err := dateparse.ParseFixed(row[colDate], time.UTC)
		if err != nil {
			skipped++
			continue
		}

		contractor := ""
		if colContractor >= 0 && colContractor < len(row) {
			contractor = strings.TrimSpace(row[colContractor])
		}

		order := storage.Order{
			OrderNo:      orderNo,
			Contractor:   contractor,
			DeliveryDate: deliveryDate,
			Row:          rowNum,
		}

		if idx, seen := byKey[orderNo]; seen {
			orders[idx] = order
			continue
		}
		byKey[orderNo] = len(orders)
		orders = append(orders, order)
	}

	// An all-garbage or header-only export is a broken sheet, not an
	// empty order book; refusing it keeps the previous snapshot serving.
	if len(orders) == 0 {
		return nil, skipped, fmt.Errorf("no usable order rows (%d skipped)", skipped)
	}

	return orders, skipped, nil
}
