package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

const (
	dateLayout = "02/01/06"
	timeLayout = "15:04"
)

// header is the fixed column order of the exported sheet, matching the
// flat-file schema.
var header = []any{
	"order_id", "company", "product", "quantity", "unit_value",
	"ordered_by", "status", "received_by", "invoice_number",
	"received_date", "received_time", "document_type", "incorrect_value",
}

// Module provides the exporter to Fx.
var Module = fx.Provide(New)

// Exporter renders the ledger as a single-sheet xlsx workbook.
type Exporter struct {
	sheet string
}

// New builds an Exporter using the configured sheet name.
func New(cfg config.Config) *Exporter {
	return &Exporter{sheet: cfg.Export.SheetName}
}

// Workbook serializes the given orders to an xlsx byte stream: one sheet,
// rows and columns in their current order, temporal columns normalized.
func (e *Exporter) Workbook(orders []entity.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if e.sheet != "" && e.sheet != sheet {
		if err := f.SetSheetName(sheet, e.sheet); err != nil {
			return nil, err
		}
		sheet = e.sheet
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, o := range orders {
		unitValue, _ := o.UnitValue.Float64()
		row := []any{
			o.ID,
			o.Company,
			o.Product,
			o.Quantity,
			unitValue,
			o.OrderedBy,
			string(o.Status),
			o.ReceivedBy,
			o.InvoiceNumber,
			FormatDate(o.ReceivedDate),
			FormatTime(o.ReceivedTime),
			string(o.DocumentType),
			o.IncorrectValue,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatDate normalizes a stored receipt date to DD/MM/YY. Values that
// are not in a recognized layout pass through unchanged, so formatting
// an already-formatted table is a no-op.
func FormatDate(s string) string {
	if s == "" {
		return s
	}
	for _, layout := range []string{dateLayout, "2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	return s
}

// FormatTime normalizes a stored receipt time to HH:MM; unrecognized
// values pass through unchanged.
func FormatTime(s string) string {
	if s == "" {
		return s
	}
	for _, layout := range []string{timeLayout, "15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(timeLayout)
		}
	}
	return s
}
