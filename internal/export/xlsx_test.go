package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"iso date", "2024-05-01", "01/05/24"},
		{"long slash date", "01/05/2024", "01/05/24"},
		{"already formatted", "01/05/24", "01/05/24"},
		{"free text passes through", "primeiro de maio", "primeiro de maio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestFormatDateIdempotent(t *testing.T) {
	for _, in := range []string{"2024-05-01", "31/12/99", "n/a"} {
		once := FormatDate(in)
		assert.Equal(t, once, FormatDate(once))
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"with seconds", "14:30:59", "14:30"},
		{"already formatted", "14:30", "14:30"},
		{"free text passes through", "meio-dia", "meio-dia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.in))
		})
	}
}

func TestWorkbook(t *testing.T) {
	exporter := New(config.Config{Export: config.Export{SheetName: "Pedidos"}})

	orders := []entity.Order{
		{
			ID:        "001",
			Company:   "Acme",
			Product:   "Caixas",
			Quantity:  5,
			UnitValue: decimal.NewFromFloat(10.50),
			OrderedBy: "Ana",
			Status:    entity.StatusPending,
		},
		{
			ID:            "002",
			Company:       "Mercantil",
			Product:       "Etiquetas",
			Quantity:      200,
			UnitValue:     decimal.NewFromFloat(0.35),
			OrderedBy:     "Carlos",
			Status:        entity.StatusReceived,
			ReceivedBy:    "Bob",
			InvoiceNumber: "NF-7",
			ReceivedDate:  "2024-05-01",
			ReceivedTime:  "09:15:00",
			DocumentType:  entity.DocumentReceipt,
		},
	}

	data, err := exporter.Workbook(orders)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Pedidos"}, f.GetSheetList(), "single sheet output")

	get := func(cell string) string {
		v, err := f.GetCellValue("Pedidos", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "order_id", get("A1"))
	assert.Equal(t, "received_date", get("J1"))

	assert.Equal(t, "001", get("A2"))
	assert.Equal(t, "Pending", get("G2"))
	assert.Equal(t, "", get("J2"))

	assert.Equal(t, "002", get("A3"))
	assert.Equal(t, "01/05/24", get("J3"))
	assert.Equal(t, "09:15", get("K3"))
	assert.Equal(t, "Receipt", get("L3"))
}

func TestWorkbookEmptyLedger(t *testing.T) {
	exporter := New(config.Config{Export: config.Export{SheetName: "Sheet1"}})

	data, err := exporter.Workbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
	assert.Equal(t, "order_id", rows[0][0])
}
