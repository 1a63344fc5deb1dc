package order

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/export"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	cfg := config.Config{
		Storage: config.Storage{
			Driver:        "file",
			FilePath:      filepath.Join(t.TempDir(), "pedidos.csv"),
			AutoAssignIDs: true,
			IDPadding:     4,
		},
		Export: config.Export{SheetName: "Sheet1"},
	}

	store, err := repo.NewFileStore(cfg.Storage, zap.NewNop())
	require.NoError(t, err)

	return NewService(Params{
		Repository: store,
		Exporter:   export.New(cfg),
		Config:     cfg,
		Logger:     zap.NewNop(),
	})
}

func validIntake() dto.IntakeRequest {
	return dto.IntakeRequest{
		OrderID:   "001",
		Company:   "Acme",
		Product:   "Caixas",
		Quantity:  5,
		UnitValue: decimal.NewFromFloat(10.50),
		OrderedBy: "Ana",
	}
}

func TestIntakeAppendsPendingOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	order, err := svc.Intake(ctx, validIntake())
	require.NoError(t, err)

	assert.Equal(t, "001", order.ID)
	assert.Equal(t, entity.StatusPending, order.Status)
	assert.Empty(t, order.ReceivedBy)
	assert.Empty(t, order.InvoiceNumber)
	assert.Empty(t, order.ReceivedDate)
	assert.Empty(t, order.ReceivedTime)

	orders, err := svc.List(ctx, repo.Filter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestIntakeDuplicateIDRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Intake(ctx, validIntake())
	require.NoError(t, err)

	_, err = svc.Intake(ctx, validIntake())
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())

	orders, err := svc.List(ctx, repo.Filter{})
	require.NoError(t, err)
	assert.Len(t, orders, 1, "rejected intake must not grow the ledger")
}

func TestIntakeValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dto.IntakeRequest)
	}{
		{"missing company", func(r *dto.IntakeRequest) { r.Company = "" }},
		{"missing product", func(r *dto.IntakeRequest) { r.Product = " " }},
		{"missing ordered_by", func(r *dto.IntakeRequest) { r.OrderedBy = "" }},
		{"zero quantity", func(r *dto.IntakeRequest) { r.Quantity = 0 }},
		{"negative quantity", func(r *dto.IntakeRequest) { r.Quantity = -3 }},
		{"negative unit value", func(r *dto.IntakeRequest) { r.UnitValue = decimal.NewFromFloat(-0.01) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIntake()
			tt.mutate(&req)

			_, err := svc.Intake(ctx, req)
			require.Error(t, err)
			assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())

			orders, err := svc.List(ctx, repo.Filter{})
			require.NoError(t, err)
			assert.Empty(t, orders, "failed validation must not mutate the ledger")
		})
	}
}

func TestIntakeAutoAssignsID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	req := validIntake()
	req.OrderID = ""
	first, err := svc.Intake(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "0001", first.ID)

	second, err := svc.Intake(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "0002", second.ID)
}

func TestConfirmReceipt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Intake(ctx, validIntake())
	require.NoError(t, err)

	order, err := svc.ConfirmReceipt(ctx, dto.ReceiptRequest{
		OrderID:       "001",
		ReceivedBy:    "Bob",
		InvoiceNumber: "NF-99",
		ReceivedDate:  "2024-05-01",
		ReceivedTime:  "14:30",
		DocumentType:  string(entity.DocumentInvoice),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusReceived, order.Status)
	assert.Equal(t, "Bob", order.ReceivedBy)
	assert.Equal(t, "NF-99", order.InvoiceNumber)
	assert.Equal(t, "2024-05-01", order.ReceivedDate)
	assert.Equal(t, "14:30", order.ReceivedTime)

	// Intake fields are untouched by the receipt transition.
	assert.Equal(t, "Acme", order.Company)
	assert.Equal(t, 5, order.Quantity)
	assert.True(t, decimal.NewFromFloat(10.50).Equal(order.UnitValue))
}

func TestConfirmReceiptUnknownOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Intake(ctx, validIntake())
	require.NoError(t, err)

	_, err = svc.ConfirmReceipt(ctx, dto.ReceiptRequest{
		OrderID:       "999",
		ReceivedBy:    "Bob",
		InvoiceNumber: "NF-99",
		ReceivedDate:  "2024-05-01",
		ReceivedTime:  "14:30",
	})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())

	orders, err := svc.List(ctx, repo.Filter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, entity.StatusPending, orders[0].Status)
}

func TestConfirmReceiptValidatesBeforeLookup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*dto.ReceiptRequest)
	}{
		{"missing order_id", func(r *dto.ReceiptRequest) { r.OrderID = "" }},
		{"missing received_by", func(r *dto.ReceiptRequest) { r.ReceivedBy = "" }},
		{"missing invoice_number", func(r *dto.ReceiptRequest) { r.InvoiceNumber = "" }},
		{"missing received_date", func(r *dto.ReceiptRequest) { r.ReceivedDate = "" }},
		{"missing received_time", func(r *dto.ReceiptRequest) { r.ReceivedTime = "" }},
		{"unknown document type", func(r *dto.ReceiptRequest) { r.DocumentType = "Boleto" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.ReceiptRequest{
				OrderID:       "999",
				ReceivedBy:    "Bob",
				InvoiceNumber: "NF-99",
				ReceivedDate:  "2024-05-01",
				ReceivedTime:  "14:30",
			}
			tt.mutate(&req)

			_, err := svc.ConfirmReceipt(ctx, req)
			require.Error(t, err)
			// Validation fires before the lookup, so even an unknown id
			// reports the missing field rather than NotFound.
			assert.Equal(t, errorbank.KindUnprocessableEntity, errorbank.From(err).Kind())
		})
	}
}

func TestListStatusFilterValidated(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.List(context.Background(), repo.Filter{Status: "Bogus"})
	require.Error(t, err)
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

// The worked end-to-end scenario: intake, receipt, export with the
// temporal columns normalized.
func TestIntakeReceiptExportScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Intake(ctx, dto.IntakeRequest{
		OrderID:   "001",
		Company:   "Acme",
		Product:   "Caixas",
		Quantity:  5,
		UnitValue: decimal.NewFromFloat(10.50),
		OrderedBy: "Ana",
	})
	require.NoError(t, err)

	_, err = svc.ConfirmReceipt(ctx, dto.ReceiptRequest{
		OrderID:       "001",
		ReceivedBy:    "Bob",
		InvoiceNumber: "NF-99",
		ReceivedDate:  "2024-05-01",
		ReceivedTime:  "14:30",
	})
	require.NoError(t, err)

	data, err := svc.Export(ctx, repo.Filter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "order_id", get("A1"))
	assert.Equal(t, "001", get("A2"))
	assert.Equal(t, "Acme", get("B2"))
	assert.Equal(t, "5", get("D2"))
	assert.Equal(t, "Bob", get("H2"))
	assert.Equal(t, "NF-99", get("I2"))
	assert.Equal(t, "01/05/24", get("J2"), "received date is normalized to DD/MM/YY")
	assert.Equal(t, "14:30", get("K2"))
	assert.Equal(t, "Received", get("G2"))
}
