package order

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

func testStorageConfig(t *testing.T) config.Storage {
	t.Helper()
	return config.Storage{
		Driver:        "file",
		FilePath:      filepath.Join(t.TempDir(), "pedidos.csv"),
		AutoAssignIDs: true,
		IDPadding:     4,
	}
}

func pendingOrder(id, company string) *entity.Order {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &entity.Order{
		ID:        id,
		Company:   company,
		Product:   "Caixas",
		Quantity:  5,
		UnitValue: decimal.NewFromFloat(10.50),
		OrderedBy: "Ana",
		Status:    entity.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func assertSameOrder(t *testing.T, want, got *entity.Order) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Company, got.Company)
	assert.Equal(t, want.Product, got.Product)
	assert.Equal(t, want.Quantity, got.Quantity)
	assert.True(t, want.UnitValue.Equal(got.UnitValue), "unit value %s != %s", want.UnitValue, got.UnitValue)
	assert.Equal(t, want.OrderedBy, got.OrderedBy)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.ReceivedBy, got.ReceivedBy)
	assert.Equal(t, want.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, want.ReceivedDate, got.ReceivedDate)
	assert.Equal(t, want.ReceivedTime, got.ReceivedTime)
	assert.Equal(t, want.DocumentType, got.DocumentType)
	assert.Equal(t, want.IncorrectValue, got.IncorrectValue)
}

func TestNewFileStoreCreatesMissingFile(t *testing.T) {
	cfg := testStorageConfig(t)

	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "order_id")

	orders, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestNewFileStoreRejectsCorruptFile(t *testing.T) {
	cfg := testStorageConfig(t)
	corrupt := "order_id,company\n\"unterminated\n"
	require.NoError(t, os.WriteFile(cfg.FilePath, []byte(corrupt), 0o644))

	_, err := NewFileStore(cfg, zap.NewNop())
	require.ErrorIs(t, err, ErrStorageUnavailable)

	// Corrupt data is surfaced, never silently discarded.
	data, readErr := os.ReadFile(cfg.FilePath)
	require.NoError(t, readErr)
	assert.Equal(t, corrupt, string(data))
}

func TestFileStoreInsert(t *testing.T) {
	cfg := testStorageConfig(t)
	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, pendingOrder("001", "Acme")))

	orders, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, entity.StatusPending, orders[0].Status)
	assert.Empty(t, orders[0].ReceivedBy)
	assert.Empty(t, orders[0].InvoiceNumber)
	assert.Empty(t, orders[0].ReceivedDate)
	assert.Empty(t, orders[0].ReceivedTime)
}

func TestFileStoreInsertDuplicateLeavesTableUnchanged(t *testing.T) {
	cfg := testStorageConfig(t)
	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, pendingOrder("001", "Acme")))
	before, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)

	err = store.Insert(ctx, pendingOrder("001", "Outra"))
	require.ErrorIs(t, err, ErrDuplicate)

	after, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	orders, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Acme", orders[0].Company)
}

func TestFileStoreUpdateReceipt(t *testing.T) {
	cfg := testStorageConfig(t)
	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, pendingOrder("001", "Acme")))
	require.NoError(t, store.Insert(ctx, pendingOrder("002", "Mercantil")))

	receipt := entity.Receipt{
		ReceivedBy:    "Bob",
		InvoiceNumber: "NF-99",
		ReceivedDate:  "2024-05-01",
		ReceivedTime:  "14:30",
		DocumentType:  entity.DocumentInvoice,
	}
	now := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)

	updated, err := store.UpdateReceipt(ctx, "001", receipt, now)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReceived, updated.Status)
	assert.Equal(t, "Bob", updated.ReceivedBy)
	assert.Equal(t, "NF-99", updated.InvoiceNumber)
	assert.Equal(t, "2024-05-01", updated.ReceivedDate)
	assert.Equal(t, "14:30", updated.ReceivedTime)
	assert.Equal(t, entity.DocumentInvoice, updated.DocumentType)

	// Untouched fields of the target row survive.
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, 5, updated.Quantity)

	// The other row is untouched.
	other, err := store.Get(ctx, "002")
	require.NoError(t, err)
	assertSameOrder(t, pendingOrder("002", "Mercantil"), other)
}

func TestFileStoreUpdateReceiptUnknownID(t *testing.T) {
	cfg := testStorageConfig(t)
	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, pendingOrder("001", "Acme")))
	before, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)

	_, err = store.UpdateReceipt(ctx, "999", entity.Receipt{ReceivedBy: "Bob"}, time.Now())
	require.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(cfg.FilePath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected receipt must leave the file byte-for-byte unchanged")
}

func TestFileStoreReloadRoundTrip(t *testing.T) {
	cfg := testStorageConfig(t)
	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	first := pendingOrder("001", "Acme")
	second := pendingOrder("002", "Mercantil")
	require.NoError(t, store.Insert(ctx, first))
	require.NoError(t, store.Insert(ctx, second))

	_, err = store.UpdateReceipt(ctx, "002", entity.Receipt{
		ReceivedBy:    "Bob",
		InvoiceNumber: "NF-1",
		ReceivedDate:  "01/05/24",
		ReceivedTime:  "14:30",
	}, time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	reloaded, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)

	want, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	got, err := reloaded.List(ctx, Filter{})
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assertSameOrder(t, &want[i], &got[i])
	}
}

func TestFileStoreListFilters(t *testing.T) {
	cfg := testStorageConfig(t)
	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, pendingOrder("001", "Acme")))
	require.NoError(t, store.Insert(ctx, pendingOrder("002", "Mercantil")))
	_, err = store.UpdateReceipt(ctx, "001", entity.Receipt{
		ReceivedBy:    "Bob",
		InvoiceNumber: "NF-1",
		ReceivedDate:  "01/05/24",
		ReceivedTime:  "14:30",
	}, time.Now().UTC())
	require.NoError(t, err)

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{"no filter", Filter{}, []string{"001", "002"}},
		{"by company", Filter{Company: "Acme"}, []string{"001"}},
		{"by status pending", Filter{Status: entity.StatusPending}, []string{"002"}},
		{"by status received", Filter{Status: entity.StatusReceived}, []string{"001"}},
		{"company and status", Filter{Company: "Acme", Status: entity.StatusPending}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(orders))
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFileStoreNextID(t *testing.T) {
	cfg := testStorageConfig(t)
	store, err := NewFileStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	id, err := store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0001", id)

	require.NoError(t, store.Insert(ctx, pendingOrder("0007", "Acme")))
	id, err = store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0008", id)

	// Non-numeric ids are ignored.
	require.NoError(t, store.Insert(ctx, pendingOrder("PED-13", "Acme")))
	id, err = store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0008", id)
}

func TestNextSequentialID(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		padding int
		want    string
	}{
		{"empty", nil, 4, "0001"},
		{"sequential", []string{"0001", "0002"}, 4, "0003"},
		{"gaps", []string{"0001", "0042"}, 4, "0043"},
		{"mixed", []string{"abc", "7"}, 3, "008"},
		{"wider than padding", []string{"12345"}, 4, "12346"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextSequentialID(tt.ids, tt.padding))
		})
	}
}
