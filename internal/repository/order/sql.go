package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

var sqlTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/order/sql")

// SQLStore keeps the ledger in a single relational table. Intake is a
// plain INSERT; receipt confirmation is one UPDATE ... WHERE order_id = ?
// affecting at most one row.
type SQLStore struct {
	writer  *bun.DB
	reader  *bun.DB
	padding int
}

// NewSQLStore wires a store backed by the configured database connections.
func NewSQLStore(conns *database.Connections, cfg config.Storage) *SQLStore {
	return &SQLStore{
		writer:  conns.Writer,
		reader:  conns.Reader,
		padding: cfg.IDPadding,
	}
}

// List returns orders matching the filter, oldest first.
func (s *SQLStore) List(ctx context.Context, f Filter) ([]entity.Order, error) {
	ctx, span := sqlTracer.Start(ctx, "OrderSQLStore.List")
	defer span.End()

	var orders []entity.Order
	q := s.reader.NewSelect().Model(&orders).Order("created_at ASC")
	if f.Company != "" {
		q = q.Where("company = ?", f.Company)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// Get fetches an order by business key using the read replica when available.
func (s *SQLStore) Get(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := sqlTracer.Start(ctx, "OrderSQLStore.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	o := new(entity.Order)
	err := s.reader.NewSelect().Model(o).Where("order_id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return o, nil
}

// Insert persists a new order using the write connection.
func (s *SQLStore) Insert(ctx context.Context, o *entity.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	ctx, span := sqlTracer.Start(ctx, "OrderSQLStore.Insert", trace.WithAttributes(attribute.String("order.id", o.ID)))
	defer span.End()

	exists, err := s.writer.NewSelect().Model((*entity.Order)(nil)).Where("order_id = ?", o.ID).Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exists check failed")
		return err
	}
	if exists {
		span.SetStatus(codes.Error, "duplicate id")
		return ErrDuplicate
	}

	if _, err := s.writer.NewInsert().Model(o).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// UpdateReceipt applies the receipt fields with a single point update.
func (s *SQLStore) UpdateReceipt(ctx context.Context, id string, r entity.Receipt, now time.Time) (*entity.Order, error) {
	ctx, span := sqlTracer.Start(ctx, "OrderSQLStore.UpdateReceipt", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	res, err := s.writer.NewUpdate().Model((*entity.Order)(nil)).
		Set("status = ?", string(entity.StatusReceived)).
		Set("received_by = ?", r.ReceivedBy).
		Set("invoice_number = ?", r.InvoiceNumber).
		Set("received_date = ?", r.ReceivedDate).
		Set("received_time = ?", r.ReceivedTime).
		Set("document_type = ?", string(r.DocumentType)).
		Set("incorrect_value = ?", r.IncorrectValue).
		Set("updated_at = ?", now).
		Where("order_id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}

	return s.Get(ctx, id)
}

// NextID mints the next zero-padded sequential id from the ids in use.
func (s *SQLStore) NextID(ctx context.Context) (string, error) {
	var ids []string
	err := s.reader.NewSelect().Model((*entity.Order)(nil)).Column("order_id").Scan(ctx, &ids)
	if err != nil {
		return "", err
	}
	return nextSequentialID(ids, s.padding), nil
}
