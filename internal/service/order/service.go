package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/export"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/order")

// Event type markers published on the orders topic.
const (
	EventOrderCreated  = "order.created"
	EventOrderReceived = "order.received"
)

// OrderEvent is emitted when an order is created or confirmed received.
type OrderEvent struct {
	Type    string    `json:"type"`
	OrderID string    `json:"order_id"`
	Company string    `json:"company"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// Service encapsulates business logic around the order ledger.
type Service struct {
	repo      repo.Repository
	exporter  *export.Exporter
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	storage   config.Storage
	now       func() time.Time
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository repo.Repository
	Exporter   *export.Exporter
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		exporter:  p.Exporter,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		storage: p.Config.Storage,
		now:     time.Now,
	}
}

// Intake validates the submitted order and appends it to the ledger with
// the initial pending status and empty receipt fields. The stored order is
// returned so callers can echo it back.
func (s *Service) Intake(ctx context.Context, req dto.IntakeRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Intake", trace.WithAttributes(attribute.String("order.id", req.OrderID)))
	defer span.End()

	if err := validateIntake(req); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.OrderID)
	if id == "" {
		if !s.storage.AutoAssignIDs {
			return nil, errorbank.Unprocessable("order_id is required")
		}
		var err error
		if id, err = s.repo.NextID(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "id assignment failed")
			return nil, errorbank.Internal("failed to assign order id", errorbank.WithCause(err))
		}
	}

	now := s.now().UTC()
	order := &entity.Order{
		ID:        id,
		Company:   strings.TrimSpace(req.Company),
		Product:   strings.TrimSpace(req.Product),
		Quantity:  req.Quantity,
		UnitValue: req.UnitValue,
		OrderedBy: strings.TrimSpace(req.OrderedBy),
		Status:    entity.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return nil, errorbank.Conflict("order id already exists", errorbank.WithDetail("order_id", id))
		case errors.Is(err, repo.ErrStorageUnavailable):
			span.RecordError(err)
			span.SetStatus(codes.Error, "storage unavailable")
			return nil, errorbank.Unavailable("failed to persist order", errorbank.WithCause(err))
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
		}
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logWarn("orders cache write failed", order.ID, err)
	}

	s.publishEvent(ctx, EventOrderCreated, order)

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("company", order.Company),
		zap.Int("quantity", order.Quantity),
	)
	return order, nil
}

// ConfirmReceipt marks an order received, recording who accepted the
// delivery and with which fiscal document. Required fields are checked
// before the lookup; an unknown id leaves the ledger untouched.
func (s *Service) ConfirmReceipt(ctx context.Context, req dto.ReceiptRequest) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ConfirmReceipt", trace.WithAttributes(attribute.String("order.id", req.OrderID)))
	defer span.End()

	if err := validateReceipt(req); err != nil {
		return nil, err
	}

	receipt := entity.Receipt{
		ReceivedBy:     strings.TrimSpace(req.ReceivedBy),
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		ReceivedDate:   strings.TrimSpace(req.ReceivedDate),
		ReceivedTime:   strings.TrimSpace(req.ReceivedTime),
		DocumentType:   entity.DocumentType(strings.TrimSpace(req.DocumentType)),
		IncorrectValue: strings.TrimSpace(req.IncorrectValue),
	}

	order, err := s.repo.UpdateReceipt(ctx, req.OrderID, receipt, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, errorbank.NotFound("order not found", errorbank.WithDetail("order_id", req.OrderID))
		case errors.Is(err, repo.ErrStorageUnavailable):
			span.RecordError(err)
			span.SetStatus(codes.Error, "storage unavailable")
			return nil, errorbank.Unavailable("failed to persist receipt", errorbank.WithCause(err))
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to confirm receipt", errorbank.WithCause(err))
		}
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey(order.ID)); err != nil {
			s.logWarn("orders cache invalidate failed", order.ID, err)
		}
	}
	if err := s.storeInCache(ctx, order); err != nil {
		s.logWarn("orders cache write failed", order.ID, err)
	}

	s.publishEvent(ctx, EventOrderReceived, order)

	s.logger.Info("receipt confirmed",
		zap.String("order_id", order.ID),
		zap.String("received_by", order.ReceivedBy),
		zap.String("invoice_number", order.InvoiceNumber),
	)
	return order, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logWarn("orders cache read failed", id, err)
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logWarn("orders cache write failed", id, err)
	}

	return order, nil
}

// List returns the current ledger, optionally filtered by company and
// status.
func (s *Service) List(ctx context.Context, f repo.Filter) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	if f.Status != "" && !entity.ValidStatus(f.Status) {
		return nil, errorbank.BadRequest("unknown status filter", errorbank.WithDetail("status", string(f.Status)))
	}

	orders, err := s.repo.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Export renders the (optionally filtered) ledger as an xlsx workbook.
func (s *Service) Export(ctx context.Context, f repo.Filter) ([]byte, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Export")
	defer span.End()

	orders, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.Workbook(orders)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
		return nil, errorbank.Internal("failed to render export", errorbank.WithCause(err))
	}
	return data, nil
}

func validateIntake(req dto.IntakeRequest) error {
	var missing []string
	if strings.TrimSpace(req.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(req.Product) == "" {
		missing = append(missing, "product")
	}
	if strings.TrimSpace(req.OrderedBy) == "" {
		missing = append(missing, "ordered_by")
	}
	if len(missing) > 0 {
		return errorbank.Unprocessable("required fields are missing", errorbank.WithDetail("fields", missing))
	}
	if req.Quantity < 1 {
		return errorbank.Unprocessable("quantity must be at least 1", errorbank.WithDetail("quantity", req.Quantity))
	}
	if req.UnitValue.IsNegative() {
		return errorbank.Unprocessable("unit_value must not be negative", errorbank.WithDetail("unit_value", req.UnitValue.String()))
	}
	return nil
}

func validateReceipt(req dto.ReceiptRequest) error {
	var missing []string
	for _, field := range []struct {
		name, value string
	}{
		{"order_id", req.OrderID},
		{"received_by", req.ReceivedBy},
		{"invoice_number", req.InvoiceNumber},
		{"received_date", req.ReceivedDate},
		{"received_time", req.ReceivedTime},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return errorbank.Unprocessable("required fields are missing", errorbank.WithDetail("fields", missing))
	}
	if !entity.ValidDocumentType(entity.DocumentType(strings.TrimSpace(req.DocumentType))) {
		return errorbank.Unprocessable("unknown document type", errorbank.WithDetail("document_type", req.DocumentType))
	}
	return nil
}

func (s *Service) publishEvent(ctx context.Context, eventType string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderEvent{
		Type:    eventType,
		OrderID: order.ID,
		Company: order.Company,
		Status:  string(order.Status),
		At:      s.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("order-%s", order.ID)), payload); err != nil {
		s.logger.Error("publish order event", zap.String("type", eventType), zap.Error(err))
	}
}

func (s *Service) cacheKey(id string) string {
	return fmt.Sprintf("orders:%s", id)
}

func (s *Service) getFromCache(ctx context.Context, id string) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) logWarn(msg, id string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, zap.String("order_id", id), zap.Error(err))
	}
}
