package order

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
	service "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/order")

// Handler exposes the order ledger over HTTP.
type Handler struct {
	svc      *service.Service
	filename string
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, cfg config.Config) *Handler {
	return &Handler{svc: svc, filename: cfg.Export.Filename}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.intake)
	g.GET("", h.list)
	g.GET("/export", h.export)
	g.GET("/:id", h.getByID)
	g.POST("/:id/receipt", h.confirmReceipt)
}

func (h *Handler) intake(c echo.Context) error {
	b := response.New(c)

	var req dto.IntakeRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.intake", trace.WithAttributes(
		attribute.String("order.id", req.OrderID),
	))
	defer span.End()

	order, err := h.svc.Intake(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) confirmReceipt(c echo.Context) error {
	b := response.New(c)

	var req dto.ReceiptRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	// The path parameter is authoritative for the lookup key.
	req.OrderID = c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.confirmReceipt", trace.WithAttributes(
		attribute.String("order.id", req.OrderID),
	))
	defer span.End()

	order, err := h.svc.ConfirmReceipt(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id := c.Param("id")
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.String("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, filterFromQuery(c))
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, dto.FromOrder(&orders[i]))
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) export(c echo.Context) error {
	ctx, span := httpTracer.Start(c.Request().Context(), "orders.export")
	defer span.End()

	data, err := h.svc.Export(ctx, filterFromQuery(c))
	if err != nil {
		return response.New(c).WithError(err).Build()
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", h.filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func filterFromQuery(c echo.Context) repo.Filter {
	return repo.Filter{
		Company: c.QueryParam("company"),
		Status:  entity.Status(c.QueryParam("status")),
	}
}
