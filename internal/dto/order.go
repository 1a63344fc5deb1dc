package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// IntakeRequest carries the fields a caller submits to create an order.
// OrderID may be left blank when the service auto-assigns ids.
type IntakeRequest struct {
	OrderID   string          `json:"order_id"`
	Company   string          `json:"company"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unit_value"`
	OrderedBy string          `json:"ordered_by"`
}

// ReceiptRequest carries the receipt confirmation fields for an order.
type ReceiptRequest struct {
	OrderID        string `json:"order_id"`
	ReceivedBy     string `json:"received_by"`
	InvoiceNumber  string `json:"invoice_number"`
	ReceivedDate   string `json:"received_date"`
	ReceivedTime   string `json:"received_time"`
	DocumentType   string `json:"document_type"`
	IncorrectValue string `json:"incorrect_value"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	OrderID        string          `json:"order_id"`
	Company        string          `json:"company"`
	Product        string          `json:"product"`
	Quantity       int             `json:"quantity"`
	UnitValue      decimal.Decimal `json:"unit_value"`
	OrderedBy      string          `json:"ordered_by"`
	Status         string          `json:"status"`
	ReceivedBy     string          `json:"received_by,omitempty"`
	InvoiceNumber  string          `json:"invoice_number,omitempty"`
	ReceivedDate   string          `json:"received_date,omitempty"`
	ReceivedTime   string          `json:"received_time,omitempty"`
	DocumentType   string          `json:"document_type,omitempty"`
	IncorrectValue string          `json:"incorrect_value,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FromOrder maps an entity onto the transport representation.
func FromOrder(o *entity.Order) OrderResponse {
	return OrderResponse{
		OrderID:        o.ID,
		Company:        o.Company,
		Product:        o.Product,
		Quantity:       o.Quantity,
		UnitValue:      o.UnitValue,
		OrderedBy:      o.OrderedBy,
		Status:         string(o.Status),
		ReceivedBy:     o.ReceivedBy,
		InvoiceNumber:  o.InvoiceNumber,
		ReceivedDate:   o.ReceivedDate,
		ReceivedTime:   o.ReceivedTime,
		DocumentType:   string(o.DocumentType),
		IncorrectValue: o.IncorrectValue,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
