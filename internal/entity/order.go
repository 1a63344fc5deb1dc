package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Status tracks an order through its lifecycle. Transitions only move
// forward: a received order is never reopened.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusReceived Status = "Received"
)

// DocumentType identifies the fiscal document presented at receipt.
type DocumentType string

const (
	DocumentInvoice DocumentType = "Invoice"
	DocumentReceipt DocumentType = "Receipt"
)

// Order represents a purchase order tracked from intake to receipt
// confirmation. The csv tags define the flat-file column layout; the bun
// tags map the same schema onto the relational store.
type Order struct {
	bun.BaseModel `bun:"table:orders" csv:"-"`

	ID             string          `bun:"order_id,pk" csv:"order_id" json:"order_id"`
	Company        string          `bun:"company" csv:"company" json:"company"`
	Product        string          `bun:"product" csv:"product" json:"product"`
	Quantity       int             `bun:"quantity" csv:"quantity" json:"quantity"`
	UnitValue      decimal.Decimal `bun:"unit_value" csv:"unit_value" json:"unit_value"`
	OrderedBy      string          `bun:"ordered_by" csv:"ordered_by" json:"ordered_by"`
	Status         Status          `bun:"status" csv:"status" json:"status"`
	ReceivedBy     string          `bun:"received_by" csv:"received_by" json:"received_by"`
	InvoiceNumber  string          `bun:"invoice_number" csv:"invoice_number" json:"invoice_number"`
	ReceivedDate   string          `bun:"received_date" csv:"received_date" json:"received_date"`
	ReceivedTime   string          `bun:"received_time" csv:"received_time" json:"received_time"`
	DocumentType   DocumentType    `bun:"document_type" csv:"document_type" json:"document_type"`
	IncorrectValue string          `bun:"incorrect_value" csv:"incorrect_value" json:"incorrect_value"`
	CreatedAt      time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" csv:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `bun:"updated_at,nullzero" csv:"updated_at" json:"updated_at"`
}

// Receipt carries the fields filled in together, exactly once, when an
// order is confirmed as received.
type Receipt struct {
	ReceivedBy     string
	InvoiceNumber  string
	ReceivedDate   string
	ReceivedTime   string
	DocumentType   DocumentType
	IncorrectValue string
}

// Received reports whether the order has reached its terminal state.
func (o *Order) Received() bool {
	return o.Status == StatusReceived
}

// ApplyReceipt moves the order to its terminal state and records the
// receipt fields in place.
func (o *Order) ApplyReceipt(r Receipt, now time.Time) {
	o.Status = StatusReceived
	o.ReceivedBy = r.ReceivedBy
	o.InvoiceNumber = r.InvoiceNumber
	o.ReceivedDate = r.ReceivedDate
	o.ReceivedTime = r.ReceivedTime
	o.DocumentType = r.DocumentType
	o.IncorrectValue = r.IncorrectValue
	o.UpdatedAt = now
}

// ValidStatus reports whether s is one of the known order states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusReceived:
		return true
	}
	return false
}

// ValidDocumentType reports whether d is a known document type. The empty
// value is allowed; the field is optional on receipt.
func ValidDocumentType(d DocumentType) bool {
	switch d {
	case "", DocumentInvoice, DocumentReceipt:
		return true
	}
	return false
}
