package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	BranchID   string `form:"branch_id"  validate:"omitempty,uuid"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Status     string `form:"status"     validate:"omitempty,oneof=ongoing completed all"`
	Kind       string `form:"kind"       validate:"omitempty,oneof=cash installment"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSaleRequest struct {
	SerialNumber string          `json:"serial_number" validate:"required,min=1"`
	CustomerID   string          `json:"customer_id"   validate:"required,uuid"`
	Kind         string          `json:"kind"          validate:"required,oneof=cash installment"`
	TotalPrice   decimal.Decimal `json:"total_price"   validate:"required,gt=0"`
	// PaidAmount is the upfront payment. Ignored for cash sales (the full
	// price is collected); for installment sales it may be zero.
	PaidAmount       decimal.Decimal `json:"paid_amount"       validate:"min=0"`
	InstallmentCount int             `json:"installment_count" validate:"omitempty,min=1,max=120"`
	// ReceiptNumber and Place are required by the service whenever money is
	// collected; a zero-upfront installment sale needs neither.
	ReceiptNumber string `json:"receipt_number" validate:"omitempty,min=1"`
	Place         string `json:"place"          validate:"omitempty,min=1"`
	// CustomerEmail: optional — when present, the receipt worker mails the PDF.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

type PayInstallmentRequest struct {
	Amount        decimal.Decimal `json:"amount"         validate:"required,gt=0"`
	ReceiptNumber string          `json:"receipt_number" validate:"required,min=1"`
	Place         string          `json:"place"          validate:"required,min=1"`
	CustomerEmail *string         `json:"customer_email" validate:"omitempty,email"`
}

type RecalculateInstallmentsRequest struct {
	InstallmentCount int `json:"installment_count" validate:"required,min=1,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InstallmentResponse struct {
	ID            string          `json:"id"`
	DueDate       string          `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	IsPaid        bool            `json:"is_paid"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	ReceiptNumber *string         `json:"receipt_number"`
	PaidAt        *string         `json:"paid_at"`
}

type SaleResponse struct {
	ID           string                `json:"id"`
	BranchID     string                `json:"branch_id"`
	MachineID    string                `json:"machine_id"`
	SerialNumber string                `json:"serial_number"`
	CustomerID   string                `json:"customer_id"`
	CustomerName string                `json:"customer_name,omitempty"`
	Kind         string                `json:"kind"`
	TotalPrice   decimal.Decimal       `json:"total_price"`
	PaidAmount   decimal.Decimal       `json:"paid_amount"`
	Remaining    decimal.Decimal       `json:"remaining"`
	Status       string                `json:"status"`
	SoldAt       string                `json:"sold_at"`
	Installments []InstallmentResponse `json:"installments,omitempty"`
}
