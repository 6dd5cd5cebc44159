package dto

import "github.com/shopspring/decimal"

type MachineFilter struct {
	BranchID string `form:"branch_id" validate:"omitempty,uuid"`
	Status   string `form:"status"    validate:"omitempty,oneof=in_stock sold maintenance all"`
	Brand    string `form:"brand"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateMachineRequest struct {
	BranchID      string          `json:"branch_id"      validate:"omitempty,uuid"`
	SerialNumber  string          `json:"serial_number"  validate:"required,min=1,max=100"`
	Model         string          `json:"model"          validate:"required,min=1,max=200"`
	Brand         string          `json:"brand"          validate:"omitempty,max=100"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"required,min=0"`
	SalePrice     decimal.Decimal `json:"sale_price"     validate:"required,min=0"`
}

type UpdateMachineRequest struct {
	Model         string           `json:"model"          validate:"omitempty,min=1,max=200"`
	Brand         *string          `json:"brand"          validate:"omitempty,max=100"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" validate:"omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price"     validate:"omitempty"`
}

type MachineResponse struct {
	ID            string          `json:"id"`
	BranchID      string          `json:"branch_id"`
	SerialNumber  string          `json:"serial_number"`
	Model         string          `json:"model"`
	Brand         string          `json:"brand"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
}

type MachineListResponse struct {
	Data  []MachineResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
