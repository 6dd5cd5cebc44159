package dto

type MaintenanceFilter struct {
	BranchID string `form:"branch_id" validate:"omitempty,uuid"`
	Status   string `form:"status"    validate:"omitempty,oneof=received in_progress done all"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateMaintenanceRequest struct {
	BranchID     string  `json:"branch_id"     validate:"omitempty,uuid"`
	CustomerID   string  `json:"customer_id"   validate:"required,uuid"`
	SerialNumber string  `json:"serial_number" validate:"omitempty,max=100"`
	Problem      string  `json:"problem"       validate:"required,min=3"`
	Notes        *string `json:"notes"         validate:"omitempty,max=1000"`
}

type UpdateMaintenanceStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=in_progress done"`
	Notes  *string `json:"notes"  validate:"omitempty,max=1000"`
}

type MaintenanceResponse struct {
	ID           string  `json:"id"`
	BranchID     string  `json:"branch_id"`
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name,omitempty"`
	MachineID    *string `json:"machine_id"`
	SerialNumber string  `json:"serial_number"`
	Problem      string  `json:"problem"`
	Status       string  `json:"status"`
	Notes        *string `json:"notes"`
	CreatedAt    string  `json:"created_at"`
}

type MaintenanceListResponse struct {
	Data  []MaintenanceResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
