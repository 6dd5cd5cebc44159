package dto

type CustomerFilter struct {
	BranchID   string `form:"branch_id"   validate:"omitempty,uuid"`
	Name       string `form:"name"`
	NationalID string `form:"national_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateCustomerRequest struct {
	BranchID   string  `json:"branch_id"   validate:"omitempty,uuid"`
	Name       string  `json:"name"        validate:"required,min=2,max=200"`
	Phone      *string `json:"phone"       validate:"omitempty,max=30"`
	Address    *string `json:"address"     validate:"omitempty,max=300"`
	NationalID *string `json:"national_id" validate:"omitempty,max=30"`
}

type UpdateCustomerRequest struct {
	Name       string  `json:"name"        validate:"omitempty,min=2,max=200"`
	Phone      *string `json:"phone"       validate:"omitempty,max=30"`
	Address    *string `json:"address"     validate:"omitempty,max=300"`
	NationalID *string `json:"national_id" validate:"omitempty,max=30"`
}

type CustomerResponse struct {
	ID         string  `json:"id"`
	BranchID   string  `json:"branch_id"`
	Name       string  `json:"name"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	NationalID *string `json:"national_id"`
	CreatedAt  string  `json:"created_at"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
