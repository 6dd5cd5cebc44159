package dto

type CreateBranchRequest struct {
	Name    string  `json:"name"    validate:"required,min=2,max=200"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Phone   *string `json:"phone"   validate:"omitempty,max=30"`
}

type UpdateBranchRequest struct {
	Name    string  `json:"name"    validate:"omitempty,min=2,max=200"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Phone   *string `json:"phone"   validate:"omitempty,max=30"`
	Active  *bool   `json:"active"`
}

type BranchResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Active  bool    `json:"active"`
}
