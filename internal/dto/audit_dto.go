package dto

type AuditFilter struct {
	BranchID string `form:"branch_id" validate:"omitempty,uuid"`
	Action   string `form:"action"`
	Entity   string `form:"entity"`
	EntityID string `form:"entity_id" validate:"omitempty,uuid"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type AuditLogResponse struct {
	ID        string `json:"id"`
	BranchID  string `json:"branch_id"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	EntityID  string `json:"entity_id"`
	Snapshot  string `json:"snapshot"`
	CreatedAt string `json:"created_at"`
}

type AuditListResponse struct {
	Data  []AuditLogResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
