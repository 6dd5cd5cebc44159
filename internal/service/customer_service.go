package service

import (
	"context"
	"time"

	"machtrade/internal/apperr"
	"machtrade/internal/dto"
	"machtrade/internal/model"
	"machtrade/internal/repository"
	"machtrade/internal/scope"

	"github.com/google/uuid"
)

type CustomerService interface {
	Create(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	Update(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, sc scope.EffectiveScope, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	branchID, err := resolveBranchID(actor, sc, req.BranchID)
	if err != nil {
		return nil, err
	}

	customer := model.Customer{
		BranchID:   branchID,
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		NationalID: req.NationalID,
	}
	if err := s.repo.Create(ctx, &customer); err != nil {
		return nil, err
	}
	return customerToResponse(&customer), nil
}

func (s *customerService) Update(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("customer not found")
	}
	if err := scope.EnsureInScope(customer, sc); err != nil {
		return nil, err
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	if req.NationalID != nil {
		customer.NationalID = req.NationalID
	}
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customerToResponse(customer), nil
}

func (s *customerService) Get(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.CustomerResponse, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("customer not found")
	}
	if err := scope.EnsureInScope(customer, sc); err != nil {
		return nil, err
	}
	return customerToResponse(customer), nil
}

func (s *customerService) List(ctx context.Context, sc scope.EffectiveScope, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	f := scope.Filter{}
	if err := applyBranchFilter(sc, f, filter.BranchID); err != nil {
		return nil, err
	}
	if filter.Name != "" {
		f["name"] = map[string]interface{}{"like": "%" + filter.Name + "%"}
	}
	if filter.NationalID != "" {
		f["national_id"] = filter.NationalID
	}

	customers, total, err := s.repo.List(ctx, sc, f, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, *customerToResponse(&customers[i]))
	}
	return &dto.CustomerListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:         c.ID.String(),
		BranchID:   c.BranchID.String(),
		Name:       c.Name,
		Phone:      c.Phone,
		Address:    c.Address,
		NationalID: c.NationalID,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}
