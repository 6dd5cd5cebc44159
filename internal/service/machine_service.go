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

type MachineService interface {
	Create(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateMachineRequest) (*dto.MachineResponse, error)
	Update(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID, req dto.UpdateMachineRequest) (*dto.MachineResponse, error)
	Get(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.MachineResponse, error)
	GetBySerial(ctx context.Context, sc scope.EffectiveScope, serial string) (*dto.MachineResponse, error)
	List(ctx context.Context, sc scope.EffectiveScope, filter dto.MachineFilter) (*dto.MachineListResponse, error)
}

type machineService struct {
	repo repository.MachineRepository
}

func NewMachineService(repo repository.MachineRepository) MachineService {
	return &machineService{repo: repo}
}

func (s *machineService) Create(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateMachineRequest) (*dto.MachineResponse, error) {
	branchID, err := resolveBranchID(actor, sc, req.BranchID)
	if err != nil {
		return nil, err
	}

	machine := model.Machine{
		BranchID:      branchID,
		SerialNumber:  req.SerialNumber,
		Model:         req.Model,
		Brand:         req.Brand,
		PurchasePrice: req.PurchasePrice.Round(2),
		SalePrice:     req.SalePrice.Round(2),
		Status:        model.MachineInStock,
	}
	if err := s.repo.Create(ctx, &machine); err != nil {
		return nil, apperr.Wrap(apperr.KindConflict, err, "serial number already registered")
	}
	return machineToResponse(&machine), nil
}

func (s *machineService) Update(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID, req dto.UpdateMachineRequest) (*dto.MachineResponse, error) {
	machine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("machine not found")
	}
	if err := scope.EnsureInScope(machine, sc); err != nil {
		return nil, err
	}

	if req.Model != "" {
		machine.Model = req.Model
	}
	if req.Brand != nil {
		machine.Brand = *req.Brand
	}
	if req.PurchasePrice != nil {
		machine.PurchasePrice = req.PurchasePrice.Round(2)
	}
	if req.SalePrice != nil {
		machine.SalePrice = req.SalePrice.Round(2)
	}
	if err := s.repo.Update(ctx, machine); err != nil {
		return nil, err
	}
	return machineToResponse(machine), nil
}

func (s *machineService) Get(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.MachineResponse, error) {
	machine, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("machine not found")
	}
	if err := scope.EnsureInScope(machine, sc); err != nil {
		return nil, err
	}
	return machineToResponse(machine), nil
}

func (s *machineService) GetBySerial(ctx context.Context, sc scope.EffectiveScope, serial string) (*dto.MachineResponse, error) {
	machine, err := s.repo.FindBySerial(ctx, serial)
	if err != nil {
		return nil, apperr.NotFound("machine not found")
	}
	if err := scope.EnsureInScope(machine, sc); err != nil {
		return nil, err
	}
	return machineToResponse(machine), nil
}

func (s *machineService) List(ctx context.Context, sc scope.EffectiveScope, filter dto.MachineFilter) (*dto.MachineListResponse, error) {
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
	if filter.Status != "" && filter.Status != "all" {
		f["status"] = filter.Status
	}
	if filter.Brand != "" {
		f["brand"] = map[string]interface{}{"like": "%" + filter.Brand + "%"}
	}

	machines, total, err := s.repo.List(ctx, sc, f, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MachineResponse, 0, len(machines))
	for i := range machines {
		items = append(items, *machineToResponse(&machines[i]))
	}
	return &dto.MachineListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func machineToResponse(m *model.Machine) *dto.MachineResponse {
	return &dto.MachineResponse{
		ID:            m.ID.String(),
		BranchID:      m.BranchID.String(),
		SerialNumber:  m.SerialNumber,
		Model:         m.Model,
		Brand:         m.Brand,
		PurchasePrice: m.PurchasePrice,
		SalePrice:     m.SalePrice,
		Status:        m.Status,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}
