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

type MaintenanceService interface {
	Create(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateMaintenanceRequest) (*dto.MaintenanceResponse, error)
	UpdateStatus(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID, req dto.UpdateMaintenanceStatusRequest) (*dto.MaintenanceResponse, error)
	Get(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.MaintenanceResponse, error)
	List(ctx context.Context, sc scope.EffectiveScope, filter dto.MaintenanceFilter) (*dto.MaintenanceListResponse, error)
}

type maintenanceService struct {
	repo         repository.MaintenanceRepository
	customerRepo repository.CustomerRepository
	machineRepo  repository.MachineRepository
}

func NewMaintenanceService(repo repository.MaintenanceRepository, customerRepo repository.CustomerRepository, machineRepo repository.MachineRepository) MaintenanceService {
	return &maintenanceService{repo: repo, customerRepo: customerRepo, machineRepo: machineRepo}
}

func (s *maintenanceService) Create(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateMaintenanceRequest) (*dto.MaintenanceResponse, error) {
	branchID, err := resolveBranchID(actor, sc, req.BranchID)
	if err != nil {
		return nil, err
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer_id")
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, apperr.NotFound("customer not found")
	}
	if err := scope.EnsureInScope(customer, sc); err != nil {
		return nil, err
	}

	job := model.MaintenanceJob{
		BranchID:     branchID,
		CustomerID:   customer.ID,
		SerialNumber: req.SerialNumber,
		Problem:      req.Problem,
		Status:       model.MaintenanceReceived,
		Notes:        req.Notes,
	}

	// A known serial links the job to the inventory record and flags the
	// machine as under maintenance.
	if req.SerialNumber != "" {
		if machine, err := s.machineRepo.FindBySerial(ctx, req.SerialNumber); err == nil {
			if err := scope.EnsureInScope(machine, sc); err == nil {
				job.MachineID = &machine.ID
				_, _ = s.machineRepo.UpdateStatusTx(s.machineRepo.DB(), machine.ID, model.MachineInStock, model.MachineMaintenance)
			}
		}
	}

	if err := s.repo.Create(ctx, &job); err != nil {
		return nil, err
	}
	job.Customer = customer
	return maintenanceToResponse(&job), nil
}

func (s *maintenanceService) UpdateStatus(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID, req dto.UpdateMaintenanceStatusRequest) (*dto.MaintenanceResponse, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("maintenance job not found")
	}
	if err := scope.EnsureInScope(job, sc); err != nil {
		return nil, err
	}

	from := job.Status
	if !validMaintenanceTransition(from, req.Status) {
		return nil, apperr.Conflict("invalid status transition")
	}

	rows, err := s.repo.UpdateStatus(ctx, id, from, req.Status)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.Conflict("job status changed concurrently")
	}
	job.Status = req.Status

	if req.Notes != nil {
		job.Notes = req.Notes
		if err := s.repo.Update(ctx, job); err != nil {
			return nil, err
		}
	}

	// Release the machine back to stock when the repair is done.
	if req.Status == model.MaintenanceDone && job.MachineID != nil {
		_, _ = s.machineRepo.UpdateStatusTx(s.machineRepo.DB(), *job.MachineID, model.MachineMaintenance, model.MachineInStock)
	}

	return maintenanceToResponse(job), nil
}

func validMaintenanceTransition(from, to string) bool {
	switch from {
	case model.MaintenanceReceived:
		return to == model.MaintenanceInProgress || to == model.MaintenanceDone
	case model.MaintenanceInProgress:
		return to == model.MaintenanceDone
	default:
		return false
	}
}

func (s *maintenanceService) Get(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.MaintenanceResponse, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("maintenance job not found")
	}
	if err := scope.EnsureInScope(job, sc); err != nil {
		return nil, err
	}
	return maintenanceToResponse(job), nil
}

func (s *maintenanceService) List(ctx context.Context, sc scope.EffectiveScope, filter dto.MaintenanceFilter) (*dto.MaintenanceListResponse, error) {
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

	jobs, total, err := s.repo.List(ctx, sc, f, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MaintenanceResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, *maintenanceToResponse(&jobs[i]))
	}
	return &dto.MaintenanceListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func maintenanceToResponse(j *model.MaintenanceJob) *dto.MaintenanceResponse {
	resp := &dto.MaintenanceResponse{
		ID:           j.ID.String(),
		BranchID:     j.BranchID.String(),
		CustomerID:   j.CustomerID.String(),
		SerialNumber: j.SerialNumber,
		Problem:      j.Problem,
		Status:       j.Status,
		Notes:        j.Notes,
		CreatedAt:    j.CreatedAt.Format(time.RFC3339),
	}
	if j.MachineID != nil {
		mid := j.MachineID.String()
		resp.MachineID = &mid
	}
	if j.Customer != nil {
		resp.CustomerName = j.Customer.Name
	}
	return resp
}
