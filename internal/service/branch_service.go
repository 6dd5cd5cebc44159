package service

import (
	"context"

	"machtrade/internal/apperr"
	"machtrade/internal/dto"
	"machtrade/internal/model"
	"machtrade/internal/repository"
	"machtrade/internal/scope"

	"github.com/google/uuid"
)

type BranchService interface {
	Create(ctx context.Context, req dto.CreateBranchRequest) (*dto.BranchResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateBranchRequest) (*dto.BranchResponse, error)
	List(ctx context.Context, sc scope.EffectiveScope) ([]dto.BranchResponse, error)
}

type branchService struct {
	repo repository.BranchRepository
}

func NewBranchService(repo repository.BranchRepository) BranchService {
	return &branchService{repo: repo}
}

func (s *branchService) Create(ctx context.Context, req dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	branch := model.Branch{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Active:  true,
	}
	if err := s.repo.Create(ctx, &branch); err != nil {
		return nil, apperr.Wrap(apperr.KindConflict, err, "branch name already exists")
	}
	return branchToResponse(&branch), nil
}

func (s *branchService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateBranchRequest) (*dto.BranchResponse, error) {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("branch not found")
	}
	if req.Name != "" {
		branch.Name = req.Name
	}
	if req.Address != nil {
		branch.Address = req.Address
	}
	if req.Phone != nil {
		branch.Phone = req.Phone
	}
	if req.Active != nil {
		branch.Active = *req.Active
	}
	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, err
	}
	return branchToResponse(branch), nil
}

func (s *branchService) List(ctx context.Context, sc scope.EffectiveScope) ([]dto.BranchResponse, error) {
	branches, err := s.repo.List(ctx, sc, scope.Filter{})
	if err != nil {
		return nil, err
	}
	resp := make([]dto.BranchResponse, len(branches))
	for i := range branches {
		resp[i] = *branchToResponse(&branches[i])
	}
	return resp, nil
}

func branchToResponse(b *model.Branch) *dto.BranchResponse {
	return &dto.BranchResponse{
		ID:      b.ID.String(),
		Name:    b.Name,
		Address: b.Address,
		Phone:   b.Phone,
		Active:  b.Active,
	}
}
