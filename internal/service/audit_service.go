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

type AuditService interface {
	List(ctx context.Context, sc scope.EffectiveScope, filter dto.AuditFilter) (*dto.AuditListResponse, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, sc scope.EffectiveScope, filter dto.AuditFilter) (*dto.AuditListResponse, error) {
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
	if filter.Action != "" {
		f["action"] = filter.Action
	}
	if filter.Entity != "" {
		f["entity"] = filter.Entity
	}
	if filter.EntityID != "" {
		id, err := uuid.Parse(filter.EntityID)
		if err != nil {
			return nil, apperr.Validation("invalid entity_id")
		}
		f["entity_id"] = id
	}

	entries, total, err := s.repo.List(ctx, sc, f, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, auditToResponse(&e))
	}
	return &dto.AuditListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func auditToResponse(e *model.AuditLog) dto.AuditLogResponse {
	return dto.AuditLogResponse{
		ID:        e.ID.String(),
		BranchID:  e.BranchID.String(),
		UserID:    e.UserID.String(),
		Action:    e.Action,
		Entity:    e.Entity,
		EntityID:  e.EntityID.String(),
		Snapshot:  e.Snapshot,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
