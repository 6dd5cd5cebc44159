package worker

// audit_worker.go — appends audit entries recorded outside the request
// transaction. Repayments audit asynchronously so the money movement never
// waits on a second write.

import (
	"context"
	"encoding/json"
	"fmt"

	"machtrade/internal/model"
	"machtrade/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuditWorker struct {
	repo repository.AuditRepository
}

func NewAuditWorker(repo repository.AuditRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

// Handle implements the pool Handler for QueueAudit.
func (w *AuditWorker) Handle(ctx context.Context, raw json.RawMessage) error {
	var payload AuditPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("audit worker: bad payload")
		return nil
	}

	branchID, err := uuid.Parse(payload.BranchID)
	if err != nil {
		log.Error().Str("branch_id", payload.BranchID).Msg("audit worker: bad branch id")
		return nil
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		log.Error().Str("user_id", payload.UserID).Msg("audit worker: bad user id")
		return nil
	}
	entityID, err := uuid.Parse(payload.EntityID)
	if err != nil {
		log.Error().Str("entity_id", payload.EntityID).Msg("audit worker: bad entity id")
		return nil
	}

	entry := &model.AuditLog{
		BranchID: branchID,
		UserID:   userID,
		Action:   payload.Action,
		Entity:   payload.Entity,
		EntityID: entityID,
		Snapshot: payload.Snapshot,
	}
	if err := w.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("audit worker: append entry: %w", err)
	}
	return nil
}
