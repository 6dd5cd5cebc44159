package worker

// receipt_worker.go — renders payment receipt PDFs and mails them.
// PDF generation failures requeue the job; SMTP goes through the circuit
// breaker so a dead relay fast-fails into the DLQ instead of stalling the
// pool.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"machtrade/internal/config"
	"machtrade/internal/infra"
	"machtrade/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ReceiptWorker struct {
	cfg        *config.Config
	branchRepo repository.BranchRepository
	mailer     *infra.Mailer
	breaker    *infra.CircuitBreaker
}

func NewReceiptWorker(cfg *config.Config, branchRepo repository.BranchRepository, mailer *infra.Mailer, breaker *infra.CircuitBreaker) *ReceiptWorker {
	return &ReceiptWorker{cfg: cfg, branchRepo: branchRepo, mailer: mailer, breaker: breaker}
}

// Handle implements the pool Handler for QueueReceipt.
func (w *ReceiptWorker) Handle(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed payloads can never succeed; log and drop.
		log.Error().Err(err).Msg("receipt worker: bad payload")
		return nil
	}

	branchName := ""
	if id, err := uuid.Parse(payload.BranchID); err == nil {
		if branch, err := w.branchRepo.FindByID(ctx, id); err == nil {
			branchName = branch.Name
		}
	}

	pdfPath, err := infra.GenerateReceiptPDF(infra.ReceiptData{
		Company:       w.cfg.CompanyName,
		BranchName:    branchName,
		ReceiptNumber: payload.ReceiptNumber,
		CustomerName:  payload.CustomerName,
		SerialNumber:  payload.SerialNumber,
		Amount:        payload.Amount,
		Remaining:     payload.Remaining,
		PaidAt:        time.Now(),
	}, w.cfg.PDFStoragePath)
	if err != nil {
		return fmt.Errorf("receipt worker: generate pdf: %w", err)
	}

	if payload.CustomerEmail == "" {
		log.Info().Str("receipt", payload.ReceiptNumber).Str("path", pdfPath).Msg("receipt generated, no email requested")
		return nil
	}

	subject := fmt.Sprintf("%s — payment receipt %s", w.cfg.CompanyName, payload.ReceiptNumber)
	body := fmt.Sprintf("Dear %s,\n\nattached is your payment receipt %s.\nRemaining balance: $%s\n\n%s",
		payload.CustomerName, payload.ReceiptNumber, payload.Remaining.StringFixed(2), w.cfg.CompanyName)

	err = w.breaker.Execute(func() error {
		return w.mailer.SendReceipt(payload.CustomerEmail, subject, body, pdfPath)
	})
	if err != nil {
		return fmt.Errorf("receipt worker: send email: %w", err)
	}

	log.Info().Str("receipt", payload.ReceiptNumber).Str("to", payload.CustomerEmail).Msg("receipt mailed")
	return nil
}
