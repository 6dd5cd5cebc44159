package service

import (
	"context"
	"encoding/json"
	"time"

	"machtrade/internal/apperr"
	"machtrade/internal/dto"
	"machtrade/internal/model"
	"machtrade/internal/repository"
	"machtrade/internal/scope"
	"machtrade/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// jobDispatcher is the slice of worker.Dispatcher the sale engine uses.
type jobDispatcher interface {
	EnqueueReceipt(ctx context.Context, payload worker.ReceiptPayload) error
	EnqueueAudit(ctx context.Context, payload worker.AuditPayload) error
}

type SaleService interface {
	CreateSale(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	PayInstallment(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, installmentID uuid.UUID, req dto.PayInstallmentRequest) (*dto.SaleResponse, error)
	RecalculateInstallments(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, saleID uuid.UUID, req dto.RecalculateInstallmentsRequest) (*dto.SaleResponse, error)
	VoidSale(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, saleID uuid.UUID) error
	GetSale(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, sc scope.EffectiveScope, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo            repository.SaleRepository
	installmentRepo repository.InstallmentRepository
	paymentRepo     repository.PaymentRepository
	machineRepo     repository.MachineRepository
	customerRepo    repository.CustomerRepository
	ownershipRepo   repository.OwnershipRepository
	auditRepo       repository.AuditRepository
	dispatcher      jobDispatcher
}

func NewSaleService(
	repo repository.SaleRepository,
	installmentRepo repository.InstallmentRepository,
	paymentRepo repository.PaymentRepository,
	machineRepo repository.MachineRepository,
	customerRepo repository.CustomerRepository,
	ownershipRepo repository.OwnershipRepository,
	auditRepo repository.AuditRepository,
	dispatcher *worker.Dispatcher,
) SaleService {
	s := &saleService{
		repo:            repo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		machineRepo:     machineRepo,
		customerRepo:    customerRepo,
		ownershipRepo:   ownershipRepo,
		auditRepo:       auditRepo,
	}
	if dispatcher != nil {
		s.dispatcher = dispatcher
	}
	return s
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// receiptTaken checks the receipt number against both halves of the money
// ledger: standalone payments and paid installments.
func (s *saleService) receiptTaken(ctx context.Context, receipt string) (bool, error) {
	taken, err := s.paymentRepo.ReceiptExists(ctx, receipt)
	if err != nil || taken {
		return taken, err
	}
	return s.installmentRepo.ReceiptTaken(ctx, receipt)
}

// ── CreateSale ───────────────────────────────────────────────────────────────
// One ACID transaction covering the whole sale aggregate:
//   1. Pre-flight (outside TX): machine by serial, customer, receipt check
//   2. BEGIN TX: flip machine in_stock→sold (status guard = optimistic lock),
//      create sale, upfront payment, installment schedule, ownership, audit
//   3. COMMIT
//   4. (async) dispatch receipt job

func (s *saleService) CreateSale(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer_id")
	}

	machine, err := s.machineRepo.FindBySerial(ctx, req.SerialNumber)
	if err != nil {
		return nil, apperr.NotFound("machine not found")
	}
	if err := scope.EnsureInScope(machine, sc); err != nil {
		return nil, err
	}
	if machine.Status != model.MachineInStock {
		return nil, apperr.Conflict("machine is not available for sale")
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, apperr.NotFound("customer not found")
	}
	if err := scope.EnsureInScope(customer, sc); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	total := req.TotalPrice.Round(2)

	// Cash sales collect the full price and complete immediately. Installment
	// sales take the declared upfront amount and stay ongoing.
	var upfront decimal.Decimal
	status := model.SaleOngoing
	switch req.Kind {
	case model.SaleCash:
		upfront = total
		status = model.SaleCompleted
	case model.SaleInstallment:
		upfront = req.PaidAmount.Round(2)
		if upfront.GreaterThanOrEqual(total) {
			return nil, apperr.Validation("upfront payment covers the full price; register a cash sale instead")
		}
		if req.InstallmentCount < 1 {
			return nil, apperr.Validation("installment sales require installment_count")
		}
	}

	// Receipt metadata belongs to money changing hands. A zero-upfront
	// installment sale collects nothing now, so none is demanded or reserved.
	if upfront.IsPositive() {
		if req.ReceiptNumber == "" || req.Place == "" {
			return nil, apperr.Validation("receipt_number and place are required when a payment is collected")
		}
		if taken, err := s.receiptTaken(ctx, req.ReceiptNumber); err != nil {
			return nil, err
		} else if taken {
			return nil, apperr.Conflict("receipt number already used")
		}
	}

	sale := model.MachineSale{
		BranchID:     machine.BranchID,
		MachineID:    machine.ID,
		SerialNumber: machine.SerialNumber,
		CustomerID:   customer.ID,
		Kind:         req.Kind,
		TotalPrice:   total,
		PaidAmount:   upfront,
		Status:       status,
		SoldAt:       now,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.machineRepo.UpdateStatusTx(tx, machine.ID, model.MachineInStock, model.MachineSold)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("machine was sold concurrently")
		}

		if err := s.repo.CreateTx(ctx, tx, &sale); err != nil {
			return err
		}

		if upfront.IsPositive() {
			payment := model.Payment{
				BranchID:      sale.BranchID,
				CustomerID:    customer.ID,
				SaleID:        &sale.ID,
				Amount:        upfront,
				ReceiptNumber: req.ReceiptNumber,
				Type:          model.PaymentSaleUpfront,
				Place:         req.Place,
			}
			if err := s.paymentRepo.CreateTx(ctx, tx, &payment); err != nil {
				return err
			}
		}

		if req.Kind == model.SaleInstallment {
			installments, err := generateInstallments(sale.ID, sale.BranchID, total.Sub(upfront), req.InstallmentCount, now)
			if err != nil {
				return err
			}
			if err := s.installmentRepo.CreateBatchTx(ctx, tx, installments); err != nil {
				return err
			}
			sale.Installments = installments
		}

		ownership := model.Ownership{
			BranchID:   sale.BranchID,
			MachineID:  machine.ID,
			CustomerID: customer.ID,
			AcquiredAt: now,
		}
		if err := s.ownershipRepo.CreateTx(ctx, tx, &ownership); err != nil {
			return err
		}

		return s.auditRepo.CreateTx(ctx, tx, auditEntry(actor, sale.BranchID, "sale.create", "machine_sale", sale.ID, &sale))
	})
	if txErr != nil {
		return nil, txErr
	}

	if upfront.IsPositive() {
		s.dispatchReceipt(ctx, &sale, customer, req.ReceiptNumber, upfront, req.CustomerEmail)
	}

	sale.Customer = customer
	return saleToResponse(&sale), nil
}

// ── PayInstallment ───────────────────────────────────────────────────────────

func (s *saleService) PayInstallment(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, installmentID uuid.UUID, req dto.PayInstallmentRequest) (*dto.SaleResponse, error) {
	ins, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, apperr.NotFound("installment not found")
	}
	if err := scope.EnsureInScope(ins, sc); err != nil {
		return nil, err
	}
	if ins.IsPaid {
		return nil, apperr.Conflict("installment is already paid")
	}

	amount := req.Amount.Round(2)
	if !amount.Equal(ins.Amount) {
		return nil, apperr.Validation("amount must match the installment; recalculate the schedule to change it")
	}

	if taken, err := s.receiptTaken(ctx, req.ReceiptNumber); err != nil {
		return nil, err
	} else if taken {
		return nil, apperr.Conflict("receipt number already used")
	}

	sale, err := s.repo.FindByID(ctx, ins.SaleID)
	if err != nil {
		return nil, apperr.NotFound("sale not found")
	}

	now := time.Now().UTC()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.installmentRepo.MarkPaidTx(tx, ins.ID, amount, req.ReceiptNumber, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.Conflict("installment was paid concurrently")
		}

		payment := model.Payment{
			BranchID:      ins.BranchID,
			CustomerID:    sale.CustomerID,
			SaleID:        &sale.ID,
			Amount:        amount,
			ReceiptNumber: req.ReceiptNumber,
			Type:          model.PaymentInstallment,
			Place:         req.Place,
		}
		if err := s.paymentRepo.CreateTx(ctx, tx, &payment); err != nil {
			return err
		}

		if err := s.repo.IncrementPaidTx(tx, sale.ID, amount); err != nil {
			return err
		}
		return s.repo.CompleteIfSettledTx(tx, sale.ID)
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := s.repo.FindByID(ctx, sale.ID)
	if err != nil {
		return nil, err
	}

	// Audit and receipt delivery are best-effort after commit; the money
	// movement itself never waits on Redis. The receipt quotes the balance
	// after this payment, so it is built from the re-fetched sale.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueAudit(ctx, worker.AuditPayload{
			BranchID: ins.BranchID.String(),
			UserID:   actor.ID.String(),
			Action:   "installment.pay",
			Entity:   "installment",
			EntityID: ins.ID.String(),
			Snapshot: mustJSON(map[string]interface{}{
				"amount":         amount,
				"receipt_number": req.ReceiptNumber,
				"sale_id":        sale.ID.String(),
			}),
		})
	}
	s.dispatchReceipt(ctx, updated, updated.Customer, req.ReceiptNumber, amount, req.CustomerEmail)

	return saleToResponse(updated), nil
}

// ── RecalculateInstallments ──────────────────────────────────────────────────
// Drops the unpaid tail of the schedule and regenerates it over the remaining
// balance. Paid installments are immutable history and stay untouched.

func (s *saleService) RecalculateInstallments(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, saleID uuid.UUID, req dto.RecalculateInstallmentsRequest) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, apperr.NotFound("sale not found")
	}
	if err := scope.EnsureInScope(sale, sc); err != nil {
		return nil, err
	}
	if sale.Kind != model.SaleInstallment {
		return nil, apperr.Conflict("only installment sales have a schedule")
	}
	remaining := sale.TotalPrice.Sub(sale.PaidAmount)
	if !remaining.IsPositive() {
		return nil, apperr.Validation("nothing left to schedule; sale is fully paid")
	}

	installments, err := generateInstallments(sale.ID, sale.BranchID, remaining, req.InstallmentCount, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.installmentRepo.DeleteUnpaidBySaleTx(tx, sc, sale.ID); err != nil {
			return err
		}
		if err := s.installmentRepo.CreateBatchTx(ctx, tx, installments); err != nil {
			return err
		}
		return s.auditRepo.CreateTx(ctx, tx, auditEntry(actor, sale.BranchID, "installments.recalculate", "machine_sale", sale.ID, map[string]interface{}{
			"installment_count": req.InstallmentCount,
			"remaining":         remaining,
		}))
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := s.repo.FindByID(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	return saleToResponse(updated), nil
}

// ── VoidSale ─────────────────────────────────────────────────────────────────
// Unwinds the whole aggregate: payments, installments, ownership, the sale
// row itself, and puts the machine back in stock. The audit entry keeps the
// full snapshot, so the trail survives the deletion.

func (s *saleService) VoidSale(ctx context.Context, actor scope.Actor, sc scope.EffectiveScope, saleID uuid.UUID) error {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return apperr.NotFound("sale not found")
	}
	if err := scope.EnsureInScope(sale, sc); err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.paymentRepo.DeleteBySaleTx(tx, sc, sale.ID); err != nil {
			return err
		}
		if err := s.installmentRepo.DeleteBySaleTx(tx, sc, sale.ID); err != nil {
			return err
		}
		if err := s.ownershipRepo.DeleteIfOwnerTx(tx, sc, sale.MachineID, sale.CustomerID); err != nil {
			return err
		}
		// Zero rows is fine: the machine may have moved on (e.g. into
		// maintenance) since the sale.
		if _, err := s.machineRepo.UpdateStatusTx(tx, sale.MachineID, model.MachineSold, model.MachineInStock); err != nil {
			return err
		}
		if err := s.repo.DeleteTx(tx, sale.ID); err != nil {
			return err
		}
		return s.auditRepo.CreateTx(ctx, tx, auditEntry(actor, sale.BranchID, "sale.void", "machine_sale", sale.ID, sale))
	})
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, sc scope.EffectiveScope, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("sale not found")
	}
	if err := scope.EnsureInScope(sale, sc); err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, sc scope.EffectiveScope, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
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
	if filter.CustomerID != "" {
		id, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, apperr.Validation("invalid customer_id")
		}
		f["customer_id"] = id
	}
	if filter.Status != "" && filter.Status != "all" {
		f["status"] = filter.Status
	}
	if filter.Kind != "" {
		f["kind"] = filter.Kind
	}

	sales, total, err := s.repo.List(ctx, sc, f, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *saleService) dispatchReceipt(ctx context.Context, sale *model.MachineSale, customer *model.Customer, receipt string, amount decimal.Decimal, email *string) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.ReceiptPayload{
		SaleID:        sale.ID.String(),
		BranchID:      sale.BranchID.String(),
		ReceiptNumber: receipt,
		SerialNumber:  sale.SerialNumber,
		Amount:        amount,
		Remaining:     sale.TotalPrice.Sub(sale.PaidAmount),
	}
	if customer != nil {
		payload.CustomerName = customer.Name
	}
	if email != nil && *email != "" {
		payload.CustomerEmail = *email
	}
	_ = s.dispatcher.EnqueueReceipt(ctx, payload)
}

func auditEntry(actor scope.Actor, branchID uuid.UUID, action, entity string, entityID uuid.UUID, snapshot interface{}) *model.AuditLog {
	return &model.AuditLog{
		BranchID: branchID,
		UserID:   actor.ID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Snapshot: mustJSON(snapshot),
	}
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func saleToResponse(sale *model.MachineSale) *dto.SaleResponse {
	installments := make([]dto.InstallmentResponse, 0, len(sale.Installments))
	for _, ins := range sale.Installments {
		item := dto.InstallmentResponse{
			ID:            ins.ID.String(),
			DueDate:       ins.DueDate.Format("2006-01-02"),
			Amount:        ins.Amount,
			IsPaid:        ins.IsPaid,
			PaidAmount:    ins.PaidAmount,
			ReceiptNumber: ins.ReceiptNumber,
		}
		if ins.PaidAt != nil {
			paidAt := ins.PaidAt.Format(time.RFC3339)
			item.PaidAt = &paidAt
		}
		installments = append(installments, item)
	}

	customerName := ""
	if sale.Customer != nil {
		customerName = sale.Customer.Name
	}
	return &dto.SaleResponse{
		ID:           sale.ID.String(),
		BranchID:     sale.BranchID.String(),
		MachineID:    sale.MachineID.String(),
		SerialNumber: sale.SerialNumber,
		CustomerID:   sale.CustomerID.String(),
		CustomerName: customerName,
		Kind:         sale.Kind,
		TotalPrice:   sale.TotalPrice,
		PaidAmount:   sale.PaidAmount,
		Remaining:    sale.TotalPrice.Sub(sale.PaidAmount),
		Status:       sale.Status,
		SoldAt:       sale.SoldAt.Format(time.RFC3339),
		Installments: installments,
	}
}
