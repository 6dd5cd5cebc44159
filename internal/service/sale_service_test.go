package service

import (
	"context"
	"testing"
	"time"

	"machtrade/internal/apperr"
	"machtrade/internal/dto"
	"machtrade/internal/model"
	"machtrade/internal/repository"
	"machtrade/internal/scope"
	"machtrade/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ─── in-memory stubs ─────────────────────────────────────────────────────────
// Every stub returns a nil *gorm.DB so runTx executes the callback directly.

type stubMachineRepo struct {
	machines map[uuid.UUID]*model.Machine
	// failStatusFlip simulates losing the guarded status update to a
	// concurrent sale of the same unit.
	failStatusFlip bool
}

var _ repository.MachineRepository = (*stubMachineRepo)(nil)

func newStubMachineRepo() *stubMachineRepo {
	return &stubMachineRepo{machines: map[uuid.UUID]*model.Machine{}}
}

func (r *stubMachineRepo) List(_ context.Context, _ scope.EffectiveScope, _ scope.Filter, _, _ int) ([]model.Machine, int64, error) {
	out := make([]model.Machine, 0, len(r.machines))
	for _, m := range r.machines {
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMachineRepo) FindBySerial(_ context.Context, serial string) (*model.Machine, error) {
	for _, m := range r.machines {
		if m.SerialNumber == serial {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMachineRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMachineRepo) Create(_ context.Context, m *model.Machine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.machines[m.ID] = &cp
	return nil
}

func (r *stubMachineRepo) Update(_ context.Context, m *model.Machine) error {
	cp := *m
	r.machines[m.ID] = &cp
	return nil
}

func (r *stubMachineRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) (int64, error) {
	m, ok := r.machines[id]
	if !ok || m.Status != from || r.failStatusFlip {
		return 0, nil
	}
	m.Status = to
	return 1, nil
}

func (r *stubMachineRepo) DB() *gorm.DB { return nil }

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: map[uuid.UUID]*model.Customer{}}
}

func (r *stubCustomerRepo) List(_ context.Context, _ scope.EffectiveScope, _ scope.Filter, _, _ int) ([]model.Customer, int64, error) {
	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) DB() *gorm.DB { return nil }

type stubInstallmentRepo struct {
	items map[uuid.UUID]*model.Installment
	// failMarkPaid simulates losing the is_paid guard to a concurrent writer.
	failMarkPaid bool
}

var _ repository.InstallmentRepository = (*stubInstallmentRepo)(nil)

func newStubInstallmentRepo() *stubInstallmentRepo {
	return &stubInstallmentRepo{items: map[uuid.UUID]*model.Installment{}}
}

func (r *stubInstallmentRepo) bySale(saleID uuid.UUID) []model.Installment {
	var out []model.Installment
	for _, in := range r.items {
		if in.SaleID == saleID {
			out = append(out, *in)
		}
	}
	return out
}

func (r *stubInstallmentRepo) List(_ context.Context, _ scope.EffectiveScope, _ scope.Filter, _, _ int) ([]model.Installment, int64, error) {
	out := make([]model.Installment, 0, len(r.items))
	for _, in := range r.items {
		out = append(out, *in)
	}
	return out, int64(len(out)), nil
}

func (r *stubInstallmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Installment, error) {
	in, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *in
	return &cp, nil
}

func (r *stubInstallmentRepo) CreateBatchTx(_ context.Context, _ *gorm.DB, installments []model.Installment) error {
	for i := range installments {
		if installments[i].ID == uuid.Nil {
			installments[i].ID = uuid.New()
		}
		cp := installments[i]
		r.items[cp.ID] = &cp
	}
	return nil
}

func (r *stubInstallmentRepo) MarkPaidTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal, receipt string, paidAt time.Time) (int64, error) {
	in, ok := r.items[id]
	if !ok || in.IsPaid || r.failMarkPaid {
		return 0, nil
	}
	in.IsPaid = true
	in.PaidAmount = amount
	in.ReceiptNumber = &receipt
	in.PaidAt = &paidAt
	return 1, nil
}

func (r *stubInstallmentRepo) DeleteUnpaidBySaleTx(_ *gorm.DB, _ scope.EffectiveScope, saleID uuid.UUID) error {
	for id, in := range r.items {
		if in.SaleID == saleID && !in.IsPaid {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *stubInstallmentRepo) DeleteBySaleTx(_ *gorm.DB, _ scope.EffectiveScope, saleID uuid.UUID) error {
	for id, in := range r.items {
		if in.SaleID == saleID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *stubInstallmentRepo) ReceiptTaken(_ context.Context, receipt string) (bool, error) {
	for _, in := range r.items {
		if in.IsPaid && in.ReceiptNumber != nil && *in.ReceiptNumber == receipt {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubInstallmentRepo) DB() *gorm.DB { return nil }

type stubPaymentRepo struct {
	payments []model.Payment
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

func (r *stubPaymentRepo) List(_ context.Context, _ scope.EffectiveScope, _ scope.Filter, _, _ int) ([]model.Payment, int64, error) {
	return append([]model.Payment(nil), r.payments...), int64(len(r.payments)), nil
}

func (r *stubPaymentRepo) CreateTx(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubPaymentRepo) ReceiptExists(_ context.Context, receipt string) (bool, error) {
	for _, p := range r.payments {
		if p.ReceiptNumber == receipt {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPaymentRepo) DeleteBySaleTx(_ *gorm.DB, _ scope.EffectiveScope, saleID uuid.UUID) error {
	kept := r.payments[:0]
	for _, p := range r.payments {
		if p.SaleID == nil || *p.SaleID != saleID {
			kept = append(kept, p)
		}
	}
	r.payments = kept
	return nil
}

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.MachineSale
	ins   *stubInstallmentRepo
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

func (r *stubSaleRepo) List(_ context.Context, _ scope.EffectiveScope, _ scope.Filter, _, _ int) ([]model.MachineSale, int64, error) {
	out := make([]model.MachineSale, 0, len(r.sales))
	for _, s := range r.sales {
		cp := *s
		cp.Installments = r.ins.bySale(s.ID)
		out = append(out, cp)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MachineSale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Installments = r.ins.bySale(id)
	return &cp, nil
}

func (r *stubSaleRepo) CreateTx(_ context.Context, _ *gorm.DB, s *model.MachineSale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) IncrementPaidTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	if s, ok := r.sales[id]; ok {
		s.PaidAmount = s.PaidAmount.Add(amount)
	}
	return nil
}

func (r *stubSaleRepo) CompleteIfSettledTx(_ *gorm.DB, id uuid.UUID) error {
	if s, ok := r.sales[id]; ok && s.PaidAmount.GreaterThanOrEqual(s.TotalPrice) {
		s.Status = model.SaleCompleted
	}
	return nil
}

func (r *stubSaleRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.sales, id)
	return nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

type stubOwnershipRepo struct {
	records []model.Ownership
}

var _ repository.OwnershipRepository = (*stubOwnershipRepo)(nil)

func (r *stubOwnershipRepo) List(_ context.Context, _ scope.EffectiveScope, _ scope.Filter, _, _ int) ([]model.Ownership, int64, error) {
	return append([]model.Ownership(nil), r.records...), int64(len(r.records)), nil
}

func (r *stubOwnershipRepo) CreateTx(_ context.Context, _ *gorm.DB, o *model.Ownership) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.records = append(r.records, *o)
	return nil
}

func (r *stubOwnershipRepo) DeleteIfOwnerTx(_ *gorm.DB, _ scope.EffectiveScope, machineID, customerID uuid.UUID) error {
	kept := r.records[:0]
	for _, o := range r.records {
		if o.MachineID != machineID || o.CustomerID != customerID {
			kept = append(kept, o)
		}
	}
	r.records = kept
	return nil
}

func (r *stubOwnershipRepo) DB() *gorm.DB { return nil }

type stubAuditRepo struct {
	entries []model.AuditLog
}

var _ repository.AuditRepository = (*stubAuditRepo)(nil)

func (r *stubAuditRepo) List(_ context.Context, _ scope.EffectiveScope, _ scope.Filter, _, _ int) ([]model.AuditLog, int64, error) {
	return append([]model.AuditLog(nil), r.entries...), int64(len(r.entries)), nil
}

func (r *stubAuditRepo) CreateTx(_ context.Context, _ *gorm.DB, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepo) DB() *gorm.DB { return nil }

func (r *stubAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type recordingDispatcher struct {
	receipts []worker.ReceiptPayload
	audits   []worker.AuditPayload
}

var _ jobDispatcher = (*recordingDispatcher)(nil)

func (d *recordingDispatcher) EnqueueReceipt(_ context.Context, p worker.ReceiptPayload) error {
	d.receipts = append(d.receipts, p)
	return nil
}

func (d *recordingDispatcher) EnqueueAudit(_ context.Context, p worker.AuditPayload) error {
	d.audits = append(d.audits, p)
	return nil
}

// ─── fixture ─────────────────────────────────────────────────────────────────

type saleFixture struct {
	branchID uuid.UUID
	actor    scope.Actor
	sc       scope.EffectiveScope

	machines     *stubMachineRepo
	customers    *stubCustomerRepo
	sales        *stubSaleRepo
	installments *stubInstallmentRepo
	payments     *stubPaymentRepo
	ownerships   *stubOwnershipRepo
	audits       *stubAuditRepo

	machine  *model.Machine
	customer *model.Customer
	svc      SaleService
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	branchID := uuid.New()

	f := &saleFixture{
		branchID:     branchID,
		sc:           scope.ExactBranch(branchID),
		machines:     newStubMachineRepo(),
		customers:    newStubCustomerRepo(),
		installments: newStubInstallmentRepo(),
		payments:     &stubPaymentRepo{},
		ownerships:   &stubOwnershipRepo{},
		audits:       &stubAuditRepo{},
	}
	f.actor = scope.Actor{ID: uuid.New(), Role: scope.RoleBranch, HomeBranchID: &branchID}.Normalize()
	f.sales = &stubSaleRepo{sales: map[uuid.UUID]*model.MachineSale{}, ins: f.installments}

	f.machine = &model.Machine{
		ID:           uuid.New(),
		BranchID:     branchID,
		SerialNumber: "MX-100",
		Model:        "Excavator 320",
		SalePrice:    dec("10000.00"),
		Status:       model.MachineInStock,
	}
	require.NoError(t, f.machines.Create(context.Background(), f.machine))

	f.customer = &model.Customer{ID: uuid.New(), BranchID: branchID, Name: "Acme Constructions"}
	require.NoError(t, f.customers.Create(context.Background(), f.customer))

	f.svc = NewSaleService(f.sales, f.installments, f.payments, f.machines, f.customers, f.ownerships, f.audits, nil)
	return f
}

func (f *saleFixture) createInstallmentSale(t *testing.T, upfront string, count int) *dto.SaleResponse {
	t.Helper()
	resp, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:     f.machine.SerialNumber,
		CustomerID:       f.customer.ID.String(),
		Kind:             model.SaleInstallment,
		TotalPrice:       dec("10000.00"),
		PaidAmount:       dec(upfront),
		InstallmentCount: count,
		ReceiptNumber:    "R-0001",
		Place:            "Main Office",
	})
	require.NoError(t, err)
	return resp
}

// ─── CreateSale ──────────────────────────────────────────────────────────────

func TestCreateSale_Cash(t *testing.T) {
	f := newSaleFixture(t)

	resp, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:  "MX-100",
		CustomerID:    f.customer.ID.String(),
		Kind:          model.SaleCash,
		TotalPrice:    dec("10000.00"),
		ReceiptNumber: "R-0001",
		Place:         "Main Office",
	})

	require.NoError(t, err)
	assert.Equal(t, model.SaleCompleted, resp.Status)
	assert.True(t, resp.PaidAmount.Equal(dec("10000.00")))
	assert.True(t, resp.Remaining.IsZero())
	assert.Empty(t, resp.Installments)

	assert.Equal(t, model.MachineSold, f.machines.machines[f.machine.ID].Status)
	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, model.PaymentSaleUpfront, f.payments.payments[0].Type)
	assert.True(t, f.payments.payments[0].Amount.Equal(dec("10000.00")))
	require.Len(t, f.ownerships.records, 1)
	assert.Equal(t, f.customer.ID, f.ownerships.records[0].CustomerID)
	assert.Equal(t, []string{"sale.create"}, f.audits.actions())
}

func TestCreateSale_InstallmentSchedule(t *testing.T) {
	f := newSaleFixture(t)

	resp := f.createInstallmentSale(t, "2000.00", 4)

	assert.Equal(t, model.SaleOngoing, resp.Status)
	assert.True(t, resp.Remaining.Equal(dec("8000.00")))
	require.Len(t, resp.Installments, 4)

	sum := decimal.Zero
	for _, in := range resp.Installments {
		assert.False(t, in.IsPaid)
		sum = sum.Add(in.Amount)
	}
	assert.True(t, sum.Equal(dec("8000.00")))

	// The upfront payment hits the ledger; the schedule does not.
	require.Len(t, f.payments.payments, 1)
	assert.True(t, f.payments.payments[0].Amount.Equal(dec("2000.00")))
}

func TestCreateSale_InstallmentZeroUpfront(t *testing.T) {
	f := newSaleFixture(t)

	resp := f.createInstallmentSale(t, "0", 5)

	assert.True(t, resp.Remaining.Equal(dec("10000.00")))
	// No zero-amount payment row.
	assert.Empty(t, f.payments.payments)
}

func TestCreateSale_ZeroUpfrontNeedsNoReceipt(t *testing.T) {
	f := newSaleFixture(t)
	d := &recordingDispatcher{}
	f.svc.(*saleService).dispatcher = d

	resp, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:     "MX-100",
		CustomerID:       f.customer.ID.String(),
		Kind:             model.SaleInstallment,
		TotalPrice:       dec("10000.00"),
		PaidAmount:       dec("0"),
		InstallmentCount: 5,
	})

	require.NoError(t, err)
	assert.True(t, resp.Remaining.Equal(dec("10000.00")))
	// Nothing was collected, so no payment row and no receipt job.
	assert.Empty(t, f.payments.payments)
	assert.Empty(t, d.receipts)
}

func TestCreateSale_CollectedUpfrontRequiresReceipt(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:     "MX-100",
		CustomerID:       f.customer.ID.String(),
		Kind:             model.SaleInstallment,
		TotalPrice:       dec("10000.00"),
		PaidAmount:       dec("2000.00"),
		InstallmentCount: 4,
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, model.MachineInStock, f.machines.machines[f.machine.ID].Status)
}

func TestCreateSale_UpfrontCoveringPriceRejected(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:     "MX-100",
		CustomerID:       f.customer.ID.String(),
		Kind:             model.SaleInstallment,
		TotalPrice:       dec("10000.00"),
		PaidAmount:       dec("10000.00"),
		InstallmentCount: 3,
		ReceiptNumber:    "R-0001",
		Place:            "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, model.MachineInStock, f.machines.machines[f.machine.ID].Status)
}

func TestCreateSale_MachineNotInStock(t *testing.T) {
	f := newSaleFixture(t)
	f.machines.machines[f.machine.ID].Status = model.MachineMaintenance

	_, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:  "MX-100",
		CustomerID:    f.customer.ID.String(),
		Kind:          model.SaleCash,
		TotalPrice:    dec("10000.00"),
		ReceiptNumber: "R-0001",
		Place:         "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateSale_MachineOutOfScopeReadsAsNotFound(t *testing.T) {
	f := newSaleFixture(t)
	f.machines.machines[f.machine.ID].BranchID = uuid.New()

	_, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:  "MX-100",
		CustomerID:    f.customer.ID.String(),
		Kind:          model.SaleCash,
		TotalPrice:    dec("10000.00"),
		ReceiptNumber: "R-0001",
		Place:         "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, "record not found")
}

func TestCreateSale_DuplicateReceipt(t *testing.T) {
	f := newSaleFixture(t)
	f.payments.payments = append(f.payments.payments, model.Payment{
		ID:            uuid.New(),
		BranchID:      f.branchID,
		CustomerID:    f.customer.ID,
		Amount:        dec("50.00"),
		ReceiptNumber: "R-0001",
		Type:          model.PaymentSaleUpfront,
	})

	_, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:  "MX-100",
		CustomerID:    f.customer.ID.String(),
		Kind:          model.SaleCash,
		TotalPrice:    dec("10000.00"),
		ReceiptNumber: "R-0001",
		Place:         "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, model.MachineInStock, f.machines.machines[f.machine.ID].Status)
}

func TestCreateSale_ConcurrentSaleLosesStatusRace(t *testing.T) {
	f := newSaleFixture(t)
	// The pre-flight read sees in_stock, but the guarded status flip loses.
	f.machines.failStatusFlip = true

	_, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:  "MX-100",
		CustomerID:    f.customer.ID.String(),
		Kind:          model.SaleCash,
		TotalPrice:    dec("10000.00"),
		ReceiptNumber: "R-0001",
		Place:         "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, f.sales.sales)
}

// ─── PayInstallment ──────────────────────────────────────────────────────────

func TestPayInstallment_MarksPaidAndAccumulates(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	insID := uuid.MustParse(resp.Installments[0].ID)

	updated, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount:        dec("2000.00"),
		ReceiptNumber: "R-0002",
		Place:         "Main Office",
	})

	require.NoError(t, err)
	assert.True(t, updated.PaidAmount.Equal(dec("4000.00")))
	assert.Equal(t, model.SaleOngoing, updated.Status)

	paid := f.installments.items[insID]
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.ReceiptNumber)
	assert.Equal(t, "R-0002", *paid.ReceiptNumber)

	require.Len(t, f.payments.payments, 2)
	assert.Equal(t, model.PaymentInstallment, f.payments.payments[1].Type)
}

func TestPayInstallment_LastPaymentCompletesSale(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "8000.00", 1)
	insID := uuid.MustParse(resp.Installments[0].ID)

	updated, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount:        dec("2000.00"),
		ReceiptNumber: "R-0002",
		Place:         "Main Office",
	})

	require.NoError(t, err)
	assert.Equal(t, model.SaleCompleted, updated.Status)
	assert.True(t, updated.Remaining.IsZero())
}

func TestPayInstallment_AlreadyPaid(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	insID := uuid.MustParse(resp.Installments[0].ID)

	_, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})
	require.NoError(t, err)

	_, err = f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0003", Place: "Main Office",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestPayInstallment_AmountMustMatch(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	insID := uuid.MustParse(resp.Installments[0].ID)

	_, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount: dec("1500.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPayInstallment_ReceiptReuseAcrossLedgerHalves(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	first := uuid.MustParse(resp.Installments[0].ID)
	second := uuid.MustParse(resp.Installments[1].ID)

	_, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, first, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})
	require.NoError(t, err)

	// Same receipt again: caught via the paid-installment half.
	_, err = f.svc.PayInstallment(context.Background(), f.actor, f.sc, second, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// And the sale-upfront receipt is blocked via the payment half.
	_, err = f.svc.PayInstallment(context.Background(), f.actor, f.sc, second, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0001", Place: "Main Office",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestPayInstallment_ConcurrentRepayment(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	insID := uuid.MustParse(resp.Installments[0].ID)
	f.installments.failMarkPaid = true

	_, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	// The money must not move when the guard loses.
	assert.True(t, f.sales.sales[uuid.MustParse(resp.ID)].PaidAmount.Equal(dec("2000.00")))
}

func TestPayInstallment_ReceiptQuotesPostPaymentBalance(t *testing.T) {
	f := newSaleFixture(t)
	d := &recordingDispatcher{}
	f.svc.(*saleService).dispatcher = d

	resp := f.createInstallmentSale(t, "2000.00", 4)
	insID := uuid.MustParse(resp.Installments[0].ID)

	_, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})
	require.NoError(t, err)

	// One receipt for the upfront, one for the installment. The second must
	// quote the balance after the payment it documents, not before.
	require.Len(t, d.receipts, 2)
	assert.True(t, d.receipts[0].Remaining.Equal(dec("8000.00")))
	assert.True(t, d.receipts[1].Amount.Equal(dec("2000.00")))
	assert.True(t, d.receipts[1].Remaining.Equal(dec("6000.00")))
}

func TestPayInstallment_OutOfScope(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	insID := uuid.MustParse(resp.Installments[0].ID)

	foreign := scope.ExactBranch(uuid.New())
	_, err := f.svc.PayInstallment(context.Background(), f.actor, foreign, insID, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.EqualError(t, err, "record not found")
}

// ─── RecalculateInstallments ─────────────────────────────────────────────────

func TestRecalculateInstallments_RebuildsUnpaidTail(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	saleID := uuid.MustParse(resp.ID)
	first := uuid.MustParse(resp.Installments[0].ID)

	_, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, first, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})
	require.NoError(t, err)

	updated, err := f.svc.RecalculateInstallments(context.Background(), f.actor, f.sc, saleID, dto.RecalculateInstallmentsRequest{
		InstallmentCount: 3,
	})
	require.NoError(t, err)

	// Paid history survives; the open tail is rebuilt over the 6000 remaining.
	var paid, open int
	sum := decimal.Zero
	for _, in := range updated.Installments {
		if in.IsPaid {
			paid++
			continue
		}
		open++
		sum = sum.Add(in.Amount)
	}
	assert.Equal(t, 1, paid)
	assert.Equal(t, 3, open)
	assert.True(t, sum.Equal(dec("6000.00")))
	assert.Contains(t, f.audits.actions(), "installments.recalculate")
}

func TestRecalculateInstallments_CashSale(t *testing.T) {
	f := newSaleFixture(t)
	resp, err := f.svc.CreateSale(context.Background(), f.actor, f.sc, dto.CreateSaleRequest{
		SerialNumber:  "MX-100",
		CustomerID:    f.customer.ID.String(),
		Kind:          model.SaleCash,
		TotalPrice:    dec("10000.00"),
		ReceiptNumber: "R-0001",
		Place:         "Main Office",
	})
	require.NoError(t, err)

	_, err = f.svc.RecalculateInstallments(context.Background(), f.actor, f.sc, uuid.MustParse(resp.ID), dto.RecalculateInstallmentsRequest{InstallmentCount: 2})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRecalculateInstallments_NothingRemaining(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "8000.00", 1)
	insID := uuid.MustParse(resp.Installments[0].ID)

	_, err := f.svc.PayInstallment(context.Background(), f.actor, f.sc, insID, dto.PayInstallmentRequest{
		Amount: dec("2000.00"), ReceiptNumber: "R-0002", Place: "Main Office",
	})
	require.NoError(t, err)

	// A zero balance is a bad input to split, not a state conflict.
	_, err = f.svc.RecalculateInstallments(context.Background(), f.actor, f.sc, uuid.MustParse(resp.ID), dto.RecalculateInstallmentsRequest{InstallmentCount: 2})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// ─── VoidSale ────────────────────────────────────────────────────────────────

func TestVoidSale_UnwindsAggregate(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	saleID := uuid.MustParse(resp.ID)

	err := f.svc.VoidSale(context.Background(), f.actor, f.sc, saleID)

	require.NoError(t, err)
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.payments.payments)
	assert.Empty(t, f.installments.items)
	assert.Empty(t, f.ownerships.records)
	assert.Equal(t, model.MachineInStock, f.machines.machines[f.machine.ID].Status)
	assert.Contains(t, f.audits.actions(), "sale.void")
}

func TestVoidSale_KeepsNewerOwnership(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)
	saleID := uuid.MustParse(resp.ID)

	// The machine was meanwhile resold to someone else.
	other := uuid.New()
	f.ownerships.records[0].CustomerID = other

	require.NoError(t, f.svc.VoidSale(context.Background(), f.actor, f.sc, saleID))

	require.Len(t, f.ownerships.records, 1)
	assert.Equal(t, other, f.ownerships.records[0].CustomerID)
}

func TestVoidSale_OutOfScope(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)

	err := f.svc.VoidSale(context.Background(), f.actor, scope.ExactBranch(uuid.New()), uuid.MustParse(resp.ID))

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.NotEmpty(t, f.sales.sales)
}

// ─── Reads ───────────────────────────────────────────────────────────────────

func TestGetSale_OutOfScopeIsNotFound(t *testing.T) {
	f := newSaleFixture(t)
	resp := f.createInstallmentSale(t, "2000.00", 4)

	_, err := f.svc.GetSale(context.Background(), scope.ExactBranch(uuid.New()), uuid.MustParse(resp.ID))

	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListSales_ComputesRemaining(t *testing.T) {
	f := newSaleFixture(t)
	f.createInstallmentSale(t, "2000.00", 4)

	list, err := f.svc.ListSales(context.Background(), f.sc, dto.SaleFilter{})

	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.True(t, list.Data[0].Remaining.Equal(dec("8000.00")))
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 50, list.Limit)
}

func TestListSales_ForeignBranchFilterRejected(t *testing.T) {
	f := newSaleFixture(t)
	f.createInstallmentSale(t, "2000.00", 4)

	// Naming the own branch narrows; naming a foreign one is refused outright
	// rather than handed to the query layer.
	_, err := f.svc.ListSales(context.Background(), f.sc, dto.SaleFilter{BranchID: f.branchID.String()})
	require.NoError(t, err)

	_, err = f.svc.ListSales(context.Background(), f.sc, dto.SaleFilter{BranchID: uuid.New().String()})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestListMachines_ForeignBranchFilterRejected(t *testing.T) {
	f := newSaleFixture(t)
	svc := NewMachineService(f.machines)

	_, err := svc.List(context.Background(), f.sc, dto.MachineFilter{BranchID: uuid.New().String()})

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}
