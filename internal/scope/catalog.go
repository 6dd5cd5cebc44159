package scope

import "machtrade/internal/apperr"

// Resource identifies an entity type enrolled in the isolation policy.
type Resource string

const (
	ResourceBranches        Resource = "branches"
	ResourceCustomers       Resource = "customers"
	ResourceMachines        Resource = "machines"
	ResourceMachineSales    Resource = "machine_sales"
	ResourceInstallments    Resource = "installments"
	ResourcePayments        Resource = "payments"
	ResourceOwnerships      Resource = "ownerships"
	ResourceMaintenanceJobs Resource = "maintenance_jobs"
	ResourceAuditLogs       Resource = "audit_logs"
)

// Operation classifies a data access for the interceptor.
type Operation int

const (
	OpReadMany Operation = iota
	OpReadOneUnique
	OpWriteMany
	OpWriteOneUnique
	OpAggregate
)

func (o Operation) String() string {
	switch o {
	case OpReadMany:
		return "read-many"
	case OpReadOneUnique:
		return "read-one-unique"
	case OpWriteMany:
		return "write-many"
	case OpWriteOneUnique:
		return "write-one-unique"
	default:
		return "aggregate"
	}
}

// unique reports whether the operation targets a single row by unique key.
// Such operations are never auto-rewritten (see Enforcer.Intercept).
func (o Operation) unique() bool {
	return o == OpReadOneUnique || o == OpWriteOneUnique
}

// Descriptor declares how a resource is scoped. Any one of ScopingFields
// appearing in a filter satisfies the policy.
type Descriptor struct {
	Resource      Resource
	ScopingFields []string
}

// Catalog is the static table mapping resource type → scoping fields.
// An entity missing from the catalog is silently unprotected, which is why
// Validate runs at startup and the full enrollment is asserted in tests.
type Catalog map[Resource]Descriptor

// DefaultCatalog enrolls every branch-owned entity. Branches themselves are
// scoped by their own primary key.
var DefaultCatalog = Catalog{
	ResourceBranches:        {Resource: ResourceBranches, ScopingFields: []string{"id"}},
	ResourceCustomers:       {Resource: ResourceCustomers, ScopingFields: []string{"branch_id"}},
	ResourceMachines:        {Resource: ResourceMachines, ScopingFields: []string{"branch_id"}},
	ResourceMachineSales:    {Resource: ResourceMachineSales, ScopingFields: []string{"branch_id"}},
	ResourceInstallments:    {Resource: ResourceInstallments, ScopingFields: []string{"branch_id"}},
	ResourcePayments:        {Resource: ResourcePayments, ScopingFields: []string{"branch_id"}},
	ResourceOwnerships:      {Resource: ResourceOwnerships, ScopingFields: []string{"branch_id"}},
	ResourceMaintenanceJobs: {Resource: ResourceMaintenanceJobs, ScopingFields: []string{"branch_id"}},
	ResourceAuditLogs:       {Resource: ResourceAuditLogs, ScopingFields: []string{"branch_id"}},
}

// Resource looks up a descriptor. Unknown resource types are a configuration
// bug, never a silent bypass.
func (c Catalog) Resource(r Resource) (Descriptor, error) {
	d, ok := c[r]
	if !ok {
		return Descriptor{}, apperr.Configuration("resource %q is not enrolled in the scope catalog", r)
	}
	return d, nil
}

// Validate fails fast on malformed entries. Called from main at startup.
func (c Catalog) Validate() error {
	for r, d := range c {
		if len(d.ScopingFields) == 0 {
			return apperr.Configuration("catalog resource %q declares no scoping fields", r)
		}
		if d.Resource != r {
			return apperr.Configuration("catalog resource %q keyed under %q", d.Resource, r)
		}
	}
	return nil
}
