package tenant

import (
	"fmt"

	"github.com/dogansystem/agentflow/model"
)

type TenantNotFoundError struct {
	TenantId string
}

func (e TenantNotFoundError) Error() string {
	return fmt.Sprintf("tenant %s not found", e.TenantId)
}

type TenantInactiveError struct {
	TenantId string
	Status   model.TenantStatus
}

func (e TenantInactiveError) Error() string {
	return fmt.Sprintf("tenant %s is not active (status: %s)", e.TenantId, e.Status)
}

// CrossTenantAccessError is raised when code running under one tenant's scope
// attempts to resolve or touch another tenant's storage. It is always a
// programming error and never retried.
type CrossTenantAccessError struct {
	Active    string
	Requested string
}

func (e CrossTenantAccessError) Error() string {
	return fmt.Sprintf("cross tenant access: scope %s attempted to access tenant %s", e.Active, e.Requested)
}

// NoTenantContextError is raised on storage access outside any tenant scope.
type NoTenantContextError struct{}

func (e NoTenantContextError) Error() string {
	return "no tenant context active"
}
