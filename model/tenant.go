package model

import "time"

type TenantStatus string

const TENANT_TRIAL TenantStatus = "trial"
const TENANT_ACTIVE TenantStatus = "active"
const TENANT_SUSPENDED TenantStatus = "suspended"
const TENANT_CANCELLED TenantStatus = "cancelled"
const TENANT_EXPIRED TenantStatus = "expired"

type Tenant struct {
	Id           string         `json:"id"`
	Name         string         `json:"name"`
	Status       TenantStatus   `json:"status"`
	Tier         string         `json:"tier"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	TrialEndDate time.Time      `json:"trialEndDate,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// IsActive reports whether the tenant may resolve its isolated storage.
// Only trial and active tenants are allowed to run workflows.
func (t *Tenant) IsActive() bool {
	return t.Status == TENANT_TRIAL || t.Status == TENANT_ACTIVE
}
