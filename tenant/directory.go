package tenant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const directoryCacheTTL = 30 * time.Second

// Directory is the authoritative registry of tenants. Reads go through a
// short-lived cache; every mutation invalidates the cached entry.
type Directory struct {
	store     persistence.DirectoryStore
	cache     *gocache.Cache
	trialDays int
}

func NewDirectory(store persistence.DirectoryStore, trialDays int) *Directory {
	if trialDays <= 0 {
		trialDays = 14
	}
	return &Directory{
		store:     store,
		cache:     gocache.New(directoryCacheTTL, time.Minute),
		trialDays: trialDays,
	}
}

func (d *Directory) Get(ctx context.Context, tenantId string) (*model.Tenant, error) {
	if cached, ok := d.cache.Get(tenantId); ok {
		t := cached.(model.Tenant)
		return &t, nil
	}
	tenant, err := d.store.GetTenant(ctx, tenantId)
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); ok {
			return nil, TenantNotFoundError{TenantId: tenantId}
		}
		return nil, err
	}
	d.cache.Set(tenantId, *tenant, gocache.DefaultExpiration)
	return tenant, nil
}

func (d *Directory) List(ctx context.Context) ([]*model.Tenant, error) {
	return d.store.ListTenants(ctx)
}

// Create provisions a new tenant on a trial subscription.
func (d *Directory) Create(ctx context.Context, name string, tier string) (*model.Tenant, error) {
	if tier == "" {
		tier = "starter"
	}
	now := time.Now()
	tenant := &model.Tenant{
		Id:           fmt.Sprintf("tenant_%s", strings.ReplaceAll(uuid.New().String(), "-", "")[:12]),
		Name:         name,
		Status:       model.TENANT_TRIAL,
		Tier:         tier,
		CreatedAt:    now,
		UpdatedAt:    now,
		TrialEndDate: now.AddDate(0, 0, d.trialDays),
	}
	if err := d.store.SaveTenant(ctx, tenant); err != nil {
		return nil, err
	}
	logger.Info("tenant created", zap.String("tenant", tenant.Id), zap.String("name", name), zap.String("tier", tier))
	return tenant, nil
}

func (d *Directory) Activate(ctx context.Context, tenantId string) error {
	return d.setStatus(ctx, tenantId, model.TENANT_ACTIVE)
}

func (d *Directory) Suspend(ctx context.Context, tenantId string) error {
	return d.setStatus(ctx, tenantId, model.TENANT_SUSPENDED)
}

func (d *Directory) Cancel(ctx context.Context, tenantId string) error {
	return d.setStatus(ctx, tenantId, model.TENANT_CANCELLED)
}

func (d *Directory) Expire(ctx context.Context, tenantId string) error {
	return d.setStatus(ctx, tenantId, model.TENANT_EXPIRED)
}

func (d *Directory) setStatus(ctx context.Context, tenantId string, status model.TenantStatus) error {
	tenant, err := d.Get(ctx, tenantId)
	if err != nil {
		return err
	}
	tenant.Status = status
	tenant.UpdatedAt = time.Now()
	if err := d.store.SaveTenant(ctx, tenant); err != nil {
		return err
	}
	d.cache.Delete(tenantId)
	logger.Info("tenant status changed", zap.String("tenant", tenantId), zap.String("status", string(status)))
	return nil
}
