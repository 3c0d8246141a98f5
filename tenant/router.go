package tenant

import (
	"context"
	"sync"

	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/persistence"
	"go.uber.org/zap"
)

// Router resolves which tenant's isolated storage an operation runs against
// and guarantees no code path silently operates under the wrong tenant.
// Handles are opened lazily on first scoped use and closed when the last
// concurrent scope releases them.
type Router struct {
	directory *Directory
	factory   persistence.Factory

	mu      sync.Mutex
	handles map[string]*handle
}

type handle struct {
	store persistence.Store
	refs  int
	// writeMu serializes concurrent writers to one tenant's storage while
	// leaving different tenants fully parallel.
	writeMu sync.Mutex
}

func NewRouter(directory *Directory, factory persistence.Factory) *Router {
	return &Router{
		directory: directory,
		factory:   factory,
		handles:   make(map[string]*handle),
	}
}

// Resolve returns the guarded storage handle of the given tenant. It fails
// with TenantNotFoundError or TenantInactiveError, and with
// CrossTenantAccessError when called under another tenant's scope.
func (r *Router) Resolve(ctx context.Context, tenantId string) (persistence.Store, error) {
	if active, ok := FromContext(ctx); ok && active != tenantId {
		logger.Error("cross tenant access refused", zap.String("scope", active), zap.String("requested", tenantId))
		return nil, CrossTenantAccessError{Active: active, Requested: tenantId}
	}
	tenant, err := r.directory.Get(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive() {
		return nil, TenantInactiveError{TenantId: tenantId, Status: tenant.Status}
	}
	h, err := r.handle(tenantId)
	if err != nil {
		return nil, err
	}
	return &guardedStore{inner: h.store, handle: h, tenantId: tenantId}, nil
}

// WithTenant runs fn inside the tenant's scope. The scope is pushed onto the
// context, the handle acquired, and both are released on every exit path. A
// nested call for a different tenant fails fast with CrossTenantAccessError
// instead of silently switching scope.
func (r *Router) WithTenant(ctx context.Context, tenantId string, fn func(ctx context.Context, store persistence.Store) error) error {
	if active, ok := FromContext(ctx); ok && active != tenantId {
		return CrossTenantAccessError{Active: active, Requested: tenantId}
	}
	tenant, err := r.directory.Get(ctx, tenantId)
	if err != nil {
		return err
	}
	if !tenant.IsActive() {
		return TenantInactiveError{TenantId: tenantId, Status: tenant.Status}
	}
	h, err := r.acquireHandle(tenantId)
	if err != nil {
		return err
	}
	defer r.release(tenantId)
	store := &guardedStore{inner: h.store, handle: h, tenantId: tenantId}
	return fn(withScope(ctx, tenantId), store)
}

// CurrentTenant returns the tenant id of the active scope, if any.
func (r *Router) CurrentTenant(ctx context.Context) (string, bool) {
	return FromContext(ctx)
}

// Close releases every open handle. Used on shutdown.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tenantId, h := range r.handles {
		if err := h.store.Close(); err != nil {
			logger.Error("error closing tenant storage", zap.String("tenant", tenantId), zap.Error(err))
		}
		delete(r.handles, tenantId)
	}
	return nil
}

func (r *Router) handle(tenantId string) (*handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[tenantId]
	if !ok {
		store, err := r.factory.Open(tenantId)
		if err != nil {
			return nil, err
		}
		h = &handle{store: store}
		r.handles[tenantId] = h
		logger.Debug("tenant storage opened", zap.String("tenant", tenantId))
	}
	return h, nil
}

// acquireHandle opens the tenant's store if needed and takes a reference, in
// one critical section so a concurrent release cannot close it in between.
func (r *Router) acquireHandle(tenantId string) (*handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[tenantId]
	if !ok {
		store, err := r.factory.Open(tenantId)
		if err != nil {
			return nil, err
		}
		h = &handle{store: store}
		r.handles[tenantId] = h
		logger.Debug("tenant storage opened", zap.String("tenant", tenantId))
	}
	h.refs++
	return h, nil
}

func (r *Router) release(tenantId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[tenantId]
	if !ok {
		return
	}
	h.refs--
	if h.refs <= 0 {
		if err := h.store.Close(); err != nil {
			logger.Error("error closing tenant storage", zap.String("tenant", tenantId), zap.Error(err))
		}
		delete(r.handles, tenantId)
		logger.Debug("tenant storage released", zap.String("tenant", tenantId))
	}
}
