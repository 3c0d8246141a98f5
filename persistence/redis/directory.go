package redis

import (
	"context"

	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/util"
	rd "github.com/go-redis/redis/v9"
)

const TENANT_DIRECTORY_KEY string = "TENANTS"

var _ persistence.DirectoryStore = new(redisDirectoryStore)

type redisDirectoryStore struct {
	*baseDao
	encDec util.EncoderDecoder[model.Tenant]
}

func NewDirectoryStore(conf Config) *redisDirectoryStore {
	return &redisDirectoryStore{
		baseDao: newBaseDao(conf),
		encDec:  util.NewJsonEncoderDecoder[model.Tenant](),
	}
}

func (rds *redisDirectoryStore) SaveTenant(ctx context.Context, tenant *model.Tenant) error {
	data, err := rds.encDec.Encode(*tenant)
	if err != nil {
		return err
	}
	key := rds.getNamespaceKey(TENANT_DIRECTORY_KEY)
	if err := rds.redisClient.HSet(ctx, key, tenant.Id, string(data)).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rds *redisDirectoryStore) GetTenant(ctx context.Context, tenantId string) (*model.Tenant, error) {
	key := rds.getNamespaceKey(TENANT_DIRECTORY_KEY)
	tenantStr, err := rds.redisClient.HGet(ctx, key, tenantId).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.NotFoundError{Entity: "tenant", Id: tenantId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rds.encDec.Decode([]byte(tenantStr))
}

func (rds *redisDirectoryStore) ListTenants(ctx context.Context) ([]*model.Tenant, error) {
	key := rds.getNamespaceKey(TENANT_DIRECTORY_KEY)
	values, err := rds.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	result := make([]*model.Tenant, 0, len(values))
	for _, tenantStr := range values {
		tenant, err := rds.encDec.Decode([]byte(tenantStr))
		if err != nil {
			return nil, err
		}
		result = append(result, tenant)
	}
	return result, nil
}
