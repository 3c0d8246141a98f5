package redis

import (
	"context"

	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/util"
	rd "github.com/go-redis/redis/v9"
	"go.uber.org/zap"
)

const TENANT_KEY string = "TENANT"
const WORKFLOW_DEF string = "WF_DEF"
const EXECUTION_KEY string = "EXECUTION"
const HISTORY_KEY string = "EXEC_HISTORY"

var _ persistence.Factory = new(Factory)

// Factory opens tenant stores over a single shared redis client. Isolation
// comes from the tenant id baked into every key the store touches.
type Factory struct {
	*baseDao
}

func NewFactory(conf Config) *Factory {
	return &Factory{
		baseDao: newBaseDao(conf),
	}
}

func (f *Factory) Open(tenantId string) (persistence.Store, error) {
	return &redisStore{
		baseDao:    f.baseDao,
		tenantId:   tenantId,
		wfEncDec:   util.NewJsonEncoderDecoder[model.WorkflowDefinition](),
		execEncDec: util.NewJsonEncoderDecoder[model.Execution](),
	}, nil
}

var _ persistence.Store = new(redisStore)

type redisStore struct {
	*baseDao
	tenantId   string
	wfEncDec   util.EncoderDecoder[model.WorkflowDefinition]
	execEncDec util.EncoderDecoder[model.Execution]
}

func (rs *redisStore) TenantId() string {
	return rs.tenantId
}

func (rs *redisStore) definitionKey() string {
	return rs.getNamespaceKey(TENANT_KEY, rs.tenantId, WORKFLOW_DEF)
}

func (rs *redisStore) executionKey() string {
	return rs.getNamespaceKey(TENANT_KEY, rs.tenantId, EXECUTION_KEY)
}

func (rs *redisStore) historyKey() string {
	return rs.getNamespaceKey(TENANT_KEY, rs.tenantId, HISTORY_KEY)
}

func (rs *redisStore) SaveDefinition(ctx context.Context, wf *model.WorkflowDefinition) error {
	data, err := rs.wfEncDec.Encode(*wf)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, rs.definitionKey(), wf.Id, string(data)).Err(); err != nil {
		logger.Error("error in saving workflow definition", zap.String("tenant", rs.tenantId), zap.String("workflow", wf.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisStore) GetDefinition(ctx context.Context, workflowId string) (*model.WorkflowDefinition, error) {
	wfStr, err := rs.redisClient.HGet(ctx, rs.definitionKey(), workflowId).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.NotFoundError{Entity: "workflow", Id: workflowId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.wfEncDec.Decode([]byte(wfStr))
}

func (rs *redisStore) LoadDefinitions(ctx context.Context) ([]*model.WorkflowDefinition, error) {
	values, err := rs.redisClient.HGetAll(ctx, rs.definitionKey()).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	result := make([]*model.WorkflowDefinition, 0, len(values))
	for _, wfStr := range values {
		wf, err := rs.wfEncDec.Decode([]byte(wfStr))
		if err != nil {
			return nil, err
		}
		result = append(result, wf)
	}
	return result, nil
}

func (rs *redisStore) DeleteDefinition(ctx context.Context, workflowId string) error {
	removed, err := rs.redisClient.HDel(ctx, rs.definitionKey(), workflowId).Result()
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if removed == 0 {
		return persistence.NotFoundError{Entity: "workflow", Id: workflowId}
	}
	return nil
}

func (rs *redisStore) SaveExecution(ctx context.Context, execution *model.Execution) error {
	data, err := rs.execEncDec.Encode(*execution)
	if err != nil {
		return err
	}
	exists, err := rs.redisClient.HExists(ctx, rs.executionKey(), execution.ExecutionId).Result()
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if err := rs.redisClient.HSet(ctx, rs.executionKey(), execution.ExecutionId, string(data)).Err(); err != nil {
		logger.Error("error in saving execution", zap.String("tenant", rs.tenantId), zap.String("execution", execution.ExecutionId), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if !exists {
		if err := rs.redisClient.LPush(ctx, rs.historyKey(), execution.ExecutionId).Err(); err != nil {
			return persistence.StorageLayerError{Message: err.Error()}
		}
	}
	return nil
}

func (rs *redisStore) GetExecution(ctx context.Context, executionId string) (*model.Execution, error) {
	executionStr, err := rs.redisClient.HGet(ctx, rs.executionKey(), executionId).Result()
	if err != nil {
		if err == rd.Nil {
			return nil, persistence.NotFoundError{Entity: "execution", Id: executionId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.execEncDec.Decode([]byte(executionStr))
}

func (rs *redisStore) LoadExecutionHistory(ctx context.Context, workflowId string, limit int) ([]*model.Execution, error) {
	executionIds, err := rs.redisClient.LRange(ctx, rs.historyKey(), 0, -1).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var result []*model.Execution
	for _, executionId := range executionIds {
		if limit > 0 && len(result) >= limit {
			break
		}
		execution, err := rs.GetExecution(ctx, executionId)
		if err != nil {
			if _, ok := err.(persistence.NotFoundError); ok {
				continue
			}
			return nil, err
		}
		if workflowId != "" && execution.WorkflowId != workflowId {
			continue
		}
		result = append(result, execution)
	}
	return result, nil
}

func (rs *redisStore) Close() error {
	// the redis client is shared by the factory, nothing to release per handle
	return nil
}
