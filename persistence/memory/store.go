package memory

import (
	"context"
	"sync"

	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/util"
)

var _ persistence.Factory = new(Factory)

// Factory hands out in-memory stores. Data lives in the factory so it
// survives handle release and reopen, mirroring a real storage engine.
type Factory struct {
	mu      sync.Mutex
	tenants map[string]*tenantData
}

type tenantData struct {
	mu          sync.RWMutex
	definitions map[string]*model.WorkflowDefinition
	executions  map[string]*model.Execution
	history     []string
}

func NewFactory() *Factory {
	return &Factory{
		tenants: make(map[string]*tenantData),
	}
}

func (f *Factory) Open(tenantId string) (persistence.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.tenants[tenantId]
	if !ok {
		data = &tenantData{
			definitions: make(map[string]*model.WorkflowDefinition),
			executions:  make(map[string]*model.Execution),
		}
		f.tenants[tenantId] = data
	}
	return &inMemStore{tenantId: tenantId, data: data}, nil
}

var _ persistence.Store = new(inMemStore)

type inMemStore struct {
	tenantId string
	data     *tenantData
}

func (s *inMemStore) TenantId() string {
	return s.tenantId
}

// Stored values are cloned on the way in and out so callers never share
// mutable state with the store.
func (s *inMemStore) cloneDefinition(wf *model.WorkflowDefinition) (*model.WorkflowDefinition, error) {
	encDec := util.NewJsonEncoderDecoder[model.WorkflowDefinition]()
	data, err := encDec.Encode(*wf)
	if err != nil {
		return nil, err
	}
	return encDec.Decode(data)
}

func (s *inMemStore) cloneExecution(execution *model.Execution) (*model.Execution, error) {
	encDec := util.NewJsonEncoderDecoder[model.Execution]()
	data, err := encDec.Encode(*execution)
	if err != nil {
		return nil, err
	}
	return encDec.Decode(data)
}

func (s *inMemStore) SaveDefinition(ctx context.Context, wf *model.WorkflowDefinition) error {
	clone, err := s.cloneDefinition(wf)
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	s.data.definitions[wf.Id] = clone
	return nil
}

func (s *inMemStore) GetDefinition(ctx context.Context, workflowId string) (*model.WorkflowDefinition, error) {
	s.data.mu.RLock()
	wf, ok := s.data.definitions[workflowId]
	s.data.mu.RUnlock()
	if !ok {
		return nil, persistence.NotFoundError{Entity: "workflow", Id: workflowId}
	}
	return s.cloneDefinition(wf)
}

func (s *inMemStore) LoadDefinitions(ctx context.Context) ([]*model.WorkflowDefinition, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	result := make([]*model.WorkflowDefinition, 0, len(s.data.definitions))
	for _, wf := range s.data.definitions {
		clone, err := s.cloneDefinition(wf)
		if err != nil {
			return nil, persistence.StorageLayerError{Message: err.Error()}
		}
		result = append(result, clone)
	}
	return result, nil
}

func (s *inMemStore) DeleteDefinition(ctx context.Context, workflowId string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, ok := s.data.definitions[workflowId]; !ok {
		return persistence.NotFoundError{Entity: "workflow", Id: workflowId}
	}
	delete(s.data.definitions, workflowId)
	return nil
}

func (s *inMemStore) SaveExecution(ctx context.Context, execution *model.Execution) error {
	clone, err := s.cloneExecution(execution)
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, ok := s.data.executions[execution.ExecutionId]; !ok {
		s.data.history = append([]string{execution.ExecutionId}, s.data.history...)
	}
	s.data.executions[execution.ExecutionId] = clone
	return nil
}

func (s *inMemStore) GetExecution(ctx context.Context, executionId string) (*model.Execution, error) {
	s.data.mu.RLock()
	execution, ok := s.data.executions[executionId]
	s.data.mu.RUnlock()
	if !ok {
		return nil, persistence.NotFoundError{Entity: "execution", Id: executionId}
	}
	return s.cloneExecution(execution)
}

func (s *inMemStore) LoadExecutionHistory(ctx context.Context, workflowId string, limit int) ([]*model.Execution, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	var result []*model.Execution
	for _, executionId := range s.data.history {
		if limit > 0 && len(result) >= limit {
			break
		}
		execution, ok := s.data.executions[executionId]
		if !ok {
			continue
		}
		if workflowId != "" && execution.WorkflowId != workflowId {
			continue
		}
		clone, err := s.cloneExecution(execution)
		if err != nil {
			return nil, persistence.StorageLayerError{Message: err.Error()}
		}
		result = append(result, clone)
	}
	return result, nil
}

func (s *inMemStore) Close() error {
	return nil
}
