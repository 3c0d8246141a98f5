package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func (s *Server) HandleRegisterWorkflow(w http.ResponseWriter, r *http.Request) {
	tenantId := mux.Vars(r)["tenantId"]
	var wf model.WorkflowDefinition
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid workflow definition")
		return
	}
	defer r.Body.Close()
	if err := s.engine.RegisterWorkflow(r.Context(), tenantId, &wf); err != nil {
		logger.Error("error registering workflow", zap.String("tenant", tenantId), zap.Error(err))
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"workflowId": wf.Id})
}

func (s *Server) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	tenantId := mux.Vars(r)["tenantId"]
	var definitions []*model.WorkflowDefinition
	err := s.router.WithTenant(r.Context(), tenantId, func(ctx context.Context, store persistence.Store) error {
		var err error
		definitions, err = store.LoadDefinitions(ctx)
		return err
	})
	if err != nil {
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, definitions)
}

func (s *Server) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantId := vars["tenantId"]
	workflowId := vars["workflowId"]
	var wf *model.WorkflowDefinition
	err := s.router.WithTenant(r.Context(), tenantId, func(ctx context.Context, store persistence.Store) error {
		var err error
		wf, err = store.GetDefinition(ctx, workflowId)
		return err
	})
	if err != nil {
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"workflow": wf,
		"running":  s.engine.RunningCount(tenantId, workflowId),
	})
}

func (s *Server) HandleExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantId := vars["tenantId"]
	workflowId := vars["workflowId"]
	var req model.WorkflowRunRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
		defer r.Body.Close()
	}
	handle, err := s.engine.ExecuteWorkflow(r.Context(), tenantId, workflowId, req.TriggerData)
	if err != nil {
		logger.Error("error executing workflow", zap.String("tenant", tenantId), zap.String("workflow", workflowId), zap.Error(err))
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"executionId": handle.ExecutionId})
}

func (s *Server) HandleExecutionHistory(w http.ResponseWriter, r *http.Request) {
	tenantId := mux.Vars(r)["tenantId"]
	workflowId := r.URL.Query().Get("workflowId")
	limit := 50
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	var executions []*model.Execution
	err := s.router.WithTenant(r.Context(), tenantId, func(ctx context.Context, store persistence.Store) error {
		var err error
		executions, err = store.LoadExecutionHistory(ctx, workflowId, limit)
		return err
	})
	if err != nil {
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, executions)
}
