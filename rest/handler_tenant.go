package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/model"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type createTenantRequest struct {
	Name string `json:"name"`
	Tier string `json:"tier,omitempty"`
}

func (s *Server) HandleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "tenant name is required")
		return
	}
	t, err := s.directory.Create(r.Context(), req.Name, req.Tier)
	if err != nil {
		logger.Error("error creating tenant", zap.String("name", req.Name), zap.Error(err))
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, t)
}

func (s *Server) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	tenantId := mux.Vars(r)["tenantId"]
	t, err := s.directory.Get(r.Context(), tenantId)
	if err != nil {
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

type changeStatusRequest struct {
	Status model.TenantStatus `json:"status"`
}

func (s *Server) HandleChangeTenantStatus(w http.ResponseWriter, r *http.Request) {
	tenantId := mux.Vars(r)["tenantId"]
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()
	var err error
	switch req.Status {
	case model.TENANT_ACTIVE:
		err = s.directory.Activate(r.Context(), tenantId)
	case model.TENANT_SUSPENDED:
		err = s.directory.Suspend(r.Context(), tenantId)
	case model.TENANT_CANCELLED:
		err = s.directory.Cancel(r.Context(), tenantId)
	case model.TENANT_EXPIRED:
		err = s.directory.Expire(r.Context(), tenantId)
	default:
		respondWithError(w, http.StatusBadRequest, "unsupported status")
		return
	}
	if err != nil {
		respondForError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"tenantId": tenantId, "status": string(req.Status)})
}
