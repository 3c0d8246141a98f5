package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dogansystem/agentflow/engine"
	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/tenant"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port      int
	directory *tenant.Directory
	router    *tenant.Router
	engine    *engine.Engine
}

func NewServer(httpPort int, directory *tenant.Directory, tenantRouter *tenant.Router, eng *engine.Engine) *Server {
	s := &Server{
		Server: http.Server{
			Addr: fmt.Sprintf(":%d", httpPort),
		},
		Port:      httpPort,
		directory: directory,
		router:    tenantRouter,
		engine:    eng,
	}
	router := mux.NewRouter()
	router.HandleFunc("/tenant", s.HandleCreateTenant).Methods(http.MethodPost)
	router.HandleFunc("/tenant/{tenantId}", s.HandleGetTenant).Methods(http.MethodGet)
	router.HandleFunc("/tenant/{tenantId}/status", s.HandleChangeTenantStatus).Methods(http.MethodPost)
	router.HandleFunc("/tenant/{tenantId}/workflow", s.HandleRegisterWorkflow).Methods(http.MethodPost)
	router.HandleFunc("/tenant/{tenantId}/workflow", s.HandleListWorkflows).Methods(http.MethodGet)
	router.HandleFunc("/tenant/{tenantId}/workflow/{workflowId}", s.HandleGetWorkflow).Methods(http.MethodGet)
	router.HandleFunc("/tenant/{tenantId}/workflow/{workflowId}/execute", s.HandleExecuteWorkflow).Methods(http.MethodPost)
	router.HandleFunc("/tenant/{tenantId}/event/{eventName}", s.HandleTriggerEvent).Methods(http.MethodPost)
	router.HandleFunc("/tenant/{tenantId}/executions", s.HandleExecutionHistory).Methods(http.MethodGet)
	router.Use(loggingMiddleware)
	s.Handler = router
	return s
}

func (s *Server) Start() error {
	logger.Info("starting http server", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error("error shutting down http server", zap.Error(err))
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondForError maps the error taxonomy onto http status codes.
func respondForError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case tenant.TenantNotFoundError, persistence.NotFoundError:
		respondWithError(w, http.StatusNotFound, err.Error())
	case tenant.TenantInactiveError, tenant.CrossTenantAccessError:
		respondWithError(w, http.StatusForbidden, err.Error())
	case engine.ConcurrencyLimitError:
		respondWithError(w, http.StatusTooManyRequests, err.Error())
	case engine.WorkflowDisabledError:
		respondWithError(w, http.StatusConflict, err.Error())
	case engine.ValidationError:
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
