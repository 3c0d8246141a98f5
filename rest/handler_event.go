package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dogansystem/agentflow/logger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func (s *Server) HandleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantId := vars["tenantId"]
	eventName := vars["eventName"]
	var payload map[string]any
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&payload)
		defer r.Body.Close()
	}
	handles, err := s.engine.TriggerByEvent(r.Context(), tenantId, eventName, payload)
	if err != nil {
		logger.Error("error triggering event", zap.String("tenant", tenantId), zap.String("event", eventName), zap.Error(err))
		respondForError(w, err)
		return
	}
	executionIds := make([]string, 0, len(handles))
	for _, handle := range handles {
		executionIds = append(executionIds, handle.ExecutionId)
	}
	respondWithJSON(w, http.StatusAccepted, map[string]any{"event": eventName, "executionIds": executionIds})
}
