package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dogansystem/agentflow/action"
	"github.com/dogansystem/agentflow/engine"
	"github.com/dogansystem/agentflow/persistence/memory"
	"github.com/dogansystem/agentflow/tenant"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*httptest.Server, *action.Registry) {
	t.Helper()
	directory := tenant.NewDirectory(memory.NewDirectoryStore(), 14)
	router := tenant.NewRouter(directory, memory.NewFactory())
	registry := action.NewRegistry()
	eng := engine.NewEngine(router, registry, &sync.WaitGroup{})
	server := NewServer(0, directory, router, eng)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts, registry
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestTenantLifecycleOverHttp(t *testing.T) {
	ts, _ := setupServer(t)

	resp, created := postJSON(t, ts.URL+"/tenant", map[string]any{"name": "acme", "tier": "pro"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tenantId := created["id"].(string)
	require.NotEmpty(t, tenantId)
	require.Equal(t, "trial", created["status"])

	var fetched map[string]any
	resp = getJSON(t, ts.URL+"/tenant/"+tenantId, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "acme", fetched["name"])

	resp, _ = postJSON(t, ts.URL+"/tenant/"+tenantId+"/status", map[string]any{"status": "active"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, ts.URL+"/tenant/"+tenantId+"/status", map[string]any{"status": "bogus"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, ts.URL+"/tenant", map[string]any{"tier": "pro"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getJSON(t, ts.URL+"/tenant/tenant_missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWorkflowLifecycleOverHttp(t *testing.T) {
	ts, registry := setupServer(t)
	done := make(chan struct{}, 4)
	registry.Register(action.HandlerFunc("notify", func(ctx context.Context, config map[string]any, execContext map[string]any) action.Result {
		done <- struct{}{}
		return action.Ok(nil)
	}))

	_, created := postJSON(t, ts.URL+"/tenant", map[string]any{"name": "acme"})
	tenantId := created["id"].(string)

	resp, registered := postJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow", map[string]any{
		"name":    "welcome",
		"trigger": map[string]any{"type": "event", "config": map[string]any{"event": "signup"}},
		"steps":   []map[string]any{{"stepId": "A", "actionType": "notify"}},
		"enabled": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	workflowId := registered["workflowId"].(string)
	require.NotEmpty(t, workflowId)

	var listed []map[string]any
	resp = getJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow", &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed, 1)

	var detail map[string]any
	resp = getJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow/"+workflowId, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, detail["workflow"])

	resp, executed := postJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow/"+workflowId+"/execute", map[string]any{
		"triggerData": map[string]any{"source": "api"},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NotEmpty(t, executed["executionId"])
	waitFired(t, done)

	resp, event := postJSON(t, ts.URL+"/tenant/"+tenantId+"/event/signup", map[string]any{"user": "jo"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Len(t, event["executionIds"], 1)
	waitFired(t, done)

	var history []map[string]any
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp = getJSON(t, fmt.Sprintf("%s/tenant/%s/executions?workflowId=%s", ts.URL, tenantId, workflowId), &history)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		if len(history) == 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.Len(t, history, 2)
}

func waitFired(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("action did not fire")
	}
}

func TestWorkflowErrorMappingOverHttp(t *testing.T) {
	ts, _ := setupServer(t)
	_, created := postJSON(t, ts.URL+"/tenant", map[string]any{"name": "acme"})
	tenantId := created["id"].(string)

	// cyclic graph is a 400
	resp, _ := postJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow", map[string]any{
		"name":    "cyclic",
		"trigger": map[string]any{"type": "event"},
		"steps": []map[string]any{
			{"stepId": "A", "actionType": "notify", "dependsOn": []string{"B"}},
			{"stepId": "B", "actionType": "notify", "dependsOn": []string{"A"}},
		},
		"enabled": true,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// disabled workflow is a 409
	resp, registered := postJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow", map[string]any{
		"name":    "dormant",
		"trigger": map[string]any{"type": "event"},
		"steps":   []map[string]any{{"stepId": "A", "actionType": "notify"}},
		"enabled": false,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	workflowId := registered["workflowId"].(string)
	resp, _ = postJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow/"+workflowId+"/execute", map[string]any{})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// unknown workflow is a 404
	resp = getJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// suspended tenant is a 403
	resp, _ = postJSON(t, ts.URL+"/tenant/"+tenantId+"/status", map[string]any{"status": "suspended"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = getJSON(t, ts.URL+"/tenant/"+tenantId+"/workflow", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
