package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dogansystem/agentflow/engine"
	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/model"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/tenant"
	"github.com/dogansystem/agentflow/util"
	"go.uber.org/zap"
)

// Scheduler polls every active tenant's scheduled definitions on a fixed
// interval and hands due ones to the engine. last_run is stamped at dispatch
// decision time so one definition is never dispatched twice within a tick.
// Dispatch itself runs on a worker so a slow trigger cannot stall the poll.
type Scheduler struct {
	directory  *tenant.Directory
	router     *tenant.Router
	engine     *engine.Engine
	tickWorker *util.TickWorker
	dispatcher *util.Worker
}

type dispatchRequest struct {
	tenantId   string
	workflowId string
}

func NewScheduler(directory *tenant.Directory, router *tenant.Router, eng *engine.Engine, intervalSeconds int, capacity int, wg *sync.WaitGroup) *Scheduler {
	if intervalSeconds <= 0 {
		intervalSeconds = 60
	}
	if capacity <= 0 {
		capacity = 128
	}
	s := &Scheduler{
		directory: directory,
		router:    router,
		engine:    eng,
	}
	s.tickWorker = util.NewTickWorker("workflow-scheduler", intervalSeconds, s.poll, wg)
	s.dispatcher = util.NewWorker("workflow-dispatcher", wg, s.dispatch, capacity)
	return s
}

func (s *Scheduler) Start() {
	s.dispatcher.Start()
	s.tickWorker.Start()
}

func (s *Scheduler) Stop() {
	s.tickWorker.Stop()
	s.dispatcher.Stop()
}

// Poll runs one scheduling pass. Exposed so a pass can be forced without
// waiting for the ticker.
func (s *Scheduler) Poll() {
	s.poll()
}

func (s *Scheduler) poll() {
	ctx := context.Background()
	tenants, err := s.directory.List(ctx)
	if err != nil {
		logger.Error("scheduler could not list tenants", zap.Error(err))
		return
	}
	for _, t := range tenants {
		if !t.IsActive() {
			continue
		}
		// one tenant's failure must never affect another tenant's scheduling
		if err := s.pollTenant(ctx, t.Id); err != nil {
			logger.Error("error scheduling tenant workflows", zap.String("tenant", t.Id), zap.Error(err))
		}
	}
}

func (s *Scheduler) pollTenant(ctx context.Context, tenantId string) error {
	now := time.Now()
	return s.router.WithTenant(ctx, tenantId, func(ctx context.Context, store persistence.Store) error {
		definitions, err := store.LoadDefinitions(ctx)
		if err != nil {
			return err
		}
		for _, wf := range definitions {
			if !wf.Enabled || wf.Paused || wf.Trigger.Type != model.TRIGGER_SCHEDULED {
				continue
			}
			schedule, _ := wf.Trigger.Config["schedule"].(map[string]any)
			if !IsDue(schedule, wf.Stats.LastRun, now) {
				continue
			}
			wf.Stats.LastRun = now
			if err := store.SaveDefinition(ctx, wf); err != nil {
				logger.Error("error stamping last run", zap.String("tenant", tenantId), zap.String("workflow", wf.Id), zap.Error(err))
				continue
			}
			s.dispatcher.Sender() <- dispatchRequest{tenantId: tenantId, workflowId: wf.Id}
			logger.Info("workflow due, dispatch queued", zap.String("tenant", tenantId), zap.String("workflow", wf.Id))
		}
		return nil
	})
}

func (s *Scheduler) dispatch(task util.Task) error {
	req, ok := task.(dispatchRequest)
	if !ok {
		return nil
	}
	_, err := s.engine.ExecuteWorkflow(context.Background(), req.tenantId, req.workflowId, nil)
	if err != nil {
		if _, dropped := err.(engine.ConcurrencyLimitError); dropped {
			logger.Warn("scheduled trigger dropped", zap.String("tenant", req.tenantId), zap.String("workflow", req.workflowId), zap.Error(err))
			return nil
		}
		return err
	}
	return nil
}

// IsDue decides whether a schedule config should fire. Schedule types:
// interval (minutes), daily (date-only comparison, intentionally ignoring
// time-of-day) and hourly. A definition that has never run is always due.
func IsDue(schedule map[string]any, lastRun time.Time, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	scheduleType, _ := schedule["type"].(string)
	switch scheduleType {
	case "interval":
		minutes := 60.0
		if raw, ok := schedule["interval"]; ok {
			if v, isNum := raw.(float64); isNum {
				minutes = v
			} else if v, isInt := raw.(int); isInt {
				minutes = float64(v)
			}
		}
		return now.Sub(lastRun) >= time.Duration(minutes*float64(time.Minute))
	case "daily":
		nowYear, nowMonth, nowDay := now.Date()
		lastYear, lastMonth, lastDay := lastRun.Date()
		nowDate := time.Date(nowYear, nowMonth, nowDay, 0, 0, 0, 0, time.UTC)
		lastDate := time.Date(lastYear, lastMonth, lastDay, 0, 0, 0, 0, time.UTC)
		return nowDate.After(lastDate)
	case "hourly":
		return now.Sub(lastRun) >= time.Hour
	}
	return false
}
