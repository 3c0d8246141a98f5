package agent

import (
	"fmt"
	"sync"

	"github.com/dogansystem/agentflow/action"
	"github.com/dogansystem/agentflow/config"
	"github.com/dogansystem/agentflow/engine"
	"github.com/dogansystem/agentflow/logger"
	"github.com/dogansystem/agentflow/message"
	"github.com/dogansystem/agentflow/persistence"
	"github.com/dogansystem/agentflow/persistence/memory"
	redisstore "github.com/dogansystem/agentflow/persistence/redis"
	"github.com/dogansystem/agentflow/remote"
	"github.com/dogansystem/agentflow/rest"
	"github.com/dogansystem/agentflow/scheduler"
	"github.com/dogansystem/agentflow/tenant"
	"go.uber.org/zap"
)

// Agent assembles the platform: storage, tenant directory and router, action
// registry, execution engine, scheduler and the http surface.
type Agent struct {
	config     config.Config
	wg         *sync.WaitGroup
	router     *tenant.Router
	scheduler  *scheduler.Scheduler
	restServer *rest.Server
}

func New(cfg config.Config) (*Agent, error) {
	var factory persistence.Factory
	var directoryStore persistence.DirectoryStore
	switch cfg.StorageType {
	case config.STORAGE_TYPE_REDIS:
		redisConf := redisstore.Config{
			Addrs:     cfg.RedisConfig.Addrs,
			Namespace: cfg.RedisConfig.Namespace,
		}
		factory = redisstore.NewFactory(redisConf)
		directoryStore = redisstore.NewDirectoryStore(redisConf)
	case config.STORAGE_TYPE_INMEM:
		factory = memory.NewFactory()
		directoryStore = memory.NewDirectoryStore()
	default:
		return nil, fmt.Errorf("unknown storage type %s", cfg.StorageType)
	}

	directory := tenant.NewDirectory(directoryStore, cfg.TrialDays)
	router := tenant.NewRouter(directory, factory)

	registry := action.NewRegistry()
	remoteClient := remote.NewClient(cfg.RemoteConfig.BaseUrl, cfg.RemoteConfig.Token)
	action.RegisterRemoteActions(registry, remoteClient)
	sender := message.NewSmtpSender(cfg.MessageConfig.SmtpHost, cfg.MessageConfig.SmtpPort,
		cfg.MessageConfig.Username, cfg.MessageConfig.Password)
	registry.Register(action.NewSendMessageAction(sender))
	registry.Register(action.NewWaitAction())
	registry.Register(action.NewEvaluateConditionAction())
	registry.Register(action.NewScriptAction())
	action.RegisterCompositeActions(registry, message.NopReader{})

	wg := &sync.WaitGroup{}
	eng := engine.NewEngine(router, registry, wg)
	sched := scheduler.NewScheduler(directory, router, eng, cfg.SchedulerIntervalSeconds, cfg.DispatcherCapacity, wg)
	restServer := rest.NewServer(cfg.HttpPort, directory, router, eng)

	return &Agent{
		config:     cfg,
		wg:         wg,
		router:     router,
		scheduler:  sched,
		restServer: restServer,
	}, nil
}

func (a *Agent) Start() error {
	a.scheduler.Start()
	go func() {
		if err := a.restServer.Start(); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()
	logger.Info("agentflow started", zap.Int("httpPort", a.config.HttpPort))
	return nil
}

func (a *Agent) Shutdown() error {
	a.restServer.Stop()
	a.scheduler.Stop()
	a.wg.Wait()
	a.router.Close()
	logger.Info("agentflow stopped")
	return nil
}
