package task

import (
	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/config"
	"github.com/blues/trs/internal/ledger"
	"github.com/blues/trs/internal/logger"
	"github.com/blues/trs/internal/model"
	"github.com/blues/trs/internal/verify"
	"github.com/go-co-op/gocron/v2"
)

// Manager 任务管理器
type Manager struct {
	scheduler   gocron.Scheduler
	ledger      *ledger.Ledger
	descriptors map[model.ClaimKind]claim.Descriptor
	cache       *verify.MemoryCache
	config      *config.Config
}

// NewManager 创建新的任务管理器。cache 为 nil 时（用的是 Redis）不注册缓存清理任务
func NewManager(l *ledger.Ledger, descriptors map[model.ClaimKind]claim.Descriptor, cache *verify.MemoryCache, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler:   s,
		ledger:      l,
		descriptors: descriptors,
		cache:       cache,
		config:      cfg,
	}
}

// Start 启动任务管理器
func Start(l *ledger.Ledger, descriptors map[model.ClaimKind]claim.Descriptor, cache *verify.MemoryCache, cfg *config.Config) *Manager {
	manager := NewManager(l, descriptors, cache, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	m.registerJob(NewClaimExpireJob(m.ledger, m.descriptors, m.config))
	if m.cache != nil {
		m.registerJob(NewCacheSweepJob(m.cache, m.config))
	}
}

// registerJob 注册单个任务
func (m *Manager) registerJob(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
