package task

import (
	"time"

	"github.com/blues/trs/internal/config"
	"github.com/blues/trs/internal/logger"
	"github.com/blues/trs/internal/verify"
	"github.com/go-co-op/gocron/v2"
)

// CacheSweepJob 进程内校验缓存的过期条目清理任务
type CacheSweepJob struct {
	cache  *verify.MemoryCache
	config *config.Config
}

// NewCacheSweepJob 创建缓存清理任务
func NewCacheSweepJob(cache *verify.MemoryCache, cfg *config.Config) *CacheSweepJob {
	return &CacheSweepJob{cache: cache, config: cfg}
}

// GetName 获取任务名称
func (j *CacheSweepJob) GetName() string {
	return "verify_cache_sweeper"
}

// GetSchedule 获取调度配置
func (j *CacheSweepJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CacheSweepJob) Execute() {
	if removed := j.cache.Sweep(); removed > 0 {
		logger.Debug("Swept %d expired verification cache entries", removed)
	}
}
