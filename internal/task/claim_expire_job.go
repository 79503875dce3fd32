package task

import (
	"sync"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/config"
	"github.com/blues/trs/internal/ledger"
	"github.com/blues/trs/internal/logger"
	"github.com/blues/trs/internal/model"
	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"
)

// ClaimExpireJob 过期清理任务：窗口已过仍停在 pending 的记录推进为 expired
type ClaimExpireJob struct {
	ledger      *ledger.Ledger
	descriptors map[model.ClaimKind]claim.Descriptor
	config      *config.Config
}

// NewClaimExpireJob 创建过期清理任务
func NewClaimExpireJob(l *ledger.Ledger, descriptors map[model.ClaimKind]claim.Descriptor, cfg *config.Config) *ClaimExpireJob {
	return &ClaimExpireJob{
		ledger:      l,
		descriptors: descriptors,
		config:      cfg,
	}
}

// GetName 获取任务名称
func (j *ClaimExpireJob) GetName() string {
	return "claim_expire_sweeper"
}

// GetSchedule 获取调度配置
func (j *ClaimExpireJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *ClaimExpireJob) Execute() {
	logger.Debug("Starting claim expire sweep")

	now := time.Now()
	expiredCount := 0

	for kind, desc := range j.descriptors {
		records, err := j.ledger.FindStalePending(kind, desc.Window, now)
		if err != nil {
			logger.Error("Failed to fetch stale pending claims for %s: %v", kind, err)
			continue
		}
		if len(records) == 0 {
			continue
		}

		// 批量推进用协程池并发处理
		pool, err := ants.NewPool(10)
		if err != nil {
			logger.Error("Failed to create worker pool: %v", err)
			continue
		}

		var wg sync.WaitGroup
		for _, record := range records {
			record := record
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				if _, err := j.ledger.Advance(record.Id, kind, model.ClaimStatusExpired, now); err != nil {
					logger.Warn("Failed to expire claim %s: %v", record.Id, err)
					return
				}
				logger.Info("Expired claim %s (%s) for wallet %s", record.Id, kind, record.Wallet)
			}); err != nil {
				wg.Done()
				logger.Warn("Failed to submit expire task for claim %s: %v", record.Id, err)
			}
		}
		wg.Wait()
		pool.Release()

		expiredCount += len(records)
	}

	if expiredCount > 0 {
		logger.Info("Claim expire sweep completed. Expired %d claims", expiredCount)
	}
}
