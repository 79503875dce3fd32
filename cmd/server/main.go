package main

import (
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/config"
	"github.com/blues/trs/internal/ethereum"
	"github.com/blues/trs/internal/ledger"
	"github.com/blues/trs/internal/logger"
	"github.com/blues/trs/internal/logic"
	"github.com/blues/trs/internal/model"
	"github.com/blues/trs/internal/repository"
	"github.com/blues/trs/internal/router"
	"github.com/blues/trs/internal/social"
	"github.com/blues/trs/internal/task"
	"github.com/blues/trs/internal/verify"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		logger.Fatal("Failed to setup logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化以太坊客户端
	ethClient, err := ethereum.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize ethereum client: %v", err)
	}

	// 校验结果缓存：配了 Redis 就用 Redis，否则用进程内缓存加定时清理
	var cache verify.Cache
	var memCache *verify.MemoryCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = verify.NewRedisCache(rdb, cfg.Claim.CacheTTL())
	} else {
		memCache = verify.NewMemoryCache(cfg.Claim.CacheTTL())
		cache = memCache
	}

	// 组装校验器和领取引擎
	verifier := verify.New(social.New(cfg.Social), ethClient, cache, cfg.Admin.Addresses)
	descriptors := buildDescriptors(cfg.Claim)
	claimLedger := ledger.New(db)
	claimLogic := logic.NewClaimLogic(claimLedger, verifier, descriptors)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(claimLogic)

	// 启动定时任务
	manager := task.Start(claimLedger, descriptors, memCache, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

// buildDescriptors 用配置覆盖内置的领取类型参数
func buildDescriptors(cfg config.ClaimConfig) map[model.ClaimKind]claim.Descriptor {
	descriptors := claim.DefaultDescriptors()

	windows := map[model.ClaimKind]int{
		model.ClaimKindDaily:    cfg.DailyWindowHours,
		model.ClaimKindSpecial:  cfg.SpecialWindowHours,
		model.ClaimKindCashback: cfg.CashbackWindowHours,
		model.ClaimKindSwap:     cfg.SwapWindowHours,
		model.ClaimKindReferral: cfg.ReferralWindowHours,
	}
	fixed := map[model.ClaimKind]string{
		model.ClaimKindDaily:    cfg.DailyReward,
		model.ClaimKindSpecial:  cfg.SpecialReward,
		model.ClaimKindReferral: cfg.ReferralReward,
	}
	rates := map[model.ClaimKind]string{
		model.ClaimKindCashback: cfg.CashbackRate,
		model.ClaimKindSwap:     cfg.SwapRate,
	}

	for kind, desc := range descriptors {
		if hours := windows[kind]; hours > 0 {
			desc.Window = time.Duration(hours) * time.Hour
		}
		if s := fixed[kind]; s != "" {
			desc.Reward.Fixed = mustDecimal(kind, s)
		}
		if s := rates[kind]; s != "" {
			desc.Reward.Rate = mustDecimal(kind, s)
		}
		descriptors[kind] = desc
	}
	return descriptors
}

func mustDecimal(kind model.ClaimKind, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		logger.Fatal("Invalid reward config for %s: %v", kind, err)
	}
	return d
}
