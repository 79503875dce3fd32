package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/logger"
	"github.com/shopspring/decimal"
)

// ExternalService 外部校验服务协作方（Twitter 点赞/关注、Telegram 群成员）。
// 成功返回凭证ID；不满足返回 *claim.PreconditionError；
// 服务限流或不可用返回包了 claim.ErrTemporary 的错误
type ExternalService interface {
	Verify(ctx context.Context, check, subject string) (string, error)
}

// ChainLookup 链上查证协作方
type ChainLookup interface {
	PurchaseOccurred(ctx context.Context, wallet, txHash string, amount decimal.Decimal, since time.Time) (bool, error)
}

// Verifier 前置条件校验器，按领取类型组合四种校验能力
type Verifier struct {
	external ExternalService
	chain    ChainLookup
	cache    Cache
	admins   map[string]bool
}

// New 创建校验器。admins 是管理员地址白名单，匹配时大小写不敏感
func New(external ExternalService, chain ChainLookup, cache Cache, admins []string) *Verifier {
	allowed := make(map[string]bool, len(admins))
	for _, addr := range admins {
		allowed[strings.ToLower(strings.TrimSpace(addr))] = true
	}
	return &Verifier{
		external: external,
		chain:    chain,
		cache:    cache,
		admins:   allowed,
	}
}

// External 外部服务校验，命中缓存时跳过远端调用
func (v *Verifier) External(ctx context.Context, check, subject string) (string, error) {
	cacheKey := check + ":" + subject
	if v.cache != nil {
		if ref, ok := v.cache.Get(ctx, cacheKey); ok {
			return ref, nil
		}
	}

	ref, err := v.external.Verify(ctx, check, subject)
	if err != nil {
		return "", err
	}

	// 只缓存通过的结果，失败必须每次重查
	if v.cache != nil {
		v.cache.Set(ctx, cacheKey, ref)
	}
	return ref, nil
}

// OnChain 查证声称的购买交易确实发生且金额一致
func (v *Verifier) OnChain(ctx context.Context, wallet, txHash string, amount decimal.Decimal, since time.Time) error {
	matched, err := v.chain.PurchaseOccurred(ctx, wallet, txHash, amount, since)
	if err != nil {
		logger.Warn("On-chain lookup failed for %s: %v", txHash, err)
		return fmt.Errorf("%w: %v", claim.ErrTemporary, err)
	}
	if !matched {
		return &claim.PreconditionError{
			Reason:   "no matching purchase transaction found on chain",
			Guidance: "make sure the transaction is confirmed and the amount matches, then try again",
		}
	}
	return nil
}

// Admin 管理员白名单校验，失败不透露任何细节
func (v *Verifier) Admin(address string) error {
	if !v.admins[strings.ToLower(strings.TrimSpace(address))] {
		return claim.ErrUnauthorized
	}
	return nil
}

// IsTemporary 判断是否为可重试的临时失败
func IsTemporary(err error) bool {
	return errors.Is(err, claim.ErrTemporary)
}
