package logic

import (
	"context"
	"errors"
	"time"

	"github.com/blues/trs/internal/claim"
	"github.com/blues/trs/internal/ledger"
	"github.com/blues/trs/internal/logger"
	"github.com/blues/trs/internal/model"
	"github.com/blues/trs/internal/verify"
	"github.com/shopspring/decimal"
)

// ClaimRequest 一次领取请求的输入
type ClaimRequest struct {
	Kind         model.ClaimKind
	Wallet       string
	Signature    string
	TxHash       string
	Amount       string
	TelegramId   string
	ForwardedFor string
	RemoteAddr   string
}

// ClaimStatusResult 资格查询结果
type ClaimStatusResult struct {
	Eligible   bool
	Record     *model.ClaimRecord
	RetryAfter time.Duration
}

// ClaimLogic 领取编排器。五种领取类型共用同一套状态机，
// 差异由 claim.Descriptor 声明式配置
type ClaimLogic struct {
	ledger      *ledger.Ledger
	verifier    *verify.Verifier
	descriptors map[model.ClaimKind]claim.Descriptor
	nowFn       func() time.Time
}

// NewClaimLogic 创建领取编排器
func NewClaimLogic(l *ledger.Ledger, v *verify.Verifier, descriptors map[model.ClaimKind]claim.Descriptor) *ClaimLogic {
	return &ClaimLogic{
		ledger:      l,
		verifier:    v,
		descriptors: descriptors,
		nowFn:       time.Now,
	}
}

// WithClock 注入时钟，测试用
func (c *ClaimLogic) WithClock(nowFn func() time.Time) *ClaimLogic {
	c.nowFn = nowFn
	return c
}

// Descriptor 取领取类型配置
func (c *ClaimLogic) Descriptor(kind model.ClaimKind) (claim.Descriptor, error) {
	desc, ok := c.descriptors[kind]
	if !ok {
		return claim.Descriptor{}, &claim.InvalidIdentityError{Field: "kind", Value: string(kind)}
	}
	return desc, nil
}

// Submit 用户发起领取：解析唯一键 → 查窗口内冲突 → 校验前置条件 → 落账。
// 两步流程（special/swap）下，已有 pending 记录时本次调用就是用户的领取动作
func (c *ClaimLogic) Submit(ctx context.Context, req ClaimRequest) (*model.ClaimRecord, error) {
	desc, err := c.Descriptor(req.Kind)
	if err != nil {
		return nil, err
	}
	now := c.nowFn()

	wallet, subjectKey, txHash, err := c.resolveKeys(desc, req)
	if err != nil {
		return nil, err
	}

	// 两步流程：窗口内已登记的 pending 记录由本次调用推进为 claimed
	active, err := c.ledger.FindActive(desc.Kind, subjectKey, desc.Window, now)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if desc.TwoStep && active.Status == model.ClaimStatusPending {
			return c.ledger.Advance(active.Id, desc.Kind, model.ClaimStatusClaimed, now)
		}
		return nil, &claim.ConflictError{Remaining: claim.Remaining(active.CreatedAt, now, desc.Window)}
	}

	record := &model.ClaimRecord{
		Kind:       desc.Kind,
		SubjectKey: subjectKey,
		Wallet:     wallet,
		ClientIp:   claim.ClientIp(req.ForwardedFor, req.RemoteAddr),
	}

	// 前置条件校验。任何失败都不会部分落账
	switch desc.Precondition {
	case claim.PrecondSignature:
		if err := c.verifier.Signature(wallet, req.Signature, now); err != nil {
			return nil, err
		}

	case claim.PrecondExternal:
		ref, err := c.verifier.External(ctx, desc.CheckName, req.TelegramId)
		if err != nil {
			return nil, err
		}
		record.ExternalRef = &ref

	case claim.PrecondOnChain:
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		record.Amount = amount
		record.ExternalRef = &txHash
		if err := c.verifier.OnChain(ctx, wallet, txHash, amount, now.Add(-desc.Window)); err != nil {
			return nil, c.maybeKeepRejected(desc, record, now, err)
		}

	case claim.PrecondAdmin:
		// 只能由管理员先行发放，用户直接提交视为无资格
		return nil, &claim.PreconditionError{
			Reason:   "no pending claim for this wallet",
			Guidance: "this reward must be granted by an administrator first",
		}
	}

	record.RewardAmount = desc.Reward.Amount(record.Amount)
	if desc.TwoStep {
		record.Status = model.ClaimStatusPending
	} else {
		record.Status = model.ClaimStatusClaimed
		record.ClaimedAt = &now
	}

	if err := c.ledger.Insert(record, desc.Window, now); err != nil {
		return nil, err
	}
	logger.Info("Claim %s recorded for wallet %s with status %s", desc.Kind, wallet, record.Status)
	return record, nil
}

// Status 查询某钱包当前是否有领取资格。按钱包维度近似：daily 的唯一键
// 还包含客户端 IP，这里不区分，同一钱包换 IP 提交时以 Submit 的判定为准
func (c *ClaimLogic) Status(_ context.Context, kind model.ClaimKind, wallet string) (*ClaimStatusResult, error) {
	desc, err := c.Descriptor(kind)
	if err != nil {
		return nil, err
	}
	normalized, err := claim.NormalizeWallet(wallet)
	if err != nil {
		return nil, err
	}
	now := c.nowFn()

	record, err := c.ledger.FindLatestByWallet(desc.Kind, normalized)
	if err != nil {
		return nil, err
	}
	if record != nil && record.Status.Active() && claim.Within(record.CreatedAt, now, desc.Window) {
		return &ClaimStatusResult{
			Eligible:   false,
			Record:     record,
			RetryAfter: claim.Remaining(record.CreatedAt, now, desc.Window),
		}, nil
	}
	return &ClaimStatusResult{Eligible: true, Record: record}, nil
}

// AdminAdd 管理员发放两步领取（special）：已有窗口内 pending 记录时只刷新
// created_at，不会重复建账；否则新建一条 pending
func (c *ClaimLogic) AdminAdd(_ context.Context, kind model.ClaimKind, wallet, adminAddr string) (*model.ClaimRecord, error) {
	if err := c.verifier.Admin(adminAddr); err != nil {
		return nil, err
	}
	desc, err := c.Descriptor(kind)
	if err != nil {
		return nil, err
	}
	if desc.Precondition != claim.PrecondAdmin {
		return nil, &claim.InvalidIdentityError{Field: "kind", Value: string(kind)}
	}
	normalized, err := claim.NormalizeWallet(wallet)
	if err != nil {
		return nil, err
	}
	now := c.nowFn()
	subjectKey := claim.SubjectKey(desc.Kind, normalized)

	active, err := c.ledger.FindActive(desc.Kind, subjectKey, desc.Window, now)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.Status == model.ClaimStatusPending {
			logger.Info("Refreshing pending %s claim %s for wallet %s", desc.Kind, active.Id, normalized)
			return c.ledger.Refresh(active.Id, now)
		}
		return nil, &claim.ConflictError{Remaining: claim.Remaining(active.CreatedAt, now, desc.Window)}
	}

	record := &model.ClaimRecord{
		Kind:         desc.Kind,
		SubjectKey:   subjectKey,
		Wallet:       normalized,
		RewardAmount: desc.Reward.Amount(decimal.Zero),
		Status:       model.ClaimStatusPending,
	}
	if err := c.ledger.Insert(record, desc.Window, now); err != nil {
		return nil, err
	}
	logger.Info("Admin %s granted %s claim to wallet %s", adminAddr, desc.Kind, normalized)
	return record, nil
}

// AdminAdvance 管理员推进记录状态（pending→claimed、claimed→paid）
func (c *ClaimLogic) AdminAdvance(_ context.Context, kind model.ClaimKind, id, adminAddr string, target model.ClaimStatus) (*model.ClaimRecord, error) {
	if err := c.verifier.Admin(adminAddr); err != nil {
		return nil, err
	}
	desc, err := c.Descriptor(kind)
	if err != nil {
		return nil, err
	}
	if target != model.ClaimStatusClaimed && target != model.ClaimStatusPaid {
		return nil, claim.ErrInvalidTransition
	}

	record, err := c.ledger.Advance(id, desc.Kind, target, c.nowFn())
	if err != nil {
		return nil, err
	}
	logger.Info("Admin %s advanced claim %s to %s", adminAddr, id, target)
	return record, nil
}

// AdminList 管理员按状态浏览领取记录
func (c *ClaimLogic) AdminList(_ context.Context, kind model.ClaimKind, status model.ClaimStatus, adminAddr string) ([]model.ClaimRecord, error) {
	if err := c.verifier.Admin(adminAddr); err != nil {
		return nil, err
	}
	desc, err := c.Descriptor(kind)
	if err != nil {
		return nil, err
	}
	return c.ledger.ListByStatus(desc.Kind, status)
}

// resolveKeys 按键组成方案解析并归一化唯一键
func (c *ClaimLogic) resolveKeys(desc claim.Descriptor, req ClaimRequest) (wallet, subjectKey, txHash string, err error) {
	wallet, err = claim.NormalizeWallet(req.Wallet)
	if err != nil {
		return "", "", "", err
	}

	switch desc.KeyScheme {
	case claim.KeyWalletIp:
		ip := claim.ClientIp(req.ForwardedFor, req.RemoteAddr)
		subjectKey = claim.SubjectKey(desc.Kind, wallet, ip)
	case claim.KeyWallet:
		subjectKey = claim.SubjectKey(desc.Kind, wallet)
	case claim.KeyWalletTx:
		txHash, err = claim.NormalizeTxHash(req.TxHash)
		if err != nil {
			return "", "", "", err
		}
		subjectKey = claim.SubjectKey(desc.Kind, wallet, txHash)
	case claim.KeyTelegramWallet:
		if req.TelegramId == "" {
			return "", "", "", &claim.InvalidIdentityError{Field: "telegram_id", Value: req.TelegramId}
		}
		subjectKey = claim.SubjectKey(desc.Kind, req.TelegramId, wallet)
	}
	return wallet, subjectKey, txHash, nil
}

// maybeKeepRejected 链上类领取的永久失败落一条 rejected 记录留审计；
// 临时失败绝不落账，让用户可以稍后重试
func (c *ClaimLogic) maybeKeepRejected(desc claim.Descriptor, record *model.ClaimRecord, now time.Time, cause error) error {
	var precondErr *claim.PreconditionError
	if !desc.KeepRejected || !errors.As(cause, &precondErr) {
		return cause
	}

	rejected := *record
	rejected.Status = model.ClaimStatusRejected
	rejected.RewardAmount = decimal.Zero
	if err := c.ledger.Insert(&rejected, desc.Window, now); err != nil {
		logger.Warn("Failed to record rejected %s claim for %s: %v", desc.Kind, record.Wallet, err)
	}
	return cause
}

// parseAmount 金额必须是正整数（代币最小单位）
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil || !amount.IsPositive() || !amount.Equal(amount.Truncate(0)) {
		return decimal.Zero, &claim.InvalidIdentityError{Field: "amount", Value: s}
	}
	return amount, nil
}
