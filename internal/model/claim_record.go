package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimRecord 奖励领取记录
type ClaimRecord struct {
	Id        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Kind       ClaimKind `json:"kind" gorm:"size:20;not null;index:idx_claim_kind_key"`
	SubjectKey string    `json:"subject_key" gorm:"size:255;not null;index:idx_claim_kind_key"`
	Wallet     string    `json:"wallet" gorm:"size:42;not null;index"`
	ClientIp   string    `json:"client_ip" gorm:"size:45"`

	// 金额使用 decimal，保证奖励计算精确（代币最小单位）
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric(36,0)"`
	RewardAmount decimal.Decimal `json:"reward_amount" gorm:"type:numeric(36,0)"`

	Status ClaimStatus `json:"status" gorm:"size:20;not null;index"`

	// 前置条件凭证（交易哈希、外部校验结果ID），用于幂等和审计
	ExternalRef *string `json:"external_ref,omitempty" gorm:"size:128;index:idx_claim_kind_ref"`

	ClaimedAt *time.Time `json:"claimed_at,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func (ClaimRecord) TableName() string {
	return "claim_record"
}

// ClaimKey 领取唯一键互斥行，(kind, subject_key) 唯一索引是并发插入的串行化点
type ClaimKey struct {
	Id         uint      `json:"id" gorm:"primaryKey"`
	Kind       ClaimKind `json:"kind" gorm:"size:20;not null;uniqueIndex:uniq_claim_key"`
	SubjectKey string    `json:"subject_key" gorm:"size:255;not null;uniqueIndex:uniq_claim_key"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ClaimKey) TableName() string {
	return "claim_key"
}

// ClaimKind 领取类型
type ClaimKind string

const (
	ClaimKindDaily    ClaimKind = "daily"    // 每日签到领取
	ClaimKindSpecial  ClaimKind = "special"  // 管理员发放的特殊领取
	ClaimKindCashback ClaimKind = "cashback" // 购买返现
	ClaimKindSwap     ClaimKind = "swap"     // 兑换奖励
	ClaimKindReferral ClaimKind = "referral" // Telegram 邀请奖励
)

// Valid 判断领取类型是否合法
func (k ClaimKind) Valid() bool {
	switch k {
	case ClaimKindDaily, ClaimKindSpecial, ClaimKindCashback, ClaimKindSwap, ClaimKindReferral:
		return true
	}
	return false
}

// ClaimStatus 领取状态
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"  // 已登记，等待用户领取或管理员处理
	ClaimStatusClaimed  ClaimStatus = "claimed"  // 用户已领取，等待管理员打款
	ClaimStatusPaid     ClaimStatus = "paid"     // 已打款（终态）
	ClaimStatusExpired  ClaimStatus = "expired"  // 窗口期内未领取（终态）
	ClaimStatusRejected ClaimStatus = "rejected" // 前置条件永久不满足（终态）
)

// Active 是否占用唯一键（窗口期内阻止重复领取）
func (s ClaimStatus) Active() bool {
	return s == ClaimStatusPending || s == ClaimStatusClaimed
}

// Terminal 是否终态
func (s ClaimStatus) Terminal() bool {
	switch s {
	case ClaimStatusPaid, ClaimStatusExpired, ClaimStatusRejected:
		return true
	}
	return false
}

// CanAdvanceTo 状态机只允许单向前进：pending 先领取（或过期），
// claimed 才能打款。rejected 记录只会直接落库，从不经由推进产生
func (s ClaimStatus) CanAdvanceTo(next ClaimStatus) bool {
	switch s {
	case ClaimStatusPending:
		return next == ClaimStatusClaimed || next == ClaimStatusExpired
	case ClaimStatusClaimed:
		return next == ClaimStatusPaid
	}
	return false
}
