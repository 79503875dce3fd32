package claim

import (
	"time"

	"github.com/blues/trs/internal/model"
	"github.com/shopspring/decimal"
)

// Precondition 领取的前置校验能力
type Precondition string

const (
	PrecondSignature Precondition = "signature" // 钱包签名校验
	PrecondExternal  Precondition = "external"  // 外部服务校验（Twitter/Telegram）
	PrecondOnChain   Precondition = "onchain"   // 链上交易查证
	PrecondAdmin     Precondition = "admin"     // 管理员发放
)

// KeyScheme 唯一键的组成方式
type KeyScheme string

const (
	KeyWalletIp       KeyScheme = "wallet_ip"       // 钱包 + 客户端 IP
	KeyWallet         KeyScheme = "wallet"          // 仅钱包
	KeyWalletTx       KeyScheme = "wallet_tx"       // 钱包 + 交易哈希
	KeyTelegramWallet KeyScheme = "telegram_wallet" // Telegram 用户ID + 钱包
)

// Descriptor 单个领取类型的声明式配置，
// 五种领取流程共用一套引擎，差异全部收敛到这里
type Descriptor struct {
	Kind         model.ClaimKind
	Window       time.Duration // 资格窗口时长
	KeyScheme    KeyScheme
	Precondition Precondition
	Reward       Reward
	TwoStep      bool   // 是否需要先登记(pending)再由用户领取(claimed)
	KeepRejected bool   // 前置条件永久失败时是否落一条 rejected 记录
	CheckName    string // 外部服务校验名（Precondition 为 external 时使用）
}

// DefaultDescriptors 内置的五种领取类型配置，窗口和奖励金额可被配置覆盖
func DefaultDescriptors() map[model.ClaimKind]Descriptor {
	return map[model.ClaimKind]Descriptor{
		model.ClaimKindDaily: {
			Kind:         model.ClaimKindDaily,
			Window:       24 * time.Hour,
			KeyScheme:    KeyWalletIp,
			Precondition: PrecondSignature,
			Reward:       Reward{Fixed: decimal.NewFromInt(100)},
		},
		model.ClaimKindSpecial: {
			Kind:         model.ClaimKindSpecial,
			Window:       3 * time.Hour,
			KeyScheme:    KeyWallet,
			Precondition: PrecondAdmin,
			Reward:       Reward{Fixed: decimal.NewFromInt(500)},
			TwoStep:      true,
		},
		model.ClaimKindCashback: {
			Kind:         model.ClaimKindCashback,
			Window:       3 * time.Hour,
			KeyScheme:    KeyWalletTx,
			Precondition: PrecondOnChain,
			Reward:       Reward{Rate: decimal.RequireFromString("0.03")},
			KeepRejected: true,
		},
		model.ClaimKindSwap: {
			Kind:         model.ClaimKindSwap,
			Window:       24 * time.Hour,
			KeyScheme:    KeyWalletTx,
			Precondition: PrecondOnChain,
			Reward:       Reward{Rate: decimal.RequireFromString("0.01")},
			TwoStep:      true,
			KeepRejected: true,
		},
		model.ClaimKindReferral: {
			Kind:         model.ClaimKindReferral,
			Window:       24 * time.Hour,
			KeyScheme:    KeyTelegramWallet,
			Precondition: PrecondExternal,
			Reward:       Reward{Fixed: decimal.NewFromInt(200)},
			CheckName:    "telegram_member",
		},
	}
}
