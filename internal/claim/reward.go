package claim

import (
	"github.com/shopspring/decimal"
)

// Reward 奖励公式：固定金额或引用金额的百分比，二选一。
// 金额一律为代币最小单位的整数 decimal，奖励路径禁止二进制浮点。
type Reward struct {
	Fixed decimal.Decimal // 固定奖励金额
	Rate  decimal.Decimal // 百分比费率（如 0.03 表示 3%）
}

// Amount 计算奖励金额。百分比奖励向下取整到最小单位，宁可少付不可多付
func (r Reward) Amount(ref decimal.Decimal) decimal.Decimal {
	if r.Rate.IsPositive() {
		return ref.Mul(r.Rate).Floor()
	}
	return r.Fixed
}
