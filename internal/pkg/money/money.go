// Package money 提供平台统一的货币运算规则：
// 两位小数定点，四舍五入（ROUND_HALF_UP），禁止二进制浮点。
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromCents 把最小货币单位整数转为两位小数金额（除以 100，无舍入损失）
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// Round2 两位小数四舍五入。decimal.Round 对正数即 half-up。
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PlatformFee 按百分比计算平台抽成：round_half_up(amount * pct / 100, 2)
func PlatformFee(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}

// Split 拆分购买金额为平台抽成与创作者分成，share = amount - fee
func Split(amount, pct decimal.Decimal) (fee, share decimal.Decimal) {
	fee = PlatformFee(amount, pct)
	share = amount.Sub(fee)
	return fee, share
}
