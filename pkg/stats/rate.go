// Package stats 提供报表统计使用的数值计算。
package stats

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Rate 返回 part/total 的百分比，保留两位小数。
// 舍入规则为四舍五入（远离零方向），total <= 0 时返回 0。
func Rate(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	r := decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(total)).
		Round(2)
	f, _ := r.Float64()
	return f
}
