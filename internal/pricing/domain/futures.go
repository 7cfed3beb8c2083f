package domain

import (
	"math"
	"sort"
)

// 无风险利率的取值范围，空曲线取中值
const (
	RiskFreeRateLower = 0.03
	RiskFreeRateUpper = 0.18
)

// RiskFreeRateCurve 单个标的按到期时间（unix 秒）索引的无风险利率
type RiskFreeRateCurve map[int64]float64

// RateFor 取第一个不早于 expiry 的期限利率，都早于 expiry 时取最后一个，结果限制在 [0.03, 0.18]
func (c RiskFreeRateCurve) RateFor(expiry int64) float64 {
	if len(c) == 0 {
		return (RiskFreeRateLower + RiskFreeRateUpper) / 2
	}

	expiries := make([]int64, 0, len(c))
	for e := range c {
		expiries = append(expiries, e)
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i] < expiries[j] })

	i := sort.Search(len(expiries), func(i int) bool { return expiries[i] >= expiry })
	if i == len(expiries) {
		i--
	}
	return math.Max(math.Min(c[expiries[i]], RiskFreeRateUpper), RiskFreeRateLower)
}

// UnderlyingFutures 由期货指数与利率曲线推算到期日的标的期货价格 F = index * (1 + r * T)
func UnderlyingFutures(futuresIndex float64, expiry, now int64, curve RiskFreeRateCurve) float64 {
	return futuresIndex * (1 + curve.RateFor(expiry)*YearsToExpiry(expiry, now))
}
