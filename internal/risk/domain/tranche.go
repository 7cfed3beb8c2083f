package domain

import (
	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
)

// TrancheThresholds 短期与中期资金池的剩余天数上限
type TrancheThresholds struct {
	ShortDays float64
	MidDays   float64
}

// DefaultTrancheThresholds 短期 2 天，中期 90 天
func DefaultTrancheThresholds() TrancheThresholds {
	return TrancheThresholds{ShortDays: 2, MidDays: 90}
}

// TrancheForExpiry 按剩余天数选择承接交易的资金池
func TrancheForExpiry(expiry, now int64, th TrancheThresholds) derivatives.Tranche {
	dte := pricing.DaysToExpiry(expiry, now)
	switch {
	case dte <= th.ShortDays:
		return derivatives.TrancheShort
	case dte <= th.MidDays:
		return derivatives.TrancheMid
	}
	return derivatives.TrancheLong
}
