package domain

import (
	"fmt"
	"sort"
)

// MaxLegs 单个期权 ID 可容纳的最大腿数
const MaxLegs = 4

// OptionLeg 期权腿
type OptionLeg struct {
	IsBuy       bool   `json:"is_buy"`
	IsCall      bool   `json:"is_call"`
	StrikePrice uint64 `json:"strike_price"` // 标的原生价格单位，0 表示空腿
}

// IsEmpty 空腿（补位）
func (l OptionLeg) IsEmpty() bool { return l.StrikePrice == 0 }

// Tranche 资金池分层，占期权 ID 最低 2 位
type Tranche uint8

const (
	TrancheShort Tranche = iota
	TrancheMid
	TrancheLong
)

func (t Tranche) String() string {
	switch t {
	case TrancheShort:
		return "short"
	case TrancheMid:
		return "mid"
	case TrancheLong:
		return "long"
	}
	return fmt.Sprintf("tranche(%d)", uint8(t))
}

// Position 期权 ID 解码后的头寸
type Position struct {
	UnderlyingAssetIndex uint16             `json:"underlying_asset_index"`
	Expiry               int64              `json:"expiry"` // unix 秒
	Strategy             Strategy           `json:"strategy"`
	LegCount             int                `json:"leg_count"`
	Legs                 [MaxLegs]OptionLeg `json:"legs"`
	Tranche              Tranche            `json:"tranche"`
}

// MainLeg 主腿。看跌价差的主腿位于索引 1，其余策略位于索引 0
func (p *Position) MainLeg() OptionLeg {
	if p.Strategy.IsPutSpread() {
		return p.Legs[1]
	}
	return p.Legs[0]
}

// PairedLeg 配对腿，单腿策略返回 false
func (p *Position) PairedLeg() (OptionLeg, bool) {
	switch {
	case p.Strategy.IsPutSpread():
		return p.Legs[0], true
	case p.Strategy.IsCallSpread():
		return p.Legs[1], true
	}
	return OptionLeg{}, false
}

// ActiveLegs 非空的前 LegCount 条腿
func (p *Position) ActiveLegs() []OptionLeg {
	n := p.LegCount
	if n < 0 {
		n = 0
	}
	if n > MaxLegs {
		n = MaxLegs
	}
	out := make([]OptionLeg, n)
	copy(out, p.Legs[:n])
	return out
}

// strikeLess 行权价升序，0 排在所有非零行权价之后
func strikeLess(a, b uint64) bool {
	if a == 0 {
		return false
	}
	if b == 0 {
		return true
	}
	return a < b
}

// SortLegs 稳定排序，isBuy/isCall 随行权价一起移动。返回新数组，不修改入参
func SortLegs(legs [MaxLegs]OptionLeg) [MaxLegs]OptionLeg {
	sorted := legs
	s := sorted[:]
	sort.SliceStable(s, func(i, j int) bool {
		return strikeLess(s[i].StrikePrice, s[j].StrikePrice)
	})
	return sorted
}

// countNonZero 非零行权价的腿数
func countNonZero(legs [MaxLegs]OptionLeg) int {
	n := 0
	for _, l := range legs {
		if !l.IsEmpty() {
			n++
		}
	}
	return n
}
