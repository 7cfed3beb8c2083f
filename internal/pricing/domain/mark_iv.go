package domain

import (
	"fmt"
	"math"
	"sort"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
)

// MarkQuote 行情源给出的标记 IV 与价格，nil 表示缺失
type MarkQuote struct {
	MarkIV    *float64 `json:"mark_iv"`
	MarkPrice *float64 `json:"mark_price"`
}

// Complete IV 与价格都存在
func (q MarkQuote) Complete() bool {
	return q.MarkIV != nil && q.MarkPrice != nil
}

// MarkQuotes 按合约名称索引的稀疏行情表
type MarkQuotes map[string]MarkQuote

// MarkIV 估算结果
type MarkIV struct {
	IV    float64 `json:"mark_iv"`
	Price float64 `json:"mark_price"`
}

type strikeIV struct {
	key    string
	strike float64
	iv     float64
}

// EstimateMarkIV 估算合约的标记 IV 与价格。
// 有完整报价时原样返回；否则在同一标的、到期日与方向的报价中按最近行权价取 IV，
// 再以该 IV 计算标记价格。没有同系列报价时返回 (0, 0)。
func EstimateMarkIV(name string, quotes MarkQuotes, underlyingFutures float64, now int64) (MarkIV, error) {
	if q, ok := quotes[name]; ok && q.Complete() {
		return MarkIV{IV: *q.MarkIV, Price: *q.MarkPrice}, nil
	}

	target, err := ParseInstrument(name)
	if err != nil {
		return MarkIV{}, err
	}

	curve := seriesCurve(target, quotes)
	if len(curve) == 0 {
		return MarkIV{}, nil
	}

	strike := float64(target.StrikePrice)
	iv := nearestStrikeIV(strike, curve, underlyingFutures)
	price := CalculateMarkPrice(MarkPriceInput{
		UnderlyingFutures: underlyingFutures,
		StrikePrice:       strike,
		IV:                iv,
		FromTime:          now,
		Expiry:            target.Expiry,
		IsCall:            target.Type.IsCall(),
	})
	return MarkIV{IV: iv, Price: price}, nil
}

// seriesCurve 同系列且带 IV 的报价，按行权价升序，行权价相同按键名排序。无法解析的键忽略
func seriesCurve(target Instrument, quotes MarkQuotes) []strikeIV {
	var curve []strikeIV
	for key, q := range quotes {
		if q.MarkIV == nil {
			continue
		}
		inst, err := ParseInstrument(key)
		if err != nil || !inst.SameSeries(target) {
			continue
		}
		curve = append(curve, strikeIV{key: key, strike: float64(inst.StrikePrice), iv: *q.MarkIV})
	}
	sort.SliceStable(curve, func(i, j int) bool {
		if curve[i].strike != curve[j].strike {
			return curve[i].strike < curve[j].strike
		}
		return curve[i].key < curve[j].key
	})
	return curve
}

// nearestStrikeIV 边界外取边界 IV；区间内取较近一侧，
// 等距时期货价格不高于目标行权价取下界，否则取上界
func nearestStrikeIV(target float64, curve []strikeIV, underlyingFutures float64) float64 {
	first, last := curve[0], curve[len(curve)-1]
	if target <= first.strike {
		return first.iv
	}
	if target >= last.strike {
		return last.iv
	}

	// 第一个行权价 >= target 的位置，必然在 (0, len-1] 内
	i := sort.Search(len(curve), func(i int) bool { return curve[i].strike >= target })
	lower, upper := curve[i-1], curve[i]

	toLower := math.Abs(target - lower.strike)
	toUpper := math.Abs(target - upper.strike)
	switch {
	case toLower < toUpper:
		return lower.iv
	case toLower > toUpper:
		return upper.iv
	case underlyingFutures <= target:
		return lower.iv
	default:
		return upper.iv
	}
}

// SpreadMark 价差的标记值：IV 取两腿平均，价格为主腿减配对腿且不低于 0
func SpreadMark(main, paired MarkIV) MarkIV {
	return MarkIV{
		IV:    (main.IV + paired.IV) / 2,
		Price: math.Max(main.Price-paired.Price, 0),
	}
}

// MarkIVForPosition 解码后头寸的标记 IV 与价格，支持单腿与两腿价差
func MarkIVForPosition(asset string, p *derivatives.Position, quotes MarkQuotes, underlyingFutures float64, now int64) (MarkIV, error) {
	main, err := EstimateMarkIV(MainInstrument(asset, p).String(), quotes, underlyingFutures, now)
	if err != nil {
		return MarkIV{}, err
	}

	switch p.LegCount {
	case 1:
		return main, nil
	case 2:
		pairedInst, ok := PairedInstrument(asset, p)
		if !ok {
			return MarkIV{}, fmt.Errorf("%w: %s has no paired leg", derivatives.ErrInvalidStrategy, p.Strategy)
		}
		paired, err := EstimateMarkIV(pairedInst.String(), quotes, underlyingFutures, now)
		if err != nil {
			return MarkIV{}, err
		}
		return SpreadMark(main, paired), nil
	}
	return MarkIV{}, fmt.Errorf("%w: %d legs", derivatives.ErrLegCountMismatch, p.LegCount)
}
