package domain

import (
	"fmt"
	"sort"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
	pricing "github.com/wyfcoding/optionpool/internal/pricing/domain"
)

type exposureKey struct {
	tranche derivatives.Tranche
	asset   string
}

// PoolExposure 各资金池分层、各标的的 Greeks 汇总。值类型，Add 返回新实例
type PoolExposure struct {
	greeks map[exposureKey]pricing.Greeks
}

// Get 指定分层与标的的 Greeks，不存在时为零值
func (e PoolExposure) Get(tranche derivatives.Tranche, asset string) pricing.Greeks {
	return e.greeks[exposureKey{tranche: tranche, asset: asset}]
}

// Add 累加 Greeks，返回新的汇总，原值不变
func (e PoolExposure) Add(tranche derivatives.Tranche, asset string, g pricing.Greeks) PoolExposure {
	next := make(map[exposureKey]pricing.Greeks, len(e.greeks)+1)
	for k, v := range e.greeks {
		next[k] = v
	}
	k := exposureKey{tranche: tranche, asset: asset}
	next[k] = next[k].Add(g)
	return PoolExposure{greeks: next}
}

// Assets 指定分层下有敞口的标的，按名称排序
func (e PoolExposure) Assets(tranche derivatives.Tranche) []string {
	var assets []string
	for k := range e.greeks {
		if k.tranche == tranche {
			assets = append(assets, k.asset)
		}
	}
	sort.Strings(assets)
	return assets
}

// Len 非空条目数
func (e PoolExposure) Len() int { return len(e.greeks) }

// MarketSnapshot 聚合时使用的行情快照
type MarketSnapshot struct {
	Now           int64
	FuturesIndex  map[string]float64
	RiskFreeRates map[string]pricing.RiskFreeRateCurve
	Quotes        pricing.MarkQuotes
}

// StoredPosition 资金池持有的头寸
type StoredPosition struct {
	ID   derivatives.OptionID
	Size float64
}

// PositionGreeks 单个头寸的 Greeks，方向取自头寸策略
func PositionGreeks(p *derivatives.Position, asset string, size float64, market MarketSnapshot) (pricing.Greeks, error) {
	index, ok := market.FuturesIndex[asset]
	if !ok {
		return pricing.Greeks{}, fmt.Errorf("%w: no futures index for %s", ErrUnsupportedAsset, asset)
	}
	futures := pricing.UnderlyingFutures(index, p.Expiry, market.Now, market.RiskFreeRates[asset])

	legQuote := func(inst pricing.Instrument) (pricing.LegQuote, error) {
		mark, err := pricing.EstimateMarkIV(inst.String(), market.Quotes, futures, market.Now)
		if err != nil {
			return pricing.LegQuote{}, err
		}
		return pricing.LegQuote{StrikePrice: float64(inst.StrikePrice), MarkIV: mark.IV, MarkPrice: mark.Price}, nil
	}

	main, err := legQuote(pricing.MainInstrument(asset, p))
	if err != nil {
		return pricing.Greeks{}, err
	}
	var paired *pricing.LegQuote
	if inst, ok := pricing.PairedInstrument(asset, p); ok {
		q, err := legQuote(inst)
		if err != nil {
			return pricing.Greeks{}, err
		}
		paired = &q
	}

	g, _ := pricing.TradeGreeks(pricing.TradeInput{
		Size:              size,
		UnderlyingFutures: futures,
		Expiry:            p.Expiry,
		Now:               market.Now,
		IsCall:            p.Strategy.IsCall(),
		IsBuy:             p.Strategy.IsBuy(),
		Main:              main,
		Paired:            paired,
	})
	return g, nil
}

// AggregatePositionGreeks 将资金池头寸折叠为 PoolExposure。
// 解码失败立即返回错误；任一 Greek 为 0 的头寸（过期或无报价）跳过。
func AggregatePositionGreeks(positions []StoredPosition, assets *derivatives.AssetRegistry, market MarketSnapshot) (PoolExposure, int, error) {
	var (
		exposure PoolExposure
		counted  int
	)
	for _, sp := range positions {
		p, err := derivatives.DecodeOptionID(sp.ID)
		if err != nil {
			return PoolExposure{}, 0, fmt.Errorf("decode %s: %w", sp.ID, err)
		}
		asset, err := assets.Name(p.UnderlyingAssetIndex)
		if err != nil {
			return PoolExposure{}, 0, err
		}
		g, err := PositionGreeks(p, asset, sp.Size, market)
		if err != nil {
			return PoolExposure{}, 0, fmt.Errorf("position %s: %w", sp.ID, err)
		}
		if g.HasZero() {
			continue
		}
		exposure = exposure.Add(p.Tranche, asset, g)
		counted++
	}
	return exposure, counted, nil
}
