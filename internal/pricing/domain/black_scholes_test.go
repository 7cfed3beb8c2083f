package domain

import (
	"math"
	"testing"
)

const (
	testNow    = int64(1709280000) // 2024-03-01 08:00 UTC
	sevenDays  = 7 * secondsPerDay
	btcFutures = 65000.0
)

func atmInput() GreeksInput {
	return GreeksInput{
		Size:              1,
		UnderlyingFutures: btcFutures,
		StrikePrice:       btcFutures,
		IV:                0.55,
		Expiry:            testNow + sevenDays,
		Now:               testNow,
		IsCall:            true,
		IsBuy:             true,
	}
}

func TestCalculateGreeksDegenerateInputs(t *testing.T) {
	tests := map[string]func(*GreeksInput){
		"zero size":        func(in *GreeksInput) { in.Size = 0 },
		"zero futures":     func(in *GreeksInput) { in.UnderlyingFutures = 0 },
		"negative futures": func(in *GreeksInput) { in.UnderlyingFutures = -1 },
		"zero strike":      func(in *GreeksInput) { in.StrikePrice = 0 },
		"zero iv":          func(in *GreeksInput) { in.IV = 0 },
		"expired":          func(in *GreeksInput) { in.Expiry = in.Now - secondsPerDay },
		"expiring now":     func(in *GreeksInput) { in.Expiry = in.Now },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := atmInput()
			mutate(&in)
			if g := CalculateGreeks(in); !g.IsZero() {
				t.Errorf("greeks = %+v, want zero", g)
			}
		})
	}

	// 过去的到期时间，size 为 0
	g := CalculateGreeks(GreeksInput{UnderlyingFutures: 50000, StrikePrice: 50000, IV: 0.6, Expiry: testNow - 3600, Now: testNow, IsCall: true, IsBuy: true})
	if g != (Greeks{}) {
		t.Errorf("greeks = %+v, want zero", g)
	}
	if math.Signbit(g.Theta) {
		t.Error("theta is negative zero")
	}
}

func TestCalculateGreeksATMCall(t *testing.T) {
	g := CalculateGreeks(atmInput())
	if math.Abs(g.Delta-0.5) > 0.05 {
		t.Errorf("delta = %v, want 0.5 ± 0.05", g.Delta)
	}
	if g.Gamma <= 0 || g.Vega <= 0 {
		t.Errorf("long option should have positive gamma and vega: %+v", g)
	}
	if g.Theta >= 0 {
		t.Errorf("long option theta = %v, want negative", g.Theta)
	}

	in := atmInput()
	in.IsBuy = false
	short := CalculateGreeks(in)
	if short != g.Neg() {
		t.Errorf("short greeks = %+v, want %+v", short, g.Neg())
	}

	in = atmInput()
	in.IsCall = false
	put := CalculateGreeks(in)
	if math.Abs(put.Delta-(g.Delta-1)) > 1e-12 || put.Gamma != g.Gamma || put.Vega != g.Vega {
		t.Errorf("put greeks = %+v, call = %+v", put, g)
	}

	in = atmInput()
	in.Size = 3
	if got := CalculateGreeks(in); math.Abs(got.Vega-3*g.Vega) > 1e-9 {
		t.Errorf("vega does not scale with size: %v vs %v", got.Vega, g.Vega)
	}
}

func TestCalculateGreeksVegaPerPoint(t *testing.T) {
	in := atmInput()
	g := CalculateGreeks(in)

	// vega 按 1 个波动率点计，与有限差分一致
	up, down := in, in
	up.IV += 0.005
	down.IV -= 0.005
	mp := func(gi GreeksInput) float64 {
		return CalculateMarkPrice(MarkPriceInput{
			UnderlyingFutures: gi.UnderlyingFutures,
			StrikePrice:       gi.StrikePrice,
			IV:                gi.IV,
			FromTime:          gi.Now,
			Expiry:            gi.Expiry,
			IsCall:            gi.IsCall,
		})
	}
	fd := mp(up) - mp(down)
	if math.Abs(fd-g.Vega) > 0.05*g.Vega {
		t.Errorf("vega = %v, finite difference = %v", g.Vega, fd)
	}
}

func TestCalculateMarkPrice(t *testing.T) {
	base := MarkPriceInput{
		UnderlyingFutures: btcFutures,
		StrikePrice:       btcFutures,
		IV:                0.55,
		FromTime:          testNow,
		Expiry:            testNow + sevenDays,
		IsCall:            true,
	}
	call := CalculateMarkPrice(base)
	if call <= 0 || call >= btcFutures {
		t.Fatalf("ATM call mark = %v, want in (0, F)", call)
	}

	// r = 0 时的期货 put-call parity: C - P = F - K
	for _, strike := range []float64{55000, 65000, 72000} {
		in := base
		in.StrikePrice = strike
		c := CalculateMarkPrice(in)
		in.IsCall = false
		p := CalculateMarkPrice(in)
		if diff := (c - p) - (btcFutures - strike); math.Abs(diff) > 0.05 {
			t.Errorf("strike %v: C-P-(F-K) = %v", strike, diff)
		}
	}

	// 时间取绝对值
	swapped := base
	swapped.FromTime, swapped.Expiry = base.Expiry, base.FromTime
	if got := CalculateMarkPrice(swapped); got != call {
		t.Errorf("swapped times mark = %v, want %v", got, call)
	}

	degenerate := base
	degenerate.IV = 0
	if got := CalculateMarkPrice(degenerate); got != 0 {
		t.Errorf("zero iv mark = %v", got)
	}
	degenerate = base
	degenerate.Expiry = base.FromTime
	if got := CalculateMarkPrice(degenerate); got != 0 {
		t.Errorf("zero time mark = %v", got)
	}

	discounted := base
	discounted.RiskFreeRate = 0.1
	if got := CalculateMarkPrice(discounted); got <= call {
		t.Errorf("discounted strike should raise call value: %v <= %v", got, call)
	}
}

func TestYearsToExpiryRounding(t *testing.T) {
	if got := YearsToExpiry(testNow+sevenDays, testNow); got != 0.019178 {
		t.Errorf("YearsToExpiry = %v, want 0.019178", got)
	}
	if got := DaysToExpiry(testNow-secondsPerDay/2, testNow); got != -0.5 {
		t.Errorf("DaysToExpiry = %v", got)
	}
}

func TestTradeGreeksSpread(t *testing.T) {
	in := TradeInput{
		Size:              2,
		UnderlyingFutures: btcFutures,
		Expiry:            testNow + sevenDays,
		Now:               testNow,
		IsCall:            true,
		IsBuy:             true,
		Main:              LegQuote{StrikePrice: 65000, MarkIV: 0.55, MarkPrice: 1900},
		Paired:            &LegQuote{StrikePrice: 70000, MarkIV: 0.6, MarkPrice: 600},
	}
	g, moneyness := TradeGreeks(in)

	main := CalculateGreeks(GreeksInput{Size: 2, UnderlyingFutures: btcFutures, StrikePrice: 65000, IV: 0.55, Expiry: in.Expiry, Now: testNow, IsCall: true, IsBuy: true})
	paired := CalculateGreeks(GreeksInput{Size: 2, UnderlyingFutures: btcFutures, StrikePrice: 70000, IV: 0.6, Expiry: in.Expiry, Now: testNow, IsCall: true, IsBuy: false})
	if want := main.Add(paired); g != want {
		t.Errorf("spread greeks = %+v, want %+v", g, want)
	}
	if math.Abs(moneyness-main.Delta/2) > 1e-12 {
		t.Errorf("moneyness = %v, want unit main delta %v", moneyness, main.Delta/2)
	}
	if g.Delta <= 0 || g.Delta >= main.Delta {
		t.Errorf("bull call spread delta = %v, main = %v", g.Delta, main.Delta)
	}

	if got := TradeMarkPrice(in.Main, in.Paired); got != 1300 {
		t.Errorf("spread mark = %v", got)
	}
	if got := TradeMarkPrice(LegQuote{MarkPrice: 600}, &LegQuote{MarkPrice: 1900}); got != 1300 {
		t.Errorf("reversed spread mark = %v", got)
	}
	if got := TradeMarkPrice(in.Main, nil); got != 1900 {
		t.Errorf("vanilla mark = %v", got)
	}
}
