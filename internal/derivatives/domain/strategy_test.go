package domain

import (
	"errors"
	"testing"
)

func TestClassifyStrategyExhaustive(t *testing.T) {
	bools := []bool{true, false}
	valid := 0
	for _, b0 := range bools {
		for _, c0 := range bools {
			for _, b1 := range bools {
				for _, c1 := range bools {
					legs := []OptionLeg{
						{IsBuy: b0, IsCall: c0, StrikePrice: 100},
						{IsBuy: b1, IsCall: c1, StrikePrice: 200},
					}
					s, err := ClassifyStrategy(legs)
					if err != nil {
						if s != StrategyNotSupported || !errors.Is(err, ErrInvalidStrategy) {
							t.Errorf("%+v: got %s, %v", legs, s, err)
						}
						continue
					}
					valid++
					if !s.IsSpread() || s.IsCall() != c0 || c0 != c1 {
						t.Errorf("%+v classified as %s", legs, s)
					}
				}
			}
		}
	}
	if valid != 4 {
		t.Errorf("valid two-leg patterns = %d, want 4", valid)
	}

	for _, n := range []int{0, 3, 4} {
		if _, err := ClassifyStrategy(make([]OptionLeg, n)); !errors.Is(err, ErrInvalidStrategy) {
			t.Errorf("%d legs: err = %v", n, err)
		}
	}
}

func TestStrategyPredicates(t *testing.T) {
	for _, s := range Strategies {
		if s.IsBuy() == s.IsSell() {
			t.Errorf("%s: buy/sell not exclusive", s)
		}
		if s.IsCall() == s.IsPut() {
			t.Errorf("%s: call/put not exclusive", s)
		}
		if s.IsVanilla() == s.IsSpread() {
			t.Errorf("%s: vanilla/spread not exclusive", s)
		}
		if s.Opposite().Opposite() != s || s.Opposite().IsBuy() == s.IsBuy() {
			t.Errorf("%s: bad opposite %s", s, s.Opposite())
		}
		if got := StrategyFor(s.IsBuy(), s.IsCall(), s.IsVanilla()); got != s {
			t.Errorf("StrategyFor(%s) = %s", s, got)
		}
	}
	if StrategyNotSupported.Valid() || Strategy(9).Valid() {
		t.Error("reserved strategies reported valid")
	}
	if StrategyNotSupported.Opposite() != StrategyNotSupported || StrategyNotSupported.LegCount() != 0 {
		t.Error("reserved strategy should have no opposite and no legs")
	}
}

func TestSortLegsZeroStrikesTrail(t *testing.T) {
	in := [MaxLegs]OptionLeg{
		{},
		{IsBuy: true, StrikePrice: 300},
		{},
		{IsCall: true, StrikePrice: 100},
	}
	got := SortLegs(in)
	want := [MaxLegs]OptionLeg{
		{IsCall: true, StrikePrice: 100},
		{IsBuy: true, StrikePrice: 300},
		{},
		{},
	}
	if got != want {
		t.Errorf("SortLegs = %+v, want %+v", got, want)
	}
	if in[0].StrikePrice != 0 || in[3].StrikePrice != 100 {
		t.Error("SortLegs modified its input")
	}
}

func TestAssetRegistry(t *testing.T) {
	r := DefaultAssets()
	if idx, err := r.Index("btc"); err != nil || idx != 1 {
		t.Errorf("Index(btc) = %d, %v", idx, err)
	}
	if name, err := r.Name(2); err != nil || name != "ETH" {
		t.Errorf("Name(2) = %q, %v", name, err)
	}
	if _, err := r.Name(9); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("Name(9) err = %v", err)
	}
	if _, err := NewAssetRegistry(map[string]uint16{"BTC": 1, "WBTC": 1}); err == nil {
		t.Error("duplicate index accepted")
	}
	if _, err := NewAssetRegistry(map[string]uint16{"SOL": 0}); err == nil {
		t.Error("reserved index 0 accepted")
	}
}
