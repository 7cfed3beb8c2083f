package domain

import (
	"errors"
	"math"
	"testing"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
)

func f(v float64) *float64 { return &v }

func callCurve() MarkQuotes {
	return MarkQuotes{
		"BTC-8MAR24-60000-C": {MarkIV: f(0.60), MarkPrice: f(5200)},
		"BTC-8MAR24-64000-C": {MarkIV: f(0.55), MarkPrice: f(2400)},
		"BTC-8MAR24-66000-C": {MarkIV: f(0.50), MarkPrice: f(1500)},
		"BTC-8MAR24-70000-C": {MarkIV: f(0.45), MarkPrice: f(400)},
		// 其他系列不参与
		"BTC-8MAR24-65000-P":  {MarkIV: f(0.90), MarkPrice: f(2000)},
		"BTC-15MAR24-65000-C": {MarkIV: f(0.80), MarkPrice: f(2600)},
		"ETH-8MAR24-3000-C":   {MarkIV: f(0.70), MarkPrice: f(90)},
		"not-an-instrument":   {MarkIV: f(0.10), MarkPrice: f(1)},
	}
}

func TestEstimateMarkIVDirectQuote(t *testing.T) {
	got, err := EstimateMarkIV("BTC-8MAR24-64000-C", callCurve(), btcFutures, testNow)
	if err != nil {
		t.Fatalf("EstimateMarkIV: %v", err)
	}
	if got != (MarkIV{IV: 0.55, Price: 2400}) {
		t.Errorf("direct quote = %+v", got)
	}
}

func TestEstimateMarkIVNearestStrike(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		futures float64
		wantIV  float64
	}{
		{"below curve", "BTC-8MAR24-50000-C", btcFutures, 0.60},
		{"above curve", "BTC-8MAR24-90000-C", btcFutures, 0.45},
		{"closer to lower", "BTC-8MAR24-64500-C", btcFutures, 0.55},
		{"closer to upper", "BTC-8MAR24-65500-C", btcFutures, 0.50},
		{"tie with futures at target", "BTC-8MAR24-65000-C", 65000, 0.55},
		{"tie with futures below target", "BTC-8MAR24-65000-C", 64000, 0.55},
		{"tie with futures above target", "BTC-8MAR24-65000-C", 65100, 0.50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EstimateMarkIV(tt.target, callCurve(), tt.futures, testNow)
			if err != nil {
				t.Fatalf("EstimateMarkIV: %v", err)
			}
			if got.IV != tt.wantIV {
				t.Errorf("iv = %v, want %v", got.IV, tt.wantIV)
			}
			inst, _ := ParseInstrument(tt.target)
			want := CalculateMarkPrice(MarkPriceInput{
				UnderlyingFutures: tt.futures,
				StrikePrice:       float64(inst.StrikePrice),
				IV:                tt.wantIV,
				FromTime:          testNow,
				Expiry:            inst.Expiry,
				IsCall:            true,
			})
			if math.Abs(got.Price-want) > 1e-9 || got.Price <= 0 {
				t.Errorf("price = %v, want %v", got.Price, want)
			}
		})
	}
}

func TestEstimateMarkIVDuplicateStrikes(t *testing.T) {
	// 两个键解析为同一行权价
	quotes := MarkQuotes{
		"BTC-8MAR24-60000-C":  {MarkIV: f(0.60)},
		"BTC-8MAR24-65000-C":  {MarkIV: f(0.55)},
		"BTC-8MAR24-065000-C": {MarkIV: f(0.70)},
	}
	tests := []struct {
		target string
		wantIV float64
	}{
		{"BTC-8MAR24-70000-C", 0.55},
		{"BTC-8MAR24-64000-C", 0.70},
	}
	for _, tt := range tests {
		for i := 0; i < 50; i++ {
			got, err := EstimateMarkIV(tt.target, quotes, btcFutures, testNow)
			if err != nil {
				t.Fatalf("EstimateMarkIV: %v", err)
			}
			if got.IV != tt.wantIV {
				t.Fatalf("%s run %d: iv = %v, want %v", tt.target, i, got.IV, tt.wantIV)
			}
		}
	}
}

func TestEstimateMarkIVIncompleteQuote(t *testing.T) {
	quotes := callCurve()
	quotes["BTC-8MAR24-66000-C"] = MarkQuote{MarkIV: f(0.52)}
	quotes["BTC-8MAR24-68000-C"] = MarkQuote{MarkPrice: f(800)}

	got, err := EstimateMarkIV("BTC-8MAR24-66000-C", quotes, btcFutures, testNow)
	if err != nil {
		t.Fatalf("EstimateMarkIV: %v", err)
	}
	if got.IV != 0.52 {
		t.Errorf("iv = %v, want own iv 0.52", got.IV)
	}

	// 缺少 IV 的报价不参与插值
	got, err = EstimateMarkIV("BTC-8MAR24-68500-C", quotes, btcFutures, testNow)
	if err != nil {
		t.Fatalf("EstimateMarkIV: %v", err)
	}
	if got.IV != 0.45 {
		t.Errorf("iv = %v, want 0.45", got.IV)
	}
}

func TestEstimateMarkIVNoSeries(t *testing.T) {
	got, err := EstimateMarkIV("ETH-8MAR24-3000-P", callCurve(), 3000, testNow)
	if err != nil {
		t.Fatalf("EstimateMarkIV: %v", err)
	}
	if got != (MarkIV{}) {
		t.Errorf("no series = %+v, want zero", got)
	}

	if _, err := EstimateMarkIV("BTC-8MAR24", callCurve(), btcFutures, testNow); !errors.Is(err, ErrInvalidInstrument) {
		t.Errorf("malformed err = %v", err)
	}
}

func TestSpreadMark(t *testing.T) {
	got := SpreadMark(MarkIV{IV: 0.5, Price: 100}, MarkIV{IV: 0.7, Price: 150})
	if got.Price != 0 || math.Abs(got.IV-0.6) > 1e-12 {
		t.Errorf("SpreadMark = %+v", got)
	}
}

func TestMarkIVForPosition(t *testing.T) {
	quotes := MarkQuotes{
		"BTC-8MAR24-60000-P": {MarkIV: f(0.62), MarkPrice: f(300)},
		"BTC-8MAR24-70000-P": {MarkIV: f(0.48), MarkPrice: f(5400)},
	}
	id, err := derivatives.EncodeOptionID(1, 1709884800, []derivatives.OptionLeg{
		{IsBuy: false, IsCall: false, StrikePrice: 60000},
		{IsBuy: true, IsCall: false, StrikePrice: 70000},
	}, derivatives.TrancheShort)
	if err != nil {
		t.Fatalf("EncodeOptionID: %v", err)
	}
	p, err := derivatives.DecodeOptionID(id)
	if err != nil {
		t.Fatalf("DecodeOptionID: %v", err)
	}

	got, err := MarkIVForPosition("BTC", p, quotes, btcFutures, testNow)
	if err != nil {
		t.Fatalf("MarkIVForPosition: %v", err)
	}
	if got.Price != 5100 || math.Abs(got.IV-0.55) > 1e-12 {
		t.Errorf("spread mark = %+v", got)
	}

	vanilla, err := derivatives.EncodeOptionID(1, 1709884800, []derivatives.OptionLeg{
		{IsBuy: true, IsCall: false, StrikePrice: 60000},
	}, derivatives.TrancheShort)
	if err != nil {
		t.Fatalf("EncodeOptionID: %v", err)
	}
	vp, _ := derivatives.DecodeOptionID(vanilla)
	got, err = MarkIVForPosition("BTC", vp, quotes, btcFutures, testNow)
	if err != nil || got != (MarkIV{IV: 0.62, Price: 300}) {
		t.Errorf("vanilla mark = %+v, %v", got, err)
	}
}
