package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	derivatives "github.com/wyfcoding/optionpool/internal/derivatives/domain"
)

var ErrInvalidInstrument = errors.New("invalid instrument name")

const (
	expiryLayout = "2Jan06"
	// 到期结算时刻 08:00 UTC
	expiryHour = 8 * time.Hour
)

// Instrument 合约，名称形如 BTC-8MAR24-65000-C
type Instrument struct {
	Asset       string
	Expiry      int64 // unix 秒
	StrikePrice uint64
	Type        OptionType
}

// ParseInstrument 解析合约名称
func ParseInstrument(name string) (Instrument, error) {
	parts := strings.Split(strings.TrimSpace(name), "-")
	if len(parts) != 4 || parts[0] == "" {
		return Instrument{}, fmt.Errorf("%w: %q", ErrInvalidInstrument, name)
	}

	day, err := time.Parse(expiryLayout, parts[1])
	if err != nil {
		return Instrument{}, fmt.Errorf("%w: expiry %q: %v", ErrInvalidInstrument, parts[1], err)
	}

	strike, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || strike == 0 {
		return Instrument{}, fmt.Errorf("%w: strike %q", ErrInvalidInstrument, parts[2])
	}

	var typ OptionType
	switch strings.ToUpper(parts[3]) {
	case "C":
		typ = OptionTypeCall
	case "P":
		typ = OptionTypePut
	default:
		return Instrument{}, fmt.Errorf("%w: direction %q", ErrInvalidInstrument, parts[3])
	}

	return Instrument{
		Asset:       strings.ToUpper(parts[0]),
		Expiry:      day.Add(expiryHour).Unix(),
		StrikePrice: strike,
		Type:        typ,
	}, nil
}

// ExpiryLabel 到期日标签，如 8MAR24
func ExpiryLabel(expiry int64) string {
	return strings.ToUpper(time.Unix(expiry, 0).UTC().Format(expiryLayout))
}

func (i Instrument) String() string {
	return fmt.Sprintf("%s-%s-%d-%s", i.Asset, ExpiryLabel(i.Expiry), i.StrikePrice, i.Type.suffix())
}

// SameSeries 标的、到期日与方向均相同
func (i Instrument) SameSeries(o Instrument) bool {
	return i.Asset == o.Asset && ExpiryLabel(i.Expiry) == ExpiryLabel(o.Expiry) && i.Type == o.Type
}

// InstrumentForLeg 期权腿对应的合约
func InstrumentForLeg(asset string, expiry int64, leg derivatives.OptionLeg) Instrument {
	return Instrument{
		Asset:       strings.ToUpper(asset),
		Expiry:      expiry,
		StrikePrice: leg.StrikePrice,
		Type:        OptionTypeOf(leg.IsCall),
	}
}

// InstrumentNames 头寸各有效腿的合约名称，顺序与 Legs 一致
func InstrumentNames(asset string, p *derivatives.Position) []string {
	legs := p.ActiveLegs()
	names := make([]string, len(legs))
	for i, leg := range legs {
		names[i] = InstrumentForLeg(asset, p.Expiry, leg).String()
	}
	return names
}

// MainInstrument 主腿合约
func MainInstrument(asset string, p *derivatives.Position) Instrument {
	return InstrumentForLeg(asset, p.Expiry, p.MainLeg())
}

// PairedInstrument 配对腿合约，单腿策略返回 false
func PairedInstrument(asset string, p *derivatives.Position) (Instrument, bool) {
	leg, ok := p.PairedLeg()
	if !ok {
		return Instrument{}, false
	}
	return InstrumentForLeg(asset, p.Expiry, leg), true
}
