package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// 期权 ID 位布局（高位在前）：
// asset(16) | expiry(40) | strategy(4) | legCount-1(2) | 4 x [isBuy(1) | strike(46) | isCall(1)] | tranche(2)
const (
	assetShift    = 240
	expiryShift   = 200
	strategyShift = 196
	legCountShift = 194

	legIsBuyShift  = 193
	legStrikeShift = 147
	legIsCallShift = 146
	legWidth       = 48

	assetBits    = 16
	expiryBits   = 40
	strategyBits = 4
	legCountBits = 2
	strikeBits   = 46
	trancheBits  = 2
)

// 各字段的最大值
const (
	MaxAssetIndex = 1<<assetBits - 1
	MaxExpiry     = 1<<expiryBits - 1
	MaxStrike     = 1<<strikeBits - 1
	MaxTranche    = 1<<trancheBits - 1
)

// OptionID 256 位期权头寸标识
type OptionID struct {
	value uint256.Int
}

// OptionIDFromUint256 由 uint256 构造
func OptionIDFromUint256(v *uint256.Int) OptionID {
	var id OptionID
	id.value.Set(v)
	return id
}

// OptionIDFromHash 由头寸存储使用的 bytes32 形式构造
func OptionIDFromHash(h common.Hash) OptionID {
	var id OptionID
	id.value.SetBytes32(h[:])
	return id
}

// OptionIDFromBig 由 big.Int 构造，负数或超过 256 位时报错
func OptionIDFromBig(b *big.Int) (OptionID, error) {
	if b == nil || b.Sign() < 0 {
		return OptionID{}, ErrInvalidOptionID
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return OptionID{}, fmt.Errorf("%w: exceeds 256 bits", ErrInvalidOptionID)
	}
	return OptionIDFromUint256(v), nil
}

// ParseOptionID 解析十进制或 0x 前缀的十六进制字符串
func ParseOptionID(s string) (OptionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OptionID{}, ErrInvalidOptionID
	}
	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return OptionID{}, fmt.Errorf("%w: %q", ErrInvalidOptionID, s)
	}
	return OptionIDFromBig(b)
}

// Uint256 返回底层值的拷贝
func (id OptionID) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&id.value)
}

// Big 转为 big.Int
func (id OptionID) Big() *big.Int {
	return id.value.ToBig()
}

// Hex 0x 前缀的最短十六进制表示
func (id OptionID) Hex() string {
	return id.value.Hex()
}

// Hash 32 字节大端表示
func (id OptionID) Hash() common.Hash {
	return common.Hash(id.value.Bytes32())
}

// String 十进制表示
func (id OptionID) String() string {
	return id.value.Dec()
}

func (id OptionID) IsZero() bool {
	return id.value.IsZero()
}

func (id OptionID) Equal(other OptionID) bool {
	return id.value.Eq(&other.value)
}

// MarshalText 以十进制文本序列化
func (id OptionID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText 接受十进制或十六进制文本
func (id *OptionID) UnmarshalText(text []byte) error {
	parsed, err := ParseOptionID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// EncodeOptionID 将腿排序、分类后打包为期权 ID。
// legs 中每条腿都视为有效腿，行权价为 0 的腿会导致腿数不一致。
func EncodeOptionID(asset uint16, expiry int64, legs []OptionLeg, tranche Tranche) (OptionID, error) {
	if len(legs) > MaxLegs {
		return OptionID{}, fmt.Errorf("%w: %d", ErrTooManyLegs, len(legs))
	}
	p := Position{
		UnderlyingAssetIndex: asset,
		Expiry:               expiry,
		LegCount:             len(legs),
		Tranche:              tranche,
	}
	copy(p.Legs[:], legs)
	return EncodePosition(p)
}

// EncodePosition 按声明的 LegCount 打包头寸，Legs 可以任意顺序并在任意位置补空腿。
// 入参的 Strategy 字段会被忽略，以分类结果为准。
func EncodePosition(p Position) (OptionID, error) {
	sorted := SortLegs(p.Legs)

	if p.LegCount < 1 || p.LegCount > MaxLegs || countNonZero(sorted) != p.LegCount {
		return OptionID{}, fmt.Errorf("%w: declared %d, non-zero strikes %d",
			ErrLegCountMismatch, p.LegCount, countNonZero(sorted))
	}

	strategy, err := ClassifyStrategy(sorted[:p.LegCount])
	if err != nil {
		return OptionID{}, fmt.Errorf("classify %d legs: %w", p.LegCount, err)
	}

	if p.Expiry < 0 || p.Expiry > MaxExpiry {
		return OptionID{}, fmt.Errorf("%w: expiry %d", ErrFieldOverflow, p.Expiry)
	}
	if p.Tranche > MaxTranche {
		return OptionID{}, fmt.Errorf("%w: tranche %d", ErrFieldOverflow, p.Tranche)
	}
	for i, leg := range sorted {
		if leg.StrikePrice > MaxStrike {
			return OptionID{}, fmt.Errorf("%w: leg %d strike %d", ErrFieldOverflow, i, leg.StrikePrice)
		}
	}

	var id OptionID
	put := func(v uint64, shift uint) {
		if v == 0 {
			return
		}
		field := new(uint256.Int).SetUint64(v)
		field.Lsh(field, shift)
		id.value.Or(&id.value, field)
	}

	put(uint64(p.UnderlyingAssetIndex), assetShift)
	put(uint64(p.Expiry), expiryShift)
	put(uint64(strategy), strategyShift)
	put(uint64(p.LegCount-1), legCountShift)
	for i, leg := range sorted {
		offset := uint(i * legWidth)
		put(boolBit(leg.IsBuy), legIsBuyShift-offset)
		put(leg.StrikePrice, legStrikeShift-offset)
		put(boolBit(leg.IsCall), legIsCallShift-offset)
	}
	put(uint64(p.Tranche), 0)

	return id, nil
}

// DecodeOptionID 按编码的字段顺序解包。
// strategy 字段为保留值或超出已知范围时返回 ErrNotSupportedStrategy；
// legCount 与策略不符、有效腿行权价为 0 或补位腿非空时返回 ErrLegCountMismatch
func DecodeOptionID(id OptionID) (*Position, error) {
	strategy := Strategy(id.field(strategyShift, strategyBits))
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: strategy nibble %d in %s", ErrNotSupportedStrategy, uint8(strategy), id.Hex())
	}

	p := &Position{
		UnderlyingAssetIndex: uint16(id.field(assetShift, assetBits)),
		Expiry:               int64(id.field(expiryShift, expiryBits)),
		Strategy:             strategy,
		LegCount:             int(id.field(legCountShift, legCountBits)) + 1,
		Tranche:              Tranche(id.field(0, trancheBits)),
	}
	for i := range p.Legs {
		offset := uint(i * legWidth)
		p.Legs[i] = OptionLeg{
			IsBuy:       id.field(legIsBuyShift-offset, 1) == 1,
			StrikePrice: id.field(legStrikeShift-offset, strikeBits),
			IsCall:      id.field(legIsCallShift-offset, 1) == 1,
		}
	}

	if p.LegCount != strategy.LegCount() {
		return nil, fmt.Errorf("%w: %s declares %d legs in %s", ErrLegCountMismatch, strategy, p.LegCount, id.Hex())
	}
	for i, leg := range p.Legs {
		if i < p.LegCount && leg.IsEmpty() {
			return nil, fmt.Errorf("%w: leg %d has zero strike in %s", ErrLegCountMismatch, i, id.Hex())
		}
		if i >= p.LegCount && leg != (OptionLeg{}) {
			return nil, fmt.Errorf("%w: padding leg %d is set in %s", ErrLegCountMismatch, i, id.Hex())
		}
	}
	return p, nil
}

// field 取出从 shift 开始、宽 bits 位的字段（bits <= 64）
func (id OptionID) field(shift, bits uint) uint64 {
	v := new(uint256.Int).Rsh(&id.value, shift)
	mask := uint64(1)<<bits - 1
	return v.Uint64() & mask
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
