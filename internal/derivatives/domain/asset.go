package domain

import (
	"fmt"
	"strings"
)

// AssetRegistry 标的名称与期权 ID 中 asset 索引的映射，构造后只读
type AssetRegistry struct {
	byName  map[string]uint16
	byIndex map[uint16]string
}

// DefaultAssets 默认标的：BTC=1, ETH=2
func DefaultAssets() *AssetRegistry {
	r, _ := NewAssetRegistry(map[string]uint16{"BTC": 1, "ETH": 2})
	return r
}

// NewAssetRegistry 创建注册表，名称统一为大写，索引 0 保留
func NewAssetRegistry(assets map[string]uint16) (*AssetRegistry, error) {
	r := &AssetRegistry{
		byName:  make(map[string]uint16, len(assets)),
		byIndex: make(map[uint16]string, len(assets)),
	}
	for name, idx := range assets {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" || idx == 0 {
			return nil, fmt.Errorf("invalid asset %q with index %d", name, idx)
		}
		if prev, ok := r.byIndex[idx]; ok {
			return nil, fmt.Errorf("asset index %d assigned to both %s and %s", idx, prev, name)
		}
		r.byName[name] = idx
		r.byIndex[idx] = name
	}
	return r, nil
}

// Index 标的名称对应的索引
func (r *AssetRegistry) Index(name string) (uint16, error) {
	idx, ok := r.byName[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAsset, name)
	}
	return idx, nil
}

// Name 索引对应的标的名称
func (r *AssetRegistry) Name(idx uint16) (string, error) {
	name, ok := r.byIndex[idx]
	if !ok {
		return "", fmt.Errorf("%w: index %d", ErrUnknownAsset, idx)
	}
	return name, nil
}
