package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/jobrec/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
// 黑名单以 JSON 字符串数组存放在单个 key 下，运营侧直接写入即可生效。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlacklist 从 Store 读取黑名单。key 不存在时视为空名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

var _ BlacklistStore = (*StoreAdapter)(nil)
