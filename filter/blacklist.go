package filter

import (
	"context"

	"github.com/rushteam/jobrec/core"
)

// BlacklistFilter 是下架黑名单过滤器，剔除运营下架/违规的职位。
type BlacklistFilter struct {
	// JobIDs 是内存中的黑名单职位 ID 列表
	JobIDs []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单职位 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(jobIDs []string, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlacklistFilter{
		JobIDs: jobIDs,
		Store:  store,
		Key:    key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}

	for _, id := range f.JobIDs {
		if c.JobID == id {
			return true, nil
		}
	}

	if f.Store != nil && f.Key != "" {
		blacklist, err := f.Store.GetBlacklist(ctx, f.Key)
		if err == nil {
			for _, id := range blacklist {
				if c.JobID == id {
					return true, nil
				}
			}
		}
	}

	return false, nil
}
