package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

// Store 是以资源为键的编辑锁存储，每个键上的操作都必须是原子的比较并交换
type Store interface {
	// Acquire 在键上不存在有效锁时写入 lk 并返回 (nil, true, nil)；
	// 已存在时不做修改，返回当前持有的锁和 false
	Acquire(ctx context.Context, key string, lk *domain.EditLock, ttl time.Duration) (*domain.EditLock, bool, error)
	// Get 返回当前有效的锁，不存在或已过期时返回 nil
	Get(ctx context.Context, key string) (*domain.EditLock, error)
	// Release 只在锁仍由 holderID 持有时删除它，返回是否真的删除了
	Release(ctx context.Context, key string, holderID int64) (bool, error)
	// Refresh 只在锁仍由 holderID 持有时用 lk 覆盖并重置 TTL，返回是否成功
	Refresh(ctx context.Context, key string, lk *domain.EditLock, ttl time.Duration, holderID int64) (bool, error)
	// Set 无条件覆盖键上的锁，用于强制接管
	Set(ctx context.Context, key string, lk *domain.EditLock, ttl time.Duration) error
}

// Key 构造锁存储的键
func Key(resourceType domain.ResourceType, resourceID int64) string {
	return fmt.Sprintf("%s:%d", resourceType, resourceID)
}
