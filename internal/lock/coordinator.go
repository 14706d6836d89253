package lock

import (
	"context"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

var (
	// ErrLockExpired 表示提交者的锁已经过期或根本没有获取过，
	// 此时不能静默覆盖，调用方需要重新获取锁再提交
	ErrLockExpired = errors.New("编辑锁已过期，请重新获取后提交")
	// ErrNotHolder 表示锁存在但持有者不是当前用户
	ErrNotHolder = errors.New("编辑锁由其他用户持有")
)

// Coordinator 管理资源的编辑锁生命周期。
// 获取锁从不阻塞等待过期，抢不到就立刻带着当前持有者的信息返回，重试节奏由
// 调用方自己掌握。
type Coordinator struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewCoordinator(store Store, ttl time.Duration) *Coordinator {
	return &Coordinator{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// NewCoordinatorWithClock 注入时钟，测试中用来模拟锁过期
func NewCoordinatorWithClock(store Store, ttl time.Duration, now func() time.Time) *Coordinator {
	return &Coordinator{
		store: store,
		ttl:   ttl,
		now:   now,
	}
}

func (c *Coordinator) newLock(resourceType domain.ResourceType, resourceID int64, holderID int64, holderName string) *domain.EditLock {
	now := c.now()
	return &domain.EditLock{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		HolderID:     holderID,
		HolderName:   holderName,
		AcquiredAt:   now,
		ExpiresAt:    now.Add(c.ttl),
	}
}

// Acquire 尝试获取资源的编辑锁。
// 成功时返回新锁；资源已被其他人锁住时返回 (nil, 持有者的锁, nil)；
// 自己已经持有时视作续期，返回刷新后的锁。
func (c *Coordinator) Acquire(ctx context.Context, resourceType domain.ResourceType, resourceID int64, holderID int64, holderName string) (*domain.EditLock, *domain.EditLock, error) {
	key := Key(resourceType, resourceID)
	lk := c.newLock(resourceType, resourceID, holderID, holderName)

	// 获取失败且拿不到当前持有者时说明锁恰好在间隙中过期了，重试一次即可
	for attempt := 0; attempt < 2; attempt++ {
		current, acquired, err := c.store.Acquire(ctx, key, lk, c.ttl)
		if err != nil {
			return nil, nil, err
		}
		if acquired {
			return lk, nil, nil
		}
		if current == nil {
			continue
		}
		if current.HolderID == holderID {
			// 同一用户重复获取等同于续期。续期必须校验锁仍由自己持有，
			// 否则在观察和写入的间隙中易主的锁会被悄悄抢回来
			refreshed, err := c.store.Refresh(ctx, key, lk, c.ttl, holderID)
			if err != nil {
				return nil, nil, err
			}
			if refreshed {
				return lk, nil, nil
			}
			continue
		}
		return nil, current, nil
	}

	return nil, nil, errors.New("获取编辑锁失败，请重试")
}

// Force 无视当前持有者直接接管锁，用于用户主动覆盖他人编辑的场景
func (c *Coordinator) Force(ctx context.Context, resourceType domain.ResourceType, resourceID int64, holderID int64, holderName string) (*domain.EditLock, error) {
	lk := c.newLock(resourceType, resourceID, holderID, holderName)
	if err := c.store.Set(ctx, Key(resourceType, resourceID), lk, c.ttl); err != nil {
		return nil, err
	}
	return lk, nil
}

// Check 校验当前用户是否仍然持有资源的锁，提交前调用。
// 锁不存在（已过期）返回 ErrLockExpired，由他人持有返回 ErrNotHolder
func (c *Coordinator) Check(ctx context.Context, resourceType domain.ResourceType, resourceID int64, holderID int64) (*domain.EditLock, error) {
	current, err := c.store.Get(ctx, Key(resourceType, resourceID))
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrLockExpired
	}
	if current.HolderID != holderID {
		return current, ErrNotHolder
	}
	return current, nil
}

// Cancel 立即释放当前用户持有的锁，不应用任何修改
func (c *Coordinator) Cancel(ctx context.Context, resourceType domain.ResourceType, resourceID int64, holderID int64) error {
	released, err := c.store.Release(ctx, Key(resourceType, resourceID), holderID)
	if err != nil {
		return err
	}
	if !released {
		return ErrLockExpired
	}
	return nil
}

// Release 在提交成功后释放锁，锁已经过期时也视作成功
func (c *Coordinator) Release(ctx context.Context, resourceType domain.ResourceType, resourceID int64, holderID int64) error {
	_, err := c.store.Release(ctx, Key(resourceType, resourceID), holderID)
	return err
}

// Holder 查询资源当前的锁持有情况，没有有效锁时返回 nil
func (c *Coordinator) Holder(ctx context.Context, resourceType domain.ResourceType, resourceID int64) (*domain.EditLock, error) {
	return c.store.Get(ctx, Key(resourceType, resourceID))
}

// RemainingTTL 返回锁剩余的存活时长
func (c *Coordinator) RemainingTTL(lk *domain.EditLock) time.Duration {
	remaining := lk.ExpiresAt.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
