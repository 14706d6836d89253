package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/lock"
)

// fakeClock 是可手动推进的时钟，用于模拟锁过期
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestCoordinator(ttl time.Duration) (*lock.Coordinator, *fakeClock) {
	clock := newFakeClock()
	store := lock.NewMemoryStoreWithClock(clock.Now)
	return lock.NewCoordinatorWithClock(store, ttl, clock.Now), clock
}

func TestCoordinator_AcquireThenBlockOthers(t *testing.T) {
	coordinator, _ := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	acquired, holder, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)
	require.Nil(t, holder)
	require.NotNil(t, acquired)
	require.Equal(t, int64(1), acquired.HolderID)

	// 他人获取失败，并拿到当前持有者的信息
	acquired, holder, err = coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 2, "李四")
	require.NoError(t, err)
	require.Nil(t, acquired)
	require.NotNil(t, holder)
	require.Equal(t, "张三", holder.HolderName)
}

func TestCoordinator_SameHolderReacquireRenews(t *testing.T) {
	coordinator, clock := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	first, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	clock.Advance(100 * time.Second)

	renewed, holder, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)
	require.Nil(t, holder)
	require.True(t, renewed.ExpiresAt.After(first.ExpiresAt))
}

func TestCoordinator_RemainingTTL(t *testing.T) {
	coordinator, clock := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	acquired, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	// 持有 90 秒后剩余 90 秒
	clock.Advance(90 * time.Second)
	require.Equal(t, 90*time.Second, coordinator.RemainingTTL(acquired))

	// 过期后不出现负数
	clock.Advance(120 * time.Second)
	require.Equal(t, time.Duration(0), coordinator.RemainingTTL(acquired))
}

func TestCoordinator_ExpiredLockIsReacquirable(t *testing.T) {
	coordinator, clock := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	_, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	clock.Advance(181 * time.Second)

	acquired, holder, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 2, "李四")
	require.NoError(t, err)
	require.Nil(t, holder)
	require.NotNil(t, acquired)
	require.Equal(t, int64(2), acquired.HolderID)
}

func TestCoordinator_Force(t *testing.T) {
	coordinator, _ := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	_, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	// 强制接管无视当前持有者
	taken, err := coordinator.Force(ctx, domain.ResourceDaySchedule, 42, 2, "李四")
	require.NoError(t, err)
	require.Equal(t, int64(2), taken.HolderID)

	current, err := coordinator.Holder(ctx, domain.ResourceDaySchedule, 42)
	require.NoError(t, err)
	require.Equal(t, int64(2), current.HolderID)
}

func TestCoordinator_Check(t *testing.T) {
	coordinator, clock := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	_, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	// 持有者本人校验通过
	current, err := coordinator.Check(ctx, domain.ResourceDaySchedule, 42, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), current.HolderID)

	// 非持有者校验失败并返回持有者
	current, err = coordinator.Check(ctx, domain.ResourceDaySchedule, 42, 2)
	require.ErrorIs(t, err, lock.ErrNotHolder)
	require.Equal(t, int64(1), current.HolderID)

	// 过期后视作没有锁
	clock.Advance(181 * time.Second)
	_, err = coordinator.Check(ctx, domain.ResourceDaySchedule, 42, 1)
	require.ErrorIs(t, err, lock.ErrLockExpired)
}

func TestCoordinator_Cancel(t *testing.T) {
	coordinator, _ := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	_, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	// 非持有者不能取消
	err = coordinator.Cancel(ctx, domain.ResourceDaySchedule, 42, 2)
	require.ErrorIs(t, err, lock.ErrLockExpired)

	require.NoError(t, coordinator.Cancel(ctx, domain.ResourceDaySchedule, 42, 1))

	// 取消后资源立即可被他人获取
	acquired, holder, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 2, "李四")
	require.NoError(t, err)
	require.Nil(t, holder)
	require.NotNil(t, acquired)
}

func TestCoordinator_ReleaseAfterExpiryIsNotAnError(t *testing.T) {
	coordinator, clock := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	_, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	clock.Advance(181 * time.Second)
	require.NoError(t, coordinator.Release(ctx, domain.ResourceDaySchedule, 42, 1))
}

func TestMemoryStore_RefreshOnlyWhenStillHeld(t *testing.T) {
	clock := newFakeClock()
	store := lock.NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()
	key := lock.Key(domain.ResourceDaySchedule, 42)

	lockA := &domain.EditLock{ResourceType: domain.ResourceDaySchedule, ResourceID: 42, HolderID: 1, HolderName: "张三"}
	_, acquired, err := store.Acquire(ctx, key, lockA, 180*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	// 持有期间续期成功
	refreshed, err := store.Refresh(ctx, key, lockA, 180*time.Second, 1)
	require.NoError(t, err)
	require.True(t, refreshed)

	// 过期后锁被他人拿走，续期必须失败而不是把锁抢回来
	clock.Advance(181 * time.Second)
	lockB := &domain.EditLock{ResourceType: domain.ResourceDaySchedule, ResourceID: 42, HolderID: 2, HolderName: "李四"}
	_, acquired, err = store.Acquire(ctx, key, lockB, 180*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	refreshed, err = store.Refresh(ctx, key, lockA, 180*time.Second, 1)
	require.NoError(t, err)
	require.False(t, refreshed)

	current, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, int64(2), current.HolderID)
}

func TestCoordinator_ResourcesAreIndependent(t *testing.T) {
	coordinator, _ := newTestCoordinator(180 * time.Second)
	ctx := context.Background()

	_, _, err := coordinator.Acquire(ctx, domain.ResourceDaySchedule, 42, 1, "张三")
	require.NoError(t, err)

	// 同一 ID 的不同资源类型互不影响
	acquired, holder, err := coordinator.Acquire(ctx, domain.ResourceTemplate, 42, 2, "李四")
	require.NoError(t, err)
	require.Nil(t, holder)
	require.NotNil(t, acquired)
}
