package lock

import (
	"context"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

type memoryEntry struct {
	lock      domain.EditLock
	expiresAt time.Time // 用带单调时钟的 time.Time 判定过期，不受系统时间回拨影响
}

// MemoryStore 是进程内的锁表，适用于单实例部署和测试
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock 注入时钟，测试中用来模拟 TTL 过期
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// current 返回键上未过期的条目，调用方必须已持有 mu
func (s *MemoryStore) current(key string) *memoryEntry {
	entry, exists := s.entries[key]
	if !exists {
		return nil
	}
	if !s.now().Before(entry.expiresAt) {
		// 过期的锁对下一个获取者而言等同于不存在
		delete(s.entries, key)
		return nil
	}
	return &entry
}

func (s *MemoryStore) Acquire(_ context.Context, key string, lk *domain.EditLock, ttl time.Duration) (*domain.EditLock, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry := s.current(key); entry != nil {
		held := entry.lock
		return &held, false, nil
	}

	s.entries[key] = memoryEntry{lock: *lk, expiresAt: s.now().Add(ttl)}
	return nil, true, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*domain.EditLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.current(key)
	if entry == nil {
		return nil, nil
	}
	held := entry.lock
	return &held, nil
}

func (s *MemoryStore) Release(_ context.Context, key string, holderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.current(key)
	if entry == nil || entry.lock.HolderID != holderID {
		return false, nil
	}

	delete(s.entries, key)
	return true, nil
}

func (s *MemoryStore) Refresh(_ context.Context, key string, lk *domain.EditLock, ttl time.Duration, holderID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.current(key)
	if entry == nil || entry.lock.HolderID != holderID {
		return false, nil
	}

	s.entries[key] = memoryEntry{lock: *lk, expiresAt: s.now().Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, lk *domain.EditLock, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{lock: *lk, expiresAt: s.now().Add(ttl)}
	return nil
}
