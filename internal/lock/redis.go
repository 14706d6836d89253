package lock

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

const redisKeyPrefix = "edit_lock:"

// 只在锁仍由指定持有者持有时删除，保证释放操作的原子性
var releaseScript = redis.NewScript(`
	local value = redis.call("GET", KEYS[1])
	if not value then
		return 0
	end
	local lock = cjson.decode(value)
	if tostring(lock.holderId) ~= ARGV[1] then
		return 0
	end
	return redis.call("DEL", KEYS[1])
`)

// 只在锁仍由指定持有者持有时覆盖并重置 TTL，续期不能抢走已经易主的锁
var refreshScript = redis.NewScript(`
	local value = redis.call("GET", KEYS[1])
	if not value then
		return 0
	end
	local lock = cjson.decode(value)
	if tostring(lock.holderId) ~= ARGV[1] then
		return 0
	end
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

// RedisStore 把编辑锁存到 redis，多实例部署时共用一张锁表。
// TTL 交给 redis 的键过期机制处理，过期的键对下一个获取者等同于不存在
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Acquire(ctx context.Context, key string, lk *domain.EditLock, ttl time.Duration) (*domain.EditLock, bool, error) {
	data, err := json.Marshal(lk)
	if err != nil {
		return nil, false, err
	}

	ok, err := s.client.SetNX(ctx, redisKeyPrefix+key, data, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}

	current, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		// 获取失败后锁又恰好过期了，让调用方重试
		return nil, false, nil
	}
	return current, false, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*domain.EditLock, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	lk := &domain.EditLock{}
	if err := json.Unmarshal(data, lk); err != nil {
		return nil, err
	}
	return lk, nil
}

func (s *RedisStore) Release(ctx context.Context, key string, holderID int64) (bool, error) {
	deleted, err := releaseScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, strconv.FormatInt(holderID, 10)).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}

func (s *RedisStore) Refresh(ctx context.Context, key string, lk *domain.EditLock, ttl time.Duration, holderID int64) (bool, error) {
	data, err := json.Marshal(lk)
	if err != nil {
		return false, err
	}

	refreshed, err := refreshScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, strconv.FormatInt(holderID, 10), data, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return refreshed == 1, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, lk *domain.EditLock, ttl time.Duration) error {
	data, err := json.Marshal(lk)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err()
}
