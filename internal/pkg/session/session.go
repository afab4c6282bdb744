package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// Store 登录会话存储
// token 中只携带会话ID，退出登录时删除会话即可让 token 立即失效
type Store interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
	// DeleteUser 撤销某个用户的全部会话，改密码后调用
	DeleteUser(ctx context.Context, userID string) error
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func key(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// userKey 用户的会话ID集合
func userKey(userID string) string {
	return fmt.Sprintf("session:user:%s", userID)
}

// Create 创建会话，返回会话ID，集合过期时间跟随最新的会话
func (s *redisStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	id := uuid.New().String()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(id), userID, ttl)
		pipe.SAdd(ctx, userKey(userID), id)
		pipe.Expire(ctx, userKey(userID), ttl)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get 返回会话对应的用户ID
func (s *redisStore) Get(ctx context.Context, sessionID string) (string, error) {
	val, err := s.rdb.Get(ctx, key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete 删除会话，重复删除不报错
func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	userID, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key(sessionID))
		pipe.SRem(ctx, userKey(userID), sessionID)
		return nil
	})
	return err
}

func (s *redisStore) DeleteUser(ctx context.Context, userID string) error {
	ids, err := s.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, key(id))
	}
	keys = append(keys, userKey(userID))
	return s.rdb.Del(ctx, keys...).Err()
}
