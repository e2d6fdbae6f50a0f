package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sudooom.sabacc/internal/sabacc/engine"
)

const (
	// SessionKeyPrefix 会话快照 Key 前缀
	SessionKeyPrefix = "sabacc:session:"
	// PlayerKeyPrefix 玩家 -> 会话索引 Key 前缀
	PlayerKeyPrefix = "sabacc:player:"

	// DefaultSnapshotTTL 快照默认 TTL
	DefaultSnapshotTTL = 2 * time.Hour
)

// BuildSessionKey Key: sabacc:session:{sessionId}
func BuildSessionKey(sessionID string) string {
	return SessionKeyPrefix + sessionID
}

// BuildPlayerKey Key: sabacc:player:{playerId}
func BuildPlayerKey(playerID string) string {
	return PlayerKeyPrefix + playerID
}

// KV SnapshotStore 用到的 Redis 命令, *redis.Client 满足该接口
type KV interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SnapshotStore 把公开快照写入 Redis, 供接入层断线重连时拉取
type SnapshotStore struct {
	kv     KV
	ttl    time.Duration
	logger *slog.Logger
}

// NewSnapshotStore 创建快照存储
func NewSnapshotStore(kv KV, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotStore{
		kv:     kv,
		ttl:    ttl,
		logger: slog.Default().With("component", "snapshot_store"),
	}
}

// OnEvent 实现 game.EventSink
// 结束后保留最终快照直到 TTL 过期, 但删除玩家索引
func (s *SnapshotStore) OnEvent(ctx context.Context, ev engine.Event, snap *engine.Snapshot) error {
	if snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, BuildSessionKey(snap.SessionID), data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save snapshot", "sessionId", snap.SessionID, "error", err)
		return err
	}

	switch ev.Type {
	case engine.EventGameEnded:
		keys := make([]string, 0, len(snap.Players))
		for _, p := range snap.Players {
			keys = append(keys, BuildPlayerKey(p.ID))
		}
		if len(keys) > 0 {
			return s.kv.Del(ctx, keys...).Err()
		}
	case engine.EventTurnStarted:
		for _, p := range snap.Players {
			if err := s.kv.Set(ctx, BuildPlayerKey(p.ID), snap.SessionID, s.ttl).Err(); err != nil {
				return err
			}
		}
	}

	s.logger.Debug("Saved snapshot", "sessionId", snap.SessionID, "event", ev.Type)
	return nil
}

// Get 读取会话快照 JSON, 不存在时返回 nil, nil
func (s *SnapshotStore) Get(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.kv.Get(ctx, BuildSessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

// SessionOf 查询玩家所在的会话, 不在对局中时返回空字符串
func (s *SnapshotStore) SessionOf(ctx context.Context, playerID string) (string, error) {
	id, err := s.kv.Get(ctx, BuildPlayerKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}
