package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/engine"
	"sudooom.sabacc/internal/sabacc/variant"
	"sudooom.sabacc/internal/task"
)

// Timer 回合超时计时器, 由 task.Scheduler 实现
type Timer interface {
	AddTaskAfter(t *task.Task, d time.Duration) error
	RemoveTask(taskID string) error
}

// ManagerConfig 会话管理器配置
type ManagerConfig struct {
	EvictTimeout  time.Duration // 会话闲置多久后被淘汰
	EvictInterval time.Duration // 淘汰检查间隔
	SinkTimeout   time.Duration // 单次事件投递超时
}

// Manager 会话管理器
type Manager struct {
	sessions sync.Map // sessionID -> *Session

	cfg   ManagerConfig
	timer Timer
	sinks []EventSink

	evictTicker *time.Ticker
	stopChan    chan struct{}
	stopOnce    sync.Once

	logger *slog.Logger
}

// NewManager 创建会话管理器, timer 为 nil 时不启用回合超时
func NewManager(cfg ManagerConfig, timer Timer, sinks ...EventSink) *Manager {
	if cfg.EvictTimeout <= 0 {
		cfg.EvictTimeout = 30 * time.Minute
	}
	if cfg.EvictInterval <= 0 {
		cfg.EvictInterval = time.Minute
	}
	if cfg.SinkTimeout <= 0 {
		cfg.SinkTimeout = 3 * time.Second
	}

	m := &Manager{
		cfg:         cfg,
		timer:       timer,
		sinks:       sinks,
		evictTicker: time.NewTicker(cfg.EvictInterval),
		stopChan:    make(chan struct{}),
		logger:      slog.Default().With("component", "session_manager"),
	}

	go m.evictLoop()

	return m
}

// CreateSession 创建会话并发牌, 返回会话 ID
func (m *Manager) CreateSession(ctx context.Context, variantID core.VariantID, players []string, rules HouseRules) (string, error) {
	cfg, err := variant.ByID(variantID)
	if err != nil {
		return "", err
	}
	if err := rules.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewV4().String()
	eng, err := engine.New(id, cfg, players, rules.Options)
	if err != nil {
		return "", err
	}

	s := newSession(id, variantID, players, rules, eng)
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := eng.Start()
	if err != nil {
		return "", err
	}
	m.sessions.Store(id, s)

	m.logger.Info("Session created",
		"sessionId", id,
		"variant", variantID,
		"players", len(players),
		"turnTimeout", rules.TurnTimeout)

	s.touch()
	m.dispatch(ctx, s, events)
	return id, nil
}

// SubmitAction 提交玩家动作, 成功时返回该玩家视角的快照
func (m *Manager) SubmitAction(ctx context.Context, sessionID string, a core.Action) (*engine.Snapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.engine.Apply(a)
	if err != nil {
		m.logger.Debug("Action rejected",
			"sessionId", sessionID,
			"playerId", a.PlayerID,
			"action", a.Type.String(),
			"code", core.CodeOf(err))
		return nil, err
	}

	s.touch()
	m.cancelTimeout(s)
	m.dispatch(ctx, s, events)
	return s.engine.Snapshot(a.PlayerID), nil
}

// Snapshot 获取会话快照
func (m *Manager) Snapshot(sessionID, viewer string) (*engine.Snapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(viewer), nil
}

// Disconnect 玩家断线, 按房规视为停牌或弃局
func (m *Manager) Disconnect(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error) {
	s, err := m.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.engine.Disconnect(playerID, s.rules.DisconnectAction)
	if err != nil {
		return nil, err
	}

	s.touch()
	if len(events) > 0 {
		// 断线的是当前玩家或游戏已结束, 旧计时器作废
		m.cancelTimeout(s)
	}
	m.dispatch(ctx, s, events)
	return s.engine.Snapshot(""), nil
}

// Get 获取会话
func (m *Manager) Get(sessionID string) (*Session, bool) {
	val, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return val.(*Session), true
}

// Remove 移除会话
func (m *Manager) Remove(sessionID string) {
	val, ok := m.sessions.LoadAndDelete(sessionID)
	if !ok {
		return
	}
	s := val.(*Session)
	s.mu.Lock()
	m.cancelTimeout(s)
	s.mu.Unlock()
	m.logger.Info("Session removed", "sessionId", sessionID)
}

// Count 当前会话数
func (m *Manager) Count() int {
	count := 0
	m.sessions.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

func (m *Manager) lookup(sessionID string) (*Session, error) {
	s, ok := m.Get(sessionID)
	if !ok {
		return nil, core.ErrSessionNotFound.WithContext("sessionId", sessionID)
	}
	return s, nil
}

// dispatch 处理引擎事件: 安排超时, 投递给 sinks, 结束后移除会话
// 调用方需持有 s.mu, 保证同一会话的事件有序
func (m *Manager) dispatch(ctx context.Context, s *Session, events []engine.Event) {
	if len(events) == 0 {
		return
	}

	var snap *engine.Snapshot
	if len(m.sinks) > 0 {
		snap = s.engine.Snapshot("")
	}

	ended := false
	for _, ev := range events {
		switch ev.Type {
		case engine.EventTurnStarted:
			m.scheduleTimeout(s, ev)
		case engine.EventGameEnded:
			ended = true
		}
		m.publish(ctx, s, ev, snap)
	}
	s.dirty = false

	if ended {
		m.cancelTimeout(s)
		m.sessions.Delete(s.id)
		m.logger.Info("Session finished", "sessionId", s.id)
	}
}

func (m *Manager) publish(ctx context.Context, s *Session, ev engine.Event, snap *engine.Snapshot) {
	for _, sink := range m.sinks {
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.SinkTimeout)
		if err := sink.OnEvent(sinkCtx, ev, snap); err != nil {
			m.logger.Warn("Event sink failed",
				"sessionId", s.id,
				"event", ev.Type,
				"sink", fmt.Sprintf("%T", sink),
				"error", err)
		}
		cancel()
	}
}

// TimeoutTaskID 回合超时任务 ID: session:round:index:seq
func TimeoutTaskID(sessionID string, key core.TurnKey) string {
	return sessionID + ":" + key.String()
}

// scheduleTimeout 为新回合安排超时任务, 调用方需持有 s.mu
func (m *Manager) scheduleTimeout(s *Session, ev engine.Event) {
	if m.timer == nil || s.rules.TurnTimeout <= 0 || ev.Turn == nil {
		return
	}

	key := *ev.Turn
	id := TimeoutTaskID(s.id, key)
	t := task.NewTask(id, s.id, 0, m.expireTurn).
		WithVersion(int64(key.Seq)).
		WithMetadata("turn", key).
		WithMetadata("playerId", ev.PlayerID)

	if err := m.timer.AddTaskAfter(t, s.rules.TurnTimeout); err != nil {
		m.logger.Error("Failed to schedule turn timeout", "sessionId", s.id, "taskId", id, "error", err)
		return
	}
	s.pendingTask = id
}

// cancelTimeout 取消当前回合的超时任务, 调用方需持有 s.mu
func (m *Manager) cancelTimeout(s *Session) {
	if m.timer == nil || s.pendingTask == "" {
		return
	}
	if err := m.timer.RemoveTask(s.pendingTask); err != nil && !errors.Is(err, task.ErrTaskNotFound) {
		m.logger.Warn("Failed to cancel turn timeout", "sessionId", s.id, "taskId", s.pendingTask, "error", err)
	}
	s.pendingTask = ""
}

// expireTurn 超时任务回调, 过期的任务直接忽略
func (m *Manager) expireTurn(ctx context.Context, sessionID string, metadata map[string]any) error {
	key, ok := metadata["turn"].(core.TurnKey)
	if !ok {
		return fmt.Errorf("timeout task for %s has no turn key", sessionID)
	}

	s, ok := m.Get(sessionID)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pendingTask == TimeoutTaskID(sessionID, key) {
		s.pendingTask = ""
	}

	events, err := s.engine.Timeout(key, s.rules.TimeoutAction)
	if err != nil {
		if errors.Is(err, core.ErrInvalidState) || errors.Is(err, core.ErrGameOver) {
			m.logger.Debug("Stale turn timeout ignored", "sessionId", sessionID, "turn", key.String())
			return nil
		}
		return err
	}

	s.touch()
	m.dispatch(ctx, s, events)
	return nil
}

// evictLoop 淘汰循环
func (m *Manager) evictLoop() {
	for {
		select {
		case <-m.evictTicker.C:
			m.evictInactive()
		case <-m.stopChan:
			m.logger.Info("Evict loop stopped")
			return
		}
	}
}

// evictInactive 淘汰闲置的会话
func (m *Manager) evictInactive() {
	now := time.Now()
	var toEvict []string

	m.sessions.Range(func(key, value any) bool {
		s := value.(*Session)
		if now.Sub(s.LastActiveTime()) > m.cfg.EvictTimeout {
			toEvict = append(toEvict, key.(string))
		}
		return true
	})

	for _, id := range toEvict {
		m.Remove(id)
		m.logger.Info("Evicted inactive session", "sessionId", id)
	}
}

// Shutdown 停止淘汰循环并取消所有计时器
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down session manager")

	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.evictTicker.Stop()
	})

	var err error
	m.sessions.Range(func(key, value any) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		s := value.(*Session)
		s.mu.Lock()
		m.cancelTimeout(s)
		if s.dirty {
			m.logger.Warn("Session has unpublished changes on shutdown", "sessionId", s.id)
		}
		s.mu.Unlock()
		return true
	})

	m.logger.Info("Session manager shutdown complete", "sessions", m.Count())
	return err
}
