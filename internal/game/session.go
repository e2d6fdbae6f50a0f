package game

import (
	"sync"
	"time"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/engine"
)

// Session 一局游戏, 所有对引擎的访问都经过 mu 串行化
type Session struct {
	mu sync.Mutex

	id         string
	variant    core.VariantID
	players    []string
	rules      HouseRules
	engine     *engine.Engine
	createdAt  time.Time
	lastActive time.Time
	dirty      bool

	// pendingTask 当前回合超时任务的 ID
	pendingTask string
}

func newSession(id string, variant core.VariantID, players []string, rules HouseRules, eng *engine.Engine) *Session {
	now := time.Now()
	return &Session{
		id:         id,
		variant:    variant,
		players:    append([]string(nil), players...),
		rules:      rules,
		engine:     eng,
		createdAt:  now,
		lastActive: now,
	}
}

// ID 会话 ID
func (s *Session) ID() string {
	return s.id
}

// Variant 玩法
func (s *Session) Variant() core.VariantID {
	return s.variant
}

// Players 座位顺序的玩家列表
func (s *Session) Players() []string {
	return append([]string(nil), s.players...)
}

// Rules 房规
func (s *Session) Rules() HouseRules {
	return s.rules
}

// Snapshot 加锁后生成 viewer 视角的快照
func (s *Session) Snapshot(viewer string) *engine.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot(viewer)
}

// IsOver 游戏是否已结束
func (s *Session) IsOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsGameOver()
}

// IsDirty 是否有尚未同步到快照存储的修改
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// LastActiveTime 最后活跃时间
func (s *Session) LastActiveTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// touch 调用方需持有 mu
func (s *Session) touch() {
	s.lastActive = time.Now()
	s.dirty = true
}
