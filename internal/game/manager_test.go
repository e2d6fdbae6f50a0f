package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/engine"
	"sudooom.sabacc/internal/task"
)

type fakeTimer struct {
	mu      sync.Mutex
	tasks   map[string]*task.Task
	removed []string
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{tasks: make(map[string]*task.Task)}
}

func (f *fakeTimer) AddTaskAfter(t *task.Task, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTimer) RemoveTask(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return task.ErrTaskNotFound
	}
	delete(f.tasks, id)
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeTimer) pending() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	return ids
}

// fire 模拟时间轮到期: 任务出队后执行
func (f *fakeTimer) fire(t *testing.T, id string) {
	t.Helper()
	f.mu.Lock()
	tk, ok := f.tasks[id]
	delete(f.tasks, id)
	f.mu.Unlock()
	require.True(t, ok, "task %s not scheduled", id)
	require.NoError(t, tk.Execute(context.Background()))
}

type recordingSink struct {
	mu     sync.Mutex
	events []engine.Event
}

func (r *recordingSink) OnEvent(ctx context.Context, ev engine.Event, snap *engine.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) types() []engine.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]engine.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func testRules() HouseRules {
	rules := DefaultHouseRules()
	rules.TurnTimeout = time.Second
	rules.Options.Seed = 99
	return rules
}

func newTestManager(t *testing.T, timer Timer, sinks ...EventSink) *Manager {
	t.Helper()
	m := NewManager(ManagerConfig{}, timer, sinks...)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m
}

func TestCreateSession_Validation(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.CreateSession(ctx, "pazaak", []string{"a", "b"}, testRules())
	assert.ErrorIs(t, err, core.ErrInvalidVariant)

	_, err = m.CreateSession(ctx, core.VariantKessel, []string{"a"}, testRules())
	assert.ErrorIs(t, err, core.ErrInvalidPlayerCount)

	rules := testRules()
	rules.TimeoutAction = core.ActionDraw
	_, err = m.CreateSession(ctx, core.VariantKessel, []string{"a", "b"}, rules)
	assert.ErrorIs(t, err, core.ErrInvalidParams)

	assert.Equal(t, 0, m.Count())
}

func TestSubmitAction_Errors(t *testing.T) {
	m := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.SubmitAction(ctx, "missing", core.Action{PlayerID: "a", Type: core.ActionStand})
	assert.ErrorIs(t, err, core.ErrSessionNotFound)

	id, err := m.CreateSession(ctx, core.VariantCorellianSpike, []string{"a", "b"}, testRules())
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	_, err = m.SubmitAction(ctx, id, core.Action{PlayerID: "b", Type: core.ActionStand})
	assert.ErrorIs(t, err, core.ErrNotYourTurn)

	snap, err := m.SubmitAction(ctx, id, core.Action{PlayerID: "a", Type: core.ActionDraw})
	require.NoError(t, err)
	assert.Equal(t, "b", snap.Active)
	assert.Len(t, snap.Players[0].Hand, 3, "viewer sees their own hand")
	assert.Empty(t, snap.Players[1].Hand)
}

func TestTurnTimeout_DefaultStand(t *testing.T) {
	timer := newFakeTimer()
	sink := &recordingSink{}
	m := newTestManager(t, timer, sink)
	ctx := context.Background()

	id, err := m.CreateSession(ctx, core.VariantCorellianSpike, []string{"a", "b", "c"}, testRules())
	require.NoError(t, err)

	first := TimeoutTaskID(id, core.TurnKey{Round: 1, Index: 0, Seq: 1})
	require.Equal(t, []string{first}, timer.pending())

	timer.fire(t, first)

	snap, err := m.Snapshot(id, "")
	require.NoError(t, err)
	assert.Equal(t, core.StatusStood, snap.Players[0].Status)
	assert.Equal(t, "b", snap.Active)
	assert.Equal(t, []engine.EventType{engine.EventTurnStarted, engine.EventTurnTimedOut, engine.EventTurnStarted}, sink.types())

	second := TimeoutTaskID(id, core.TurnKey{Round: 1, Index: 1, Seq: 2})
	assert.Equal(t, []string{second}, timer.pending())
}

func TestTurnTimeout_CancelledByAction(t *testing.T) {
	timer := newFakeTimer()
	m := newTestManager(t, timer)
	ctx := context.Background()

	id, err := m.CreateSession(ctx, core.VariantCorellianSpike, []string{"a", "b", "c"}, testRules())
	require.NoError(t, err)

	first := TimeoutTaskID(id, core.TurnKey{Round: 1, Index: 0, Seq: 1})
	timer.mu.Lock()
	stale := timer.tasks[first]
	timer.mu.Unlock()

	_, err = m.SubmitAction(ctx, id, core.Action{PlayerID: "a", Type: core.ActionDraw})
	require.NoError(t, err)
	assert.Equal(t, []string{first}, timer.removed)

	// 已经出队的旧任务仍可能执行, 必须被忽略
	require.NoError(t, stale.Execute(ctx))

	snap, err := m.Snapshot(id, "")
	require.NoError(t, err)
	assert.Equal(t, "b", snap.Active)
	assert.Equal(t, core.StatusActive, snap.Players[1].Status)
	assert.Equal(t, core.StatusActive, snap.Players[0].Status)
}

func TestGameEnd_RemovesSession(t *testing.T) {
	timer := newFakeTimer()
	sink := &recordingSink{}
	m := newTestManager(t, timer, sink)
	ctx := context.Background()

	id, err := m.CreateSession(ctx, core.VariantKessel, []string{"a", "b"}, testRules())
	require.NoError(t, err)

	snap, err := m.SubmitAction(ctx, id, core.Action{PlayerID: "a", Type: core.ActionJunk})
	require.NoError(t, err)
	assert.Equal(t, core.PhaseEnded, snap.Phase)
	require.NotNil(t, snap.Ranking)
	assert.Equal(t, []string{"b"}, snap.Ranking.Winners)

	assert.Equal(t, 0, m.Count())
	assert.Empty(t, timer.pending())
	assert.Contains(t, sink.types(), engine.EventGameEnded)

	_, err = m.Snapshot(id, "")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestDisconnect_UsesHouseRule(t *testing.T) {
	timer := newFakeTimer()
	m := newTestManager(t, timer)
	ctx := context.Background()

	rules := testRules()
	rules.DisconnectAction = core.ActionJunk
	id, err := m.CreateSession(ctx, core.VariantTraditional, []string{"a", "b", "c"}, rules)
	require.NoError(t, err)

	snap, err := m.Disconnect(ctx, id, "a")
	require.NoError(t, err)
	assert.Equal(t, core.StatusJunked, snap.Players[0].Status)
	assert.Equal(t, "b", snap.Active)

	first := TimeoutTaskID(id, core.TurnKey{Round: 1, Index: 0, Seq: 1})
	assert.Contains(t, timer.removed, first)

	_, err = m.Disconnect(ctx, id, "ghost")
	assert.ErrorIs(t, err, core.ErrInvalidParams)
}

func TestTurnTimeout_WithScheduler(t *testing.T) {
	scheduler := task.NewScheduler(2, 10*time.Millisecond)
	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	sink := &recordingSink{}
	m := newTestManager(t, scheduler, sink)
	rules := testRules()
	rules.TurnTimeout = 30 * time.Millisecond

	_, err := m.CreateSession(context.Background(), core.VariantCoruscantShift, []string{"a", "b"}, rules)
	require.NoError(t, err)

	// 无人出手时每个回合都会超时, 直到整局结束
	require.Eventually(t, func() bool { return m.Count() == 0 }, 3*time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	var timedOut []string
	for _, ev := range sink.events {
		if ev.Type == engine.EventTurnTimedOut {
			timedOut = append(timedOut, ev.PlayerID)
		}
	}
	assert.Equal(t, []string{"a", "b", "a", "b"}, timedOut)
	assert.Equal(t, engine.EventGameEnded, sink.events[len(sink.events)-1].Type)
}

func TestEvictInactive(t *testing.T) {
	m := NewManager(ManagerConfig{EvictTimeout: 10 * time.Millisecond, EvictInterval: 5 * time.Millisecond}, nil)
	defer m.Shutdown(context.Background())

	_, err := m.CreateSession(context.Background(), core.VariantCorellianSpike, []string{"a", "b"}, testRules())
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestShutdown_Idempotent(t *testing.T) {
	m := NewManager(ManagerConfig{}, newFakeTimer())
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
}
