package game

import (
	"context"

	"sudooom.sabacc/internal/sabacc/engine"
)

// EventSink 接收会话事件, snap 为事件发生后的公开快照 (不含手牌, 结束后全部亮牌)
//
// 同一会话的事件按顺序投递; 返回的错误只会被记录, 不会影响游戏流程。
type EventSink interface {
	OnEvent(ctx context.Context, ev engine.Event, snap *engine.Snapshot) error
}

// SinkFunc 函数形式的 EventSink
type SinkFunc func(ctx context.Context, ev engine.Event, snap *engine.Snapshot) error

func (f SinkFunc) OnEvent(ctx context.Context, ev engine.Event, snap *engine.Snapshot) error {
	return f(ctx, ev, snap)
}
