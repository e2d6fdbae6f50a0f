package nats

import (
	"context"
	"encoding/json"
	"log/slog"

	"sudooom.sabacc/internal/sabacc/engine"
	"sudooom.sabacc/pkg/proto"
)

// Publisher 发布接口, *nats.Conn 满足该接口
type Publisher interface {
	Publish(subject string, data []byte) error
}

// EventPublisher 把会话事件发布到 sabacc.events.{session_id}
type EventPublisher struct {
	nc     Publisher
	logger *slog.Logger
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(nc Publisher) *EventPublisher {
	return &EventPublisher{
		nc:     nc,
		logger: slog.Default().With("component", "event_publisher"),
	}
}

// OnEvent 实现 game.EventSink
func (p *EventPublisher) OnEvent(ctx context.Context, ev engine.Event, snap *engine.Snapshot) error {
	msg, err := buildEventMessage(ev, snap)
	if err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal event", "sessionId", ev.SessionID, "error", err)
		return err
	}

	subject := proto.BuildEventSubject(ev.SessionID)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish event", "subject", subject, "error", err)
		return err
	}

	p.logger.Debug("Published event", "subject", subject, "type", ev.Type)
	return nil
}

func buildEventMessage(ev engine.Event, snap *engine.Snapshot) (*proto.EventMessage, error) {
	event, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	msg := &proto.EventMessage{
		SessionID: ev.SessionID,
		Type:      string(ev.Type),
		Event:     event,
		Timestamp: ev.At.UnixMilli(),
	}
	if snap != nil {
		if msg.Snapshot, err = json.Marshal(snap); err != nil {
			return nil, err
		}
	}
	return msg, nil
}
