package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"sudooom.sabacc/internal/game"
	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/engine"
	"sudooom.sabacc/pkg/proto"
)

// ActionHandler 处理玩家动作, 由 game.Manager 实现
type ActionHandler interface {
	SubmitAction(ctx context.Context, sessionID string, a core.Action) (*engine.Snapshot, error)
	Disconnect(ctx context.Context, sessionID, playerID string) (*engine.Snapshot, error)
}

// SubscriberConfig Worker Pool 配置
type SubscriberConfig struct {
	WorkerCount int // Worker 数量
	BufferSize  int // 消息缓冲区大小
}

// ActionSubscriber 以队列组订阅 sabacc.actions, 多个引擎实例分摊请求
//
// 同一会话的请求可能落到不同 worker, 会话内部的锁保证串行。
type ActionSubscriber struct {
	nc           *nats.Conn
	handler      ActionHandler
	logger       *slog.Logger
	subscription *nats.Subscription
	config       SubscriberConfig
	msgChan      chan *nats.Msg
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc
}

// NewActionSubscriber 创建动作订阅器
func NewActionSubscriber(nc *nats.Conn, handler ActionHandler, config SubscriberConfig) *ActionSubscriber {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 32
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 4096
	}

	return &ActionSubscriber{
		nc:      nc,
		handler: handler,
		logger:  slog.Default().With("component", "action_subscriber"),
		config:  config,
	}
}

// Start 启动订阅
func (s *ActionSubscriber) Start(ctx context.Context) error {
	s.msgChan = make(chan *nats.Msg, s.config.BufferSize)

	workerCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx)
	}

	sub, err := s.nc.QueueSubscribe(proto.SubjectActions, proto.QueueGroupEngine, func(msg *nats.Msg) {
		select {
		case s.msgChan <- msg:
		default:
			s.logger.Warn("Action buffer full, dropping request", "bufferSize", s.config.BufferSize)
			s.reply(msg, &proto.ActionReply{ErrorCode: "BUSY", Message: "engine is overloaded"})
		}
	})
	if err != nil {
		cancel()
		return err
	}

	s.subscription = sub
	s.logger.Info("NATS subscriber started",
		"subject", proto.SubjectActions,
		"workerCount", s.config.WorkerCount,
		"bufferSize", s.config.BufferSize,
	)
	return nil
}

func (s *ActionSubscriber) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.msgChan:
			if !ok {
				return
			}
			s.reply(msg, s.handle(ctx, msg.Data))
		}
	}
}

// handle 解析并执行一条动作请求
func (s *ActionSubscriber) handle(ctx context.Context, data []byte) *proto.ActionReply {
	var req proto.ActionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Error("Failed to unmarshal action request", "error", err)
		return errorReply("", core.ErrInvalidParams.WithCause(err))
	}

	var (
		snap *engine.Snapshot
		err  error
	)
	if req.Action == proto.ActionDisconnect {
		snap, err = s.handler.Disconnect(ctx, req.SessionID, req.PlayerID)
	} else {
		var a core.Action
		if a, err = game.ActionFromRequest(&req); err == nil {
			snap, err = s.handler.SubmitAction(ctx, req.SessionID, a)
		}
	}
	if err != nil {
		return errorReply(req.RequestID, err)
	}

	reply := &proto.ActionReply{RequestID: req.RequestID, OK: true}
	if reply.Snapshot, err = json.Marshal(snap); err != nil {
		return errorReply(req.RequestID, err)
	}
	return reply
}

func errorReply(requestID string, err error) *proto.ActionReply {
	code := core.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}
	return &proto.ActionReply{RequestID: requestID, ErrorCode: code, Message: err.Error()}
}

func (s *ActionSubscriber) reply(msg *nats.Msg, reply *proto.ActionReply) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("Failed to marshal reply", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("Failed to send reply", "requestId", reply.RequestID, "error", err)
	}
}

// Stop 停止订阅
func (s *ActionSubscriber) Stop() error {
	if s.subscription != nil {
		if err := s.subscription.Unsubscribe(); err != nil {
			s.logger.Error("Failed to unsubscribe", "error", err)
		}
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.wg.Wait()

	s.logger.Info("NATS subscriber stopped")
	return nil
}

// GetBufferUsage 获取缓冲区使用情况
func (s *ActionSubscriber) GetBufferUsage() (current int, capacity int) {
	if s.msgChan == nil {
		return 0, 0
	}
	return len(s.msgChan), cap(s.msgChan)
}
