package proto

import "encoding/json"

// ============== 上行消息 (Access -> Engine) ==============

// ActionRequest 玩家动作请求
type ActionRequest struct {
	RequestID string `json:"requestId"`
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
	// Action draw / discard / replace / stand / junk / call_end, 另有 disconnect
	Action    string `json:"action"`
	Pile      string `json:"pile,omitempty"`
	Index     int    `json:"index,omitempty"`
	Indices   []int  `json:"indices,omitempty"`
	KeepDrawn bool   `json:"keepDrawn,omitempty"`
}

// ActionDisconnect 断线通知使用的动作名
const ActionDisconnect = "disconnect"

// ============== 下行消息 (Engine -> Access) ==============

// ActionReply 动作请求的应答
type ActionReply struct {
	RequestID string          `json:"requestId"`
	OK        bool            `json:"ok"`
	ErrorCode string          `json:"errorCode,omitempty"`
	Message   string          `json:"message,omitempty"`
	Snapshot  json.RawMessage `json:"snapshot,omitempty"`
}

// EventMessage 会话事件广播
type EventMessage struct {
	SessionID string          `json:"sessionId"`
	Type      string          `json:"type"`
	Event     json.RawMessage `json:"event"`
	Snapshot  json.RawMessage `json:"snapshot,omitempty"`
	Timestamp int64           `json:"timestamp"`
}
