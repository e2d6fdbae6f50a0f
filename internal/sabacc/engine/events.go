package engine

import (
	"time"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/rank"
)

// EventType 事件类型
type EventType string

const (
	EventTurnStarted   EventType = "turn_started"
	EventTurnTimedOut  EventType = "turn_timed_out"
	EventRoundResolved EventType = "round_resolved"
	EventGameEnded     EventType = "game_ended"
)

// Event 状态变化事件, 交给外部渲染
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"sessionId"`
	Variant   core.VariantID `json:"variant"`
	Round     int            `json:"round"`
	Turn      *core.TurnKey  `json:"turn,omitempty"`
	PlayerID  string         `json:"playerId,omitempty"`
	// Action 超时时代为执行的动作
	Action  *core.ActionType `json:"action,omitempty"`
	Results *rank.Ranking    `json:"results,omitempty"`
	At      time.Time        `json:"at"`
}

func (s *State) newEvent(t EventType) Event {
	ev := Event{
		Type:      t,
		SessionID: s.SessionID,
		Variant:   s.Variant.ID,
		At:        time.Now(),
	}
	if s.Round != nil {
		ev.Round = s.Round.Index
	}
	return ev
}

// turnStarted 当前回合开始事件
func (s *State) turnStarted() Event {
	ev := s.newEvent(EventTurnStarted)
	key := s.TurnKey()
	ev.Turn = &key
	ev.PlayerID = s.Players[s.Active].ID
	return ev
}
