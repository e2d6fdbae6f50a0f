package engine

import (
	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/rank"
)

// PlayerView 对某个观察者可见的玩家信息
type PlayerView struct {
	ID       string            `json:"id"`
	Status   core.PlayerStatus `json:"status"`
	HandSize int               `json:"handSize"`
	// Hand 只对本人或结束后可见
	Hand   []core.Card `json:"hand,omitempty"`
	Locked []string    `json:"locked,omitempty"`
}

// Snapshot 只读状态快照
type Snapshot struct {
	SessionID string            `json:"sessionId"`
	Variant   core.VariantID    `json:"variant"`
	Phase     core.Phase        `json:"phase"`
	Round     int               `json:"round"`
	Turn      *core.TurnKey     `json:"turn,omitempty"`
	Active    string            `json:"active,omitempty"`
	Players   []PlayerView      `json:"players"`
	Dice      *core.DiceState   `json:"dice,omitempty"`
	Target    int               `json:"target"`
	Decks     map[core.Pile]int `json:"decks"`
	CalledBy  string            `json:"calledBy,omitempty"`
	Available []core.ActionType `json:"available,omitempty"`
	Ranking   *rank.Ranking     `json:"ranking,omitempty"`
}

// Snapshot 生成 viewer 视角的快照, viewer 为空时隐藏所有手牌
func (e *Engine) Snapshot(viewer string) *Snapshot {
	s := e.state
	snap := &Snapshot{
		SessionID: s.SessionID,
		Variant:   s.Variant.ID,
		Phase:     s.Phase,
		Round:     roundIndex(s),
		Players:   make([]PlayerView, 0, len(s.Players)),
		Dice:      s.Dice.Clone(),
		Target:    s.Variant.TargetValue(s.Dice),
		Decks:     make(map[core.Pile]int, len(s.Decks)),
		CalledBy:  s.CalledBy,
		Ranking:   s.Ranking,
	}
	if active := s.ActivePlayer(); active != nil {
		key := s.TurnKey()
		snap.Turn = &key
		snap.Active = active.ID
	}
	for pile, d := range s.Decks {
		snap.Decks[pile] = d.Remaining()
	}

	reveal := s.Phase == core.PhaseEnded
	for _, p := range s.Players {
		view := PlayerView{
			ID:       p.ID,
			Status:   p.Status,
			HandSize: len(p.Hand),
		}
		if reveal || p.ID == viewer {
			view.Hand = append([]core.Card(nil), p.Hand...)
		}
		for _, c := range p.Hand {
			if p.Locked[c.ID] {
				view.Locked = append(view.Locked, c.ID)
			}
		}
		snap.Players = append(snap.Players, view)
	}
	if viewer != "" {
		snap.Available = e.Available(viewer)
	}
	return snap
}
