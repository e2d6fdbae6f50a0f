package core

import (
	"fmt"
	"strings"
)

// ActionType 玩家动作类型
type ActionType int8

const (
	ActionDraw    ActionType = iota // 摸牌
	ActionDiscard                   // 弃牌 (Coruscant Shift 为保留子集)
	ActionReplace                   // 换牌
	ActionStand                     // 停牌
	ActionJunk                      // 弃局
	ActionCallEnd                   // Alderaan 叫停 (仅传统玩法)
)

var actionNames = map[ActionType]string{
	ActionDraw:    "draw",
	ActionDiscard: "discard",
	ActionReplace: "replace",
	ActionStand:   "stand",
	ActionJunk:    "junk",
	ActionCallEnd: "call_end",
}

func (a ActionType) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

func (a ActionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ActionType) UnmarshalText(b []byte) error {
	parsed, err := ParseActionType(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseActionType 解析动作名称
func ParseActionType(s string) (ActionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, n := range actionNames {
		if n == s {
			return t, nil
		}
	}
	if s == "alderaan" {
		return ActionCallEnd, nil
	}
	return 0, ErrInvalidParams.WithMessage("unknown action %q", s)
}

// Action 玩家动作
type Action struct {
	PlayerID string     `json:"playerId"`
	Type     ActionType `json:"type"`
	// Pile 摸牌的牌堆, Kessel 必填
	Pile Pile `json:"pile,omitempty"`
	// Index 手牌下标, 用于 Discard/Replace
	Index int `json:"index,omitempty"`
	// Indices Coruscant Shift 要保留的手牌下标
	Indices []int `json:"indices,omitempty"`
	// KeepDrawn Kessel 摸牌后是否保留新牌
	KeepDrawn bool `json:"keepDrawn,omitempty"`
}

// Phase 游戏阶段
type Phase int8

const (
	PhaseAwaitingDeal Phase = iota
	PhaseTurnActive
	PhaseRoundResolution
	PhaseGameResolution
	PhaseEnded
)

var phaseNames = map[Phase]string{
	PhaseAwaitingDeal:    "awaiting_deal",
	PhaseTurnActive:      "turn_active",
	PhaseRoundResolution: "round_resolution",
	PhaseGameResolution:  "game_resolution",
	PhaseEnded:           "ended",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// PlayerStatus 玩家状态
type PlayerStatus int8

const (
	StatusActive PlayerStatus = iota
	StatusStood
	StatusJunked
	StatusDisconnected
)

var statusNames = map[PlayerStatus]string{
	StatusActive:       "active",
	StatusStood:        "stood",
	StatusJunked:       "junked",
	StatusDisconnected: "disconnected",
}

func (s PlayerStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s PlayerStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TurnKey 回合标识, 超时任务据此判断是否过期
type TurnKey struct {
	Round int `json:"round"`
	Index int `json:"index"`
	Seq   int `json:"seq"`
}

func (k TurnKey) String() string {
	return fmt.Sprintf("%d:%d:%d", k.Round, k.Index, k.Seq)
}

// ImpostorRoll 一张 Impostor 的两颗骰子 (已带符号)
type ImpostorRoll [2]int

// DiceState 公共骰子状态
type DiceState struct {
	// Gold 金骰, 决定 Coruscant Shift 的目标值
	Gold *int `json:"gold,omitempty"`
	// Silver 银骰, 决定 Coruscant Shift 的比较花色
	Silver Suit `json:"silver,omitempty"`
	// Impostors 按牌 ID 记录 Impostor 的掷骰结果
	Impostors map[string]ImpostorRoll `json:"impostors,omitempty"`
}

// Clone 深拷贝
func (d *DiceState) Clone() *DiceState {
	if d == nil {
		return nil
	}
	cp := &DiceState{Silver: d.Silver}
	if d.Gold != nil {
		g := *d.Gold
		cp.Gold = &g
	}
	if d.Impostors != nil {
		cp.Impostors = make(map[string]ImpostorRoll, len(d.Impostors))
		for k, v := range d.Impostors {
			cp.Impostors[k] = v
		}
	}
	return cp
}

// EffectiveHand 结算后的手牌
type EffectiveHand struct {
	Cards       []Card `json:"cards"`
	Resolved    []int  `json:"resolved"`
	Sum         int    `json:"sum"`
	SylopCount  int    `json:"sylopCount"`
	SuitMatches int    `json:"suitMatches"`
	// Unresolved 存在无法解析的特殊牌, 已按 0 处理
	Unresolved bool `json:"unresolved,omitempty"`
}

// MaxPositive 最大的正数牌值, 没有则为 0
func (h *EffectiveHand) MaxPositive() int {
	best := 0
	for _, v := range h.Resolved {
		if v > best {
			best = v
		}
	}
	return best
}

// SpecialMatch 特殊牌型匹配结果
type SpecialMatch struct {
	Name       string `json:"name"`
	Precedence int    `json:"precedence"` // 越大越好
	Kicker     int    `json:"kicker"`     // 同名牌型比较, 越小越好
}
