package engine

import (
	"math/rand/v2"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/rank"
)

const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Player 玩家
type Player struct {
	ID     string
	Hand   []core.Card
	Status core.PlayerStatus
	// Locked Coruscant Shift 中之前轮次保留下来的牌
	Locked map[string]bool
}

// InContention 是否仍参与胜负 (未弃局且未断线)
func (p *Player) InContention() bool {
	return p.Status == core.StatusActive || p.Status == core.StatusStood
}

// ActionRecord 一次已执行的动作
type ActionRecord struct {
	Turn     core.TurnKey    `json:"turn"`
	PlayerID string          `json:"playerId"`
	Type     core.ActionType `json:"type"`
}

// Round 一轮
type Round struct {
	Index   int            `json:"index"`
	Actions []ActionRecord `json:"actions"`
}

// State 游戏状态, 只能在持有会话锁时访问
type State struct {
	SessionID string
	Variant   *core.VariantConfig
	Options   Options

	Decks   map[core.Pile]*core.Deck
	Players []*Player // 座位顺序即出手顺序
	Phase   core.Phase
	Dice    *core.DiceState

	Round   *Round
	History []*Round

	Active int // 当前出手玩家下标
	Seq    int // 全局回合序号

	// CalledBy 发起 Alderaan 的玩家, finalLap 为仍需出手的玩家
	CalledBy string
	finalLap map[string]bool

	Ranking *rank.Ranking

	rng *rand.Rand
}

// GetPlayer 按 ID 获取玩家
func (s *State) GetPlayer(id string) (*Player, int) {
	for i, p := range s.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// ActivePlayer 当前出手玩家
func (s *State) ActivePlayer() *Player {
	if s.Phase != core.PhaseTurnActive || s.Active < 0 || s.Active >= len(s.Players) {
		return nil
	}
	return s.Players[s.Active]
}

// TurnKey 当前回合标识
func (s *State) TurnKey() core.TurnKey {
	return core.TurnKey{Round: s.Round.Index, Index: s.Active, Seq: s.Seq}
}

// contenders 仍参与胜负的人数
func (s *State) contenders() int {
	n := 0
	for _, p := range s.Players {
		if p.InContention() {
			n++
		}
	}
	return n
}

// deck 取牌堆, 空字符串视为主牌堆
func (s *State) deck(p core.Pile) (*core.Deck, bool) {
	if p == "" {
		p = core.PileMain
	}
	d, ok := s.Decks[p]
	return d, ok
}
