package rank

import (
	"sort"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/hand"
	"sudooom.sabacc/internal/sabacc/special"
)

// Player 参与排名的玩家
type Player struct {
	ID     string
	Cards  []core.Card
	Junked bool
}

// Standing 排名中的一项
type Standing struct {
	Place    int                 `json:"place"`
	PlayerID string              `json:"playerId"`
	Junked   bool                `json:"junked"`
	Hand     *core.EffectiveHand `json:"hand,omitempty"`
	Special  *core.SpecialMatch  `json:"special,omitempty"`
	Distance int                 `json:"distance"`
	// SuddenDeath 每轮加赛后的距离
	SuddenDeath []int       `json:"suddenDeath,omitempty"`
	SuddenCards []core.Card `json:"suddenCards,omitempty"`

	allJunked bool
}

// Ranking 最终排名, 按名次从好到差
type Ranking struct {
	Standings []Standing `json:"standings"`
	Winners   []string   `json:"winners"`
	SharedWin bool       `json:"sharedWin"`
}

// Rank 对玩家排名
//
// 纯函数: 相同输入得到相同输出。同名次玩家保持传入顺序。
func Rank(players []Player, cfg *core.VariantConfig, dice *core.DiceState) *Ranking {
	allJunked := len(players) > 0
	for _, p := range players {
		if !p.Junked {
			allJunked = false
			break
		}
	}

	standings := make([]Standing, len(players))
	for i, p := range players {
		standings[i] = Evaluate(p, cfg, dice)
		standings[i].allJunked = allJunked
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return Compare(&standings[i], &standings[j], cfg.TieBreak) < 0
	})

	r := &Ranking{Standings: standings}
	r.assignPlaces(cfg.TieBreak)
	return r
}

// Evaluate 计算单个玩家的比较要素
func Evaluate(p Player, cfg *core.VariantConfig, dice *core.DiceState) Standing {
	ev := hand.MustEvaluate(p.Cards, cfg, dice)
	return Standing{
		PlayerID: p.ID,
		Junked:   p.Junked,
		Hand:     ev,
		Special:  special.Detect(ev, cfg.Specials),
		Distance: cfg.Distance(ev.Sum, dice),
	}
}

// Compare 比较两名玩家, a 排在前面返回负数
//
// 依次比较: 弃局, 特殊牌型优先级, 同牌型 kicker, 与目标的距离, 玩法的比较链, 加赛结果。
// 每一步都是键值比较, 因此结果是全序且可传递。
func Compare(a, b *Standing, chain []core.TieBreaker) int {
	if a.Junked != b.Junked {
		if a.Junked {
			return 1
		}
		return -1
	}
	if a.Junked && !a.allJunked {
		// 弃局玩家之间不再比较
		return 0
	}

	switch {
	case a.Special != nil && b.Special == nil:
		return -1
	case a.Special == nil && b.Special != nil:
		return 1
	case a.Special != nil && b.Special != nil:
		if a.Special.Precedence != b.Special.Precedence {
			return b.Special.Precedence - a.Special.Precedence
		}
		if a.Special.Kicker != b.Special.Kicker {
			return a.Special.Kicker - b.Special.Kicker
		}
	}

	if a.Distance != b.Distance {
		return a.Distance - b.Distance
	}

	for _, tb := range chain {
		if r := tb(a.Hand, b.Hand); r != 0 {
			return -r
		}
	}

	// 加赛: 坚持轮数多者在前, 同轮淘汰按该轮距离
	if len(a.SuddenDeath) != len(b.SuddenDeath) {
		return len(b.SuddenDeath) - len(a.SuddenDeath)
	}
	if n := len(a.SuddenDeath); n > 0 {
		return a.SuddenDeath[n-1] - b.SuddenDeath[n-1]
	}
	return 0
}

// assignPlaces 按比较结果分配名次, 并列共享名次
func (r *Ranking) assignPlaces(chain []core.TieBreaker) {
	for i := range r.Standings {
		if i > 0 && Compare(&r.Standings[i-1], &r.Standings[i], chain) == 0 {
			r.Standings[i].Place = r.Standings[i-1].Place
		} else {
			r.Standings[i].Place = i + 1
		}
	}
	r.refreshWinners()
}

func (r *Ranking) refreshWinners() {
	r.Winners = r.Winners[:0]
	for _, s := range r.Standings {
		if s.Place == 1 {
			r.Winners = append(r.Winners, s.PlayerID)
		}
	}
	r.SharedWin = len(r.Winners) > 1
}

// Leaders 并列第一的玩家
func (r *Ranking) Leaders() []*Standing {
	var out []*Standing
	for i := range r.Standings {
		if r.Standings[i].Place == 1 {
			out = append(out, &r.Standings[i])
		}
	}
	return out
}

// Find 按玩家 ID 查找
func (r *Ranking) Find(playerID string) (*Standing, bool) {
	for i := range r.Standings {
		if r.Standings[i].PlayerID == playerID {
			return &r.Standings[i], true
		}
	}
	return nil, false
}

// WithoutHands 不含手牌的副本, 用于对局中途公布的排名
func (r *Ranking) WithoutHands() *Ranking {
	out := &Ranking{
		Standings: make([]Standing, len(r.Standings)),
		Winners:   append([]string(nil), r.Winners...),
		SharedWin: r.SharedWin,
	}
	for i, s := range r.Standings {
		s.Hand = nil
		s.SuddenCards = nil
		if s.Special != nil {
			m := *s.Special
			s.Special = &m
		}
		out.Standings[i] = s
	}
	return out
}
