package rank

import (
	"sort"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/hand"
)

// maxSuddenDeathRounds 加赛轮数上限, 到达后按平局处理
const maxSuddenDeathRounds = 32

// Drawer 加赛摸牌, 由持有牌堆的一方实现
type Drawer interface {
	// SuddenDeathDraw 按玩法规则为玩家摸加赛牌
	SuddenDeathDraw(playerID string) ([]core.Card, error)
	// ReturnSuddenDeathCards 收回中断的加赛轮次里已摸出的牌
	ReturnSuddenDeathCards(cards []core.Card)
}

// ResolveSuddenDeath 对并列第一的玩家进行加赛
//
// 每轮每名并列玩家摸牌后重新计算距离, 距离最小者继续, 直到只剩一人。
// 牌堆耗尽时返回 ErrSuddenDeathExhausted, 排名保持为共享胜利。
func ResolveSuddenDeath(r *Ranking, cfg *core.VariantConfig, dice *core.DiceState, d Drawer) error {
	tied := r.Leaders()
	if len(tied) < 2 || tied[0].Junked {
		return nil
	}

	var failure error
	for round := 0; len(tied) > 1; round++ {
		if round >= maxSuddenDeathRounds {
			failure = core.ErrSuddenDeathExhausted.WithContext("rounds", round)
			break
		}

		draws := make(map[string][]core.Card, len(tied))
		for _, s := range tied {
			cards, err := d.SuddenDeathDraw(s.PlayerID)
			if err != nil {
				failure = core.ErrSuddenDeathExhausted.WithCause(err)
				break
			}
			draws[s.PlayerID] = cards
		}
		if failure != nil {
			// 本轮作废, 已摸的牌不计入任何人的加赛
			var partial []core.Card
			for _, s := range tied {
				partial = append(partial, draws[s.PlayerID]...)
			}
			if len(partial) > 0 {
				d.ReturnSuddenDeathCards(partial)
			}
			break
		}

		best := -1
		for _, s := range tied {
			dist := suddenDistance(s, draws[s.PlayerID], cfg, dice)
			s.SuddenDeath = append(s.SuddenDeath, dist)
			if best < 0 || dist < best {
				best = dist
			}
		}

		next := tied[:0]
		for _, s := range tied {
			if s.SuddenDeath[len(s.SuddenDeath)-1] == best {
				next = append(next, s)
			}
		}
		tied = next
	}

	// 失败时仍并列的玩家加赛记录相同, 重新排序后共享名次
	sort.SliceStable(r.Standings, func(i, j int) bool {
		return Compare(&r.Standings[i], &r.Standings[j], cfg.TieBreak) < 0
	})
	r.assignPlaces(cfg.TieBreak)
	return failure
}

// suddenDistance 记录加赛牌并返回新的距离
func suddenDistance(s *Standing, drawn []core.Card, cfg *core.VariantConfig, dice *core.DiceState) int {
	var cards []core.Card
	switch cfg.SuddenDeath {
	case core.SuddenDeathFreshPair:
		s.SuddenCards = append([]core.Card(nil), drawn...)
		cards = drawn
	default:
		s.SuddenCards = append(s.SuddenCards, drawn...)
		cards = append(append([]core.Card(nil), s.Hand.Cards...), s.SuddenCards...)
	}
	ev := hand.MustEvaluate(cards, cfg, dice)
	return cfg.Distance(ev.Sum, dice)
}
