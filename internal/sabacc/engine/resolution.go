package engine

import (
	"errors"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/rank"
)

var (
	// goldDie 金骰六面, 决定目标值
	goldDie = [6]int{-10, 10, -5, 5, 0, 0}
	// silverDie 银骰六面, 决定比较花色
	silverDie = [6]core.Suit{
		core.SuitCircle, core.SuitCircle,
		core.SuitTriangle, core.SuitTriangle,
		core.SuitSquare, core.SuitSquare,
	}
)

// rollShiftDice 掷 Coruscant Shift 的金银骰
func rollShiftDice(s *State) {
	gold := goldDie[s.rng.IntN(6)]
	s.Dice.Gold = &gold
	s.Dice.Silver = silverDie[s.rng.IntN(6)]
}

// rollImpostors 为所有手中的 Impostor 重新掷骰
func rollImpostors(s *State) {
	rolls := make(map[string]core.ImpostorRoll)
	for _, p := range s.Players {
		for _, c := range p.Hand {
			if c.Kind == core.KindImpostor {
				rolls[c.ID] = rollImpostor(s, c)
			}
		}
	}
	if len(rolls) == 0 {
		s.Dice.Impostors = nil
		return
	}
	s.Dice.Impostors = rolls
}

// rollMissingImpostors 只为尚无掷骰结果的 Impostor 掷骰
func rollMissingImpostors(s *State) {
	for _, p := range s.Players {
		for _, c := range p.Hand {
			if c.Kind != core.KindImpostor {
				continue
			}
			if _, ok := s.Dice.Impostors[c.ID]; ok {
				continue
			}
			if s.Dice.Impostors == nil {
				s.Dice.Impostors = make(map[string]core.ImpostorRoll)
			}
			s.Dice.Impostors[c.ID] = rollImpostor(s, c)
		}
	}
}

func rollImpostor(s *State, c core.Card) core.ImpostorRoll {
	sign := c.Sign()
	return core.ImpostorRoll{
		sign * (s.rng.IntN(6) + 1),
		sign * (s.rng.IntN(6) + 1),
	}
}

// rankPlayers 按当前手牌与骰子排名
func (s *State) rankPlayers() *rank.Ranking {
	players := make([]rank.Player, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, rank.Player{
			ID:     p.ID,
			Cards:  p.Hand,
			Junked: p.Status == core.StatusJunked,
		})
	}
	return rank.Rank(players, s.Variant, s.Dice)
}

func (e *Engine) roundResolved() Event {
	s := e.state
	ev := s.newEvent(EventRoundResolved)
	// 中途排名会广播给所有人, 手牌要等整局结束才公开
	ev.Results = s.rankPlayers().WithoutHands()
	return ev
}

// resolveGame 整局结算, 必要时加赛
// 加赛失败时按共享胜利收尾, 会话总会进入 Ended
func (e *Engine) resolveGame() []Event {
	s := e.state
	s.Phase = core.PhaseGameResolution
	s.Active = -1
	rollMissingImpostors(s)

	ranking := s.rankPlayers()
	if s.Options.SuddenDeath && len(ranking.Leaders()) > 1 {
		if err := rank.ResolveSuddenDeath(ranking, s.Variant, s.Dice, e); err != nil {
			if errors.Is(err, core.ErrSuddenDeathExhausted) {
				e.logger.Warn("Sudden death exhausted, declaring shared win", "winners", ranking.Winners)
			} else {
				e.logger.Error("Sudden death failed", "error", err)
			}
		}
	}

	s.Ranking = ranking
	s.Phase = core.PhaseEnded
	if s.Round != nil {
		s.History = append(s.History, s.Round)
	}

	e.logger.Info("Game ended", "winners", ranking.Winners, "sharedWin", ranking.SharedWin)

	ev := s.newEvent(EventGameEnded)
	ev.Results = ranking
	return []Event{ev}
}

// SuddenDeathDraw 实现 rank.Drawer
func (e *Engine) SuddenDeathDraw(playerID string) ([]core.Card, error) {
	s := e.state
	if s.Variant.SuddenDeath == core.SuddenDeathFreshPair {
		sand, err := s.Decks[core.PileSand].Draw()
		if err != nil {
			return nil, err
		}
		blood, err := s.Decks[core.PileBlood].Draw()
		if err != nil {
			discardAll(s, []core.Card{sand})
			return nil, err
		}
		pair := []core.Card{sand, blood}
		for _, c := range pair {
			if c.Kind == core.KindImpostor {
				if s.Dice.Impostors == nil {
					s.Dice.Impostors = make(map[string]core.ImpostorRoll)
				}
				s.Dice.Impostors[c.ID] = rollImpostor(s, c)
			}
		}
		return pair, nil
	}

	d, ok := s.Decks[core.PileMain]
	if !ok {
		return nil, core.ErrDeckExhausted
	}
	c, err := d.Draw()
	if err != nil {
		return nil, err
	}
	return []core.Card{c}, nil
}

// ReturnSuddenDeathCards 实现 rank.Drawer, 未完成的加赛轮次的牌进弃牌堆
func (e *Engine) ReturnSuddenDeathCards(cards []core.Card) {
	discardAll(e.state, cards)
}
