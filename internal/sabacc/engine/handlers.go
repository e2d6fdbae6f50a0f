package engine

import (
	"sudooom.sabacc/internal/sabacc/core"
)

// ActionHandler 玩法相关的动作处理器
//
// Validate 必须覆盖所有失败情况, Execute 只在校验通过后调用且不会失败,
// 这样被拒绝的动作不会修改状态。
type ActionHandler interface {
	// Validate 校验摸牌/弃牌/换牌动作
	Validate(s *State, p *Player, a core.Action) error
	// Execute 执行动作
	Execute(s *State, p *Player, a core.Action)
}

// handlerFor 按玩法选择处理器
func handlerFor(id core.VariantID) ActionHandler {
	switch id {
	case core.VariantKessel:
		return kesselHandler{}
	case core.VariantCoruscantShift:
		return coruscantHandler{}
	default:
		return freeHandHandler{}
	}
}

func checkIndex(p *Player, idx int) error {
	if idx < 0 || idx >= len(p.Hand) {
		return core.ErrInvalidParams.WithMessage("card index %d out of range", idx).WithContext("handSize", len(p.Hand))
	}
	return nil
}

func drawable(s *State, pile core.Pile) (*core.Deck, error) {
	d, ok := s.deck(pile)
	if !ok {
		return nil, core.ErrInvalidParams.WithMessage("unknown pile %q", pile)
	}
	if !d.CanDraw() {
		return nil, core.ErrDeckExhausted.WithContext("pile", string(pile))
	}
	return d, nil
}

func removeAt(cards []core.Card, idx int) []core.Card {
	out := make([]core.Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	return append(out, cards[idx+1:]...)
}

// freeHandHandler Corellian Spike 与传统玩法: 手牌数量只受弃牌/换牌约束
type freeHandHandler struct{}

func (freeHandHandler) Validate(s *State, p *Player, a core.Action) error {
	switch a.Type {
	case core.ActionDraw:
		_, err := drawable(s, a.Pile)
		return err
	case core.ActionDiscard:
		if !s.Options.AllowDiscard {
			return core.ErrIllegalAction.WithMessage("discard is disabled by house rules")
		}
		if len(p.Hand) <= 1 {
			return core.ErrIllegalAction.WithMessage("cannot discard the last card")
		}
		return checkIndex(p, a.Index)
	case core.ActionReplace:
		if err := checkIndex(p, a.Index); err != nil {
			return err
		}
		_, err := drawable(s, a.Pile)
		return err
	}
	return core.ErrIllegalAction
}

func (freeHandHandler) Execute(s *State, p *Player, a core.Action) {
	switch a.Type {
	case core.ActionDraw:
		d, _ := s.deck(a.Pile)
		c, _ := d.Draw()
		p.Hand = append(p.Hand, c)
	case core.ActionDiscard:
		d, _ := s.deck(core.PileMain)
		d.Discard(p.Hand[a.Index])
		p.Hand = removeAt(p.Hand, a.Index)
	case core.ActionReplace:
		// 先摸后弃, 避免洗回时摸到刚弃的牌
		d, _ := s.deck(a.Pile)
		c, _ := d.Draw()
		d.Discard(p.Hand[a.Index])
		hand := append([]core.Card(nil), p.Hand...)
		hand[a.Index] = c
		p.Hand = hand
	}
}

// kesselHandler Kessel: 摸牌后立即决定保留哪一张, 手牌始终是一张 Sand 一张 Blood
type kesselHandler struct{}

func (kesselHandler) Validate(s *State, p *Player, a core.Action) error {
	if a.Type != core.ActionDraw {
		return core.ErrIllegalAction
	}
	if a.Pile != core.PileSand && a.Pile != core.PileBlood {
		return core.ErrInvalidParams.WithMessage("kessel draws need pile sand or blood")
	}
	if kesselSlot(p, a.Pile) < 0 {
		return core.ErrInvalidState.WithMessage("hand has no %s card", a.Pile)
	}
	_, err := drawable(s, a.Pile)
	return err
}

func (kesselHandler) Execute(s *State, p *Player, a core.Action) {
	d, _ := s.deck(a.Pile)
	c, _ := d.Draw()
	if !a.KeepDrawn {
		d.Discard(c)
		return
	}
	slot := kesselSlot(p, a.Pile)
	d.Discard(p.Hand[slot])
	hand := append([]core.Card(nil), p.Hand...)
	hand[slot] = c
	p.Hand = hand
}

func kesselSlot(p *Player, pile core.Pile) int {
	for i, c := range p.Hand {
		if core.PileOf(c) == pile {
			return i
		}
	}
	return -1
}

// coruscantHandler Coruscant Shift: 每回合保留非空子集, 已锁定的牌不能丢弃
type coruscantHandler struct{}

func (coruscantHandler) Validate(s *State, p *Player, a core.Action) error {
	if a.Type != core.ActionDiscard {
		return core.ErrIllegalAction
	}
	if len(a.Indices) == 0 {
		return core.ErrInvalidParams.WithMessage("must keep at least one card")
	}
	keep := make(map[int]bool, len(a.Indices))
	for _, idx := range a.Indices {
		if err := checkIndex(p, idx); err != nil {
			return err
		}
		if keep[idx] {
			return core.ErrInvalidParams.WithMessage("duplicate card index %d", idx)
		}
		keep[idx] = true
	}
	for i, c := range p.Hand {
		if p.Locked[c.ID] && !keep[i] {
			return core.ErrIllegalAction.WithMessage("card %s was kept in an earlier round and is locked", c)
		}
	}
	return nil
}

func (coruscantHandler) Execute(s *State, p *Player, a core.Action) {
	keep := make(map[int]bool, len(a.Indices))
	for _, idx := range a.Indices {
		keep[idx] = true
	}
	d, _ := s.deck(core.PileMain)
	hand := make([]core.Card, 0, len(a.Indices))
	for i, c := range p.Hand {
		if keep[i] {
			hand = append(hand, c)
		} else {
			d.Discard(c)
		}
	}
	p.Hand = hand
}
