package variant

import "sudooom.sabacc/internal/sabacc/core"

// NamedCard 传统玩法的命名特殊牌
type NamedCard struct {
	Name  string
	Value int
}

// TraditionalNamed 传统玩法的 8 种命名牌, 每种两张
var TraditionalNamed = []NamedCard{
	{Name: "The Idiot", Value: 0},
	{Name: "Queen of Air and Darkness", Value: -2},
	{Name: "Endurance", Value: -8},
	{Name: "Balance", Value: -11},
	{Name: "Demise", Value: -13},
	{Name: "Moderation", Value: -14},
	{Name: "The Evil One", Value: -15},
	{Name: "The Star", Value: -17},
}

// spikeDeck Corellian Spike / Coruscant Shift: 三种花色 ±1..±10, 加两张 Sylop
func spikeDeck() []core.Card {
	cards := make([]core.Card, 0, 62)
	for _, suit := range []core.Suit{core.SuitCircle, core.SuitTriangle, core.SuitSquare} {
		for v := 1; v <= 10; v++ {
			cards = append(cards,
				core.NewNumeric(v, suit, 0),
				core.NewNumeric(-v, suit, 0),
			)
		}
	}
	cards = append(cards, core.NewSylop(core.SuitNone, 0), core.NewSylop(core.SuitNone, 1))
	return cards
}

// kesselHalf Kessel 单个牌堆: 1..6 各三张, 3 张 Impostor, 1 张 Sylop
func kesselHalf(suit core.Suit) []core.Card {
	sign := 1
	if suit == core.SuitBlood {
		sign = -1
	}
	cards := make([]core.Card, 0, 22)
	for v := 1; v <= 6; v++ {
		for i := 0; i < 3; i++ {
			cards = append(cards, core.NewNumeric(sign*v, suit, i))
		}
	}
	for i := 0; i < 3; i++ {
		cards = append(cards, core.NewImpostor(suit, i))
	}
	cards = append(cards, core.NewSylop(suit, 0))
	return cards
}

// traditionalDeck 四种花色 1..15, 加 16 张命名牌
func traditionalDeck() []core.Card {
	cards := make([]core.Card, 0, 76)
	for _, suit := range []core.Suit{core.SuitFlasks, core.SuitSabers, core.SuitStaves, core.SuitCoins} {
		for v := 1; v <= 15; v++ {
			cards = append(cards, core.NewNumeric(v, suit, 0))
		}
	}
	for _, nc := range TraditionalNamed {
		for i := 0; i < 2; i++ {
			cards = append(cards, core.NewNamed(nc.Name, nc.Value, i))
		}
	}
	return cards
}

func mainOnly(build func() []core.Card) func() map[core.Pile][]core.Card {
	return func() map[core.Pile][]core.Card {
		return map[core.Pile][]core.Card{core.PileMain: build()}
	}
}

func kesselDecks() map[core.Pile][]core.Card {
	return map[core.Pile][]core.Card{
		core.PileSand:  kesselHalf(core.SuitSand),
		core.PileBlood: kesselHalf(core.SuitBlood),
	}
}
