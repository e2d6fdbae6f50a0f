package core

import "math/rand/v2"

// Deck 牌堆, 由单个会话独占
type Deck struct {
	cards     []Card // 末尾为牌顶
	discard   []Card
	rng       *rand.Rand
	reshuffle bool // 牌堆空时是否允许把弃牌堆洗回
}

// NewDeck 用给定的牌创建牌堆 (不洗牌)
func NewDeck(cards []Card, rng *rand.Rand, reshuffle bool) *Deck {
	cp := make([]Card, len(cards))
	copy(cp, cards)
	return &Deck{
		cards:     cp,
		rng:       rng,
		reshuffle: reshuffle,
	}
}

// Shuffle 洗牌 (Fisher-Yates)
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw 摸一张牌
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		if !d.reshuffle || len(d.discard) == 0 {
			return Card{}, ErrDeckExhausted
		}
		d.cards, d.discard = d.discard, nil
		d.Shuffle()
	}
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return top, nil
}

// DrawN 摸多张牌, 失败时已摸出的牌会放回牌顶
func (d *Deck) DrawN(n int) ([]Card, error) {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.Draw()
		if err != nil {
			for j := len(out) - 1; j >= 0; j-- {
				d.cards = append(d.cards, out[j])
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Discard 弃牌
func (d *Deck) Discard(cards ...Card) {
	d.discard = append(d.discard, cards...)
}

// Remaining 剩余牌数
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// DiscardCount 弃牌堆数量
func (d *Deck) DiscardCount() int {
	return len(d.discard)
}

// CanDraw 是否还能摸到牌 (包括洗回弃牌堆)
func (d *Deck) CanDraw() bool {
	return len(d.cards) > 0 || (d.reshuffle && len(d.discard) > 0)
}

// Cards 返回剩余牌的副本 (测试与审计用)
func (d *Deck) Cards() []Card {
	cp := make([]Card, len(d.cards))
	copy(cp, d.cards)
	return cp
}

// TopDiscard 返回弃牌堆顶部的牌
func (d *Deck) TopDiscard() (Card, bool) {
	if len(d.discard) == 0 {
		return Card{}, false
	}
	return d.discard[len(d.discard)-1], true
}
