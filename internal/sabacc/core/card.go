package core

import (
	"fmt"
	"strconv"
)

// CardKind 牌的种类
type CardKind int8

const (
	KindNumeric  CardKind = iota // 普通数值牌
	KindSylop                    // Sylop, 镜像另一张牌
	KindImpostor                 // Impostor, 由骰子决定数值
	KindNamed                    // 传统玩法的命名特殊牌
)

func (k CardKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindSylop:
		return "sylop"
	case KindImpostor:
		return "impostor"
	case KindNamed:
		return "named"
	default:
		return "unknown"
	}
}

func (k CardKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Suit 花色
type Suit int8

const (
	SuitNone Suit = iota
	SuitCircle
	SuitTriangle
	SuitSquare
	SuitSand
	SuitBlood
	SuitFlasks
	SuitSabers
	SuitStaves
	SuitCoins
)

var suitSymbols = map[Suit]string{
	SuitNone:     "",
	SuitCircle:   "●",
	SuitTriangle: "▲",
	SuitSquare:   "■",
	SuitSand:     "sand",
	SuitBlood:    "blood",
	SuitFlasks:   "flasks",
	SuitSabers:   "sabers",
	SuitStaves:   "staves",
	SuitCoins:    "coins",
}

func (s Suit) String() string {
	if sym, ok := suitSymbols[s]; ok {
		return sym
	}
	return "?"
}

func (s Suit) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Card 一张牌, 创建后不可修改
type Card struct {
	ID    string   `json:"id"`
	Kind  CardKind `json:"kind"`
	Value int      `json:"value"`
	Suit  Suit     `json:"suit"`
	Name  string   `json:"name,omitempty"`
}

// NewNumeric 创建数值牌
// copyIdx 用于区分同值同花色的多张牌, 保证 ID 唯一
func NewNumeric(value int, suit Suit, copyIdx int) Card {
	return Card{
		ID:    fmt.Sprintf("%s%+d#%d", suitPrefix(suit), value, copyIdx),
		Kind:  KindNumeric,
		Value: value,
		Suit:  suit,
	}
}

// NewSylop 创建 Sylop (Kessel 中 suit 表示所属牌堆)
func NewSylop(suit Suit, copyIdx int) Card {
	return Card{
		ID:   fmt.Sprintf("%ssylop#%d", suitPrefix(suit), copyIdx),
		Kind: KindSylop,
		Suit: suit,
		Name: "Sylop",
	}
}

// NewImpostor 创建 Impostor
func NewImpostor(suit Suit, copyIdx int) Card {
	return Card{
		ID:   fmt.Sprintf("%simpostor#%d", suitPrefix(suit), copyIdx),
		Kind: KindImpostor,
		Suit: suit,
		Name: "Impostor",
	}
}

// NewNamed 创建命名特殊牌
func NewNamed(name string, value int, copyIdx int) Card {
	return Card{
		ID:    name + "#" + strconv.Itoa(copyIdx),
		Kind:  KindNamed,
		Value: value,
		Name:  name,
	}
}

func suitPrefix(s Suit) string {
	if s == SuitNone {
		return ""
	}
	return s.String() + ":"
}

// Sign 返回牌堆符号: Blood 为 -1, 其余为 +1
func (c Card) Sign() int {
	if c.Suit == SuitBlood {
		return -1
	}
	return 1
}

// IsSpecial 数值是否在结算时才确定
func (c Card) IsSpecial() bool {
	return c.Kind == KindSylop || c.Kind == KindImpostor
}

func (c Card) String() string {
	switch c.Kind {
	case KindSylop, KindImpostor:
		if c.Suit == SuitNone {
			return c.Name
		}
		return c.Suit.String() + " " + c.Name
	case KindNamed:
		return fmt.Sprintf("%s (%d)", c.Name, c.Value)
	default:
		if c.Suit == SuitNone {
			return fmt.Sprintf("%+d", c.Value)
		}
		return fmt.Sprintf("%+d%s", c.Value, c.Suit)
	}
}

// Pile 会话内牌堆名称
type Pile string

const (
	PileMain  Pile = "main"
	PileSand  Pile = "sand"
	PileBlood Pile = "blood"
)

// PileOf 返回牌所属的牌堆
func PileOf(c Card) Pile {
	switch c.Suit {
	case SuitSand:
		return PileSand
	case SuitBlood:
		return PileBlood
	default:
		return PileMain
	}
}
