package rank

import "sudooom.sabacc/internal/sabacc/core"

// SuitCount 骰子选中花色的张数多者胜
func SuitCount(a, b *core.EffectiveHand) int {
	return a.SuitMatches - b.SuitMatches
}

// HigherSum 和值大者胜
func HigherSum(a, b *core.EffectiveHand) int {
	return a.Sum - b.Sum
}

// HighestPositiveCard 最大正数牌大者胜
func HighestPositiveCard(a, b *core.EffectiveHand) int {
	return a.MaxPositive() - b.MaxPositive()
}

// CoruscantChain Coruscant Shift 的比较链
func CoruscantChain() []core.TieBreaker {
	return []core.TieBreaker{SuitCount, HigherSum, HighestPositiveCard}
}
