package special

import (
	"sort"

	"sudooom.sabacc/internal/sabacc/core"
)

// 牌型名称
const (
	PureSabacc     = "Pure Sabacc"
	Sarlacc        = "Sarlacc"
	FullSabacc     = "Full Sabacc"
	Fleet          = "Fleet"
	TwinSun        = "Twin Sun"
	YeeHaa         = "Yee-Haa"
	KesselRun      = "Kessel Run"
	Squadron       = "Squadron"
	BanthasWild    = "Bantha's Wild"
	RuleOfTwo      = "Rule of Two"
	SabaccPair     = "Sabacc Pair"
	PrimeSabacc    = "Prime Sabacc"
	StandardSabacc = "Standard Sabacc"
	CheapSabacc    = "Cheap Sabacc"
	IdiotsArray    = "Idiot's Array"
	NaturalSabacc  = "Natural Sabacc"
	FairyEmpress   = "Fairy Empress"
)

// zeroSum 包装: Corellian Spike 的所有牌型都要求总和为 0
func zeroSum(fn func(p profile, h *core.EffectiveHand) (int, bool)) func(*core.EffectiveHand) (int, bool) {
	return func(h *core.EffectiveHand) (int, bool) {
		if h.Sum != 0 || len(h.Cards) == 0 {
			return 0, false
		}
		return fn(newProfile(h), h)
	}
}

// CorellianSpike Corellian Spike 牌型目录
func CorellianSpike() []core.SpecialHand {
	return []core.SpecialHand{
		{Name: PureSabacc, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			return 0, p.sylops == 2 && len(h.Cards) == 2
		})},
		{Name: Sarlacc, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			return 0, p.sylops >= 2
		})},
		{Name: FullSabacc, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			if p.sylops != 1 || len(p.numeric) != 4 {
				return 0, false
			}
			want := []int{-10, -10, 10, 10}
			got := p.sortedNumeric()
			for i := range want {
				if got[i] != want[i] {
					return 0, false
				}
			}
			return 0, true
		})},
		{Name: Fleet, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			if p.sylops != 1 {
				return 0, false
			}
			quads := p.setsOf(4)
			if len(quads) == 0 {
				return 0, false
			}
			return quads[0], true
		})},
		{Name: TwinSun, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			if p.sylops != 1 {
				return 0, false
			}
			n, low := p.pairs()
			return low, n >= 2
		})},
		{Name: YeeHaa, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			if p.sylops != 1 || len(h.Cards) != 3 {
				return 0, false
			}
			n, low := p.pairs()
			return low, n == 1
		})},
		{Name: KesselRun, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			if p.sylops != 1 {
				return 0, false
			}
			n, low := p.pairs()
			return low, n >= 1
		})},
		{Name: Squadron, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			quads := p.setsOf(4)
			if p.sylops != 0 || len(quads) == 0 {
				return 0, false
			}
			return quads[0], true
		})},
		{Name: BanthasWild, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			trips := p.setsOf(3)
			if p.sylops != 0 || len(trips) == 0 {
				return 0, false
			}
			return trips[0], true
		})},
		{Name: RuleOfTwo, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			n, low := p.pairs()
			return low, p.sylops == 0 && n >= 2
		})},
		{Name: SabaccPair, Match: zeroSum(func(p profile, h *core.EffectiveHand) (int, bool) {
			n, low := p.pairs()
			return low, p.sylops == 0 && n >= 1
		})},
	}
}

// kesselMagnitude 两张牌总和为 0 时返回共同的绝对值
func kesselMagnitude(h *core.EffectiveHand) (int, bool) {
	if len(h.Resolved) != 2 || h.Sum != 0 {
		return 0, false
	}
	return core.Abs(h.Resolved[0]), true
}

// Kessel Kessel 牌型目录
func Kessel() []core.SpecialHand {
	return []core.SpecialHand{
		{Name: PureSabacc, Match: func(h *core.EffectiveHand) (int, bool) {
			return 0, len(h.Cards) == 2 && h.SylopCount == 2
		}},
		{Name: PrimeSabacc, Match: func(h *core.EffectiveHand) (int, bool) {
			mag, ok := kesselMagnitude(h)
			return 0, ok && mag == 1
		}},
		{Name: CheapSabacc, Match: func(h *core.EffectiveHand) (int, bool) {
			mag, ok := kesselMagnitude(h)
			return 0, ok && mag == 6
		}},
		{Name: StandardSabacc, Match: func(h *core.EffectiveHand) (int, bool) {
			mag, ok := kesselMagnitude(h)
			return mag, ok && mag >= 2 && mag <= 5
		}},
	}
}

// Traditional 传统玩法牌型目录
func Traditional() []core.SpecialHand {
	return []core.SpecialHand{
		{Name: IdiotsArray, Match: func(h *core.EffectiveHand) (int, bool) {
			if len(h.Resolved) != 3 {
				return 0, false
			}
			vs := append([]int(nil), h.Resolved...)
			sort.Ints(vs)
			return 0, vs[0] == 0 && vs[1] == 2 && vs[2] == 3
		}},
		{Name: NaturalSabacc, Match: func(h *core.EffectiveHand) (int, bool) {
			return 0, h.Sum == 23 || h.Sum == -23
		}},
		{Name: FairyEmpress, Match: func(h *core.EffectiveHand) (int, bool) {
			queens := 0
			for _, v := range h.Resolved {
				if v == -2 {
					queens++
				}
			}
			return 0, queens == 2 && h.Sum == -22
		}},
	}
}

// CoruscantShift Coruscant Shift 牌型目录
func CoruscantShift() []core.SpecialHand {
	return []core.SpecialHand{
		{Name: PureSabacc, Match: func(h *core.EffectiveHand) (int, bool) {
			return 0, len(h.Cards) == 2 && h.SylopCount == 2
		}},
	}
}
