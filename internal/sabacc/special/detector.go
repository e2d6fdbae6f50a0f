package special

import (
	"sort"

	"sudooom.sabacc/internal/sabacc/core"
)

// Detect 返回优先级最高的特殊牌型, 没有则返回 nil
// 目录按优先级从高到低排列, 第一个匹配即为结果
func Detect(h *core.EffectiveHand, catalogue []core.SpecialHand) *core.SpecialMatch {
	if h == nil {
		return nil
	}
	for i, sh := range catalogue {
		if kicker, ok := sh.Match(h); ok {
			return &core.SpecialMatch{
				Name:       sh.Name,
				Precedence: len(catalogue) - i,
				Kicker:     kicker,
			}
		}
	}
	return nil
}

// profile 手牌的结构统计, 只看结算后的值
type profile struct {
	sylops  int
	numeric []int       // 非 Sylop 牌的结算值
	groups  map[int]int // 绝对值 -> 张数
	sum     int
}

func newProfile(h *core.EffectiveHand) profile {
	p := profile{groups: make(map[int]int), sum: h.Sum}
	for i, c := range h.Cards {
		if c.Kind == core.KindSylop {
			p.sylops++
			continue
		}
		v := h.Resolved[i]
		p.numeric = append(p.numeric, v)
		p.groups[core.Abs(v)]++
	}
	return p
}

// setsOf 返回张数不少于 n 的绝对值, 升序
func (p profile) setsOf(n int) []int {
	var out []int
	for mag, cnt := range p.groups {
		if cnt >= n {
			out = append(out, mag)
		}
	}
	sort.Ints(out)
	return out
}

// pairs 可拆出的对子数量及其中最小的绝对值
func (p profile) pairs() (count int, lowest int) {
	lowest = -1
	mags := make([]int, 0, len(p.groups))
	for mag := range p.groups {
		mags = append(mags, mag)
	}
	sort.Ints(mags)
	for _, mag := range mags {
		n := p.groups[mag] / 2
		if n > 0 && lowest < 0 {
			lowest = mag
		}
		count += n
	}
	return count, lowest
}

func (p profile) sortedNumeric() []int {
	out := append([]int(nil), p.numeric...)
	sort.Ints(out)
	return out
}
