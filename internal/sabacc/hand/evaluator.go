package hand

import (
	"sudooom.sabacc/internal/sabacc/core"
)

// maxImpostorCombos Impostor 组合枚举上限, 超过后退回取第一颗骰子
const maxImpostorCombos = 1 << 10

// Evaluate 计算手牌的有效值
//
// 解析顺序: 先 Impostor (按骰子), 再 Sylop, 最后求和。
// 手牌总会被完整返回; 当存在无法解析的特殊牌时, 该牌按 0 计,
// 同时返回 ErrUnresolvedSpecialCard 供调用方记录。
func Evaluate(cards []core.Card, cfg *core.VariantConfig, dice *core.DiceState) (*core.EffectiveHand, error) {
	ev := &core.EffectiveHand{
		Cards:    append([]core.Card(nil), cards...),
		Resolved: make([]int, len(cards)),
	}

	var impostors []int
	for i, c := range cards {
		switch c.Kind {
		case core.KindNumeric, core.KindNamed:
			ev.Resolved[i] = c.Value
		case core.KindSylop:
			ev.SylopCount++
		case core.KindImpostor:
			impostors = append(impostors, i)
		}
	}

	unresolved := resolveImpostors(ev, impostors, cfg, dice)
	if !resolveSylops(ev, cfg.Sylop) {
		unresolved = true
	}

	ev.Sum = sum(ev.Resolved)
	if dice != nil && dice.Silver != core.SuitNone {
		for _, c := range cards {
			if c.Suit == dice.Silver || c.Kind == core.KindSylop {
				ev.SuitMatches++
			}
		}
	}

	if unresolved {
		ev.Unresolved = true
		return ev, core.ErrUnresolvedSpecialCard.WithContext("cards", len(cards))
	}
	return ev, nil
}

// MustEvaluate 忽略 UnresolvedSpecialCard, 按 0 处理
func MustEvaluate(cards []core.Card, cfg *core.VariantConfig, dice *core.DiceState) *core.EffectiveHand {
	ev, _ := Evaluate(cards, cfg, dice)
	return ev
}

// resolveImpostors 写入 Impostor 的取值, 缺少掷骰结果时返回 true
func resolveImpostors(ev *core.EffectiveHand, idx []int, cfg *core.VariantConfig, dice *core.DiceState) bool {
	if len(idx) == 0 {
		return false
	}

	unresolved := false
	options := make([]core.ImpostorRoll, 0, len(idx))
	pending := make([]int, 0, len(idx))
	for _, i := range idx {
		roll, ok := lookupRoll(dice, ev.Cards[i].ID)
		if !ok {
			unresolved = true
			ev.Resolved[i] = 0
			continue
		}
		options = append(options, roll)
		pending = append(pending, i)
	}

	combos := 1 << len(pending)
	if cfg.Impostor == core.ImpostorFirst || combos > maxImpostorCombos {
		for k, i := range pending {
			ev.Resolved[i] = options[k][0]
		}
		return unresolved
	}

	// 枚举每颗 Impostor 选哪颗骰子, 取距离最小者, 其次取绝对值和较小者
	bestMask, bestDist, bestMag := 0, -1, 0
	for mask := 0; mask < combos; mask++ {
		mag := 0
		for k, i := range pending {
			v := options[k][(mask>>k)&1]
			ev.Resolved[i] = v
			mag += core.Abs(v)
		}
		probe := &core.EffectiveHand{Cards: ev.Cards, Resolved: append([]int(nil), ev.Resolved...)}
		resolveSylops(probe, cfg.Sylop)
		dist := cfg.Distance(sum(probe.Resolved), dice)
		if bestDist < 0 || dist < bestDist || (dist == bestDist && mag < bestMag) {
			bestMask, bestDist, bestMag = mask, dist, mag
		}
	}
	for k, i := range pending {
		ev.Resolved[i] = options[k][(bestMask>>k)&1]
	}
	return unresolved
}

func lookupRoll(dice *core.DiceState, cardID string) (core.ImpostorRoll, bool) {
	if dice == nil || dice.Impostors == nil {
		return core.ImpostorRoll{}, false
	}
	roll, ok := dice.Impostors[cardID]
	return roll, ok
}

// resolveSylops 写入 Sylop 的取值, 单张 Sylop 无可镜像的牌时返回 false
func resolveSylops(ev *core.EffectiveHand, mode core.SylopMode) bool {
	dominant, found := 0, false
	for i, c := range ev.Cards {
		if c.Kind == core.KindSylop {
			continue
		}
		v := ev.Resolved[i]
		if !found || core.Abs(v) > core.Abs(dominant) || (core.Abs(v) == core.Abs(dominant) && v > dominant) {
			dominant, found = v, true
		}
	}

	ok := true
	for i, c := range ev.Cards {
		if c.Kind != core.KindSylop {
			continue
		}
		switch {
		case !found:
			// 全是 Sylop: 两张及以上为 0, 单张在任何玩法下都记为未解析
			ev.Resolved[i] = 0
			if len(ev.Cards) == 1 {
				ok = false
			}
		case mode == core.SylopMirrorPartner:
			ev.Resolved[i] = core.Abs(dominant) * c.Sign()
		case mode == core.SylopMirrorDominant:
			ev.Resolved[i] = dominant
		default:
			ev.Resolved[i] = 0
		}
	}
	return ok
}

func sum(vs []int) int {
	total := 0
	for _, v := range vs {
		total += v
	}
	return total
}
