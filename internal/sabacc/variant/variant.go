package variant

import (
	"sort"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/rank"
	"sudooom.sabacc/internal/sabacc/special"
)

var registry = map[core.VariantID]*core.VariantConfig{
	core.VariantCorellianSpike: CorellianSpike(),
	core.VariantKessel:         Kessel(),
	core.VariantCoruscantShift: CoruscantShift(),
	core.VariantTraditional:    Traditional(),
}

// ByID 按标识获取玩法配置
func ByID(id core.VariantID) (*core.VariantConfig, error) {
	cfg, ok := registry[id]
	if !ok {
		return nil, core.ErrInvalidVariant.WithContext("variant", string(id))
	}
	return cfg, nil
}

// IDs 所有玩法标识
func IDs() []core.VariantID {
	ids := make([]core.VariantID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CorellianSpike 3 轮, 目标 0, 2 张起手
func CorellianSpike() *core.VariantConfig {
	return &core.VariantConfig{
		ID:       core.VariantCorellianSpike,
		Name:     "Corellian Spike",
		Decks:    mainOnly(spikeDeck),
		Deal:     map[core.Pile]int{core.PileMain: 2},
		Rounds:   3,
		Target:   core.TargetZero,
		Sylop:    core.SylopZero,
		Actions:  []core.ActionType{core.ActionDraw, core.ActionDiscard, core.ActionReplace, core.ActionStand, core.ActionJunk},
		Specials: special.CorellianSpike(),
	}
}

// Kessel 3 轮, 目标 0, Sand/Blood 各一张
func Kessel() *core.VariantConfig {
	return &core.VariantConfig{
		ID:          core.VariantKessel,
		Name:        "Kessel",
		Decks:       kesselDecks,
		Deal:        map[core.Pile]int{core.PileSand: 1, core.PileBlood: 1},
		Rounds:      3,
		Target:      core.TargetZero,
		Sylop:       core.SylopMirrorPartner,
		Impostor:    core.ImpostorClosest,
		SuddenDeath: core.SuddenDeathFreshPair,
		Actions:     []core.ActionType{core.ActionDraw, core.ActionStand, core.ActionJunk},
		Specials:    special.Kessel(),
	}
}

// CoruscantShift 2 轮, 金骰定目标, 银骰定花色, 5 张起手
func CoruscantShift() *core.VariantConfig {
	return &core.VariantConfig{
		ID:        core.VariantCoruscantShift,
		Name:      "Coruscant Shift",
		Decks:     mainOnly(spikeDeck),
		Deal:      map[core.Pile]int{core.PileMain: 5},
		HandLimit: 5,
		Rounds:    2,
		Target:    core.TargetDice,
		Sylop:     core.SylopMirrorDominant,
		Actions:   []core.ActionType{core.ActionDiscard, core.ActionStand, core.ActionJunk},
		Specials:  special.CoruscantShift(),
		TieBreak:  rank.CoruscantChain(),
	}
}

// Traditional 不限轮数直到 Alderaan, 目标 ±23
func Traditional() *core.VariantConfig {
	return &core.VariantConfig{
		ID:       core.VariantTraditional,
		Name:     "Traditional",
		Decks:    mainOnly(traditionalDeck),
		Deal:     map[core.Pile]int{core.PileMain: 2},
		Rounds:   0,
		Target:   core.TargetPlusMinus23,
		Sylop:    core.SylopZero,
		Actions:  []core.ActionType{core.ActionDraw, core.ActionReplace, core.ActionStand, core.ActionJunk, core.ActionCallEnd},
		Specials: special.Traditional(),
	}
}
