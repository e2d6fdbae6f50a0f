package game

import (
	"time"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/engine"
)

// HouseRules 单个会话的房规
type HouseRules struct {
	// TurnTimeout 回合超时, 0 表示不限时
	TurnTimeout time.Duration `json:"turnTimeout"`
	// TimeoutAction 超时默认动作, 只能是 stand 或 junk
	TimeoutAction core.ActionType `json:"timeoutAction"`
	// DisconnectAction 断线时的处理方式, 只能是 stand 或 junk
	DisconnectAction core.ActionType `json:"disconnectAction"`
	Options          engine.Options  `json:"options"`
}

// DefaultHouseRules 默认房规: 30 秒超时自动停牌, 断线视为停牌
func DefaultHouseRules() HouseRules {
	return HouseRules{
		TurnTimeout:      30 * time.Second,
		TimeoutAction:    core.ActionStand,
		DisconnectAction: core.ActionStand,
		Options:          engine.DefaultOptions(),
	}
}

// Validate 校验房规
func (r HouseRules) Validate() error {
	if r.TurnTimeout < 0 {
		return core.ErrInvalidParams.WithMessage("turn timeout must not be negative")
	}
	if !defaultable(r.TimeoutAction) {
		return core.ErrInvalidParams.WithMessage("timeout action must be stand or junk")
	}
	if !defaultable(r.DisconnectAction) {
		return core.ErrInvalidParams.WithMessage("disconnect action must be stand or junk")
	}
	return nil
}

func defaultable(a core.ActionType) bool {
	return a == core.ActionStand || a == core.ActionJunk
}
