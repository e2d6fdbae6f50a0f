package game

import (
	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/pkg/proto"
)

// ActionFromRequest 把线上请求转换成引擎动作
func ActionFromRequest(req *proto.ActionRequest) (core.Action, error) {
	t, err := core.ParseActionType(req.Action)
	if err != nil {
		return core.Action{}, err
	}
	return core.Action{
		PlayerID:  req.PlayerID,
		Type:      t,
		Pile:      core.Pile(req.Pile),
		Index:     req.Index,
		Indices:   req.Indices,
		KeepDrawn: req.KeepDrawn,
	}, nil
}
