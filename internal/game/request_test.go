package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/pkg/proto"
)

func TestActionFromRequest(t *testing.T) {
	a, err := ActionFromRequest(&proto.ActionRequest{
		PlayerID:  "a",
		Action:    "draw",
		Pile:      "blood",
		KeepDrawn: true,
	})
	require.NoError(t, err)
	assert.Equal(t, core.ActionDraw, a.Type)
	assert.Equal(t, core.PileBlood, a.Pile)
	assert.True(t, a.KeepDrawn)

	a, err = ActionFromRequest(&proto.ActionRequest{PlayerID: "b", Action: "replace", Index: 1})
	require.NoError(t, err)
	assert.Equal(t, core.ActionReplace, a.Type)
	assert.Equal(t, 1, a.Index)

	_, err = ActionFromRequest(&proto.ActionRequest{Action: "fold"})
	assert.ErrorIs(t, err, core.ErrInvalidParams)
}
