package special

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.sabacc/internal/sabacc/core"
)

// resolved 用结算值构造手牌, 前 sylops 张为取 0 的 Sylop
func resolved(sylops int, values ...int) *core.EffectiveHand {
	h := &core.EffectiveHand{}
	for i := 0; i < sylops; i++ {
		h.Cards = append(h.Cards, core.NewSylop(core.SuitNone, i))
		h.Resolved = append(h.Resolved, 0)
		h.SylopCount++
	}
	for i, v := range values {
		h.Cards = append(h.Cards, core.NewNumeric(v, core.SuitCircle, i))
		h.Resolved = append(h.Resolved, v)
		h.Sum += v
	}
	return h
}

func TestDetect_CorellianSpike(t *testing.T) {
	cat := CorellianSpike()
	tests := []struct {
		name   string
		hand   *core.EffectiveHand
		want   string
		kicker int
	}{
		{"pure sabacc", resolved(2), PureSabacc, 0},
		{"sarlacc", resolved(2, 4, -4), Sarlacc, 0},
		{"full sabacc", resolved(1, 10, 10, -10, -10), FullSabacc, 0},
		{"fleet", resolved(1, 3, 3, -3, -3), Fleet, 3},
		{"fleet in a long hand", resolved(1, 3, 3, -3, -3, 5, -5), Fleet, 3},
		{"twin sun", resolved(1, 2, -2, 5, -5), TwinSun, 2},
		{"yee-haa", resolved(1, 6, -6), YeeHaa, 6},
		{"two pairs outrank kessel run", resolved(1, 4, -4, 1, -1), TwinSun, 1},
		{"kessel run", resolved(1, 5, -5, 3, -1, -2), KesselRun, 5},
		{"squadron", resolved(0, 2, 2, -2, -2), Squadron, 2},
		{"bantha's wild", resolved(0, 4, 4, 4, -12), BanthasWild, 4},
		{"rule of two", resolved(0, 3, -3, 7, -7), RuleOfTwo, 3},
		{"sabacc pair", resolved(0, 5, -5), SabaccPair, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Detect(tt.hand, cat)
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.Name)
			assert.Equal(t, tt.kicker, m.Kicker)
		})
	}
}

func TestDetect_SpikeRequiresZero(t *testing.T) {
	assert.Nil(t, Detect(resolved(0, 5, 5), CorellianSpike()))
	assert.Nil(t, Detect(resolved(1, 4, -3), CorellianSpike()))
	assert.Nil(t, Detect(resolved(0, 1, -3, 2), CorellianSpike()), "plain zero is not a named hand")
}

func TestDetect_PrecedenceFollowsCatalogueOrder(t *testing.T) {
	cat := CorellianSpike()
	pure := Detect(resolved(2), cat)
	pair := Detect(resolved(0, 1, -1), cat)
	require.NotNil(t, pure)
	require.NotNil(t, pair)
	assert.Greater(t, pure.Precedence, pair.Precedence)
	assert.Equal(t, len(cat), pure.Precedence)
	assert.Equal(t, 1, pair.Precedence)
}

func TestDetect_Kessel(t *testing.T) {
	cat := Kessel()

	m := Detect(resolved(2), cat)
	require.NotNil(t, m)
	assert.Equal(t, PureSabacc, m.Name)

	m = Detect(resolved(0, 1, -1), cat)
	require.NotNil(t, m)
	assert.Equal(t, PrimeSabacc, m.Name)

	low := Detect(resolved(0, 2, -2), cat)
	high := Detect(resolved(0, 5, -5), cat)
	require.NotNil(t, low)
	require.NotNil(t, high)
	assert.Equal(t, StandardSabacc, low.Name)
	assert.Less(t, low.Kicker, high.Kicker)

	m = Detect(resolved(0, 6, -6), cat)
	require.NotNil(t, m)
	assert.Equal(t, CheapSabacc, m.Name)
	assert.Greater(t, m.Precedence, low.Precedence, "cheap sabacc outranks every standard sabacc")
	assert.Greater(t, m.Precedence, high.Precedence)

	assert.Nil(t, Detect(resolved(0, 4, -2), cat))
}

func TestDetect_Traditional(t *testing.T) {
	cat := Traditional()

	m := Detect(resolved(0, 0, 2, 3), cat)
	require.NotNil(t, m)
	assert.Equal(t, IdiotsArray, m.Name)

	m = Detect(resolved(0, 15, 8), cat)
	require.NotNil(t, m)
	assert.Equal(t, NaturalSabacc, m.Name)

	m = Detect(resolved(0, -17, -6), cat)
	require.NotNil(t, m)
	assert.Equal(t, NaturalSabacc, m.Name)

	m = Detect(resolved(0, -2, -2, -18), cat)
	require.NotNil(t, m)
	assert.Equal(t, FairyEmpress, m.Name)

	assert.Nil(t, Detect(resolved(0, 10, 12), cat))
}

func TestDetect_NilHand(t *testing.T) {
	assert.Nil(t, Detect(nil, CorellianSpike()))
}
