package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.sabacc/internal/sabacc/core"
)

func TestDecks_Composition(t *testing.T) {
	tests := []struct {
		id    core.VariantID
		piles map[core.Pile]int
	}{
		{core.VariantCorellianSpike, map[core.Pile]int{core.PileMain: 62}},
		{core.VariantCoruscantShift, map[core.Pile]int{core.PileMain: 62}},
		{core.VariantKessel, map[core.Pile]int{core.PileSand: 22, core.PileBlood: 22}},
		{core.VariantTraditional, map[core.Pile]int{core.PileMain: 76}},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			cfg, err := ByID(tt.id)
			require.NoError(t, err)

			decks := cfg.Decks()
			require.Len(t, decks, len(tt.piles))

			ids := make(map[string]bool)
			for pile, want := range tt.piles {
				assert.Len(t, decks[pile], want, "pile %s", pile)
				for _, c := range decks[pile] {
					assert.False(t, ids[c.ID], "duplicate card id %s", c.ID)
					ids[c.ID] = true
				}
			}
		})
	}
}

func TestDecks_SpikeValues(t *testing.T) {
	cards := spikeDeck()
	sylops, total := 0, 0
	for _, c := range cards {
		if c.Kind == core.KindSylop {
			sylops++
			continue
		}
		assert.NotZero(t, c.Value)
		assert.LessOrEqual(t, core.Abs(c.Value), 10)
		total += c.Value
	}
	assert.Equal(t, 2, sylops)
	assert.Zero(t, total, "positive and negative cards balance out")
}

func TestDecks_KesselSigns(t *testing.T) {
	for _, c := range kesselHalf(core.SuitSand) {
		if c.Kind == core.KindNumeric {
			assert.Positive(t, c.Value)
		}
		assert.Equal(t, core.PileSand, core.PileOf(c))
	}
	impostors := 0
	for _, c := range kesselHalf(core.SuitBlood) {
		if c.Kind == core.KindNumeric {
			assert.Negative(t, c.Value)
		}
		if c.Kind == core.KindImpostor {
			impostors++
		}
		assert.Equal(t, core.PileBlood, core.PileOf(c))
	}
	assert.Equal(t, 3, impostors)
}

func TestDecks_TraditionalNamed(t *testing.T) {
	named := 0
	for _, c := range traditionalDeck() {
		if c.Kind == core.KindNamed {
			named++
			assert.LessOrEqual(t, c.Value, 0)
		}
	}
	assert.Equal(t, 16, named)
}

func TestByID_Unknown(t *testing.T) {
	_, err := ByID("pazaak")
	assert.ErrorIs(t, err, core.ErrInvalidVariant)
	assert.Len(t, IDs(), 4)
}

func TestVariants_StartingActions(t *testing.T) {
	kessel := Kessel()
	assert.False(t, kessel.Allows(core.ActionReplace))
	assert.True(t, kessel.Allows(core.ActionDraw))

	trad := Traditional()
	assert.True(t, trad.Allows(core.ActionCallEnd))
	assert.Equal(t, 0, trad.Rounds)

	shift := CoruscantShift()
	assert.False(t, shift.Allows(core.ActionDraw))
	assert.Len(t, shift.TieBreak, 3)
}
