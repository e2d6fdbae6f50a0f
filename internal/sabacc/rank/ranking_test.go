package rank_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.sabacc/internal/sabacc/core"
	"sudooom.sabacc/internal/sabacc/rank"
	"sudooom.sabacc/internal/sabacc/special"
	"sudooom.sabacc/internal/sabacc/variant"
)

func num(v int, suit core.Suit, copyIdx int) core.Card {
	return core.NewNumeric(v, suit, copyIdx)
}

func TestRank_PureSabaccBeatsNumericZero(t *testing.T) {
	cfg := variant.CorellianSpike()
	players := []rank.Player{
		{ID: "b", Cards: []core.Card{num(4, core.SuitCircle, 0), num(-1, core.SuitSquare, 0), num(-3, core.SuitTriangle, 0)}},
		{ID: "a", Cards: []core.Card{core.NewSylop(core.SuitNone, 0), core.NewSylop(core.SuitNone, 1)}},
	}

	r := rank.Rank(players, cfg, &core.DiceState{})

	require.Len(t, r.Standings, 2)
	assert.Equal(t, []string{"a"}, r.Winners)
	assert.False(t, r.SharedWin)
	assert.Equal(t, special.PureSabacc, r.Standings[0].Special.Name)
	assert.Equal(t, 0, r.Standings[1].Distance)
	assert.Equal(t, 2, r.Standings[1].Place)
}

func TestRank_CoruscantSuitCountBreaksTie(t *testing.T) {
	cfg := variant.CoruscantShift()
	gold := -5
	dice := &core.DiceState{Gold: &gold, Silver: core.SuitTriangle}
	players := []rank.Player{
		{ID: "y", Cards: []core.Card{num(-2, core.SuitTriangle, 0), num(-3, core.SuitCircle, 0)}},
		{ID: "x", Cards: []core.Card{num(-2, core.SuitTriangle, 1), num(-3, core.SuitTriangle, 0)}},
	}

	r := rank.Rank(players, cfg, dice)

	assert.Equal(t, []string{"x"}, r.Winners)
	assert.Equal(t, 0, r.Standings[0].Distance)
	assert.Equal(t, 0, r.Standings[1].Distance)
	assert.Equal(t, 2, r.Standings[0].Hand.SuitMatches)
}

func TestRank_CoruscantChainFallsThrough(t *testing.T) {
	cfg := variant.CoruscantShift()
	gold := 0
	dice := &core.DiceState{Gold: &gold, Silver: core.SuitSquare}

	tests := []struct {
		name   string
		better []core.Card
		worse  []core.Card
	}{
		{
			name:   "higher sum at equal distance",
			better: []core.Card{num(3, core.SuitCircle, 0), num(-1, core.SuitCircle, 0)},
			worse:  []core.Card{num(-3, core.SuitTriangle, 0), num(1, core.SuitTriangle, 0)},
		},
		{
			name:   "higher positive card at equal sum",
			better: []core.Card{num(9, core.SuitCircle, 0), num(-7, core.SuitCircle, 0)},
			worse:  []core.Card{num(5, core.SuitTriangle, 0), num(-3, core.SuitTriangle, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rank.Rank([]rank.Player{
				{ID: "worse", Cards: tt.worse},
				{ID: "better", Cards: tt.better},
			}, cfg, dice)
			assert.Equal(t, []string{"better"}, r.Winners)
		})
	}
}

func TestRank_JunkedPlayersRankLast(t *testing.T) {
	cfg := variant.CorellianSpike()
	players := []rank.Player{
		{ID: "junked", Junked: true, Cards: []core.Card{core.NewSylop(core.SuitNone, 0), core.NewSylop(core.SuitNone, 1)}},
		{ID: "far", Cards: []core.Card{num(9, core.SuitCircle, 0), num(8, core.SuitCircle, 0)}},
	}

	r := rank.Rank(players, cfg, nil)

	assert.Equal(t, []string{"far"}, r.Winners)
	last := r.Standings[1]
	assert.Equal(t, "junked", last.PlayerID)
	assert.Equal(t, 2, last.Place)
}

func TestRank_AllJunkedStillRanked(t *testing.T) {
	cfg := variant.CorellianSpike()
	players := []rank.Player{
		{ID: "p1", Junked: true, Cards: []core.Card{num(9, core.SuitCircle, 0)}},
		{ID: "p2", Junked: true, Cards: []core.Card{num(1, core.SuitCircle, 0)}},
	}

	r := rank.Rank(players, cfg, nil)
	assert.Equal(t, []string{"p2"}, r.Winners)
}

func TestRank_SharedPlaces(t *testing.T) {
	cfg := variant.CorellianSpike()
	players := []rank.Player{
		{ID: "p1", Cards: []core.Card{num(2, core.SuitCircle, 0)}},
		{ID: "p2", Cards: []core.Card{num(-2, core.SuitSquare, 0)}},
		{ID: "p3", Cards: []core.Card{num(5, core.SuitSquare, 0)}},
	}

	r := rank.Rank(players, cfg, nil)

	assert.Equal(t, []string{"p1", "p2"}, r.Winners)
	assert.True(t, r.SharedWin)
	assert.Equal(t, 3, r.Standings[2].Place)
	assert.Len(t, r.Leaders(), 2)

	s, ok := r.Find("p3")
	require.True(t, ok)
	assert.Equal(t, 5, s.Distance)
}

// randomHand 从牌组中不放回地抽取 n 张
func randomHand(rng *rand.Rand, pool []core.Card, n int) ([]core.Card, []core.Card) {
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n], pool[n:]
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func TestCompare_TotalAndTransitive(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for _, id := range variant.IDs() {
		cfg, err := variant.ByID(id)
		require.NoError(t, err)

		for trial := 0; trial < 50; trial++ {
			t.Run(fmt.Sprintf("%s/%d", id, trial), func(t *testing.T) {
				dice := &core.DiceState{Impostors: map[string]core.ImpostorRoll{}}
				gold := []int{-10, -5, 0, 5, 10}[rng.IntN(5)]
				dice.Gold = &gold
				dice.Silver = core.Suit(rng.IntN(3) + 1)

				var pool []core.Card
				for _, cards := range cfg.Decks() {
					pool = append(pool, cards...)
				}
				for _, c := range pool {
					if c.Kind == core.KindImpostor {
						dice.Impostors[c.ID] = core.ImpostorRoll{c.Sign() * (rng.IntN(6) + 1), c.Sign() * (rng.IntN(6) + 1)}
					}
				}

				n := 2 + rng.IntN(7)
				standings := make([]rank.Standing, n)
				for i := range standings {
					var cards []core.Card
					cards, pool = randomHand(rng, pool, 1+rng.IntN(4))
					standings[i] = rank.Evaluate(rank.Player{
						ID:     fmt.Sprintf("p%d", i),
						Cards:  append([]core.Card(nil), cards...),
						Junked: rng.IntN(5) == 0,
					}, cfg, dice)
				}

				for i := range standings {
					a := &standings[i]
					assert.Zero(t, rank.Compare(a, a, cfg.TieBreak))
					for j := range standings {
						b := &standings[j]
						ab := rank.Compare(a, b, cfg.TieBreak)
						assert.Equal(t, sign(ab), -sign(rank.Compare(b, a, cfg.TieBreak)))
						for k := range standings {
							c := &standings[k]
							if ab <= 0 && rank.Compare(b, c, cfg.TieBreak) <= 0 {
								assert.LessOrEqual(t, rank.Compare(a, c, cfg.TieBreak), 0)
							}
						}
					}
				}
			})
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	cfg := variant.Kessel()
	imp := core.NewImpostor(core.SuitSand, 0)
	dice := &core.DiceState{Impostors: map[string]core.ImpostorRoll{imp.ID: {2, 6}}}
	players := []rank.Player{
		{ID: "p1", Cards: []core.Card{imp, num(-2, core.SuitBlood, 0)}},
		{ID: "p2", Cards: []core.Card{num(3, core.SuitSand, 0), num(-3, core.SuitBlood, 0)}},
		{ID: "p3", Cards: []core.Card{num(6, core.SuitSand, 0), num(-1, core.SuitBlood, 0)}},
	}

	first := rank.Rank(players, cfg, dice)
	second := rank.Rank(players, cfg, dice)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"p1"}, first.Winners, "standard sabacc of 2 beats 3")
}

func TestRank_KesselCheapBeatsStandard(t *testing.T) {
	cfg := variant.Kessel()
	r := rank.Rank([]rank.Player{
		{ID: "standard", Cards: []core.Card{num(3, core.SuitSand, 0), num(-3, core.SuitBlood, 0)}},
		{ID: "cheap", Cards: []core.Card{num(6, core.SuitSand, 0), num(-6, core.SuitBlood, 0)}},
	}, cfg, &core.DiceState{})

	assert.Equal(t, []string{"cheap"}, r.Winners)
	assert.False(t, r.SharedWin)
	cheap, _ := r.Find("cheap")
	require.NotNil(t, cheap.Special)
	assert.Equal(t, "Cheap Sabacc", cheap.Special.Name)
}

type scriptedDrawer struct {
	draws    map[string][][]core.Card
	err      error
	limit    int
	calls    int
	returned []core.Card
}

func (d *scriptedDrawer) ReturnSuddenDeathCards(cards []core.Card) {
	d.returned = append(d.returned, cards...)
}

func (d *scriptedDrawer) SuddenDeathDraw(playerID string) ([]core.Card, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.calls++
	if d.limit > 0 && d.calls > d.limit {
		return nil, core.ErrDeckExhausted
	}
	queue := d.draws[playerID]
	if len(queue) == 0 {
		return nil, core.ErrDeckExhausted
	}
	d.draws[playerID] = queue[1:]
	return queue[0], nil
}

func tiedSpike() (*core.VariantConfig, *rank.Ranking) {
	cfg := variant.CorellianSpike()
	r := rank.Rank([]rank.Player{
		{ID: "a", Cards: []core.Card{num(3, core.SuitCircle, 0), num(-1, core.SuitCircle, 0)}},
		{ID: "b", Cards: []core.Card{num(1, core.SuitCircle, 0), num(1, core.SuitSquare, 0)}},
		{ID: "c", Cards: []core.Card{num(9, core.SuitSquare, 0)}},
	}, cfg, nil)
	return cfg, r
}

func TestResolveSuddenDeath_SingleWinner(t *testing.T) {
	cfg, r := tiedSpike()
	require.True(t, r.SharedWin)

	d := &scriptedDrawer{draws: map[string][][]core.Card{
		"a": {{num(-1, core.SuitSquare, 0)}, {num(-1, core.SuitTriangle, 0)}},
		"b": {{num(-1, core.SuitTriangle, 1)}, {num(4, core.SuitTriangle, 0)}},
	}}

	err := rank.ResolveSuddenDeath(r, cfg, nil, d)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, r.Winners)
	assert.False(t, r.SharedWin)

	a, _ := r.Find("a")
	b, _ := r.Find("b")
	c, _ := r.Find("c")
	assert.Equal(t, []int{1, 0}, a.SuddenDeath)
	assert.Equal(t, []int{1, 5}, b.SuddenDeath)
	assert.Equal(t, 1, a.Place)
	assert.Equal(t, 2, b.Place)
	assert.Equal(t, 3, c.Place)
	assert.Empty(t, c.SuddenDeath)
}

func TestResolveSuddenDeath_ExhaustedIsSharedWin(t *testing.T) {
	cfg, r := tiedSpike()

	err := rank.ResolveSuddenDeath(r, cfg, nil, &scriptedDrawer{err: errors.New("empty")})

	assert.ErrorIs(t, err, core.ErrSuddenDeathExhausted)
	assert.True(t, r.SharedWin)
	assert.ElementsMatch(t, []string{"a", "b"}, r.Winners)
}

func TestResolveSuddenDeath_InterruptedRoundReturnsCards(t *testing.T) {
	cfg, r := tiedSpike()
	d := &scriptedDrawer{limit: 1, draws: map[string][][]core.Card{
		"a": {{num(2, core.SuitTriangle, 0)}},
		"b": {{num(2, core.SuitTriangle, 1)}},
	}}

	err := rank.ResolveSuddenDeath(r, cfg, nil, d)

	assert.ErrorIs(t, err, core.ErrSuddenDeathExhausted)
	require.Len(t, d.returned, 1)
	assert.Equal(t, 2, d.returned[0].Value)
	for _, id := range []string{"a", "b"} {
		s, _ := r.Find(id)
		assert.Empty(t, s.SuddenCards)
		assert.Empty(t, s.SuddenDeath)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, r.Winners)
}

func TestResolveSuddenDeath_NoTie(t *testing.T) {
	cfg := variant.CorellianSpike()
	r := rank.Rank([]rank.Player{
		{ID: "a", Cards: []core.Card{num(1, core.SuitCircle, 0)}},
		{ID: "b", Cards: []core.Card{num(2, core.SuitCircle, 0)}},
	}, cfg, nil)

	err := rank.ResolveSuddenDeath(r, cfg, nil, &scriptedDrawer{err: errors.New("must not draw")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, r.Winners)
}

func TestResolveSuddenDeath_KesselFreshPair(t *testing.T) {
	cfg := variant.Kessel()
	r := rank.Rank([]rank.Player{
		{ID: "a", Cards: []core.Card{num(4, core.SuitSand, 0), num(-1, core.SuitBlood, 0)}},
		{ID: "b", Cards: []core.Card{num(1, core.SuitSand, 0), num(-4, core.SuitBlood, 0)}},
	}, cfg, nil)
	require.True(t, r.SharedWin)

	d := &scriptedDrawer{draws: map[string][][]core.Card{
		"a": {{num(5, core.SuitSand, 1), num(-6, core.SuitBlood, 1)}},
		"b": {{num(2, core.SuitSand, 1), num(-2, core.SuitBlood, 1)}},
	}}

	require.NoError(t, rank.ResolveSuddenDeath(r, cfg, nil, d))
	assert.Equal(t, []string{"b"}, r.Winners)

	b, _ := r.Find("b")
	assert.Len(t, b.SuddenCards, 2)
}
