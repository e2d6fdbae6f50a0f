package engine

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"sudooom.sabacc/internal/sabacc/core"
)

// Engine 回合状态机
// 不是并发安全的, 由会话层串行调用
type Engine struct {
	state   *State
	handler ActionHandler
	logger  *slog.Logger
}

// New 创建一局游戏, 此时尚未发牌
func New(sessionID string, cfg *core.VariantConfig, playerIDs []string, opts Options) (*Engine, error) {
	if cfg == nil {
		return nil, core.ErrInvalidVariant
	}
	if len(playerIDs) < MinPlayers || len(playerIDs) > MaxPlayers {
		return nil, core.ErrInvalidPlayerCount.WithContext("players", len(playerIDs))
	}

	seen := make(map[string]bool, len(playerIDs))
	players := make([]*Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" || seen[id] {
			return nil, core.ErrInvalidParams.WithMessage("player ids must be unique and non-empty")
		}
		seen[id] = true
		players = append(players, &Player{ID: id, Locked: make(map[string]bool)})
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	decks := make(map[core.Pile]*core.Deck)
	for pile, cards := range cfg.Decks() {
		decks[pile] = core.NewDeck(cards, rng, opts.Reshuffle)
	}

	return &Engine{
		state: &State{
			SessionID: sessionID,
			Variant:   cfg,
			Options:   opts,
			Decks:     decks,
			Players:   players,
			Phase:     core.PhaseAwaitingDeal,
			Dice:      &core.DiceState{},
			Active:    -1,
			rng:       rng,
		},
		handler: handlerFor(cfg.ID),
		logger:  slog.Default().With("component", "engine", "sessionId", sessionID),
	}, nil
}

// State 返回内部状态 (调用方需持有会话锁)
func (e *Engine) State() *State {
	return e.state
}

// IsGameOver 游戏是否已结束
func (e *Engine) IsGameOver() bool {
	return e.state.Phase == core.PhaseEnded
}

// Start 洗牌, 发牌, 掷骰, 开始第一轮
func (e *Engine) Start() ([]Event, error) {
	s := e.state
	if s.Phase != core.PhaseAwaitingDeal {
		return nil, core.ErrInvalidState.WithMessage("game already started")
	}

	for _, pile := range s.Variant.Piles() {
		s.Decks[pile].Shuffle()
	}
	for _, p := range s.Players {
		for _, pile := range s.Variant.Piles() {
			cards, err := s.Decks[pile].DrawN(s.Variant.Deal[pile])
			if err != nil {
				return nil, err
			}
			p.Hand = append(p.Hand, cards...)
		}
	}

	if s.Variant.Target == core.TargetDice {
		rollShiftDice(s)
	}
	rollImpostors(s)

	e.logger.Info("Game started",
		"variant", s.Variant.ID,
		"players", len(s.Players),
		"target", s.Variant.TargetValue(s.Dice))

	return e.beginRound(1), nil
}

// Available 玩家当前可用的动作
func (e *Engine) Available(playerID string) []core.ActionType {
	s := e.state
	active := s.ActivePlayer()
	if active == nil || active.ID != playerID {
		return nil
	}
	var out []core.ActionType
	for _, t := range s.Variant.Actions {
		if e.validate(active, core.Action{PlayerID: playerID, Type: t, Pile: defaultPile(s), Indices: allIndices(active)}) == nil {
			out = append(out, t)
		}
	}
	return out
}

// Apply 校验并执行一个动作, 被拒绝的动作不会修改状态
func (e *Engine) Apply(a core.Action) ([]Event, error) {
	s := e.state
	switch s.Phase {
	case core.PhaseTurnActive:
	case core.PhaseEnded, core.PhaseGameResolution:
		return nil, core.ErrGameOver
	default:
		return nil, core.ErrInvalidState.WithContext("phase", s.Phase.String())
	}

	p, _ := s.GetPlayer(a.PlayerID)
	if p == nil {
		return nil, core.ErrInvalidParams.WithMessage("unknown player %q", a.PlayerID)
	}
	if s.ActivePlayer() != p {
		return nil, core.ErrNotYourTurn.WithContext("active", s.ActivePlayer().ID)
	}
	if err := e.validate(p, a); err != nil {
		return nil, err
	}

	turn := s.TurnKey()
	e.execute(p, a)
	s.Round.Actions = append(s.Round.Actions, ActionRecord{Turn: turn, PlayerID: p.ID, Type: a.Type})

	e.logger.Debug("Action applied",
		"playerId", p.ID,
		"action", a.Type.String(),
		"turn", turn.String(),
		"handSize", len(p.Hand))

	return e.advance(), nil
}

// Timeout 回合超时, 代当前玩家执行默认动作
// key 与当前回合不一致 (计时器过期) 时返回 ErrInvalidState, 状态不变
func (e *Engine) Timeout(key core.TurnKey, action core.ActionType) ([]Event, error) {
	s := e.state
	active := s.ActivePlayer()
	if active == nil || s.TurnKey() != key {
		return nil, core.ErrInvalidState.WithMessage("stale turn %s", key)
	}
	if action != core.ActionStand && action != core.ActionJunk {
		return nil, core.ErrInvalidParams.WithMessage("timeout action must be stand or junk")
	}

	ev := s.newEvent(EventTurnTimedOut)
	ev.Turn = &key
	ev.PlayerID = active.ID
	ev.Action = &action

	events, err := e.Apply(core.Action{PlayerID: active.ID, Type: action})
	if err != nil {
		return nil, err
	}
	e.logger.Info("Turn timed out", "playerId", active.ID, "turn", key.String(), "action", action.String())
	return append([]Event{ev}, events...), nil
}

// Disconnect 玩家断线, 按策略视为停牌或弃局并移出出手顺序
func (e *Engine) Disconnect(playerID string, policy core.ActionType) ([]Event, error) {
	s := e.state
	if s.Phase == core.PhaseEnded || s.Phase == core.PhaseGameResolution {
		return nil, core.ErrGameOver
	}
	if policy != core.ActionStand && policy != core.ActionJunk {
		return nil, core.ErrInvalidParams.WithMessage("disconnect policy must be stand or junk")
	}
	p, idx := s.GetPlayer(playerID)
	if p == nil {
		return nil, core.ErrInvalidParams.WithMessage("unknown player %q", playerID)
	}
	if !p.InContention() {
		return nil, nil
	}

	wasActive := s.Phase == core.PhaseTurnActive && s.Active == idx
	if policy == core.ActionJunk {
		junk(s, p)
	} else {
		p.Status = core.StatusDisconnected
	}
	delete(s.finalLap, p.ID)

	e.logger.Info("Player disconnected", "playerId", playerID, "policy", policy.String())

	if s.Phase != core.PhaseTurnActive {
		return nil, nil
	}
	if wasActive {
		s.Round.Actions = append(s.Round.Actions, ActionRecord{Turn: s.TurnKey(), PlayerID: p.ID, Type: policy})
		return e.advance(), nil
	}
	if s.contenders() < MinPlayers {
		return e.resolveGame(), nil
	}
	return nil, nil
}

func (e *Engine) validate(p *Player, a core.Action) error {
	s := e.state
	if !s.Variant.Allows(a.Type) {
		return core.ErrIllegalAction.WithMessage("%s is not part of %s", a.Type, s.Variant.Name)
	}
	switch a.Type {
	case core.ActionStand, core.ActionJunk:
		return nil
	case core.ActionCallEnd:
		if s.CalledBy != "" {
			return core.ErrIllegalAction.WithMessage("alderaan was already called by %s", s.CalledBy)
		}
		return nil
	default:
		return e.handler.Validate(s, p, a)
	}
}

func (e *Engine) execute(p *Player, a core.Action) {
	s := e.state
	switch a.Type {
	case core.ActionStand:
		p.Status = core.StatusStood
	case core.ActionJunk:
		junk(s, p)
	case core.ActionCallEnd:
		s.CalledBy = p.ID
		s.finalLap = make(map[string]bool)
		for _, other := range s.Players {
			if other.ID != p.ID && other.InContention() {
				s.finalLap[other.ID] = true
				other.Status = core.StatusActive
			}
		}
		e.logger.Info("Alderaan called", "playerId", p.ID, "finalTurns", len(s.finalLap))
	default:
		e.handler.Execute(s, p, a)
	}
}

// advance 切换到下一位玩家, 必要时结束本轮或整局
func (e *Engine) advance() []Event {
	s := e.state
	if s.contenders() < MinPlayers {
		return e.resolveGame()
	}

	if s.CalledBy != "" {
		delete(s.finalLap, s.Players[s.Active].ID)
		if len(s.finalLap) == 0 {
			return e.resolveGame()
		}
		// 最后一圈按座位顺序循环, 不开启新的一轮
		n := len(s.Players)
		for step := 1; step <= n; step++ {
			idx := (s.Active + step) % n
			if s.finalLap[s.Players[idx].ID] {
				return e.startTurn(idx)
			}
		}
		return e.resolveGame()
	}

	if next := e.nextInRound(s.Active + 1); next >= 0 {
		return e.startTurn(next)
	}
	return e.endRound()
}

// nextInRound 本轮中从 from 开始的下一位可出手玩家
func (e *Engine) nextInRound(from int) int {
	for i := from; i < len(e.state.Players); i++ {
		if e.state.Players[i].Status == core.StatusActive {
			return i
		}
	}
	return -1
}

func (e *Engine) startTurn(idx int) []Event {
	s := e.state
	s.Phase = core.PhaseTurnActive
	s.Active = idx
	s.Seq++
	return []Event{s.turnStarted()}
}

// beginRound 开始新的一轮
func (e *Engine) beginRound(index int) []Event {
	s := e.state
	if s.Round != nil {
		s.History = append(s.History, s.Round)
	}
	s.Round = &Round{Index: index}
	for _, p := range s.Players {
		if p.Status == core.StatusStood {
			p.Status = core.StatusActive
		}
	}

	first := e.nextInRound(0)
	if first < 0 {
		return e.resolveGame()
	}
	return e.startTurn(first)
}

// endRound 本轮结束: 发布中间排名, 进入下一轮或整局结算
func (e *Engine) endRound() []Event {
	s := e.state
	s.Phase = core.PhaseRoundResolution
	rollImpostors(s)

	events := []Event{e.roundResolved()}

	if s.Variant.Rounds > 0 && s.Round.Index >= s.Variant.Rounds {
		return append(events, e.resolveGame()...)
	}

	if s.Variant.HandLimit > 0 {
		e.topUp()
	}
	return append(events, e.beginRound(s.Round.Index+1)...)
}

// topUp Coruscant Shift 轮间: 锁定保留的牌并补到上限
func (e *Engine) topUp() {
	s := e.state
	d := s.Decks[core.PileMain]
	for _, p := range s.Players {
		if !p.InContention() {
			continue
		}
		for _, c := range p.Hand {
			p.Locked[c.ID] = true
		}
		for len(p.Hand) < s.Variant.HandLimit {
			c, err := d.Draw()
			if err != nil {
				e.logger.Warn("Deck exhausted while topping up", "playerId", p.ID, "handSize", len(p.Hand))
				break
			}
			p.Hand = append(p.Hand, c)
		}
	}
}

// junk 弃牌出局, 手牌进弃牌堆, 冻结的副本留作排名
func junk(s *State, p *Player) {
	p.Status = core.StatusJunked
	discardAll(s, p.Hand)
}

// discardAll 把牌放回各自牌堆的弃牌区
func discardAll(s *State, cards []core.Card) {
	for _, c := range cards {
		d, ok := s.deck(core.PileOf(c))
		if !ok {
			d = s.Decks[defaultPile(s)]
		}
		d.Discard(c)
	}
}

func defaultPile(s *State) core.Pile {
	if _, ok := s.Decks[core.PileMain]; ok {
		return core.PileMain
	}
	return core.PileSand
}

func allIndices(p *Player) []int {
	out := make([]int, len(p.Hand))
	for i := range out {
		out[i] = i
	}
	return out
}

// String 调试输出
func (e *Engine) String() string {
	s := e.state
	return fmt.Sprintf("engine{session=%s variant=%s phase=%s round=%d active=%d}",
		s.SessionID, s.Variant.ID, s.Phase, roundIndex(s), s.Active)
}

func roundIndex(s *State) int {
	if s.Round == nil {
		return 0
	}
	return s.Round.Index
}
