package core

// VariantID 玩法标识
type VariantID string

const (
	VariantCorellianSpike VariantID = "corellian_spike"
	VariantKessel         VariantID = "kessel"
	VariantCoruscantShift VariantID = "coruscant_shift"
	VariantTraditional    VariantID = "traditional"
)

// TargetRule 目标值规则
type TargetRule int8

const (
	TargetZero        TargetRule = iota // 固定为 0
	TargetDice                          // 金骰决定
	TargetPlusMinus23                   // 取 +23 与 -23 中较近者
)

// SylopMode Sylop 取值方式
type SylopMode int8

const (
	SylopZero           SylopMode = iota // 取 0
	SylopMirrorPartner                   // 镜像另一张牌, 带自身牌堆符号
	SylopMirrorDominant                  // 取绝对值最大的非 Sylop 牌值
)

// ImpostorPolicy Impostor 两颗骰子的选择策略
type ImpostorPolicy int8

const (
	ImpostorClosest ImpostorPolicy = iota // 选使总和最接近目标的组合
	ImpostorFirst                         // 总是取第一颗骰子
)

// SuddenDeathRule 加赛摸牌方式
type SuddenDeathRule int8

const (
	SuddenDeathAppend    SuddenDeathRule = iota // 手牌之外再摸一张
	SuddenDeathFreshPair                        // 重新摸一对 Sand/Blood 代替手牌
)

// SpecialHand 特殊牌型定义, 匹配时返回 kicker
type SpecialHand struct {
	Name  string
	Match func(h *EffectiveHand) (kicker int, ok bool)
}

// TieBreaker 距离相同时的比较函数, a 更好返回正数
type TieBreaker func(a, b *EffectiveHand) int

// VariantConfig 玩法配置, 构造后只读
type VariantConfig struct {
	ID   VariantID
	Name string

	// Decks 生成各牌堆的完整牌组
	Decks func() map[Pile][]Card
	// Deal 开局从每个牌堆发几张
	Deal map[Pile]int
	// HandLimit 轮间补牌上限 (0 表示不补牌)
	HandLimit int
	// Rounds 固定轮数, 0 表示直到 CallEnd
	Rounds int

	Target   TargetRule
	Sylop    SylopMode
	Impostor ImpostorPolicy

	SuddenDeath SuddenDeathRule

	Actions  []ActionType
	Specials []SpecialHand // 按优先级从高到低
	TieBreak []TieBreaker
}

// Allows 玩法是否包含该动作
func (c *VariantConfig) Allows(t ActionType) bool {
	for _, a := range c.Actions {
		if a == t {
			return true
		}
	}
	return false
}

// Piles 返回发牌用到的牌堆, 顺序固定
func (c *VariantConfig) Piles() []Pile {
	out := make([]Pile, 0, len(c.Deal))
	for _, p := range []Pile{PileMain, PileSand, PileBlood} {
		if _, ok := c.Deal[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// TargetValue 当前目标值, 传统玩法返回 23
func (c *VariantConfig) TargetValue(dice *DiceState) int {
	switch c.Target {
	case TargetDice:
		if dice != nil && dice.Gold != nil {
			return *dice.Gold
		}
		return 0
	case TargetPlusMinus23:
		return 23
	default:
		return 0
	}
}

// Distance 和值到目标的距离
func (c *VariantConfig) Distance(sum int, dice *DiceState) int {
	if c.Target == TargetPlusMinus23 {
		return min(Abs(sum-23), Abs(sum+23))
	}
	return Abs(sum - c.TargetValue(dice))
}

// Abs 绝对值
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
