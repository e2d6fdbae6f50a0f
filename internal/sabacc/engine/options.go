package engine

// Options 单局的房规
type Options struct {
	// AllowDiscard Corellian Spike 是否允许单独弃牌
	AllowDiscard bool `json:"allowDiscard"`
	// Reshuffle 牌堆耗尽时是否把弃牌堆洗回
	Reshuffle bool `json:"reshuffle"`
	// SuddenDeath 是否以加赛打破并列第一
	SuddenDeath bool `json:"suddenDeath"`
	// Seed 随机种子, 0 表示按当前时间生成
	Seed uint64 `json:"seed"`
}

// DefaultOptions 默认房规
func DefaultOptions() Options {
	return Options{
		AllowDiscard: true,
		Reshuffle:    true,
		SuddenDeath:  true,
	}
}
