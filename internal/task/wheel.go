package task

import (
	"sync"
	"time"
)

const (
	// SlotCount 时间轮槽位数量
	SlotCount = 60
	// DefaultTick 默认 tick 间隔
	DefaultTick = time.Second
)

// TimeWheel 单层时间轮, 超过一圈的任务按圈数计数
type TimeWheel struct {
	slots       [SlotCount]*Slot
	mu          sync.Mutex
	currentSlot int
	index       map[string]int // taskID -> 槽位
	tick        time.Duration
	ticker      *time.Ticker
}

// NewTimeWheel 创建时间轮, tick <= 0 时使用 DefaultTick
func NewTimeWheel(tick time.Duration) *TimeWheel {
	if tick <= 0 {
		tick = DefaultTick
	}
	tw := &TimeWheel{
		index:  make(map[string]int),
		tick:   tick,
		ticker: time.NewTicker(tick),
	}
	for i := 0; i < SlotCount; i++ {
		tw.slots[i] = NewSlot()
	}
	return tw
}

// AddTask 添加任务, 同 ID 的旧任务会被替换
func (tw *TimeWheel) AddTask(task *Task) error {
	if task.Delay < 1 {
		task.Delay = 1
	}

	tw.mu.Lock()
	defer tw.mu.Unlock()

	if old, ok := tw.index[task.ID]; ok {
		tw.slots[old].RemoveTask(task.ID)
	}
	target := (tw.currentSlot + task.Delay) % SlotCount
	rounds := (task.Delay - 1) / SlotCount
	tw.slots[target].AddTask(task, rounds)
	tw.index[task.ID] = target
	return nil
}

// RemoveTask 删除任务
func (tw *TimeWheel) RemoveTask(taskID string) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	slot, ok := tw.index[taskID]
	if !ok {
		return false
	}
	delete(tw.index, taskID)
	return tw.slots[slot].RemoveTask(taskID)
}

// Tick 推进一格并返回到期任务
func (tw *TimeWheel) Tick() []*Task {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.currentSlot = (tw.currentSlot + 1) % SlotCount
	due := tw.slots[tw.currentSlot].Due()
	for _, t := range due {
		delete(tw.index, t.ID)
	}
	return due
}

// Ticks 把时长换算成 tick 数, 向上取整
func (tw *TimeWheel) Ticks(d time.Duration) int {
	n := int((d + tw.tick - 1) / tw.tick)
	if n < 1 {
		return 1
	}
	return n
}

// GetCurrentSlot 获取当前槽位索引
func (tw *TimeWheel) GetCurrentSlot() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return tw.currentSlot
}

// Stop 停止时间轮
func (tw *TimeWheel) Stop() {
	tw.ticker.Stop()
}

// GetTicker 获取定时器
func (tw *TimeWheel) GetTicker() *time.Ticker {
	return tw.ticker
}

// GetTotalTaskCount 获取所有槽位的任务总数
func (tw *TimeWheel) GetTotalTaskCount() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	return len(tw.index)
}
