package task

import "sync"

type slotEntry struct {
	task   *Task
	rounds int // 还需转过的圈数
}

// Slot 时间轮槽位
type Slot struct {
	mu      sync.Mutex
	entries map[string]*slotEntry
}

// NewSlot 创建新槽位
func NewSlot() *Slot {
	return &Slot{
		entries: make(map[string]*slotEntry),
	}
}

// AddTask 添加任务, rounds 为到期前还需经过的整圈数
func (s *Slot) AddTask(task *Task, rounds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[task.ID] = &slotEntry{task: task, rounds: rounds}
}

// RemoveTask 从槽位删除任务
func (s *Slot) RemoveTask(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[taskID]; exists {
		delete(s.entries, taskID)
		return true
	}
	return false
}

// Due 取出本圈到期的任务, 其余任务圈数减一
func (s *Slot) Due() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Task
	for id, e := range s.entries {
		if e.rounds > 0 {
			e.rounds--
			continue
		}
		due = append(due, e.task)
		delete(s.entries, id)
	}
	return due
}

// Count 获取槽位任务数量
func (s *Slot) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}
