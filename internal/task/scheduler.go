package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrSchedulerRunning    = errors.New("scheduler is already running")
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrTaskNotFound        = errors.New("task not found")
)

// Scheduler 任务调度器: 时间轮负责计时, 协程池负责执行
type Scheduler struct {
	wheel      *TimeWheel
	workerPool *WorkerPool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	running    bool
	runningMu  sync.RWMutex
}

// NewScheduler 创建任务调度器
func NewScheduler(workerCount int, tick time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		wheel:      NewTimeWheel(tick),
		workerPool: NewWorkerPool(workerCount, DefaultExecTimeout),
		ctx:        ctx,
		cancel:     cancel,
		logger:     slog.Default().With("component", "scheduler"),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		return ErrSchedulerRunning
	}
	s.running = true
	s.runningMu.Unlock()

	s.workerPool.Start()

	s.wg.Add(1)
	go s.tickLoop()

	s.logger.Info("Scheduler started", "tick", s.wheel.tick)
	return nil
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	ticker := s.wheel.GetTicker()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.onTick()
		}
	}
}

func (s *Scheduler) onTick() {
	tasks := s.wheel.Tick()
	if len(tasks) == 0 {
		return
	}

	s.logger.Debug("Tasks due",
		"currentSlot", s.wheel.GetCurrentSlot(),
		"taskCount", len(tasks))

	s.workerPool.Dispatch(tasks...)
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.wheel.Stop()
	s.workerPool.Stop()

	s.logger.Info("Scheduler stopped")
}

// AddTask 添加任务, 同 ID 的任务会被替换
func (s *Scheduler) AddTask(task *Task) error {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	if !s.running {
		return ErrSchedulerNotRunning
	}
	if task == nil || task.ID == "" {
		return fmt.Errorf("task id is required")
	}

	s.logger.Debug("Task added",
		"taskId", task.ID,
		"target", task.Target,
		"delay", task.Delay)

	return s.wheel.AddTask(task)
}

// AddTaskAfter 按时长添加任务
func (s *Scheduler) AddTaskAfter(task *Task, d time.Duration) error {
	if task != nil {
		task.Delay = s.wheel.Ticks(d)
	}
	return s.AddTask(task)
}

// RemoveTask 删除任务
func (s *Scheduler) RemoveTask(taskID string) error {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	if !s.running {
		return ErrSchedulerNotRunning
	}
	if !s.wheel.RemoveTask(taskID) {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	s.logger.Debug("Task removed", "taskId", taskID)
	return nil
}

// IsRunning 检查调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	return s.running
}

// GetStats 获取调度器统计信息
func (s *Scheduler) GetStats() map[string]any {
	return map[string]any{
		"running":        s.IsRunning(),
		"currentSlot":    s.wheel.GetCurrentSlot(),
		"totalTaskCount": s.wheel.GetTotalTaskCount(),
		"workers":        s.workerPool.Stats(),
	}
}
