package task

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultExecTimeout 单个任务的执行期限
const DefaultExecTimeout = 5 * time.Second

// WorkerPool 按 Target 分道执行到期任务
//
// 同一 Target (会话) 的任务总是落在同一条 lane 上, 按到期顺序执行。
type WorkerPool struct {
	lanes       []chan *Task
	execTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	executed atomic.Int64
	failed   atomic.Int64
	panicked atomic.Int64

	logger *slog.Logger
}

// PoolStats 协程池计数
type PoolStats struct {
	Lanes    int   `json:"lanes"`
	Queued   int   `json:"queued"`
	Executed int64 `json:"executed"`
	Failed   int64 `json:"failed"`
	Panicked int64 `json:"panicked"`
}

// NewWorkerPool 创建协程池, 每条 lane 一个协程
func NewWorkerPool(laneCount int, execTimeout time.Duration) *WorkerPool {
	if laneCount <= 0 {
		laneCount = 10
	}
	if execTimeout <= 0 {
		execTimeout = DefaultExecTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	lanes := make([]chan *Task, laneCount)
	for i := range lanes {
		lanes[i] = make(chan *Task, 64)
	}

	return &WorkerPool{
		lanes:       lanes,
		execTimeout: execTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      slog.Default().With("component", "worker_pool"),
	}
}

// Start 启动所有 lane
func (wp *WorkerPool) Start() {
	for i, lane := range wp.lanes {
		wp.wg.Add(1)
		go wp.run(i, lane)
	}
	wp.logger.Info("Worker pool started", "lanes", len(wp.lanes), "execTimeout", wp.execTimeout)
}

func (wp *WorkerPool) run(lane int, tasks <-chan *Task) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task := <-tasks:
			if task != nil {
				wp.execute(lane, task)
			}
		}
	}
}

func (wp *WorkerPool) execute(lane int, task *Task) {
	ctx, cancel := context.WithTimeout(wp.ctx, wp.execTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			wp.panicked.Add(1)
			wp.logger.Error("Task panicked", "lane", lane, "taskId", task.ID, "target", task.Target, "panic", r)
		}
	}()

	start := time.Now()
	err := task.Execute(ctx)
	wp.executed.Add(1)
	if err != nil {
		wp.failed.Add(1)
		wp.logger.Error("Task failed",
			"lane", lane,
			"taskId", task.ID,
			"target", task.Target,
			"version", task.Version,
			"error", err)
		return
	}

	wp.logger.Debug("Task executed", "lane", lane, "taskId", task.ID, "elapsed", time.Since(start))
}

// laneFor 同一 Target 固定映射到一条 lane
func (wp *WorkerPool) laneFor(target string) chan *Task {
	h := fnv.New32a()
	_, _ = h.Write([]byte(target))
	return wp.lanes[h.Sum32()%uint32(len(wp.lanes))]
}

// Dispatch 按到期顺序投递任务, lane 满时阻塞直到有空位或池被关闭
func (wp *WorkerPool) Dispatch(tasks ...*Task) {
	for _, task := range tasks {
		lane := wp.laneFor(task.Target)
		select {
		case lane <- task:
			continue
		default:
		}

		wp.logger.Warn("Lane full, task delayed", "taskId", task.ID, "target", task.Target)
		select {
		case lane <- task:
		case <-wp.ctx.Done():
			wp.logger.Warn("Worker pool closed, dropping task", "taskId", task.ID)
			return
		}
	}
}

// Stats 当前计数
func (wp *WorkerPool) Stats() PoolStats {
	queued := 0
	for _, lane := range wp.lanes {
		queued += len(lane)
	}
	return PoolStats{
		Lanes:    len(wp.lanes),
		Queued:   queued,
		Executed: wp.executed.Load(),
		Failed:   wp.failed.Load(),
		Panicked: wp.panicked.Load(),
	}
}

// Stop 停止协程池, 尚在 lane 中的任务被丢弃
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
	wp.logger.Info("Worker pool stopped", "executed", wp.executed.Load(), "failed", wp.failed.Load())
}
