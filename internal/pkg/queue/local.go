package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/safe"
	"golang.org/x/sync/semaphore"
)

// LocalDispatcher runs tasks on goroutines in this process, bounded by a
// weighted semaphore of size MaxPending.
type LocalDispatcher struct {
	cfg      Config
	sem      *semaphore.Weighted
	mu       sync.RWMutex
	handlers map[string]Handler
	closed   bool
}

func NewLocalDispatcher(cfg Config) *LocalDispatcher {
	cfg.SetDefaults()
	return &LocalDispatcher{
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.MaxPending)),
		handlers: make(map[string]Handler),
	}
}

func (d *LocalDispatcher) Mode() string { return ModeLocal }

func (d *LocalDispatcher) Register(taskType string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[taskType] = handler
	log.Infow("task handler registered", "task_type", taskType, "mode", ModeLocal)
}

func (d *LocalDispatcher) Start() error { return nil }

// Dispatch 非阻塞投递，在途任务已满时返回 ErrQueueFull
func (d *LocalDispatcher) Dispatch(_ context.Context, task *Task) error {
	d.mu.RLock()
	closed := d.closed
	handler, ok := d.handlers[task.Type]
	d.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, task.Type)
	}
	if !d.sem.TryAcquire(1) {
		return ErrQueueFull
	}

	safe.Go("queue.local."+task.Type, func() {
		defer d.sem.Release(1)
		// 任务脱离请求上下文
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.timeout())
		defer cancel()
		if err := handler.HandleTask(ctx, task); err != nil {
			log.Errorw("task failed", "task_id", task.ID, "task_type", task.Type, "error", err)
			return
		}
		log.Debugw("task completed", "task_id", task.ID, "task_type", task.Type)
	})
	return nil
}

// Close stops accepting tasks and waits for in-flight ones until ctx is done.
func (d *LocalDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	if err := d.sem.Acquire(ctx, int64(d.cfg.MaxPending)); err != nil {
		return fmt.Errorf("drain local dispatcher: %w", err)
	}
	d.sem.Release(int64(d.cfg.MaxPending))
	return nil
}
