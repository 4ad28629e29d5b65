// Package scheduler owns the periodic per-user bot tasks. Each task is
// keyed by (kind, userID); starting a key cancels and replaces any task
// already running under it.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type key struct {
	kind   string
	userID string
}

type Scheduler struct {
	mu    sync.Mutex
	tasks map[key]context.CancelFunc
	wg    sync.WaitGroup
	log   *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{tasks: make(map[key]context.CancelFunc), log: log}
}

// Start launches run on every tick of period until the task is stopped.
// An existing task under the same (kind, userID) is cancelled first.
func (s *Scheduler) Start(kind, userID string, period time.Duration, run func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{kind, userID}
	if cancel, ok := s.tasks[k]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.tasks[k] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run(ctx)
			}
		}
	}()

	s.log.Info("bot started",
		zap.String("kind", kind),
		zap.String("user_id", userID),
		zap.Duration("period", period))
}

// Stop cancels the task under (kind, userID), if any.
func (s *Scheduler) Stop(kind, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{kind, userID}
	if cancel, ok := s.tasks[k]; ok {
		cancel()
		delete(s.tasks, k)
		s.log.Info("bot stopped", zap.String("kind", kind), zap.String("user_id", userID))
	}
}

// Running reports whether a task exists under (kind, userID).
func (s *Scheduler) Running(kind, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key{kind, userID}]
	return ok
}

// StopUser cancels every task owned by userID, across kinds. Used by
// the account deletion cascade.
func (s *Scheduler) StopUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, cancel := range s.tasks {
		if k.userID == userID {
			cancel()
			delete(s.tasks, k)
		}
	}
}

// Shutdown cancels everything and waits for the task goroutines.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	for k, cancel := range s.tasks {
		cancel()
		delete(s.tasks, k)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
