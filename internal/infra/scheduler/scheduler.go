// Package scheduler — Task 1.4: Durable single-node task scheduler.
// Tasks are persisted in sqlite so pending work survives a restart.
//
// Design:
//   - One table, scheduled_tasks {id, grp, payload, run_at, done}.
//   - A polling goroutine claims due tasks by flipping the done flag;
//     the UPDATE's WHERE done = 0 guard makes the claim exclusive.
//   - Handlers are registered per group and run in their own goroutine.
//   - At-least-once delivery: a crash between claim and handler completion
//     loses the run, a crash before the claim replays it.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const pollInterval = time.Second

// Handler processes one due task's payload.
type Handler func(ctx context.Context, payload []byte)

// Scheduler is the interface consumers depend on.
type Scheduler interface {
	Enqueue(ctx context.Context, group string, payload []byte, runAt time.Time) (string, error)
	CancelGroup(ctx context.Context, group string) error
}

// Store is the sqlite-backed scheduler.
type Store struct {
	db *sql.DB

	mu       sync.RWMutex
	handlers map[string]Handler

	wg sync.WaitGroup
}

// NewStore creates a scheduler over the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, handlers: make(map[string]Handler)}
}

// Handle registers the handler for a task group. Registering twice for the
// same group replaces the handler.
func (s *Store) Handle(group string, h Handler) {
	s.mu.Lock()
	s.handlers[group] = h
	s.mu.Unlock()
}

// Enqueue persists a task to run at or after runAt and returns its id.
func (s *Store) Enqueue(ctx context.Context, group string, payload []byte, runAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (id, grp, payload, run_at, done)
		VALUES (?, ?, ?, ?, 0)`,
		id, group, payload, runAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("scheduler enqueue: %w", err)
	}
	return id, nil
}

// CancelGroup removes every pending task in a group. Tasks already claimed
// keep running.
func (s *Store) CancelGroup(ctx context.Context, group string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM scheduled_tasks WHERE grp = ? AND done = 0`, group)
	if err != nil {
		return fmt.Errorf("scheduler cancel group: %w", err)
	}
	return nil
}

// Pending counts not-yet-claimed tasks in a group.
func (s *Store) Pending(ctx context.Context, group string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM scheduled_tasks WHERE grp = ? AND done = 0`, group,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("scheduler pending: %w", err)
	}
	return n, nil
}

// Start launches the polling loop. It returns immediately; the loop stops
// when ctx is canceled and Start waits for in-flight handlers before
// returning from the final tick.
func (s *Store) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.dispatchDue(ctx)
			}
		}
	}()
}

// Wait blocks until the polling loop and all dispatched handlers finish.
func (s *Store) Wait() {
	s.wg.Wait()
}

type task struct {
	id      string
	group   string
	payload []byte
}

// dispatchDue claims every due task and hands each to its group handler.
func (s *Store) dispatchDue(ctx context.Context) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, grp, payload FROM scheduled_tasks
		WHERE done = 0 AND run_at <= ? ORDER BY run_at`, now)
	if err != nil {
		return
	}

	var due []task
	for rows.Next() {
		var t task
		if err := rows.Scan(&t.id, &t.group, &t.payload); err != nil {
			break
		}
		due = append(due, t)
	}
	rows.Close() //nolint:errcheck

	for _, t := range due {
		res, err := s.db.ExecContext(ctx, `
			UPDATE scheduled_tasks SET done = 1 WHERE id = ? AND done = 0`, t.id)
		if err != nil {
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Someone else claimed or canceled it.
			continue
		}

		s.mu.RLock()
		h := s.handlers[t.group]
		s.mu.RUnlock()
		if h == nil {
			continue
		}

		s.wg.Add(1)
		go func(t task) {
			defer s.wg.Done()
			h(ctx, t.payload)
		}(t)
	}
}
