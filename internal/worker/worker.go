// Package worker consumes formula.generate messages and drives a generation
// request from queued to a terminal state.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fragrancepalette/backend/internal/cache"
	"github.com/fragrancepalette/backend/internal/db"
	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/fragrancepalette/backend/internal/generator"
	"github.com/fragrancepalette/backend/internal/queue"
	"github.com/fragrancepalette/backend/internal/task"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Worker struct {
	db    *db.DB
	tasks *task.Store
	cache *cache.Client
	synth *generator.Synthesizer
}

func New(database *db.DB, tasks *task.Store, c *cache.Client, synth *generator.Synthesizer) *Worker {
	return &Worker{db: database, tasks: tasks, cache: c, synth: synth}
}

// Start attaches the generation consumer plus the acknowledge-only stubs for
// the two placeholder queues.
func (w *Worker) Start(ctx context.Context, broker *queue.Broker) error {
	if err := broker.Consume(ctx, queue.FormulaGenerateQueue, w.Process); err != nil {
		return err
	}
	if err := broker.ConsumeStub(ctx, queue.DomainKnowledgeQueue); err != nil {
		return err
	}
	return broker.ConsumeStub(ctx, queue.DatabaseQueryQueue)
}

// Process handles one formula.generate delivery. Returning an error marks
// the task failed and drops the message (nack without requeue upstream).
func (w *Worker) Process(ctx context.Context, body []byte) error {
	var msg queue.GenerateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return errors.Wrap(err, "malformed generate message")
	}
	uid, err := strconv.ParseUint(msg.UserID, 10, 64)
	if err != nil {
		return w.fail(ctx, msg.TaskID, errors.Wrapf(err, "invalid userId %q", msg.UserID))
	}
	userID := uint(uid)
	log.Infof("processing formula generation %s for user %d", msg.TaskID, userID)

	w.setStatus(ctx, msg.TaskID, func(s *task.Store) error {
		return s.SetProcessing(ctx, msg.TaskID, 25, "Analyzing fragrance description...")
	})

	formula, err := w.synth.Synthesize(ctx, msg.Description)
	if err != nil {
		return w.fail(ctx, msg.TaskID, err)
	}

	w.setStatus(ctx, msg.TaskID, func(s *task.Store) error {
		return s.SetProcessing(ctx, msg.TaskID, 75, "Saving formula...")
	})

	formula.UserID = userID
	if err := w.db.CreateFormula(formula); err != nil {
		return w.fail(ctx, msg.TaskID, err)
	}

	// Delete, don't repopulate: the next list read must come from the source
	// of truth so the new row is reflected in the pagination total.
	pattern := fmt.Sprintf("formulas:%d:*", userID)
	if _, err := w.cache.DeletePattern(ctx, pattern); err != nil && !errors.Is(err, errs.CacheUnavailable) {
		log.Warnf("cache invalidation for %s failed: %v", pattern, err)
	}

	w.setStatus(ctx, msg.TaskID, func(s *task.Store) error {
		return s.SetCompleted(ctx, msg.TaskID, task.Record{
			Message: "Formula generated successfully!",
			Result:  formula,
		})
	})
	log.Infof("formula generation %s completed: %q", msg.TaskID, formula.Name)
	return nil
}

func (w *Worker) fail(ctx context.Context, taskID string, cause error) error {
	log.Errorf("formula generation %s failed: %+v", taskID, cause)
	w.setStatus(ctx, taskID, func(s *task.Store) error {
		return s.SetFailed(ctx, taskID, cause.Error())
	})
	return cause
}

// setStatus is best-effort: a down cache loses progress visibility but must
// not fail the generation itself.
func (w *Worker) setStatus(ctx context.Context, taskID string, update func(*task.Store) error) {
	if err := update(w.tasks); err != nil && !errors.Is(err, errs.CacheUnavailable) {
		log.Warnf("status update for %s failed: %v", taskID, err)
	}
}
