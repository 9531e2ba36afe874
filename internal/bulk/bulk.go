// Package bulk applies delete and change-type actions to selected posts.
package bulk

import (
	"context"
	"fmt"

	"github.com/jonathan/orphaned-data/internal/logger"
	"github.com/jonathan/orphaned-data/internal/posttype"
)

// Bulk action names as submitted by the listing form.
const (
	ActionDelete     = "delete"
	ActionChangeType = "change_type"
)

// Store mutates posts. Each call reports whether the post existed.
type Store interface {
	DeletePost(ctx context.Context, id int64) (bool, error)
	SetPostType(ctx context.Context, id int64, postType string) (bool, error)
}

// Recorder observes handled actions.
type Recorder interface {
	ObserveBulkAction(action string, affected int)
}

// Request is one submitted bulk action.
type Request struct {
	Action     string
	PostIDs    []int64 `validate:"dive,gt=0"`
	TargetType string
}

// Result reports what a request did. Handled is false for unknown actions,
// which produce no message.
type Result struct {
	Handled bool
	Count   int
	Message string
}

// Processor executes bulk actions against a Store.
type Processor struct {
	store    Store
	registry *posttype.Registry
	recorder Recorder
	log      logger.Logger
}

// NewProcessor creates a processor. recorder may be nil.
func NewProcessor(store Store, registry *posttype.Registry, recorder Recorder, log logger.Logger) *Processor {
	return &Processor{store: store, registry: registry, recorder: recorder, log: log}
}

// Process applies req. Per-post failures are logged and left out of the count;
// the only error returned is a cancelled context.
func (p *Processor) Process(ctx context.Context, req Request) (Result, error) {
	var (
		count int
		err   error
	)
	switch req.Action {
	case ActionDelete:
		count, err = p.each(ctx, req, func(id int64) (bool, error) {
			return p.store.DeletePost(ctx, id)
		})
		if err != nil {
			return Result{}, err
		}
		p.observe(req.Action, count)
		return Result{Handled: true, Count: count, Message: fmt.Sprintf("Deleted %s", posts(count))}, nil

	case ActionChangeType:
		if p.validTarget(req.TargetType) {
			count, err = p.each(ctx, req, func(id int64) (bool, error) {
				return p.store.SetPostType(ctx, id, req.TargetType)
			})
			if err != nil {
				return Result{}, err
			}
		} else {
			p.log.Info("change type ignored: target is not a registered public type",
				logger.String("target", req.TargetType))
		}
		p.observe(req.Action, count)
		return Result{Handled: true, Count: count, Message: fmt.Sprintf("Post type changed for %s", posts(count))}, nil

	default:
		return Result{}, nil
	}
}

// validTarget reports whether name is a registered, public, real post type.
func (p *Processor) validTarget(name string) bool {
	if name == "" {
		return false
	}
	def, ok := p.registry.Get(name)
	return ok && def.Public && !def.Placeholder
}

func (p *Processor) each(ctx context.Context, req Request, apply func(id int64) (bool, error)) (int, error) {
	count := 0
	seen := make(map[int64]struct{}, len(req.PostIDs))
	for _, id := range req.PostIDs {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ok, err := apply(id)
		if err != nil {
			p.log.Warn("bulk action failed for post",
				logger.String("action", req.Action),
				logger.Int64("post_id", id),
				logger.Err(err))
			continue
		}
		if ok {
			count++
		}
	}
	return count, nil
}

func (p *Processor) observe(action string, count int) {
	if p.recorder != nil {
		p.recorder.ObserveBulkAction(action, count)
	}
}

// posts renders "1 post" / "N posts".
func posts(n int) string {
	if n == 1 {
		return "1 post"
	}
	return fmt.Sprintf("%d posts", n)
}
