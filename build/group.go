package build

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// group runs independent operations and waits for all of them. Operations
// report their own failures, so one failing never cancels its siblings.
type group struct {
	ctx context.Context
	g   errgroup.Group
}

// newGroup returns a group running at most limit operations at once.
// A limit below one means no limit.
func newGroup(ctx context.Context, limit int) *group {
	gr := &group{ctx: ctx}
	if limit > 0 {
		gr.g.SetLimit(limit)
	}
	return gr
}

// Go launches fn unless the context is done, in which case it returns false.
// It blocks while the group is at its limit.
func (gr *group) Go(fn func()) bool {
	if gr.ctx.Err() != nil {
		return false
	}
	gr.g.Go(func() error {
		fn()
		return nil
	})
	return true
}

// Wait blocks until every launched operation has returned.
func (gr *group) Wait() {
	_ = gr.g.Wait()
}
