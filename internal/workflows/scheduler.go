package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// Scheduler implements ports.BookmarkScheduler by starting BookmarkWorkflow
// and waiting for it to finish, so that the route is readable once Save returns.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

// NewScheduler creates a scheduler on the given task queue.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// ScheduleBookmark runs the bookmark workflow for route.
func (s *Scheduler) ScheduleBookmark(ctx context.Context, route domain.SavedRoute) error {
	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "bookmark-" + route.ID,
		TaskQueue: s.taskQueue,
	}, BookmarkWorkflow, BookmarkInput{Route: route})
	if err != nil {
		return fmt.Errorf("start bookmark workflow: %w", err)
	}
	if err := run.Get(ctx, nil); err != nil {
		return fmt.Errorf("bookmark workflow %s: %w", run.GetID(), err)
	}
	return nil
}
