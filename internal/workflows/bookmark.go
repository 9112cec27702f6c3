package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/laufrunde/internal/core/domain"
)

// DefaultTaskQueue is the task queue the bookmark worker polls.
const DefaultTaskQueue = "laufrunde-bookmarks"

// BookmarkInput is the input for the bookmark workflow.
type BookmarkInput struct {
	Route domain.SavedRoute
}

// BookmarkWorkflow stores a saved route and announces it. If the announcement
// cannot be delivered the stored route is deleted again (saga compensation),
// so a route is either saved and published or not saved at all.
func BookmarkWorkflow(ctx workflow.Context, input BookmarkInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting bookmark workflow", "routeID", input.Route.ID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Store the route
	if err := workflow.ExecuteActivity(ctx, ActivityStoreRoute, input.Route).Get(ctx, nil); err != nil {
		return err
	}

	// Step 2: Publish route.saved
	err := workflow.ExecuteActivity(ctx, ActivityPublishSaved, input.Route).Get(ctx, nil)
	if err != nil {
		logger.Warn("publishing route.saved failed, compensating", "error", err)
		if cerr := workflow.ExecuteActivity(ctx, ActivityDeleteRoute, input.Route.ID).Get(ctx, nil); cerr != nil {
			logger.Error("compensation failed", "routeID", input.Route.ID, "error", cerr)
		}
		return err
	}

	logger.Info("Route bookmarked", "routeID", input.Route.ID)
	return nil
}
