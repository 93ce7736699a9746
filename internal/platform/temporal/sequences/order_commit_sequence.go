package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	orderports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/storekeeper/internal/platform/temporal/activities/orders"
)

// RunOrderCommitSequence executes the activities that commit an order.
func RunOrderCommitSequence(ctx workflow.Context, input orderports.PlaceOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order commit sequence started", "ownerId", input.OwnerID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				orderactivities.ErrTypeValidation,
				orderactivities.ErrTypeSelection,
				orderactivities.ErrTypeNotFound,
				orderactivities.ErrTypeInsufficientStock,
				orderactivities.ErrTypeConflict,
			},
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), orderactivities.CommitOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order commit sequence failed", "ownerId", input.OwnerID, "error", err)
		return nil, err
	}
	logger.Info("order commit sequence committed", "ownerId", input.OwnerID, "orderNumber", order.Number)
	return &order, nil
}
