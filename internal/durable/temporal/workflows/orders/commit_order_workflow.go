package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	orderports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
	"github.com/Apurer/storekeeper/internal/platform/temporal/sequences"
)

const (
	// CommitOrderWorkflowName is the public identifier for registering the workflow.
	CommitOrderWorkflowName = "orders.workflows.CommitOrder"
	// CommitOrderTaskQueue is the queue consumed by the worker processing order workflows.
	CommitOrderTaskQueue = "ORDER_COMMIT"
)

// CommitOrderWorkflowInput captures the order to commit.
type CommitOrderWorkflowInput struct {
	Command orderports.PlaceOrderInput
	TraceID string
}

// CommitOrderWorkflow durably commits one order.
func CommitOrderWorkflow(ctx workflow.Context, input CommitOrderWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CommitOrderWorkflow started", withTraceID(input.TraceID, "ownerId", input.Command.OwnerID)...)
	order, err := sequences.RunOrderCommitSequence(ctx, input.Command)
	if err != nil {
		logger.Error("CommitOrderWorkflow failed", withTraceID(input.TraceID, "ownerId", input.Command.OwnerID, "error", err)...)
		return nil, err
	}
	logger.Info("CommitOrderWorkflow completed", withTraceID(input.TraceID, "orderNumber", order.Number)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
