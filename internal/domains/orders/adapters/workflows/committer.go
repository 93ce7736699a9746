package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	"github.com/Apurer/storekeeper/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/storekeeper/internal/durable/temporal/workflows/orders"
	orderactivities "github.com/Apurer/storekeeper/internal/platform/temporal/activities/orders"
)

var _ ports.Committer = (*TemporalCommitter)(nil)

// TemporalCommitter commits orders through the CommitOrder workflow.
type TemporalCommitter struct {
	client    client.Client
	taskQueue string
}

// NewTemporalCommitter wires a Temporal client into the committer.
func NewTemporalCommitter(c client.Client, taskQueue string) *TemporalCommitter {
	if strings.TrimSpace(taskQueue) == "" {
		taskQueue = orderworkflows.CommitOrderTaskQueue
	}
	return &TemporalCommitter{client: c, taskQueue: taskQueue}
}

// Commit starts the workflow and waits for the committed order. Starting the
// same keyed commit twice attaches to the running or finished execution.
func (c *TemporalCommitter) Commit(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("temporal order committer not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildCommitWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: c.taskQueue,
	}
	run, err := c.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.CommitOrderWorkflowName,
		orderworkflows.CommitOrderWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || strings.TrimSpace(input.IdempotencyKey) == "" {
			return nil, orderactivities.DecodeError("start commit workflow", err)
		}
		run = c.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, orderactivities.DecodeError("commit order", err)
	}
	return &order, nil
}

func buildCommitWorkflowID(input ports.PlaceOrderInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-commit-%d-%s", input.OwnerID, hashIdempotencyKey(key))
	}
	return fmt.Sprintf("order-commit-%d-%s", input.OwnerID, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if spanCtx := span.SpanContext(); spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
		return spanCtx.TraceID().String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
