package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/storekeeper/internal/domains/orders/domain"
	orderports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
)

// CommitOrderActivityName commits an order and decrements stock in one transaction.
const CommitOrderActivityName = "orders.activities.CommitOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	committer orderports.Committer
}

// NewActivities wires the in-process committer into the Temporal activities bundle.
// The committer must not itself route through Temporal.
func NewActivities(committer orderports.Committer) *Activities {
	return &Activities{committer: committer}
}

// CommitOrder runs the commit. Repeated attempts share the idempotency key, so
// a retry after a lost response returns the order committed by the first attempt.
func (a *Activities) CommitOrder(ctx context.Context, input orderports.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.committer == nil {
		logger.Error("order commit activity not initialized", "ownerId", input.OwnerID)
		return nil, errors.New("order commit activity not initialized")
	}
	logger.Info("CommitOrder activity started", "ownerId", input.OwnerID, "lines", len(input.Lines))
	order, err := a.committer.Commit(ctx, input)
	if err != nil {
		logger.Error("CommitOrder activity failed", "ownerId", input.OwnerID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("CommitOrder activity completed", "ownerId", input.OwnerID, "orderNumber", order.Number)
	return order, nil
}
