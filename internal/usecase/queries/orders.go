package queries

//go:generate mockgen -source=orders.go -destination=../../../tests/mock/queries/orders.go -package=mock_queries

import (
	"context"

	"commerce-core/internal/domain/order"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/google/uuid"
)

type ListOrdersParams struct {
	UserID uuid.UUID
	Status *order.Status
	Cursor string
	Limit  int
}

type OrderQueries interface {
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error)
	ListOrders(ctx context.Context, params ListOrdersParams) (*OrderPage, error)
}

type orderQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewOrderQueries(uow shared.UnitOfWork) OrderQueries {
	return &orderQueriesImpl{uow: uow}
}

func (q *orderQueriesImpl) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error) {
	var view *OrderView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(userID) {
			return errs.Wrapf(errs.ErrUnauthorized, "order %s", orderID)
		}
		v := ToOrderView(o)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (q *orderQueriesImpl) ListOrders(ctx context.Context, params ListOrdersParams) (*OrderPage, error) {
	limit := ValidateLimit(params.Limit)
	filter := shared.OrderFilter{UserID: params.UserID, Status: params.Status, Limit: limit + 1}
	if params.Cursor != "" {
		at, id, err := DecodeAfterCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		filter.After = &shared.OrderPosition{CreatedAt: at, ID: id}
	}

	var orders []*order.Order
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		orders, err = tx.Orders().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}

	page := &OrderPage{Items: make([]OrderView, 0, min(len(orders), limit))}
	for i, o := range orders {
		if i == limit {
			last := orders[limit-1]
			page.NextCursor = EncodeAfterCursor(last.CreatedAt(), last.ID())
			break
		}
		page.Items = append(page.Items, ToOrderView(o))
	}
	return page, nil
}

func ToOrderView(o *order.Order) OrderView {
	lines := o.Lines()
	views := make([]OrderLineView, len(lines))
	for i, l := range lines {
		views[i] = OrderLineView{
			ID:          l.ID(),
			VariantID:   l.VariantID(),
			ProductName: l.ProductName(),
			UnitPrice:   l.UnitPrice(),
			Quantity:    l.Quantity(),
			Subtotal:    l.Subtotal(),
		}
	}
	return OrderView{
		ID:             o.ID(),
		UserID:         o.UserID(),
		CouponID:       o.CouponID(),
		UserCouponID:   o.UserCouponID(),
		Status:         o.Status().String(),
		TotalAmount:    o.TotalAmount(),
		DiscountAmount: o.DiscountAmount(),
		FinalAmount:    o.FinalAmount(),
		Lines:          views,
		CreatedAt:      o.CreatedAt(),
		PaidAt:         o.PaidAt(),
		ExpiresAt:      o.ExpiresAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
}
