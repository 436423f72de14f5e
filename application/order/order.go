package order

import (
	"context"
	"fmt"
	"time"

	"github.com/roastline/storefront/application/notification"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	orderrepo "github.com/roastline/storefront/repository/order"
	"github.com/roastline/storefront/thirdparty/rabbitmq"
	utilsContext "github.com/roastline/storefront/utils/context"
	"github.com/roastline/storefront/utils/errors"
	"github.com/roastline/storefront/utils/logger"
	"go.uber.org/zap"
)

// OrderApp owns the order status state machine. Every mutation path, admin
// included, goes through UpdateStatus; there is no bypass around the
// transition table.
type OrderApp interface {
	UpdateStatus(ctx context.Context, orderID string, requested constant.OrderStatus) (constant.OrderStatus, error)
	GetOrder(ctx context.Context, orderID string) (*model.OrderEntity, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]model.OrderEntity, error)
	ListOrders(ctx context.Context, page, perPage int) (*model.OrderListResponse, error)
}

type orderAppImpl struct {
	orderRepo orderrepo.OrderRepository
	notifier  notification.NotificationApp
	publisher *rabbitmq.Publisher
}

func NewOrderApp(orderRepo orderrepo.OrderRepository, notifier notification.NotificationApp, publisher *rabbitmq.Publisher) OrderApp {
	return &orderAppImpl{
		orderRepo: orderRepo,
		notifier:  notifier,
		publisher: publisher,
	}
}

func (s *orderAppImpl) UpdateStatus(ctx context.Context, orderID string, requested constant.OrderStatus) (constant.OrderStatus, error) {
	if !requested.Valid() {
		return "", errors.SetCustomError(constant.ErrInvalidRequest)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("[UpdateStatus] get order", zap.String("error", err.Error()))
		return "", errors.SetCustomError(constant.ErrInternal)
	}
	if order == nil {
		return "", errors.SetCustomError(constant.ErrOrderNotFound)
	}

	// Customers may only cancel their own orders; everything else is an
	// admin operation.
	if !utilsContext.IsAdmin(ctx) {
		userID, _ := utilsContext.GetUserID(ctx)
		if order.UserID != userID || requested != constant.OrderStatusCancelled {
			return "", errors.SetCustomError(constant.ErrForbidden)
		}
	}

	if !constant.CanTransition(order.Status, requested) {
		return "", errors.SetCustomErrorWithDetail(constant.ErrIllegalTransition,
			fmt.Sprintf("from %s to %s", order.Status, requested))
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		logger.Error("[UpdateStatus] get order items", zap.String("error", err.Error()))
		return "", errors.SetCustomError(constant.ErrInternal)
	}

	// Conditional write: zero rows means a concurrent transition moved the
	// order first, so this request is no longer legal.
	updated, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, order.Status, requested)
	if err != nil {
		logger.Error("[UpdateStatus] update status", zap.String("error", err.Error()))
		return "", errors.SetCustomError(constant.ErrInternal)
	}
	if !updated {
		return "", errors.SetCustomErrorWithDetail(constant.ErrIllegalTransition,
			fmt.Sprintf("from %s to %s", order.Status, requested))
	}

	previous := order.Status
	order.Status = requested
	order.Items = items

	if err := s.notifier.SendStatusChange(ctx, order, previous); err != nil {
		logger.Error("[UpdateStatus] send notification", zap.String("error", err.Error()))
	}
	s.publishStatusChange(order, previous)

	return requested, nil
}

func (s *orderAppImpl) GetOrder(ctx context.Context, orderID string) (*model.OrderEntity, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("[GetOrder] get order", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if order == nil {
		return nil, errors.SetCustomError(constant.ErrOrderNotFound)
	}

	if !utilsContext.IsAdmin(ctx) {
		userID, _ := utilsContext.GetUserID(ctx)
		if order.UserID != userID {
			return nil, errors.SetCustomError(constant.ErrOrderNotFound)
		}
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		logger.Error("[GetOrder] get order items", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	order.Items = items

	return order, nil
}

func (s *orderAppImpl) ListOrdersByUser(ctx context.Context, userID string) ([]model.OrderEntity, error) {
	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		logger.Error("[ListOrdersByUser] list orders", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	return orders, nil
}

func (s *orderAppImpl) ListOrders(ctx context.Context, page, perPage int) (*model.OrderListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}

	orders, total, err := s.orderRepo.ListOrders(ctx, page, perPage)
	if err != nil {
		logger.Error("[ListOrders] list orders", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	return &model.OrderListResponse{
		Items:      orders,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

func (s *orderAppImpl) publishStatusChange(order *model.OrderEntity, previous constant.OrderStatus) {
	if s.publisher == nil {
		return
	}
	msg := rabbitmq.OrderStatusMessage{
		OrderID:        order.ID,
		UserID:         order.UserID,
		PreviousStatus: previous,
		NewStatus:      order.Status,
		OccurredAt:     time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderStatus(msg); err != nil {
		logger.Error("[UpdateStatus] publish status event", zap.String("error", err.Error()))
	}
}
