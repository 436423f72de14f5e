package order_test

import (
	"context"
	"errors"
	"testing"

	apporder "github.com/roastline/storefront/application/order"
	"github.com/roastline/storefront/constant"
	notifmocks "github.com/roastline/storefront/mocks/application/notification"
	ordermocks "github.com/roastline/storefront/mocks/repository/order"
	"github.com/roastline/storefront/model"
	cerr "github.com/roastline/storefront/utils/errors"
	"github.com/stretchr/testify/mock"
)

func adminCtx() context.Context {
	ctx := context.WithValue(context.Background(), constant.UserIDKey, "admin-1")
	ctx = context.WithValue(ctx, constant.UserRoleKey, constant.RoleAdmin)
	return ctx
}

func customerCtx(userID string) context.Context {
	ctx := context.WithValue(context.Background(), constant.UserIDKey, userID)
	ctx = context.WithValue(ctx, constant.UserRoleKey, "customer")
	return ctx
}

func TestOrderApp_UpdateStatus(t *testing.T) {
	type fields struct {
		orderRepo *ordermocks.OrderRepository
		notifier  *notifmocks.NotificationApp
	}
	type args struct {
		ctx       context.Context
		orderID   string
		requested constant.OrderStatus
	}
	tests := []struct {
		name     string
		fields   fields
		args     args
		mockCall func(f fields)
		want     constant.OrderStatus
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: admin moves processing to shipped",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: adminCtx(), orderID: "order-1", requested: constant.OrderStatusShipped},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusProcessing,
				}, nil).Once()
				f.orderRepo.On("GetOrderItems", mock.Anything, "order-1").Return([]model.OrderItemEntity{}, nil).Once()
				f.orderRepo.On("UpdateOrderStatus", mock.Anything, "order-1", constant.OrderStatusProcessing, constant.OrderStatusShipped).Return(true, nil).Once()
				f.notifier.On("SendStatusChange", mock.Anything, mock.MatchedBy(func(order *model.OrderEntity) bool {
					return order.Status == constant.OrderStatusShipped
				}), constant.OrderStatusProcessing).Return(nil).Once()
			},
			want:    constant.OrderStatusShipped,
			wantErr: false,
		},
		{
			name: "success: customer cancels own pending order",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: customerCtx("user-1"), orderID: "order-1", requested: constant.OrderStatusCancelled},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusPending,
				}, nil).Once()
				f.orderRepo.On("GetOrderItems", mock.Anything, "order-1").Return([]model.OrderItemEntity{}, nil).Once()
				f.orderRepo.On("UpdateOrderStatus", mock.Anything, "order-1", constant.OrderStatusPending, constant.OrderStatusCancelled).Return(true, nil).Once()
				f.notifier.On("SendStatusChange", mock.Anything, mock.Anything, constant.OrderStatusPending).Return(nil).Once()
			},
			want:    constant.OrderStatusCancelled,
			wantErr: false,
		},
		{
			name: "success: notification failure does not fail the transition",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: adminCtx(), orderID: "order-1", requested: constant.OrderStatusDelivered},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusShipped,
				}, nil).Once()
				f.orderRepo.On("GetOrderItems", mock.Anything, "order-1").Return([]model.OrderItemEntity{}, nil).Once()
				f.orderRepo.On("UpdateOrderStatus", mock.Anything, "order-1", constant.OrderStatusShipped, constant.OrderStatusDelivered).Return(true, nil).Once()
				f.notifier.On("SendStatusChange", mock.Anything, mock.Anything, constant.OrderStatusShipped).
					Return(errors.New("mailer down")).Once()
			},
			want:    constant.OrderStatusDelivered,
			wantErr: false,
		},
		{
			name: "error: unknown status value",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args:     args{ctx: adminCtx(), orderID: "order-1", requested: constant.OrderStatus("refunded")},
			mockCall: nil,
			wantErr:  true,
			errCode:  constant.ErrInvalidRequest,
		},
		{
			name: "error: order not found",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: adminCtx(), orderID: "missing", requested: constant.OrderStatusShipped},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "missing").Return(nil, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrOrderNotFound,
		},
		{
			name: "error: customer may not ship an order",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: customerCtx("user-1"), orderID: "order-1", requested: constant.OrderStatusShipped},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusProcessing,
				}, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrForbidden,
		},
		{
			name: "error: customer may not cancel another user's order",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: customerCtx("user-2"), orderID: "order-1", requested: constant.OrderStatusCancelled},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusPending,
				}, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrForbidden,
		},
		{
			name: "error: delivered is terminal",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: adminCtx(), orderID: "order-1", requested: constant.OrderStatusCancelled},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusDelivered,
				}, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrIllegalTransition,
		},
		{
			name: "error: pending cannot skip to shipped",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: adminCtx(), orderID: "order-1", requested: constant.OrderStatusShipped},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusPending,
				}, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrIllegalTransition,
		},
		{
			name: "error: concurrent transition loses the conditional update",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: adminCtx(), orderID: "order-1", requested: constant.OrderStatusShipped},
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusProcessing,
				}, nil).Once()
				f.orderRepo.On("GetOrderItems", mock.Anything, "order-1").Return([]model.OrderItemEntity{}, nil).Once()
				f.orderRepo.On("UpdateOrderStatus", mock.Anything, "order-1", constant.OrderStatusProcessing, constant.OrderStatusShipped).Return(false, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrIllegalTransition,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}
			app := apporder.NewOrderApp(tt.fields.orderRepo, tt.fields.notifier, nil)

			got, err := app.UpdateStatus(tt.args.ctx, tt.args.orderID, tt.args.requested)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateStatus() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var ce cerr.CustomError
				if !errors.As(err, &ce) {
					t.Fatalf("error type = %T, want CustomError", err)
				}
				if ce.ErrorCode() != constant.ErrorTypeCode[tt.errCode] {
					t.Fatalf("error code = %s, want %s", ce.ErrorCode(), constant.ErrorTypeCode[tt.errCode])
				}
				return
			}

			if got != tt.want {
				t.Fatalf("UpdateStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderApp_GetOrder(t *testing.T) {
	type fields struct {
		orderRepo *ordermocks.OrderRepository
		notifier  *notifmocks.NotificationApp
	}
	tests := []struct {
		name     string
		fields   fields
		ctx      context.Context
		orderID  string
		mockCall func(f fields)
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: owner reads own order with items",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			ctx:     customerCtx("user-1"),
			orderID: "order-1",
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusProcessing,
				}, nil).Once()
				f.orderRepo.On("GetOrderItems", mock.Anything, "order-1").Return([]model.OrderItemEntity{
					{OrderID: "order-1", Name: "House Blend 250g", Quantity: 2},
				}, nil).Once()
			},
			wantErr: false,
		},
		{
			name: "error: other user's order reads as not found",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			ctx:     customerCtx("user-2"),
			orderID: "order-1",
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusProcessing,
				}, nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrOrderNotFound,
		},
		{
			name: "success: admin reads any order",
			fields: fields{
				orderRepo: ordermocks.NewOrderRepository(t),
				notifier:  notifmocks.NewNotificationApp(t),
			},
			ctx:     adminCtx(),
			orderID: "order-1",
			mockCall: func(f fields) {
				f.orderRepo.On("GetOrderByID", mock.Anything, "order-1").Return(&model.OrderEntity{
					ID:     "order-1",
					UserID: "user-1",
					Status: constant.OrderStatusProcessing,
				}, nil).Once()
				f.orderRepo.On("GetOrderItems", mock.Anything, "order-1").Return([]model.OrderItemEntity{}, nil).Once()
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}
			app := apporder.NewOrderApp(tt.fields.orderRepo, tt.fields.notifier, nil)

			got, err := app.GetOrder(tt.ctx, tt.orderID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetOrder() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var ce cerr.CustomError
				if !errors.As(err, &ce) {
					t.Fatalf("error type = %T, want CustomError", err)
				}
				if ce.ErrorCode() != constant.ErrorTypeCode[tt.errCode] {
					t.Fatalf("error code = %s, want %s", ce.ErrorCode(), constant.ErrorTypeCode[tt.errCode])
				}
				return
			}

			if got == nil || got.ID != tt.orderID {
				t.Fatalf("GetOrder() = %v, want order %s", got, tt.orderID)
			}
		})
	}
}
