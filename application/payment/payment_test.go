package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	notifmocks "github.com/roastline/storefront/mocks/application/notification"
	ordermocks "github.com/roastline/storefront/mocks/repository/order"
	productmocks "github.com/roastline/storefront/mocks/repository/product"
	txmocks "github.com/roastline/storefront/mocks/repository/tx"
	stripemocks "github.com/roastline/storefront/mocks/thirdparty/stripe"

	apppayment "github.com/roastline/storefront/application/payment"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	"github.com/roastline/storefront/thirdparty/stripe"
	cerr "github.com/roastline/storefront/utils/errors"
	"github.com/stretchr/testify/mock"
)

// Publisher is nil in all cases; HandleWebhook checks for nil before
// publishing, so the broker is not needed to exercise the flow.

func completedEvent(metadata map[string]string) *stripe.Event {
	return &stripe.Event{
		Type: stripe.EventCheckoutSessionCompleted,
		Session: &stripe.CompletedSession{
			ID:              "cs_test_123",
			AmountTotal:     3000,
			AmountShipping:  500,
			PaymentIntentID: "pi_test_123",
			Metadata:        metadata,
			CustomerEmail:   "fallback@example.com",
			CustomerName:    "Fallback Name",
		},
	}
}

func defaultMetadata() map[string]string {
	return map[string]string{
		"user_id":          "user-1",
		"customer_email":   "jo@example.com",
		"shipping_name":    "Jo Coffee",
		"shipping_phone":   "+6281234567890",
		"shipping_address": `{"line1":"Jl. Kopi 1","city":"Jakarta","postal_code":"12345","country":"ID"}`,
	}
}

func TestPaymentApp_HandleWebhook(t *testing.T) {
	type fields struct {
		txRepo      *txmocks.TxRepository
		orderRepo   *ordermocks.OrderRepository
		productRepo *productmocks.ProductRepository
		gateway     *stripemocks.Gateway
		notifier    *notifmocks.NotificationApp
	}
	type args struct {
		ctx       context.Context
		payload   []byte
		signature string
	}
	tests := []struct {
		name     string
		fields   fields
		args     args
		mockCall func(f fields)
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: completed session becomes a processing order",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", []byte(`{}`), "sig").Return(completedEvent(defaultMetadata()), nil).Once()
				f.orderRepo.On("GetOrderBySessionID", mock.Anything, "cs_test_123").Return(nil, nil).Once()
				f.gateway.On("ListSessionLineItems", mock.Anything, "cs_test_123").Return([]stripe.LineItem{
					{Name: "House Blend 250g", UnitAmount: 1250, AmountTotal: 2500, Quantity: 2,
						ProductMetadata: map[string]string{"product_id": "7"}},
				}, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()

				f.orderRepo.On("InsertOrderTx", mock.Anything, tx, mock.MatchedBy(func(order *model.OrderEntity) bool {
					return order.UserID == "user-1" &&
						order.Status == constant.OrderStatusProcessing &&
						order.TotalAmount == 30.00 &&
						order.ShippingFee == 5.00 &&
						order.StripeSessionID == "cs_test_123" &&
						order.CustomerEmail == "jo@example.com" &&
						order.ShippingAddressLine1 == "Jl. Kopi 1" &&
						order.ShippingCity == "Jakarta"
				})).Return(nil).Once()

				f.orderRepo.On("InsertOrderItemsTx", mock.Anything, tx, mock.MatchedBy(func(items []model.OrderItemEntity) bool {
					return len(items) == 1 &&
						items[0].ProductID != nil && *items[0].ProductID == 7 &&
						items[0].Quantity == 2 &&
						items[0].UnitPrice == 12.50 &&
						items[0].TotalPrice == 25.00
				})).Return(nil).Once()

				f.productRepo.On("DecrementStock", mock.Anything, uint64(7), int64(2)).Return(true, nil).Once()
				f.notifier.On("SendStatusChange", mock.Anything, mock.Anything, constant.OrderStatusPending).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name: "success: unmatched line item keeps the order, skips decrement",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").Return(completedEvent(defaultMetadata()), nil).Once()
				f.orderRepo.On("GetOrderBySessionID", mock.Anything, "cs_test_123").Return(nil, nil).Once()
				f.gateway.On("ListSessionLineItems", mock.Anything, "cs_test_123").Return([]stripe.LineItem{
					{Name: "Mystery Roast", UnitAmount: 2500, AmountTotal: 2500, Quantity: 1,
						ProductMetadata: map[string]string{}},
				}, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
				f.orderRepo.On("InsertOrderTx", mock.Anything, tx, mock.Anything).Return(nil).Once()
				f.orderRepo.On("InsertOrderItemsTx", mock.Anything, tx, mock.MatchedBy(func(items []model.OrderItemEntity) bool {
					return len(items) == 1 && items[0].ProductID == nil && items[0].Name == "Mystery Roast"
				})).Return(nil).Once()

				// No DecrementStock expectation: nil ProductID is skipped.
				f.notifier.On("SendStatusChange", mock.Anything, mock.Anything, constant.OrderStatusPending).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name: "success: re-delivered event is a no-op via fast path",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").Return(completedEvent(defaultMetadata()), nil).Once()
				f.orderRepo.On("GetOrderBySessionID", mock.Anything, "cs_test_123").Return(&model.OrderEntity{
					ID:              "existing-order",
					StripeSessionID: "cs_test_123",
				}, nil).Once()
			},
			wantErr: false,
		},
		{
			name: "success: insert race loser acknowledges without side effects",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").Return(completedEvent(defaultMetadata()), nil).Once()
				f.orderRepo.On("GetOrderBySessionID", mock.Anything, "cs_test_123").Return(nil, nil).Once()
				f.gateway.On("ListSessionLineItems", mock.Anything, "cs_test_123").Return([]stripe.LineItem{
					{Name: "House Blend 250g", UnitAmount: 2500, AmountTotal: 2500, Quantity: 1,
						ProductMetadata: map[string]string{"product_id": "7"}},
				}, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
				f.orderRepo.On("InsertOrderTx", mock.Anything, tx, mock.Anything).
					Return(&pgconn.PgError{Code: "23505", ConstraintName: "orders_stripe_session_id_key"}).Once()

				// No items insert, no stock decrement, no notification.
			},
			wantErr: false,
		},
		{
			name: "success: unrelated event types are ignored",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").
					Return(&stripe.Event{Type: "payment_intent.created"}, nil).Once()
			},
			wantErr: false,
		},
		{
			name: "success: mailer failure does not fail the webhook",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").Return(completedEvent(defaultMetadata()), nil).Once()
				f.orderRepo.On("GetOrderBySessionID", mock.Anything, "cs_test_123").Return(nil, nil).Once()
				f.gateway.On("ListSessionLineItems", mock.Anything, "cs_test_123").Return([]stripe.LineItem{
					{Name: "House Blend 250g", UnitAmount: 2500, AmountTotal: 2500, Quantity: 1,
						ProductMetadata: map[string]string{"product_id": "7"}},
				}, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.txRepo.On("CommitTx", tx).Return(nil).Once()
				f.orderRepo.On("InsertOrderTx", mock.Anything, tx, mock.Anything).Return(nil).Once()
				f.orderRepo.On("InsertOrderItemsTx", mock.Anything, tx, mock.Anything).Return(nil).Once()
				f.productRepo.On("DecrementStock", mock.Anything, uint64(7), int64(1)).Return(true, nil).Once()

				f.notifier.On("SendStatusChange", mock.Anything, mock.Anything, constant.OrderStatusPending).
					Return(errors.New("mailer down")).Once()
			},
			wantErr: false,
		},
		{
			name: "error: invalid signature",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "bad"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "bad").Return(nil, errors.New("signature mismatch")).Once()
			},
			wantErr: true,
			errCode: constant.ErrInvalidSignature,
		},
		{
			name: "error: session without user_id metadata",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").
					Return(completedEvent(map[string]string{}), nil).Once()
			},
			wantErr: true,
			errCode: constant.ErrUnprocessableEvent,
		},
		{
			name: "error: line item listing fails",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").Return(completedEvent(defaultMetadata()), nil).Once()
				f.orderRepo.On("GetOrderBySessionID", mock.Anything, "cs_test_123").Return(nil, nil).Once()
				f.gateway.On("ListSessionLineItems", mock.Anything, "cs_test_123").
					Return(nil, errors.New("gateway timeout")).Once()
			},
			wantErr: true,
			errCode: constant.ErrPaymentGateway,
		},
		{
			name: "error: items insert fails and rolls back",
			fields: fields{
				txRepo:      txmocks.NewTxRepository(t),
				orderRepo:   ordermocks.NewOrderRepository(t),
				productRepo: productmocks.NewProductRepository(t),
				gateway:     stripemocks.NewGateway(t),
				notifier:    notifmocks.NewNotificationApp(t),
			},
			args: args{ctx: context.Background(), payload: []byte(`{}`), signature: "sig"},
			mockCall: func(f fields) {
				f.gateway.On("VerifyEvent", mock.Anything, "sig").Return(completedEvent(defaultMetadata()), nil).Once()
				f.orderRepo.On("GetOrderBySessionID", mock.Anything, "cs_test_123").Return(nil, nil).Once()
				f.gateway.On("ListSessionLineItems", mock.Anything, "cs_test_123").Return([]stripe.LineItem{
					{Name: "House Blend 250g", UnitAmount: 2500, AmountTotal: 2500, Quantity: 1,
						ProductMetadata: map[string]string{"product_id": "7"}},
				}, nil).Once()

				tx := &sqlx.Tx{}
				f.txRepo.On("BeginTx", mock.Anything).Return(tx, nil).Once()
				f.txRepo.On("RollbackTx", tx).Return(nil).Once()
				f.orderRepo.On("InsertOrderTx", mock.Anything, tx, mock.Anything).Return(nil).Once()
				f.orderRepo.On("InsertOrderItemsTx", mock.Anything, tx, mock.Anything).
					Return(errors.New("db error")).Once()
			},
			wantErr: true,
			errCode: constant.ErrInternal,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}
			app := apppayment.NewPaymentApp(tt.fields.txRepo, tt.fields.orderRepo, tt.fields.productRepo, tt.fields.gateway, tt.fields.notifier, nil)

			err := app.HandleWebhook(tt.args.ctx, tt.args.payload, tt.args.signature)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleWebhook() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var ce cerr.CustomError
				if !errors.As(err, &ce) {
					t.Fatalf("error type = %T, want CustomError", err)
				}
				if ce.ErrorCode() != constant.ErrorTypeCode[tt.errCode] {
					t.Fatalf("error code = %s, want %s", ce.ErrorCode(), constant.ErrorTypeCode[tt.errCode])
				}
			}
		})
	}
}
