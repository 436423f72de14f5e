package checkout_test

import (
	"context"
	"errors"
	"testing"

	appcheckout "github.com/roastline/storefront/application/checkout"
	"github.com/roastline/storefront/cmd/config"
	"github.com/roastline/storefront/constant"
	usermocks "github.com/roastline/storefront/mocks/repository/user"
	stripemocks "github.com/roastline/storefront/mocks/thirdparty/stripe"
	"github.com/roastline/storefront/model"
	"github.com/roastline/storefront/thirdparty/stripe"
	cerr "github.com/roastline/storefront/utils/errors"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		Stripe: config.StripeConfig{
			BaseURL:  "https://shop.example.com",
			Currency: "usd",
		},
		Shipping: config.ShippingConfig{FlatFee: 5.00},
	}
}

func emailCtx(email string) context.Context {
	return context.WithValue(context.Background(), constant.UserEmailKey, email)
}

func checkoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		Items: []model.CheckoutItem{
			{ProductID: 7, Name: "House Blend 250g", Price: 14.99, Quantity: 2},
		},
		ShippingInfo: model.ShippingInfo{
			Name:  "Jo Coffee",
			Phone: "+6281234567890",
			Address: model.ShippingAddress{
				Line1:      "Jl. Kopi 1",
				City:       "Jakarta",
				PostalCode: "12345",
				Country:    "ID",
			},
		},
	}
}

func TestCheckoutApp_CreateSession(t *testing.T) {
	type fields struct {
		config   *config.Config
		userRepo *usermocks.UserRepository
		gateway  *stripemocks.Gateway
	}
	type args struct {
		ctx    context.Context
		userID string
		req    *model.CheckoutRequest
	}
	tests := []struct {
		name     string
		fields   fields
		args     args
		mockCall func(f fields)
		want     *model.CheckoutResponse
		wantErr  bool
		errCode  constant.ErrorType
	}{
		{
			name: "success: prices converted to minor units, metadata embedded",
			fields: fields{
				config:   testConfig(),
				userRepo: usermocks.NewUserRepository(t),
				gateway:  stripemocks.NewGateway(t),
			},
			args: args{ctx: emailCtx("jo@example.com"), userID: "user-1", req: checkoutRequest()},
			mockCall: func(f fields) {
				f.gateway.On("UpsertCustomer", mock.Anything, mock.MatchedBy(func(req *stripe.CustomerInput) bool {
					return req.Email == "jo@example.com" && req.Name == "Jo Coffee"
				})).Return("cus_123", nil).Once()

				f.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req *stripe.SessionInput) bool {
					if len(req.LineItems) != 1 {
						return false
					}
					li := req.LineItems[0]
					return req.CustomerID == "cus_123" &&
						li.ProductID == 7 &&
						li.UnitAmount == 1499 &&
						li.Quantity == 2 &&
						req.ShippingAmount == 500 &&
						req.Metadata["user_id"] == "user-1" &&
						req.Metadata["customer_email"] == "jo@example.com" &&
						req.Metadata["shipping_name"] == "Jo Coffee" &&
						req.Metadata["shipping_address"] == `{"line1":"Jl. Kopi 1","city":"Jakarta","postal_code":"12345","country":"ID"}` &&
						req.SuccessURL == "https://shop.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}" &&
						req.CancelURL == "https://shop.example.com/checkout/cancel"
				})).Return("cs_test_123", nil).Once()
			},
			want:    &model.CheckoutResponse{SessionID: "cs_test_123"},
			wantErr: false,
		},
		{
			name: "success: email resolved from profile when absent from context",
			fields: fields{
				config:   testConfig(),
				userRepo: usermocks.NewUserRepository(t),
				gateway:  stripemocks.NewGateway(t),
			},
			args: args{ctx: context.Background(), userID: "user-1", req: checkoutRequest()},
			mockCall: func(f fields) {
				f.userRepo.On("GetProfile", mock.Anything, "user-1").Return(&model.UserProfile{
					UserID: "user-1",
					Email:  "profile@example.com",
				}, nil).Once()
				f.gateway.On("UpsertCustomer", mock.Anything, mock.MatchedBy(func(req *stripe.CustomerInput) bool {
					return req.Email == "profile@example.com"
				})).Return("cus_456", nil).Once()
				f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return("cs_test_456", nil).Once()
			},
			want:    &model.CheckoutResponse{SessionID: "cs_test_456"},
			wantErr: false,
		},
		{
			name: "success: no email skips customer upsert",
			fields: fields{
				config:   testConfig(),
				userRepo: usermocks.NewUserRepository(t),
				gateway:  stripemocks.NewGateway(t),
			},
			args: args{ctx: context.Background(), userID: "user-1", req: checkoutRequest()},
			mockCall: func(f fields) {
				f.userRepo.On("GetProfile", mock.Anything, "user-1").Return(nil, nil).Once()
				f.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req *stripe.SessionInput) bool {
					return req.CustomerID == "" && req.Metadata["customer_email"] == ""
				})).Return("cs_test_789", nil).Once()
			},
			want:    &model.CheckoutResponse{SessionID: "cs_test_789"},
			wantErr: false,
		},
		{
			name: "error: empty items",
			fields: fields{
				config:   testConfig(),
				userRepo: usermocks.NewUserRepository(t),
				gateway:  stripemocks.NewGateway(t),
			},
			args: args{
				ctx:    emailCtx("jo@example.com"),
				userID: "user-1",
				req:    &model.CheckoutRequest{Items: []model.CheckoutItem{}},
			},
			mockCall: nil,
			want:     nil,
			wantErr:  true,
			errCode:  constant.ErrInvalidRequest,
		},
		{
			name: "error: gateway rejects session creation",
			fields: fields{
				config:   testConfig(),
				userRepo: usermocks.NewUserRepository(t),
				gateway:  stripemocks.NewGateway(t),
			},
			args: args{ctx: emailCtx("jo@example.com"), userID: "user-1", req: checkoutRequest()},
			mockCall: func(f fields) {
				f.gateway.On("UpsertCustomer", mock.Anything, mock.Anything).Return("cus_123", nil).Once()
				f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return("", errors.New("rate limited")).Once()
			},
			want:    nil,
			wantErr: true,
			errCode: constant.ErrPaymentGateway,
		},
		{
			name: "error: customer upsert fails",
			fields: fields{
				config:   testConfig(),
				userRepo: usermocks.NewUserRepository(t),
				gateway:  stripemocks.NewGateway(t),
			},
			args: args{ctx: emailCtx("jo@example.com"), userID: "user-1", req: checkoutRequest()},
			mockCall: func(f fields) {
				f.gateway.On("UpsertCustomer", mock.Anything, mock.Anything).
					Return("", errors.New("api error")).Once()
			},
			want:    nil,
			wantErr: true,
			errCode: constant.ErrPaymentGateway,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockCall != nil {
				tt.mockCall(tt.fields)
			}
			app := appcheckout.NewCheckoutApp(tt.fields.config, tt.fields.userRepo, tt.fields.gateway)

			got, err := app.CreateSession(tt.args.ctx, tt.args.userID, tt.args.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
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

			if got.SessionID != tt.want.SessionID {
				t.Fatalf("CreateSession() SessionID = %v, want %v", got.SessionID, tt.want.SessionID)
			}
		})
	}
}
