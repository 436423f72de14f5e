package checkout

import (
	"context"
	"encoding/json"

	"github.com/roastline/storefront/cmd/config"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	userrepo "github.com/roastline/storefront/repository/user"
	"github.com/roastline/storefront/thirdparty/stripe"
	utilsContext "github.com/roastline/storefront/utils/context"
	"github.com/roastline/storefront/utils/errors"
	"github.com/roastline/storefront/utils/logger"
	"github.com/roastline/storefront/utils/money"
	"go.uber.org/zap"
)

// CheckoutApp creates hosted payment sessions. Everything the webhook handler
// will need later (user id, email, shipping data, per-line product ids) is
// embedded at session-creation time; nothing else survives the round trip
// through the gateway.
type CheckoutApp interface {
	CreateSession(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
}

type checkoutAppImpl struct {
	config   *config.Config
	userRepo userrepo.UserRepository
	gateway  stripe.Gateway
}

func NewCheckoutApp(config *config.Config, userRepo userrepo.UserRepository, gateway stripe.Gateway) CheckoutApp {
	return &checkoutAppImpl{
		config:   config,
		userRepo: userRepo,
		gateway:  gateway,
	}
}

func (s *checkoutAppImpl) CreateSession(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if len(req.Items) == 0 {
		return nil, errors.SetCustomError(constant.ErrInvalidRequest)
	}

	email, _ := utilsContext.GetUserEmail(ctx)
	if email == "" {
		profile, err := s.userRepo.GetProfile(ctx, userID)
		if err != nil {
			logger.Error("[CreateSession] get profile", zap.String("error", err.Error()))
			return nil, errors.SetCustomError(constant.ErrInternal)
		}
		if profile != nil {
			email = profile.Email
		}
	}

	lineItems := make([]stripe.LineItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, stripe.LineItemInput{
			ProductID:  item.ProductID,
			Name:       item.Name,
			UnitAmount: money.ToMinorUnits(item.Price),
			Quantity:   item.Quantity,
			ImageURL:   item.ImageURL,
		})
	}

	addressJSON, err := json.Marshal(req.ShippingInfo.Address)
	if err != nil {
		logger.Error("[CreateSession] marshal shipping address", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	successURL := s.config.Stripe.BaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := s.config.Stripe.BaseURL + "/checkout/cancel"

	// Gateway-side customer upsert keyed by email so the hosted payment page
	// can prefill the shipping address.
	var customerID string
	if email != "" {
		customerID, err = s.gateway.UpsertCustomer(ctx, &stripe.CustomerInput{
			Email:   email,
			Name:    req.ShippingInfo.Name,
			Phone:   req.ShippingInfo.Phone,
			Address: &req.ShippingInfo.Address,
		})
		if err != nil {
			logger.Error("[CreateSession] upsert customer",
				zap.String("error", err.Error()),
				zap.String("success_url", successURL),
				zap.String("cancel_url", cancelURL))
			return nil, errors.SetCustomError(constant.ErrPaymentGateway)
		}
	}

	sessionID, err := s.gateway.CreateCheckoutSession(ctx, &stripe.SessionInput{
		CustomerID:     customerID,
		LineItems:      lineItems,
		ShippingAmount: money.ToMinorUnits(s.config.Shipping.FlatFee),
		Metadata: map[string]string{
			"user_id":          userID,
			"customer_email":   email,
			"shipping_name":    req.ShippingInfo.Name,
			"shipping_phone":   req.ShippingInfo.Phone,
			"shipping_address": string(addressJSON),
		},
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		logger.Error("[CreateSession] create checkout session",
			zap.String("error", err.Error()),
			zap.String("success_url", successURL),
			zap.String("cancel_url", cancelURL))
		return nil, errors.SetCustomError(constant.ErrPaymentGateway)
	}

	return &model.CheckoutResponse{SessionID: sessionID}, nil
}
