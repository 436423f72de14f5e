package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/utils/errors"
	"github.com/roastline/storefront/utils/logger"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = int64(65536)

// StripeWebhook handler
// @Summary Stripe webhook
// @Description Receive signed checkout session events from the payment gateway
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errors.CustomError
// @Router /webhooks/stripe [post]
func (s *RestHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	if err := s.PaymentApp.HandleWebhook(ctx, payload, r.Header.Get("Stripe-Signature")); err != nil {
		// A non-2xx response signals the gateway to retry the whole event.
		writeError(w, err)
		return
	}

	writeSuccess(w, map[string]bool{"received": true})
}

type mailerEvent struct {
	Type string `json:"type"`
	Data struct {
		EmailID string   `json:"email_id"`
		To      []string `json:"to"`
		Subject string   `json:"subject"`
	} `json:"data"`
}

// MailerWebhook handler
// @Summary Mail delivery events
// @Description Receive bounce/complaint/delivery callbacks from the email provider; logged only
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errors.CustomError
// @Router /internal/webhooks/mailer [post]
func (s *RestHandler) MailerWebhook(w http.ResponseWriter, r *http.Request) {
	var event mailerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	// Delivery outcomes are correlated via the order_id/status tags attached
	// at send time. No application state changes on these events today.
	logger.Info("mail delivery event",
		zap.String("type", event.Type),
		zap.String("email_id", event.Data.EmailID),
		zap.Strings("to", event.Data.To))

	writeSuccess(w, map[string]bool{"received": true})
}
