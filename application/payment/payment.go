package payment

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/roastline/storefront/application/notification"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	orderrepo "github.com/roastline/storefront/repository/order"
	productrepo "github.com/roastline/storefront/repository/product"
	txrepo "github.com/roastline/storefront/repository/tx"
	"github.com/roastline/storefront/thirdparty/rabbitmq"
	"github.com/roastline/storefront/thirdparty/stripe"
	"github.com/roastline/storefront/utils/errors"
	"github.com/roastline/storefront/utils/logger"
	"github.com/roastline/storefront/utils/money"
	"go.uber.org/zap"
)

// PaymentApp turns an at-least-once "session completed" webhook delivery into
// exactly one persisted order. Idempotency rests on two guards: a fast-path
// lookup by session id, and the unique constraint on orders.stripe_session_id
// which is the authoritative barrier under concurrent delivery.
type PaymentApp interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentAppImpl struct {
	txRepo      txrepo.TxRepository
	orderRepo   orderrepo.OrderRepository
	productRepo productrepo.ProductRepository
	gateway     stripe.Gateway
	notifier    notification.NotificationApp
	publisher   *rabbitmq.Publisher
}

func NewPaymentApp(txRepo txrepo.TxRepository, orderRepo orderrepo.OrderRepository, productRepo productrepo.ProductRepository, gateway stripe.Gateway, notifier notification.NotificationApp, publisher *rabbitmq.Publisher) PaymentApp {
	return &paymentAppImpl{
		txRepo:      txRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		notifier:    notifier,
		publisher:   publisher,
	}
}

func (s *paymentAppImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyEvent(payload, signature)
	if err != nil {
		logger.Error("[HandleWebhook] signature verification failed", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInvalidSignature)
	}

	if event.Type != stripe.EventCheckoutSessionCompleted {
		logger.Info("[HandleWebhook] ignoring event", zap.String("type", event.Type))
		return nil
	}

	sess := event.Session
	userID := sess.Metadata["user_id"]
	if userID == "" {
		// A paid session with no user identity cannot be reconciled. Surface
		// it as an operational error instead of dropping it silently.
		logger.Error("[HandleWebhook] session metadata missing user_id", zap.String("session_id", sess.ID))
		return errors.SetCustomErrorWithDetail(constant.ErrUnprocessableEvent, "missing user_id metadata")
	}

	// Fast-path idempotency check; re-delivered events are acknowledged
	// without side effects.
	existing, err := s.orderRepo.GetOrderBySessionID(ctx, sess.ID)
	if err != nil {
		logger.Error("[HandleWebhook] lookup order by session", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	if existing != nil {
		logger.Info("[HandleWebhook] order already exists for session, skipping",
			zap.String("session_id", sess.ID), zap.String("order_id", existing.ID))
		return nil
	}

	lineItems, err := s.gateway.ListSessionLineItems(ctx, sess.ID)
	if err != nil {
		logger.Error("[HandleWebhook] list session line items", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrPaymentGateway)
	}

	order := s.buildOrder(sess, userID)
	items := s.buildItems(order.ID, sess.ID, lineItems)

	if err := s.persistOrder(ctx, order, items); err != nil {
		return err
	}
	if order.ID == "" {
		// Duplicate delivery lost the insert race; the winner owns the order.
		return nil
	}

	s.decrementStock(ctx, items)

	order.Items = items
	if err := s.notifier.SendStatusChange(ctx, order, constant.OrderStatusPending); err != nil {
		logger.Error("[HandleWebhook] send confirmation", zap.String("error", err.Error()))
	}
	s.publishStatusChange(order, constant.OrderStatusPending)

	return nil
}

func (s *paymentAppImpl) buildOrder(sess *stripe.CompletedSession, userID string) *model.OrderEntity {
	order := &model.OrderEntity{
		ID:                    uuid.NewString(),
		UserID:                userID,
		Status:                constant.OrderStatusProcessing,
		TotalAmount:           money.FromMinorUnits(sess.AmountTotal),
		ShippingFee:           money.FromMinorUnits(sess.AmountShipping),
		StripeSessionID:       sess.ID,
		StripePaymentIntentID: sess.PaymentIntentID,
	}

	order.CustomerEmail = sess.Metadata["customer_email"]
	if order.CustomerEmail == "" {
		order.CustomerEmail = sess.CustomerEmail
	}
	order.CustomerName = sess.Metadata["shipping_name"]
	if order.CustomerName == "" {
		order.CustomerName = sess.CustomerName
	}
	phone := sess.Metadata["shipping_phone"]
	if phone == "" {
		phone = sess.CustomerPhone
	}
	if phone != "" {
		order.CustomerPhone = &phone
	}

	var addr model.ShippingAddress
	raw := sess.Metadata["shipping_address"]
	if raw == "" {
		logger.Warn("[HandleWebhook] session metadata missing shipping_address", zap.String("session_id", sess.ID))
	} else if err := json.Unmarshal([]byte(raw), &addr); err != nil {
		// A malformed address must not lose a paid order.
		logger.Warn("[HandleWebhook] unparseable shipping_address metadata",
			zap.String("session_id", sess.ID), zap.String("error", err.Error()))
	}
	order.ShippingAddressLine1 = addr.Line1
	if addr.Line2 != "" {
		line2 := addr.Line2
		order.ShippingAddressLine2 = &line2
	}
	order.ShippingCity = addr.City
	order.ShippingPostalCode = addr.PostalCode
	order.ShippingCountry = addr.Country

	return order
}

func (s *paymentAppImpl) buildItems(orderID, sessionID string, lineItems []stripe.LineItem) []model.OrderItemEntity {
	items := make([]model.OrderItemEntity, 0, len(lineItems))
	for _, li := range lineItems {
		item := model.OrderItemEntity{
			OrderID:    orderID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  money.FromMinorUnits(li.UnitAmount),
			TotalPrice: money.FromMinorUnits(li.AmountTotal),
		}

		// The embedded product_id is the sole mapping back to the catalog. An
		// unmatched line still becomes an order item: never lose a paid order
		// over a catalog mapping gap.
		if raw, ok := li.ProductMetadata["product_id"]; ok {
			if productID, err := strconv.ParseUint(raw, 10, 64); err == nil {
				item.ProductID = &productID
			} else {
				logger.Warn("[HandleWebhook] invalid product_id metadata",
					zap.String("session_id", sessionID), zap.String("product_id", raw))
			}
		} else {
			logger.Warn("[HandleWebhook] line item has no product_id metadata",
				zap.String("session_id", sessionID), zap.String("name", li.Name))
		}

		items = append(items, item)
	}
	return items
}

// persistOrder writes the order and its items in a single transaction so a
// partial failure can never leave an order without items. A unique violation
// on stripe_session_id means a concurrent delivery won the race; order.ID is
// blanked to signal the caller.
func (s *paymentAppImpl) persistOrder(ctx context.Context, order *model.OrderEntity, items []model.OrderItemEntity) error {
	tx, err := s.txRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("[HandleWebhook] begin tx", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	committed := false
	defer func() {
		if !committed {
			_ = s.txRepo.RollbackTx(tx)
		}
	}()

	if err := s.orderRepo.InsertOrderTx(ctx, tx, order); err != nil {
		if orderrepo.IsUniqueViolation(err) {
			logger.Info("[HandleWebhook] duplicate session insert, skipping",
				zap.String("session_id", order.StripeSessionID))
			order.ID = ""
			return nil
		}
		logger.Error("[HandleWebhook] insert order", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	if err := s.orderRepo.InsertOrderItemsTx(ctx, tx, items); err != nil {
		logger.Error("[HandleWebhook] insert order items", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}

	if err := s.txRepo.CommitTx(tx); err != nil {
		logger.Error("[HandleWebhook] commit tx", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	committed = true
	return nil
}

// decrementStock runs one atomic conditional update per resolved item.
// Failures are logged and never roll back the order: the payment is already
// durable.
func (s *paymentAppImpl) decrementStock(ctx context.Context, items []model.OrderItemEntity) {
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		ok, err := s.productRepo.DecrementStock(ctx, *item.ProductID, item.Quantity)
		if err != nil {
			logger.Error("[HandleWebhook] decrement stock",
				zap.Uint64("product_id", *item.ProductID), zap.String("error", err.Error()))
			continue
		}
		if !ok {
			logger.Warn("[HandleWebhook] insufficient stock for decrement",
				zap.Uint64("product_id", *item.ProductID), zap.Int64("quantity", item.Quantity))
		}
	}
}

func (s *paymentAppImpl) publishStatusChange(order *model.OrderEntity, previous constant.OrderStatus) {
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
		logger.Error("[HandleWebhook] publish status event", zap.String("error", err.Error()))
	}
}
