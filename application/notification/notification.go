package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	"github.com/roastline/storefront/thirdparty/mailer"
	"github.com/roastline/storefront/utils/logger"
	"go.uber.org/zap"
)

// NotificationApp renders and sends order-status emails. Delivery is
// best-effort throughout: the order state change is the authoritative
// outcome, so mailer failures are logged and never propagated.
type NotificationApp interface {
	SendStatusChange(ctx context.Context, order *model.OrderEntity, previous constant.OrderStatus) error
}

type notificationAppImpl struct {
	sender mailer.Sender
}

func NewNotificationApp(sender mailer.Sender) NotificationApp {
	return &notificationAppImpl{sender: sender}
}

type statusCopy struct {
	subject string
	heading string
	intro   string
}

var copyByStatus = map[constant.OrderStatus]statusCopy{
	constant.OrderStatusProcessing: {
		subject: "Order %s confirmed",
		heading: "Thanks for your order!",
		intro:   "We've received your payment and are getting your coffee ready.",
	},
	constant.OrderStatusShipped: {
		subject: "Order %s is on its way",
		heading: "Your order has shipped",
		intro:   "Your coffee left our roastery and is on its way to you.",
	},
	constant.OrderStatusDelivered: {
		subject: "Order %s delivered",
		heading: "Your order has arrived",
		intro:   "We hope you enjoy every cup. Thanks for brewing with us.",
	},
	constant.OrderStatusCancelled: {
		subject: "Order %s cancelled",
		heading: "Your order was cancelled",
		intro:   "This order has been cancelled. If you were charged, the refund is on its way.",
	},
}

var bodyTemplate = template.Must(template.New("order-status").Parse(`<h1>{{.Heading}}</h1>
<p>{{.Intro}}</p>
<p>Order <strong>#{{.OrderNumber}}</strong></p>
<table>
{{range .Items}}<tr><td>{{.Name}} &times; {{.Quantity}}</td><td>{{printf "%.2f" .TotalPrice}}</td></tr>
{{end}}</table>
<p>Subtotal: {{printf "%.2f" .Subtotal}}<br>
Shipping: {{printf "%.2f" .ShippingFee}}<br>
<strong>Total: {{printf "%.2f" .TotalAmount}}</strong></p>
<p>Shipping to:<br>
{{.CustomerName}}<br>
{{.AddressLine1}}<br>
{{if .AddressLine2}}{{.AddressLine2}}<br>{{end}}{{.City}} {{.PostalCode}}<br>
{{.Country}}</p>`))

type bodyData struct {
	Heading      string
	Intro        string
	OrderNumber  string
	Items        []model.OrderItemEntity
	Subtotal     float64
	ShippingFee  float64
	TotalAmount  float64
	CustomerName string
	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	Country      string
}

// orderNumber is the short human-facing form of the order id.
func orderNumber(orderID string) string {
	id := strings.ReplaceAll(orderID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func (s *notificationAppImpl) SendStatusChange(ctx context.Context, order *model.OrderEntity, previous constant.OrderStatus) error {
	if order.CustomerEmail == "" {
		logger.Warn("[SendStatusChange] order has no customer email, skipping",
			zap.String("order_id", order.ID))
		return nil
	}

	copyBlock, ok := copyByStatus[order.Status]
	if !ok {
		logger.Warn("[SendStatusChange] no template for status, skipping",
			zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	data := bodyData{
		Heading:      copyBlock.heading,
		Intro:        copyBlock.intro,
		OrderNumber:  orderNumber(order.ID),
		Items:        order.Items,
		ShippingFee:  order.ShippingFee,
		TotalAmount:  order.TotalAmount,
		Subtotal:     order.TotalAmount - order.ShippingFee,
		CustomerName: order.CustomerName,
		AddressLine1: order.ShippingAddressLine1,
		City:         order.ShippingCity,
		PostalCode:   order.ShippingPostalCode,
		Country:      order.ShippingCountry,
	}
	if order.ShippingAddressLine2 != nil {
		data.AddressLine2 = *order.ShippingAddressLine2
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, data); err != nil {
		logger.Error("[SendStatusChange] render body", zap.String("error", err.Error()))
		return nil
	}

	msg := &mailer.Message{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf(copyBlock.subject, "#"+orderNumber(order.ID)),
		HTML:    body.String(),
		Tags: map[string]string{
			"order_id": order.ID,
			"status":   string(order.Status),
		},
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		logger.Error("[SendStatusChange] send email",
			zap.String("order_id", order.ID),
			zap.String("previous_status", string(previous)),
			zap.String("new_status", string(order.Status)),
			zap.String("error", err.Error()))
	}

	return nil
}
