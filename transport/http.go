package transport

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/gorilla/mux"
	cartapp "github.com/roastline/storefront/application/cart"
	checkoutapp "github.com/roastline/storefront/application/checkout"
	orderapp "github.com/roastline/storefront/application/order"
	paymentapp "github.com/roastline/storefront/application/payment"
	productapp "github.com/roastline/storefront/application/product"
	userapp "github.com/roastline/storefront/application/user"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/utils/errors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RestHandler struct {
	UserApp     userapp.UserApp
	ProductApp  productapp.ProductApp
	CartApp     cartapp.CartApp
	CheckoutApp checkoutapp.CheckoutApp
	PaymentApp  paymentapp.PaymentApp
	OrderApp    orderapp.OrderApp
}

func NewTransport(rh *RestHandler, mailWebhookKey string) http.Handler {
	mux := mux.NewRouter()

	// Swagger UI
	mux.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	// Public catalog routes
	mux.HandleFunc("/products", rh.ListProducts).Methods(http.MethodGet)
	mux.HandleFunc("/products/{id}", rh.GetProduct).Methods(http.MethodGet)

	// Gateway webhook: public, verified by signature instead of session
	mux.HandleFunc("/webhooks/stripe", rh.StripeWebhook).Methods(http.MethodPost)

	// Mail provider delivery events: static API key
	mux.Handle("/internal/webhooks/mailer",
		InternalMiddleware(mailWebhookKey)(http.HandlerFunc(rh.MailerWebhook))).Methods(http.MethodPost)

	// Authenticated routes
	mux.HandleFunc("/cart", rh.GetCart).Methods(http.MethodGet)
	mux.HandleFunc("/cart", rh.ClearCart).Methods(http.MethodDelete)
	mux.HandleFunc("/cart/items", rh.AddCartItem).Methods(http.MethodPost)
	mux.HandleFunc("/cart/items/{productID}", rh.UpdateCartItem).Methods(http.MethodPatch)
	mux.HandleFunc("/cart/items/{productID}", rh.RemoveCartItem).Methods(http.MethodDelete)

	mux.HandleFunc("/checkout/session", rh.CreateCheckoutSession).Methods(http.MethodPost)

	mux.HandleFunc("/orders", rh.ListOrders).Methods(http.MethodGet)
	mux.HandleFunc("/orders/{id}", rh.GetOrder).Methods(http.MethodGet)
	mux.HandleFunc("/orders/{id}/status", rh.UpdateOrderStatus).Methods(http.MethodPost)

	// Admin back-office
	mux.HandleFunc("/admin/products", rh.CreateProduct).Methods(http.MethodPost)
	mux.HandleFunc("/admin/products/{id}", rh.UpdateProduct).Methods(http.MethodPut)
	mux.HandleFunc("/admin/products/{id}", rh.DeleteProduct).Methods(http.MethodDelete)
	mux.HandleFunc("/admin/orders", rh.AdminListOrders).Methods(http.MethodGet)

	// middleware
	mux.Use(LoggingMiddleware())
	mux.Use(AuthMiddleware(rh.UserApp))

	return mux
}

func writeSuccess(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var ce errors.CustomError
	if !goerrors.As(err, &ce) {
		ce = errors.SetCustomError(constant.ErrInternal)
	}

	w.WriteHeader(ce.ErrorHTTPCode())
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": ce.Error(),
		"error":   ce.ErrorCode(),
	})
}
