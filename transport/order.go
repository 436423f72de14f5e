package transport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	utilsContext "github.com/roastline/storefront/utils/context"
	"github.com/roastline/storefront/utils/errors"
	validatorx "github.com/roastline/storefront/utils/validator"
)

// ListOrders handler
// @Summary List own orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.OrderEntity
// @Failure 401 {object} errors.CustomError
// @Router /orders [get]
func (s *RestHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utilsContext.GetUserID(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	res, err := s.OrderApp.ListOrdersByUser(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// GetOrder handler
// @Summary Get order
// @Description Get an order with its items; customers only see their own
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} model.OrderEntity
// @Failure 404 {object} errors.CustomError
// @Router /orders/{id} [get]
func (s *RestHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := s.OrderApp.GetOrder(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}

// UpdateOrderStatus handler
// @Summary Update order status
// @Description Move an order through the fulfillment state machine
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body model.UpdateOrderStatusRequest true "Requested status"
// @Success 200 {object} model.UpdateOrderStatusResponse
// @Failure 400 {object} errors.CustomError
// @Failure 404 {object} errors.CustomError
// @Router /orders/{id}/status [post]
func (s *RestHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	status, err := s.OrderApp.UpdateStatus(ctx, mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, model.UpdateOrderStatusResponse{
		Message: "order status updated",
		Status:  status,
	})
}

// AdminListOrders handler
// @Summary List all orders
// @Description Paginated order listing for the admin back-office
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Success 200 {object} model.OrderListResponse
// @Failure 403 {object} errors.CustomError
// @Router /admin/orders [get]
func (s *RestHandler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	res, err := s.OrderApp.ListOrders(ctx, page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}
