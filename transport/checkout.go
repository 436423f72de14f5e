package transport

import (
	"encoding/json"
	"net/http"

	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	utilsContext "github.com/roastline/storefront/utils/context"
	"github.com/roastline/storefront/utils/errors"
	validatorx "github.com/roastline/storefront/utils/validator"
)

// CreateCheckoutSession handler
// @Summary Create checkout session
// @Description Create a hosted payment session for the cart snapshot
// @Tags Checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CheckoutRequest true "Checkout request"
// @Success 200 {object} model.CheckoutResponse
// @Failure 401 {object} errors.CustomError
// @Failure 500 {object} errors.CustomError
// @Router /checkout/session [post]
func (s *RestHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := utilsContext.GetUserID(ctx)
	if !ok {
		writeError(w, errors.SetCustomError(constant.ErrUnauthorize))
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}
	if err := validatorx.ValidateStruct(&req); err != nil {
		writeError(w, errors.SetCustomError(constant.ErrInvalidRequest))
		return
	}

	res, err := s.CheckoutApp.CreateSession(ctx, userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, res)
}
