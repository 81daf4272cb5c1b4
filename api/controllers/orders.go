package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinehub-mw/dinehub-backend/api/middleware"
	"github.com/dinehub-mw/dinehub-backend/api/responses"
	"github.com/dinehub-mw/dinehub-backend/api/validators"
	"github.com/dinehub-mw/dinehub-backend/internal/orders"
	"github.com/dinehub-mw/dinehub-backend/pkg/enums"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
)

type placeOrderRequest struct {
	EstablishmentID     string                  `json:"establishment_id" validate:"required,uuid"`
	TableID             *string                 `json:"table_id,omitempty" validate:"omitempty,uuid"`
	GroupSessionID      *string                 `json:"group_session_id,omitempty" validate:"omitempty,uuid"`
	Items               []placeOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Total               decimal.Decimal         `json:"total" validate:"required"`
	PaymentMethod       string                  `json:"payment_method" validate:"required"`
	DineCoinsUsed       decimal.Decimal         `json:"dine_coins_used"`
	SpecialInstructions *string                 `json:"special_instructions,omitempty"`
}

type placeOrderItemRequest struct {
	MenuItemID          string  `json:"menu_item_id"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions *string `json:"special_instructions,omitempty"`
}

// PlaceOrder accepts a customer's order for an establishment.
func PlaceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		customerID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing caller identity"))
			return
		}

		var req placeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := buildPlaceOrderInput(customerID, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func buildPlaceOrderInput(customerID uuid.UUID, req placeOrderRequest) (orders.PlaceOrderInput, error) {
	establishmentID, err := uuid.Parse(req.EstablishmentID)
	if err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid establishment id")
	}

	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	input := orders.PlaceOrderInput{
		CustomerID:          customerID,
		EstablishmentID:     establishmentID,
		DeclaredTotal:       req.Total,
		PaymentMethod:       method,
		DineCoinsUsed:       req.DineCoinsUsed,
		SpecialInstructions: req.SpecialInstructions,
	}

	if req.TableID != nil {
		tableID, parseErr := uuid.Parse(*req.TableID)
		if parseErr != nil {
			return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid table id")
		}
		input.TableID = &tableID
	}
	if req.GroupSessionID != nil {
		sessionID, parseErr := uuid.Parse(*req.GroupSessionID)
		if parseErr != nil {
			return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid group session id")
		}
		input.GroupSessionID = &sessionID
	}

	for _, item := range req.Items {
		// Unknown or malformed item ids flow through as Nil so the service can
		// report all item problems in one response.
		menuItemID, _ := uuid.Parse(item.MenuItemID)
		input.Items = append(input.Items, orders.OrderItemInput{
			MenuItemID:          menuItemID,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return input, nil
}
