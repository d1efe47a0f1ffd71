package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velorie/teamhub-backend/api/responses"
	"github.com/velorie/teamhub-backend/api/validators"
	"github.com/velorie/teamhub-backend/internal/orders"
	pkgerrors "github.com/velorie/teamhub-backend/pkg/errors"
	"github.com/velorie/teamhub-backend/pkg/logger"
)

type createOrderRequest struct {
	Client  string          `json:"client" validate:"required,min=1,max=256"`
	DueDate time.Time       `json:"dueDate" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
	Todo    string          `json:"todo" validate:"required,max=2000"`
}

// CreateOrder registers a client engagement with a due date.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), orders.CreateInput{
			Client:  body.Client,
			DueDate: body.DueDate,
			Amount:  body.Amount,
			Todo:    body.Todo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toOrderView(order))
	}
}

// ListOrders returns the most recent orders, newest first.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]orderView, 0, len(list))
		for i := range list {
			views = append(views, toOrderView(&list[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

type completeOrderResponse struct {
	Completed bool     `json:"completed"`
	Admin     userView `json:"admin"`
}

// CompleteOrder closes the order and credits its amount to the admin wallet.
func CompleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		admin, err := svc.Complete(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, completeOrderResponse{
			Completed: true,
			Admin:     toUserView(admin),
		})
	}
}
