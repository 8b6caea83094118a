package http

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

type CheckoutService interface {
	SubmitCheckout(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*domain.Order, error)
	GetLastOrder(ctx context.Context, sessionID string) (*domain.Order, error)
	ResetLastOrder(ctx context.Context, sessionID string) error
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
	log      *zap.Logger
}

func NewCheckoutHandler(checkout CheckoutService, timeout time.Duration, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, timeout: timeout, log: log}
}

type OrderResponse struct {
	ID        string              `json:"id"`
	Customer  domain.CustomerInfo `json:"customer"`
	Items     []CartItemDTO       `json:"items"`
	Total     string              `json:"total"`
	Currency  string              `json:"currency"`
	OrderDate string              `json:"order_date"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]CartItemDTO, len(order.Items))
	for i, item := range order.Items {
		items[i] = CartItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.StringFixed(2),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().StringFixed(2),
		}
	}
	return OrderResponse{
		ID:        order.ID.String(),
		Customer:  order.Customer,
		Items:     items,
		Total:     order.Total.StringFixed(2),
		Currency:  order.Currency,
		OrderDate: order.CreatedAt.Format(time.DateTime),
	}
}

// decodeCustomer accepts a JSON body or an HTML form post.
func decodeCustomer(r *http.Request) (domain.CustomerInfo, error) {
	var customer domain.CustomerInfo

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&customer)
		return customer, err
	}

	if err := r.ParseForm(); err != nil {
		return customer, err
	}
	customer = domain.CustomerInfo{
		FirstName:     r.PostForm.Get("first_name"),
		LastName:      r.PostForm.Get("last_name"),
		Email:         r.PostForm.Get("email"),
		Phone:         r.PostForm.Get("phone"),
		Address:       r.PostForm.Get("address"),
		City:          r.PostForm.Get("city"),
		PostalCode:    r.PostForm.Get("postal_code"),
		PaymentMethod: r.PostForm.Get("payment_method"),
	}
	return customer, nil
}

func (h *CheckoutHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	customer, err := decodeCustomer(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid checkout body")
		return
	}

	order, err := h.checkout.SubmitCheckout(ctx, sessionID(r), customer)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	w.Header().Set("Location", "/api/order-success")
	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *CheckoutHandler) GetLastOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.checkout.GetLastOrder(ctx, sessionID(r))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *CheckoutHandler) ResetLastOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.checkout.ResetLastOrder(ctx, sessionID(r)); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
