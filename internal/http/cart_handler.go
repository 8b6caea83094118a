package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, productID int64) (int, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) error
	RemoveItem(ctx context.Context, sessionID string, productID int64) (int, error)
	Count(ctx context.Context, sessionID string) (int, error)
	Total(ctx context.Context, sessionID string) (decimal.Decimal, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts CartService, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, timeout: timeout, log: log}
}

// Product ids and quantities arrive from browser scripts as numbers or
// numeric strings.
type CartItemRequestDTO struct {
	ProductID json.RawMessage `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

type CartItemDTO struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartResponse struct {
	Items []CartItemDTO `json:"items"`
	Total string        `json:"total"`
	Count int           `json:"count"`
}

type CartCountResponse struct {
	Success   bool `json:"success"`
	CartCount int  `json:"cart_count"`
}

func toCartResponse(cart *domain.Cart) CartResponse {
	items := make([]CartItemDTO, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.StringFixed(2),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().StringFixed(2),
		}
	}
	return CartResponse{Items: items, Total: cart.Total().StringFixed(2), Count: cart.Count()}
}

func parseProductID(raw json.RawMessage) (int64, error) {
	return domain.ParseProductID(string(raw))
}

func (h *CartHandler) decode(w http.ResponseWriter, r *http.Request) (CartItemRequestDTO, int64, bool) {
	var req CartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return req, 0, false
	}
	productID, err := parseProductID(req.ProductID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
		return req, 0, false
	}
	return req, productID, true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, sessionID(r))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	_, productID, ok := h.decode(w, r)
	if !ok {
		return
	}

	count, err := h.carts.AddItem(ctx, sessionID(r), productID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, CartCountResponse{Success: true, CartCount: count})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	_, productID, ok := h.decode(w, r)
	if !ok {
		return
	}

	count, err := h.carts.RemoveItem(ctx, sessionID(r), productID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, CartCountResponse{Success: true, CartCount: count})
}

// UpdateQuantity treats a missing quantity as 1 and an unparseable one as 0,
// which removes the item.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, productID, ok := h.decode(w, r)
	if !ok {
		return
	}

	quantity := 1
	if raw := strings.TrimSpace(string(req.Quantity)); raw != "" && raw != "null" {
		q, err := domain.ParseQuantity(raw)
		if err != nil {
			logger.WithContext(ctx, h.log).Info("invalid quantity, removing item",
				zap.Int64("product_id", productID),
				zap.String("quantity", raw),
			)
			q = 0
		}
		quantity = q
	}

	if err := h.carts.UpdateQuantity(ctx, sessionID(r), productID, quantity); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	count, err := h.carts.Count(ctx, sessionID(r))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *CartHandler) Total(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	total, err := h.carts.Total(ctx, sessionID(r))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"total": total.StringFixed(2)})
}
