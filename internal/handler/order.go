package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshbasket/orderd/internal/domain/order"
)

type cartItemRequest struct {
	Name     string           `json:"name"`
	Quantity int              `json:"quantity"`
	BoxPrice *decimal.Decimal `json:"boxPrice"`
}

type placeOrderRequest struct {
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	Phone     string            `json:"phone"`
	CartItems []cartItemRequest `json:"cartItems"`
}

type lineItemResponse struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type orderResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"userId,omitempty"`
	CustomerName string             `json:"customerName"`
	Address      string             `json:"address"`
	Phone        string             `json:"phone"`
	Items        []lineItemResponse `json:"items"`
	TotalAmount  float64            `json:"totalAmount"`
	Status       string             `json:"status"`
	PlacedAt     time.Time          `json:"placedAt"`
}

// placeOrder validates the cart, prices it server-side, and persists a new
// Pending order. An authenticated request takes its customer name and phone
// from the token claims, not the body.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart := make([]order.CartItem, len(req.CartItems))
	for i, item := range req.CartItems {
		if item.BoxPrice == nil {
			respondMessage(ctx, w, http.StatusBadRequest, "boxPrice is required")
			return
		}
		cart[i] = order.CartItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			BoxPrice: *item.BoxPrice,
		}
	}

	placeReq := order.PlaceOrderRequest{
		Customer: order.Customer{Name: req.Name, Address: req.Address, Phone: req.Phone},
		Cart:     cart,
	}
	if claims, ok := ClaimsFromContext(ctx); ok {
		placeReq.Identity = &order.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			Phone:    claims.Phone,
		}
	}

	if _, err := h.orders.PlaceOrder(ctx, placeReq); err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	respondMessage(ctx, w, http.StatusCreated, "Order saved successfully")
}

// listOrders returns the administrative view of all orders, newest first.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.orders.ListOrders(ctx, order.Filter{})
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toOrderResponses(orders))
}

// acceptOrder transitions a Pending order to Accepted.
func (h *Handler) acceptOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	o, err := h.orders.AdvanceStatus(ctx, r.PathValue("id"))
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toOrderResponse(*o))
}

// writeOrderError maps order-domain errors onto HTTP status codes.
func (h *Handler) writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		mfErr *order.MissingFieldError
		iqErr *order.InvalidQuantityError
		ipErr *order.InvalidPriceError
	)
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.As(err, &mfErr),
		errors.As(err, &iqErr),
		errors.As(err, &ipErr):
		respondMessage(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		respondMessage(ctx, w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrAlreadyAccepted):
		respondMessage(ctx, w, http.StatusConflict, "order already accepted")
	default:
		respondInternal(ctx, w, err)
	}
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]lineItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = lineItemResponse{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
			LineTotal: it.LineTotal.InexactFloat64(),
		}
	}
	return orderResponse{
		ID:           o.ID,
		UserID:       o.UserID,
		CustomerName: o.CustomerName,
		Address:      o.Address,
		Phone:        o.Phone,
		Items:        items,
		TotalAmount:  o.TotalAmount.InexactFloat64(),
		Status:       string(o.Status),
		PlacedAt:     o.PlacedAt,
	}
}

func toOrderResponses(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}
