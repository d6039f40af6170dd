// Package handler exposes the REST API. Handlers stay thin: they decode and
// validate the request shape, delegate to the domain services, and map domain
// errors onto HTTP status codes.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/freshbasket/orderd/internal/domain/auth"
	"github.com/freshbasket/orderd/internal/domain/banner"
	"github.com/freshbasket/orderd/internal/domain/member"
	"github.com/freshbasket/orderd/internal/domain/newsletter"
	"github.com/freshbasket/orderd/internal/domain/order"
	"github.com/freshbasket/orderd/internal/domain/product"
	"github.com/freshbasket/orderd/internal/domain/report"
	"github.com/freshbasket/orderd/internal/domain/user"
)

// Handler implements the REST API over the injected domain services and
// repositories.
type Handler struct {
	orders     *order.Service
	users      *user.Service
	tokens     *auth.TokenManager
	reports    *report.Service
	products   product.Repository
	members    member.Repository
	newsletter newsletter.Repository
	banners    banner.Repository
}

// New constructs a Handler with the required dependencies.
func New(
	orders *order.Service,
	users *user.Service,
	tokens *auth.TokenManager,
	reports *report.Service,
	products product.Repository,
	members member.Repository,
	news newsletter.Repository,
	banners banner.Repository,
) *Handler {
	return &Handler{
		orders:     orders,
		users:      users,
		tokens:     tokens,
		reports:    reports,
		products:   products,
		members:    members,
		newsletter: news,
		banners:    banners,
	}
}

// Routes registers every API endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/order", h.optionalAuth(h.placeOrder))
	mux.HandleFunc("GET /api/order", h.listOrders)
	mux.HandleFunc("POST /api/order/{id}/accept", h.requireAuth(h.acceptOrder))

	mux.HandleFunc("GET /api/dashboard", h.dashboardSummary)
	mux.HandleFunc("GET /api/user/dashboard", h.requireAuth(h.userDashboard))

	mux.HandleFunc("POST /api/users/register", h.registerUser)
	mux.HandleFunc("POST /api/users/login", h.login)

	mux.HandleFunc("POST /api/register", h.registerMember)
	mux.HandleFunc("GET /api/registers", h.listMembers)
	mux.HandleFunc("GET /api/members", h.recentMembers)

	mux.HandleFunc("POST /api/fruits", h.addFruit)
	mux.HandleFunc("GET /api/fruits", h.listFruits)

	mux.HandleFunc("POST /api/newsletter", h.subscribe)
	mux.HandleFunc("GET /api/newsletter", h.listSubscribers)

	mux.HandleFunc("POST /api/banner", h.addBanner)
	mux.HandleFunc("GET /api/banners", h.listBanners)

	return mux
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON decodes the request body into dst, rejecting unknown fields so
// malformed payloads fail before any store access.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(ctx).Error("encode response", zap.Error(err))
	}
}

func respondMessage(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	respondJSON(ctx, w, status, messageResponse{Message: msg})
}

// respondInternal logs the cause and hides it behind a generic 500 message.
func respondInternal(ctx context.Context, w http.ResponseWriter, err error) {
	zctx.From(ctx).Error("request failed", zap.Error(err))
	respondMessage(ctx, w, http.StatusInternalServerError, "Internal Server Error")
}
