package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/freshbasket/orderd/internal/domain/user"
)

type dashboardResponse struct {
	TotalIncome float64 `json:"totalIncome"`
	TotalOrders int64   `json:"totalOrders"`
	TotalUsers  int64   `json:"totalUsers"`
	TotalItems  int64   `json:"totalItems"`
}

type profileResponse struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

type userDashboardResponse struct {
	User   profileResponse `json:"user"`
	Orders []orderResponse `json:"orders"`
}

// dashboardSummary returns store-wide totals. The income figure is a live
// aggregation over the ledger, so it always matches the persisted orders.
func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.reports.DashboardSummary(ctx)
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, dashboardResponse{
		TotalIncome: summary.TotalIncome.InexactFloat64(),
		TotalOrders: summary.TotalOrders,
		TotalUsers:  summary.TotalUsers,
		TotalItems:  summary.TotalItems,
	})
}

// userDashboard returns the authenticated user's profile and their orders
// from the trailing 30 days.
func (h *Handler) userDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		respondMessage(ctx, w, http.StatusUnauthorized, "authorization required")
		return
	}

	dash, err := h.reports.UserDashboard(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondMessage(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		respondInternal(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, userDashboardResponse{
		User: profileResponse{
			Username: dash.Profile.Username,
			Phone:    dash.Profile.Phone,
		},
		Orders: toOrderResponses(dash.RecentOrders),
	})
}
