package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshbasket/orderd/internal/domain/banner"
	"github.com/freshbasket/orderd/internal/domain/member"
	"github.com/freshbasket/orderd/internal/domain/newsletter"
	"github.com/freshbasket/orderd/internal/domain/product"
)

const recentMembersLimit = 10

type addFruitRequest struct {
	Name      string           `json:"name"`
	Weight    string           `json:"weight"`
	Pieces    string           `json:"pieces"`
	BoxWeight string           `json:"boxWeight"`
	BoxPrice  *decimal.Decimal `json:"boxPrice"`
	Rating    *decimal.Decimal `json:"rating"`
	Quantity  string           `json:"quantity"`
	Image     string           `json:"image"`
}

type fruitResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Weight    string  `json:"weight"`
	Pieces    string  `json:"pieces"`
	BoxWeight string  `json:"boxWeight"`
	BoxPrice  float64 `json:"boxPrice"`
	Rating    float64 `json:"rating"`
	Quantity  string  `json:"quantity"`
	Image     string  `json:"image"`
}

// addFruit creates a catalog entry. Images are plain URLs; upload mechanics
// live outside this service.
func (h *Handler) addFruit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addFruitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondMessage(ctx, w, http.StatusBadRequest, "name is required")
		return
	}
	if req.BoxPrice == nil || req.BoxPrice.IsNegative() {
		respondMessage(ctx, w, http.StatusBadRequest, "boxPrice is required and must not be negative")
		return
	}

	rating := decimal.Zero
	if req.Rating != nil {
		rating = *req.Rating
	}

	p := &product.Product{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Weight:    req.Weight,
		Pieces:    req.Pieces,
		BoxWeight: req.BoxWeight,
		BoxPrice:  *req.BoxPrice,
		Rating:    rating,
		Quantity:  req.Quantity,
		Image:     req.Image,
	}
	if err := h.products.Create(ctx, p); err != nil {
		respondInternal(ctx, w, err)
		return
	}

	respondMessage(ctx, w, http.StatusCreated, "Fruit added successfully")
}

func (h *Handler) listFruits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.products.List(ctx)
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}

	out := make([]fruitResponse, len(products))
	for i, p := range products {
		out[i] = fruitResponse{
			ID:        p.ID,
			Name:      p.Name,
			Weight:    p.Weight,
			Pieces:    p.Pieces,
			BoxWeight: p.BoxWeight,
			BoxPrice:  p.BoxPrice.InexactFloat64(),
			Rating:    p.Rating.InexactFloat64(),
			Quantity:  p.Quantity,
			Image:     p.Image,
		}
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

type registerMemberRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	ShopName  string `json:"shopName"`
}

type memberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	ShopName  string    `json:"shopName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) registerMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" || req.Phone == "" || req.ShopName == "" {
		respondMessage(ctx, w, http.StatusBadRequest, "All fields are required")
		return
	}

	m := &member.Member{
		ID:        uuid.New().String(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		ShopName:  req.ShopName,
	}
	if err := h.members.Create(ctx, m); err != nil {
		respondInternal(ctx, w, err)
		return
	}

	respondMessage(ctx, w, http.StatusCreated, "Registration successful")
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, err := h.members.List(ctx)
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toMemberResponses(members))
}

func (h *Handler) recentMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, err := h.members.Recent(ctx, recentMembersLimit)
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, toMemberResponses(members))
}

func toMemberResponses(members []member.Member) []memberResponse {
	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = memberResponse{
			ID:        m.ID,
			Email:     m.Email,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Phone:     m.Phone,
			ShopName:  m.ShopName,
			CreatedAt: m.CreatedAt,
		}
	}
	return out
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type subscriberResponse struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		respondMessage(ctx, w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.newsletter.Subscribe(ctx, req.Email); err != nil {
		if errors.Is(err, newsletter.ErrAlreadySubscribed) {
			respondMessage(ctx, w, http.StatusBadRequest, "Already subscribed")
			return
		}
		respondInternal(ctx, w, err)
		return
	}

	respondMessage(ctx, w, http.StatusCreated, "Subscribed successfully")
}

func (h *Handler) listSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := h.newsletter.List(ctx)
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}

	out := make([]subscriberResponse, len(subs))
	for i, s := range subs {
		out[i] = subscriberResponse{Email: s.Email, CreatedAt: s.CreatedAt}
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

type addBannerRequest struct {
	ImageURL string `json:"imageUrl"`
}

type bannerResponse struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type addBannerResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

// addBanner stores a banner reference; the repository keeps only the five
// newest banners.
func (h *Handler) addBanner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addBannerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImageURL == "" {
		respondMessage(ctx, w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	b := &banner.Banner{ID: uuid.New().String(), ImageURL: req.ImageURL}
	if err := h.banners.Add(ctx, b); err != nil {
		respondInternal(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, addBannerResponse{
		Message:  "Banner uploaded",
		ImageURL: req.ImageURL,
	})
}

func (h *Handler) listBanners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	banners, err := h.banners.List(ctx)
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}

	out := make([]bannerResponse, len(banners))
	for i, b := range banners {
		out[i] = bannerResponse{ID: b.ID, ImageURL: b.ImageURL, CreatedAt: b.CreatedAt}
	}
	respondJSON(ctx, w, http.StatusOK, out)
}
