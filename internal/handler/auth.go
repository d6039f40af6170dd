package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/freshbasket/orderd/internal/domain/auth"
	"github.com/freshbasket/orderd/internal/domain/user"
)

type registerUserRequest struct {
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

type registerUserResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

// registerUser creates a new account with a hashed password.
func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(ctx, req.Username, req.Phone, req.Password)
	if err != nil {
		var mfErr *user.MissingFieldError
		switch {
		case errors.As(err, &mfErr):
			respondMessage(ctx, w, http.StatusBadRequest, mfErr.Error())
		case errors.Is(err, user.ErrPhoneTaken):
			respondMessage(ctx, w, http.StatusConflict, "phone number already registered")
		default:
			respondInternal(ctx, w, err)
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, registerUserResponse{
		Message: "Registration successful",
		User:    toUserResponse(u),
	})
}

// login verifies credentials and issues a bearer token carrying the user's
// id, username, and phone.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondMessage(ctx, w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		respondInternal(ctx, w, err)
		return
	}

	token, err := h.tokens.Issue(auth.Claims{
		UserID:   u.ID,
		Username: u.Username,
		Phone:    u.Phone,
	})
	if err != nil {
		respondInternal(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    toUserResponse(u),
	})
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
