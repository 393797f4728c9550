package handlers

import (
	"errors"
	"net/http"

	"github.com/vaughan-dsouza/bookcart/internal/models"
	"github.com/vaughan-dsouza/bookcart/internal/session"
	"github.com/vaughan-dsouza/bookcart/internal/store"
	"github.com/vaughan-dsouza/bookcart/internal/token"
	"github.com/vaughan-dsouza/bookcart/internal/utils"
)

type AuthHandler struct {
	Users   *store.UserStore
	Tokens  *token.Service
	Revoker session.Revoker
}

func NewAuthHandler(users *store.UserStore, tokens *token.Service, revoker session.Revoker) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, Revoker: revoker}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token string `json:"token"`
}

type meResp struct {
	Role models.Role `json:"role"`
}

// -------------- REGISTER ---------------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, models.RoleUser)
}

func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, models.RoleAdmin)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, role models.Role) {
	var req credentialsReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	log := utils.Logger(r.Context())

	hash, err := utils.HashPassword(req.Password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		utils.JSONError(w, http.StatusBadRequest, "Password must be at most 72 bytes")
		return
	}
	if err != nil {
		log.Error("hash password", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Server error")
		return
	}

	err = h.Users.Create(r.Context(), req.Email, hash, role)
	if errors.Is(err, store.ErrConflict) {
		utils.JSONError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		log.Error("register user", "role", role, "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	utils.Success(w)
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	log := utils.Logger(r.Context())

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusUnauthorized, "User not found")
		return
	}
	if err != nil {
		log.Error("login lookup", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if !utils.CheckPassword(u.Password, req.Password) {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	tok, _, err := h.Tokens.Issue(u.Email, u.Role)
	if err != nil {
		log.Error("issue token", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.JSON(w, http.StatusOK, tokenResp{Token: tok})
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.ClaimsFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), claims.Email)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.Logger(r.Context()).Error("me lookup", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.JSON(w, http.StatusOK, meResp{Role: u.Role})
}

// -------------- LOGOUT (protected) -----------

// Logout revokes the presented token until it would have expired.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.ClaimsFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	if err := h.Revoker.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		utils.Logger(r.Context()).Error("revoke token", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Server error")
		return
	}

	utils.Success(w)
}
