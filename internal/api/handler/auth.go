package handler

import (
	"net/http"

	"github.com/eline/driftline/internal/api/request"
	"github.com/eline/driftline/internal/api/response"
	"github.com/eline/driftline/internal/core"
	"github.com/eline/driftline/internal/model"
)

type Auth struct {
	svc *core.AuthService
}

func NewAuth(svc *core.AuthService) *Auth {
	return &Auth{svc: svc}
}

type signupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
}

type signupResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Signup registers a new user and returns a JWT token.
//
//	@Summary      Register user
//	@Description  Create an account with email, password, and display name
//	@Tags         Authentication
//	@Accept       json
//	@Produce      json
//	@Param        body  body      signupRequest  true  "Account details"
//	@Success      201   {object}  signupResponse
//	@Failure      400   {object}  response.ErrorResponse
//	@Failure      409   {object}  response.ErrorResponse
//	@Router       /auth/signup [post]
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	token, err := h.svc.IssueToken(user)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, signupResponse{Token: token, User: user})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates a user and returns a JWT token.
//
//	@Summary      Authenticate user
//	@Description  Authenticate with email and password to receive a JWT token
//	@Tags         Authentication
//	@Accept       json
//	@Produce      json
//	@Param        body  body      loginRequest  true  "Login credentials"
//	@Success      200   {object}  loginResponse
//	@Failure      400   {object}  response.ErrorResponse
//	@Failure      401   {object}  response.ErrorResponse
//	@Router       /auth/login [post]
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}
