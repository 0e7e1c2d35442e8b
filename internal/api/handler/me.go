package handler

import (
	"net/http"

	"github.com/eline/driftline/internal/api/middleware"
	"github.com/eline/driftline/internal/api/request"
	"github.com/eline/driftline/internal/api/response"
	"github.com/eline/driftline/internal/core"
)

type Me struct {
	svc *core.UserService
}

func NewMe(svc *core.UserService) *Me {
	return &Me{svc: svc}
}

// Get returns the authenticated user's profile.
//
//	@Summary      Get profile
//	@Description  Return the profile of the authenticated user
//	@Tags         Profile
//	@Produce      json
//	@Success      200  {object}  model.User
//	@Failure      401  {object}  response.ErrorResponse
//	@Security     BearerAuth
//	@Router       /api/v1/me [get]
func (h *Me) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	user, err := h.svc.GetByID(r.Context(), claims.Sub)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}

type updateMeRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1"`
	Company     *string `json:"company"`
}

// Update changes the authenticated user's profile. Omitted fields keep
// their stored values.
//
//	@Summary      Update profile
//	@Description  Update display name or company; omitted fields are left unchanged
//	@Tags         Profile
//	@Accept       json
//	@Produce      json
//	@Param        body  body      updateMeRequest  true  "Fields to update"
//	@Success      200   {object}  model.User
//	@Failure      400   {object}  response.ErrorResponse
//	@Failure      401   {object}  response.ErrorResponse
//	@Security     BearerAuth
//	@Router       /api/v1/me [patch]
func (h *Me) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	var req updateMeRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), claims.Sub, req.DisplayName, req.Company)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}
