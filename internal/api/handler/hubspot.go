package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/eline/driftline/internal/api/middleware"
	"github.com/eline/driftline/internal/api/request"
	"github.com/eline/driftline/internal/api/response"
	"github.com/eline/driftline/internal/core"
	"github.com/eline/driftline/internal/hubspot"
)

type HubSpot struct {
	tokens  *core.TokenService
	manager *core.TokenManager
	client  core.ProviderClient
}

func NewHubSpot(tokens *core.TokenService, manager *core.TokenManager, client core.ProviderClient) *HubSpot {
	return &HubSpot{tokens: tokens, manager: manager, client: client}
}

type statusResponse struct {
	Connected   bool       `json:"connected"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// Status reports whether the user has a HubSpot connection.
//
//	@Summary      Connection status
//	@Description  Report whether the authenticated user has connected HubSpot
//	@Tags         HubSpot
//	@Produce      json
//	@Success      200  {object}  statusResponse
//	@Failure      401  {object}  response.ErrorResponse
//	@Security     BearerAuth
//	@Router       /api/v1/hubspot/status [get]
func (h *HubSpot) Status(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	rec, err := h.tokens.Read(r.Context(), claims.Sub)
	if err != nil {
		if errors.Is(err, core.ErrNoToken) {
			response.WriteJSON(w, http.StatusOK, statusResponse{Connected: false})
			return
		}
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, statusResponse{
		Connected:   true,
		ExpiresAt:   rec.ExpiresAt,
		ConnectedAt: &rec.CreatedAt,
	})
}

// Account returns the connected HubSpot account's metadata.
//
//	@Summary      Account details
//	@Description  Fetch portal metadata for the connected HubSpot account
//	@Tags         HubSpot
//	@Produce      json
//	@Success      200  {object}  hubspot.AccountInfo
//	@Failure      401  {object}  response.ErrorResponse
//	@Failure      409  {object}  response.ErrorResponse
//	@Failure      502  {object}  response.ErrorResponse
//	@Security     BearerAuth
//	@Router       /api/v1/hubspot/account [get]
func (h *HubSpot) Account(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	access, err := h.manager.GetValidAccessToken(r.Context(), claims.Sub)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	info, err := h.client.AccountInfo(r.Context(), access)
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusOK, info)
}

type createContactRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

// CreateContact creates a CRM contact in the connected HubSpot portal.
//
//	@Summary      Create contact
//	@Description  Create a contact in the connected HubSpot CRM
//	@Tags         HubSpot
//	@Accept       json
//	@Produce      json
//	@Param        body  body      createContactRequest  true  "Contact properties"
//	@Success      201   {object}  hubspot.Contact
//	@Failure      400   {object}  response.ErrorResponse
//	@Failure      401   {object}  response.ErrorResponse
//	@Failure      409   {object}  response.ErrorResponse
//	@Failure      502   {object}  response.ErrorResponse
//	@Security     BearerAuth
//	@Router       /api/v1/hubspot/contacts [post]
func (h *HubSpot) CreateContact(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	var req createContactRequest
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	access, err := h.manager.GetValidAccessToken(r.Context(), claims.Sub)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	contact, err := h.client.CreateContact(r.Context(), access, hubspot.ContactProperties{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Phone:     req.Phone,
	})
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	response.WriteJSON(w, http.StatusCreated, contact)
}

// Disconnect removes the user's stored HubSpot tokens.
//
//	@Summary      Disconnect HubSpot
//	@Description  Delete the stored HubSpot tokens for the authenticated user
//	@Tags         HubSpot
//	@Produce      json
//	@Success      204  "No Content"
//	@Failure      401  {object}  response.ErrorResponse
//	@Failure      404  {object}  response.ErrorResponse
//	@Security     BearerAuth
//	@Router       /api/v1/hubspot/connection [delete]
func (h *HubSpot) Disconnect(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.WriteError(w, http.StatusUnauthorized, "missing claims")
		return
	}

	if err := h.tokens.Delete(r.Context(), claims.Sub); err != nil {
		if errors.Is(err, core.ErrNoToken) {
			response.WriteError(w, http.StatusNotFound, "hubspot is not connected")
			return
		}
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
