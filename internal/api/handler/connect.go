package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eline/driftline/internal/core"
)

// Connect drives the browser-facing HubSpot connect flow. Every outcome
// is a redirect back to the site so the user never sees raw JSON.
type Connect struct {
	auth        *core.AuthService
	connect     *core.ConnectService
	siteBaseURL string
}

func NewConnect(auth *core.AuthService, connect *core.ConnectService, siteBaseURL string) *Connect {
	return &Connect{auth: auth, connect: connect, siteBaseURL: siteBaseURL}
}

// Flow dispatches a connect request on its step query parameter.
//
//	@Summary      HubSpot connect flow
//	@Description  Drive the HubSpot OAuth flow; dispatches on the step query parameter
//	@Tags         HubSpot
//	@Param        step          query  string  false  "Flow step: authorize or finalize; absent for the legacy flow"
//	@Param        returnUrl     query  string  false  "Authorization URL to redirect to (authorize and legacy steps)"
//	@Param        code          query  string  false  "Authorization code from HubSpot (finalize and legacy steps)"
//	@Param        state         query  string  false  "State token issued by the authorize step"
//	@Param        access_token  query  string  false  "JWT for top-level navigations that cannot carry headers"
//	@Success      302  "Redirect"
//	@Router       /connect/hubspot [get]
func (h *Connect) Flow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// HubSpot reports user-facing failures, like denied consent, in an
	// error query parameter instead of a code.
	if provErr := q.Get("error"); provErr != "" {
		zerolog.Ctx(r.Context()).Warn().Str("provider_error", provErr).Msg("hubspot connect rejected by provider")
		h.redirectError(w, r, provErr)
		return
	}

	switch q.Get("step") {
	case "authorize":
		h.authorize(w, r)
	case "finalize":
		h.finalize(w, r)
	default:
		h.legacy(w, r)
	}
}

func (h *Connect) authorize(w http.ResponseWriter, r *http.Request) {
	redirect, err := h.connect.Authorize(r.Context(), h.userID(r), r.URL.Query().Get("returnUrl"))
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("hubspot authorize failed")
		h.redirectError(w, r, flowErrorCode(err))
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (h *Connect) finalize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.connect.Finalize(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		// The log keeps the exact state failure; the redirect does not.
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("hubspot finalize failed")
		h.redirectError(w, r, flowErrorCode(err))
		return
	}
	h.redirectSuccess(w, r, result)
}

func (h *Connect) legacy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	outcome, err := h.connect.Legacy(r.Context(), h.userID(r), q.Get("code"), q.Get("returnUrl"))
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("hubspot legacy connect failed")
		h.redirectError(w, r, flowErrorCode(err))
		return
	}
	if outcome.RedirectURL != "" {
		http.Redirect(w, r, outcome.RedirectURL, http.StatusFound)
		return
	}
	h.redirectSuccess(w, r, outcome.Result)
}

// userID resolves the requester from a Bearer header or, for top-level
// browser navigations that cannot carry headers, an access_token query
// parameter (RFC 6750 section 2.3). Returns "" when unauthenticated.
func (h *Connect) userID(r *http.Request) string {
	token := ""
	if header := r.Header.Get("Authorization"); header != "" {
		token = strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return ""
		}
	} else {
		token = r.URL.Query().Get("access_token")
	}
	if token == "" {
		return ""
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		return ""
	}
	return claims.Sub
}

func (h *Connect) redirectSuccess(w http.ResponseWriter, r *http.Request, result *core.ConnectResult) {
	target := h.siteBaseURL + "/profile?hubspot=connected"
	if result.PortalID != 0 {
		target += "&portal_id=" + strconv.FormatInt(result.PortalID, 10)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Connect) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.siteBaseURL+"/profile?hubspot_error="+url.QueryEscape(code), http.StatusFound)
}

// flowErrorCode collapses a service error into a short code safe to put
// in a redirect. Every state failure maps to the same code.
func flowErrorCode(err error) string {
	var missing *core.MissingParameterError
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return "unauthenticated"
	case errors.As(err, &missing):
		return "missing_" + missing.Name
	case errors.Is(err, core.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, core.ErrExchangeFailed):
		return "exchange_failed"
	default:
		return "internal"
	}
}
