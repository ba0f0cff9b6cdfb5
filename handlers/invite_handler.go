package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ssched/scrimmage-api/services"
)

type InviteHandler struct {
	inviteService services.InviteService
}

func NewInviteHandler(is services.InviteService) *InviteHandler {
	return &InviteHandler{
		inviteService: is,
	}
}

func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.ListInvitesInput

	if scrimmageStr := r.URL.Query().Get("scrimmage_id"); scrimmageStr != "" {
		scrimmageID, parseErr := strconv.Atoi(scrimmageStr)
		if parseErr != nil {
			badRequestResponse(w, r, errors.New("invalid scrimmage_id value"))
			return
		}
		input.ScrimmageID = &scrimmageID
	}
	if advisorStr := r.URL.Query().Get("advisor_id"); advisorStr != "" {
		advisorID, parseErr := strconv.Atoi(advisorStr)
		if parseErr != nil {
			badRequestResponse(w, r, errors.New("invalid advisor_id value"))
			return
		}
		input.AdvisorID = &advisorID
	}

	invites, err := h.inviteService.List(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, invites, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateInviteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.ScrimmageID <= 0 || input.AdvisorID <= 0 {
		badRequestResponse(w, r, errors.New("scrimmage_id and advisor_id are required"))
		return
	}

	invite, err := h.inviteService.Create(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, invite, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	inviteID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	invite, err := h.inviteService.GetByID(r.Context(), inviteID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, invite, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) Respond(w http.ResponseWriter, r *http.Request) {
	inviteID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Accepted *bool `json:"accepted"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Accepted == nil {
		badRequestResponse(w, r, errors.New("accepted is required"))
		return
	}

	invite, err := h.inviteService.Respond(r.Context(), caller, inviteID, *input.Accepted)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, invite, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *InviteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	inviteID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.inviteService.Delete(r.Context(), caller, inviteID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
