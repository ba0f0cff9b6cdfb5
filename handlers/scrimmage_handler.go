package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ssched/scrimmage-api/services"
)

type ScrimmageHandler struct {
	scrimmageService services.ScrimmageService
}

func NewScrimmageHandler(ss services.ScrimmageService) *ScrimmageHandler {
	return &ScrimmageHandler{
		scrimmageService: ss,
	}
}

func (h *ScrimmageHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	input := services.ListScrimmagesInput{
		Role: r.URL.Query().Get("role"),
	}

	if allStr := r.URL.Query().Get("all"); allStr != "" {
		all, parseErr := strconv.ParseBool(allStr)
		if parseErr != nil {
			badRequestResponse(w, r, errors.New("invalid boolean value for 'all'"))
			return
		}
		input.All = all
	}

	if completedStr := r.URL.Query().Get("completed"); completedStr != "" {
		completed, parseErr := strconv.ParseBool(completedStr)
		if parseErr != nil {
			badRequestResponse(w, r, errors.New("invalid boolean value for 'completed'"))
			return
		}
		input.Completed = &completed
	}

	scrimmages, err := h.scrimmageService.List(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, scrimmages, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScrimmageHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateScrimmageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Subject == "" || input.Schedule == "" || input.ScrimmageType == "" {
		badRequestResponse(w, r, errors.New("subject, schedule, and scrimmage_type are required"))
		return
	}
	if len(input.Presenters) == 0 {
		badRequestResponse(w, r, errors.New("presenters list is required"))
		return
	}

	scrimmage, err := h.scrimmageService.Create(r.Context(), caller, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, scrimmage, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScrimmageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	scrimmageID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scrimmage, err := h.scrimmageService.GetByID(r.Context(), scrimmageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, scrimmage, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScrimmageHandler) Update(w http.ResponseWriter, r *http.Request) {
	scrimmageID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.UpdateScrimmageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	scrimmage, err := h.scrimmageService.Update(r.Context(), caller, scrimmageID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, scrimmage, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ScrimmageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scrimmageID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	caller, err := callerFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.scrimmageService.Delete(r.Context(), caller, scrimmageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
