package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"assetsync/src/schemas"
	"assetsync/src/utils"

	"github.com/go-chi/chi/v5"
)

// syncTimeout bounds one full import or refresh, including remote pagination.
const syncTimeout = 5 * time.Minute

func (h *Handler) ImportFromAPI(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	var req schemas.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, utils.BadRequest("invalid request body"))
		return
	}
	if req.Token == "" || req.UserID == 0 {
		h.handleError(w, utils.BadRequest("token and userId are required"))
		return
	}

	result, err := h.SyncService.ImportFromAPI(ctx, req.UserID, req.Token)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respond(w, result, http.StatusOK)
}

func (h *Handler) RefreshCompany(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	companyID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, utils.BadRequest("invalid company id"))
		return
	}

	var req schemas.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, utils.BadRequest("invalid request body"))
		return
	}
	if req.UserID == 0 {
		h.handleError(w, utils.BadRequest("userId is required"))
		return
	}

	result, err := h.SyncService.RefreshCompany(ctx, req.UserID, companyID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respond(w, result, http.StatusOK)
}
