package handlers

import (
	"net/http"
	"time"

	"assetsync/src/utils"
)

const monthLayout = "2006-01"

// GetBenchmarkRates lists the benchmark rate table for an optional month
// range (?from=2023-01&to=2023-12).
func (h *Handler) GetBenchmarkRates(w http.ResponseWriter, r *http.Request) {
	from := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	to := utils.MonthStart(time.Now())

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(monthLayout, v)
		if err != nil {
			h.handleError(w, utils.BadRequest("invalid from month, expected YYYY-MM"))
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(monthLayout, v)
		if err != nil {
			h.handleError(w, utils.BadRequest("invalid to month, expected YYYY-MM"))
			return
		}
		to = parsed
	}

	rates, err := h.BenchmarkRepo.GetRange(r.Context(), from, to)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respond(w, rates, http.StatusOK)
}
